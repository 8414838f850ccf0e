package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/rideflow/internal/ingest"
)

func newEventsCommand() *cobra.Command {
	var group string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print activity events as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if len(a.cfg.Kafka.Brokers) == 0 {
				return fmt.Errorf("kafka.brokers is not set; set RIDEFLOW_KAFKA_BROKERS")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c := ingest.NewKafkaConsumer(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic, group, a.logger)
			defer c.Close()
			a.logger.Info("tailing activity events", "topic", a.cfg.Kafka.Topic, "group", group)
			return c.Run(ctx, func(e ingest.Event) error { return a.print(e) })
		},
	}
	tail.Flags().StringVar(&group, "group", "rideflow-tail", "consumer group")

	cmd := &cobra.Command{Use: "events", Short: "Client activity events"}
	cmd.AddCommand(tail)
	return cmd
}
