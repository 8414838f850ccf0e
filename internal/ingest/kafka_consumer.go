package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/rideflow/internal/observability"
)

const maxBackoff = 30 * time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads activity events back off the topic, for tailing and
// audits.
type Consumer struct {
	reader  messageReader
	logger  *slog.Logger
	backoff time.Duration
}

func NewKafkaConsumer(brokers []string, topic, group string, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 1, MaxBytes: 10e6})
	return newConsumer(r, logger)
}

func newConsumer(r messageReader, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{reader: r, logger: logger, backoff: time.Second}
}

// Run hands every decodable event to fn until ctx ends or fn fails. Read
// errors back off exponentially; undecodable messages are skipped.
func (c *Consumer) Run(ctx context.Context, fn func(Event) error) error {
	backoff := c.backoff
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("kafka read failed", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = c.backoff

		var e Event
		if err := json.Unmarshal(m.Value, &e); err != nil || e.Type == "" {
			observability.ActivityEventsConsumed.WithLabelValues("invalid").Inc()
			c.logger.Warn("invalid activity event", "offset", m.Offset, "error", err)
			continue
		}
		observability.ActivityEventsConsumed.WithLabelValues("ok").Inc()
		if err := fn(e); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
