package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpapi "github.com/example/rideflow/internal/http"
	"github.com/example/rideflow/internal/live"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboards locally as JSON with a live active ride feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			srv, err := httpapi.NewServer(httpapi.Options{
				Session:   a.session,
				Dashboard: a.deps(),
				Notices:   a.notices,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			poller := &live.Poller{Hub: srv.Hub(), Fetch: srv.ActiveRide, Interval: a.cfg.LivePollInterval, Logger: a.logger}
			go func() { _ = poller.Run(ctx) }()

			hs := &http.Server{
				Addr:         a.cfg.HTTP.Addr,
				Handler:      srv,
				ReadTimeout:  a.cfg.HTTP.ReadTimeout,
				WriteTimeout: a.cfg.HTTP.WriteTimeout,
				IdleTimeout:  a.cfg.HTTP.IdleTimeout,
			}
			errc := make(chan error, 1)
			go func() {
				a.logger.Info("rideflow dashboard listening", "addr", hs.Addr, "api", a.cfg.API.BaseURL)
				errc <- hs.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return hs.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	_ = v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
