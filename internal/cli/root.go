// Package cli is the rideflow command line front end.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/rideflow/internal/config"
)

type appKey struct{}

// NewRootCommand builds the command tree. Every subcommand except help gets
// a ready app in its context; run it with Run so the app is closed.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "rideflow",
		Short:         "Ride booking client for riders, drivers and admins",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rideflow.yaml)")
	pf.String("api", "", "API base URL")
	pf.String("session-backend", "", "where the session is kept: file, redis or memory")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "json or text")
	pf.String("pg-dsn", "", "postgres connection string for the ride archive")
	_ = v.BindPFlag("api.base_url", pf.Lookup("api"))
	_ = v.BindPFlag("session.backend", pf.Lookup("session-backend"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = v.BindPFlag("pg.dsn", pf.Lookup("pg-dsn"))

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newRegisterCommand(),
		newWhoamiCommand(),
		newNavCommand(),
		newRidesCommand(),
		newDriverCommand(),
		newAdminCommand(),
		newServeCommand(v),
		newArchiveCommand(),
		newAnalyticsCommand(),
		newEventsCommand(),
	)
	return root
}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// Run executes root and closes the app the executed command opened, also
// when the command failed.
func Run(ctx context.Context, root *cobra.Command) error {
	cmd, err := root.ExecuteContextC(ctx)
	if cmd != nil && cmd.Context() != nil {
		if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
			a.Close()
		}
	}
	return err
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := Run(context.Background(), NewRootCommand()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
