package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/example/rideflow/internal/analytics"
	"github.com/example/rideflow/internal/config"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/storage"
	"github.com/example/rideflow/migrations"
)

const archiveBatch = 25

// openArchive connects to the configured archive. Tests swap it out.
var openArchive = func(ctx context.Context, cfg config.Config, migrate bool) (storage.RideArchive, func(), error) {
	if cfg.PGDSN == "" {
		return nil, nil, fmt.Errorf("pg.dsn is not set; set RIDEFLOW_PG_DSN to use the archive")
	}
	ps, err := storage.NewPostgresStore(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if _, err := ps.Migrate(ctx, migrations.FS); err != nil {
			ps.Close()
			return nil, nil, err
		}
	}
	return ps, func() { ps.Close() }, nil
}

// fetchRides loads the list a role's screens are built on: a rider's
// history, a driver's earnings, or every ride for an admin.
func fetchRides(ctx context.Context, a *app) (models.Identity, []models.Ride, error) {
	id, err := a.session.Identity()
	if err != nil {
		return id, nil, err
	}
	var rides []models.Ride
	switch id.Role {
	case models.RoleAdmin:
		rides, err = a.api.AdminRides(ctx)
	case models.RoleDriver:
		rides, err = a.api.Earnings(ctx)
	default:
		rides, err = a.api.History(ctx)
	}
	if err != nil {
		return id, nil, err
	}
	return id, rides, nil
}

func owner(id models.Identity) string {
	if id.ID != "" {
		return id.ID
	}
	return id.Email
}

func newArchiveCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store your ride list in the offline archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx := cmd.Context()
			id, rides, err := fetchRides(ctx, a)
			if err != nil {
				a.notices.Error("Failed to fetch rides")
				return err
			}
			store, done, err := openArchive(ctx, a.cfg, migrate)
			if err != nil {
				return err
			}
			defer done()

			bar := progressbar.NewOptions(len(rides),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("archiving rides"),
				progressbar.OptionShowCount(),
			)
			saved := 0
			for start := 0; start < len(rides); start += archiveBatch {
				end := min(start+archiveBatch, len(rides))
				n, err := store.SaveRides(ctx, owner(id), rides[start:end])
				if err != nil {
					return fmt.Errorf("archive after %d rides: %w", saved, err)
				}
				saved += n
				_ = bar.Add(n)
			}
			_ = bar.Finish()
			fmt.Fprintln(cmd.ErrOrStderr())
			return a.print(map[string]any{"owner": owner(id), "archived": saved})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the archive table first")
	return cmd
}

func newAnalyticsCommand() *cobra.Command {
	var fromArchive bool
	var top int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Summarize rides by month, status and destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx := cmd.Context()
			var rides []models.Ride
			if fromArchive {
				id, err := a.session.Identity()
				if err != nil {
					return err
				}
				store, done, err := openArchive(ctx, a.cfg, false)
				if err != nil {
					return err
				}
				defer done()
				if rides, err = store.ListRides(ctx, owner(id)); err != nil {
					return err
				}
			} else {
				var err error
				if _, rides, err = fetchRides(ctx, a); err != nil {
					a.notices.Error("Failed to fetch rides")
					return err
				}
			}
			sum := analytics.Summarize(rides)
			if top > 0 {
				sum.TopDestinations = analytics.TopDestinations(rides, top)
			}
			return a.print(sum)
		},
	}
	cmd.Flags().BoolVar(&fromArchive, "archive", false, "read rides from the offline archive instead of the API")
	cmd.Flags().IntVar(&top, "top", analytics.DefaultTop, "how many destinations to rank")
	return cmd
}
