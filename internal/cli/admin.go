package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rideflow/internal/dashboard"
	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/models"
)

func adminScreen(cmd *cobra.Command, fn func(a *app, ad *dashboard.Admin) error) error {
	a := appFrom(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}
	ad := dashboard.NewAdmin(a.deps())
	defer ad.Close()
	return fn(a, ad)
}

func newAdminCommand() *cobra.Command {
	var query string
	var page int
	users := &cobra.Command{
		Use:   "users",
		Short: "Search users by name or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminScreen(cmd, func(a *app, ad *dashboard.Admin) error {
				p, err := ad.Users(cmd.Context(), query, page)
				if err != nil {
					return err
				}
				return a.print(p)
			})
		},
	}
	users.Flags().StringVar(&query, "search", "", "name or email contains")
	users.Flags().IntVar(&page, "page", 1, "page number")

	var filter listing.OversightFilter
	rides := &cobra.Command{
		Use:   "rides",
		Short: "Oversee every ride",
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminScreen(cmd, func(a *app, ad *dashboard.Admin) error {
				rows, err := ad.Rides(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return a.print(rows)
			})
		},
	}
	rides.Flags().StringVar(&filter.Status, "status", listing.All, "ride status")
	rides.Flags().StringVar(&filter.Driver, "driver", "", "driver name contains")
	rides.Flags().StringVar(&filter.Rider, "rider", "", "rider name contains")

	cmd := &cobra.Command{Use: "admin", Short: "Admin screens"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show platform totals and charts",
			RunE: func(cmd *cobra.Command, args []string) error {
				return adminScreen(cmd, func(a *app, ad *dashboard.Admin) error {
					sv, err := ad.Stats(cmd.Context())
					if err != nil {
						return err
					}
					return a.print(sv)
				})
			},
		},
		users,
		&cobra.Command{
			Use:   "set-status <user-id> <active|blocked|pending>",
			Short: "Change a user's status",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return adminScreen(cmd, func(a *app, ad *dashboard.Admin) error {
					return ad.SetUserStatus(cmd.Context(), args[0], models.UserStatus(args[1]))
				})
			},
		},
		rides,
		&cobra.Command{
			Use:   "cancel <ride-id>",
			Short: "Cancel a ride",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return adminScreen(cmd, func(a *app, ad *dashboard.Admin) error {
					rows, err := ad.Rides(cmd.Context(), listing.OversightFilter{})
					if err != nil {
						return err
					}
					for _, row := range rows {
						if row.Ride.ID == args[0] {
							ride, err := ad.CancelRide(cmd.Context(), row.Ride)
							if err != nil {
								return err
							}
							return a.print(ride)
						}
					}
					return fmt.Errorf("ride %s not found", args[0])
				})
			},
		},
	)
	return cmd
}
