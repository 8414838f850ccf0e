package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/rideflow/internal/dashboard"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

func driverScreen(cmd *cobra.Command, fn func(a *app, d *dashboard.Driver) error) error {
	a := appFrom(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}
	d := dashboard.NewDriver(a.deps())
	defer d.Close()
	return fn(a, d)
}

func newDriverCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "driver", Short: "Driver screens"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show availability and open ride requests",
			RunE: func(cmd *cobra.Command, args []string) error {
				return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
					av, err := d.Availability(cmd.Context())
					if err != nil {
						return err
					}
					return a.print(av)
				})
			},
		},
		&cobra.Command{
			Use:   "online <true|false>",
			Short: "Go online or offline",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				online, err := strconv.ParseBool(args[0])
				if err != nil {
					return fmt.Errorf("online: %w", err)
				}
				return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
					got, err := d.SetAvailability(cmd.Context(), online)
					if err != nil {
						return err
					}
					return a.print(map[string]bool{"online": got})
				})
			},
		},
		&cobra.Command{
			Use:   "accept <ride-id>",
			Short: "Accept an open ride request",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
					reqs, err := d.Requests(cmd.Context())
					if err != nil {
						return err
					}
					for _, row := range reqs {
						if row.Ride.ID == args[0] {
							ride, err := d.Accept(cmd.Context(), row.Ride)
							if err != nil {
								return err
							}
							return a.print(ride)
						}
					}
					return fmt.Errorf("ride %s is not an open request", args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "active",
			Short: "Show the active ride and its actions",
			RunE: func(cmd *cobra.Command, args []string) error {
				return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
					av, err := d.ActiveRide(cmd.Context())
					if err != nil {
						return err
					}
					return a.print(av)
				})
			},
		},
		&cobra.Command{
			Use:   "advance <status>",
			Short: "Move the active ride to picked_up, in_transit, completed or cancelled",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
					if _, err := d.ActiveRide(cmd.Context()); err != nil {
						return err
					}
					ride, err := d.Advance(cmd.Context(), models.RideStatus(args[0]))
					if err != nil {
						return err
					}
					return a.print(ride)
				})
			},
		},
		newEarningsCommand(),
		newDriverProfileCommand(),
		newDriverPasswordCommand(),
	)
	return cmd
}

func newEarningsCommand() *cobra.Command {
	var query string
	var page int
	cmd := &cobra.Command{
		Use:   "earnings",
		Short: "List completed rides and total earnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
				ev, err := d.Earnings(cmd.Context(), query, page)
				if err != nil {
					return err
				}
				return a.print(ev)
			})
		},
	}
	cmd.Flags().StringVar(&query, "search", "", "pickup address contains")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newDriverProfileCommand() *cobra.Command {
	var p models.DriverProfile
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the driver profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
				cur, err := d.Profile(cmd.Context())
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("email") &&
					!cmd.Flags().Changed("phone") && !cmd.Flags().Changed("vehicle") {
					return a.print(cur)
				}
				next := cur
				if cmd.Flags().Changed("name") {
					next.Name = p.Name
				}
				if cmd.Flags().Changed("email") {
					next.Email = p.Email
				}
				if cmd.Flags().Changed("phone") {
					next.Phone = p.Phone
				}
				if cmd.Flags().Changed("vehicle") {
					next.Vehicle = p.Vehicle
				}
				if err := d.UpdateProfile(cmd.Context(), next); err != nil {
					return err
				}
				return a.print(next)
			})
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "full name")
	cmd.Flags().StringVar(&p.Email, "email", "", "email")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&p.Vehicle, "vehicle", "", "vehicle description")
	return cmd
}

func newDriverPasswordCommand() *cobra.Command {
	var f validate.NewPasswordForm
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Set a new password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Confirm == "" {
				f.Confirm = f.New
			}
			return driverScreen(cmd, func(a *app, d *dashboard.Driver) error {
				return d.ChangePassword(cmd.Context(), f)
			})
		},
	}
	cmd.Flags().StringVar(&f.New, "new", "", "new password")
	cmd.Flags().StringVar(&f.Confirm, "confirm", "", "new password again (defaults to --new)")
	return cmd
}
