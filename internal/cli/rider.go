package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/rideflow/internal/dashboard"
	"github.com/example/rideflow/internal/fare"
	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/validate"
)

// riderScreen runs fn against a rider controller that is closed afterwards.
func riderScreen(cmd *cobra.Command, fn func(a *app, r *dashboard.Rider) error) error {
	a := appFrom(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}
	r := dashboard.NewRider(a.deps())
	defer r.Close()
	return fn(a, r)
}

func newRidesCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "rides", Short: "Rider screens"}
	cmd.AddCommand(newRidesHistoryCommand(), newRidesShowCommand(), newRidesCancelCommand(),
		newRidesRequestCommand(), newRidesQuoteCommand(), newRidesNearbyCommand(), newRidesOptionsCommand(),
		newProfileCommand(), newPasswordCommand())
	return cmd
}

func newRidesHistoryCommand() *cobra.Command {
	var status string
	var page int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your rides, filtered by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				hv, err := r.History(cmd.Context(), status, page)
				if err != nil {
					return err
				}
				return a.print(hv)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", listing.HistoryAll, "all, completed, cancelled, in progress or pending")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newRidesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <ride-id>",
		Short: "Show one ride with its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				dv, err := r.Details(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(dv)
			})
		},
	}
}

func newRidesCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <ride-id>",
		Short: "Cancel one of your rides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				dv, err := r.Details(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				ride, err := r.Cancel(cmd.Context(), dv.Ride)
				if err != nil {
					return err
				}
				return a.print(ride)
			})
		},
	}
}

func rideFormFlags(cmd *cobra.Command, f *validate.RideForm) {
	fl := cmd.Flags()
	fl.StringVar(&f.Pickup.Name, "pickup-name", "", "pickup place name")
	fl.StringVar(&f.Pickup.Address, "pickup-address", "", "pickup address")
	fl.StringVar(&f.Pickup.Lat, "pickup-lat", "", "pickup latitude")
	fl.StringVar(&f.Pickup.Lng, "pickup-lng", "", "pickup longitude")
	fl.StringVar(&f.Destination.Name, "dest-name", "", "destination place name")
	fl.StringVar(&f.Destination.Address, "dest-address", "", "destination address")
	fl.StringVar(&f.Destination.Lat, "dest-lat", "", "destination latitude")
	fl.StringVar(&f.Destination.Lng, "dest-lng", "", "destination longitude")
}

func newRidesRequestCommand() *cobra.Command {
	var f validate.RideForm
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request a ride",
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				ride, err := r.RequestRide(cmd.Context(), f)
				if err != nil {
					return err
				}
				return a.print(ride)
			})
		},
	}
	rideFormFlags(cmd, &f)
	return cmd
}

func newRidesQuoteCommand() *cobra.Command {
	var f validate.RideForm
	var option, promo string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a trip for one ride option",
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				q, err := r.Quote(cmd.Context(), f, option, promo)
				if err != nil {
					return err
				}
				return a.print(q)
			})
		},
	}
	rideFormFlags(cmd, &f)
	cmd.Flags().StringVar(&option, "option", strconv.Itoa(fare.Catalog[0].ID), "ride option id or name")
	cmd.Flags().StringVar(&promo, "promo", "", "promo code")
	return cmd
}

func newRidesNearbyCommand() *cobra.Command {
	var lat, lng float64
	var limit int
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List the closest available drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				drivers, err := r.NearbyDrivers(cmd.Context(), lat, lng, limit)
				if err != nil {
					return err
				}
				return a.print(drivers)
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().IntVar(&limit, "limit", 5, "how many drivers")
	return cmd
}

func newRidesOptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List ride options and prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return appFrom(cmd).print(fare.Catalog)
		},
	}
}

func newProfileCommand() *cobra.Command {
	var f validate.ProfileForm
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your name, email and phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				id, err := r.UpdateProfile(cmd.Context(), f)
				if err != nil {
					return err
				}
				return a.print(id)
			})
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "full name")
	cmd.Flags().StringVar(&f.Email, "email", "", "email")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "phone number")
	return cmd
}

func newPasswordCommand() *cobra.Command {
	var f validate.PasswordForm
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return riderScreen(cmd, func(a *app, r *dashboard.Rider) error {
				return r.ChangePassword(cmd.Context(), f)
			})
		},
	}
	cmd.Flags().StringVar(&f.Current, "current", "", "current password")
	cmd.Flags().StringVar(&f.New, "new", "", "new password")
	cmd.Flags().StringVar(&f.Confirm, "confirm", "", "new password again")
	return cmd
}
