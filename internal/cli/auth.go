package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/nav"
	"github.com/example/rideflow/internal/validate"
)

var errLoginFailed = errors.New("login failed")

func newLoginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := (validate.LoginForm{Email: email, Password: password}).Validate(); err != nil {
				return err
			}
			if !a.session.Login(cmd.Context(), email, password) {
				return errLoginFailed
			}
			return a.print(nav.Resolve(a.session.Snapshot()))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			appFrom(cmd).session.Logout(cmd.Context())
			return nil
		},
	}
}

func newRegisterCommand() *cobra.Command {
	var f validate.RegisterForm
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Confirm == "" {
				f.Confirm = f.Password
			}
			if err := f.Validate(); err != nil {
				return err
			}
			req := apiclient.RegisterRequest{Name: f.Name, Email: f.Email, Phone: f.Phone, Password: f.Password, Role: models.Role(f.Role)}
			return appFrom(cmd).session.Register(cmd.Context(), req)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.Name, "name", "", "full name")
	fl.StringVar(&f.Email, "email", "", "email")
	fl.StringVar(&f.Phone, "phone", "", "phone number")
	fl.StringVar(&f.Role, "role", "", "rider, driver or admin")
	fl.StringVar(&f.Password, "password", "", "password (at least 6 characters)")
	fl.StringVar(&f.Confirm, "confirm", "", "password again (defaults to --password)")
	return cmd
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			id, err := a.session.Identity()
			if err != nil {
				return err
			}
			return a.print(id)
		},
	}
}

func newNavCommand() *cobra.Command {
	var check string
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Show the sections the session can reach",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			d := nav.Resolve(a.session.Snapshot())
			if check == "" {
				return a.print(d)
			}
			g, err := nav.NewGuard()
			if err != nil {
				return err
			}
			sess, _ := a.session.Snapshot()
			if d.Redirect != "" || !g.Allow(sess.Identity.Role, check) {
				return fmt.Errorf("%s: not allowed", check)
			}
			fmt.Fprintln(a.out, "allowed")
			return nil
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "report whether this route may be opened")
	return cmd
}
