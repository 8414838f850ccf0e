package dashboard

import (
	"context"
	"errors"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

// Account is the profile screen shared by riders and admins.
type Account struct {
	*base
}

// profileFailure words a profile or password failure the way the profile
// screen does.
func profileFailure(err error) string {
	if apiclient.IsKind(err, apiclient.KindNetwork) {
		return "No response from server. Check your connection."
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiclient.Message(err, "Server error occurred.")
	}
	return "An unexpected error occurred."
}

func (a Account) invalid(err error) error {
	var ve *validate.Errors
	if errors.As(err, &ve) {
		a.Notify.Error(ve.Message())
	}
	return err
}

// UpdateProfile sends the edit and merges the server's answer into the
// session.
func (a Account) UpdateProfile(ctx context.Context, f validate.ProfileForm) (models.Identity, error) {
	if err := f.Validate(); err != nil {
		return models.Identity{}, a.invalid(err)
	}
	release, err := a.flight.acquire("profile")
	if err != nil {
		return models.Identity{}, err
	}
	defer release()

	id, err := a.API.UpdateProfile(ctx, apiclient.ProfileUpdate{Name: f.Name, Email: f.Email, Phone: f.Phone})
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			a.Session.Expire(ctx)
		} else {
			a.Notify.Error(profileFailure(err))
		}
		return models.Identity{}, err
	}
	patch := models.IdentityPatch{Name: id.Name, Email: id.Email, Phone: id.Phone}
	if err := a.Session.UpdateIdentity(ctx, patch); err != nil {
		a.Logger.Error("store updated identity", "error", err)
	}
	a.Notify.Success("Profile updated successfully!")
	return id, nil
}

func (a Account) ChangePassword(ctx context.Context, f validate.PasswordForm) error {
	if err := f.Validate(); err != nil {
		return a.invalid(err)
	}
	release, err := a.flight.acquire("password")
	if err != nil {
		return err
	}
	defer release()

	err = a.API.ChangePassword(ctx, apiclient.PasswordChange{CurrentPassword: f.Current, NewPassword: f.New})
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			a.Session.Expire(ctx)
		} else {
			a.Notify.Error(profileFailure(err))
		}
		return err
	}
	a.Notify.Success("Password changed successfully!")
	return nil
}
