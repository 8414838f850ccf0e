package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/example/rideflow/internal/analytics"
	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

var ErrNoActiveRide = errors.New("no active ride")

type Driver struct {
	*base

	profile  *View[models.DriverProfile]
	requests *View[[]models.Ride]
	active   *View[ActiveView]
	earnings *View[[]models.Ride]
}

func NewDriver(d Deps) *Driver {
	return &Driver{
		base:     newBase(models.RoleDriver, d),
		profile:  &View[models.DriverProfile]{},
		requests: &View[[]models.Ride]{},
		active:   &View[ActiveView]{},
		earnings: &View[[]models.Ride]{},
	}
}

func (d *Driver) Close() {
	d.profile.Close()
	d.requests.Close()
	d.active.Close()
	d.earnings.Close()
}

type AvailabilityView struct {
	Online   bool                 `json:"online"`
	Profile  models.DriverProfile `json:"profile"`
	Requests []RideRow            `json:"requests"`
}

// Availability loads the driver's status and the open ride requests.
func (d *Driver) Availability(ctx context.Context) (AvailabilityView, error) {
	p, err := d.Profile(ctx)
	if err != nil {
		return AvailabilityView{}, err
	}
	reqs, err := d.Requests(ctx)
	if err != nil {
		return AvailabilityView{Online: p.Online(), Profile: p}, err
	}
	return AvailabilityView{Online: p.Online(), Profile: p, Requests: reqs}, nil
}

// SetAvailability flips the driver online or offline and returns the state
// the server settled on.
func (d *Driver) SetAvailability(ctx context.Context, online bool) (bool, error) {
	release, err := d.flight.acquire("availability")
	if err != nil {
		return false, err
	}
	defer release()

	got, err := d.API.SetAvailability(ctx, online)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			d.Session.Expire(ctx)
		} else {
			d.Notify.Error("Failed to update availability")
		}
		return false, err
	}
	if st := d.profile.State(); st.Loaded {
		p := st.Data
		p.AvailabilityStatus = models.AvailabilityFor(got)
		d.profile.Set(p)
	}
	d.Notify.Success("Availability updated!")
	d.publish(ctx, ingest.Event{Type: ingest.AvailabilitySet, To: models.AvailabilityFor(got)})
	return got, nil
}

// Requests lists the open rides the driver may accept.
func (d *Driver) Requests(ctx context.Context) ([]RideRow, error) {
	rides, err := d.requests.Load(ctx, d.API.AvailableRides, nil)
	if err != nil {
		d.report(ctx, err, "Failed to fetch ride requests")
		return nil, err
	}
	return rows(d.role, rides), nil
}

// Accept claims an open request. On success it becomes the active ride.
func (d *Driver) Accept(ctx context.Context, ride models.Ride) (models.Ride, error) {
	updated, err := d.transition(ctx, ride, models.RideAccepted, func(ctx context.Context) (models.Ride, error) {
		return d.API.AcceptRide(ctx, ride.ID)
	}, "Ride accepted!", "Failed to accept ride")
	if err != nil {
		return ride, err
	}
	if updated.ID == "" {
		// the server did not echo the ride; read the active one
		av, err := d.ActiveRide(ctx)
		if err != nil || av.Ride == nil {
			return ride, err
		}
		return *av.Ride, nil
	}
	d.setActive(&updated)
	if st := d.requests.State(); st.Loaded {
		d.requests.Set(listing.Filter(st.Data, func(r models.Ride) bool { return r.ID != updated.ID }))
	}
	return updated, nil
}

type ActiveView struct {
	Ride    *models.Ride `json:"ride"`
	Actions []RideAction `json:"actions"`
}

// RideAction is a button on the active ride card.
type RideAction struct {
	Label  string            `json:"label"`
	Target models.RideStatus `json:"target"`
	Busy   bool              `json:"busy"`
}

func (d *Driver) activeView(r *models.Ride) ActiveView {
	av := ActiveView{Ride: r, Actions: []RideAction{}}
	if r == nil {
		return av
	}
	busy := d.Busy(r.ID)
	for _, a := range actions(d.role, r.Status) {
		label := a.Label
		if a.Target == models.RideCancelled {
			label = "Cancel Ride"
		}
		av.Actions = append(av.Actions, RideAction{Label: label, Target: a.Target, Busy: busy})
	}
	return av
}

func (d *Driver) setActive(r *models.Ride) { d.active.Set(d.activeView(r)) }

// ActiveRide loads the ride the driver is working, if any.
func (d *Driver) ActiveRide(ctx context.Context) (ActiveView, error) {
	fetch := func(ctx context.Context) (ActiveView, error) {
		ride, ok, err := d.API.ActiveRide(ctx)
		if err != nil || !ok {
			return d.activeView(nil), err
		}
		return d.activeView(&ride), nil
	}
	av, err := d.active.Load(ctx, fetch, nil)
	if err != nil {
		d.report(ctx, err, "Failed to fetch active ride")
		return ActiveView{Actions: []RideAction{}}, err
	}
	return av, nil
}

// ActiveState is the last known active ride without a network call.
func (d *Driver) ActiveState() State[ActiveView] { return d.active.State() }

// Advance moves the active ride to target, which must be one of its offered
// actions. Cancelling clears the active ride.
func (d *Driver) Advance(ctx context.Context, target models.RideStatus) (models.Ride, error) {
	st := d.active.State()
	if !st.Loaded || st.Data.Ride == nil {
		return models.Ride{}, ErrNoActiveRide
	}
	cur := *st.Data.Ride
	okText, failText := "Ride status updated!", "Failed to update ride"
	if target == models.RideCancelled {
		okText, failText = "Ride cancelled", "Failed to cancel ride"
	}
	updated, err := d.transition(ctx, cur, target, func(ctx context.Context) (models.Ride, error) {
		return d.API.UpdateRideStatus(ctx, cur.ID, target)
	}, okText, failText)
	if err != nil {
		return cur, err
	}
	switch {
	case target == models.RideCancelled:
		d.setActive(nil)
		if updated.ID == "" {
			updated = cur
			updated.Status = models.RideCancelled
		}
	case updated.ID == "":
		av, err := d.ActiveRide(ctx)
		if err != nil || av.Ride == nil {
			return cur, err
		}
		updated = *av.Ride
	default:
		d.setActive(&updated)
	}
	return updated, nil
}

type EarningsView struct {
	Rows   listing.Page[models.Ride] `json:"rows"`
	Total  float64                   `json:"total"`
	Points []analytics.Point         `json:"points"`
	Search string                    `json:"search"`
}

// Earnings lists completed rides searched by pickup address, one page at a
// time, with the total over the search result.
func (d *Driver) Earnings(ctx context.Context, query string, page int) (EarningsView, error) {
	rides, err := d.earnings.Load(ctx, d.API.Earnings, nil)
	if err != nil {
		d.report(ctx, err, "Failed to fetch earnings")
		return EarningsView{Search: query}, err
	}
	filtered := listing.Filter(rides, listing.PickupAddress(query))
	ev := EarningsView{
		Rows:   listing.Paginate(filtered, d.PageSize, page),
		Points: analytics.FarePoints(filtered),
		Search: query,
	}
	for _, r := range filtered {
		ev.Total += r.Fare
	}
	return ev, nil
}

func (d *Driver) Profile(ctx context.Context) (models.DriverProfile, error) {
	p, err := d.profile.Load(ctx, d.API.DriverProfile, nil)
	if err != nil {
		d.report(ctx, err, "Failed to fetch profile")
		return models.DriverProfile{}, err
	}
	return p, nil
}

func (d *Driver) UpdateProfile(ctx context.Context, p models.DriverProfile) error {
	if err := (validate.ProfileForm{Name: p.Name, Email: p.Email, Phone: p.Phone}).Validate(); err != nil {
		var ve *validate.Errors
		if errors.As(err, &ve) {
			d.Notify.Error(ve.Message())
		}
		return err
	}
	release, err := d.flight.acquire("profile")
	if err != nil {
		return err
	}
	defer release()

	if err := d.API.UpdateDriverProfile(ctx, p); err != nil {
		if apiclient.IsUnauthorized(err) {
			d.Session.Expire(ctx)
		} else {
			d.Notify.Error("Failed to update profile")
		}
		return err
	}
	d.profile.Set(p)
	if err := d.Session.UpdateIdentity(ctx, models.IdentityPatch{Name: p.Name, Email: p.Email, Phone: p.Phone}); err != nil {
		d.Logger.Error("store updated identity", "error", err)
	}
	d.Notify.Success("Profile updated")
	return nil
}

func (d *Driver) ChangePassword(ctx context.Context, f validate.NewPasswordForm) error {
	if strings.TrimSpace(f.New) == "" {
		d.Notify.Error("Enter new password")
		return &validate.Errors{Fields: []validate.FieldError{{Field: "password", Message: "Enter new password"}}}
	}
	if err := f.Validate(); err != nil {
		var ve *validate.Errors
		if errors.As(err, &ve) {
			d.Notify.Error(ve.Message())
		}
		return err
	}
	release, err := d.flight.acquire("password")
	if err != nil {
		return err
	}
	defer release()

	if err := d.API.ChangeDriverPassword(ctx, f.New); err != nil {
		if apiclient.IsUnauthorized(err) {
			d.Session.Expire(ctx)
		} else {
			d.Notify.Error("Failed to update password")
		}
		return err
	}
	d.Notify.Success("Password updated")
	return nil
}
