// Package dashboard implements the rider, driver and admin screens as
// headless controllers. A controller loads data through the API client,
// keeps per-screen state, guards its action buttons and reports outcomes
// through the notifier. A 401 from any call ends the session.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/geo"
	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/lifecycle"
	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/notify"
	"github.com/example/rideflow/internal/observability"
)

// Session is what the screens need from the session store.
type Session interface {
	Identity() (models.Identity, error)
	UpdateIdentity(ctx context.Context, p models.IdentityPatch) error
	Expire(ctx context.Context)
}

type Deps struct {
	API      *apiclient.Client
	Session  Session
	Notify   notify.Notifier
	Events   ingest.Publisher
	Geo      geo.Index
	Logger   *slog.Logger
	PageSize int
	SpeedMps float64
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Notify == nil {
		d.Notify = notify.Log{Logger: d.Logger}
	}
	if d.Events == nil {
		d.Events = ingest.Nop{}
	}
	if d.PageSize <= 0 {
		d.PageSize = listing.DefaultPageSize
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// RideRow is a ride with the buttons the current role is offered for it.
type RideRow struct {
	Ride    models.Ride        `json:"ride"`
	Actions []lifecycle.Action `json:"actions"`
}

func rows(role models.Role, rides []models.Ride) []RideRow {
	out := make([]RideRow, 0, len(rides))
	for _, r := range rides {
		out = append(out, RideRow{Ride: r, Actions: actions(role, r.Status)})
	}
	return out
}

func actions(role models.Role, s models.RideStatus) []lifecycle.Action {
	a := lifecycle.Actions(role, s)
	if a == nil {
		a = []lifecycle.Action{}
	}
	return a
}

type base struct {
	Deps
	role   models.Role
	flight inflight
}

func newBase(role models.Role, d Deps) *base {
	return &base{Deps: d.withDefaults(), role: role}
}

// report surfaces a failed call. Stale responses are silent and a rejected
// token ends the session instead of showing fallback.
func (b *base) report(ctx context.Context, err error, fallback string) {
	switch {
	case err == nil, errors.Is(err, ErrStale):
		return
	case apiclient.IsUnauthorized(err):
		b.Logger.Info("session rejected by api", "role", b.role)
		b.Session.Expire(ctx)
		return
	}
	b.Logger.Warn("dashboard call failed", "role", b.role, "error", err)
	b.Notify.Error(apiclient.Message(err, fallback))
}

// detailText is the full-view error for read-critical screens.
func (b *base) detailText(fallback string) func(error) string {
	return func(err error) string {
		if apiclient.IsKind(err, apiclient.KindNetwork) || apiclient.IsKind(err, apiclient.KindServer) {
			return apiclient.DetailMessage(err)
		}
		return apiclient.Message(err, fallback)
	}
}

func (b *base) publish(ctx context.Context, e ingest.Event) {
	e.Role = string(b.role)
	e.At = b.Now().UTC()
	if err := b.Events.Publish(ctx, e); err != nil {
		b.Logger.Warn("activity event dropped", "type", e.Type, "error", err)
	}
}

// transition runs one lifecycle action against the API. The action must be
// offered for the ride's current status; a second call for the same ride
// while one is outstanding gets ErrBusy.
func (b *base) transition(ctx context.Context, ride models.Ride, target models.RideStatus,
	call func(context.Context) (models.Ride, error), okText, failText string) (models.Ride, error) {
	act, err := lifecycle.Find(b.role, ride.Status, target)
	if err != nil {
		return ride, err
	}
	release, err := b.flight.acquire("ride:" + ride.ID)
	if err != nil {
		return ride, err
	}
	defer release()

	updated, err := call(ctx)
	if err != nil {
		observability.RideActionsTotal.WithLabelValues(string(b.role), string(target), "error").Inc()
		b.report(ctx, err, failText)
		return ride, err
	}
	observability.RideActionsTotal.WithLabelValues(string(b.role), string(target), "ok").Inc()
	b.Notify.Success(okText)

	typ := ingest.RideTransition
	switch act.Target {
	case models.RideAccepted:
		typ = ingest.RideAccepted
	case models.RideCancelled:
		typ = ingest.RideCancelled
	}
	b.publish(ctx, ingest.Event{Type: typ, RideID: ride.ID, From: string(ride.Status), To: string(target)})
	return updated, nil
}

// Busy reports whether an action on the ride is in flight.
func (b *base) Busy(rideID string) bool { return b.flight.Busy("ride:" + rideID) }
