package dashboard

import (
	"context"
	"fmt"

	"github.com/example/rideflow/internal/analytics"
	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/models"
)

type Admin struct {
	Account

	stats *View[models.AdminStats]
	users *View[[]models.Identity]
	rides *View[[]models.Ride]
}

func NewAdmin(d Deps) *Admin {
	return &Admin{
		Account: Account{base: newBase(models.RoleAdmin, d)},
		stats:   &View[models.AdminStats]{},
		users:   &View[[]models.Identity]{},
		rides:   &View[[]models.Ride]{},
	}
}

func (a *Admin) Close() {
	a.stats.Close()
	a.users.Close()
	a.rides.Close()
}

type StatsView struct {
	Stats   models.AdminStats `json:"stats"`
	Summary analytics.Summary `json:"summary"`
}

// Stats loads the server's headline numbers and charts the ride list
// locally. A failed ride list leaves the summary empty.
func (a *Admin) Stats(ctx context.Context) (StatsView, error) {
	s, err := a.stats.Load(ctx, a.API.AdminAnalytics, nil)
	if err != nil {
		a.report(ctx, err, "Failed to fetch admin stats")
		return StatsView{}, err
	}
	sv := StatsView{Stats: s, Summary: analytics.Summarize(nil)}
	rides, err := a.rides.Load(ctx, a.API.AdminRides, nil)
	if err != nil {
		a.report(ctx, err, "Failed to fetch rides")
		return sv, nil
	}
	sv.Summary = analytics.Summarize(rides)
	return sv, nil
}

// Users searches users by name or email and returns one page.
func (a *Admin) Users(ctx context.Context, query string, page int) (listing.Page[models.Identity], error) {
	users, err := a.users.Load(ctx, a.API.Users, nil)
	if err != nil {
		a.report(ctx, err, "Failed to fetch users")
		return listing.Page[models.Identity]{Items: []models.Identity{}}, err
	}
	return listing.Paginate(listing.Filter(users, listing.UserSearch(query)), a.PageSize, page), nil
}

// SetUserStatus changes a user's status and reloads the user list.
func (a *Admin) SetUserStatus(ctx context.Context, id string, status models.UserStatus) error {
	if !status.Known() {
		return fmt.Errorf("unknown user status %q", status)
	}
	release, err := a.flight.acquire("user:" + id)
	if err != nil {
		return err
	}
	defer release()

	if err := a.API.SetUserStatus(ctx, id, status); err != nil {
		a.report(ctx, err, "Failed to update status")
		return err
	}
	a.Notify.Success("User status updated")
	a.publish(ctx, ingest.Event{Type: ingest.UserStatusSet, UserID: id, To: string(status)})
	if _, err := a.users.Load(ctx, a.API.Users, nil); err != nil {
		a.report(ctx, err, "Failed to fetch users")
	}
	return nil
}

// Rides lists every ride matching the oversight filter.
func (a *Admin) Rides(ctx context.Context, f listing.OversightFilter) ([]RideRow, error) {
	rides, err := a.rides.Load(ctx, a.API.AdminRides, nil)
	if err != nil {
		a.report(ctx, err, "Failed to fetch rides")
		return nil, err
	}
	return rows(a.role, listing.Filter(rides, f.Predicates()...)), nil
}

// CancelRide cancels any non-terminal ride on the rider's behalf.
func (a *Admin) CancelRide(ctx context.Context, ride models.Ride) (models.Ride, error) {
	updated, err := a.transition(ctx, ride, models.RideCancelled, func(ctx context.Context) (models.Ride, error) {
		return a.API.CancelRide(ctx, ride.ID)
	}, "Ride cancelled", "Failed to cancel ride")
	if err != nil {
		return ride, err
	}
	if updated.ID == "" {
		updated = ride
		updated.Status = models.RideCancelled
	}
	return updated, nil
}
