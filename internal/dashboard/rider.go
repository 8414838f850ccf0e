package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/example/rideflow/internal/analytics"
	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/fare"
	"github.com/example/rideflow/internal/geo"
	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/lifecycle"
	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

var ErrRideNotFound = errors.New("ride not found")

type Rider struct {
	Account

	history *View[[]models.Ride]
	details *View[DetailView]
}

func NewRider(d Deps) *Rider {
	b := newBase(models.RoleRider, d)
	return &Rider{
		Account: Account{base: b},
		history: &View[[]models.Ride]{},
		details: &View[DetailView]{},
	}
}

// Close unmounts every rider screen.
func (r *Rider) Close() {
	r.history.Close()
	r.details.Close()
}

// RequestRide validates the form and asks for a ride.
func (r *Rider) RequestRide(ctx context.Context, f validate.RideForm) (models.Ride, error) {
	pickup, dest, err := f.Locations()
	if err != nil {
		return models.Ride{}, r.invalid(err)
	}
	release, err := r.flight.acquire("request")
	if err != nil {
		return models.Ride{}, err
	}
	defer release()

	ride, err := r.API.RequestRide(ctx, apiclient.RideRequest{Pickup: pickup, Destination: dest})
	if err != nil {
		r.report(ctx, err, "Ride request failed. Please try again.")
		return models.Ride{}, err
	}
	r.Notify.Success("Ride requested successfully!")
	r.publish(ctx, ingest.Event{Type: ingest.RideRequested, RideID: ride.ID, To: string(ride.Status)})
	return ride, nil
}

type QuoteView struct {
	Local  fare.Quote           `json:"local"`
	Server *models.FareEstimate `json:"server,omitempty"`
}

// Quote prices a trip locally and, when the API answers, alongside the
// server's estimate. A failed server estimate is logged, not shown.
func (r *Rider) Quote(ctx context.Context, f validate.RideForm, option, promo string) (QuoteView, error) {
	pickup, dest, err := f.Locations()
	if err != nil {
		return QuoteView{}, r.invalid(err)
	}
	opt, err := fare.Lookup(option)
	if err != nil {
		return QuoteView{}, err
	}
	qv := QuoteView{Local: fare.Estimate(opt, pickup, dest, strings.TrimSpace(promo), r.SpeedMps)}
	est, err := r.API.CalculateFare(ctx, apiclient.RideRequest{Pickup: pickup, Destination: dest})
	switch {
	case apiclient.IsUnauthorized(err):
		r.Session.Expire(ctx)
		return qv, err
	case err != nil:
		r.Logger.Info("server fare estimate unavailable", "error", err)
	default:
		qv.Server = &est
	}
	return qv, nil
}

// NearbyDrivers asks the API for drivers near a point, caches them in the
// geo index and returns up to limit, closest first.
func (r *Rider) NearbyDrivers(ctx context.Context, lat, lng float64, limit int) ([]models.NearbyDriver, error) {
	if !validate.Coordinates(lat, lng) {
		return nil, &validate.Errors{Fields: []validate.FieldError{{Field: "location", Message: "coordinates are out of range"}}}
	}
	drivers, err := r.API.NearbyDrivers(ctx, lat, lng)
	if err != nil {
		r.report(ctx, err, "Failed to fetch nearby drivers")
		return nil, err
	}
	origin := models.Location{Lat: lat, Lng: lng}
	if r.Geo == nil {
		return geo.Nearest(origin, drivers, 0, limit), nil
	}
	if err := r.Geo.Upsert(ctx, drivers); err != nil {
		r.Logger.Warn("cache nearby drivers", "error", err)
		return geo.Nearest(origin, drivers, 0, limit), nil
	}
	return r.Geo.Nearby(ctx, origin, 0, limit)
}

type HistoryView struct {
	Filter  string                `json:"filter"`
	Filters []string              `json:"filters"`
	Rows    listing.Page[RideRow] `json:"rows"`
	Showing int                   `json:"showing"`
	Total   int                   `json:"total"`
	Error   string                `json:"error,omitempty"`
}

// History loads the rider's rides and returns one filtered page. A failed
// load replaces the screen with an error message.
func (r *Rider) History(ctx context.Context, filter string, page int) (HistoryView, error) {
	if filter == "" {
		filter = listing.HistoryAll
	}
	hv := HistoryView{Filter: filter, Filters: listing.HistoryFilters}
	rides, err := r.history.Load(ctx, r.API.History, r.detailText("Failed to fetch ride history"))
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			r.Session.Expire(ctx)
		}
		hv.Error = r.history.State().Err
		return hv, err
	}
	filtered := listing.Filter(rides, listing.HistoryStatus(filter))
	p := listing.Paginate(filtered, r.PageSize, page)
	hv.Rows = listing.Page[RideRow]{
		Items: rows(r.role, p.Items), Page: p.Page, Size: p.Size, TotalPages: p.TotalPages, Total: p.Total,
	}
	hv.Showing = len(filtered)
	hv.Total = len(rides)
	return hv, nil
}

type DetailView struct {
	Ride     models.Ride        `json:"ride"`
	Actions  []lifecycle.Action `json:"actions"`
	Timeline []lifecycle.Event  `json:"timeline"`
	Error    string             `json:"error,omitempty"`
}

// Details loads one ride for the detail screen.
func (r *Rider) Details(ctx context.Context, id string) (DetailView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DetailView{Error: "Invalid ride ID."}, ErrRideNotFound
	}
	fetch := func(ctx context.Context) (DetailView, error) {
		ride, ok, err := r.API.RideByID(ctx, id)
		if err != nil {
			return DetailView{}, err
		}
		if !ok {
			return DetailView{}, ErrRideNotFound
		}
		if err := lifecycle.CheckTimeline(ride); err != nil {
			r.Logger.Warn("inconsistent ride timeline", "ride_id", ride.ID, "error", err)
		}
		return DetailView{Ride: ride, Actions: actions(r.role, ride.Status), Timeline: lifecycle.Timeline(ride)}, nil
	}
	text := func(err error) string {
		if errors.Is(err, ErrRideNotFound) {
			return "Ride not found."
		}
		return apiclient.DetailMessage(err)
	}
	dv, err := r.details.Load(ctx, fetch, text)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			r.Session.Expire(ctx)
		}
		return DetailView{Error: r.details.State().Err}, err
	}
	return dv, nil
}

// Cancel cancels one of the rider's rides. The displayed ride only changes
// once the server confirms.
func (r *Rider) Cancel(ctx context.Context, ride models.Ride) (models.Ride, error) {
	updated, err := r.transition(ctx, ride, models.RideCancelled, func(ctx context.Context) (models.Ride, error) {
		return r.API.CancelRide(ctx, ride.ID)
	}, "Ride cancelled", "Failed to cancel ride")
	if err != nil {
		return ride, err
	}
	if updated.ID == "" {
		updated = ride
		updated.Status = models.RideCancelled
		now := r.Now().UTC()
		updated.CancelledAt = &now
	}
	if st := r.details.State(); st.Loaded && st.Data.Ride.ID == updated.ID {
		r.details.Set(DetailView{Ride: updated, Actions: actions(r.role, updated.Status), Timeline: lifecycle.Timeline(updated)})
	}
	return updated, nil
}

// Summary charts the rider's own history.
func (r *Rider) Summary(ctx context.Context) (analytics.Summary, error) {
	rides, err := r.history.Load(ctx, r.API.History, nil)
	if err != nil {
		r.report(ctx, err, "Failed to fetch ride history")
		return analytics.Summary{}, err
	}
	return analytics.Summarize(rides), nil
}
