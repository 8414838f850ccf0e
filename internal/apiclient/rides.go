package apiclient

import (
	"context"
	"net/url"

	"github.com/example/rideflow/internal/models"
)

type RideRequest struct {
	Pickup      models.Location `json:"pickupLocation"`
	Destination models.Location `json:"destinationLocation"`
}

type rideEnvelope struct {
	Ride *models.Ride `json:"ride"`
}

func (e *rideEnvelope) Validate() error {
	if e.Ride == nil {
		return nil
	}
	return e.Ride.Validate()
}

func (e *rideEnvelope) require() (models.Ride, error) {
	if e.Ride == nil {
		return models.Ride{}, &Error{Kind: KindMalformed, Err: errMissing("ride")}
	}
	return *e.Ride, nil
}

type ridesEnvelope struct {
	Rides []models.Ride `json:"rides"`
}

func (e *ridesEnvelope) Prune() []error {
	var dropped []error
	e.Rides, dropped = models.PruneRides(e.Rides)
	return dropped
}

type nearbyEnvelope struct {
	Drivers []models.NearbyDriver `json:"drivers"`
}

func (c *Client) RequestRide(ctx context.Context, req RideRequest) (models.Ride, error) {
	var out rideEnvelope
	if err := c.Post(ctx, "/rides/request", req, &out); err != nil {
		return models.Ride{}, err
	}
	return out.require()
}

// History lists the caller's rides.
func (c *Client) History(ctx context.Context) ([]models.Ride, error) {
	var out ridesEnvelope
	err := c.Get(ctx, "/rides/history", &out)
	return out.Rides, err
}

// RideByID returns ok=false when the server answers without a ride.
func (c *Client) RideByID(ctx context.Context, id string) (models.Ride, bool, error) {
	var out rideEnvelope
	if err := c.Get(ctx, "/rides/history/"+url.PathEscape(id), &out); err != nil {
		return models.Ride{}, false, err
	}
	if out.Ride == nil {
		return models.Ride{}, false, nil
	}
	return *out.Ride, true, nil
}

// CancelRide cancels as the rider. The returned ride is the server's view;
// it is zero when the server does not echo the ride back.
func (c *Client) CancelRide(ctx context.Context, id string) (models.Ride, error) {
	var out rideEnvelope
	if err := c.Patch(ctx, "/rides/cancel/"+url.PathEscape(id), struct{}{}, &out); err != nil {
		return models.Ride{}, err
	}
	if out.Ride == nil {
		return models.Ride{}, nil
	}
	return *out.Ride, nil
}

func (c *Client) CalculateFare(ctx context.Context, req RideRequest) (models.FareEstimate, error) {
	var out models.FareEstimate
	err := c.Post(ctx, "/rides/fare/calculate", req, &out)
	return out, err
}

func (c *Client) NearbyDrivers(ctx context.Context, lat, lng float64) ([]models.NearbyDriver, error) {
	var out nearbyEnvelope
	body := struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}{lat, lng}
	err := c.Post(ctx, "/rides/nearby-drivers", body, &out)
	return out.Drivers, err
}
