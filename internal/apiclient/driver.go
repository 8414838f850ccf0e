package apiclient

import (
	"context"
	"net/url"

	"github.com/example/rideflow/internal/models"
)

func (c *Client) DriverProfile(ctx context.Context) (models.DriverProfile, error) {
	var out models.DriverProfile
	err := c.Get(ctx, "/driver/profile", &out)
	return out, err
}

func (c *Client) UpdateDriverProfile(ctx context.Context, p models.DriverProfile) error {
	return c.Patch(ctx, "/driver/profile", p, nil)
}

func (c *Client) ChangeDriverPassword(ctx context.Context, password string) error {
	body := struct {
		Password string `json:"password"`
	}{password}
	return c.Patch(ctx, "/driver/profile/password", body, nil)
}

// SetAvailability returns the availability the server settled on.
func (c *Client) SetAvailability(ctx context.Context, online bool) (bool, error) {
	var out models.DriverProfile
	body := struct {
		AvailabilityStatus string `json:"availabilityStatus"`
	}{models.AvailabilityFor(online)}
	if err := c.Post(ctx, "/driver/availability", body, &out); err != nil {
		return false, err
	}
	return out.Online(), nil
}

// AvailableRides lists open requests a driver may accept.
func (c *Client) AvailableRides(ctx context.Context) ([]models.Ride, error) {
	var out ridesEnvelope
	err := c.Get(ctx, "/driver/available", &out)
	return out.Rides, err
}

// ActiveRide returns ok=false when the driver has no active ride.
func (c *Client) ActiveRide(ctx context.Context) (models.Ride, bool, error) {
	var out rideEnvelope
	if err := c.Get(ctx, "/driver/active", &out); err != nil {
		return models.Ride{}, false, err
	}
	if out.Ride == nil {
		return models.Ride{}, false, nil
	}
	return *out.Ride, true, nil
}

func (c *Client) AcceptRide(ctx context.Context, id string) (models.Ride, error) {
	var out rideEnvelope
	if err := c.Post(ctx, "/driver/accept/"+url.PathEscape(id), nil, &out); err != nil {
		return models.Ride{}, err
	}
	if out.Ride == nil {
		return models.Ride{}, nil
	}
	return *out.Ride, nil
}

// UpdateRideStatus moves a ride to status as the driver.
func (c *Client) UpdateRideStatus(ctx context.Context, id string, status models.RideStatus) (models.Ride, error) {
	var out rideEnvelope
	body := struct {
		Status models.RideStatus `json:"status"`
	}{status}
	if err := c.Patch(ctx, "/driver/status/"+url.PathEscape(id), body, &out); err != nil {
		return models.Ride{}, err
	}
	if out.Ride == nil {
		return models.Ride{}, nil
	}
	return *out.Ride, nil
}

// Earnings lists the driver's completed rides.
func (c *Client) Earnings(ctx context.Context) ([]models.Ride, error) {
	var out ridesEnvelope
	err := c.Get(ctx, "/driver/earnings", &out)
	return out.Rides, err
}
