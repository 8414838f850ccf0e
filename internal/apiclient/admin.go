package apiclient

import (
	"context"
	"net/url"

	"github.com/example/rideflow/internal/models"
)

type usersEnvelope struct {
	Users []models.Identity `json:"users"`
}

func (e *usersEnvelope) Prune() []error {
	kept := e.Users[:0:0]
	var dropped []error
	for _, u := range e.Users {
		if err := u.Validate(); err != nil {
			dropped = append(dropped, err)
			continue
		}
		kept = append(kept, u)
	}
	e.Users = kept
	return dropped
}

func (c *Client) AdminAnalytics(ctx context.Context) (models.AdminStats, error) {
	var out models.AdminStats
	err := c.Get(ctx, "/admin/analytics", &out)
	return out, err
}

func (c *Client) Users(ctx context.Context) ([]models.Identity, error) {
	var out usersEnvelope
	err := c.Get(ctx, "/admin/users", &out)
	return out.Users, err
}

func (c *Client) SetUserStatus(ctx context.Context, id string, status models.UserStatus) error {
	body := struct {
		Status models.UserStatus `json:"status"`
	}{status}
	return c.Patch(ctx, "/admin/users/"+url.PathEscape(id), body, nil)
}

// AdminRides lists every ride for oversight.
func (c *Client) AdminRides(ctx context.Context) ([]models.Ride, error) {
	var out ridesEnvelope
	err := c.Get(ctx, "/admin/rides", &out)
	return out.Rides, err
}
