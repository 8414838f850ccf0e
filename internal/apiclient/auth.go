package apiclient

import (
	"context"

	"github.com/example/rideflow/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  models.Identity `json:"user"`
	Token string          `json:"token"`
}

func (r *LoginResponse) Validate() error {
	if r.Token == "" {
		return errMissing("token")
	}
	return r.User.ValidateRole()
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone,omitempty"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userEnvelope struct {
	User *models.Identity `json:"user"`
}

func (e *userEnvelope) Validate() error {
	if e.User == nil {
		return errMissing("user")
	}
	return e.User.Validate()
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.Post(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Post(ctx, "/auth/register", req, nil)
}

// UpdateProfile returns the identity as confirmed by the server.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (models.Identity, error) {
	var out userEnvelope
	if err := c.Put(ctx, "/auth/update-profile", req, &out); err != nil {
		return models.Identity{}, err
	}
	return *out.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, req PasswordChange) error {
	return c.Put(ctx, "/auth/change-password", req, nil)
}
