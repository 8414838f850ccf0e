package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/models"
)

// recorder is a fake API that remembers the last request it saw.
type recorder struct {
	auth   string
	reqID  string
	method string
	path   string
	body   map[string]any
}

func newFakeAPI(t *testing.T, rec *recorder, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.auth = r.Header.Get("Authorization")
		rec.reqID = r.Header.Get("X-Request-ID")
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.body = nil
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginThenBearerHeader(t *testing.T) {
	rec := &recorder{}
	c := newFakeAPI(t, rec, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, 200, map[string]any{"user": map[string]any{"_id": "u1", "email": "a@b.com", "role": "rider"}, "token": "t1"})
		default:
			writeJSON(w, 200, map[string]any{"rides": []any{}})
		}
	})
	ctx := context.Background()

	res, err := c.Login(ctx, "a@b.com", "secret")
	require.NoError(t, err)
	assert.Empty(t, rec.auth, "no token set yet")
	assert.Equal(t, "a@b.com", rec.body["email"])
	assert.Equal(t, "secret", rec.body["password"])
	assert.Equal(t, "t1", res.Token)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, models.RoleRider, res.User.Role)

	c.SetToken(res.Token)
	_, err = c.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", rec.auth)
	assert.NotEmpty(t, rec.reqID)

	c.ClearToken()
	_, err = c.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, rec.auth)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		kind    Kind
		message string
	}{
		{name: "4xx with message", status: 400, body: map[string]string{"message": "Invalid credentials"}, kind: KindClient, message: "Invalid credentials"},
		{name: "4xx error field", status: 409, body: map[string]string{"error": "ride already accepted"}, kind: KindClient, message: "ride already accepted"},
		{name: "5xx without body", status: 503, kind: KindServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.History(context.Background())
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, http.MethodGet, apiErr.Method)
			assert.Equal(t, "/rides/history", apiErr.Path)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	err := c.Get(context.Background(), "/admin/users", nil)
	assert.True(t, IsKind(err, KindNetwork))
	assert.Equal(t, "Login failed", Message(err, "Login failed"))
	assert.Equal(t, "No response from server. Please check your connection.", DetailMessage(err))
}

func TestMalformedResponses(t *testing.T) {
	t.Run("login with unknown role", func(t *testing.T) {
		c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]any{"user": map[string]any{"role": "pilot"}, "token": "t1"})
		})
		_, err := c.Login(context.Background(), "a@b.com", "x")
		assert.True(t, IsKind(err, KindMalformed))
		assert.Contains(t, err.Error(), `unknown role "pilot"`)
	})
	t.Run("login without token", func(t *testing.T) {
		c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]any{"user": map[string]any{"email": "a@b.com", "role": "rider"}})
		})
		_, err := c.Login(context.Background(), "a@b.com", "x")
		assert.True(t, IsKind(err, KindMalformed))
	})
	t.Run("empty body where user expected", func(t *testing.T) {
		c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		_, err := c.UpdateProfile(context.Background(), ProfileUpdate{Name: "Ana", Phone: "1"})
		assert.True(t, IsKind(err, KindMalformed))
	})
	t.Run("not json", func(t *testing.T) {
		c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
		_, err := c.AdminAnalytics(context.Background())
		assert.True(t, IsKind(err, KindMalformed))
	})
}

func TestRideListKeepsGoodRows(t *testing.T) {
	c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"rides": []any{
			map[string]any{"_id": "r1", "status": "completed"},
			map[string]any{"_id": "r2", "status": "pending"},
			map[string]any{"status": "requested"},
			map[string]any{"_id": "r4", "status": "requested", "fare": -3},
		}})
	})
	rides, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, "r1", rides[0].ID)
	assert.Equal(t, models.RideStatus("pending"), rides[1].Status)
}

func TestUserListKeepsGoodRows(t *testing.T) {
	c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"users": []any{
			map[string]any{"_id": "u1", "role": "driver"},
			map[string]any{"role": "rider"},
		}})
	})
	users, err := c.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}

func TestMalformedErrorShowsCause(t *testing.T) {
	c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	_, err := c.AdminAnalytics(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "200 OK")
	assert.Contains(t, err.Error(), "malformed")
}

func TestActiveRideNull(t *testing.T) {
	c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"ride": nil})
	})
	_, ok, err := c.ActiveRide(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateRideStatusBody(t *testing.T) {
	rec := &recorder{}
	c := newFakeAPI(t, rec, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"ride": map[string]any{"_id": "r9", "status": "picked_up", "driver": "d1"}})
	})
	ride, err := c.UpdateRideStatus(context.Background(), "r9", models.RidePickedUp)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Equal(t, "/api/driver/status/r9", rec.path)
	assert.Equal(t, "picked_up", rec.body["status"])
	assert.Equal(t, models.RidePickedUp, ride.Status)
	require.NotNil(t, ride.Driver)
	assert.Equal(t, "d1", ride.Driver.ID)
}

func TestIsUnauthorized(t *testing.T) {
	c := newFakeAPI(t, &recorder{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]string{"message": "jwt expired"})
	})
	_, err := c.Earnings(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "jwt expired", DetailMessage(err))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/driver/status/:id", routeLabel("/driver/status/64f1a2b3c4"))
	assert.Equal(t, "/rides/history", routeLabel("rides/history?x=1"))
	assert.Equal(t, "/driver/available", routeLabel("/driver/available"))
}
