package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/geo"
	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/lifecycle"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

func twelveRides() []any {
	var out []any
	for i := 0; i < 12; i++ {
		s := models.RideRequested
		if i%4 == 1 {
			s = models.RideCompleted
		}
		out = append(out, rideJSON("h"+string(rune('a'+i)), s))
	}
	return out
}

func TestRiderHistoryFiltersAndPages(t *testing.T) {
	h := newHarness(t, models.RoleRider)
	h.handle("GET", "/rides/history", reply(200, map[string]any{"rides": twelveRides()}))
	r := NewRider(h.deps)

	hv, err := r.History(context.Background(), "completed", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, hv.Rows.TotalPages)
	require.Len(t, hv.Rows.Items, 3)
	assert.Equal(t, "hb", hv.Rows.Items[0].Ride.ID)
	assert.Equal(t, "hf", hv.Rows.Items[1].Ride.ID)
	assert.Equal(t, "hj", hv.Rows.Items[2].Ride.ID)
	assert.Empty(t, hv.Rows.Items[0].Actions)
	assert.Equal(t, 3, hv.Showing)
	assert.Equal(t, 12, hv.Total)

	hv, err = r.History(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, hv.Rows.TotalPages)
	assert.Len(t, hv.Rows.Items, 2)
}

func TestRiderHistoryFullViewError(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   any
		want   string
	}{
		{"server message", 400, map[string]string{"message": "Rider not found"}, "Rider not found"},
		{"server error without body", 500, nil, "Server Error: 500"},
		{"client error without body", 404, nil, "Failed to fetch ride history"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, models.RoleRider)
			h.handle("GET", "/rides/history", reply(tc.status, tc.body))
			r := NewRider(h.deps)
			hv, err := r.History(context.Background(), "all", 1)
			require.Error(t, err)
			assert.Equal(t, tc.want, hv.Error)
			assert.Empty(t, h.texts())
		})
	}
}

func TestRiderDetails(t *testing.T) {
	h := newHarness(t, models.RoleRider)
	h.handle("GET", "/rides/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rides/history/missing" {
			writeJSON(w, 200, map[string]any{"ride": nil})
			return
		}
		ride := rideJSON("r7", models.RideAccepted)
		ride["acceptedAt"] = "2025-05-01T09:03:00Z"
		writeJSON(w, 200, map[string]any{"ride": ride})
	})
	r := NewRider(h.deps)

	dv, err := r.Details(context.Background(), " ")
	assert.ErrorIs(t, err, ErrRideNotFound)
	assert.Equal(t, "Invalid ride ID.", dv.Error)

	dv, err = r.Details(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRideNotFound)
	assert.Equal(t, "Ride not found.", dv.Error)

	dv, err = r.Details(context.Background(), "r7")
	require.NoError(t, err)
	assert.Equal(t, []lifecycle.Action{{Label: "Cancel", Target: models.RideCancelled, Kind: lifecycle.KindCancel}}, dv.Actions)
	require.Len(t, dv.Timeline, 2)
	assert.Equal(t, "Accepted", dv.Timeline[1].Label)
}

func TestRiderCancel(t *testing.T) {
	h := newHarness(t, models.RoleRider)
	h.handle("PATCH", "/rides/cancel/{id}", reply(200, map[string]any{"ride": rideJSON("r1", models.RideCancelled)}))
	r := NewRider(h.deps)

	done := models.Ride{ID: "r0", Status: models.RideCompleted}
	_, err := r.Cancel(context.Background(), done)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Zero(t, h.called("PATCH", "/rides/cancel/r0"))

	got, err := r.Cancel(context.Background(), models.Ride{ID: "r1", Status: models.RideRequested})
	require.NoError(t, err)
	assert.Equal(t, models.RideCancelled, got.Status)
	assert.Equal(t, []string{"Ride cancelled"}, h.texts())
	assert.Equal(t, ingest.RideCancelled, h.events.Events()[0].Type)
	assert.Equal(t, "rider", h.events.Events()[0].Role)
}

func TestRiderRequestRide(t *testing.T) {
	h := newHarness(t, models.RoleRider)
	var sent map[string]any
	h.handle("POST", "/rides/request", func(w http.ResponseWriter, r *http.Request) {
		sent = decode(t, r)
		writeJSON(w, 201, map[string]any{"ride": rideJSON("new1", models.RideRequested)})
	})
	r := NewRider(h.deps)

	_, err := r.RequestRide(context.Background(), validate.RideForm{Pickup: validate.PointForm{Lat: "23.7"}})
	require.Error(t, err)
	assert.Equal(t, []string{"Please enter all pickup and destination details!"}, h.texts())
	assert.Zero(t, h.called("POST", "/rides/request"))

	ride, err := r.RequestRide(context.Background(), validate.RideForm{
		Pickup:      validate.PointForm{Lat: "23.78", Lng: "90.41"},
		Destination: validate.PointForm{Name: "Airport", Lat: "23.84", Lng: "90.40"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new1", ride.ID)
	pickup := sent["pickupLocation"].(map[string]any)
	assert.Equal(t, "Pickup Point", pickup["name"])
	assert.Equal(t, "Unknown", pickup["address"])
	assert.Equal(t, []string{"Ride requested successfully!"}, h.texts())
	assert.Equal(t, ingest.RideRequested, h.events.Events()[0].Type)
}

func TestRiderQuoteFallsBackToLocal(t *testing.T) {
	h := newHarness(t, models.RoleRider)
	h.handle("POST", "/rides/fare/calculate", reply(503, nil))
	r := NewRider(h.deps)
	form := validate.RideForm{
		Pickup:      validate.PointForm{Lat: "0", Lng: "0"},
		Destination: validate.PointForm{Lat: "0.1", Lng: "0"},
	}
	qv, err := r.Quote(context.Background(), form, "Economy", "RIDE20")
	require.NoError(t, err)
	assert.Nil(t, qv.Server)
	assert.True(t, qv.Local.PromoApplied)
	assert.Greater(t, qv.Local.Total, 0.0)
	assert.Empty(t, h.texts())
}

func TestRiderNearbyDriversUsesIndex(t *testing.T) {
	h := newHarness(t, models.RoleRider)
	h.handle("POST", "/rides/nearby-drivers", reply(200, map[string]any{"drivers": []any{
		map[string]any{"id": "d1", "name": "Far", "location": map[string]any{"lat": 23.90, "lng": 90.40}},
		map[string]any{"id": "d2", "name": "Near", "location": map[string]any{"lat": 23.781, "lng": 90.40}},
	}}))
	h.deps.Geo = geo.NewMemoryIndex(0)
	r := NewRider(h.deps)

	got, err := r.NearbyDrivers(context.Background(), 23.78, 90.40, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d2", got[0].ID)

	_, err = r.NearbyDrivers(context.Background(), 123, 0, 1)
	assert.Error(t, err)
}

func TestRiderProfileUpdatesSession(t *testing.T) {
	h := newHarness(t, models.RoleRider)
	h.handle("PUT", "/auth/update-profile", reply(200, map[string]any{"user": map[string]any{
		"_id": "u1", "name": "New Name", "email": "a@b.com", "phone": "017", "role": "rider",
	}}))
	h.handle("PUT", "/auth/change-password", reply(400, map[string]string{"message": "Current password is incorrect"}))
	r := NewRider(h.deps)

	_, err := r.UpdateProfile(context.Background(), validate.ProfileForm{Name: "", Phone: ""})
	require.Error(t, err)
	assert.Equal(t, []string{"Name and Phone cannot be empty."}, h.texts())

	id, err := r.UpdateProfile(context.Background(), validate.ProfileForm{Name: "New Name", Phone: "017"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", id.Name)
	cur, _ := h.session.Identity()
	assert.Equal(t, "New Name", cur.Name)
	assert.Equal(t, []string{"Profile updated successfully!"}, h.texts())

	err = r.ChangePassword(context.Background(), validate.PasswordForm{Current: "a", New: "b", Confirm: "b"})
	require.Error(t, err)
	assert.Equal(t, []string{"Current password is incorrect"}, h.texts())
}
