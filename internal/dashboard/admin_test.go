package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/listing"
	"github.com/example/rideflow/internal/models"
)

func TestAdminUsersSearchAndStatus(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	status := "active"
	h.handle("GET", "/admin/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"users": []any{
			map[string]any{"_id": "u1", "name": "Ayesha Khan", "email": "ayesha@example.com", "role": "rider", "status": status},
			map[string]any{"_id": "u2", "name": "Bob", "email": "bob@khan.dev", "role": "driver", "status": "active"},
			map[string]any{"_id": "u3", "name": "Carol", "email": "carol@example.com", "role": "admin", "status": "active"},
		}})
	})
	h.handle("PATCH", "/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		status = decode(t, r)["status"].(string)
		writeJSON(w, 200, map[string]any{})
	})
	a := NewAdmin(h.deps)

	page, err := a.Users(context.Background(), "KHAN", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	require.NoError(t, a.SetUserStatus(context.Background(), "u1", models.UserBlocked))
	assert.Equal(t, []string{"User status updated"}, h.texts())
	assert.Equal(t, 2, h.called("GET", "/admin/users"))
	assert.Equal(t, ingest.UserStatusSet, h.events.Events()[0].Type)

	page, err = a.Users(context.Background(), "ayesha", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.UserBlocked, page.Items[0].Status)

	assert.Error(t, a.SetUserStatus(context.Background(), "u1", "banished"))
}

func TestAdminStatsAndOversight(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	h.handle("GET", "/admin/analytics", reply(200, map[string]any{"totalRides": 3, "completedRides": 1, "activeDrivers": 2, "totalEarnings": 25.0}))
	withNames := func(id string, s models.RideStatus, driver, rider string) map[string]any {
		r := rideJSON(id, s)
		r["driver"] = map[string]any{"_id": "d-" + id, "name": driver}
		r["rider"] = map[string]any{"_id": "r-" + id, "name": rider}
		return r
	}
	h.handle("GET", "/admin/rides", reply(200, map[string]any{"rides": []any{
		withNames("a", models.RideCompleted, "Karim", "Ayesha"),
		withNames("b", models.RideCancelled, "Rahim", "Bob"),
		withNames("c", models.RideInTransit, "Karima", "Carol"),
	}}))
	a := NewAdmin(h.deps)

	sv, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sv.Stats.ActiveDrivers)
	assert.Equal(t, 3, sv.Summary.TotalRides)
	assert.Equal(t, 1, sv.Summary.Completed)

	rows, err := a.Rides(context.Background(), listing.OversightFilter{Driver: "karim"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Ride.ID)
	assert.Empty(t, rows[0].Actions)
	assert.Equal(t, "Cancel", rows[1].Actions[0].Label)

	rows, err = a.Rides(context.Background(), listing.OversightFilter{Status: "cancelled", Rider: "bo"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].Ride.ID)
}

func TestAdminStatsFailureNotifies(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	h.handle("GET", "/admin/analytics", reply(500, nil))
	a := NewAdmin(h.deps)
	_, err := a.Stats(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to fetch admin stats"}, h.texts())
}
