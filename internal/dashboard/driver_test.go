package dashboard

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/lifecycle"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/validate"
)

func labelsOf(av ActiveView) []string {
	out := make([]string, 0, len(av.Actions))
	for _, a := range av.Actions {
		out = append(out, a.Label)
	}
	return out
}

func TestDriverAdvancesActiveRide(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("GET", "/driver/active", reply(200, map[string]any{"ride": rideJSON("r1", models.RideAccepted)}))
	h.handle("PATCH", "/driver/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		body := decode(t, r)
		writeJSON(w, 200, map[string]any{"ride": rideJSON("r1", models.RideStatus(body["status"].(string)))})
	})
	d := NewDriver(h.deps)

	av, err := d.ActiveRide(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Picked Up", "Cancel Ride"}, labelsOf(av))

	ride, err := d.Advance(context.Background(), models.RidePickedUp)
	require.NoError(t, err)
	assert.Equal(t, models.RidePickedUp, ride.Status)
	assert.Equal(t, []string{"In Transit", "Cancel Ride"}, labelsOf(d.ActiveState().Data))
	assert.Equal(t, []string{"Ride status updated!"}, h.texts())

	ev := h.events.Events()
	require.Len(t, ev, 1)
	assert.Equal(t, ingest.RideTransition, ev[0].Type)
	assert.Equal(t, "accepted", ev[0].From)
	assert.Equal(t, "picked_up", ev[0].To)
	assert.Equal(t, "driver", ev[0].Role)
}

func TestDriverAdvanceRejectsUnofferedTarget(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("GET", "/driver/active", reply(200, map[string]any{"ride": rideJSON("r1", models.RideAccepted)}))
	d := NewDriver(h.deps)

	_, err := d.Advance(context.Background(), models.RideCompleted)
	assert.ErrorIs(t, err, ErrNoActiveRide)

	_, err = d.ActiveRide(context.Background())
	require.NoError(t, err)
	_, err = d.Advance(context.Background(), models.RideCompleted)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Zero(t, h.called("PATCH", "/driver/status/r1"))
}

func TestDriverFailedTransitionKeepsRide(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("GET", "/driver/active", reply(200, map[string]any{"ride": rideJSON("r1", models.RideInTransit)}))
	h.handle("PATCH", "/driver/status/{id}", reply(409, map[string]string{"message": "Ride already completed"}))
	d := NewDriver(h.deps)
	_, err := d.ActiveRide(context.Background())
	require.NoError(t, err)

	_, err = d.Advance(context.Background(), models.RideCompleted)
	require.Error(t, err)
	assert.Equal(t, []string{"Ride already completed"}, h.texts())
	st := d.ActiveState()
	require.NotNil(t, st.Data.Ride)
	assert.Equal(t, models.RideInTransit, st.Data.Ride.Status)
	assert.Empty(t, h.events.Events())
}

func TestDriverCancelClearsActiveRide(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("GET", "/driver/active", reply(200, map[string]any{"ride": rideJSON("r1", models.RidePickedUp)}))
	h.handle("PATCH", "/driver/status/{id}", reply(200, map[string]any{}))
	d := NewDriver(h.deps)
	_, err := d.ActiveRide(context.Background())
	require.NoError(t, err)

	ride, err := d.Advance(context.Background(), models.RideCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.RideCancelled, ride.Status)
	assert.Nil(t, d.ActiveState().Data.Ride)
	assert.Equal(t, []string{"Ride cancelled"}, h.texts())
	assert.Equal(t, ingest.RideCancelled, h.events.Events()[0].Type)
}

func TestDriverSecondActionWhileInFlightIsBusy(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("GET", "/driver/active", reply(200, map[string]any{"ride": rideJSON("r1", models.RideAccepted)}))
	entered := make(chan struct{})
	release := make(chan struct{})
	h.handle("PATCH", "/driver/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, 200, map[string]any{"ride": rideJSON("r1", models.RidePickedUp)})
	})
	d := NewDriver(h.deps)
	_, err := d.ActiveRide(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := d.Advance(context.Background(), models.RidePickedUp)
		assert.NoError(t, err)
	}()
	<-entered
	assert.True(t, d.Busy("r1"))
	_, err = d.Advance(context.Background(), models.RideCancelled)
	assert.ErrorIs(t, err, ErrBusy)
	close(release)
	wg.Wait()
	assert.Equal(t, 1, h.called("PATCH", "/driver/status/r1"))
}

func TestDriverUnauthorizedExpiresSession(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("GET", "/driver/earnings", reply(401, map[string]string{"message": "jwt expired"}))
	d := NewDriver(h.deps)

	_, err := d.Earnings(context.Background(), "", 1)
	require.Error(t, err)
	assert.Equal(t, 1, h.session.expired)
	assert.Empty(t, h.texts())
}

func TestDriverAcceptAndRequests(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("GET", "/driver/profile", reply(200, map[string]any{"name": "Karim", "availabilityStatus": "online"}))
	h.handle("GET", "/driver/available", reply(200, map[string]any{"rides": []any{
		rideJSON("r1", models.RideRequested), rideJSON("r2", models.RideRequested),
	}}))
	h.handle("POST", "/driver/accept/{id}", func(w http.ResponseWriter, r *http.Request) {
		ride := rideJSON(mux.Vars(r)["id"], models.RideAccepted)
		writeJSON(w, 200, map[string]any{"ride": ride})
	})
	d := NewDriver(h.deps)

	av, err := d.Availability(context.Background())
	require.NoError(t, err)
	assert.True(t, av.Online)
	require.Len(t, av.Requests, 2)
	assert.Equal(t, "Accept", av.Requests[0].Actions[0].Label)

	ride, err := d.Accept(context.Background(), av.Requests[1].Ride)
	require.NoError(t, err)
	assert.Equal(t, models.RideAccepted, ride.Status)
	assert.Equal(t, "r2", d.ActiveState().Data.Ride.ID)
	assert.Equal(t, []string{"Ride accepted!"}, h.texts())
	assert.Equal(t, ingest.RideAccepted, h.events.Events()[0].Type)
}

func TestDriverSetAvailability(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	h.handle("POST", "/driver/availability", func(w http.ResponseWriter, r *http.Request) {
		body := decode(t, r)
		writeJSON(w, 200, map[string]any{"availabilityStatus": body["availabilityStatus"]})
	})
	d := NewDriver(h.deps)
	online, err := d.SetAvailability(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, online)
	assert.Equal(t, []string{"Availability updated!"}, h.texts())
}

func TestDriverEarnings(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	var rides []any
	for i, addr := range []string{"Banani 11", "Gulshan 2", "Banani 17", "Dhanmondi", "banani DOHS", "Uttara", "Banani 4"} {
		r := rideJSON("e"+string(rune('a'+i)), models.RideCompleted)
		r["pickupLocation"] = map[string]any{"lat": 1, "lng": 1, "address": addr}
		r["fare"] = 10.0
		rides = append(rides, r)
	}
	h.handle("GET", "/driver/earnings", reply(200, map[string]any{"rides": rides}))
	d := NewDriver(h.deps)

	ev, err := d.Earnings(context.Background(), "banani", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, ev.Rows.Total)
	assert.Len(t, ev.Rows.Items, 4)
	assert.InDelta(t, 40.0, ev.Total, 1e-9)
	assert.Len(t, ev.Points, 4)

	ev, err = d.Earnings(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ev.Rows.Page)
	assert.Len(t, ev.Rows.Items, 2)
}

func TestDriverPasswordValidation(t *testing.T) {
	h := newHarness(t, models.RoleDriver)
	d := NewDriver(h.deps)
	assert.Error(t, d.ChangePassword(context.Background(), validate.NewPasswordForm{}))
	assert.Equal(t, []string{"Enter new password"}, h.texts())
	assert.Zero(t, h.called("PATCH", "/driver/profile/password"))
}
