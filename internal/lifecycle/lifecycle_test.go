package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/models"
)

func labels(as []Action) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Label)
	}
	return out
}

func TestDriverActions(t *testing.T) {
	cases := map[models.RideStatus][]string{
		models.RideRequested: {"Accept", "Cancel"},
		models.RideAccepted:  {"Picked Up", "Cancel"},
		models.RidePickedUp:  {"In Transit", "Cancel"},
		models.RideInTransit: {"Complete", "Cancel"},
		models.RideCompleted: {},
		models.RideCancelled: {},
	}
	for status, want := range cases {
		assert.Equal(t, want, labels(Actions(models.RoleDriver, status)), "status %s", status)
	}
}

func TestRiderAndAdminOnlyCancel(t *testing.T) {
	for _, role := range []models.Role{models.RoleRider, models.RoleAdmin} {
		for _, s := range models.RideStatuses {
			got := Actions(role, s)
			if IsTerminal(s) {
				assert.Empty(t, got)
				continue
			}
			assert.Equal(t, []Action{cancelAction}, got, "%s at %s", role, s)
		}
	}
	assert.Empty(t, Actions(models.Role("guest"), models.RideAccepted))
}

// Every offered action is a legal transition and every legal transition is
// offered.
func TestActionsMatchTransitionTable(t *testing.T) {
	roles := append([]models.Role{"guest"}, models.Roles...)
	for _, role := range roles {
		for _, from := range models.RideStatuses {
			offered := map[models.RideStatus]bool{}
			for _, a := range Actions(role, from) {
				offered[a.Target] = true
			}
			for _, to := range models.RideStatuses {
				assert.Equal(t, CanTransition(role, from, to), offered[to], "%s: %s -> %s", role, from, to)
			}
		}
	}
}

func TestAcceptedScenario(t *testing.T) {
	acts := Actions(models.RoleDriver, models.RideAccepted)
	require.Len(t, acts, 2)
	assert.Equal(t, models.RidePickedUp, acts[0].Target)

	a, err := Find(models.RoleDriver, models.RideAccepted, models.RidePickedUp)
	require.NoError(t, err)
	assert.Equal(t, KindAdvance, a.Kind)

	_, err = Find(models.RoleDriver, models.RideAccepted, models.RideCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// after the server confirms picked_up the button set moves on
	assert.Equal(t, []string{"In Transit", "Cancel"}, labels(Actions(models.RoleDriver, models.RidePickedUp)))
}

func TestNext(t *testing.T) {
	s := models.RideRequested
	var path []models.RideStatus
	for {
		n, ok := Next(s)
		if !ok {
			break
		}
		path = append(path, n)
		s = n
	}
	assert.Equal(t, []models.RideStatus{models.RideAccepted, models.RidePickedUp, models.RideInTransit, models.RideCompleted}, path)
	_, ok := Next(models.RideCancelled)
	assert.False(t, ok)
}

func TestTimeline(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	at := func(m int) *time.Time { v := t0.Add(time.Duration(m) * time.Minute); return &v }

	ok := models.Ride{ID: "r1", Status: models.RideCompleted, RequestedAt: t0, AcceptedAt: at(2), StartedAt: at(5), CompletedAt: at(20)}
	require.NoError(t, CheckTimeline(ok))
	assert.Equal(t, []string{"Requested", "Accepted", "Started", "Completed"}, eventLabels(Timeline(ok)))

	backwards := ok
	backwards.StartedAt = at(1)
	assert.Error(t, CheckTimeline(backwards))

	noStamp := models.Ride{ID: "r2", Status: models.RideCancelled, RequestedAt: t0}
	assert.Error(t, CheckTimeline(noStamp))

	stray := models.Ride{ID: "r3", Status: models.RideAccepted, RequestedAt: t0, AcceptedAt: at(1), CompletedAt: at(3)}
	assert.Error(t, CheckTimeline(stray))

	cancelled := models.Ride{ID: "r4", Status: models.RideCancelled, RequestedAt: t0, CancelledAt: at(1)}
	assert.NoError(t, CheckTimeline(cancelled))
}

func eventLabels(es []Event) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Label)
	}
	return out
}
