package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/fixtures"
	"github.com/example/rideflow/internal/models"
)

func exerciseArchive(t *testing.T, a RideArchive, owner string) {
	t.Helper()
	ctx := context.Background()
	g := fixtures.New(21)
	rides := g.Rides(10)

	n, err := a.SaveRides(ctx, owner, rides)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// re-archiving replaces instead of duplicating
	changed := rides[3]
	changed.Status = models.RideCancelled
	_, err = a.SaveRides(ctx, owner, []models.Ride{changed})
	require.NoError(t, err)

	got, err := a.ListRides(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].RequestedAt.Before(got[i-1].RequestedAt))
	}
	for _, r := range got {
		if r.ID == changed.ID {
			assert.Equal(t, models.RideCancelled, r.Status)
		}
	}

	other, err := a.ListRides(ctx, owner+"-other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryStore(t *testing.T) {
	exerciseArchive(t, NewMemoryStore(), "u1")
}

// Runs against a real database when RIDEFLOW_TEST_PG_DSN points at one with
// migrations applied.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("RIDEFLOW_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("RIDEFLOW_TEST_PG_DSN not set")
	}
	p, err := NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	defer p.Close()
	owner := "test-" + t.Name()
	_, _ = p.db.Exec(`DELETE FROM ride_archive WHERE owner_id LIKE $1`, owner+"%")
	exerciseArchive(t, p, owner)
}
