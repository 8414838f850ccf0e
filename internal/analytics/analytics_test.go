package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/fixtures"
	"github.com/example/rideflow/internal/models"
)

func ride(id string, month time.Month, fare float64, dest string, s models.RideStatus) models.Ride {
	r := models.Ride{ID: id, Fare: fare, Status: s, Destination: models.Location{Address: dest}}
	if month != 0 {
		r.RequestedAt = time.Date(2025, month, 10, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func TestMonthBucketsConserveTotals(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rides := fixtures.New(seed).Rides(80)
		rides = append(rides, ride("nodate", 0, 9.5, "", models.RideRequested))

		var n int
		for _, c := range MonthlyCounts(rides) {
			n += c.Count
		}
		assert.Equal(t, len(rides), n)

		var want, got float64
		for _, r := range rides {
			want += r.Fare
		}
		for _, s := range MonthlyFares(rides) {
			got += s.Total
		}
		assert.InDelta(t, want, got, 1e-6)

		n = 0
		for _, c := range StatusCounts(rides) {
			n += c.Count
		}
		assert.Equal(t, len(rides), n)
	}
}

func TestBucketsInFirstSeenOrder(t *testing.T) {
	rides := []models.Ride{
		ride("1", time.March, 10, "Airport", models.RideCompleted),
		ride("2", time.January, 5, "Mall", models.RideCancelled),
		ride("3", time.March, 7, "Mall", models.RideCompleted),
		ride("4", 0, 1, "", models.RideRequested),
	}
	assert.Equal(t, []Count{{"Mar", 2}, {"Jan", 1}, {Unknown, 1}}, MonthlyCounts(rides))
	assert.Equal(t, []Sum{{"Mar", 17}, {"Jan", 5}, {Unknown, 1}}, MonthlyFares(rides))
	assert.Equal(t, []Count{{"completed", 2}, {"cancelled", 1}, {"requested", 1}}, StatusCounts(rides))
}

func TestTopDestinationsTiesKeepFirstSeen(t *testing.T) {
	var rides []models.Ride
	for i, d := range []string{"B", "A", "C", "A", "D", "E", "F", "B", "G"} {
		rides = append(rides, ride(string(rune('a'+i)), time.May, 1, d, models.RideCompleted))
	}
	got := TopDestinations(rides, DefaultTop)
	require.Len(t, got, 5)
	assert.Equal(t, []Count{{"B", 2}, {"A", 2}, {"C", 1}, {"D", 1}, {"E", 1}}, got)

	// same input, same output
	assert.Equal(t, got, TopDestinations(rides, DefaultTop))
}

func TestDestinationKeyFallbacks(t *testing.T) {
	assert.Equal(t, "Gulshan 1", DestinationKey(models.Ride{Destination: models.Location{Address: "Gulshan 1", Name: "x"}}))
	assert.Equal(t, "Destination Point", DestinationKey(models.Ride{Destination: models.Location{Name: "Destination Point"}}))
	assert.Equal(t, Unknown, DestinationKey(models.Ride{}))
}

func TestSummarize(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalRides)
	assert.Empty(t, s.MonthlyRides)
	assert.NotNil(t, s.MonthlyFares)

	rides := fixtures.New(9).Rides(30)
	s = Summarize(rides)
	assert.Equal(t, 30, s.TotalRides)
	completed := 0
	for _, r := range rides {
		if r.Status == models.RideCompleted {
			completed++
		}
	}
	assert.Equal(t, completed, s.Completed)
	assert.LessOrEqual(t, len(s.TopDestinations), DefaultTop)
	assert.False(t, math.IsNaN(s.TotalFare))
}

func TestFarePoints(t *testing.T) {
	pts := FarePoints([]models.Ride{ride("1", time.June, 12.5, "", models.RideCompleted), ride("2", 0, 3, "", models.RideCompleted)})
	assert.Equal(t, []Point{{"2025-06-10", 12.5}, {Unknown, 3}}, pts)
}
