package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/models"
)

func TestPrice(t *testing.T) {
	eco, err := Lookup("economy")
	require.NoError(t, err)

	q := eco.Price(5.2, "")
	assert.InDelta(t, 7.65, q.Total, 1e-9) // 2.50 + 0.99*5.2
	assert.False(t, q.PromoApplied)

	q = eco.Price(5.2, PromoCode)
	assert.True(t, q.PromoApplied)
	assert.InDelta(t, 0.77, q.Discount, 1e-9)
	assert.InDelta(t, 6.88, q.Total, 1e-9)

	// codes are case sensitive
	assert.False(t, eco.Price(5.2, "ride20").PromoApplied)
}

func TestLookup(t *testing.T) {
	o, err := Lookup("4")
	require.NoError(t, err)
	assert.Equal(t, "Express Pool", o.Name)

	_, err = Lookup("helicopter")
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestEstimate(t *testing.T) {
	prem, _ := Lookup("Premium")
	from := models.Location{Lat: 0, Lng: 0}
	to := models.Location{Lat: 0.1, Lng: 0}
	q := Estimate(prem, from, to, "", 0)
	assert.InDelta(t, 6.91, q.DistanceMiles, 0.02)
	assert.InDelta(t, 5.0+1.89*q.DistanceMiles, q.Subtotal, 0.02)
	// ~11.1 km at 8 m/s
	assert.InDelta(t, 23.2, q.ETAMinutes, 0.2)

	assert.Zero(t, Estimate(prem, from, from, "", 10).ETAMinutes)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "15m", FormatMinutes(15))
	assert.Equal(t, "1h 5m", FormatMinutes(65))
	assert.Equal(t, "0m", FormatMinutes(-3))
}
