// Package fare quotes a ride locally from the published ride options. The
// API's /rides/fare/calculate remains authoritative; a local quote is what
// the rider sees before asking.
package fare

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/example/rideflow/internal/geo"
	"github.com/example/rideflow/internal/models"
)

const (
	// PromoCode grants PromoDiscount off the fare.
	PromoCode     = "RIDE20"
	PromoDiscount = 0.10

	// DefaultSpeedMps is about 28.8 km/h city speed.
	DefaultSpeedMps = 8.0
)

var ErrUnknownOption = errors.New("unknown ride option")

type Option struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	BaseFare      float64 `json:"baseFare"`
	PricePerMile  float64 `json:"pricePerMile"`
	Capacity      int     `json:"capacity"`
	ArrivalMinute int     `json:"estimatedArrivalMinutes"`
}

var Catalog = []Option{
	{ID: 1, Name: "Economy", BaseFare: 2.50, PricePerMile: 0.99, Capacity: 4, ArrivalMinute: 5},
	{ID: 2, Name: "Premium", BaseFare: 5.00, PricePerMile: 1.89, Capacity: 4, ArrivalMinute: 7},
	{ID: 3, Name: "XL Van", BaseFare: 3.50, PricePerMile: 1.49, Capacity: 6, ArrivalMinute: 10},
	{ID: 4, Name: "Express Pool", BaseFare: 1.50, PricePerMile: 0.69, Capacity: 4, ArrivalMinute: 3},
}

// Lookup finds an option by name (case-insensitive) or numeric id.
func Lookup(nameOrID string) (Option, error) {
	key := strings.TrimSpace(nameOrID)
	for _, o := range Catalog {
		if strings.EqualFold(o.Name, key) || fmt.Sprint(o.ID) == key {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("%w: %q", ErrUnknownOption, nameOrID)
}

type Quote struct {
	Option        string  `json:"option"`
	DistanceMiles float64 `json:"distanceMiles"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
	PromoApplied  bool    `json:"promoApplied"`
	ETAMinutes    float64 `json:"etaMinutes"`
}

// Price is base fare plus the per-mile rate times distance, less the promo
// discount when the code matches exactly.
func (o Option) Price(miles float64, promo string) Quote {
	q := Quote{Option: o.Name, DistanceMiles: round2(miles)}
	q.Subtotal = round2(o.BaseFare + o.PricePerMile*miles)
	if promo == PromoCode {
		q.PromoApplied = true
		q.Discount = round2(q.Subtotal * PromoDiscount)
	}
	q.Total = round2(q.Subtotal - q.Discount)
	return q
}

// Estimate quotes a trip between two points. speedMps <= 0 uses
// DefaultSpeedMps.
func Estimate(o Option, from, to models.Location, promo string, speedMps float64) Quote {
	q := o.Price(geo.Miles(from, to), promo)
	q.ETAMinutes = math.Round(EstimateSeconds(from, to, speedMps)/60*10) / 10
	return q
}

// Naive ETA: distance / speed_mps. The API owns real routing.
func EstimateSeconds(from, to models.Location, speedMps float64) float64 {
	if speedMps <= 0 {
		speedMps = DefaultSpeedMps
	}
	return geo.Distance(from, to) / speedMps
}

// FormatMinutes renders a duration the way the booking card does: "1h 5m"
// or "15m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
