// Package analytics derives dashboard chart series from ride lists. Every
// function is pure and order stable: buckets appear in the order their key
// is first seen.
package analytics

import (
	"sort"

	"github.com/example/rideflow/internal/models"
)

const (
	// Unknown is the bucket for rides missing the bucketed attribute.
	Unknown = "N/A"
	// DefaultTop is the number of destinations shown on dashboards.
	DefaultTop = 5
)

type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type Sum struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

func monthKey(r models.Ride) string {
	if r.RequestedAt.IsZero() {
		return Unknown
	}
	return r.RequestedAt.Format("Jan")
}

// DestinationKey is the label a ride's destination is grouped under.
func DestinationKey(r models.Ride) string {
	switch {
	case r.Destination.Address != "":
		return r.Destination.Address
	case r.Destination.Name != "":
		return r.Destination.Name
	}
	return Unknown
}

func counts(rides []models.Ride, key func(models.Ride) string) []Count {
	idx := map[string]int{}
	var out []Count
	for _, r := range rides {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count{Key: k})
		}
		out[i].Count++
	}
	if out == nil {
		out = []Count{}
	}
	return out
}

func MonthlyCounts(rides []models.Ride) []Count {
	return counts(rides, monthKey)
}

func MonthlyFares(rides []models.Ride) []Sum {
	idx := map[string]int{}
	out := []Sum{}
	for _, r := range rides {
		k := monthKey(r)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Sum{Key: k})
		}
		out[i].Total += r.Fare
	}
	return out
}

// StatusCounts has one bucket per status present in rides.
func StatusCounts(rides []models.Ride) []Count {
	return counts(rides, func(r models.Ride) string { return string(r.Status) })
}

// TopDestinations returns the n most frequent destinations. Ties keep
// first-seen order.
func TopDestinations(rides []models.Ride, n int) []Count {
	all := counts(rides, DestinationKey)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Count > all[j].Count })
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

type Summary struct {
	TotalRides      int     `json:"totalRides"`
	Completed       int     `json:"completed"`
	TotalFare       float64 `json:"totalFare"`
	MonthlyRides    []Count `json:"monthlyRides"`
	MonthlyFares    []Sum   `json:"monthlyFares"`
	ByStatus        []Count `json:"byStatus"`
	TopDestinations []Count `json:"topDestinations"`
}

func Summarize(rides []models.Ride) Summary {
	s := Summary{
		TotalRides:      len(rides),
		MonthlyRides:    MonthlyCounts(rides),
		MonthlyFares:    MonthlyFares(rides),
		ByStatus:        StatusCounts(rides),
		TopDestinations: TopDestinations(rides, DefaultTop),
	}
	for _, r := range rides {
		s.TotalFare += r.Fare
		if r.Status == models.RideCompleted {
			s.Completed++
		}
	}
	return s
}

// Point is one bar of a per-ride chart.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// FarePoints charts each ride's fare labelled by its request date, in list
// order.
func FarePoints(rides []models.Ride) []Point {
	out := make([]Point, 0, len(rides))
	for _, r := range rides {
		label := Unknown
		if !r.RequestedAt.IsZero() {
			label = r.RequestedAt.Format("2006-01-02")
		}
		out = append(out, Point{Label: label, Value: r.Fare})
	}
	return out
}
