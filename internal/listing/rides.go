package listing

import (
	"strings"

	"github.com/example/rideflow/internal/models"
)

// Ride history status choices, as offered by the history screen.
const (
	HistoryAll        = "all"
	HistoryCompleted  = "completed"
	HistoryCancelled  = "cancelled"
	HistoryInProgress = "in progress"
	HistoryPending    = "pending"
)

var HistoryFilters = []string{HistoryAll, HistoryCompleted, HistoryCancelled, HistoryInProgress, HistoryPending}

// HistoryStatus matches the history screen's coarse status choices.
// "in progress" covers every started ride, "pending" one still waiting
// for a driver. Any other value matches the status ignoring case.
func HistoryStatus(choice string) Predicate[models.Ride] {
	choice = strings.ToLower(strings.TrimSpace(choice))
	switch choice {
	case "", HistoryAll:
		return nil
	case HistoryInProgress:
		return func(r models.Ride) bool {
			return r.Status == models.RideAccepted || r.Status == models.RidePickedUp || r.Status == models.RideInTransit
		}
	case HistoryPending:
		return func(r models.Ride) bool { return r.Status == models.RideRequested }
	}
	return func(r models.Ride) bool { return strings.EqualFold(string(r.Status), choice) }
}

func rideStatus(r models.Ride) models.RideStatus { return r.Status }

// PickupAddress searches the pickup address.
func PickupAddress(q string) Predicate[models.Ride] {
	return Contains(func(r models.Ride) string { return r.Pickup.Address }, q)
}

// RideStatusIs is an exact status match.
func RideStatusIs(s models.RideStatus) Predicate[models.Ride] {
	return Equals(rideStatus, s)
}

func DriverName(q string) Predicate[models.Ride] {
	return Contains(models.Ride.DriverName, q)
}

func RiderName(q string) Predicate[models.Ride] {
	return Contains(models.Ride.RiderName, q)
}

// UserSearch matches name or email.
func UserSearch(q string) Predicate[models.Identity] {
	return AnyOf(
		Contains(func(u models.Identity) string { return u.Name }, q),
		Contains(func(u models.Identity) string { return u.Email }, q),
	)
}

// OversightFilter is the admin ride table's filter bar.
type OversightFilter struct {
	Status string `json:"status"`
	Driver string `json:"driver"`
	Rider  string `json:"rider"`
}

func (f OversightFilter) Predicates() []Predicate[models.Ride] {
	return []Predicate[models.Ride]{
		RideStatusIs(models.RideStatus(f.Status)),
		DriverName(f.Driver),
		RiderName(f.Rider),
	}
}
