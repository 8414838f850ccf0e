package lifecycle

import (
	"fmt"
	"time"

	"github.com/example/rideflow/internal/models"
)

// Event is one stamped entry of a ride's timeline.
type Event struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// Timeline returns the stamped transitions of r in lifecycle order. Unset
// timestamps are skipped.
func Timeline(r models.Ride) []Event {
	out := make([]Event, 0, 5)
	if !r.RequestedAt.IsZero() {
		out = append(out, Event{"Requested", r.RequestedAt})
	}
	for _, e := range []struct {
		label string
		at    *time.Time
	}{
		{"Accepted", r.AcceptedAt},
		{"Started", r.StartedAt},
		{"Completed", r.CompletedAt},
		{"Cancelled", r.CancelledAt},
	} {
		if e.at != nil && !e.at.IsZero() {
			out = append(out, Event{e.label, *e.at})
		}
	}
	return out
}

// CheckTimeline verifies that the timestamps of r were assigned in
// transition order and agree with its status.
func CheckTimeline(r models.Ride) error {
	events := Timeline(r)
	for i := 1; i < len(events); i++ {
		if events[i].At.Before(events[i-1].At) {
			return fmt.Errorf("ride %s: %s at %s precedes %s", r.ID, events[i].Label, events[i].At.Format(time.RFC3339), events[i-1].Label)
		}
	}
	if r.CompletedAt != nil && r.CancelledAt != nil {
		return fmt.Errorf("ride %s: both completed and cancelled", r.ID)
	}
	switch r.Status {
	case models.RideCompleted:
		if r.CompletedAt == nil {
			return fmt.Errorf("ride %s: completed without completion time", r.ID)
		}
	case models.RideCancelled:
		if r.CancelledAt == nil {
			return fmt.Errorf("ride %s: cancelled without cancellation time", r.ID)
		}
	default:
		if r.CompletedAt != nil || r.CancelledAt != nil {
			return fmt.Errorf("ride %s: status %s carries a terminal timestamp", r.ID, r.Status)
		}
	}
	return nil
}
