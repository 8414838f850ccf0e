// Package lifecycle is the ride state machine:
//
//	requested -> accepted -> picked_up -> in_transit -> completed
//
// with cancelled reachable from every non-terminal state. Forward steps
// belong to the driver; cancellation is open to driver, rider and admin.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/example/rideflow/internal/models"
)

var ErrInvalidTransition = errors.New("invalid ride transition")

type Kind string

const (
	KindAdvance Kind = "advance"
	KindCancel  Kind = "cancel"
)

// Action is one button a screen may offer for a ride.
type Action struct {
	Label  string            `json:"label"`
	Target models.RideStatus `json:"target"`
	Kind   Kind              `json:"kind"`
}

type step struct {
	to    models.RideStatus
	label string
}

var forward = map[models.RideStatus]step{
	models.RideRequested: {models.RideAccepted, "Accept"},
	models.RideAccepted:  {models.RidePickedUp, "Picked Up"},
	models.RidePickedUp:  {models.RideInTransit, "In Transit"},
	models.RideInTransit: {models.RideCompleted, "Complete"},
}

var cancelAction = Action{Label: "Cancel", Target: models.RideCancelled, Kind: KindCancel}

func IsTerminal(s models.RideStatus) bool {
	return s == models.RideCompleted || s == models.RideCancelled
}

// Next returns the single forward step from s.
func Next(s models.RideStatus) (models.RideStatus, bool) {
	st, ok := forward[s]
	return st.to, ok
}

func canCancel(role models.Role) bool {
	return role == models.RoleDriver || role == models.RoleRider || role == models.RoleAdmin
}

// CanTransition reports whether role may move a ride from one status to
// another.
func CanTransition(role models.Role, from, to models.RideStatus) bool {
	if IsTerminal(from) || !from.Known() {
		return false
	}
	if to == models.RideCancelled {
		return canCancel(role)
	}
	next, ok := Next(from)
	return ok && next == to && role == models.RoleDriver
}

// Actions lists, in display order, exactly the actions role may take on a
// ride in status s: the next forward step (drivers only) followed by Cancel.
func Actions(role models.Role, s models.RideStatus) []Action {
	if IsTerminal(s) || !s.Known() {
		return nil
	}
	var out []Action
	if role == models.RoleDriver {
		st := forward[s]
		out = append(out, Action{Label: st.label, Target: st.to, Kind: KindAdvance})
	}
	if canCancel(role) {
		out = append(out, cancelAction)
	}
	return out
}

// Find resolves a requested target to one of the offered actions. Asking
// for anything else is a caller error.
func Find(role models.Role, s models.RideStatus, target models.RideStatus) (Action, error) {
	for _, a := range Actions(role, s) {
		if a.Target == target {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %s cannot move ride from %s to %s", ErrInvalidTransition, role, s, target)
}
