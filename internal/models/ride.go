package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type RideStatus string

const (
	RideRequested RideStatus = "requested"
	RideAccepted  RideStatus = "accepted"
	RidePickedUp  RideStatus = "picked_up"
	RideInTransit RideStatus = "in_transit"
	RideCompleted RideStatus = "completed"
	RideCancelled RideStatus = "cancelled"
)

// RideStatuses in lifecycle order.
var RideStatuses = []RideStatus{RideRequested, RideAccepted, RidePickedUp, RideInTransit, RideCompleted, RideCancelled}

func (s RideStatus) Known() bool {
	for _, k := range RideStatuses {
		if s == k {
			return true
		}
	}
	return false
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
	Name    string  `json:"name,omitempty"`
}

// Party is the rider or driver attached to a ride. The API sends either a
// populated object or a bare id string.
type Party struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Car   string `json:"car,omitempty"`
}

func (p *Party) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*p = Party{ID: id}
		return nil
	}
	type plain Party
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Party(raw.plain)
	if p.ID == "" {
		p.ID = raw.MongoID
	}
	return nil
}

type Ride struct {
	ID          string     `json:"id"`
	Pickup      Location   `json:"pickupLocation"`
	Destination Location   `json:"destinationLocation"`
	Fare        float64    `json:"fare"`
	Status      RideStatus `json:"status"`
	Driver      *Party     `json:"driver,omitempty"`
	Rider       *Party     `json:"rider,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

func (r *Ride) UnmarshalJSON(b []byte) error {
	type plain Ride
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Ride(raw.plain)
	if r.ID == "" {
		r.ID = raw.MongoID
	}
	return nil
}

// Validate checks the shape of a ride received from the API. A status
// outside the known set passes; such a ride is listed but offers no actions.
func (r Ride) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("ride without id"))
	}
	if r.Status == "" {
		errs = append(errs, fmt.Errorf("ride %s: missing status", r.ID))
	}
	if r.Fare < 0 {
		errs = append(errs, fmt.Errorf("ride %s: negative fare", r.ID))
	}
	return errors.Join(errs...)
}

func (r Ride) DriverName() string {
	if r.Driver == nil {
		return ""
	}
	return r.Driver.Name
}

func (r Ride) RiderName() string {
	if r.Rider == nil {
		return ""
	}
	return r.Rider.Name
}

// PruneRides keeps the rides that validate, in order, and returns one error
// per dropped row.
func PruneRides(rides []Ride) ([]Ride, []error) {
	kept := rides[:0:0]
	var dropped []error
	for _, r := range rides {
		if err := r.Validate(); err != nil {
			dropped = append(dropped, err)
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}
