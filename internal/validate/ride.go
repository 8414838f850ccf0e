package validate

import (
	"strconv"
	"strings"

	"github.com/example/rideflow/internal/models"
)

const (
	DefaultPickupName      = "Pickup Point"
	DefaultDestinationName = "Destination Point"
	DefaultAddress         = "Unknown"
)

// PointForm is one end of a ride as typed by the rider. Coordinates stay
// text until validated so an empty field can be told apart from zero.
type PointForm struct {
	Name    string
	Address string
	Lat     string
	Lng     string
}

type RideForm struct {
	Pickup      PointForm
	Destination PointForm
}

func (p PointForm) location(field, defaultName string, e *Errors) models.Location {
	loc := models.Location{Name: strings.TrimSpace(p.Name), Address: strings.TrimSpace(p.Address)}
	if loc.Name == "" {
		loc.Name = defaultName
	}
	if loc.Address == "" {
		loc.Address = DefaultAddress
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(p.Lng), 64)
	if err1 != nil || err2 != nil {
		e.add(field, field+" coordinates must be numbers")
		return loc
	}
	if !Coordinates(lat, lng) {
		e.add(field, field+" coordinates are out of range")
		return loc
	}
	loc.Lat, loc.Lng = lat, lng
	return loc
}

// Locations validates the form and returns the pickup and destination with
// defaults filled in.
func (f RideForm) Locations() (pickup, destination models.Location, err error) {
	var e Errors
	if blank(f.Pickup.Lat) || blank(f.Pickup.Lng) || blank(f.Destination.Lat) || blank(f.Destination.Lng) {
		e.add("location", "Please enter all pickup and destination details!")
		return pickup, destination, e.err()
	}
	pickup = f.Pickup.location("pickup", DefaultPickupName, &e)
	destination = f.Destination.location("destination", DefaultDestinationName, &e)
	return pickup, destination, e.err()
}
