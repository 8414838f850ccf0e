// Package fixtures generates realistic rides and users for tests.
package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"

	"github.com/example/rideflow/internal/models"
)

type Gen struct {
	fake faker.Faker
	base time.Time
	seq  int
}

// New returns a deterministic generator for seed.
func New(seed int64) *Gen {
	return &Gen{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		base: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (g *Gen) location() models.Location {
	return models.Location{
		Lat:     g.fake.Float64(6, 23, 24),
		Lng:     g.fake.Float64(6, 90, 91),
		Address: g.fake.Address().StreetAddress(),
		Name:    g.fake.Address().City(),
	}
}

func (g *Gen) party() *models.Party {
	return &models.Party{
		ID:    g.fake.UUID().V4(),
		Name:  g.fake.Person().Name(),
		Phone: g.fake.Phone().Number(),
	}
}

// Ride returns a ride in status s with timestamps consistent with it.
func (g *Gen) Ride(s models.RideStatus) models.Ride {
	g.seq++
	req := g.fake.Time().TimeBetween(g.base, g.base.AddDate(1, 0, 0)).UTC()
	r := models.Ride{
		ID:          fmt.Sprintf("ride-%03d", g.seq),
		Pickup:      g.location(),
		Destination: g.location(),
		Fare:        g.fake.Float64(2, 3, 80),
		Status:      s,
		Rider:       g.party(),
		RequestedAt: req,
	}
	at := func(m int) *time.Time { t := req.Add(time.Duration(m) * time.Minute); return &t }
	if s != models.RideRequested && s != models.RideCancelled {
		r.Driver = g.party()
		r.AcceptedAt = at(2)
	}
	switch s {
	case models.RidePickedUp, models.RideInTransit:
		r.StartedAt = at(8)
	case models.RideCompleted:
		r.StartedAt = at(8)
		r.CompletedAt = at(30)
	case models.RideCancelled:
		r.CancelledAt = at(1)
	}
	return r
}

// Rides returns n rides with random statuses.
func (g *Gen) Rides(n int) []models.Ride {
	out := make([]models.Ride, 0, n)
	for i := 0; i < n; i++ {
		s := models.RideStatuses[g.fake.IntBetween(0, len(models.RideStatuses)-1)]
		out = append(out, g.Ride(s))
	}
	return out
}

func (g *Gen) User(role models.Role) models.Identity {
	return models.Identity{
		ID:     g.fake.UUID().V4(),
		Name:   g.fake.Person().Name(),
		Email:  g.fake.Internet().Email(),
		Phone:  g.fake.Phone().Number(),
		Role:   role,
		Status: models.UserActive,
	}
}

func (g *Gen) Users(n int) []models.Identity {
	out := make([]models.Identity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.User(models.Roles[g.fake.IntBetween(0, len(models.Roles)-1)]))
	}
	return out
}
