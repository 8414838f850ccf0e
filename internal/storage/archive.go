// Package storage keeps an offline archive of ride lists fetched from the
// API, scoped by the user who fetched them.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/example/rideflow/internal/models"
)

// RideArchive defines persistence operations for archived rides. Saving a
// ride that is already archived for the owner replaces it.
type RideArchive interface {
	SaveRides(ctx context.Context, owner string, rides []models.Ride) (int, error)
	ListRides(ctx context.Context, owner string) ([]models.Ride, error)
}

type MemoryStore struct {
	mu    sync.RWMutex
	rides map[string]map[string]models.Ride
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[string]map[string]models.Ride)}
}

func (m *MemoryStore) SaveRides(_ context.Context, owner string, rides []models.Ride) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.rides[owner]
	if !ok {
		byID = make(map[string]models.Ride)
		m.rides[owner] = byID
	}
	for _, r := range rides {
		byID[r.ID] = r
	}
	return len(rides), nil
}

// ListRides returns the owner's rides oldest request first.
func (m *MemoryStore) ListRides(_ context.Context, owner string) ([]models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Ride, 0, len(m.rides[owner]))
	for _, r := range m.rides[owner] {
		out = append(out, r)
	}
	sortRides(out)
	return out, nil
}

func sortRides(rs []models.Ride) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].RequestedAt.Equal(rs[j].RequestedAt) {
			return rs[i].RequestedAt.Before(rs[j].RequestedAt)
		}
		return rs[i].ID < rs[j].ID
	})
}
