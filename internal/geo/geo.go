package geo

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/example/rideflow/internal/models"
)

const metersPerMile = 1609.344

// DefaultTTL is how long a cached driver position stays rankable.
const DefaultTTL = 2 * time.Minute

// Index caches driver positions returned by the nearby-drivers endpoint so
// map refreshes can be ranked locally.
type Index interface {
	Upsert(ctx context.Context, drivers []models.NearbyDriver) error
	Nearby(ctx context.Context, origin models.Location, radiusKm float64, limit int) ([]models.NearbyDriver, error)
}

type entry struct {
	d       models.NearbyDriver
	updated time.Time
}

// MemoryIndex is an Index held in process. Entries older than ttl are
// ignored. Drivers at equal distance come back ordered by ID.
type MemoryIndex struct {
	mu      sync.RWMutex
	drivers map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryIndex(ttl time.Duration) *MemoryIndex {
	return &MemoryIndex{drivers: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (g *MemoryIndex) Upsert(_ context.Context, drivers []models.NearbyDriver) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for _, d := range drivers {
		g.drivers[d.ID] = entry{d: d, updated: now}
	}
	return nil
}

func (g *MemoryIndex) Nearby(_ context.Context, origin models.Location, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	now := g.now()
	live := make([]models.NearbyDriver, 0, len(g.drivers))
	for _, e := range g.drivers {
		if g.ttl > 0 && now.Sub(e.updated) > g.ttl {
			continue
		}
		live = append(live, e.d)
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	return Nearest(origin, live, radiusKm, limit), nil
}

// Nearest returns up to limit drivers within radiusKm of origin, closest
// first. A non-positive radius means no radius; ties keep input order.
func Nearest(origin models.Location, drivers []models.NearbyDriver, radiusKm float64, limit int) []models.NearbyDriver {
	type pair struct {
		d    models.NearbyDriver
		dist float64
	}
	arr := make([]pair, 0, len(drivers))
	for _, d := range drivers {
		dist := Distance(origin, d.Location)
		if radiusKm > 0 && dist > radiusKm*1000 {
			continue
		}
		arr = append(arr, pair{d, dist})
	}
	n := limit
	if n <= 0 || n > len(arr) {
		n = len(arr)
	}
	// partial selection sort for top-N
	for i := 0; i < n; i++ {
		minIdx := i
		for j := i + 1; j < len(arr); j++ {
			if arr[j].dist < arr[minIdx].dist {
				minIdx = j
			}
		}
		// rotate rather than swap so equal distances keep input order
		if minIdx != i {
			p := arr[minIdx]
			copy(arr[i+1:minIdx+1], arr[i:minIdx])
			arr[i] = p
		}
	}
	out := make([]models.NearbyDriver, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, arr[i].d)
	}
	return out
}

// Distance between two locations in meters.
func Distance(a, b models.Location) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Miles between two locations.
func Miles(a, b models.Location) float64 {
	return Distance(a, b) / metersPerMile
}

// Haversine distance in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
