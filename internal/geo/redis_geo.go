package geo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/rideflow/internal/models"
)

// RedisIndex implements Index using Redis GEO commands. Driver metadata is
// kept in a hash per driver that expires after ttl; positions whose
// metadata has expired are skipped and pruned.
type RedisIndex struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func NewRedisIndex(client redis.UniversalClient, key string, ttl time.Duration) *RedisIndex {
	return &RedisIndex{client: client, key: key, ttl: ttl}
}

func (r *RedisIndex) metaKey(id string) string { return r.key + ":meta:" + id }

func (r *RedisIndex) Upsert(ctx context.Context, drivers []models.NearbyDriver) error {
	if len(drivers) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, d := range drivers {
			p.GeoAdd(ctx, r.key, &redis.GeoLocation{Longitude: d.Location.Lng, Latitude: d.Location.Lat, Name: d.ID})
			mk := r.metaKey(d.ID)
			p.HSet(ctx, mk, map[string]interface{}{
				"name":    d.Name,
				"rating":  strconv.FormatFloat(d.Rating, 'f', -1, 64),
				"address": d.Location.Address,
				"updated": time.Now().UTC().Format(time.RFC3339),
			})
			if r.ttl > 0 {
				p.Expire(ctx, mk, r.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("geo upsert: %w", err)
	}
	return nil
}

func (r *RedisIndex) Nearby(ctx context.Context, origin models.Location, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	if radiusKm <= 0 {
		radiusKm = 20000 // half the globe
	}
	res, err := r.client.GeoRadius(ctx, r.key, origin.Lng, origin.Lat, &redis.GeoRadiusQuery{
		Radius: radiusKm, Unit: "km", WithCoord: true, WithDist: true, Sort: "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo radius: %w", err)
	}
	out := make([]models.NearbyDriver, 0, len(res))
	var stale []interface{}
	for _, g := range res {
		m, err := r.client.HGetAll(ctx, r.metaKey(g.Name)).Result()
		if err != nil {
			return nil, fmt.Errorf("geo meta %s: %w", g.Name, err)
		}
		if len(m) == 0 {
			stale = append(stale, g.Name)
			continue
		}
		d := models.NearbyDriver{ID: g.Name, Name: m["name"]}
		d.Location = models.Location{Lat: g.Latitude, Lng: g.Longitude, Address: m["address"]}
		if f, err := strconv.ParseFloat(m["rating"], 64); err == nil {
			d.Rating = f
		}
		out = append(out, d)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(stale) > 0 {
		_ = r.client.ZRem(ctx, r.key, stale...).Err()
	}
	return out, nil
}
