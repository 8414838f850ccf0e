package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/rideflow/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive db: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }

// Migrate applies every .sql file in fsys in name order. The statements are
// idempotent.
func (p *PostgresStore) Migrate(ctx context.Context, fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		if _, err := p.db.ExecContext(ctx, string(b)); err != nil {
			return nil, fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return names, nil
}

const upsertRide = `
INSERT INTO ride_archive (owner_id, ride_id, status, fare, requested_at, payload, archived_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (owner_id, ride_id) DO UPDATE
SET status = EXCLUDED.status, fare = EXCLUDED.fare, requested_at = EXCLUDED.requested_at,
    payload = EXCLUDED.payload, archived_at = now()`

// SaveRides upserts every ride in one transaction.
func (p *PostgresStore) SaveRides(ctx context.Context, owner string, rides []models.Ride) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck
	stmt, err := tx.PrepareContext(ctx, upsertRide)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rides {
		payload, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encode ride %s: %w", r.ID, err)
		}
		var requested sql.NullTime
		if !r.RequestedAt.IsZero() {
			requested = sql.NullTime{Time: r.RequestedAt, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, owner, r.ID, string(r.Status), r.Fare, requested, payload); err != nil {
			return 0, fmt.Errorf("archive ride %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rides), nil
}

func (p *PostgresStore) ListRides(ctx context.Context, owner string) ([]models.Ride, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT payload FROM ride_archive WHERE owner_id = $1 ORDER BY requested_at NULLS FIRST, ride_id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Ride{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r models.Ride
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("decode archived ride: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
