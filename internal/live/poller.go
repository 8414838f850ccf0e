package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const DefaultInterval = 5 * time.Second

// Poller fetches a value on an interval and broadcasts it when it differs
// from the hub's last frame. Nothing is fetched while the hub is empty, and
// a fetch that straddles Hub.Reset is dropped.
type Poller struct {
	Hub      *Hub
	Fetch    func(ctx context.Context) (any, error)
	Interval time.Duration
	Logger   *slog.Logger
}

func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if p.Hub.Len() == 0 {
				continue
			}
			if _, err := p.Tick(ctx); err != nil {
				p.logger().Warn("live poll failed", "error", err)
			}
		}
	}
}

// Tick runs one fetch and reports whether it was broadcast.
func (p *Poller) Tick(ctx context.Context) (bool, error) {
	gen := p.Hub.generation()
	v, err := p.Fetch(ctx)
	if err != nil {
		return false, err
	}
	frame, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return p.Hub.publish(gen, frame), nil
}

func (p *Poller) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
