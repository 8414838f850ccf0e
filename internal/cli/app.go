package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/config"
	"github.com/example/rideflow/internal/dashboard"
	"github.com/example/rideflow/internal/geo"
	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/logging"
	"github.com/example/rideflow/internal/notify"
	"github.com/example/rideflow/internal/session"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	api     *apiclient.Client
	session *session.Store
	notices *notify.Recorder
	events  ingest.Publisher
	geo     geo.Index
	redis   *redis.Client
	out     io.Writer
	closed  bool
}

// console prints notifications the way the dashboards show toasts.
type console struct{ w io.Writer }

func (c console) Success(text string) { fmt.Fprintln(c.w, "✓", text) }
func (c console) Error(text string)   { fmt.Fprintln(c.w, "✗", text) }

// openApp builds the app for a command. Tests wrap it to observe the app.
var openApp = newApp

func newApp(ctx context.Context, cfg config.Config, out, errOut io.Writer) (*app, error) {
	logger := logging.New(errOut, cfg.Log.Level, cfg.Log.Format)
	a := &app{
		cfg:     cfg,
		logger:  logger,
		api:     apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(cfg.API.Timeout), apiclient.WithLogger(logger)),
		notices: notify.NewRecorder(50, console{w: errOut}),
		events:  ingest.Nop{},
		geo:     geo.NewMemoryIndex(geo.DefaultTTL),
		out:     out,
	}

	var p session.Persister
	switch cfg.Session.Backend {
	case "redis":
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("redis session backend: %w", err)
		}
		p = session.NewRedisPersister(a.redis, cfg.Redis.Prefix)
		a.geo = geo.NewRedisIndex(a.redis, cfg.Redis.Prefix+"drivers_geo", geo.DefaultTTL)
	case "memory":
		p = &session.MemoryPersister{}
	default:
		p = session.FilePersister{Path: cfg.Session.Path}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		a.events = ingest.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	}

	a.session = session.New(a.api, p, session.WithNotifier(a.notices), session.WithLogger(logger))
	if err := a.session.Init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) deps() dashboard.Deps {
	return dashboard.Deps{
		API:      a.api,
		Session:  a.session,
		Notify:   a.notices,
		Events:   a.events,
		Geo:      a.geo,
		Logger:   a.logger,
		PageSize: a.cfg.PageSize,
		SpeedMps: a.cfg.SpeedMps,
	}
}

// requireSession fails fast when nobody is logged in.
func (a *app) requireSession() error {
	if _, ok := a.session.Snapshot(); !ok {
		return fmt.Errorf("%w: run `rideflow login` first", session.ErrNoSession)
	}
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Close releases the event publisher and redis client. Safe to call twice.
func (a *app) Close() {
	if a.closed {
		return
	}
	a.closed = true
	if err := a.events.Close(); err != nil {
		a.logger.Warn("close event publisher", "error", err)
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
