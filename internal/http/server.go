// Package httpapi serves the dashboards to a local browser or script as JSON
// view models.
package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/rideflow/internal/dashboard"
	"github.com/example/rideflow/internal/live"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/nav"
	"github.com/example/rideflow/internal/notify"
	"github.com/example/rideflow/internal/session"
)

type Options struct {
	Session   *session.Store
	Dashboard dashboard.Deps
	Notices   *notify.Recorder
	Hub       *live.Hub
	Logger    *slog.Logger
}

type Server struct {
	session *session.Store
	guard   *nav.Guard
	notices *notify.Recorder
	hub     *live.Hub
	logger  *slog.Logger

	deps    dashboard.Deps
	mu      sync.RWMutex
	screens *screens

	mux *mux.Router
}

// screens are the controllers of one login. They are replaced on login and
// logout so no state leaks between users.
type screens struct {
	rider  *dashboard.Rider
	driver *dashboard.Driver
	admin  *dashboard.Admin
}

func newScreens(d dashboard.Deps) *screens {
	return &screens{rider: dashboard.NewRider(d), driver: dashboard.NewDriver(d), admin: dashboard.NewAdmin(d)}
}

func (sc *screens) close() {
	sc.rider.Close()
	sc.driver.Close()
	sc.admin.Close()
}

// NewServer wires the three role controllers to one session. The dashboard
// deps must share o.Session and o.Notices.
func NewServer(o Options) (*Server, error) {
	if o.Session == nil {
		return nil, fmt.Errorf("httpapi: session store is required")
	}
	guard, err := nav.NewGuard()
	if err != nil {
		return nil, err
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Notices == nil {
		o.Notices = notify.NewRecorder(50, notify.Log{Logger: o.Logger})
	}
	if o.Hub == nil {
		o.Hub = live.NewHub(o.Logger)
	}
	d := o.Dashboard
	d.Session = o.Session
	d.Notify = o.Notices
	if d.Logger == nil {
		d.Logger = o.Logger
	}
	s := &Server{
		session: o.Session,
		guard:   guard,
		notices: o.Notices,
		hub:     o.Hub,
		logger:  o.Logger,
		deps:    d,
		screens: newScreens(d),
		mux:     mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	s.mux.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	s.mux.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	s.mux.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	s.mux.HandleFunc("/features", s.handleFeatures).Methods(http.MethodGet)
	s.mux.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	s.mux.Handle("/ws/active-ride", s.requireRole(models.RoleDriver, s.hub)).Methods(http.MethodGet)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods(http.MethodGet)
	s.mux.Handle("/metrics", promhttp.Handler())

	f := s.mux.PathPrefix("/features").Subrouter()
	f.Use(s.guardMiddleware)
	s.riderRoutes(f)
	s.driverRoutes(f)
	s.adminRoutes(f)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) current() *screens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screens
}

// remount unmounts the current screens and starts fresh ones. Live
// subscribers belong to the previous user and are dropped with them.
func (s *Server) remount() {
	s.mu.Lock()
	old := s.screens
	s.screens = newScreens(s.deps)
	s.mu.Unlock()
	old.close()
	s.hub.Reset()
}

// ActiveRide is the live feed's source: the driver's active ride card.
func (s *Server) ActiveRide(ctx context.Context) (any, error) {
	return s.current().driver.ActiveRide(ctx)
}

// Hub returns the live feed hub served at /ws/active-ride.
func (s *Server) Hub() *live.Hub { return s.hub }

// Close unmounts every screen and drops live subscribers.
func (s *Server) Close() {
	s.current().close()
	s.hub.Close()
}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
