// Package session holds the authenticated identity and its bearer token,
// persists them across process restarts, and keeps the API client's
// Authorization header in step with them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/notify"
)

var ErrNoSession = errors.New("no active session")

// Gateway is the slice of the API client the store needs.
type Gateway interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResponse, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) error
	SetToken(token string)
	ClearToken()
}

type Store struct {
	api     Gateway
	persist Persister
	notify  notify.Notifier
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current models.Session
	active  bool
}

type Option func(*Store)

func WithNotifier(n notify.Notifier) Option { return func(s *Store) { s.notify = n } }

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func New(api Gateway, p Persister, opts ...Option) *Store {
	s := &Store{api: api, persist: p, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.notify == nil {
		s.notify = notify.Log{Logger: s.logger}
	}
	return s
}

// Init rehydrates the session from persisted storage. A token that is
// recognisably expired is discarded together with its identity, and so is a
// copy that no longer decodes.
func (s *Store) Init(ctx context.Context) error {
	sess, ok, err := s.persist.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("discarding corrupt persisted session", "error", err)
		return s.persist.Clear(ctx)
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil
	}
	if !sess.Valid() {
		s.logger.Warn("discarding incomplete persisted session")
		return s.persist.Clear(ctx)
	}
	if Expired(sess.Token, s.now()) {
		s.logger.Info("persisted session token expired", "user", sess.Identity.Email)
		return s.persist.Clear(ctx)
	}

	s.mu.Lock()
	s.current, s.active = sess, true
	s.api.SetToken(sess.Token)
	s.mu.Unlock()
	s.logger.Debug("session restored", "user", sess.Identity.Email, "role", sess.Identity.Role)
	return nil
}

// Login authenticates and, on success, sets, persists and attaches the
// token. Failures are reported through the notifier, never returned.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login failed", "email", email, "error", err)
		s.notify.Error(apiclient.Message(err, "Login failed"))
		return false
	}
	sess := models.Session{Identity: res.User, Token: res.Token}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist.Save(ctx, sess); err != nil {
		s.logger.Error("persist session", "error", err)
		s.notify.Error("Login failed: could not store session")
		return false
	}
	s.current, s.active = sess, true
	s.api.SetToken(sess.Token)
	s.notify.Success("Login successful!")
	return true
}

// Register forwards a new account. It never authenticates.
func (s *Store) Register(ctx context.Context, req apiclient.RegisterRequest) error {
	if err := s.api.Register(ctx, req); err != nil {
		s.notify.Error(apiclient.Message(err, "Registration failed"))
		return err
	}
	s.notify.Success("Registration successful! Please login.")
	return nil
}

// Logout clears memory, persisted copies and the client token. Safe to call
// when already logged out.
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx)
	s.notify.Success("Logged out successfully!")
}

// Expire drops a session the API no longer accepts.
func (s *Store) Expire(ctx context.Context) {
	if _, ok := s.Snapshot(); !ok {
		return
	}
	s.clear(ctx)
	s.notify.Error("Session expired, please log in again")
}

func (s *Store) clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.active = models.Session{}, false
	s.api.ClearToken()
	if err := s.persist.Clear(ctx); err != nil {
		s.logger.Error("clear persisted session", "error", err)
	}
}

// UpdateIdentity merges a server-confirmed profile edit into the identity and
// re-persists it.
func (s *Store) UpdateIdentity(ctx context.Context, p models.IdentityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrNoSession
	}
	next := s.current
	next.Identity = next.Identity.Merge(p)
	if err := s.persist.Save(ctx, next); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	s.current = next
	return nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.active
}

// Identity returns the current identity or ErrNoSession.
func (s *Store) Identity() (models.Identity, error) {
	sess, ok := s.Snapshot()
	if !ok {
		return models.Identity{}, ErrNoSession
	}
	return sess.Identity, nil
}
