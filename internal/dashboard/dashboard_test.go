package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/ingest"
	"github.com/example/rideflow/internal/models"
	"github.com/example/rideflow/internal/notify"
)

// fakeSession records what the screens asked of the session store.
type fakeSession struct {
	mu      sync.Mutex
	id      models.Identity
	expired int
	patches []models.IdentityPatch
}

func (s *fakeSession) Identity() (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *fakeSession) UpdateIdentity(_ context.Context, p models.IdentityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches = append(s.patches, p)
	s.id = s.id.Merge(p)
	return nil
}

func (s *fakeSession) Expire(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired++
}

type harness struct {
	router  *mux.Router
	deps    Deps
	notes   *notify.Recorder
	events  *ingest.Memory
	session *fakeSession

	mu    sync.Mutex
	calls map[string]int
}

func newHarness(t *testing.T, role models.Role) *harness {
	t.Helper()
	h := &harness{
		router:  mux.NewRouter(),
		notes:   notify.NewRecorder(0, nil),
		events:  &ingest.Memory{},
		session: &fakeSession{id: models.Identity{ID: "u1", Name: "Test User", Role: role}},
		calls:   map[string]int{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.calls[r.Method+" "+r.URL.Path]++
		h.mu.Unlock()
		h.router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	h.deps = Deps{
		API:     apiclient.New(srv.URL),
		Session: h.session,
		Notify:  h.notes,
		Events:  h.events,
	}
	return h
}

func (h *harness) handle(method, path string, fn http.HandlerFunc) {
	h.router.HandleFunc(path, fn).Methods(method)
}

func (h *harness) called(method, path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[method+" "+path]
}

func (h *harness) texts() []string {
	var out []string
	for _, m := range h.notes.Drain() {
		out = append(out, m.Text)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func reply(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, status, v) }
}

func rideJSON(id string, status models.RideStatus) map[string]any {
	return map[string]any{
		"_id":                 id,
		"status":              status,
		"fare":                12.5,
		"requestedAt":         "2025-05-01T09:00:00Z",
		"pickupLocation":      map[string]any{"lat": 23.78, "lng": 90.41, "address": "Banani 11"},
		"destinationLocation": map[string]any{"lat": 23.84, "lng": 90.40, "address": "Airport"},
	}
}

func decode(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}
