// Package live pushes the driver's active ride to websocket subscribers.
package live

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/example/rideflow/internal/observability"
)

var ErrClosed = errors.New("live hub closed")

const writeWait = 5 * time.Second

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Hub holds the connected subscribers and the last frame sent, which every
// new subscriber receives first. Reset starts a new generation; frames
// fetched under an older one are discarded.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	subs   map[string]*subscriber
	last   []byte
	gen    uint64
	closed bool
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[string]*subscriber),
		upgrader: websocket.Upgrader{
			// the dashboard server only listens locally
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) add(conn *websocket.Conn) (string, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return "", ErrClosed
	}
	id := uuid.NewString()
	s := &subscriber{conn: conn}
	h.subs[id] = s
	last := h.last
	h.mu.Unlock()

	observability.LiveSubscribers.Inc()
	if last != nil {
		if err := s.send(last); err != nil {
			h.remove(id)
			return "", err
		}
	}
	return id, nil
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	s, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()
	if ok {
		observability.LiveSubscribers.Dec()
		s.conn.Close()
	}
}

// Broadcast sends v as JSON to every subscriber. Subscribers whose write
// fails are dropped.
func (h *Hub) Broadcast(v any) error {
	frame, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.broadcast(frame)
	return nil
}

func (h *Hub) broadcast(frame []byte) {
	h.mu.Lock()
	h.last = frame
	subs := h.snapshot()
	h.mu.Unlock()
	h.send(subs, frame)
}

// publish broadcasts frame unless it repeats the last frame or the hub was
// reset after gen was read.
func (h *Hub) publish(gen uint64, frame []byte) bool {
	h.mu.Lock()
	if h.gen != gen || bytes.Equal(h.last, frame) {
		h.mu.Unlock()
		return false
	}
	h.last = frame
	subs := h.snapshot()
	h.mu.Unlock()
	h.send(subs, frame)
	return true
}

func (h *Hub) generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.gen
}

// snapshot copies the subscriber set. Callers hold h.mu.
func (h *Hub) snapshot() map[string]*subscriber {
	subs := make(map[string]*subscriber, len(h.subs))
	for id, s := range h.subs {
		subs[id] = s
	}
	return subs
}

func (h *Hub) send(subs map[string]*subscriber, frame []byte) {
	for id, s := range subs {
		if err := s.send(frame); err != nil {
			h.logger.Warn("live send failed", "subscriber", id, "error", err)
			h.remove(id)
		}
	}
}

// ServeHTTP upgrades the request and keeps the subscriber until the peer
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("live upgrade failed", "error", err)
		return
	}
	id, err := h.add(conn)
	if err != nil {
		conn.Close()
		return
	}
	defer h.remove(id)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Reset disconnects every subscriber and forgets the last frame. Used when
// the signed-in user changes; the hub keeps accepting subscribers.
func (h *Hub) Reset() {
	h.mu.Lock()
	h.gen++
	h.last = nil
	h.mu.Unlock()
	h.dropAll()
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.dropAll()
}

func (h *Hub) dropAll() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	for _, id := range ids {
		h.remove(id)
	}
}
