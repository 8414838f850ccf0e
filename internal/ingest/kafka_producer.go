// Package ingest publishes client activity events: every ride action the
// dashboards complete is reported as one event.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/rideflow/internal/observability"
)

// Event types.
const (
	RideRequested   = "ride.requested"
	RideAccepted    = "ride.accepted"
	RideTransition  = "ride.transition"
	RideCancelled   = "ride.cancelled"
	AvailabilitySet = "driver.availability"
	UserStatusSet   = "admin.user_status"
)

type Event struct {
	Type   string    `json:"type"`
	RideID string    `json:"ride_id,omitempty"`
	UserID string    `json:"user_id,omitempty"`
	From   string    `json:"from,omitempty"`
	To     string    `json:"to,omitempty"`
	Role   string    `json:"role"`
	At     time.Time `json:"at"`
}

func (e Event) key() string {
	if e.RideID != "" {
		return e.RideID
	}
	return e.UserID
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *slog.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaProducer(w, logger)
}

func newKafkaProducer(w messageWriter, logger *slog.Logger) *KafkaProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaProducer{writer: w, timeout: 2 * time.Second, logger: logger}
}

// Publish writes e keyed by ride (or user) id so one ride's events stay
// ordered within a partition.
func (k *KafkaProducer) Publish(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.key()), Value: b}); err != nil {
		observability.ActivityEventsTotal.WithLabelValues("error").Inc()
		k.logger.Warn("publish activity event", "type", e.Type, "ride_id", e.RideID, "error", err)
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	observability.ActivityEventsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (k *KafkaProducer) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

// Memory keeps published events in order.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
