package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { f.closed = true; return nil }

func TestKafkaProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaProducer(w, nil)
	at := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), Event{Type: RideTransition, RideID: "r9", From: "accepted", To: "picked_up", Role: "driver", At: at}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "r9", string(w.msgs[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "picked_up", got.To)
	assert.True(t, at.Equal(got.At))

	require.NoError(t, p.Publish(context.Background(), Event{Type: UserStatusSet, UserID: "u2", Role: "admin", At: at}))
	assert.Equal(t, "u2", string(w.msgs[1].Key))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducerError(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaProducer(&fakeWriter{err: boom}, nil)
	err := p.Publish(context.Background(), Event{Type: RideCancelled, RideID: "r1"})
	assert.ErrorIs(t, err, boom)
}

func TestMemory(t *testing.T) {
	var m Memory
	_ = m.Publish(context.Background(), Event{Type: RideAccepted, RideID: "a"})
	_ = m.Publish(context.Background(), Event{Type: RideCancelled, RideID: "a"})
	ev := m.Events()
	require.Len(t, ev, 2)
	assert.Equal(t, RideCancelled, ev[1].Type)
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
