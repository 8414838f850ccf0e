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

// fakeReader replays its steps, then blocks until the context ends.
type fakeReader struct {
	steps []func() (kafka.Message, error)
	reads int
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if f.reads < len(f.steps) {
		s := f.steps[f.reads]
		f.reads++
		return s()
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) Close() error { return nil }

func msg(t *testing.T, e Event) func() (kafka.Message, error) {
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return func() (kafka.Message, error) { return kafka.Message{Value: b}, nil }
}

func TestConsumerSkipsInvalidAndRetries(t *testing.T) {
	r := &fakeReader{steps: []func() (kafka.Message, error){
		msg(t, Event{Type: RideAccepted, RideID: "r1", Role: "driver"}),
		func() (kafka.Message, error) { return kafka.Message{Value: []byte("{nope")}, nil },
		func() (kafka.Message, error) { return kafka.Message{}, errors.New("broker down") },
		msg(t, Event{Type: RideCancelled, RideID: "r2", Role: "rider"}),
	}}
	c := newConsumer(r, nil)
	c.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got []Event
	err := c.Run(ctx, func(e Event) error {
		got = append(got, e)
		if len(got) == 2 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].RideID)
	assert.Equal(t, RideCancelled, got[1].Type)
}

func TestConsumerStopsOnHandlerError(t *testing.T) {
	r := &fakeReader{steps: []func() (kafka.Message, error){
		msg(t, Event{Type: UserStatusSet, UserID: "u1", Role: "admin"}),
	}}
	stop := errors.New("stop")
	err := newConsumer(r, nil).Run(context.Background(), func(Event) error { return stop })
	assert.ErrorIs(t, err, stop)
}
