package dashboard

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrStale means a response arrived after a newer load started or after
	// the view was closed. It was dropped.
	ErrStale = errors.New("stale response discarded")
	// ErrBusy means the same action is already in flight.
	ErrBusy = errors.New("action already in progress")
)

// State is what a screen renders: a loading flag until the first response,
// then data or a full-view error message.
type State[T any] struct {
	Loading bool   `json:"loading"`
	Loaded  bool   `json:"loaded"`
	Data    T      `json:"data"`
	Err     string `json:"error,omitempty"`
}

// View holds one screen's state. Only the response to the latest load is
// applied; anything older, or anything arriving after Close, is dropped.
type View[T any] struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
	state  State[T]
}

// Load runs fetch and applies its result. errText maps a fetch error to the
// message kept in State.Err; nil leaves Err empty so the screen stays usable.
func (v *View[T]) Load(ctx context.Context, fetch func(context.Context) (T, error), errText func(error) string) (T, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		var zero T
		return zero, ErrStale
	}
	v.gen++
	gen := v.gen
	v.state.Loading = true
	v.mu.Unlock()

	data, err := fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.gen {
		var zero T
		return zero, ErrStale
	}
	v.state.Loading = false
	if err != nil {
		if errText != nil {
			v.state.Err = errText(err)
		}
		return data, err
	}
	v.state = State[T]{Loaded: true, Data: data}
	return data, nil
}

// Set replaces the data with an authoritative value from a mutation.
// In-flight loads started before it are dropped.
func (v *View[T]) Set(data T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.gen++
	v.state = State[T]{Loaded: true, Data: data}
}

func (v *View[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Close unmounts the view. Later responses are discarded.
func (v *View[T]) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// inflight disables a button while its request is outstanding.
type inflight struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func (f *inflight) acquire(key string) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy == nil {
		f.busy = make(map[string]struct{})
	}
	if _, ok := f.busy[key]; ok {
		return nil, ErrBusy
	}
	f.busy[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.busy, key)
		f.mu.Unlock()
	}, nil
}

func (f *inflight) Busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.busy[key]
	return ok
}
