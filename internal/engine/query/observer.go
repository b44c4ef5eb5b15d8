package query

import (
	"context"
	"fmt"
	"sync"

	"github.com/rshade/dexter/internal/engine/cache"
)

// State is the lifecycle of an Observer.
type State int

const (
	// StateIdle means nothing has been requested.
	StateIdle State = iota
	// StateLoading means a load for the current key is in flight.
	StateLoading
	// StateReady means Data holds the current key's value.
	StateReady
	// StateError means the current key's load failed.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is what an Observer currently shows.
type Result[T any] struct {
	Key   cache.Key
	State State
	Data  T
	Err   error
}

// Observer follows one query key at a time. A load that resolves after the
// observer has moved on to another key, or after a newer load was started, is
// discarded, so a slow response for an abandoned page never replaces the
// page being shown.
//
// The observer holds a cache subscription for its current key so the entry is
// not collected while it is displayed.
type Observer[T any] struct {
	cache *cache.Cache

	mu       sync.Mutex
	result   Result[T]
	release  func()
	onChange func(Result[T])
	closed   bool

	// gen identifies the latest Load; only its result is committed.
	gen uint64
}

// NewObserver creates an idle Observer bound to c. c may be nil, in which
// case no subscription is held.
func NewObserver[T any](c *cache.Cache) *Observer[T] {
	return &Observer[T]{cache: c}
}

// OnChange registers fn to be called after every state transition. It is
// called from the goroutine that caused the transition, without locks held.
func (o *Observer[T]) OnChange(fn func(Result[T])) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onChange = fn
}

// Current returns the current result.
func (o *Observer[T]) Current() Result[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Load switches the observer to key and runs fn in the background. The
// returned channel is closed once fn has returned and its result has been
// committed or discarded.
func (o *Observer[T]) Load(ctx context.Context, key cache.Key, fn func(ctx context.Context) (T, error)) <-chan struct{} {
	done := make(chan struct{})

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		close(done)
		return done
	}
	if key != o.result.Key || o.release == nil {
		o.resubscribeLocked(key)
	}
	o.gen++
	gen := o.gen
	o.result = Result[T]{Key: key, State: StateLoading}
	loading := o.result
	notify := o.onChange
	o.mu.Unlock()

	if notify != nil {
		notify(loading)
	}

	go func() {
		defer close(done)
		v, err := fn(ctx)
		o.commit(gen, key, v, err)
	}()
	return done
}

func (o *Observer[T]) commit(gen uint64, key cache.Key, v T, err error) {
	o.mu.Lock()
	if o.closed || gen != o.gen || o.result.Key != key {
		o.mu.Unlock()
		return
	}
	if err != nil {
		o.result = Result[T]{Key: key, State: StateError, Err: err}
	} else {
		o.result = Result[T]{Key: key, State: StateReady, Data: v}
	}
	committed := o.result
	notify := o.onChange
	o.mu.Unlock()

	if notify != nil {
		notify(committed)
	}
}

// Reset returns the observer to idle and drops its subscription. Loads still
// in flight are discarded.
func (o *Observer[T]) Reset() {
	o.mu.Lock()
	o.releaseLocked()
	o.gen++
	o.result = Result[T]{}
	idle := o.result
	notify := o.onChange
	o.mu.Unlock()

	if notify != nil {
		notify(idle)
	}
}

// Close releases the subscription; later loads are ignored.
func (o *Observer[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.releaseLocked()
}

func (o *Observer[T]) resubscribeLocked(key cache.Key) {
	o.releaseLocked()
	if o.cache != nil {
		o.release = o.cache.Subscribe(key)
	}
}

func (o *Observer[T]) releaseLocked() {
	if o.release != nil {
		o.release()
		o.release = nil
	}
}
