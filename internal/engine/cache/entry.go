package cache

import (
	"context"
	"fmt"
	"time"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	// StatusPending means the first fetch for the key has not resolved yet.
	StatusPending Status = iota

	// StatusFulfilled means the entry holds a value.
	StatusFulfilled

	// StatusRejected means the last fetch failed. The error is kept until the
	// entry is invalidated, refreshed, collected or cleared.
	StatusRejected
)

// String returns a human-readable representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFulfilled:
		return "fulfilled"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// call is one in-flight fetch. done is closed once data/err are set.
type call struct {
	done chan struct{}
	data any
	err  error
}

// record is the cache's private, mutable view of one key. It is only touched
// with Cache.mu held.
type record struct {
	key Key

	status  Status
	data    any
	hasData bool
	err     error

	updatedAt time.Time

	// invalidated forces the next Get to refetch.
	invalidated bool
	// invalidateOnSettle keeps an entry invalidated when Invalidate ran while
	// a fetch was in flight.
	invalidateOnSettle bool

	inflight *call
	gcTimer  *time.Timer
}

// Snapshot is an immutable view of an entry at the time of Get.
type Snapshot struct {
	Key    Key
	Status Status

	// Data is the last successful value. It stays populated for a rejected
	// entry whose background refetch failed.
	Data    any
	HasData bool
	Err     error

	UpdatedAt time.Time

	// Stale reports the value is past the staleness window or invalidated.
	Stale bool

	// Fetching reports a fetch for this key is in flight.
	Fetching bool

	call *call
}

// Wait blocks until the in-flight fetch captured by the snapshot resolves and
// returns its result. Without an in-flight fetch it returns the snapshot's
// own value or error immediately.
func (s Snapshot) Wait(ctx context.Context) (any, error) {
	if s.call == nil {
		if s.Status == StatusRejected {
			return s.Data, s.Err
		}
		return s.Data, nil
	}
	select {
	case <-s.call.done:
		return s.call.data, s.call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed when the snapshot's in-flight fetch
// resolves, or nil when nothing was in flight.
func (s Snapshot) Done() <-chan struct{} {
	if s.call == nil {
		return nil
	}
	return s.call.done
}

func (r *record) snapshot(stale bool) Snapshot {
	return Snapshot{
		Key:       r.key,
		Status:    r.status,
		Data:      r.data,
		HasData:   r.hasData,
		Err:       r.err,
		UpdatedAt: r.updatedAt,
		Stale:     stale,
		Fetching:  r.inflight != nil,
		call:      r.inflight,
	}
}

// hydrated marks a value restored from disk together with the time it was
// originally fetched, so freshness is measured from that moment.
type hydrated struct {
	value     any
	fetchedAt time.Time
}
