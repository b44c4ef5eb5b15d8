package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrClosed is returned for lookups on a closed cache.
var ErrClosed = errors.New("cache is closed")

// FetchFunc produces the value for a key. The context is owned by the cache
// and is cancelled only when the cache is closed.
type FetchFunc func(ctx context.Context) (any, error)

// Options configures a Cache.
type Options struct {
	// StaleTime is how long a fulfilled value is served without refetching.
	StaleTime time.Duration

	// GCTime is how long an unobserved entry survives. Zero or negative
	// disables collection.
	GCTime time.Duration

	// Disk, when non-nil and enabled, hydrates misses from disk.
	Disk *DiskStore

	// Logger receives debug events. The zero value logs nothing.
	Logger zerolog.Logger

	// Now overrides the clock used for staleness checks.
	Now func() time.Time
}

// DefaultOptions returns the design values: 5 minute staleness, 10 minute GC.
func DefaultOptions() Options {
	return Options{
		StaleTime: DefaultStaleTime,
		GCTime:    DefaultGCTime,
		Logger:    zerolog.Nop(),
	}
}

// Stats counts cache activity since creation.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Joins     int64 `json:"joins"`
	Refetches int64 `json:"refetches"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

// Cache is a keyed query cache with in-flight de-duplication, a staleness
// window, garbage collection of unobserved entries and prefix invalidation.
// It is safe for concurrent use.
type Cache struct {
	staleTime time.Duration
	gcTime    time.Duration
	disk      *DiskStore
	logger    zerolog.Logger
	now       func() time.Time

	// ctx carries the base logger, is handed to every fetch and is
	// cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	entries   map[Key]*record
	observers map[Key]int
	stats     Stats
	closed    bool
}

// New creates a Cache.
func New(opts Options) *Cache {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(opts.Logger.WithContext(context.Background()))
	return &Cache{
		staleTime: opts.StaleTime,
		gcTime:    opts.GCTime,
		disk:      opts.Disk,
		logger:    opts.Logger.With().Str("component", "cache").Logger(),
		now:       now,
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[Key]*record),
		observers: make(map[Key]int),
	}
}

// GetOption tunes a single Get or Query call.
type GetOption func(*getOptions)

type getOptions struct {
	refresh bool
}

// WithRefresh forces a new fetch even when the entry is fresh or rejected.
// Query waits for that fetch instead of serving the cached value.
func WithRefresh() GetOption {
	return func(o *getOptions) { o.refresh = true }
}

// Get returns the current snapshot for key without blocking. A missing entry
// is created as pending and fetch is started. A stale or invalidated entry
// starts a background refetch while the snapshot still carries the old value.
// A fetch already in flight for key is joined rather than duplicated.
func (c *Cache) Get(key Key, fetch FetchFunc, opts ...GetOption) Snapshot {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Snapshot{Key: key, Status: StatusRejected, Err: ErrClosed}
	}

	now := c.now()
	r, ok := c.entries[key]
	switch {
	case !ok:
		r = &record{key: key, status: StatusPending}
		c.entries[key] = r
		c.stats.Misses++
		c.startLocked(r, fetch)
	case r.inflight != nil:
		c.stats.Joins++
	case o.refresh, r.invalidated:
		c.stats.Refetches++
		c.startLocked(r, fetch)
	case r.status == StatusRejected:
		c.stats.Hits++
	case c.isStaleLocked(r, now):
		c.stats.Refetches++
		c.startLocked(r, fetch)
	default:
		c.stats.Hits++
	}

	c.touchLocked(r)
	return r.snapshot(r.invalidated || c.isStaleLocked(r, now))
}

// Peek returns the snapshot for key without fetching. ok is false when the
// key has no entry.
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	return r.snapshot(r.invalidated || c.isStaleLocked(r, c.now())), true
}

// Query fetches key through the cache and returns a typed value. Pending
// entries and hard refreshes wait for the fetch; fulfilled entries return
// immediately, even when a background refetch was started; rejected entries
// return their stored error.
func Query[T any](
	ctx context.Context,
	c *Cache,
	key Key,
	fetch func(ctx context.Context) (T, error),
	opts ...GetOption,
) (T, error) {
	var zero T
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	snap := c.Get(key, typedFetch(c, key, fetch, o.refresh), opts...)

	var (
		value any
		err   error
	)
	switch {
	case o.refresh, snap.Status == StatusPending:
		value, err = snap.Wait(ctx)
	case snap.Status == StatusFulfilled:
		value = snap.Data
	case snap.Fetching:
		value, err = snap.Wait(ctx)
	default:
		err = snap.Err
	}
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %s holds %T, want %T", key, value, zero)
	}
	return typed, nil
}

// typedFetch adapts a typed fetch to FetchFunc and adds disk hydration.
func typedFetch[T any](c *Cache, key Key, fetch func(ctx context.Context) (T, error), skipDisk bool) FetchFunc {
	return func(ctx context.Context) (any, error) {
		if c.disk.IsEnabled() && !skipDisk {
			if entry, err := c.disk.Get(key.String()); err == nil {
				var v T
				if jsonErr := json.Unmarshal(entry.Data, &v); jsonErr == nil {
					c.logger.Debug().Str("key", key.String()).Msg("hydrated from disk")
					return hydrated{value: v, fetchedAt: entry.CreatedAt}, nil
				}
			}
		}

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if c.disk.IsEnabled() {
			if data, jsonErr := json.Marshal(v); jsonErr == nil {
				if setErr := c.disk.Set(key.String(), data); setErr != nil {
					c.logger.Warn().Err(setErr).Str("key", key.String()).Msg("disk cache write failed")
				}
			}
		}
		return v, nil
	}
}

// Subscribe marks key as observed so it is not collected. The returned
// function releases the subscription; calling it more than once is safe.
func (c *Cache) Subscribe(key Key) func() {
	c.mu.Lock()
	c.observers[key]++
	if r, ok := c.entries[key]; ok && r.gcTimer != nil {
		r.gcTimer.Stop()
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.observers[key]--
			if c.observers[key] <= 0 {
				delete(c.observers, key)
			}
			if r, ok := c.entries[key]; ok && !c.closed {
				c.touchLocked(r)
			}
		})
	}
}

// Invalidate marks every entry whose key has the given prefix as stale and
// removes matching disk entries. Cached values are kept and served until the
// refetch replaces them. It returns the number of in-memory entries matched.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	matched := 0
	for k, r := range c.entries {
		if !k.HasPrefix(prefix) {
			continue
		}
		matched++
		r.invalidated = true
		if r.inflight != nil {
			r.invalidateOnSettle = true
		}
	}
	c.mu.Unlock()

	if c.disk.IsEnabled() {
		err := c.disk.DeleteMatching(func(s string) bool {
			k, err := ParseKey(s)
			return err == nil && k.HasPrefix(prefix)
		})
		if err != nil {
			c.logger.Warn().Err(err).Str("prefix", prefix.String()).Msg("disk cache invalidation failed")
		}
	}

	c.logger.Debug().Str("prefix", prefix.String()).Int("matched", matched).Msg("invalidated")
	return matched
}

// Clear drops every entry. In-flight fetches still resolve for the callers
// waiting on them but their results are discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.entries {
		if r.gcTimer != nil {
			r.gcTimer.Stop()
		}
	}
	c.entries = make(map[Key]*record)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a copy of the activity counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// StaleTime returns the configured staleness window.
func (c *Cache) StaleTime() time.Duration {
	return c.staleTime
}

// Close cancels in-flight fetches, stops every GC timer and waits for fetch
// goroutines to return. Later Gets return ErrClosed.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, r := range c.entries {
		if r.gcTimer != nil {
			r.gcTimer.Stop()
		}
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Cache) isStaleLocked(r *record, now time.Time) bool {
	return r.status == StatusFulfilled && now.Sub(r.updatedAt) >= c.staleTime
}

// startLocked launches fetch for r. Must be called with c.mu held.
func (c *Cache) startLocked(r *record, fetch FetchFunc) {
	cl := &call{done: make(chan struct{})}
	r.inflight = cl
	if r.gcTimer != nil {
		r.gcTimer.Stop()
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		data, err := runFetch(c.ctx, fetch)
		c.settle(r, cl, data, err)
	}()
}

func runFetch(ctx context.Context, fetch FetchFunc) (data any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("fetch panicked: %v", p)
		}
	}()
	return fetch(ctx)
}

// settle records the outcome of cl on r and wakes its waiters.
func (c *Cache) settle(r *record, cl *call, data any, err error) {
	fetchedAt := c.now()
	if h, ok := data.(hydrated); ok {
		data, fetchedAt = h.value, h.fetchedAt
	}

	c.mu.Lock()
	if err == nil {
		cl.data = data
	} else {
		cl.data = r.data
		cl.err = err
	}

	// The record may have been cleared or collected while the fetch ran.
	if current, ok := c.entries[r.key]; ok && current == r && r.inflight == cl {
		if err == nil {
			r.status = StatusFulfilled
			r.data = data
			r.hasData = true
			r.err = nil
			r.updatedAt = fetchedAt
		} else {
			r.status = StatusRejected
			r.err = err
		}
		r.inflight = nil
		r.invalidated = r.invalidateOnSettle
		r.invalidateOnSettle = false
		if !c.closed {
			c.touchLocked(r)
		}
	}
	c.mu.Unlock()

	close(cl.done)

	if err != nil {
		c.logger.Debug().Err(err).Str("key", r.key.String()).Msg("fetch rejected")
	} else {
		c.logger.Debug().Str("key", r.key.String()).Msg("fetch fulfilled")
	}
}

// touchLocked restarts r's GC countdown when nothing observes it.
func (c *Cache) touchLocked(r *record) {
	if c.gcTime <= 0 || r.inflight != nil || c.observers[r.key] > 0 {
		if r.gcTimer != nil {
			r.gcTimer.Stop()
		}
		return
	}
	if r.gcTimer == nil {
		r.gcTimer = time.AfterFunc(c.gcTime, func() { c.collect(r) })
		return
	}
	r.gcTimer.Reset(c.gcTime)
}

// collect evicts r if it is still unobserved and idle.
func (c *Cache) collect(r *record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if current, ok := c.entries[r.key]; !ok || current != r {
		return
	}
	if r.inflight != nil || c.observers[r.key] > 0 {
		return
	}
	delete(c.entries, r.key)
	c.stats.Evictions++
	c.logger.Debug().Str("key", r.key.String()).Msg("evicted")
}
