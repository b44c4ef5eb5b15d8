package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, clock *fakeClock) *Cache {
	t.Helper()
	opts := DefaultOptions()
	if clock != nil {
		opts.Now = clock.Now
	}
	c := New(opts)
	t.Cleanup(c.Close)
	return c
}

func countingFetch[T any](counter *atomic.Int32, value T) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		counter.Add(1)
		return value, nil
	}
}

func TestGet_DeduplicatesInFlightFetches(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonDetails", "pikachu")

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "pikachu", nil
	}

	snaps := make([]Snapshot, 5)
	for i := range snaps {
		snaps[i] = c.Get(key, fetch)
		assert.Equal(t, StatusPending, snaps[i].Status)
		assert.True(t, snaps[i].Fetching)
	}
	close(release)

	for _, s := range snaps {
		v, err := s.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "pikachu", v)
	}
	assert.Equal(t, int32(1), calls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(4), stats.Joins)
}

func TestQuery_ConcurrentCallersShareOneFetch(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonList", 1, 20)

	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return 1302, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Query(context.Background(), c, key, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 1302, v)
	}
}

func TestQuery_FreshHitDoesNotFetch(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	key := NewKey("pokemonDetails", "ditto")

	var calls atomic.Int32
	fetch := countingFetch(&calls, "ditto")

	_, err := Query(context.Background(), c, key, fetch)
	require.NoError(t, err)

	clock.Advance(DefaultStaleTime - time.Second)
	v, err := Query(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "ditto", v)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestQuery_StaleWhileRevalidate(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	key := NewKey("pokemonDetails", "eevee")

	_, err := Query(context.Background(), c, key, func(context.Context) (string, error) {
		return "old", nil
	})
	require.NoError(t, err)

	clock.Advance(DefaultStaleTime)

	release := make(chan struct{})
	refetch := func(context.Context) (string, error) {
		<-release
		return "new", nil
	}

	v, err := Query(context.Background(), c, key, refetch)
	require.NoError(t, err)
	assert.Equal(t, "old", v, "stale value served while refetching")

	snap, ok := c.Peek(key)
	require.True(t, ok)
	assert.True(t, snap.Fetching)
	assert.True(t, snap.Stale)

	close(release)
	v2, err := snap.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", v2)

	snap, ok = c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, StatusFulfilled, snap.Status)
	assert.Equal(t, "new", snap.Data)
	assert.False(t, snap.Stale)
	assert.Equal(t, int64(1), c.Stats().Refetches)
}

func TestQuery_RejectedIsNotRetried(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonDetails", "missingno")
	boom := errors.New("boom")

	var calls atomic.Int32
	failing := func(context.Context) (string, error) {
		calls.Add(1)
		return "", boom
	}

	_, err := Query(context.Background(), c, key, failing)
	require.ErrorIs(t, err, boom)

	_, err = Query(context.Background(), c, key, failing)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load())

	v, err := Query(context.Background(), c, key, countingFetch(&calls, "found"), WithRefresh())
	require.NoError(t, err)
	assert.Equal(t, "found", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_RefetchFailureKeepsPreviousData(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonList", 1, 20)

	_, err := Query(context.Background(), c, key, func(context.Context) (string, error) {
		return "page-1", nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, c.Invalidate(NewKey("pokemonList")))

	boom := errors.New("HTTP error! Status: 500")
	snap := c.Get(key, func(context.Context) (any, error) { return nil, boom })
	assert.Equal(t, StatusFulfilled, snap.Status)
	assert.True(t, snap.Stale)
	require.True(t, snap.Fetching)

	data, err := snap.Wait(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "page-1", data)

	after, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, StatusRejected, after.Status)
	assert.True(t, after.HasData)
	assert.Equal(t, "page-1", after.Data)
	assert.ErrorIs(t, after.Err, boom)
}

func TestQuery_HardRefreshWaitsForNewData(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonDetails", "mew")

	_, err := Query(context.Background(), c, key, func(context.Context) (string, error) { return "v1", nil })
	require.NoError(t, err)

	v, err := Query(context.Background(), c, key, func(context.Context) (string, error) { return "v2", nil }, WithRefresh())
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestQuery_TypeMismatch(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonDetails", "abra")

	_, err := Query(context.Background(), c, key, func(context.Context) (string, error) { return "abra", nil })
	require.NoError(t, err)

	_, err = Query(context.Background(), c, key, func(context.Context) (int, error) { return 63, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds string")
}

func TestQuery_PanicBecomesError(t *testing.T) {
	c := newTestCache(t, nil)

	_, err := Query(context.Background(), c, NewKey("boom"), func(context.Context) (string, error) {
		panic("kaboom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestQuery_CallerContextDoesNotCancelSharedFetch(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonDetails", "snorlax")

	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		select {
		case <-release:
			return "snorlax", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := Query(ctx, c, key, fetch)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		s, ok := c.Peek(key)
		return ok && s.Fetching
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	v, err := Query(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "snorlax", v)
}

func TestInvalidate_PrefixMatching(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	keys := []Key{
		NewKey("pokemonList", 1, 20),
		NewKey("pokemonList", 2, 20),
		NewKey("pokemonDetails", "pikachu"),
	}
	for _, k := range keys {
		_, err := Query(ctx, c, k, func(context.Context) (string, error) { return k.String(), nil })
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		prefix Key
		want   int
	}{
		{name: "scope", prefix: NewKey("pokemonList"), want: 2},
		{name: "full key", prefix: NewKey("pokemonList", 2, 20), want: 1},
		{name: "other scope", prefix: NewKey("pokemonDetails"), want: 1},
		{name: "no match", prefix: NewKey("pokemonList", 3), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Invalidate(tt.prefix))
		})
	}

	snap, ok := c.Peek(keys[0])
	require.True(t, ok)
	assert.True(t, snap.Stale)
	assert.Equal(t, keys[0].String(), snap.Data, "invalidated value still served")
}

func TestInvalidate_DuringFetchKeepsEntryStale(t *testing.T) {
	c := newTestCache(t, nil)
	key := NewKey("pokemonDetails", "onix")

	release := make(chan struct{})
	snap := c.Get(key, func(context.Context) (any, error) {
		<-release
		return "onix", nil
	})
	c.Invalidate(NewKey("pokemonDetails"))
	close(release)
	_, err := snap.Wait(context.Background())
	require.NoError(t, err)

	after, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, StatusFulfilled, after.Status)
	assert.True(t, after.Stale)
}

func TestGC_EvictsUnobservedEntries(t *testing.T) {
	opts := DefaultOptions()
	opts.GCTime = 20 * time.Millisecond
	c := New(opts)
	t.Cleanup(c.Close)

	_, err := Query(context.Background(), c, NewKey("pokemonDetails", "zubat"),
		func(context.Context) (string, error) { return "zubat", nil })
	require.NoError(t, err)

	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestGC_SubscriptionPinsEntry(t *testing.T) {
	opts := DefaultOptions()
	opts.GCTime = 20 * time.Millisecond
	c := New(opts)
	t.Cleanup(c.Close)

	key := NewKey("pokemonDetails", "golbat")
	release := c.Subscribe(key)

	_, err := Query(context.Background(), c, key, func(context.Context) (string, error) { return "golbat", nil })
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, c.Len())

	release()
	release()
	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClear_DropsEverything(t *testing.T) {
	c := newTestCache(t, nil)
	for _, name := range []string{"a", "b", "c"} {
		_, err := Query(context.Background(), c, NewKey("pokemonDetails", name),
			func(context.Context) (string, error) { return name, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Peek(NewKey("pokemonDetails", "a"))
	assert.False(t, ok)
}

func TestClose_CancelsFetchesAndTimers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := DefaultOptions()
	opts.GCTime = time.Hour
	c := New(opts)

	_, err := Query(context.Background(), c, NewKey("done"), func(context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)

	started := make(chan struct{})
	snap := c.Get(NewKey("blocked"), func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started

	c.Close()

	_, err = snap.Wait(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	after := c.Get(NewKey("later"), func(context.Context) (any, error) { return "never", nil })
	assert.Equal(t, StatusRejected, after.Status)
	assert.ErrorIs(t, after.Err, ErrClosed)

	c.Close()
}

func TestDiskHydration_SkipsNetworkAcrossCaches(t *testing.T) {
	disk, err := NewDiskStore(t.TempDir(), true, DefaultStaleTime)
	require.NoError(t, err)

	type detail struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	key := NewKey("pokemonDetails", "bulbasaur")
	var calls atomic.Int32
	fetch := countingFetch(&calls, detail{ID: 1, Name: "bulbasaur"})

	opts := DefaultOptions()
	opts.Disk = disk

	first := New(opts)
	v, err := Query(context.Background(), first, key, fetch)
	require.NoError(t, err)
	first.Close()

	second := New(opts)
	t.Cleanup(second.Close)
	v2, err := Query(context.Background(), second, key, fetch)
	require.NoError(t, err)

	assert.Equal(t, v, v2)
	assert.Equal(t, int32(1), calls.Load())

	second.Invalidate(NewKey("pokemonDetails"))
	count, err := disk.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
