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

	"github.com/travel2go/engine/internal/search"
	"github.com/travel2go/engine/internal/search/types"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c := New(NewMemoryStore(ttl))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_Key_CoversRequestFields(t *testing.T) {
	c := newTestCache(t, time.Minute)

	base := search.Request{
		Origin:  "YUL",
		Budget:  1500,
		Period:  "October 2026",
		Nights:  7,
		Filters: types.DefaultFilters(),
	}

	mutations := []func(*search.Request){
		func(r *search.Request) { r.Origin = "YYZ" },
		func(r *search.Request) { r.Budget = 2000 },
		func(r *search.Request) { r.Period = "November 2026" },
		func(r *search.Request) { r.Nights = 10 },
		func(r *search.Request) { r.Filters.MaxStops = 0 },
		func(r *search.Request) { r.Filters.MinRating = 4 },
		func(r *search.Request) { r.Filters.LodgingType = "hostel" },
		func(r *search.Request) { r.Destinations = []string{"BCN"} },
		func(r *search.Request) { r.Limit = 3 },
	}

	baseKey := c.Key(base)
	assert.Equal(t, baseKey, c.Key(base), "key must be deterministic")

	for i, mutate := range mutations {
		req := base
		mutate(&req)
		assert.NotEqual(t, baseKey, c.Key(req), "mutation %d should change the key", i)
	}
}

func TestCache_GetOrFetch_MissThenHit(t *testing.T) {
	c := newTestCache(t, time.Minute)

	fetches := 0
	fetch := func() (*types.Result, error) {
		fetches++
		return &types.Result{FlightsFound: 3}, nil
	}

	result, hit, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, result.FlightsFound)

	result, hit, err = c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, result.FlightsFound)
	assert.Equal(t, 1, fetches, "second call must be served from cache")
}

func TestCache_GetOrFetch_ErrorNotCached(t *testing.T) {
	c := newTestCache(t, time.Minute)

	_, hit, err := c.GetOrFetch(context.Background(), "k", func() (*types.Result, error) {
		return nil, errors.New("search failed")
	})
	require.Error(t, err)
	assert.False(t, hit)

	// The failure must not poison the key.
	result, hit, err := c.GetOrFetch(context.Background(), "k", func() (*types.Result, error) {
		return &types.Result{FlightsFound: 1}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, result.FlightsFound)
}

func TestCache_GetOrFetch_Expiry(t *testing.T) {
	c := newTestCache(t, 30*time.Millisecond)

	fetches := 0
	fetch := func() (*types.Result, error) {
		fetches++
		return &types.Result{}, nil
	}

	_, _, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, hit, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.False(t, hit, "expired entry must refetch")
	assert.Equal(t, 2, fetches)
}

func TestCache_GetOrFetch_CollapsesConcurrentFetches(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var fetches atomic.Int64
	release := make(chan struct{})
	fetch := func() (*types.Result, error) {
		fetches.Add(1)
		<-release
		return &types.Result{FlightsFound: 7}, nil
	}

	const waiters = 10
	var wg sync.WaitGroup
	results := make([]*types.Result, waiters)

	for i := 0; i < waiters; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, _, err := c.GetOrFetch(context.Background(), "k", fetch)
			assert.NoError(t, err)
			results[i] = result
		}()
	}

	// Give the waiters time to pile onto the in-flight request.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), fetches.Load(), "concurrent fetches for one key must collapse")
	for _, result := range results {
		require.NotNil(t, result)
		assert.Equal(t, 7, result.FlightsFound)
	}
}

func TestCache_GetOrFetch_ContextCancelledWhileWaiting(t *testing.T) {
	c := newTestCache(t, time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _, _ = c.GetOrFetch(context.Background(), "k", func() (*types.Result, error) {
			close(started)
			<-release
			return &types.Result{}, nil
		})
	}()

	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.GetOrFetch(ctx, "k", func() (*types.Result, error) {
		t.Error("fetch must not run while another is in flight")
		return nil, nil
	})
	assert.Error(t, err)
}

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer func() { _ = s.Close() }()

	_, ok, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(context.Background(), "k", &types.Result{FlightsFound: 2}))

	result, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, result.FlightsFound)
}
