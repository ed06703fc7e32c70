// Package cache provides TTL caching of search results with in-flight
// request collapsing, backed by a pluggable store (in-memory or Redis).
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/travel2go/engine/internal/search"
	"github.com/travel2go/engine/internal/search/types"
)

// Store persists search results under a key with a TTL chosen by the store.
type Store interface {
	// Get returns the cached result and whether the key was present.
	Get(ctx context.Context, key string) (*types.Result, bool, error)
	// Set stores the result.
	Set(ctx context.Context, key string, result *types.Result) error
	// Close releases store resources.
	Close() error
}

// Cache collapses concurrent fetches for the same key (singleflight) on top
// of a Store.
type Cache struct {
	store Store

	mu       sync.Mutex
	inflight map[string]*inflightRequest
}

type inflightRequest struct {
	done   chan struct{}
	result *types.Result
	err    error
}

// New creates a Cache on top of the given store.
func New(store Store) *Cache {
	return &Cache{
		store:    store,
		inflight: make(map[string]*inflightRequest),
	}
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Key generates a cache key covering every request field that affects the
// result.
func (c *Cache) Key(req search.Request) string {
	f := req.Filters
	return fmt.Sprintf("search_v1:%s:%s:%d:%.2f:%d:%d:%t:%.1f:%s:%s:%d",
		req.Origin, req.Period, req.Nights, req.Budget,
		f.MaxStops, f.MaxDurationHours, f.BaggageRequired, f.MinRating, f.LodgingType,
		strings.Join(req.Destinations, ","), req.Limit)
}

// GetOrFetch retrieves from the store or executes the fetch function.
// Concurrent requests for the same key are collapsed. Returns the result and
// a boolean indicating a cache hit. Store errors degrade to a fetch, never to
// a failed search.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func() (*types.Result, error)) (*types.Result, bool, error) {
	if result, ok, err := c.store.Get(ctx, key); err == nil && ok {
		return result, true, nil
	}

	c.mu.Lock()

	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.result, false, inflight.err
		case <-ctx.Done():
			return nil, false, context.Cause(ctx)
		}
	}

	inflight := &inflightRequest{
		done: make(chan struct{}),
	}
	c.inflight[key] = inflight
	c.mu.Unlock()

	// Execute fetch (outside of lock)
	result, err := fetch()

	c.mu.Lock()
	inflight.result = result
	inflight.err = err
	delete(c.inflight, key)
	c.mu.Unlock()

	if err == nil && result != nil {
		_ = c.store.Set(ctx, key, result)
	}

	close(inflight.done)

	return result, false, err
}

// MemoryStore is an in-memory Store with TTL expiry and background cleanup.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	done    chan struct{}
}

type memoryEntry struct {
	result    *types.Result
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore with the specified TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	go s.cleanup()

	return s
}

// Get returns the cached result if present and not expired.
func (s *MemoryStore) Get(_ context.Context, key string) (*types.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.result, true, nil
}

// Set stores the result with the store's TTL.
func (s *MemoryStore) Set(_ context.Context, key string, result *types.Result) error {
	s.mu.Lock()
	s.entries[key] = &memoryEntry{
		result:    result,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

// Close stops the background cleanup goroutine.
func (s *MemoryStore) Close() error {
	close(s.done)
	return nil
}

// cleanup periodically removes expired entries.
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, entry := range s.entries {
				if now.After(entry.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}
