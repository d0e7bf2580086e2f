package cache

import (
	"context"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryStore is the unbounded in-process fallback. Expired entries are only
// removed when read, so the map grows with key cardinality.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store using now as its clock.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]entry), now: now}
}

// Get returns the value for key, evicting it if it has expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set overwrites key with a fresh expiry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	stored := append([]byte(nil), value...)

	s.mu.Lock()
	s.entries[key] = entry{value: stored, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// BoundedStore is the capacity-limited fallback. It keeps the MemoryStore
// read semantics and additionally evicts by size.
type BoundedStore struct {
	cache *otter.Cache[string, entry]
	now   func() time.Time
}

// NewBoundedStore creates a store holding at most maxEntries entries.
func NewBoundedStore(maxEntries int, now func() time.Time) *BoundedStore {
	if now == nil {
		now = time.Now
	}
	return &BoundedStore{
		cache: otter.Must(&otter.Options[string, entry]{
			MaximumSize:      maxEntries,
			ExpiryCalculator: otter.ExpiryWriting[string, entry](TTL),
		}),
		now: now,
	}
}

// Get returns the value for key, evicting it if it has expired.
func (s *BoundedStore) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := s.cache.GetIfPresent(key)
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		s.cache.Invalidate(key)
		return nil, false
	}
	return e.value, true
}

// Set overwrites key with a fresh expiry.
func (s *BoundedStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	s.cache.Set(key, entry{value: append([]byte(nil), value...), expiresAt: s.now().Add(ttl)})
}

// Delete removes key.
func (s *BoundedStore) Delete(key string) {
	s.cache.Invalidate(key)
}
