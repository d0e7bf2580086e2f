// Package cache fronts expensive location intelligence lookups with a TTL
// key/value store. The backend is a remote REST key/value service when its
// credentials are configured and an in-process store otherwise. REDIS_URL adds
// an optional tier between the two: without REST credentials a parsable Redis
// URL is used before falling back to the in-process store. Leaving it unset
// keeps the two-backend behaviour.
//
// Cache operations never fail from the caller's point of view: transport and
// decode problems read as a miss, and writes are best effort.
package cache

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

// TTL is the lifetime of every cache entry.
const TTL = 3600 * time.Second

const (
	BackendREST    = "rest"
	BackendRedis   = "redis"
	BackendMemory  = "memory"
	BackendBounded = "memory-bounded"
)

// Store is a byte-oriented key/value backend with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// deleter is implemented by stores that drop undecodable entries.
type deleter interface {
	Delete(key string)
}

// Cache selects its Store on first use and keeps it for its whole lifetime;
// configuration changes after that are not picked up.
type Cache struct {
	cfg    config.LocationCacheConfig
	log    *logger.Logger
	client *http.Client
	now    func() time.Time

	once    sync.Once
	store   Store
	backend string
}

// Option customises a Cache.
type Option func(*Cache)

// WithClock overrides the clock used by the in-process stores.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithHTTPClient overrides the HTTP client used by the REST store.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// New creates a Cache. No backend is chosen until the first Get or Set.
func New(cfg config.LocationCacheConfig, log *logger.Logger, opts ...Option) *Cache {
	c := &Cache{cfg: cfg, log: log, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend reports the selected backend, selecting it if needed.
func (c *Cache) Backend() string {
	c.selectStore()
	return c.backend
}

func (c *Cache) selectStore() Store {
	c.once.Do(func() {
		url, token := c.cfg.GetLocationCacheRESTURL(), c.cfg.GetLocationCacheRESTToken()
		maxEntries := c.cfg.GetLocationCacheMaxEntries()

		if url != "" && token != "" {
			client := c.client
			if client == nil {
				client = &http.Client{Timeout: c.cfg.GetLocationCacheRESTTimeout()}
			}
			c.store, c.backend = NewRESTStore(url, token, client), BackendREST
		} else if redisURL := c.cfg.GetRedisURL(); redisURL != "" {
			store, err := NewRedisStore(redisURL)
			if err == nil {
				c.store, c.backend = store, BackendRedis
			} else if c.log != nil {
				c.log.Warn("invalid REDIS_URL; using in-process location cache", "error", err)
			}
		}

		if c.store == nil {
			if maxEntries > 0 {
				c.store, c.backend = NewBoundedStore(maxEntries, c.now), BackendBounded
			} else {
				c.store, c.backend = NewMemoryStore(c.now), BackendMemory
			}
		}

		if c.log != nil {
			c.log.CacheBackendSelected(c.backend, maxEntries)
		}
	})
	return c.store
}

// Close releases connections held by the backend. It selects the backend if
// that has not happened yet, so it is safe to call concurrently with Get and
// Set; later calls read as misses on closed backends.
func (c *Cache) Close() error {
	if closer, ok := c.selectStore().(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Get returns the cached value for key. Misses, expired entries, transport
// failures and undecodable payloads all return false. Undecodable entries are
// removed from stores that support deletion.
func Get[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var value T
	store := c.selectStore()

	raw, ok := store.Get(ctx, key)
	if !ok {
		return value, false
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		if d, ok := store.(deleter); ok {
			d.Delete(key)
		}
		var zero T
		return zero, false
	}
	return value, true
}

// Set stores value under key for TTL. Failures are swallowed.
func Set[T any](ctx context.Context, c *Cache, key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.selectStore().Set(ctx, key, raw, TTL)
}
