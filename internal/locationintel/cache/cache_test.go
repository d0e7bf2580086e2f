package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testToken = "test-token"

type testCacheConfig struct {
	url        string
	token      string
	maxEntries int
	redisURL   string
}

func (c *testCacheConfig) GetLocationCacheRESTURL() string            { return c.url }
func (c *testCacheConfig) GetLocationCacheRESTToken() string          { return c.token }
func (c *testCacheConfig) GetLocationCacheRESTTimeout() time.Duration { return 2 * time.Second }
func (c *testCacheConfig) GetLocationCacheMaxEntries() int            { return c.maxEntries }
func (c *testCacheConfig) GetRedisURL() string                        { return c.redisURL }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type intelPayload struct {
	Lat         float64            `json:"lat"`
	Competitors []string           `json:"competitors"`
	Scores      map[string]float64 `json:"scores"`
	Nested      *intelPayload      `json:"nested,omitempty"`
}

func samplePayload() intelPayload {
	return intelPayload{
		Lat:         12.97159,
		Competitors: []string{"Starbucks", "Chai Point"},
		Scores:      map[string]float64{"footfall": 61.5, "affluence": 40},
		Nested:      &intelPayload{Lat: 1, Competitors: []string{}},
	}
}

// newRESTServer serves the JSON command protocol on top of an in-memory Redis.
func newRESTServer(t *testing.T) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}

		var command []string
		if err := json.NewDecoder(r.Body).Decode(&command); err != nil || len(command) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "ERR malformed command"})
			return
		}

		args := make([]interface{}, len(command))
		for i, part := range command {
			args[i] = part
		}

		result, err := rdb.Do(r.Context(), args...).Result()
		switch {
		case errors.Is(err, redis.Nil):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": nil})
		case err != nil:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		default:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
		}
	}))
	t.Cleanup(srv.Close)

	return srv, mr
}

func TestMemoryBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(&testCacheConfig{}, nil)

	want := samplePayload()
	Set(ctx, c, "k", want)

	got, ok := Get[intelPayload](ctx, c, "k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
	if c.Backend() != BackendMemory {
		t.Fatalf("expected memory backend, got %q", c.Backend())
	}
}

func TestMemoryBackendMiss(t *testing.T) {
	c := New(&testCacheConfig{}, nil)
	if _, ok := Get[intelPayload](context.Background(), c, "absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestMemoryBackendExpiryIsLazyAndIdempotent(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := New(&testCacheConfig{}, nil, WithClock(clock.Now))

	Set(ctx, c, "k", samplePayload())
	store := c.selectStore().(*MemoryStore)

	clock.Advance(TTL - time.Second)
	if _, ok := Get[intelPayload](ctx, c, "k"); !ok {
		t.Fatal("entry should still be live before TTL")
	}

	clock.Advance(2 * time.Second)
	if store.Len() != 1 {
		t.Fatalf("expired entry should stay until read, len=%d", store.Len())
	}
	if _, ok := Get[intelPayload](ctx, c, "k"); ok {
		t.Fatal("expected miss after TTL")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read, len=%d", store.Len())
	}
	if _, ok := Get[intelPayload](ctx, c, "k"); ok {
		t.Fatal("second read of expired entry should also miss")
	}
}

func TestMemoryBackendSetRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := New(&testCacheConfig{}, nil, WithClock(clock.Now))

	Set(ctx, c, "k", 1)
	clock.Advance(TTL - time.Minute)
	Set(ctx, c, "k", 2)
	clock.Advance(30 * time.Minute)

	got, ok := Get[int](ctx, c, "k")
	if !ok || got != 2 {
		t.Fatalf("expected overwritten value 2 with fresh TTL, got %d ok=%v", got, ok)
	}
}

func TestMemoryBackendCorruptEntrySelfHeals(t *testing.T) {
	ctx := context.Background()
	c := New(&testCacheConfig{}, nil)
	store := c.selectStore().(*MemoryStore)

	store.Set(ctx, "corrupt", []byte("{not json"), TTL)
	if _, ok := Get[intelPayload](ctx, c, "corrupt"); ok {
		t.Fatal("corrupt entry should read as a miss")
	}
	if store.Len() != 0 {
		t.Fatal("corrupt entry should be deleted")
	}

	Set(ctx, c, "typed", "a string")
	if _, ok := Get[int](ctx, c, "typed"); ok {
		t.Fatal("type mismatch should read as a miss")
	}
	if store.Len() != 0 {
		t.Fatal("undecodable entry should be deleted")
	}
}

func TestMemoryBackendConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	c := New(&testCacheConfig{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Set(ctx, c, "shared", i)
			_, _ = Get[int](ctx, c, "shared")
		}(i)
	}
	wg.Wait()

	got, ok := Get[int](ctx, c, "shared")
	if !ok || got < 0 || got >= 32 {
		t.Fatalf("expected one of the written values, got %d ok=%v", got, ok)
	}
}

func TestBackendSelection(t *testing.T) {
	cases := []struct {
		name string
		cfg  testCacheConfig
		want string
	}{
		{"no credentials", testCacheConfig{}, BackendMemory},
		{"url only", testCacheConfig{url: "http://cache.invalid"}, BackendMemory},
		{"token only", testCacheConfig{token: testToken}, BackendMemory},
		{"both credentials", testCacheConfig{url: "http://cache.invalid", token: testToken}, BackendREST},
		{"bounded fallback", testCacheConfig{maxEntries: 10}, BackendBounded},
		{"rest wins over bounded", testCacheConfig{url: "http://cache.invalid", token: testToken, maxEntries: 10}, BackendREST},
		{"redis url", testCacheConfig{redisURL: "redis://localhost:6379/0"}, BackendRedis},
		{"rest wins over redis", testCacheConfig{url: "http://cache.invalid", token: testToken, redisURL: "redis://localhost:6379/0"}, BackendREST},
		{"redis wins over bounded", testCacheConfig{redisURL: "redis://localhost:6379/0", maxEntries: 10}, BackendRedis},
		{"invalid redis url", testCacheConfig{redisURL: "ftp://localhost"}, BackendMemory},
		{"invalid redis url with bound", testCacheConfig{redisURL: "ftp://localhost", maxEntries: 10}, BackendBounded},
	}

	for _, tc := range cases {
		cfg := tc.cfg
		c := New(&cfg, nil)
		if got := c.Backend(); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
		if err := c.Close(); err != nil {
			t.Fatalf("%s: close: %v", tc.name, err)
		}
	}
}

func TestBackendSelectionIsMemoized(t *testing.T) {
	cfg := &testCacheConfig{}
	c := New(cfg, nil)

	Set(context.Background(), c, "k", 1)
	cfg.url, cfg.token = "http://cache.invalid", testToken

	if c.Backend() != BackendMemory {
		t.Fatalf("backend must not be re-selected after first use, got %q", c.Backend())
	}
	if got, ok := Get[int](context.Background(), c, "k"); !ok || got != 1 {
		t.Fatal("value written before the config change should still be readable")
	}
}

func TestBoundedBackendRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := New(&testCacheConfig{maxEntries: 100}, nil, WithClock(clock.Now))

	want := samplePayload()
	Set(ctx, c, "k", want)
	got, ok := Get[intelPayload](ctx, c, "k")
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %+v ok=%v", got, ok)
	}

	clock.Advance(TTL + time.Second)
	if _, ok := Get[intelPayload](ctx, c, "k"); ok {
		t.Fatal("expected miss after TTL")
	}
	if _, ok := Get[intelPayload](ctx, c, "k"); ok {
		t.Fatal("second read should also miss")
	}
}

func TestBoundedBackendCorruptEntrySelfHeals(t *testing.T) {
	ctx := context.Background()
	c := New(&testCacheConfig{maxEntries: 100}, nil)
	store := c.selectStore().(*BoundedStore)

	store.Set(ctx, "corrupt", []byte("[1,"), TTL)
	if _, ok := Get[[]int](ctx, c, "corrupt"); ok {
		t.Fatal("corrupt entry should read as a miss")
	}
	if _, ok := store.Get(ctx, "corrupt"); ok {
		t.Fatal("corrupt entry should be deleted")
	}
}

func TestRESTBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv, mr := newRESTServer(t)
	c := New(&testCacheConfig{url: srv.URL, token: testToken}, nil)

	want := samplePayload()
	Set(ctx, c, "loc", want)

	got, ok := Get[intelPayload](ctx, c, "loc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
	if ttl := mr.TTL("loc"); ttl != TTL {
		t.Fatalf("expected per-key expiry %v, got %v", TTL, ttl)
	}
	if c.Backend() != BackendREST {
		t.Fatalf("expected rest backend, got %q", c.Backend())
	}
}

func TestRESTBackendMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	srv, mr := newRESTServer(t)
	c := New(&testCacheConfig{url: srv.URL, token: testToken}, nil)

	if _, ok := Get[intelPayload](ctx, c, "absent"); ok {
		t.Fatal("expected miss for absent key")
	}

	Set(ctx, c, "loc", samplePayload())
	mr.FastForward(TTL + time.Second)
	if _, ok := Get[intelPayload](ctx, c, "loc"); ok {
		t.Fatal("expected miss after remote expiry")
	}
}

func TestRESTBackendCorruptValueIsIgnoredNotDeleted(t *testing.T) {
	ctx := context.Background()
	srv, mr := newRESTServer(t)
	c := New(&testCacheConfig{url: srv.URL, token: testToken}, nil)

	if err := mr.Set("loc", "{oops"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := Get[intelPayload](ctx, c, "loc"); ok {
		t.Fatal("corrupt remote value should read as a miss")
	}
	if !mr.Exists("loc") {
		t.Fatal("remote entry should be left for TTL expiry")
	}
}

func TestRESTBackendFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()

	handlers := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>gateway</html>"))
		},
		"error reply": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":"WRONGPASS"}`))
		},
		"non-string result": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"result":42}`))
		},
	}

	for name, handler := range handlers {
		srv := httptest.NewServer(handler)
		c := New(&testCacheConfig{url: srv.URL, token: testToken}, nil)

		Set(ctx, c, "loc", samplePayload())
		if _, ok := Get[intelPayload](ctx, c, "loc"); ok {
			t.Fatalf("%s: expected miss", name)
		}
		srv.Close()
	}
}

func TestRESTBackendWrongTokenIsAMiss(t *testing.T) {
	ctx := context.Background()
	srv, mr := newRESTServer(t)
	c := New(&testCacheConfig{url: srv.URL, token: "wrong"}, nil)

	Set(ctx, c, "loc", samplePayload())
	if mr.Exists("loc") {
		t.Fatal("unauthorised write should not reach the store")
	}
	if _, ok := Get[intelPayload](ctx, c, "loc"); ok {
		t.Fatal("expected miss")
	}
}

func TestRESTBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(&testCacheConfig{url: url, token: testToken}, nil)
	Set(context.Background(), c, "loc", 1)
	if _, ok := Get[int](context.Background(), c, "loc"); ok {
		t.Fatal("expected miss when the remote cache is down")
	}
}

func TestRESTBackendHonoursContextCancellation(t *testing.T) {
	srv, _ := newRESTServer(t)
	c := New(&testCacheConfig{url: srv.URL, token: testToken}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := Get[int](ctx, c, "loc"); ok {
		t.Fatal("cancelled request should read as a miss")
	}
}

func TestRedisBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := New(&testCacheConfig{redisURL: "redis://" + mr.Addr()}, nil)
	t.Cleanup(func() { _ = c.Close() })

	want := samplePayload()
	Set(ctx, c, "loc", want)

	got, ok := Get[intelPayload](ctx, c, "loc")
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %+v ok=%v", got, ok)
	}
	if ttl := mr.TTL("loc"); ttl != TTL {
		t.Fatalf("expected per-key expiry %v, got %v", TTL, ttl)
	}
	if c.Backend() != BackendRedis {
		t.Fatalf("expected redis backend, got %q", c.Backend())
	}
}

func TestRedisBackendMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := New(&testCacheConfig{redisURL: "redis://" + mr.Addr()}, nil)
	t.Cleanup(func() { _ = c.Close() })

	if _, ok := Get[intelPayload](ctx, c, "absent"); ok {
		t.Fatal("expected miss for absent key")
	}

	Set(ctx, c, "loc", samplePayload())
	mr.FastForward(TTL + time.Second)
	if _, ok := Get[intelPayload](ctx, c, "loc"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestRedisBackendCorruptValueIsIgnoredNotDeleted(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := New(&testCacheConfig{redisURL: "redis://" + mr.Addr()}, nil)
	t.Cleanup(func() { _ = c.Close() })

	if err := mr.Set("loc", "{oops"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := Get[intelPayload](ctx, c, "loc"); ok {
		t.Fatal("corrupt value should read as a miss")
	}
	if !mr.Exists("loc") {
		t.Fatal("entry should be left for TTL expiry")
	}
}

func TestRedisBackendServerDownIsAMiss(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mr := miniredis.RunT(t)
	c := New(&testCacheConfig{redisURL: "redis://" + mr.Addr()}, nil)
	t.Cleanup(func() { _ = c.Close() })
	mr.Close()

	Set(ctx, c, "loc", 1)
	if _, ok := Get[int](ctx, c, "loc"); ok {
		t.Fatal("expected miss when redis is down")
	}
}

func TestCloseIsSafeDuringFirstUse(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(&testCacheConfig{redisURL: "redis://" + mr.Addr()}, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		Get[int](context.Background(), c, "loc")
	}()
	go func() {
		defer wg.Done()
		_ = c.Close()
	}()
	wg.Wait()

	if c.Backend() != BackendRedis {
		t.Fatalf("expected redis backend, got %q", c.Backend())
	}
	if _, ok := Get[int](context.Background(), c, "loc"); ok {
		t.Fatal("closed backend should read as a miss")
	}
}

func TestCloseUnusedMemoryCache(t *testing.T) {
	c := New(&testCacheConfig{}, nil)
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Backend() != BackendMemory {
		t.Fatalf("expected memory backend, got %q", c.Backend())
	}
}
