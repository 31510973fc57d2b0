package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	testValkeyClient(t)

	client, err := ConnectValkey(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"), os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Fatalf("ConnectValkey: %v", err)
	}
	client.Close()
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey("127.0.0.1", "1", "", 0); err == nil {
		t.Error("expected error for unreachable Valkey")
	}
}

func TestPageCacheSetGetInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, time.Minute)
	ctx := context.Background()

	if _, ok := pc.Get(ctx, "/python-basics"); ok {
		t.Fatal("expected miss on empty cache")
	}

	pc.Set(ctx, "/python-basics", []byte("<h1>Python</h1>"))
	got, ok := pc.Get(ctx, "/python-basics")
	if !ok || string(got) != "<h1>Python</h1>" {
		t.Fatalf("Get: got %q, %v", got, ok)
	}

	pc.Invalidate(ctx, "/python-basics")
	if _, ok := pc.Get(ctx, "/python-basics"); ok {
		t.Error("expected miss after invalidate")
	}
}

func TestPageCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		pc.Set(ctx, "/page-"+strconv.Itoa(i), []byte("x"))
	}
	n, err := pc.InvalidateAll(ctx)
	if err != nil {
		t.Fatalf("InvalidateAll: %v", err)
	}
	if n < 3 {
		t.Errorf("deleted: got %d, want >= 3", n)
	}
	if _, ok := pc.Get(ctx, "/page-0"); ok {
		t.Error("expected miss after InvalidateAll")
	}
}

func TestPageCacheMiddleware(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, time.Minute, "ts_session")

	var calls atomic.Int32
	h := pc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("not found"))
			return
		}
		w.Write([]byte("<h1>Loops</h1>"))
	}))

	get := func(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	if rr := get("/loops"); rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first request: X-Cache %q", rr.Header().Get("X-Cache"))
	}
	rr := get("/loops")
	if rr.Header().Get("X-Cache") != "HIT" || rr.Body.String() != "<h1>Loops</h1>" {
		t.Errorf("second request: X-Cache %q body %q", rr.Header().Get("X-Cache"), rr.Body.String())
	}
	if calls.Load() != 1 {
		t.Errorf("handler calls: got %d, want 1", calls.Load())
	}

	// Signed-in members bypass the cache.
	get("/loops", &http.Cookie{Name: "ts_session", Value: "abc"})
	if calls.Load() != 2 {
		t.Errorf("bypass: handler calls %d, want 2", calls.Load())
	}

	// Errors are not cached.
	get("/missing")
	get("/missing")
	if calls.Load() != 4 {
		t.Errorf("404s: handler calls %d, want 4", calls.Load())
	}
}

func TestCacheable(t *testing.T) {
	pc := NewPageCache(nil, 0, "ts_session", "ts_flash")

	tests := []struct {
		name   string
		method string
		target string
		cookie string
		want   bool
	}{
		{"anonymous get", http.MethodGet, "/loops", "", true},
		{"query string", http.MethodGet, "/loops?x=1", "", false},
		{"post", http.MethodPost, "/loops", "", false},
		{"session", http.MethodGet, "/loops", "ts_session", false},
		{"flash", http.MethodGet, "/loops", "ts_flash", false},
		{"unrelated cookie", http.MethodGet, "/loops", "ts_csrf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: tt.cookie, Value: "v"})
			}
			if got := pc.cacheable(req); got != tt.want {
				t.Errorf("cacheable: got %v, want %v", got, tt.want)
			}
		})
	}

	if pc.ttl != DefaultPageTTL {
		t.Errorf("zero ttl should default, got %v", pc.ttl)
	}
}
