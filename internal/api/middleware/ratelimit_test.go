package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/felixgeelhaar/classtrack/internal/api/middleware"
)

// countingLimiter allows the first n requests per key
type countingLimiter struct {
	mu   sync.Mutex
	n    int
	seen map[string]int
	keys []string
}

func newCountingLimiter(n int) *countingLimiter {
	return &countingLimiter{n: n, seen: make(map[string]int)}
}

func (l *countingLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	l.seen[key]++
	return l.seen[key] <= l.n
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_RejectsOverAllowance(t *testing.T) {
	limiter := newCountingLimiter(2)
	h := middleware.RateLimit(limiter)(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth?action=login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d; want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth?action=login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d; want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != false || body["code"] != "RATE_LIMITED" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestRateLimit_KeyedByClientIP(t *testing.T) {
	limiter := newCountingLimiter(1)
	h := middleware.RateLimit(limiter)(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth?action=login", nil)
		req.RemoteAddr = ip + ":51234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("client %s should be allowed, got %d", ip, rec.Code)
		}
	}

	if len(limiter.keys) != 2 || limiter.keys[0] != "10.0.0.1" || limiter.keys[1] != "10.0.0.2" {
		t.Errorf("limiter keys = %v", limiter.keys)
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	h := middleware.RateLimit(nil)(okHandler())

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d; want 200", i+1, rec.Code)
		}
	}
}

func TestNewLimiter_EventuallyDenies(t *testing.T) {
	limiter := middleware.NewLimiter(3)
	defer limiter.Close()

	ctx := context.Background()
	if !limiter.Allow(ctx, "client") {
		t.Fatal("first request should be allowed")
	}

	denied := false
	for i := 0; i < 20; i++ {
		if !limiter.Allow(ctx, "client") {
			denied = true
			break
		}
	}
	if !denied {
		t.Error("limiter should deny once the burst is spent")
	}
	if !limiter.Allow(ctx, "other-client") {
		t.Error("other clients keep their own allowance")
	}
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := newCountingLimiter(2)
	h := middleware.RealIP(nil)(middleware.RateLimit(limiter)(okHandler()))

	allowed := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth?action=login", nil)
		req.RemoteAddr = "198.51.100.20:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusTooManyRequests {
			allowed++
		}
	}

	if allowed != 2 {
		t.Errorf("allowed = %d; want 2 with rotating forwarding headers", allowed)
	}
	for _, key := range limiter.keys {
		if key != "198.51.100.20" {
			t.Fatalf("limiter keyed on %q; want the peer address", key)
		}
	}
}
