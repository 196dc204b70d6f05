package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/api/respond"
	"github.com/felixgeelhaar/fortify/ratelimit"
)

// NewLimiter creates a per-key token bucket allowing perMinute requests a
// minute with bursts of the same size
func NewLimiter(perMinute int) ratelimit.RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return ratelimit.New(&ratelimit.Config{
		Rate:     perMinute,
		Burst:    perMinute,
		Interval: time.Minute,
	})
}

// Limiter decides whether key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit rejects requests once the client IP has used its allowance.
// A nil limiter disables the check.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)

			if !limiter.Allow(r.Context(), key) {
				slog.Warn("rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
					"action", r.URL.Query().Get("action"),
					"request_id", GetRequestID(r.Context()),
				)

				w.Header().Set("Retry-After", "60")
				respond.Error(w, r, http.StatusTooManyRequests, respond.CodeRateLimited,
					"Too many requests, please try again later", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
