package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodPost, "/api/auth", http.StatusOK, 15*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/auth", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/auth", http.StatusUnauthorized, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/auth", "200")); got != 2 {
		t.Errorf("200 requests = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/auth", "401")); got != 1 {
		t.Errorf("401 requests = %v; want 1", got)
	}
	if got := testutil.CollectAndCount(m.HTTPDuration); got != 1 {
		t.Errorf("duration series = %d; want 1", got)
	}
}

func TestHandleEvent(t *testing.T) {
	m := New()
	now := time.Now()

	m.HandleEvent(domain.NewAuthEvent(domain.EventUserRegistered, 1, "alice", now))
	m.HandleEvent(domain.NewAuthEvent(domain.EventUserLoggedIn, 1, "alice", now))
	m.HandleEvent(domain.NewAuthEvent(domain.EventLoginFailed, 0, "", now))
	m.HandleEvent(domain.NewAuthEvent(domain.EventLoginFailed, 1, "alice", now))
	m.HandleEvent(domain.NewAuthEvent(domain.EventUserLoggedOut, 1, "alice", now))
	m.HandleEvent(domain.NewAuthEvent("course.created", 1, "alice", now))

	tests := []struct {
		operation string
		outcome   string
		want      float64
	}{
		{"register", "success", 1},
		{"login", "success", 1},
		{"login", "failure", 2},
		{"logout", "success", 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.AuthEvents.WithLabelValues(tt.operation, tt.outcome))
		if got != tt.want {
			t.Errorf("%s/%s = %v; want %v", tt.operation, tt.outcome, got, tt.want)
		}
	}
	if got := testutil.CollectAndCount(m.AuthEvents); got != 4 {
		t.Errorf("auth event series = %d; want 4", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	m.SessionsCleaned.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"classtrack_http_requests_total",
		"classtrack_http_request_duration_seconds",
		"classtrack_sessions_cleaned_total 3",
		"go_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestNew_Independent(t *testing.T) {
	a := New()
	b := New()
	a.ObserveRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	if got := testutil.ToFloat64(b.HTTPRequests.WithLabelValues("GET", "/health", "200")); got != 0 {
		t.Errorf("registries should be independent, got %v", got)
	}
}
