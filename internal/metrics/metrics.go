// Package metrics exposes the Prometheus collectors of the ClassTrack API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	AuthEvents      *prometheus.CounterVec
	SessionsCleaned prometheus.Counter
}

// New creates and registers the collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classtrack_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "classtrack_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AuthEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classtrack_auth_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"operation", "outcome"},
		),
		SessionsCleaned: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "classtrack_sessions_cleaned_total",
				Help: "Total number of expired session tokens removed",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records a completed HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

var eventLabels = map[string][2]string{
	domain.EventUserRegistered: {"register", "success"},
	domain.EventUserLoggedIn:   {"login", "success"},
	domain.EventLoginFailed:    {"login", "failure"},
	domain.EventUserLoggedOut:  {"logout", "success"},
}

// HandleEvent counts auth events; other events are ignored
func (m *Metrics) HandleEvent(event domain.Event) {
	labels, ok := eventLabels[event.EventType()]
	if !ok {
		return
	}
	m.AuthEvents.WithLabelValues(labels[0], labels[1]).Inc()
}
