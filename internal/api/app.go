package api

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/felixgeelhaar/classtrack/internal/api/middleware"
	"github.com/felixgeelhaar/classtrack/internal/auth"
	"github.com/felixgeelhaar/classtrack/internal/config"
	"github.com/felixgeelhaar/classtrack/internal/course"
	"github.com/felixgeelhaar/classtrack/internal/metrics"
	"github.com/felixgeelhaar/classtrack/internal/notification"
	"github.com/felixgeelhaar/classtrack/internal/session"
)

// Check reports whether a dependency is usable
type Check func(ctx context.Context) error

// App holds all application dependencies
type App struct {
	Auth          *auth.Service
	Courses       *course.Service
	Notifications *notification.Service
	Sessions      *session.Manager

	// Limiter throttles login and register; nil disables throttling
	Limiter middleware.Limiter
	// Metrics is optional
	Metrics *metrics.Metrics
	// Checks are run by the readiness endpoint, keyed by dependency name
	Checks map[string]Check
	// TrustedProxies may set the client address through forwarding headers
	TrustedProxies []netip.Prefix
}

// AppConfig holds configuration for application initialization
type AppConfig struct {
	Config *config.Config

	Users         auth.Repository
	Courses       course.Repository
	Notifications notification.Repository
	SessionStore  session.Store

	// Hasher defaults to bcrypt at its default cost
	Hasher  auth.Hasher
	Events  auth.EventPublisher
	Limiter middleware.Limiter
	Metrics *metrics.Metrics
	Checks  map[string]Check
}

// NewApp creates a new application instance with all dependencies wired
func NewApp(cfg AppConfig) (*App, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher(0)
	}

	authService, err := auth.NewService(cfg.Users, hasher,
		auth.WithEvents(cfg.Events),
		auth.WithTokenTTL(cfg.Config.TokenTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	trusted, err := config.ParseTrustedProxies(cfg.Config.TrustedProxies)
	if err != nil {
		return nil, err
	}

	return &App{
		Auth:          authService,
		Courses:       course.NewService(cfg.Courses),
		Notifications: notification.NewService(cfg.Notifications),
		Sessions: session.NewManager(cfg.SessionStore, session.ManagerConfig{
			Secret: cfg.Config.SessionSecret,
			TTL:    cfg.Config.SessionTTL,
			Secure: !cfg.Config.Debug,
		}),
		Limiter: cfg.Limiter,
		Metrics: cfg.Metrics,
		Checks:  cfg.Checks,

		TrustedProxies: trusted,
	}, nil
}
