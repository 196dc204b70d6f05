package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/api"
	"github.com/felixgeelhaar/classtrack/internal/api/middleware"
	"github.com/felixgeelhaar/classtrack/internal/auth"
	"github.com/felixgeelhaar/classtrack/internal/config"
	"github.com/felixgeelhaar/classtrack/internal/course"
	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/felixgeelhaar/classtrack/internal/metrics"
	"github.com/felixgeelhaar/classtrack/internal/notification"
	"github.com/felixgeelhaar/classtrack/internal/queue"
	"github.com/felixgeelhaar/classtrack/internal/session"
	"github.com/felixgeelhaar/classtrack/internal/storage/postgres"
	"github.com/felixgeelhaar/classtrack/internal/storage/sqlite"
)

// Server represents the ClassTrack HTTP server and the resources it owns
type Server struct {
	cfg    *config.Config
	app    *api.App
	server *http.Server
	events *domain.EventDispatcher

	// memSessions is set when interactive sessions live in process memory
	memSessions *session.MemoryStore

	// closers are released in reverse order of acquisition
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config *config.Config
	// Hasher overrides the default bcrypt hasher
	Hasher auth.Hasher
}

type databaseStores struct {
	users         auth.Repository
	courses       course.Repository
	notifications notification.Repository
	ping          api.Check
}

// NewServer opens the configured stores and wires the application
func NewServer(ctx context.Context, cfg ServerConfig) (_ *Server, err error) {
	s := &Server{
		cfg:    cfg.Config,
		events: domain.NewEventDispatcher(),
	}
	defer func() {
		if err != nil {
			s.closeAll()
		}
	}()

	stores, err := s.openDatabase(ctx)
	if err != nil {
		return nil, err
	}

	sessionStore, err := s.openSessionStore()
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	s.events.SubscribeAll(m.HandleEvent)
	s.connectEventQueue()

	var limiter middleware.Limiter
	if !s.cfg.Debug {
		rl := middleware.NewLimiter(s.cfg.RateLimitPerMinute)
		s.addCloser("rate limiter", rl.Close)
		limiter = rl
	}

	s.app, err = api.NewApp(api.AppConfig{
		Config:        s.cfg,
		Users:         stores.users,
		Courses:       stores.courses,
		Notifications: stores.notifications,
		SessionStore:  sessionStore,
		Hasher:        cfg.Hasher,
		Events:        s.events,
		Limiter:       limiter,
		Metrics:       m,
		Checks: map[string]api.Check{
			"database": stores.ping,
			"sessions": sessionStore.Ping,
		},
	})
	if err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      api.NewRouter(s.app),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// openDatabase connects the configured driver and applies migrations
func (s *Server) openDatabase(ctx context.Context) (databaseStores, error) {
	switch s.cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, s.cfg.DatabaseURL, postgres.DefaultConnectConfig)
		if err != nil {
			return databaseStores{}, fmt.Errorf("connect postgres: %w", err)
		}
		s.addCloser("postgres", func() error {
			db.Close()
			return nil
		})
		if err := db.Migrate(ctx); err != nil {
			return databaseStores{}, fmt.Errorf("migrate postgres: %w", err)
		}
		return databaseStores{
			users:         postgres.NewAuthStore(db),
			courses:       postgres.NewCourseStore(db),
			notifications: postgres.NewNotificationStore(db),
			ping:          db.Ping,
		}, nil

	default:
		db, err := sqlite.Open(s.cfg.SQLitePath)
		if err != nil {
			return databaseStores{}, err
		}
		s.addCloser("sqlite", db.Close)
		if err := db.Migrate(); err != nil {
			return databaseStores{}, fmt.Errorf("migrate sqlite: %w", err)
		}
		return databaseStores{
			users:         sqlite.NewAuthStore(db),
			courses:       sqlite.NewCourseStore(db),
			notifications: sqlite.NewNotificationStore(db),
			ping:          db.Ping,
		}, nil
	}
}

// openSessionStore uses Redis when configured, process memory otherwise
func (s *Server) openSessionStore() (session.Store, error) {
	if s.cfg.RedisURL == "" {
		s.memSessions = session.NewMemoryStore()
		return s.memSessions, nil
	}

	store, err := session.NewRedisStoreFromURL(s.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("open redis session store: %w", err)
	}
	s.addCloser("redis", store.Close)
	return store, nil
}

// connectEventQueue forwards auth events to RabbitMQ when configured. The
// server runs without the queue if the broker is unreachable.
func (s *Server) connectEventQueue() {
	if s.cfg.RabbitMQURL == "" {
		return
	}

	conn, err := queue.NewConnection(s.cfg.RabbitMQURL)
	if err != nil {
		slog.Warn("event queue unavailable, auth events will not be forwarded", "error", err)
		return
	}
	s.addCloser("rabbitmq", conn.Close)

	producer := queue.NewProducer(conn, slog.Default())
	s.events.SubscribeAll(producer.Handle)
}

func (s *Server) addCloser(name string, fn func() error) {
	s.closers = append(s.closers, namedCloser{name: name, close: fn})
}

func (s *Server) closeAll() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.close(); err != nil {
			slog.Warn("failed to close resource", "resource", c.name, "error", err)
		}
	}
	s.closers = nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the session janitor and serves HTTP until Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.SessionCleanupInterval > 0 {
		go runEvery(ctx, s.cfg.SessionCleanupInterval, func(ctx context.Context) {
			s.sweep(ctx)
		})
	}

	slog.Info("starting classtrack server",
		"addr", s.server.Addr,
		"database", s.cfg.DatabaseDriver,
		"redis_sessions", s.memSessions == nil,
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases its resources
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server...")

	err := s.server.Shutdown(ctx)
	s.closeAll()
	return err
}
