package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/api/handlers"
	"github.com/felixgeelhaar/classtrack/internal/api/middleware"
	"github.com/felixgeelhaar/classtrack/internal/api/respond"
)

// Action binds a method and ?action= value to a handler
type Action struct {
	Method  string
	Name    string
	Handler http.Handler
}

// ActionRouter dispatches on the action query parameter. An action known
// under another method yields 405; an unknown action yields 400.
type ActionRouter struct {
	routes map[string]map[string]http.Handler
}

// NewActionRouter builds a router from actions
func NewActionRouter(actions ...Action) *ActionRouter {
	ar := &ActionRouter{routes: make(map[string]map[string]http.Handler)}
	for _, a := range actions {
		byMethod, ok := ar.routes[a.Name]
		if !ok {
			byMethod = make(map[string]http.Handler)
			ar.routes[a.Name] = byMethod
		}
		byMethod[a.Method] = a.Handler
	}
	return ar
}

func (ar *ActionRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	byMethod, ok := ar.routes[r.URL.Query().Get("action")]
	if !ok {
		respond.BadRequest(w, r, "Invalid action")
		return
	}
	h, ok := byMethod[r.Method]
	if !ok {
		respond.MethodNotAllowed(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

// NewRouter creates the API handler with all routes and middleware configured
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()

	authHandler := handlers.NewAuthHandler(app.Auth, app.Sessions)
	courseHandler := handlers.NewCourseHandler(app.Courses)
	notificationHandler := handlers.NewNotificationHandler(app.Notifications)

	limited := middleware.RateLimit(app.Limiter)
	gated := middleware.RequireAuth

	authRoutes := NewActionRouter(
		Action{http.MethodPost, "register", limited(http.HandlerFunc(authHandler.Register))},
		Action{http.MethodPost, "login", limited(http.HandlerFunc(authHandler.Login))},
		Action{http.MethodPost, "logout", http.HandlerFunc(authHandler.Logout)},
		Action{http.MethodGet, "check", http.HandlerFunc(authHandler.Check)},
		Action{http.MethodGet, "profile", gated(http.HandlerFunc(authHandler.Profile))},
		Action{http.MethodGet, "sessions", gated(http.HandlerFunc(authHandler.Sessions))},
	)

	courseRoutes := gated(NewActionRouter(
		Action{http.MethodGet, "list", http.HandlerFunc(courseHandler.List)},
		Action{http.MethodGet, "count", http.HandlerFunc(courseHandler.Count)},
		Action{http.MethodGet, "today-schedule", http.HandlerFunc(courseHandler.TodaySchedule)},
		Action{http.MethodGet, "get", http.HandlerFunc(courseHandler.Get)},
		Action{http.MethodPost, "create", http.HandlerFunc(courseHandler.Create)},
		Action{http.MethodPut, "update", http.HandlerFunc(courseHandler.Update)},
		Action{http.MethodDelete, "delete", http.HandlerFunc(courseHandler.Delete)},
	))

	notificationRoutes := gated(NewActionRouter(
		Action{http.MethodGet, "list", http.HandlerFunc(notificationHandler.List)},
		Action{http.MethodPost, "markAllRead", http.HandlerFunc(notificationHandler.MarkAllRead)},
	))

	for path, h := range map[string]http.Handler{
		"/api/auth":          authRoutes,
		"/api/courses":       courseRoutes,
		"/api/notifications": notificationRoutes,
	} {
		mux.Handle(path, h)
		mux.Handle(path+".php", h)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respond.NotFound(w, r, "Endpoint not found")
	})
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /ready", app.handleReady)
	if app.Metrics != nil {
		mux.Handle("GET /metrics", app.Metrics.Handler())
	}

	return buildMiddlewareChain(mux, app)
}

func buildMiddlewareChain(handler http.Handler, app *App) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Identity(app.Sessions, app.Auth)(handler)
	handler = middleware.Recovery(handler)

	var observer middleware.RequestObserver
	if app.Metrics != nil {
		observer = app.Metrics
	}
	handler = middleware.Logger(observer)(handler)

	handler = middleware.CORS(handler)
	handler = middleware.RealIP(app.TrustedProxies)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

// Health check handlers
func handleHealth(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "healthy",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (app *App) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(app.Checks))
	ready := true
	for name, ping := range app.Checks {
		if err := ping(ctx); err != nil {
			ready = false
			checks[name] = "unhealthy"
			slog.Error("readiness check failed",
				"check", name,
				"error", err,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			continue
		}
		checks[name] = "healthy"
	}

	if !ready {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"status":  "not ready",
			"checks":  checks,
		})
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "ready",
		"checks":  checks,
	})
}
