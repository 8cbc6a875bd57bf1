// Package api provides the HTTP server of the registration service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/event-registration-server/internal/api/admin"
	"github.com/stacklok/event-registration-server/internal/api/public"
	"github.com/stacklok/event-registration-server/internal/api/system"
	"github.com/stacklok/event-registration-server/internal/auth"
	"github.com/stacklok/event-registration-server/internal/service"
)

// MetricsPath is where the Prometheus scrape handler is mounted
const MetricsPath = "/metrics"

// ServerOption configures the registration API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	authenticator  *auth.Authenticator
	sessions       *auth.SessionManager
	metricsHandler http.Handler
	now            func() time.Time
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithAdmin enables the login flow and the admin panel
func WithAdmin(authn *auth.Authenticator, sessions *auth.SessionManager) ServerOption {
	return func(cfg *serverConfig) {
		cfg.authenticator = authn
		cfg.sessions = sessions
	}
}

// WithMetricsHandler mounts h at /metrics. A nil handler is ignored.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithClock sets the clock used to name CSV downloads
func WithClock(now func() time.Time) ServerOption {
	return func(cfg *serverConfig) {
		cfg.now = now
	}
}

// NewServer creates and configures the HTTP router with the given service and options
func NewServer(svc service.RegistrationService, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	system.NewRoutes(svc).Register(r)
	public.NewRoutes(svc).Register(r)

	if cfg.authenticator != nil && cfg.sessions != nil {
		admin.NewRoutes(svc, cfg.authenticator, cfg.sessions, cfg.now).Register(r)
	} else {
		slog.Warn("Admin routes disabled: no authenticator or session manager configured")
	}

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, MetricsPath, cfg.metricsHandler)
	}

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
