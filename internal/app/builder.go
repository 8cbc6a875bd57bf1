package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/event-registration-server/internal/api"
	"github.com/stacklok/event-registration-server/internal/app/storage"
	"github.com/stacklok/event-registration-server/internal/auth"
	"github.com/stacklok/event-registration-server/internal/config"
	"github.com/stacklok/event-registration-server/internal/service"
	"github.com/stacklok/event-registration-server/internal/store"
	"github.com/stacklok/event-registration-server/internal/telemetry"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// RegistrationAppOptions is a function that configures the registration app builder
type RegistrationAppOptions func(*registrationAppConfig) error

// registrationAppConfig collects the builder inputs.
// Component overrides are primarily for testing.
type registrationAppConfig struct {
	config *config.Config

	storageFactory storage.Factory
	clock          func() time.Time

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Admin gate
	authenticator *auth.Authenticator
	sessions      *auth.SessionManager

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...RegistrationAppOptions) (*registrationAppConfig, error) {
	cfg := &registrationAppConfig{
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.address == "" {
		cfg.address = config.DefaultAddress
		if cfg.config != nil && cfg.config.Server.Address != "" {
			cfg.address = cfg.config.Server.Address
		}
	}

	return cfg, nil
}

// NewRegistrationApp builds the application from its options
func NewRegistrationApp(
	ctx context.Context,
	opts ...RegistrationAppOptions,
) (*RegistrationApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.storageFactory == nil {
		var storeOpts []store.Option
		if cfg.clock != nil {
			storeOpts = append(storeOpts, store.WithClock(cfg.clock))
		}
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config, storeOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	// Ensure cleanup happens on error
	var cleanupNeeded = true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	components, err := buildServiceComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	if err := buildAdminComponents(cfg, components); err != nil {
		return nil, fmt.Errorf("failed to build admin components: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	factory := cfg.storageFactory
	cancelFunc := func() {
		factory.Cleanup()
		cancel()
	}

	return &RegistrationApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding server.address
func WithAddress(addr string) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithClock sets the clock used for registration timestamps and download names
func WithClock(now func() time.Time) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.clock = now
		return nil
	}
}

// WithAuthenticator overrides the admin credentials read from the configuration
func WithAuthenticator(a *auth.Authenticator) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.authenticator = a
		return nil
	}
}

// WithSessionManager overrides the session manager built from the configuration
func WithSessionManager(m *auth.SessionManager) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.sessions = m
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for HTTP and registration metrics
func WithMeterProvider(mp metric.MeterProvider) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider for HTTP and store spans
func WithTracerProvider(tp trace.TracerProvider) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler mounts a Prometheus scrape handler at /metrics
func WithMetricsHandler(h http.Handler) RegistrationAppOptions {
	return func(cfg *registrationAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// buildServiceComponents creates the store and the registration service on top of it
func buildServiceComponents(ctx context.Context, b *registrationAppConfig) (*AppComponents, error) {
	slog.Info("Initializing service components", "storage", b.storageFactory.Backend())

	st, err := b.storageFactory.CreateStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	st = store.WithTracing(st, b.tracerProvider, b.storageFactory.Backend())

	svcOpts := []service.Option{
		service.WithStrictValidation(b.config.Validation.Strict),
	}
	if b.meterProvider != nil {
		metrics, err := telemetry.NewRegistrationMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create registration metrics: %w", err)
		}
		svcOpts = append(svcOpts, service.WithMetrics(metrics))
		slog.Info("Registration metrics enabled")
	}

	svc, err := service.New(st, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration service: %w", err)
	}

	slog.Info("Service components initialized successfully")
	return &AppComponents{Store: st, RegistrationService: svc}, nil
}

// buildAdminComponents resolves the admin credentials and the session signing key
func buildAdminComponents(b *registrationAppConfig, c *AppComponents) error {
	if b.authenticator == nil {
		password, err := b.config.Admin.GetPassword()
		if err != nil {
			return fmt.Errorf("admin password is required: %w", err)
		}
		b.authenticator, err = auth.NewAuthenticator(b.config.Admin.Email, password)
		if err != nil {
			return err
		}
	}

	if b.sessions == nil {
		secret, err := b.config.Session.GetSecret()
		if errors.Is(err, config.ErrNoSecret) {
			slog.Warn("No session secret configured; generating one. Admin sessions will not survive a restart")
			secret, err = auth.GenerateSecret()
		}
		if err != nil {
			return err
		}

		ttl, err := b.config.Session.GetTTL()
		if err != nil {
			return err
		}

		sessionOpts := []auth.SessionOption{
			auth.WithTTL(ttl),
			auth.WithCookieName(b.config.Session.CookieName),
			auth.WithSecureCookie(b.config.Session.Secure),
		}
		if b.clock != nil {
			sessionOpts = append(sessionOpts, auth.WithClock(b.clock))
		}

		b.sessions, err = auth.NewSessionManager(secret, sessionOpts...)
		if err != nil {
			return err
		}
	}

	c.Authenticator = b.authenticator
	c.Sessions = b.sessions
	slog.Info("Admin gate configured", "email", b.authenticator.Email())
	return nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *registrationAppConfig,
	c *AppComponents,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Tracing wraps metrics so request metrics are recorded inside the server span
	var outer []func(http.Handler) http.Handler
	if b.tracerProvider != nil {
		outer = append(outer, telemetry.TracingMiddleware(b.tracerProvider))
		slog.Info("HTTP tracing middleware enabled")
	}
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if metricsMiddleware != nil {
			outer = append(outer, metricsMiddleware)
			slog.Info("HTTP metrics middleware enabled")
		}
	}
	middlewares := append(outer, b.middlewares...)

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
		api.WithAdmin(c.Authenticator, c.Sessions),
		api.WithMetricsHandler(b.metricsHandler),
	}
	if b.clock != nil {
		serverOpts = append(serverOpts, api.WithClock(b.clock))
	}
	router := api.NewServer(c.RegistrationService, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
