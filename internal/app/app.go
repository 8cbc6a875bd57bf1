// Package app provides application lifecycle management for the registration server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/event-registration-server/internal/config"
)

// RegistrationApp encapsulates all components needed to run the registration server.
// It provides lifecycle management and graceful shutdown capabilities.
type RegistrationApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the HTTP server.
// This method blocks until the HTTP server stops or encounters an error.
func (app *RegistrationApp) Start() error {
	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application with the given timeout.
// It shuts down the HTTP server and then releases the storage resources.
func (app *RegistrationApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// Run serves until ctx is cancelled or the server fails, then shuts down
// within gracefulTimeout.
func (app *RegistrationApp) Run(ctx context.Context, gracefulTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(app.Start)
	g.Go(func() error {
		<-gctx.Done()
		return app.Stop(gracefulTimeout)
	})

	return g.Wait()
}

// GetConfig returns the application configuration
func (app *RegistrationApp) GetConfig() *config.Config {
	return app.config
}

// GetComponents returns the wired application components
func (app *RegistrationApp) GetComponents() *AppComponents {
	return app.components
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *RegistrationApp) GetHTTPServer() *http.Server {
	return app.httpServer
}
