package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	regapp "github.com/stacklok/event-registration-server/internal/app"
	"github.com/stacklok/event-registration-server/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the registration server",
	Long: `Start the registration server: the public form, the intake endpoint and the
admin panel.

Without --config the server stores registrations in ./registrations.json and
listens on :5000. The admin password is read from admin.passwordFile or the
REG_ADMIN_PASSWORD environment variable.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	telemetryFlushTimeout  = 10 * time.Second
)

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides server.address)")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format)")

	err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address"))
	if err != nil {
		slog.Error("Failed to bind address flag", "error", err)
	}
	err = viper.BindPFlag("config", serveCmd.Flags().Lookup("config"))
	if err != nil {
		slog.Error("Failed to bind config flag", "error", err)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := viper.GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"storage", cfg.Storage.Type,
		"strict_validation", cfg.Validation.Strict)

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	opts := []regapp.RegistrationAppOptions{
		regapp.WithConfig(cfg),
	}
	if address := viper.GetString("address"); address != "" {
		opts = append(opts, regapp.WithAddress(address))
	}
	if cfg.Telemetry != nil && cfg.Telemetry.Enabled {
		opts = append(opts,
			regapp.WithTracerProvider(tel.TracerProvider()),
			regapp.WithMeterProvider(tel.MeterProvider()),
			regapp.WithMetricsHandler(tel.MetricsHandler()),
		)
	}

	registrationApp, err := regapp.NewRegistrationApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	return registrationApp.Run(ctx, defaultGracefulTimeout)
}
