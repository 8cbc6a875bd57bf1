package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/event-registration-server/internal/app/storage"
	"github.com/stacklok/event-registration-server/internal/config"
	"github.com/stacklok/event-registration-server/internal/service"
	"github.com/stacklok/event-registration-server/internal/store"
)

// storeHandle bundles what the offline data commands need
type storeHandle struct {
	store   store.Store
	service service.RegistrationService
	cleanup func()
}

// openStore opens the store configured by --config for the data commands
// (seed, export, list). The server does not need to be running.
func openStore(ctx context.Context, cmd *cobra.Command) (*storeHandle, error) {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	return openConfiguredStore(ctx, cfg)
}

func configFromFlags(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	return loadConfig(configPath)
}

func openConfiguredStore(ctx context.Context, cfg *config.Config) (*storeHandle, error) {
	if cfg.Storage.Type == config.StorageTypeMemory {
		slog.Warn("Storage type is memory; this command cannot see a running server's data")
	}

	factory, err := storage.NewStorageFactory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage factory: %w", err)
	}

	st, err := factory.CreateStore(ctx)
	if err != nil {
		factory.Cleanup()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	svc, err := service.New(st, service.WithStrictValidation(cfg.Validation.Strict))
	if err != nil {
		factory.Cleanup()
		return nil, err
	}

	return &storeHandle{store: st, service: svc, cleanup: factory.Cleanup}, nil
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to configuration file (YAML format)")
}
