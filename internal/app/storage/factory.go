// Package storage creates the registration store selected by the configuration
// and owns the resources behind it.
package storage

import (
	"context"
	"fmt"

	"github.com/stacklok/event-registration-server/internal/config"
	"github.com/stacklok/event-registration-server/internal/store"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates the registration store and manages the lifecycle of the
// resources it needs (files, connection pools).
type Factory interface {
	// CreateStore returns the store for this factory's backend
	CreateStore(ctx context.Context) (store.Store, error)

	// Backend names the storage type, for logs and span attributes
	Backend() string

	// Cleanup releases any resources held by this factory.
	// For database factories, this closes the connection pool.
	Cleanup()
}

// NewStorageFactory creates a storage factory based on the configured storage type
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...store.Option) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Storage.Type {
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg, opts...)
	case config.StorageTypeFile:
		return NewFileFactory(cfg, opts...)
	case config.StorageTypeMemory:
		return NewMemoryFactory(opts...), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
