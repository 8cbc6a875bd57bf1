package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stacklok/event-registration-server/internal/config"
	"github.com/stacklok/event-registration-server/internal/store"
)

// FileFactory creates the JSON file store
type FileFactory struct {
	path string
	opts []store.Option
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory creates a file storage factory, making sure the directory of
// the registrations file exists.
func NewFileFactory(cfg *config.Config, opts ...store.Option) (*FileFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	path := config.DefaultFilePath
	if cfg.Storage.File != nil && cfg.Storage.File.Path != "" {
		path = cfg.Storage.File.Path
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	slog.Info("Creating file-based storage factory", "path", path)
	return &FileFactory{path: path, opts: opts}, nil
}

// CreateStore creates the file store, writing an empty list if the file is missing
func (f *FileFactory) CreateStore(_ context.Context) (store.Store, error) {
	return store.NewFileStore(f.path, f.opts...)
}

// Backend implements Factory.Backend
func (*FileFactory) Backend() string {
	return config.StorageTypeFile
}

// Cleanup is a no-op for file storage
func (*FileFactory) Cleanup() {
	slog.Debug("Cleaning up file storage factory (no-op)")
}

// MemoryFactory creates an in-process store. Registrations are lost on exit.
type MemoryFactory struct {
	opts []store.Option
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates a memory storage factory
func NewMemoryFactory(opts ...store.Option) *MemoryFactory {
	slog.Warn("Using in-memory storage; registrations will not survive a restart")
	return &MemoryFactory{opts: opts}
}

// CreateStore implements Factory.CreateStore
func (m *MemoryFactory) CreateStore(_ context.Context) (store.Store, error) {
	return store.NewMemoryStore(m.opts...), nil
}

// Backend implements Factory.Backend
func (*MemoryFactory) Backend() string {
	return config.StorageTypeMemory
}

// Cleanup is a no-op for memory storage
func (*MemoryFactory) Cleanup() {}
