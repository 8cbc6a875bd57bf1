package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/stacklok/event-registration-server/internal/registration"
)

// lockRetryDelay is the polling interval while waiting for the file lock
const lockRetryDelay = 50 * time.Millisecond

// FileStore persists registrations as a single JSON array in a file.
//
// Reads never fail: a missing or unparsable file is treated as an empty list.
// Writes rewrite the whole file through a temporary file and a rename, and
// are serialized both within the process and across processes sharing the file.
type FileStore struct {
	path  string
	mu    sync.RWMutex
	lock  *flock.Flock
	clock Clock
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file store at path. The parent directory is created
// if needed and the file is initialized with an empty array if absent.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	o := buildOptions(opts)

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	s := &FileStore{
		path:  path,
		lock:  flock.New(path + ".lock"),
		clock: o.clock,
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write([]registration.Record{}); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", path, err)
		}
		slog.Info("Created registrations file", "path", path)
	}

	return s, nil
}

// Path returns the location of the backing file
func (s *FileStore) Path() string {
	return s.path
}

// LoadAll returns the registrations in the file, or an empty list when the
// file is missing or cannot be parsed.
func (s *FileStore) LoadAll(_ context.Context) ([]registration.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(), nil
}

// Append adds rec to the file unless its email is already present
func (s *FileStore) Append(ctx context.Context, rec registration.Record) error {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	records := s.read()
	if registration.ContainsEmail(records, rec.Email) {
		return ErrDuplicateEmail
	}

	records = append(records, rec.Stamp(s.clock()))
	return s.write(records)
}

// Import adds the records whose email is not yet present in the file
func (s *FileStore) Import(ctx context.Context, recs []registration.Record) (int, error) {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	records, added := mergeUnique(s.read(), recs)
	if added == 0 {
		return 0, nil
	}
	if err := s.write(records); err != nil {
		return 0, err
	}
	return added, nil
}

// acquire takes the in-process write lock and the cross-process file lock
func (s *FileStore) acquire(ctx context.Context) (func(), error) {
	s.mu.Lock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		s.mu.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to lock %s: %w", s.path, err)
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			slog.Error("Failed to release registrations file lock", "path", s.path, "error", err)
		}
		s.mu.Unlock()
	}, nil
}

func (s *FileStore) read() []registration.Record {
	// #nosec G304 -- path comes from server configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read registrations file, treating as empty", "path", s.path, "error", err)
		}
		return []registration.Record{}
	}

	var records []registration.Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("Failed to parse registrations file, treating as empty", "path", s.path, "error", err)
		return []registration.Record{}
	}
	if records == nil {
		records = []registration.Record{}
	}
	return records
}

func (s *FileStore) write(records []registration.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registrations: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary registrations file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to replace registrations file: %w", err)
	}

	return nil
}
