package store

import (
	"context"
	"slices"
	"sync"

	"github.com/stacklok/event-registration-server/internal/registration"
)

// MemoryStore keeps registrations in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []registration.Record
	clock   Clock
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		records: []registration.Record{},
		clock:   o.clock,
	}
}

// LoadAll returns a copy of the stored registrations
func (m *MemoryStore) LoadAll(_ context.Context) ([]registration.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.records), nil
}

// Append stores rec unless its email is already present
func (m *MemoryStore) Append(_ context.Context, rec registration.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if registration.ContainsEmail(m.records, rec.Email) {
		return ErrDuplicateEmail
	}
	m.records = append(m.records, rec.Stamp(m.clock()))
	return nil
}

// Import stores the records whose email is not yet present
func (m *MemoryStore) Import(_ context.Context, recs []registration.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var added int
	m.records, added = mergeUnique(m.records, recs)
	return added, nil
}
