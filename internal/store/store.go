// Package store provides persistence for event registrations.
// It offers a JSON file store, an in-memory store and a PostgreSQL store, all
// enforcing the same case-insensitive email uniqueness.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/stacklok/event-registration-server/internal/registration"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// ErrDuplicateEmail is returned by Append when a record with the same
// case-insensitive email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// Store is the persistence abstraction over the registration list.
type Store interface {
	// LoadAll returns every stored registration in insertion order, oldest first.
	LoadAll(ctx context.Context) ([]registration.Record, error)

	// Append stamps the record with the current time and persists it, unless a
	// record with the same case-insensitive email exists, in which case it
	// returns ErrDuplicateEmail and writes nothing.
	Append(ctx context.Context, rec registration.Record) error

	// Import persists already-timestamped records, skipping those whose email
	// is already present. It returns the number of records written.
	Import(ctx context.Context, recs []registration.Record) (int, error)
}

// Clock returns the current time. Stores use it to stamp appended records.
type Clock func() time.Time

// Option configures a store
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock overrides the clock used to stamp appended records.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{clock: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// mergeUnique appends the records of incoming whose email is not present in
// existing (or earlier in incoming) and returns the merged list and the number
// of records added.
func mergeUnique(existing, incoming []registration.Record) ([]registration.Record, int) {
	added := 0
	for _, rec := range incoming {
		if registration.ContainsEmail(existing, rec.Email) {
			continue
		}
		existing = append(existing, rec)
		added++
	}
	return existing, added
}
