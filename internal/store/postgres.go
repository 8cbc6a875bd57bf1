package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stacklok/event-registration-server/internal/registration"
)

// DBTX is the subset of *pgxpool.Pool used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	selectRegistrationsSQL = `
		SELECT name, email, phone, year, branch, registered_at
		FROM registrations
		ORDER BY id`

	// The unique index on lower(email) turns a duplicate into a no-op insert.
	insertRegistrationSQL = `
		INSERT INTO registrations (name, email, phone, year, branch, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`
)

// PostgresStore persists registrations in the registrations table.
// The schema is managed by the migrations in the database package.
type PostgresStore struct {
	db    DBTX
	clock Clock
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by db. The caller owns db.
func NewPostgresStore(db DBTX, opts ...Option) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	o := buildOptions(opts)
	return &PostgresStore{db: db, clock: o.clock}, nil
}

// LoadAll returns every registration ordered by insertion
func (p *PostgresStore) LoadAll(ctx context.Context) ([]registration.Record, error) {
	rows, err := p.db.Query(ctx, selectRegistrationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[registration.Record])
	if err != nil {
		return nil, fmt.Errorf("failed to scan registrations: %w", err)
	}
	return records, nil
}

// Append inserts rec unless its email is already registered
func (p *PostgresStore) Append(ctx context.Context, rec registration.Record) error {
	rec = rec.Stamp(p.clock())

	tag, err := p.db.Exec(ctx, insertRegistrationSQL, insertArgs(rec)...)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateEmail
	}
	return nil
}

// Import inserts the records in one transaction, skipping registered emails
func (p *PostgresStore) Import(ctx context.Context, recs []registration.Record) (added int, err error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, rec := range recs {
		tag, execErr := tx.Exec(ctx, insertRegistrationSQL, insertArgs(rec)...)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert registration %s: %w", rec.Email, execErr)
		}
		added += int(tag.RowsAffected())
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return added, nil
}

func insertArgs(rec registration.Record) []any {
	return []any{rec.Name, rec.Email, rec.Phone, rec.Year, rec.Branch, rec.Timestamp}
}
