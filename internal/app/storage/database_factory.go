package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/event-registration-server/internal/config"
	"github.com/stacklok/event-registration-server/internal/store"
)

// DefaultConnectTimeout bounds the retries of the initial database ping
const DefaultConnectTimeout = 30 * time.Second

// DatabaseFactory creates the PostgreSQL store over a shared connection pool
type DatabaseFactory struct {
	pool *pgxpool.Pool
	opts []store.Option
}

var _ Factory = (*DatabaseFactory)(nil)

// NewDatabaseFactory creates a database storage factory.
// It establishes a connection pool to the configured PostgreSQL database and
// waits, with exponential backoff, until the database answers a ping.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...store.Option) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	slog.Info("Creating database-backed storage factory",
		"host", cfg.Database.Host, "database", cfg.Database.Database)

	pool, err := buildDatabaseConnectionPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := waitForDatabase(ctx, pool, DefaultConnectTimeout); err != nil {
		pool.Close()
		return nil, err
	}

	return &DatabaseFactory{pool: pool, opts: opts}, nil
}

// CreateStore implements Factory.CreateStore
func (d *DatabaseFactory) CreateStore(_ context.Context) (store.Store, error) {
	slog.Debug("Creating database-backed store")
	return store.NewPostgresStore(d.pool, d.opts...)
}

// Backend implements Factory.Backend
func (*DatabaseFactory) Backend() string {
	return config.StorageTypeDatabase
}

// Cleanup closes the database connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}

// buildDatabaseConnectionPool creates a database connection pool with proper configuration
func buildDatabaseConnectionPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	if cfg.ConnMaxLifetime != "" {
		lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connMaxLifetime: %w", err)
		}
		poolConfig.MaxConnLifetime = lifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	slog.Info("Database connection pool created successfully")
	return pool, nil
}

// pinger is the part of *pgxpool.Pool waitForDatabase needs
type pinger interface {
	Ping(ctx context.Context) error
}

// waitForDatabase pings db until it answers or maxElapsed passes
func waitForDatabase(ctx context.Context, db pinger, maxElapsed time.Duration) error {
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			return struct{}{}, db.Ping(ctx)
		},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Database not reachable yet", "error", err, "retry_in", next)
		}),
	)
	if err != nil {
		return fmt.Errorf("database did not become reachable: %w", err)
	}
	return nil
}
