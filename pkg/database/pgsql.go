package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOption tunes the pgx pool before it is opened.
type PoolOption func(*poolSettings)

type poolSettings struct {
	ping              bool
	maxConns          int32
	connectTimeout    time.Duration
	healthCheckPeriod time.Duration
}

// WithConnectionCheck pings the database before the pool is handed out.
func WithConnectionCheck(enabled bool) PoolOption {
	return func(s *poolSettings) { s.ping = enabled }
}

// WithMaxConns caps the pool size. Values <= 0 keep the pgx default.
func WithMaxConns(n int32) PoolOption {
	return func(s *poolSettings) { s.maxConns = n }
}

// NewPgxPool creates the PostgreSQL pool backing the ledger and directory.
// Allocation holds an advisory lock on a pooled connection for the life of
// its transaction, so the pool must be larger than the expected number of
// concurrent out requests per scope.
func NewPgxPool(ctx context.Context, databaseURL string, opts ...PoolOption) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	settings := poolSettings{
		connectTimeout:    5 * time.Second,
		healthCheckPeriod: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}
	config.ConnConfig.ConnectTimeout = settings.connectTimeout
	config.HealthCheckPeriod = settings.healthCheckPeriod
	if settings.maxConns > 0 {
		config.MaxConns = settings.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if settings.ping {
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}
	return pool, nil
}
