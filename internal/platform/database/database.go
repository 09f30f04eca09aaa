// Package database opens the PostgreSQL pool behind the record store and the
// event log.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool whose schema has been applied.
type DB struct {
	Pool *pgxpool.Pool
}

// Option tunes the pool before it connects.
type Option func(*pgxpool.Config)

// WithPoolSize bounds the number of open connections.
func WithPoolSize(maxConns, minConns int) Option {
	return func(c *pgxpool.Config) {
		if maxConns > 0 {
			c.MaxConns = int32(maxConns)
		}
		if minConns >= 0 && minConns <= maxConns {
			c.MinConns = int32(minConns)
		}
	}
}

// WithConnLifetime sets how long a connection may live and idle. Zero keeps
// the default.
func WithConnLifetime(lifetime, idle time.Duration) Option {
	return func(c *pgxpool.Config) {
		if lifetime > 0 {
			c.MaxConnLifetime = lifetime
		}
		if idle > 0 {
			c.MaxConnIdleTime = idle
		}
	}
}

// ParseURL validates a PostgreSQL connection URL and applies the pool defaults.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	// A single profile never needs more than a handful of connections.
	cfg.MaxConns = 4
	cfg.MinConns = 0
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	return cfg, nil
}

// Open connects, pings, and applies the embedded migrations.
func Open(ctx context.Context, url string, opts ...Option) (*DB, error) {
	cfg, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{Pool: pool}
	if err := db.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// HealthCheck reports whether the database answers a ping.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
