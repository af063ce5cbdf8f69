// Package db provides PostgreSQL storage for published people-map snapshots.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS map_snapshots (
	id             UUID PRIMARY KEY,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	node_count     INTEGER NOT NULL,
	edge_count     INTEGER NOT NULL,
	dangling_count INTEGER NOT NULL,
	view           JSONB NOT NULL,
	diagnostics    JSONB NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS map_snapshots_created_at_idx ON map_snapshots (created_at DESC);
`

// EnsureSchema creates the snapshot table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
