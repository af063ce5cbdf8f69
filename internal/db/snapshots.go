package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveSnapshot stores a snapshot and sets its CreatedAt from the database clock.
func (db *DB) SaveSnapshot(ctx context.Context, s *Snapshot) error {
	if s == nil || s.View == nil {
		return fmt.Errorf("snapshot has no view")
	}

	viewJSON, err := json.Marshal(s.View)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot view: %w", err)
	}
	diagJSON, err := json.Marshal(s.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot diagnostics: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO map_snapshots (id, node_count, edge_count, dangling_count, view, diagnostics)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		s.ID, s.NodeCount, s.EdgeCount, s.DanglingCount, viewJSON, diagJSON,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", s.ID, err)
	}
	return nil
}

// GetSnapshot retrieves a snapshot by ID. Returns nil when it does not exist.
func (db *DB) GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, created_at, node_count, edge_count, dangling_count, view, diagnostics
		 FROM map_snapshots WHERE id = $1`, id)
	return scanSnapshot(row)
}

// LatestSnapshot retrieves the most recently stored snapshot. Returns nil when none exist.
func (db *DB) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, created_at, node_count, edge_count, dangling_count, view, diagnostics
		 FROM map_snapshots ORDER BY created_at DESC LIMIT 1`)
	return scanSnapshot(row)
}

// ListSnapshots returns summaries, newest first.
func (db *DB) ListSnapshots(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, created_at, node_count, edge_count, dangling_count
		 FROM map_snapshots ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	summaries := []SnapshotSummary{}
	for rows.Next() {
		var s SnapshotSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.NodeCount, &s.EdgeCount, &s.DanglingCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return summaries, nil
}

// PruneSnapshots deletes all but the newest keep snapshots and returns how many were removed.
func (db *DB) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1")
	}
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM map_snapshots WHERE id NOT IN (
			SELECT id FROM map_snapshots ORDER BY created_at DESC LIMIT $1
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var (
		s        Snapshot
		viewJSON []byte
		diagJSON []byte
	)
	err := row.Scan(&s.ID, &s.CreatedAt, &s.NodeCount, &s.EdgeCount, &s.DanglingCount, &viewJSON, &diagJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := json.Unmarshal(viewJSON, &s.View); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot view: %w", err)
	}
	if err := json.Unmarshal(diagJSON, &s.Diagnostics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot diagnostics: %w", err)
	}
	return &s, nil
}
