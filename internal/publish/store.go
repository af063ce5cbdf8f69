// Package publish builds people maps and keeps the published snapshots.
package publish

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/peoplemap/internal/db"
)

// Store persists complete map snapshots. *db.DB satisfies it.
type Store interface {
	SaveSnapshot(ctx context.Context, s *db.Snapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (*db.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*db.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]db.SnapshotSummary, error)
	PruneSnapshots(ctx context.Context, keep int) (int64, error)
}

var _ Store = (*db.DB)(nil)

// DefaultMemoryCapacity bounds how many snapshots a MemoryStore holds.
const DefaultMemoryCapacity = 100

// MemoryStore keeps snapshots in process. Used when no database is configured.
// Once capacity is reached, saving a snapshot evicts the oldest one.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []*db.Snapshot
	capacity  int
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store holding at most DefaultMemoryCapacity snapshots.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{capacity: DefaultMemoryCapacity, now: time.Now}
}

// SaveSnapshot stores s and stamps CreatedAt.
func (m *MemoryStore) SaveSnapshot(ctx context.Context, s *db.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.View == nil {
		return &StoreError{Message: "snapshot has no view"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = m.now().UTC()
	m.snapshots = append(m.snapshots, s)
	if m.capacity > 0 {
		m.trim(m.capacity)
	}
	return nil
}

// PruneSnapshots drops all but the newest keep snapshots and returns how many were removed.
func (m *MemoryStore) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(m.trim(keep)), nil
}

// trim keeps the newest keep snapshots. Callers hold mu.
func (m *MemoryStore) trim(keep int) int {
	excess := len(m.snapshots) - keep
	if excess <= 0 {
		return 0
	}
	for i := 0; i < excess; i++ {
		m.snapshots[i] = nil
	}
	m.snapshots = append(m.snapshots[:0], m.snapshots[excess:]...)
	return excess
}

// GetSnapshot returns the snapshot with the given id, or nil.
func (m *MemoryStore) GetSnapshot(_ context.Context, id uuid.UUID) (*db.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

// LatestSnapshot returns the most recently saved snapshot, or nil.
func (m *MemoryStore) LatestSnapshot(_ context.Context) (*db.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.snapshots) == 0 {
		return nil, nil
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

// ListSnapshots returns up to limit summaries, newest first.
func (m *MemoryStore) ListSnapshots(_ context.Context, limit int) ([]db.SnapshotSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	summaries := make([]db.SnapshotSummary, 0, len(m.snapshots))
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		summaries = append(summaries, m.snapshots[i].Summary())
	}
	m.mu.RUnlock()

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
