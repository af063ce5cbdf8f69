package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/peoplemap/internal/types"
	"github.com/jonathan/peoplemap/internal/view"
)

// Snapshot is a complete, published people map.
type Snapshot struct {
	ID            uuid.UUID           `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	NodeCount     int                 `json:"node_count"`
	EdgeCount     int                 `json:"edge_count"`
	DanglingCount int                 `json:"dangling_count"`
	View          *view.MapView       `json:"view"`
	Diagnostics   []types.DanglingRef `json:"diagnostics"`
}

// SnapshotSummary is a snapshot without its payload, for listings.
type SnapshotSummary struct {
	ID            uuid.UUID `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	NodeCount     int       `json:"node_count"`
	EdgeCount     int       `json:"edge_count"`
	DanglingCount int       `json:"dangling_count"`
}

// NewSnapshot prepares a snapshot of a built map. The ID is assigned here so callers
// can reference the snapshot before it is stored.
func NewSnapshot(v *view.MapView, diagnostics []types.DanglingRef) *Snapshot {
	if diagnostics == nil {
		diagnostics = []types.DanglingRef{}
	}
	return &Snapshot{
		ID:            uuid.New(),
		NodeCount:     len(v.Nodes),
		EdgeCount:     len(v.Edges),
		DanglingCount: len(diagnostics),
		View:          v,
		Diagnostics:   diagnostics,
	}
}

// Summary drops the payload.
func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		NodeCount:     s.NodeCount,
		EdgeCount:     s.EdgeCount,
		DanglingCount: s.DanglingCount,
	}
}
