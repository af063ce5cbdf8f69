package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/peoplemap/internal/db"
	"github.com/jonathan/peoplemap/internal/logger"
	"github.com/jonathan/peoplemap/internal/pipeline"
)

// Publisher runs the pipeline and stores each complete result as a snapshot.
type Publisher struct {
	opts  pipeline.Options
	store Store
	keep  int
}

// NewPublisher creates a publisher for the given pipeline options and store.
func NewPublisher(opts pipeline.Options, store Store) *Publisher {
	return &Publisher{opts: opts, store: store}
}

// Retain makes every publish prune the store down to the newest keep snapshots.
// Zero keeps everything.
func (p *Publisher) Retain(keep int) *Publisher {
	p.keep = keep
	return p
}

// Publish builds the map once and stores it. Failed builds store nothing.
func (p *Publisher) Publish(ctx context.Context) (*db.Snapshot, error) {
	result, err := pipeline.Run(ctx, p.opts)
	if err != nil {
		return nil, err
	}

	snapshot := db.NewSnapshot(result.View, result.Graph.Diagnostics)
	if err := p.store.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, &StoreError{Message: "save snapshot", Cause: err}
	}

	logger.Info("snapshot published",
		"id", snapshot.ID,
		"nodes", snapshot.NodeCount,
		"edges", snapshot.EdgeCount,
		"dangling", snapshot.DanglingCount)

	if p.keep > 0 {
		removed, err := p.store.PruneSnapshots(ctx, p.keep)
		if err != nil {
			// The snapshot is already stored; a failed prune is retried on the next publish.
			logger.Warn("snapshot prune failed", "keep", p.keep, "err", err)
		} else if removed > 0 {
			logger.Info("old snapshots pruned", "removed", removed, "keep", p.keep)
		}
	}
	return snapshot, nil
}

// Run publishes immediately and then every interval until ctx is done.
// A failed cycle is logged and does not stop the loop.
func (p *Publisher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}

	p.cycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Publisher) cycle(ctx context.Context) {
	if _, err := p.Publish(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Error("snapshot refresh failed", "kind", pipeline.Kind(err), "err", err)
	}
}
