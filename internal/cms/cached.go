package cms

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/peoplemap/internal/logger"
	"github.com/jonathan/peoplemap/internal/types"
	"golang.org/x/sync/singleflight"
)

// CachedSource wraps a Source with a short-lived in-memory cache of successful
// fetches, keyed by query. Concurrent misses for the same query share one upstream call,
// which outlives the cancellation of any single caller; upstream timeouts still bound it.
// Failures are never cached.
type CachedSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	records   []types.PersonRecord
	fetchedAt time.Time
}

// NewCachedSource caches source results for ttl. A non-positive ttl returns source unchanged.
func NewCachedSource(source Source, ttl time.Duration) Source {
	if ttl <= 0 {
		return source
	}
	return &CachedSource{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		items:  make(map[string]cacheEntry),
	}
}

// FetchPeople implements Source. Callers receive their own slice; records are shared read-only.
func (c *CachedSource) FetchPeople(ctx context.Context, q Query) ([]types.PersonRecord, error) {
	key := q.GROQ()

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return clone(entry.records), nil
	}

	// The shared fetch outlives any single caller; each caller waits on its own context.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		records, err := c.source.FetchPeople(fetchCtx, q)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[key] = cacheEntry{records: records, fetchedAt: c.now()}
		c.mu.Unlock()
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, &SourceUnavailableError{Message: "fetch abandoned", Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("content fetch shared", "query", key)
		}
		return clone(res.Val.([]types.PersonRecord)), nil
	}
}

// Invalidate drops every cached result.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.items = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func clone(records []types.PersonRecord) []types.PersonRecord {
	out := make([]types.PersonRecord, len(records))
	copy(out, records)
	return out
}
