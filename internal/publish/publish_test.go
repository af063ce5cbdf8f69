package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/db"
	"github.com/jonathan/peoplemap/internal/pipeline"
	"github.com/jonathan/peoplemap/internal/types"
	"github.com/jonathan/peoplemap/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(id, name string, relations ...any) types.PersonRecord {
	if relations == nil {
		relations = []any{}
	}
	return types.PersonRecord{
		"_id":       id,
		"_type":     "person",
		"name":      name,
		"showOnMap": true,
		"relations": relations,
	}
}

func steppingClock() func() time.Time {
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestMemoryStore_SaveGetLatest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.now = steppingClock()

	latest, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := db.NewSnapshot(&view.MapView{}, nil)
	second := db.NewSnapshot(&view.MapView{Nodes: []view.NodeView{{ID: "p1"}}}, nil)
	require.NoError(t, store.SaveSnapshot(ctx, first))
	require.NoError(t, store.SaveSnapshot(ctx, second))

	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	got, err := store.GetSnapshot(ctx, first.ID)
	require.NoError(t, err)
	assert.Same(t, first, got)

	missing, err := store.GetSnapshot(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	latest, err = store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestMemoryStore_RejectsEmptySnapshot(t *testing.T) {
	err := NewMemoryStore().SaveSnapshot(context.Background(), &db.Snapshot{})
	require.Error(t, err)

	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.now = steppingClock()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		s := db.NewSnapshot(&view.MapView{}, nil)
		require.NoError(t, store.SaveSnapshot(ctx, s))
		ids = append(ids, s.ID)
	}

	all, err := store.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := store.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPublisher_Publish(t *testing.T) {
	store := NewMemoryStore()
	src := cms.NewMemorySource(
		person("p1", "Kim", "p2", "p9"),
		person("p2", "Lee", "p1"),
	)

	snapshot, err := NewPublisher(pipeline.Options{Source: src}, store).Publish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.NodeCount)
	assert.Equal(t, 2, snapshot.EdgeCount)
	assert.Equal(t, 1, snapshot.DanglingCount)
	assert.Equal(t, []types.DanglingRef{{From: "p1", Missing: "p9"}}, snapshot.Diagnostics)
	assert.True(t, snapshot.View.Edges[0].Mutual)

	latest, err := store.LatestSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, latest.ID)
}

func TestPublisher_FailedBuildStoresNothing(t *testing.T) {
	store := NewMemoryStore()
	src := cms.NewMemorySource(person("p1", "Kim"), person("p1", "Kim again"))

	_, err := NewPublisher(pipeline.Options{Source: src}, store).Publish(context.Background())
	require.Error(t, err)
	assert.Equal(t, pipeline.KindDuplicateIdentifier, pipeline.Kind(err))

	all, err := store.ListSnapshots(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

type failingStore struct{ *MemoryStore }

func (failingStore) SaveSnapshot(context.Context, *db.Snapshot) error {
	return errors.New("disk full")
}

func TestPublisher_StoreFailure(t *testing.T) {
	src := cms.NewMemorySource(person("p1", "Kim"))

	_, err := NewPublisher(pipeline.Options{Source: src}, failingStore{NewMemoryStore()}).Publish(context.Background())
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPublisher_RunRefreshesUntilCanceled(t *testing.T) {
	store := NewMemoryStore()
	src := cms.NewMemorySource(person("p1", "Kim"))
	p := NewPublisher(pipeline.Options{Source: src}, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		all, _ := store.ListSnapshots(context.Background(), 0)
		return len(all) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not stop")
	}
}

func TestPublisher_RunKeepsGoingAfterFailure(t *testing.T) {
	store := NewMemoryStore()
	src := &cms.MemorySource{Err: &cms.SourceUnavailableError{Message: "down"}}
	p := NewPublisher(pipeline.Options{Source: src}, store)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, p.Run(ctx, 5*time.Millisecond))

	all, err := store.ListSnapshots(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPublisher_RunRejectsZeroInterval(t *testing.T) {
	p := NewPublisher(pipeline.Options{Source: cms.NewMemorySource()}, NewMemoryStore())
	assert.Error(t, p.Run(context.Background(), 0))
}

func TestMemoryStore_EvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.now = steppingClock()
	store.capacity = 2

	saved := make([]*db.Snapshot, 3)
	for i := range saved {
		saved[i] = db.NewSnapshot(&view.MapView{}, nil)
		require.NoError(t, store.SaveSnapshot(ctx, saved[i]))
	}

	all, err := store.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, saved[2].ID, all[0].ID)
	assert.Equal(t, saved[1].ID, all[1].ID)

	evicted, err := store.GetSnapshot(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.Nil(t, evicted)
}

func TestMemoryStore_PruneSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.now = steppingClock()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.SaveSnapshot(ctx, db.NewSnapshot(&view.MapView{}, nil)))
	}
	latest, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)

	removed, err := store.PruneSnapshots(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	all, err := store.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, latest.ID, all[0].ID)

	removed, err = store.PruneSnapshots(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = store.PruneSnapshots(ctx, 0)
	assert.Error(t, err)
}

func TestPublisher_RetainBoundsStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.now = steppingClock()
	p := NewPublisher(pipeline.Options{Source: cms.NewMemorySource(person("p1", "Kim"))}, store).Retain(2)

	var last *db.Snapshot
	for i := 0; i < 5; i++ {
		snapshot, err := p.Publish(ctx)
		require.NoError(t, err)
		last = snapshot
	}

	all, err := store.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, last.ID, all[0].ID)
}
