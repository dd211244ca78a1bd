package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltiq/moltiq/pkg/memory"
	"github.com/moltiq/moltiq/pkg/store"
	"github.com/moltiq/moltiq/pkg/vector"
)

// recordingAdapter captures index operations for assertions.
type recordingAdapter struct {
	added   map[string]vector.Metadata
	deleted []string
	addErr  error
}

func newRecordingAdapter() *recordingAdapter {
	return &recordingAdapter{added: map[string]vector.Metadata{}}
}

func (r *recordingAdapter) Add(ctx context.Context, id, text string, meta vector.Metadata) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.added[id] = meta
	return nil
}

func (r *recordingAdapter) Query(ctx context.Context, text string, k int, filter vector.Filter) ([]vector.Result, error) {
	return nil, nil
}

func (r *recordingAdapter) Delete(ctx context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.added, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *store.SQLiteStore, *recordingAdapter) {
	t.Helper()
	st, err := store.New(store.Config{
		DBPath: filepath.Join(t.TempDir(), "svc.db"),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	adapter := newRecordingAdapter()
	return New(st, adapter, zerolog.Nop()), st, adapter
}

func TestCreateStoresAndIndexes(t *testing.T) {
	svc, st, adapter := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{
		ProjectID: "proj",
		Type:      memory.TypeFact,
		Title:     "indexed",
		Content:   "body",
		Tags:      []string{"Go", "go", " infra "},
	})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)

	stored, err := st.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "infra"}, stored.Tags())

	meta, ok := adapter.added[m.ID]
	require.True(t, ok)
	assert.Equal(t, "proj", meta.ProjectID)
	assert.Equal(t, m.ID, meta.MemoryID)
	assert.Equal(t, "FACT", meta.Type)
}

func TestCreateRejectsEmptyTitleAndContent(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID: "proj",
		Type:      memory.TypeFact,
	})

	assert.Error(t, err)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID: "proj",
		Type:      memory.Type("RUMOR"),
		Title:     "t",
	})

	assert.Error(t, err)
}

func TestCreatePropagatesMandatoryIndexFailure(t *testing.T) {
	svc, _, adapter := newTestService(t)
	adapter.addErr = errors.New("index offline")

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID: "proj",
		Type:      memory.TypeFact,
		Title:     "t",
		Content:   "c",
	})

	assert.Error(t, err)
}

func TestCreateOptionalFallbackSwallowsIndexFailure(t *testing.T) {
	st, err := store.New(store.Config{
		DBPath: filepath.Join(t.TempDir(), "svc.db"),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	broken := newRecordingAdapter()
	broken.addErr = errors.New("index offline")
	fallback := vector.NewFallbackAdapter(broken, true, zerolog.Nop())
	svc := New(st, fallback, zerolog.Nop())

	m, err := svc.Create(context.Background(), CreateInput{
		ProjectID: "proj",
		Type:      memory.TypeFact,
		Title:     "still stored",
		Content:   "c",
	})

	require.NoError(t, err)
	_, err = st.Get(context.Background(), m.ID)
	assert.NoError(t, err)
	assert.False(t, fallback.Healthy())
}

func TestUpdatePartialAndReindex(t *testing.T) {
	svc, _, adapter := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{
		ProjectID: "proj",
		Type:      memory.TypeFact,
		Title:     "before",
		Content:   "keep me",
	})
	require.NoError(t, err)

	newTitle := "after"
	pinned := true
	updated, err := svc.Update(ctx, m.ID, UpdateInput{
		Title:    &newTitle,
		IsPinned: &pinned,
	})
	require.NoError(t, err)

	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "keep me", updated.Content)
	assert.True(t, updated.IsPinned)

	// Stale entry removed, fresh entry indexed.
	assert.Contains(t, adapter.deleted, m.ID)
	_, ok := adapter.added[m.ID]
	assert.True(t, ok)
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _, _ := newTestService(t)

	title := "x"
	_, err := svc.Update(context.Background(), "missing", UpdateInput{Title: &title})

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteRemovesBoth(t *testing.T) {
	svc, st, adapter := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{
		ProjectID: "proj",
		Type:      memory.TypeFact,
		Title:     "doomed",
		Content:   "c",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID))

	_, err = st.Get(ctx, m.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, adapter.deleted, m.ID)
}

func TestPruneCleansIndex(t *testing.T) {
	svc, st, adapter := newTestService(t)
	ctx := context.Background()

	old := &memory.Memory{
		ProjectID: "proj",
		Type:      memory.TypeFact,
		Title:     "old",
		Content:   "c",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -90),
	}
	require.NoError(t, st.Create(ctx, old))

	pruned, err := svc.Prune(ctx, 30)
	require.NoError(t, err)

	assert.Equal(t, 1, pruned)
	assert.Contains(t, adapter.deleted, old.ID)
}

func TestPruneSchedulerRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := NewPruneScheduler(svc, "0 3 * * *", 0, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewPruneScheduler(svc, "not a cron spec", 30, zerolog.Nop())
	assert.Error(t, err)
}

func TestPruneSchedulerStartStop(t *testing.T) {
	svc, _, _ := newTestService(t)

	scheduler, err := NewPruneScheduler(svc, "0 3 * * *", 30, zerolog.Nop())
	require.NoError(t, err)

	scheduler.Start()
	scheduler.Stop()
}
