package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltiq/moltiq/pkg/memory"
)

func createAged(t *testing.T, s *SQLiteStore, title string, ageDays int, pinned, favorite bool) *memory.Memory {
	t.Helper()
	m := &memory.Memory{
		ProjectID:  "proj",
		Type:       memory.TypeFact,
		Title:      title,
		Content:    "c",
		IsPinned:   pinned,
		IsFavorite: favorite,
		CreatedAt:  time.Now().UTC().AddDate(0, 0, -ageDays),
	}
	require.NoError(t, s.Create(context.Background(), m))
	return m
}

func TestPruneOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := createAged(t, s, "old", 60, false, false)
	fresh := createAged(t, s, "fresh", 1, false, false)

	ids, err := s.PruneOlderThan(ctx, 30)
	require.NoError(t, err)

	require.Len(t, ids, 1)
	assert.Equal(t, old.ID, ids[0])

	_, err = s.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestPruneSparesPinnedAndFavorite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pinned := createAged(t, s, "pinned", 90, true, false)
	favorite := createAged(t, s, "favorite", 90, false, true)
	plain := createAged(t, s, "plain", 90, false, false)

	ids, err := s.PruneOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{plain.ID}, ids)

	_, err = s.Get(ctx, pinned.ID)
	assert.NoError(t, err)
	_, err = s.Get(ctx, favorite.ID)
	assert.NoError(t, err)
}

func TestPruneNothingToDo(t *testing.T) {
	s := newTestStore(t)

	createAged(t, s, "fresh", 1, false, false)

	ids, err := s.PruneOlderThan(context.Background(), 30)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPruneRejectsNonPositiveDays(t *testing.T) {
	s := newTestStore(t)

	_, err := s.PruneOlderThan(context.Background(), 0)
	assert.Error(t, err)

	_, err = s.PruneOlderThan(context.Background(), -5)
	assert.Error(t, err)
}
