package vector

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChromem(t *testing.T) *ChromemAdapter {
	t.Helper()
	adapter, err := NewChromemAdapter(ChromemConfig{
		Collection: "test_memories",
		Embedder:   NewMockEmbedder(64),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return adapter
}

func TestChromemRequiresEmbedder(t *testing.T) {
	_, err := NewChromemAdapter(ChromemConfig{})
	assert.Error(t, err)
}

func TestChromemAddAndQuery(t *testing.T) {
	adapter := newTestChromem(t)
	ctx := context.Background()

	require.NoError(t, adapter.Add(ctx, "m1", "postgres connection pooling", Metadata{
		ProjectID: "proj-a",
		MemoryID:  "m1",
		Type:      "FACT",
	}))

	results, err := adapter.Query(ctx, "postgres connection pooling", 1, Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "m1", results[0].ID)
	assert.Equal(t, "proj-a", results[0].Metadata.ProjectID)
	assert.Equal(t, "FACT", results[0].Metadata.Type)
	assert.GreaterOrEqual(t, results[0].Score, 0.0)
	assert.LessOrEqual(t, results[0].Score, 1.0)
}

func TestChromemQueryEmptyCollection(t *testing.T) {
	adapter := newTestChromem(t)

	results, err := adapter.Query(context.Background(), "anything", 10, Filter{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemQueryClampsKToCount(t *testing.T) {
	adapter := newTestChromem(t)
	ctx := context.Background()

	require.NoError(t, adapter.Add(ctx, "only", "a single document", Metadata{ProjectID: "p"}))

	// k far beyond the collection size must not error.
	results, err := adapter.Query(ctx, "single", 100, Filter{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemQueryProjectFilter(t *testing.T) {
	adapter := newTestChromem(t)
	ctx := context.Background()

	require.NoError(t, adapter.Add(ctx, "a1", "shared terminology", Metadata{ProjectID: "proj-a"}))
	require.NoError(t, adapter.Add(ctx, "b1", "shared terminology", Metadata{ProjectID: "proj-b"}))

	results, err := adapter.Query(ctx, "shared terminology", 1, Filter{ProjectID: "proj-a"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].ID)
}

func TestChromemDelete(t *testing.T) {
	adapter := newTestChromem(t)
	ctx := context.Background()

	require.NoError(t, adapter.Add(ctx, "gone", "soon removed", Metadata{ProjectID: "p"}))
	require.NoError(t, adapter.Delete(ctx, "gone"))

	results, err := adapter.Query(ctx, "soon removed", 1, Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemExtraMetadataRoundTrip(t *testing.T) {
	adapter := newTestChromem(t)
	ctx := context.Background()

	require.NoError(t, adapter.Add(ctx, "x1", "extra attributes", Metadata{
		ProjectID: "p",
		Extra:     map[string]string{"source": "import"},
	}))

	results, err := adapter.Query(ctx, "extra attributes", 1, Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "import", results[0].Metadata.Extra["source"])
}
