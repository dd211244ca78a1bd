package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	inner Embedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls += len(texts)
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Dimensions() int { return c.inner.Dimensions() }

func TestCachedEmbedderHitsSkipInner(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder(16)}
	cached, err := NewCachedEmbedder(counting, 100)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	first, err := cached.Embed(ctx, "repeat me")
	require.NoError(t, err)
	require.Equal(t, 1, counting.calls)

	// Ristretto admits asynchronously; wait so the hit path is exercised.
	cached.cache.Wait()

	second, err := cached.Embed(ctx, "repeat me")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedEmbedderMissesDelegate(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder(16)}
	cached, err := NewCachedEmbedder(counting, 100)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	_, err = cached.Embed(ctx, "one")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "two")
	require.NoError(t, err)

	assert.Equal(t, 2, counting.calls)
}

func TestCachedEmbedderBatchMixedHits(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder(16)}
	cached, err := NewCachedEmbedder(counting, 100)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	warm, err := cached.Embed(ctx, "warm")
	require.NoError(t, err)
	cached.cache.Wait()

	out, err := cached.EmbedBatch(ctx, []string{"warm", "cold"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Only the miss reaches the inner embedder.
	assert.Equal(t, 2, counting.calls)
	assert.Equal(t, warm, out[0])
	assert.Len(t, out[1], 16)
}

func TestCachedEmbedderDimensionsDelegate(t *testing.T) {
	cached, err := NewCachedEmbedder(NewMockEmbedder(48), 0)
	require.NoError(t, err)
	defer cached.Close()

	assert.Equal(t, 48, cached.Dimensions())
}
