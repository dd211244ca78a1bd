package vector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// CachedEmbedder wraps an Embedder with an in-process ristretto cache
// keyed by content hash, so re-indexing unchanged text never re-embeds.
type CachedEmbedder struct {
	inner Embedder
	cache *ristretto.Cache
}

// NewCachedEmbedder wraps inner with a cache holding up to maxEntries
// vectors. maxEntries <= 0 defaults to 10000.
func NewCachedEmbedder(inner Embedder, maxEntries int64) (*CachedEmbedder, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := contentHash(text)
	if cached, ok := e.cache.Get(key); ok {
		if v, ok := cached.([]float32); ok {
			return v, nil
		}
	}

	v, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, v, 1)
	return v, nil
}

func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var misses []string
	var missIdx []int

	for i, t := range texts {
		if cached, ok := e.cache.Get(contentHash(t)); ok {
			if v, ok := cached.([]float32); ok {
				out[i] = v
				continue
			}
		}
		misses = append(misses, t)
		missIdx = append(missIdx, i)
	}

	if len(misses) > 0 {
		vectors, err := e.inner.EmbedBatch(ctx, misses)
		if err != nil {
			return nil, err
		}
		for j, v := range vectors {
			out[missIdx[j]] = v
			e.cache.Set(contentHash(misses[j]), v, 1)
		}
	}

	return out, nil
}

// Close releases cache resources.
func (e *CachedEmbedder) Close() {
	e.cache.Close()
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
