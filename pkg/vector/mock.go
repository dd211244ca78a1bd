package vector

import (
	"context"
)

const mockDimensions = 384

// MockEmbedder produces deterministic hash-based embeddings with fixed
// dimensions. Identical text always yields an identical vector, which
// makes similarity assertions in tests stable.
type MockEmbedder struct {
	dims int
}

// NewMockEmbedder creates a mock embedder. dims <= 0 uses the default.
func NewMockEmbedder(dims int) *MockEmbedder {
	if dims <= 0 {
		dims = mockDimensions
	}
	return &MockEmbedder{dims: dims}
}

func (e *MockEmbedder) Dimensions() int {
	return e.dims
}

func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	var h uint32
	for i := 0; i < len(text); i++ {
		h = h*31 + uint32(text[i])
	}
	out := make([]float32, e.dims)
	for i := 0; i < e.dims; i++ {
		x := h*uint32(i+1) + uint32(i)*17
		out[i] = float32(x%1000)/1000 - 0.5
	}
	return out, nil
}

func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
