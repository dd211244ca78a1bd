package vector

import (
	"context"
	"errors"
)

// ErrStoreUnavailable indicates the backing vector store is unreachable
// or erroring. The fallback wrapper recovers from it in optional mode.
var ErrStoreUnavailable = errors.New("vector store unavailable")

// Metadata is the fixed attribute set attached to an indexed document.
// Extra holds scalar extension attributes that backends persist as-is.
type Metadata struct {
	ProjectID string            `json:"project_id,omitempty"`
	MemoryID  string            `json:"memory_id,omitempty"`
	Type      string            `json:"type,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Filter narrows a query to documents whose metadata matches. Zero
// values match everything.
type Filter struct {
	ProjectID string
	Type      string
}

// Result is one ranked hit from a vector query.
type Result struct {
	ID       string
	Score    float64 // similarity in [0,1], highest first
	Metadata Metadata
}

// Adapter is the three-operation vector index contract.
type Adapter interface {
	// Add indexes text under id. Re-adding an id replaces the entry.
	Add(ctx context.Context, id, text string, meta Metadata) error

	// Query returns up to k results ranked by similarity, filtered by
	// metadata when a filter field is set.
	Query(ctx context.Context, text string, k int, filter Filter) ([]Result, error)

	// Delete removes an entry. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Embedder converts text into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// clampScore keeps a similarity inside [0,1]; backends produce small
// excursions from float conversion of cosine distances.
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
