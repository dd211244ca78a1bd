package vector

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
)

const defaultCollection = "moltiq_memories"

// ChromemAdapter backs the vector contract with chromem-go, a pure Go
// embedded vector database. Useful where cgo is unavailable.
type ChromemAdapter struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
	logger     zerolog.Logger
	mu         sync.Mutex
}

// ChromemConfig configures the chromem backend.
type ChromemConfig struct {
	Collection string
	Embedder   Embedder
	Logger     zerolog.Logger
}

// NewChromemAdapter creates an in-memory chromem-backed adapter.
func NewChromemAdapter(cfg ChromemConfig) (*ChromemAdapter, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	name := cfg.Collection
	if name == "" {
		name = defaultCollection
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemAdapter{
		db:         db,
		collection: col,
		embedder:   cfg.Embedder,
		logger:     cfg.Logger,
	}, nil
}

func (a *ChromemAdapter) Add(ctx context.Context, id, text string, meta Metadata) error {
	embedding, err := a.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	doc := chromem.Document{
		ID:        id,
		Content:   text,
		Embedding: embedding,
		Metadata:  metadataToMap(meta),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

func (a *ChromemAdapter) Query(ctx context.Context, text string, k int, filter Filter) ([]Result, error) {
	embedding, err := a.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	where := map[string]string{}
	if filter.ProjectID != "" {
		where["project_id"] = filter.ProjectID
	}
	if filter.Type != "" {
		where["type"] = filter.Type
	}
	if len(where) == 0 {
		where = nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// chromem rejects nResults beyond the collection size
	count := a.collection.Count()
	if count == 0 {
		return []Result{}, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		return []Result{}, nil
	}

	hits, err := a.collection.QueryEmbedding(ctx, embedding, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			ID:       hit.ID,
			Score:    clampScore(float64(hit.Similarity)),
			Metadata: mapToMetadata(hit.Metadata),
		})
	}
	return results, nil
}

func (a *ChromemAdapter) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.collection.Delete(ctx, nil, nil, id)
}

func metadataToMap(meta Metadata) map[string]string {
	out := map[string]string{}
	if meta.ProjectID != "" {
		out["project_id"] = meta.ProjectID
	}
	if meta.MemoryID != "" {
		out["memory_id"] = meta.MemoryID
	}
	if meta.Type != "" {
		out["type"] = meta.Type
	}
	for k, v := range meta.Extra {
		out[k] = v
	}
	return out
}

func mapToMetadata(m map[string]string) Metadata {
	meta := Metadata{
		ProjectID: m["project_id"],
		MemoryID:  m["memory_id"],
		Type:      m["type"],
	}
	for k, v := range m {
		switch k {
		case "project_id", "memory_id", "type":
		default:
			if meta.Extra == nil {
				meta.Extra = map[string]string{}
			}
			meta.Extra[k] = v
		}
	}
	return meta
}
