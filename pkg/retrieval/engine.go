package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/moltiq/moltiq/internal/observability"
	"github.com/moltiq/moltiq/internal/tracing"
	"github.com/moltiq/moltiq/pkg/memory"
	"github.com/moltiq/moltiq/pkg/vector"
)

const (
	// DefaultLimit caps search results when the caller does not.
	DefaultLimit = 20
	// DefaultMaxK caps the vector query fan-out.
	DefaultMaxK = 100
	// DefaultBudgetTokens is the recall packing budget.
	DefaultBudgetTokens = 2000
)

// Fetcher hydrates full memory records by id. Result order is not
// guaranteed to match the input; the engine re-associates by id. An
// empty input returns an empty result without error.
type Fetcher interface {
	FetchByIDs(ctx context.Context, ids []string) ([]*memory.Memory, error)
}

// Options configures one search or recall call.
type Options struct {
	Query            string
	ProjectID        string
	Type             string
	Tags             []string
	Limit            int
	BudgetTokens     int
	BudgetChars      int
	RecencyBoostDays float64
	Explain          bool
	MaxK             int
}

// SearchResult is a ranked, truncated result set.
type SearchResult struct {
	Memories     []*memory.Memory
	Explanations []Explanation
}

// RecallResult is a search result packed into a context budget.
type RecallResult struct {
	Memories     []*memory.Memory
	Packed       string
	UsedChars    int
	Dropped      int
	Explanations []Explanation
}

// Engine composes the vector adapter, storage hydration, ranking, and
// budgeting into the two public retrieval operations. It is stateless
// and safe for concurrent use.
type Engine struct {
	vector      vector.Adapter
	fetcher     Fetcher
	defaultMaxK int
	logger      zerolog.Logger
}

// NewEngine creates a retrieval engine. Both collaborators are
// injected; there is no package-level default. maxK <= 0 uses
// DefaultMaxK.
func NewEngine(adapter vector.Adapter, fetcher Fetcher, maxK int, logger zerolog.Logger) *Engine {
	if maxK <= 0 {
		maxK = DefaultMaxK
	}
	return &Engine{
		vector:      adapter,
		fetcher:     fetcher,
		defaultMaxK: maxK,
		logger:      logger,
	}
}

// Search runs a vector query, hydrates the hits, and ranks them.
func (e *Engine) Search(ctx context.Context, opts Options) (*SearchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracing.StartSpan(
		ctx,
		"moltiq.retrieval",
		"retrieval.search",
		attribute.String("project_id", opts.ProjectID),
		attribute.Int("limit", opts.Limit),
	)
	defer span.End()

	logger := tracing.LoggerFromContext(ctx, e.logger)
	start := time.Now()
	defer func() { observability.RecordRetrievalSearch(time.Since(start)) }()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	maxK := opts.MaxK
	if maxK <= 0 {
		maxK = e.defaultMaxK
	}

	// Over-fetch to compensate for candidates the ranker filters out.
	k := limit * 2
	if k > maxK {
		k = maxK
	}

	filter := vector.Filter{ProjectID: opts.ProjectID, Type: opts.Type}
	hits, err := e.vector.Query(ctx, opts.Query, k, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("vector query: %w", err)
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
		scores[hit.ID] = hit.Score
	}

	records, err := e.fetchByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("hydrate memories: %w", err)
	}

	candidates := make([]Rankable, len(records))
	for i, m := range records {
		candidates[i] = Rankable{Memory: m, SemanticScore: scores[m.ID]}
	}

	rankOpts := RankingOptions{
		Query:            opts.Query,
		ProjectID:        opts.ProjectID,
		Tags:             opts.Tags,
		RecencyBoostDays: opts.RecencyBoostDays,
	}

	result := &SearchResult{}
	if opts.Explain {
		ranked, explanations := RankWithExplain(candidates, rankOpts)
		if len(ranked) > limit {
			ranked = ranked[:limit]
			explanations = explanations[:limit]
		}
		result.Memories = rankableMemories(ranked)
		result.Explanations = explanations
	} else {
		ranked := Rank(candidates, rankOpts)
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		result.Memories = rankableMemories(ranked)
	}

	logger.Debug().
		Str("query", opts.Query).
		Int("candidates", len(candidates)).
		Int("results", len(result.Memories)).
		Msg("Search completed")

	return result, nil
}

// Recall searches, then packs the results into a token budget for
// prompt injection.
func (e *Engine) Recall(ctx context.Context, opts Options) (*RecallResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracing.StartSpan(
		ctx,
		"moltiq.retrieval",
		"retrieval.recall",
		attribute.String("project_id", opts.ProjectID),
	)
	defer span.End()

	start := time.Now()
	defer func() { observability.RecordRetrievalRecall(time.Since(start)) }()

	searchResult, err := e.Search(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	budgetTokens := opts.BudgetTokens
	if budgetTokens <= 0 && opts.BudgetChars <= 0 {
		budgetTokens = DefaultBudgetTokens
	}

	items := make([]BudgetItem, len(searchResult.Memories))
	for i, m := range searchResult.Memories {
		items[i] = BudgetItem{
			ID:   m.ID,
			Text: m.Title + "\n" + m.Content,
			Meta: map[string]string{"type": string(m.Type)},
		}
	}

	packed := Pack(items, BudgeterOptions{
		BudgetTokens: budgetTokens,
		BudgetChars:  opts.BudgetChars,
	})
	observability.RecordBudgeterDrop(packed.Dropped)

	return &RecallResult{
		Memories:     searchResult.Memories,
		Packed:       packed.Packed,
		UsedChars:    packed.Used,
		Dropped:      packed.Dropped,
		Explanations: searchResult.Explanations,
	}, nil
}

// fetchByIDs short-circuits the storage round trip for an empty id set.
func (e *Engine) fetchByIDs(ctx context.Context, ids []string) ([]*memory.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return e.fetcher.FetchByIDs(ctx, ids)
}

func rankableMemories(ranked []Rankable) []*memory.Memory {
	out := make([]*memory.Memory, len(ranked))
	for i, r := range ranked {
		out[i] = r.Memory
	}
	return out
}
