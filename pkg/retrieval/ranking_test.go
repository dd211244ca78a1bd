package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltiq/moltiq/pkg/memory"
)

func rankable(id, projectID, title, content string, sem float64, createdAt time.Time) Rankable {
	return Rankable{
		Memory: &memory.Memory{
			ID:        id,
			ProjectID: projectID,
			Type:      memory.TypeFact,
			Title:     title,
			Content:   content,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		SemanticScore: sem,
	}
}

func TestRankProjectFilter(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	candidates := []Rankable{
		rankable("a1", "A", "query match", "query match", 0.9, now),
		rankable("b1", "B", "query match", "query match", 0.95, now),
		rankable("a2", "A", "other", "other", 0.8, now),
	}

	ranked := Rank(candidates, RankingOptions{Query: "query", ProjectID: "A", Now: now})

	require.Len(t, ranked, 2)
	assert.Equal(t, "a1", ranked[0].Memory.ID)
	assert.Equal(t, "a2", ranked[1].Memory.ID)
}

func TestRankTagFilterExcludesZeroOverlap(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tagged := rankable("t1", "p", "a", "b", 0.5, now)
	tagged.Memory.TagsJSON = memory.EncodeTags([]string{"golang", "db"})
	untagged := rankable("t2", "p", "a", "b", 0.9, now)

	ranked := Rank([]Rankable{tagged, untagged}, RankingOptions{
		ProjectID: "p",
		Tags:      []string{"golang"},
		Now:       now,
	})

	require.Len(t, ranked, 1)
	assert.Equal(t, "t1", ranked[0].Memory.ID)
}

func TestRankTagFilterNoCandidatesIsEmptyNotError(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	candidates := []Rankable{
		rankable("m1", "p", "a", "b", 0.5, now),
		rankable("m2", "p", "c", "d", 0.6, now),
	}

	ranked := Rank(candidates, RankingOptions{
		ProjectID: "p",
		Tags:      []string{"missing"},
		Now:       now,
	})

	assert.Empty(t, ranked)
}

func TestRankPartialTagOverlapScales(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	full := rankable("full", "p", "a", "b", 0.5, now)
	full.Memory.TagsJSON = memory.EncodeTags([]string{"x", "y"})
	half := rankable("half", "p", "a", "b", 0.5, now)
	half.Memory.TagsJSON = memory.EncodeTags([]string{"x"})

	// half before full in the input: the sort must reorder on score.
	ranked := Rank([]Rankable{half, full}, RankingOptions{
		ProjectID: "p",
		Tags:      []string{"x", "y"},
		Now:       now,
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "full", ranked[0].Memory.ID)
	assert.Equal(t, "half", ranked[1].Memory.ID)
}

func TestRankBoostsOutrankUnboosted(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	pinned := rankable("pinned", "p", "a", "b", 0.5, now)
	pinned.Memory.IsPinned = true
	favorite := rankable("favorite", "p", "a", "b", 0.5, now)
	favorite.Memory.IsFavorite = true
	plain := rankable("plain", "p", "a", "b", 0.5, now)

	ranked := Rank([]Rankable{plain, favorite, pinned}, RankingOptions{
		ProjectID: "p",
		Now:       now,
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "pinned", ranked[0].Memory.ID)
	assert.Equal(t, "favorite", ranked[1].Memory.ID)
	assert.Equal(t, "plain", ranked[2].Memory.ID)
}

func TestRankConfidenceDampensScore(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	sure := rankable("sure", "p", "a", "b", 0.5, now)
	sure.Memory.Confidence = 1.0
	shaky := rankable("shaky", "p", "a", "b", 0.5, now)
	shaky.Memory.Confidence = 0.2
	unset := rankable("unset", "p", "a", "b", 0.5, now)

	_, explanations := RankWithExplain([]Rankable{sure, shaky, unset}, RankingOptions{
		ProjectID: "p",
		Now:       now,
	})
	require.Len(t, explanations, 3)

	byID := map[string]float64{}
	for _, e := range explanations {
		byID[e.ID] = e.Score
	}

	// Unset confidence means no signal, not zero confidence.
	assert.Equal(t, byID["sure"], byID["unset"])
	assert.Less(t, byID["shaky"], byID["unset"])
}

func TestRankRecencyDecay(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	fresh := rankable("fresh", "p", "a", "b", 0.5, now)
	stale := rankable("stale", "p", "a", "b", 0.5, now.AddDate(0, 0, -60))
	future := rankable("future", "p", "a", "b", 0.5, now.Add(time.Hour))

	_, explanations := RankWithExplain([]Rankable{stale, fresh, future}, RankingOptions{
		ProjectID: "p",
		Now:       now,
	})
	require.Len(t, explanations, 3)

	byID := map[string]Explanation{}
	for _, e := range explanations {
		byID[e.ID] = e
	}

	assert.Equal(t, 1.0, byID["fresh"].RecencyScore)
	assert.Equal(t, 1.0, byID["future"].RecencyScore)
	assert.Less(t, byID["stale"].RecencyScore, 0.2)
}

func TestRankEmptyQueryDegradesToSemantic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	high := rankable("high", "p", "a", "b", 0.9, now)
	low := rankable("low", "p", "a", "b", 0.1, now)

	ranked, explanations := RankWithExplain([]Rankable{low, high}, RankingOptions{
		Query:     "",
		ProjectID: "p",
		Now:       now,
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "high", ranked[0].Memory.ID)
	assert.Equal(t, 0.0, explanations[0].KeywordScore)
}

func TestRankStableOnTies(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	candidates := []Rankable{
		rankable("first", "p", "a", "b", 0.5, now),
		rankable("second", "p", "a", "b", 0.5, now),
		rankable("third", "p", "a", "b", 0.5, now),
	}

	ranked := Rank(candidates, RankingOptions{ProjectID: "p", Now: now})

	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].Memory.ID)
	assert.Equal(t, "second", ranked[1].Memory.ID)
	assert.Equal(t, "third", ranked[2].Memory.ID)
}

func TestRankDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	candidates := []Rankable{
		rankable("a", "p", "alpha index", "content about indexing", 0.3, now.AddDate(0, 0, -3)),
		rankable("b", "p", "beta", "unrelated", 0.8, now.AddDate(0, 0, -10)),
		rankable("c", "p", "gamma index", "index twice", 0.5, now.AddDate(0, 0, -1)),
	}
	opts := RankingOptions{Query: "index", ProjectID: "p", Now: now}

	first := Rank(candidates, opts)
	second := Rank(candidates, opts)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Memory.ID, second[i].Memory.ID)
	}
}

func TestKeywordMatchScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  float64
	}{
		{"empty query", "", "anything", 0},
		{"whitespace query", "   ", "anything", 0},
		{"full match", "redis cache", "the redis cache layer", 1},
		{"half match", "redis kafka", "the redis cache layer", 0.5},
		{"case insensitive", "REDIS", "Redis cluster", 1},
		{"substring containment", "cach", "caching layer", 1},
		{"short terms never match", "a b", "a b c", 0},
		{"short term still in denominator", "a redis", "redis", 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, keywordMatchScore(tc.query, tc.text), 1e-9)
		})
	}
}

func TestRecencyBoostDaysClamped(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	old := rankable("old", "p", "a", "b", 0.5, now.AddDate(0, 0, -30))

	// A negative decay constant must not invert the decay into growth.
	ranked, explanations := RankWithExplain([]Rankable{old}, RankingOptions{
		ProjectID:        "p",
		RecencyBoostDays: -5,
		Now:              now,
	})

	require.Len(t, ranked, 1)
	assert.Greater(t, explanations[0].RecencyScore, 0.0)
	assert.Less(t, explanations[0].RecencyScore, 1.0)
}

func TestRankExplanationAlignment(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	pinned := rankable("p1", "p", "topic", "content", 0.4, now)
	pinned.Memory.IsPinned = true
	plain := rankable("p2", "p", "topic", "content", 0.4, now)

	ranked, explanations := RankWithExplain([]Rankable{plain, pinned}, RankingOptions{
		Query:     "topic",
		ProjectID: "p",
		Now:       now,
	})

	require.Len(t, ranked, 2)
	require.Len(t, explanations, 2)
	for i := range ranked {
		assert.Equal(t, ranked[i].Memory.ID, explanations[i].ID)
	}
	assert.Equal(t, DefaultPinnedBoost, explanations[0].PinnedBoost)
	assert.Zero(t, explanations[1].PinnedBoost)
}
