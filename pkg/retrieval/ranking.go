package retrieval

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/moltiq/moltiq/pkg/memory"
)

// Ranking defaults.
const (
	DefaultRecencyDays    = 30.0
	DefaultPinnedBoost    = 1.5
	DefaultFavoriteBoost  = 1.2
	DefaultKeywordWeight  = 0.3
	DefaultSemanticWeight = 0.7

	// minRecencyDays floors the decay constant so a zero or negative
	// config value cannot divide by zero or invert the decay.
	minRecencyDays = 0.1
)

// Rankable combines a memory record with its vector similarity for one
// ranking pass. A zero SemanticScore means the record was reached
// without a vector hit; it still participates in keyword, recency, and
// tag scoring.
type Rankable struct {
	Memory        *memory.Memory
	SemanticScore float64
}

// RankingOptions controls one ranking pass. Zero-valued weights and
// boosts fall back to the package defaults.
type RankingOptions struct {
	Query            string
	ProjectID        string
	Tags             []string
	RecencyBoostDays float64
	PinnedBoost      float64
	FavoriteBoost    float64
	KeywordWeight    float64
	SemanticWeight   float64

	// Now anchors recency decay; zero means time.Now(). Tests pin it
	// for determinism.
	Now time.Time
}

// Explanation reports the intermediate scores behind one ranked result.
type Explanation struct {
	ID            string  `json:"id"`
	Score         float64 `json:"score"`
	KeywordScore  float64 `json:"keyword_score"`
	SemanticScore float64 `json:"semantic_score"`
	RecencyScore  float64 `json:"recency_score"`
	TagScore      float64 `json:"tag_score"`
	PinnedBoost   float64 `json:"pinned_boost,omitempty"`
	FavoriteBoost float64 `json:"favorite_boost,omitempty"`
}

func (o *RankingOptions) withDefaults() RankingOptions {
	out := *o
	if out.RecencyBoostDays == 0 {
		out.RecencyBoostDays = DefaultRecencyDays
	}
	if out.RecencyBoostDays < minRecencyDays {
		out.RecencyBoostDays = minRecencyDays
	}
	if out.PinnedBoost == 0 {
		out.PinnedBoost = DefaultPinnedBoost
	}
	if out.FavoriteBoost == 0 {
		out.FavoriteBoost = DefaultFavoriteBoost
	}
	if out.KeywordWeight == 0 {
		out.KeywordWeight = DefaultKeywordWeight
	}
	if out.SemanticWeight == 0 {
		out.SemanticWeight = DefaultSemanticWeight
	}
	if out.Now.IsZero() {
		out.Now = time.Now()
	}
	return out
}

// Rank orders candidates by hybrid relevance, highest first. Candidates
// excluded by the project or tag filter are dropped. The sort is stable
// so equal scores preserve input order.
func Rank(candidates []Rankable, opts RankingOptions) []Rankable {
	ranked, _ := rank(candidates, opts, false)
	return ranked
}

// RankWithExplain ranks and additionally reports per-candidate score
// breakdowns, index-aligned with the ranked result.
func RankWithExplain(candidates []Rankable, opts RankingOptions) ([]Rankable, []Explanation) {
	return rank(candidates, opts, true)
}

func rank(candidates []Rankable, opts RankingOptions, explain bool) ([]Rankable, []Explanation) {
	o := opts.withDefaults()

	type scored struct {
		candidate Rankable
		score     float64
		expl      Explanation
	}

	kept := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		m := c.Memory
		if o.ProjectID != "" && m.ProjectID != o.ProjectID {
			continue
		}

		tagScore := tagMatchScore(m.Tags(), o.Tags)
		if tagScore == 0 {
			continue
		}

		kw := keywordMatchScore(o.Query, m.Title+" "+m.Content)
		sem := c.SemanticScore
		rec := recencyScore(m.CreatedAt, o.Now, o.RecencyBoostDays)

		score := o.KeywordWeight*kw + o.SemanticWeight*sem
		score *= rec
		score *= tagScore

		expl := Explanation{
			ID:            m.ID,
			KeywordScore:  kw,
			SemanticScore: sem,
			RecencyScore:  rec,
			TagScore:      tagScore,
		}

		if m.IsPinned {
			score *= o.PinnedBoost
			expl.PinnedBoost = o.PinnedBoost
		}
		if m.IsFavorite {
			score *= o.FavoriteBoost
			expl.FavoriteBoost = o.FavoriteBoost
		}
		if m.Confidence > 0 {
			score *= 0.5 + 0.5*m.Confidence
		}

		expl.Score = score
		kept = append(kept, scored{candidate: c, score: score, expl: expl})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	ranked := make([]Rankable, len(kept))
	var explanations []Explanation
	if explain {
		explanations = make([]Explanation, len(kept))
	}
	for i, s := range kept {
		ranked[i] = s.candidate
		if explain {
			explanations[i] = s.expl
		}
	}
	return ranked, explanations
}

// keywordMatchScore returns the fraction of query terms contained in
// text. Terms under 2 characters never match but stay in the
// denominator. Case-insensitive substring containment.
func keywordMatchScore(query, text string) float64 {
	terms := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(terms) == 0 {
		return 0
	}
	haystack := strings.ToLower(text)
	hits := 0
	for _, term := range terms {
		if len(term) >= 2 && strings.Contains(haystack, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

// recencyScore decays exponentially with age in days. Records created
// now or in the future score maximally fresh.
func recencyScore(createdAt, now time.Time, decayDays float64) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	return math.Exp(-ageDays / decayDays)
}

// tagMatchScore returns the fraction of requested tags present on the
// candidate. No requested tags means no filter (score 1); zero overlap
// excludes the candidate.
func tagMatchScore(candidateTags, requestedTags []string) float64 {
	if len(requestedTags) == 0 {
		return 1
	}
	if len(candidateTags) == 0 {
		return 0
	}
	set := make(map[string]bool, len(candidateTags))
	for _, t := range candidateTags {
		set[strings.ToLower(t)] = true
	}
	matched := 0
	for _, t := range requestedTags {
		if set[strings.ToLower(t)] {
			matched++
		}
	}
	return float64(matched) / float64(len(requestedTags))
}
