// Package ranking implements the hybrid scoring engine that blends
// vector similarity, keyword overlap, recency, importance, and relation
// signals into one ordering.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kaizen-dev/memento/pkg/model"
)

// Weights are the six coefficients combined into Score. Defaults match
// the engine's tuned baseline; callers may override per-query.
type Weights struct {
	Vector        float64
	Keyword       float64
	Recency       float64
	Importance    float64
	Relation      float64
	Contradiction float64
}

// DefaultWeights returns the baseline coefficients: vector 0.45, keyword
// 0.15, recency 0.10, importance 0.15, relations 0.10, contradiction 0.10.
func DefaultWeights() Weights {
	return Weights{
		Vector:        0.45,
		Keyword:       0.15,
		Recency:       0.10,
		Importance:    0.15,
		Relation:      0.10,
		Contradiction: 0.10,
	}
}

// DefaultHalfLifeDays is the recency half-life in days absent override.
const DefaultHalfLifeDays = 30.0

// Candidate is one scoring input: a memory plus the signals gathered for
// it from storage (vector similarity, relation graph, keyword overlap).
type Candidate struct {
	Memory             *model.Memory
	VectorScore        float64
	KeywordScore       float64
	RelationCount      int
	ContradictionCount int
}

// Scored pairs a candidate with its combined score.
type Scored struct {
	Candidate Candidate
	Score     float64
}

// Engine ranks candidates, memoizing keyword-score tokenization across
// calls sharing the same query text.
type Engine struct {
	weights      Weights
	halfLifeDays float64
	tokenCache   *lru.Cache[string, []string]
}

// New constructs a ranking Engine with the given weights and recency
// half-life. A zero halfLifeDays falls back to DefaultHalfLifeDays.
func New(weights Weights, halfLifeDays float64) *Engine {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	cache, _ := lru.New[string, []string](256)
	return &Engine{weights: weights, halfLifeDays: halfLifeDays, tokenCache: cache}
}

// KeywordScore tokenizes query on whitespace and scores memory by
// weighted, case-insensitive token occurrence: title weight 3, tags
// weight 2, content weight 1, normalized by token count and clamped to
// [0, 1].
func (e *Engine) KeywordScore(query string, m *model.Memory) float64 {
	tokens := e.tokenize(query)
	if len(tokens) == 0 {
		return 0
	}

	title := strings.ToLower(m.Title)
	content := strings.ToLower(m.Content)
	tags := strings.ToLower(strings.Join(m.Tags, " "))

	var total float64
	for _, tok := range tokens {
		total += 3 * float64(strings.Count(title, tok))
		total += 2 * float64(strings.Count(tags, tok))
		total += 1 * float64(strings.Count(content, tok))
	}

	score := total / float64(len(tokens))
	return clamp01(score)
}

func (e *Engine) tokenize(query string) []string {
	if e.tokenCache != nil {
		if cached, ok := e.tokenCache.Get(query); ok {
			return cached
		}
	}
	fields := strings.Fields(strings.ToLower(query))
	if e.tokenCache != nil {
		e.tokenCache.Add(query, fields)
	}
	return fields
}

// Recency returns exp(-age_days / half_life_days) for m as of now.
func (e *Engine) Recency(m *model.Memory, now time.Time) float64 {
	ageDays := now.Sub(m.CreatedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / e.halfLifeDays)
}

// Score computes the combined score for one candidate at instant now.
func (e *Engine) Score(c Candidate, now time.Time) float64 {
	w := e.weights
	relationComponent := clamp01(float64(c.RelationCount) / 5)
	contradictionPenalty := math.Min(float64(c.ContradictionCount), 3) / 3

	return w.Vector*c.VectorScore +
		w.Keyword*c.KeywordScore +
		w.Recency*e.Recency(c.Memory, now) +
		w.Importance*c.Memory.Importance +
		w.Relation*relationComponent -
		w.Contradiction*contradictionPenalty
}

// Rank scores every candidate and returns them sorted by descending
// score, with ties broken by preserving input order (stable sort).
func (e *Engine) Rank(candidates []Candidate, now time.Time) []Scored {
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{Candidate: c, Score: e.Score(c, now)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
