package dashboard

import (
	"math"
	"sort"
)

// NormalizeFunc maps raw criterion values onto a 0-100 scale. NaN marks an
// item without data for that criterion.
type NormalizeFunc func(raw []float64) []float64

// Criterion is one weighted factor of a composite score.
type Criterion[T any] struct {
	Name      string
	Weight    float64
	Value     func(T) float64
	Normalize NormalizeFunc
}

// TieringPolicy assigns a tier to every position of a descending score list.
type TieringPolicy interface {
	Assign(sortedScores []float64) []string
}

// Scored is one item after scoring, in rank order.
type Scored[T any] struct {
	Item       T
	Raw        map[string]float64
	Normalized map[string]float64
	Score      float64
	Rank       int
	Percentile float64
	Tier       string
}

// Scorer runs normalize, weight, sum and tier over a population.
type Scorer[T any] struct {
	criteria []Criterion[T]
	tiering  TieringPolicy
	tieKey   func(T) string
}

// NewScorer builds a scorer. tieKey orders items with equal scores.
func NewScorer[T any](criteria []Criterion[T], tiering TieringPolicy, tieKey func(T) string) *Scorer[T] {
	return &Scorer[T]{criteria: criteria, tiering: tiering, tieKey: tieKey}
}

func (s *Scorer[T]) Score(items []T) []Scored[T] {
	if len(items) == 0 {
		return nil
	}

	out := make([]Scored[T], len(items))
	for i, item := range items {
		out[i] = Scored[T]{
			Item:       item,
			Raw:        make(map[string]float64, len(s.criteria)),
			Normalized: make(map[string]float64, len(s.criteria)),
		}
	}

	var totalWeight float64
	for _, c := range s.criteria {
		totalWeight += c.Weight
	}

	for _, c := range s.criteria {
		raw := make([]float64, len(items))
		for i, item := range items {
			raw[i] = c.Value(item)
		}
		normalize := c.Normalize
		if normalize == nil {
			normalize = Identity
		}
		norm := normalize(raw)
		for i := range out {
			out[i].Raw[c.Name] = raw[i]
			out[i].Normalized[c.Name] = round2(norm[i])
			out[i].Score += c.Weight * norm[i]
		}
	}

	for i := range out {
		out[i].Score = round2(clamp(safeDiv(out[i].Score, totalWeight), 0, 100))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if s.tieKey == nil {
			return false
		}
		return s.tieKey(out[i].Item) < s.tieKey(out[j].Item)
	})

	n := len(out)
	scores := make([]float64, n)
	for i := range out {
		out[i].Rank = i + 1
		out[i].Percentile = 100
		if n > 1 {
			out[i].Percentile = round2(float64(n-1-i) / float64(n-1) * 100)
		}
		scores[i] = out[i].Score
	}

	if s.tiering != nil {
		tiers := s.tiering.Assign(scores)
		for i := range out {
			out[i].Tier = tiers[i]
		}
	}
	return out
}

const neutralScore = 50.0

// Identity clamps values that are already on a 0-100 scale.
func Identity(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		if math.IsNaN(v) {
			out[i] = neutralScore
			continue
		}
		out[i] = clamp(v, 0, 100)
	}
	return out
}

// LogMinMax applies log(max(v, 0.01)) and then min-max scales the result, so
// a single outlier does not flatten every other score. A population whose
// values are all equal scores neutral.
func LogMinMax(raw []float64) []float64 {
	logs := make([]float64, len(raw))
	minLog, maxLog := math.Inf(1), math.Inf(-1)
	for i, v := range raw {
		if math.IsNaN(v) {
			v = 0
		}
		logs[i] = math.Log(math.Max(v, 0.01))
		minLog = math.Min(minLog, logs[i])
		maxLog = math.Max(maxLog, logs[i])
	}

	out := make([]float64, len(raw))
	for i, l := range logs {
		if maxLog == minLog {
			out[i] = neutralScore
			continue
		}
		out[i] = (l - minLog) / (maxLog - minLog) * 100
	}
	return out
}

// RelativeToMax scores each value as a share of the population maximum.
func RelativeToMax(raw []float64) []float64 {
	hi := 0.0
	for _, v := range raw {
		if !math.IsNaN(v) {
			hi = math.Max(hi, v)
		}
	}

	out := make([]float64, len(raw))
	for i, v := range raw {
		if math.IsNaN(v) || hi <= 0 {
			out[i] = neutralScore
			continue
		}
		out[i] = clamp(v/hi*100, 0, 100)
	}
	return out
}

// LinearPenaltyFromMin gives the lowest value 100 and removes pointsPerUnit
// for every unit above it.
func LinearPenaltyFromMin(pointsPerUnit float64) NormalizeFunc {
	return func(raw []float64) []float64 {
		best := math.Inf(1)
		for _, v := range raw {
			if !math.IsNaN(v) {
				best = math.Min(best, v)
			}
		}

		out := make([]float64, len(raw))
		for i, v := range raw {
			if math.IsNaN(v) || math.IsInf(best, 1) {
				out[i] = neutralScore
				continue
			}
			out[i] = clamp(100-pointsPerUnit*(v-best), 0, 100)
		}
		return out
	}
}

// Band is a lower bound and the tier it unlocks.
type Band struct {
	Min  float64
	Tier string
}

// ThresholdTiers assigns the first band whose minimum the score reaches.
type ThresholdTiers struct {
	Bands   []Band
	Default string
}

func (t ThresholdTiers) Assign(sortedScores []float64) []string {
	out := make([]string, len(sortedScores))
	for i, score := range sortedScores {
		out[i] = t.Default
		for _, b := range t.Bands {
			if score >= b.Min {
				out[i] = b.Tier
				break
			}
		}
	}
	return out
}
