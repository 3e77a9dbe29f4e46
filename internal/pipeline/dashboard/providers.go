package dashboard

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/bizdash-go/internal/domain"
)

// Provider criteria names.
const (
	criterionSpeed       = "speed"
	criterionCost        = "cost"
	criterionValue       = "value"
	criterionVolume      = "volume"
	criterionConsistency = "consistency"
)

// Provider tiers.
const (
	TierExcellent = "Excellent"
	TierVeryGood  = "Very Good"
	TierGood      = "Good"
	TierRegular   = "Regular"
	TierLow       = "Low"
)

const (
	minOrdersForEvaluation = 5
	weakSubScore           = 60.0
	weakValueScore         = 40.0
	advantageSubScore      = 80.0
	maxAdvantages          = 3
)

var providerTiers = ThresholdTiers{
	Bands: []Band{
		{Min: 85, Tier: TierExcellent},
		{Min: 70, Tier: TierVeryGood},
		{Min: 55, Tier: TierGood},
		{Min: 40, Tier: TierRegular},
	},
	Default: TierLow,
}

func providerCriteria() []Criterion[*domain.LogisticsRollup] {
	return []Criterion[*domain.LogisticsRollup]{
		{
			// 10 points lost per day slower than the fastest provider
			Name:   criterionSpeed,
			Weight: 30,
			Value: func(r *domain.LogisticsRollup) float64 {
				if r.TransitSamples == 0 {
					return math.NaN()
				}
				return r.AvgTransitDays
			},
			Normalize: LinearPenaltyFromMin(10),
		},
		{
			// 2 points lost per fee/value percentage point above the cheapest
			Name:   criterionCost,
			Weight: 25,
			Value: func(r *domain.LogisticsRollup) float64 {
				if r.TotalValue <= 0 {
					return math.NaN()
				}
				return r.FeeToValueRatio
			},
			Normalize: LinearPenaltyFromMin(2),
		},
		{
			Name:      criterionValue,
			Weight:    20,
			Value:     func(r *domain.LogisticsRollup) float64 { return r.TotalValue },
			Normalize: RelativeToMax,
		},
		{
			Name:      criterionVolume,
			Weight:    15,
			Value:     func(r *domain.LogisticsRollup) float64 { return float64(r.OrderCount) },
			Normalize: RelativeToMax,
		},
		{
			Name:   criterionConsistency,
			Weight: 10,
			Value: func(r *domain.LogisticsRollup) float64 {
				if r.TransitSamples == 0 {
					return math.NaN()
				}
				return 100 - 2*r.TransitVariationPct
			},
			Normalize: Identity,
		},
	}
}

// ProviderRanking is the ranked efficiency list plus the optimal report.
type ProviderRanking struct {
	Ranked  []*domain.ProviderEfficiency
	Optimal *domain.OptimalProviderReport
}

func (r ProviderRanking) ByProvider() map[string]*domain.ProviderEfficiency {
	out := make(map[string]*domain.ProviderEfficiency, len(r.Ranked))
	for _, p := range r.Ranked {
		out[p.Provider] = p
	}
	return out
}

func (r ProviderRanking) Names() []string {
	names := make([]string, len(r.Ranked))
	for i, p := range r.Ranked {
		names[i] = p.Provider
	}
	return names
}

// RankProviders scores every provider rollup against the population
// benchmarks. Equal scores are ordered by provider name.
func RankProviders(rollups map[string]*domain.LogisticsRollup) ProviderRanking {
	items := make([]*domain.LogisticsRollup, 0, len(rollups))
	for _, key := range sortedKeys(rollups) {
		items = append(items, rollups[key])
	}

	scorer := NewScorer(providerCriteria(), providerTiers, func(r *domain.LogisticsRollup) string { return r.Key })
	scored := scorer.Score(items)

	ranking := ProviderRanking{Ranked: make([]*domain.ProviderEfficiency, 0, len(scored))}
	for _, s := range scored {
		sub := domain.ProviderSubScores{
			Speed:       s.Normalized[criterionSpeed],
			Cost:        s.Normalized[criterionCost],
			Value:       s.Normalized[criterionValue],
			Volume:      s.Normalized[criterionVolume],
			Consistency: s.Normalized[criterionConsistency],
		}
		ranking.Ranked = append(ranking.Ranked, &domain.ProviderEfficiency{
			Provider:        s.Item.Key,
			Score:           s.Score,
			Tier:            s.Tier,
			Rank:            s.Rank,
			Percentile:      s.Percentile,
			SubScores:       sub,
			OrderCount:      s.Item.OrderCount,
			AvgTransitDays:  s.Item.AvgTransitDays,
			FeeToValueRatio: s.Item.FeeToValueRatio,
			TotalValue:      s.Item.TotalValue,
			Recommendations: providerRecommendations(s.Item, sub),
		})
	}

	ranking.Optimal = optimalProvider(ranking.Ranked)
	return ranking
}

func providerRecommendations(r *domain.LogisticsRollup, sub domain.ProviderSubScores) []string {
	var recs []string
	if sub.Speed < weakSubScore {
		recs = append(recs, fmt.Sprintf("Improve transit time (average %.1f days)", r.AvgTransitDays))
	}
	if sub.Cost < weakSubScore {
		recs = append(recs, fmt.Sprintf("Negotiate lower fees (fee is %.1f%% of transported value)", r.FeeToValueRatio))
	}
	if sub.Value < weakValueScore {
		recs = append(recs, "Consolidate shipments to raise transported value")
	}
	if sub.Consistency < weakSubScore {
		recs = append(recs, "Stabilize transit times with committed delivery windows")
	}
	if r.OrderCount < minOrdersForEvaluation {
		recs = append(recs, "Increase volume for reliable evaluation")
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain current terms and keep monitoring")
	}
	return recs
}

func optimalProvider(ranked []*domain.ProviderEfficiency) *domain.OptimalProviderReport {
	if len(ranked) == 0 {
		return nil
	}
	top := ranked[0]
	report := &domain.OptimalProviderReport{
		Provider: top.Provider,
		Score:    top.Score,
		Tier:     top.Tier,
	}
	if len(ranked) > 1 {
		report.RunnerUp = ranked[1].Provider
		report.MarginOverSecond = round2(top.Score - ranked[1].Score)
	}

	type advantage struct {
		score float64
		text  string
	}
	candidates := []advantage{
		{top.SubScores.Speed, "Fastest transit times"},
		{top.SubScores.Cost, "Lowest fee relative to value"},
		{top.SubScores.Value, "Highest transported value"},
		{top.SubScores.Volume, "Largest order volume"},
		{top.SubScores.Consistency, "Most consistent delivery"},
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	report.Advantages = []string{}
	for _, c := range candidates {
		if c.score < advantageSubScore || len(report.Advantages) == maxAdvantages {
			break
		}
		report.Advantages = append(report.Advantages, c.text)
	}
	return report
}
