package dashboard

import (
	"fmt"
	"math"

	"github.com/andresuchdata/bizdash-go/internal/domain"
)

// ABC classes.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
)

// Market positions on the growth/share matrix.
const (
	PositionStar         = "Star"
	PositionCashCow      = "Cash Cow"
	PositionQuestionMark = "Question Mark"
	PositionDog          = "Dog"
)

var positionValues = map[string]float64{
	PositionStar:         100,
	PositionCashCow:      75,
	PositionQuestionMark: 50,
	PositionDog:          25,
}

// Boundary methods reported in the thresholds block.
const (
	MethodNaturalGap = "natural_gap"
	MethodFallback   = "fallback"
)

const (
	lowStockUnits        = 10
	excessStockUnits     = 40
	slowVelocity         = 0.05
	nicheMargin          = 40.0
	highRisk             = 0.5
	concentrationShare   = 0.30
	promotionScoreFactor = 0.9
)

// NaturalGapTiers splits a descending score list where adjacent scores are
// furthest apart. The A/B cut must leave A with a share of the population in
// [ARange]; the B/C cut must leave A+B within [BRange]. Each cut falls back to
// its fixed share independently when no positive gap qualifies.
type NaturalGapTiers struct {
	ARange    [2]float64
	BRange    [2]float64
	AFallback float64
	BFallback float64
}

func DefaultNaturalGapTiers() NaturalGapTiers {
	return NaturalGapTiers{
		ARange:    [2]float64{0.05, 0.35},
		BRange:    [2]float64{0.55, 0.90},
		AFallback: 0.15,
		BFallback: 0.60,
	}
}

// GapBoundaries are exclusive end positions: A is [0, AEnd), B is
// [AEnd, BEnd), C is [BEnd, n).
type GapBoundaries struct {
	AEnd    int
	BEnd    int
	AMethod string
	BMethod string
}

func (t NaturalGapTiers) Boundaries(sortedScores []float64) GapBoundaries {
	n := len(sortedScores)
	if n == 0 {
		return GapBoundaries{AMethod: MethodFallback, BMethod: MethodFallback}
	}

	b := GapBoundaries{AMethod: MethodNaturalGap, BMethod: MethodNaturalGap}

	b.AEnd = largestGap(sortedScores, t.ARange, 1)
	if b.AEnd == 0 {
		b.AEnd = int(math.Round(t.AFallback * float64(n)))
		b.AMethod = MethodFallback
	}
	b.AEnd = min(max(b.AEnd, 1), n)

	b.BEnd = largestGap(sortedScores, t.BRange, b.AEnd+1)
	if b.BEnd == 0 {
		b.BEnd = int(math.Round(t.BFallback * float64(n)))
		b.BMethod = MethodFallback
	}
	b.BEnd = min(max(b.BEnd, b.AEnd), n)
	return b
}

// largestGap returns the cut size (items above the gap) of the largest
// positive gap whose cut size share lies in the range, or 0 when none does.
// Earlier gaps win ties.
func largestGap(scores []float64, share [2]float64, minSize int) int {
	n := len(scores)
	best, bestGap := 0, 0.0
	for i := 0; i+1 < n; i++ {
		size := i + 1
		frac := float64(size) / float64(n)
		if size < minSize || frac < share[0] || frac > share[1] {
			continue
		}
		gap := scores[i] - scores[i+1]
		if gap > bestGap {
			best, bestGap = size, gap
		}
	}
	return best
}

func (t NaturalGapTiers) Assign(sortedScores []float64) []string {
	b := t.Boundaries(sortedScores)
	out := make([]string, len(sortedScores))
	for i := range sortedScores {
		switch {
		case i < b.AEnd:
			out[i] = ClassA
		case i < b.BEnd:
			out[i] = ClassB
		default:
			out[i] = ClassC
		}
	}
	return out
}

// abcCandidate is one product with the derived sub-model values the
// criteria read from.
type abcCandidate struct {
	product       *domain.ProductProfitability
	share         float64
	risk          float64
	position      string
	positionValue float64
}

func abcCriteria() []Criterion[*abcCandidate] {
	return []Criterion[*abcCandidate]{
		{Name: "revenue", Weight: 25, Value: func(c *abcCandidate) float64 { return c.product.Revenue }, Normalize: LogMinMax},
		{Name: "profit", Weight: 15, Value: func(c *abcCandidate) float64 { return c.product.GrossProfit }, Normalize: LogMinMax},
		{Name: "margin", Weight: 10, Value: func(c *abcCandidate) float64 { return c.product.Margin }, Normalize: LogMinMax},
		{Name: "turnover", Weight: 15, Value: func(c *abcCandidate) float64 { return c.product.Turnover }, Normalize: LogMinMax},
		{Name: "velocity", Weight: 10, Value: func(c *abcCandidate) float64 { return c.product.DailyVelocity }, Normalize: LogMinMax},
		{Name: "capital_efficiency", Weight: 5, Value: func(c *abcCandidate) float64 { return c.product.CapitalEfficiency }, Normalize: LogMinMax},
		// margin stands in for growth; the sheets carry no period-over-period history
		{Name: "growth", Weight: 8, Value: func(c *abcCandidate) float64 { return c.product.Margin }, Normalize: LogMinMax},
		{Name: "market_position", Weight: 7, Value: func(c *abcCandidate) float64 { return c.positionValue }, Normalize: LogMinMax},
		{Name: "inverse_risk", Weight: 5, Value: func(c *abcCandidate) float64 { return 1 - c.risk }, Normalize: LogMinMax},
	}
}

// RiskFactor combines inventory coverage, margin, velocity and stock size
// into a 0-1 figure.
func RiskFactor(p *domain.ProductProfitability) float64 {
	risk := math.Min(p.DaysOfInventory/365, 1) * 0.4
	switch {
	case p.Margin < 15:
		risk += 0.3
	case p.Margin < 25:
		risk += 0.1
	}
	if p.DailyVelocity < slowVelocity {
		risk += 0.2
	}
	if p.Stock > 100 {
		risk += 0.1
	}
	return math.Min(risk, 1)
}

// MarketPosition places a product on the share/growth matrix. Share is high
// at or above an equal split of revenue; growth is high at or above the
// population median margin.
func MarketPosition(share, growth, fairShare, medianGrowth float64) string {
	highShare := share >= fairShare
	highGrowth := growth >= medianGrowth
	switch {
	case highShare && highGrowth:
		return PositionStar
	case highShare:
		return PositionCashCow
	case highGrowth:
		return PositionQuestionMark
	default:
		return PositionDog
	}
}

// ClassifyABC scores every product and splits the ranking into A, B and C.
func ClassifyABC(products map[string]*domain.ProductProfitability) domain.ABCAnalysis {
	analysis := domain.ABCAnalysis{
		Items:     []domain.ABCItem{},
		Summaries: make(map[string]domain.ABCClassSummary, 3),
	}

	names := sortedKeys(products)
	n := len(names)
	if n == 0 {
		for _, class := range []string{ClassA, ClassB, ClassC} {
			analysis.Summaries[class] = domain.ABCClassSummary{Class: class, Products: []string{}, Strategy: classStrategyLabel(class)}
		}
		return analysis
	}

	var totalRevenue float64
	margins := make([]float64, 0, n)
	for _, name := range names {
		totalRevenue += math.Max(products[name].Revenue, 0)
		margins = append(margins, products[name].Margin)
	}
	medianMargin := median(margins)
	fairShare := 1 / float64(n)

	candidates := make([]*abcCandidate, 0, n)
	for _, name := range names {
		p := products[name]
		c := &abcCandidate{
			product: p,
			share:   safeDiv(math.Max(p.Revenue, 0), totalRevenue),
			risk:    RiskFactor(p),
		}
		c.position = MarketPosition(c.share, p.Margin, fairShare, medianMargin)
		c.positionValue = positionValues[c.position]
		candidates = append(candidates, c)
	}

	tiers := DefaultNaturalGapTiers()
	scored := NewScorer(abcCriteria(), tiers, func(c *abcCandidate) string { return c.product.Product }).Score(candidates)

	sortedScores := make([]float64, len(scored))
	for i, s := range scored {
		sortedScores[i] = s.Score
	}
	bounds := tiers.Boundaries(sortedScores)
	analysis.Thresholds = domain.ABCThresholds{
		AEnd:     bounds.AEnd,
		BEnd:     bounds.BEnd,
		ABMethod: bounds.AMethod,
		BCMethod: bounds.BMethod,
	}
	if bounds.AEnd > 0 {
		analysis.Thresholds.AMinScore = sortedScores[bounds.AEnd-1]
	}
	if bounds.BEnd > bounds.AEnd {
		analysis.Thresholds.BMinScore = sortedScores[bounds.BEnd-1]
	}

	for _, s := range scored {
		c := s.Item
		p := c.product
		item := domain.ABCItem{
			Product:           p.Product,
			Category:          p.Category,
			SKUs:              p.SKUs,
			Revenue:           p.Revenue,
			GrossProfit:       p.GrossProfit,
			Margin:            p.Margin,
			Turnover:          p.Turnover,
			DailyVelocity:     p.DailyVelocity,
			CapitalEfficiency: p.CapitalEfficiency,
			Stock:             p.Stock,
			DaysOfInventory:   p.DaysOfInventory,
			RevenueShare:      roundFloat(c.share, 4),
			Criteria: domain.ABCCriteria{
				Revenue:           s.Normalized["revenue"],
				Profit:            s.Normalized["profit"],
				Margin:            s.Normalized["margin"],
				Turnover:          s.Normalized["turnover"],
				Velocity:          s.Normalized["velocity"],
				CapitalEfficiency: s.Normalized["capital_efficiency"],
				Growth:            s.Normalized["growth"],
				MarketPosition:    s.Normalized["market_position"],
				InverseRisk:       s.Normalized["inverse_risk"],
			},
			Score:               s.Score,
			Rank:                s.Rank,
			Percentile:          s.Percentile,
			Class:               s.Tier,
			RiskFactor:          roundFloat(c.risk, 4),
			MarketPosition:      c.position,
			MarketPositionValue: c.positionValue,
		}
		item.Strategy = buildStrategy(item, analysis.Thresholds.AMinScore)
		analysis.Items = append(analysis.Items, item)
	}

	analysis.TotalRevenue = round2(totalRevenue)
	analysis.Summaries = summarizeClasses(analysis.Items, totalRevenue)
	return analysis
}

func classStrategyLabel(class string) string {
	switch class {
	case ClassA:
		return "Protect & Grow"
	case ClassB:
		return "Optimize & Evaluate"
	default:
		return "Minimize & Decide"
	}
}

func buildStrategy(item domain.ABCItem, aMinScore float64) domain.ABCStrategy {
	st := domain.ABCStrategy{
		Category: item.Class,
		Label:    classStrategyLabel(item.Class),
		Alerts:   []string{},
	}

	switch item.Class {
	case ClassA:
		st.Actions = []string{
			"Keep safety stock and prioritize replenishment",
			"Negotiate volume terms with suppliers",
			"Feature in marketing and premium placement",
		}
		if item.Stock < lowStockUnits {
			st.Alerts = append(st.Alerts, fmt.Sprintf("Low stock: %.0f units left", item.Stock))
		}
		if item.RiskFactor > highRisk {
			st.Alerts = append(st.Alerts, fmt.Sprintf("High risk factor (%.2f)", item.RiskFactor))
		}
		if item.RevenueShare > concentrationShare {
			st.Alerts = append(st.Alerts, fmt.Sprintf("Revenue concentration: %.1f%% of total revenue", item.RevenueShare*100))
		}
	case ClassB:
		st.Actions = []string{
			"Tune pricing and promotions",
			"Review reorder quantities against velocity",
			"Track for promotion to class A",
		}
		if aMinScore > 0 && item.Score >= promotionScoreFactor*aMinScore {
			st.Alerts = append(st.Alerts, "Promotion candidate to class A")
		}
		if item.Stock < lowStockUnits {
			st.Alerts = append(st.Alerts, fmt.Sprintf("Low stock: %.0f units left", item.Stock))
		}
	default:
		st.Actions = []string{
			"Reduce reorder quantities",
			"Bundle or discount to free capital",
			"Evaluate discontinuation",
		}
		switch {
		case item.Stock > excessStockUnits && item.DailyVelocity < slowVelocity:
			st.Alerts = append(st.Alerts, "Liquidation candidate: slow-moving excess stock")
		case item.Stock > excessStockUnits:
			st.Alerts = append(st.Alerts, fmt.Sprintf("Excess stock: %.0f units", item.Stock))
		}
		if item.Margin >= nicheMargin {
			st.Alerts = append(st.Alerts, "Niche opportunity: high margin despite low volume")
		}
	}
	return st
}

func summarizeClasses(items []domain.ABCItem, totalRevenue float64) map[string]domain.ABCClassSummary {
	out := make(map[string]domain.ABCClassSummary, 3)
	for _, class := range []string{ClassA, ClassB, ClassC} {
		sum := domain.ABCClassSummary{Class: class, Products: []string{}, Strategy: classStrategyLabel(class)}
		var scoreTotal, riskTotal float64
		for _, item := range items {
			if item.Class != class {
				continue
			}
			if sum.Count == 0 || item.Score < sum.MinScore {
				sum.MinScore = item.Score
			}
			if sum.Count == 0 || item.Score > sum.MaxScore {
				sum.MaxScore = item.Score
			}
			sum.Count++
			sum.Revenue += item.Revenue
			scoreTotal += item.Score
			riskTotal += item.RiskFactor
			sum.Products = append(sum.Products, item.Product)
		}
		if sum.Count > 0 {
			sum.AvgScore = round2(scoreTotal / float64(sum.Count))
			sum.AvgRisk = roundFloat(riskTotal/float64(sum.Count), 4)
		}
		sum.Revenue = round2(sum.Revenue)
		sum.RevenueShare = round2(safeDiv(sum.Revenue, totalRevenue) * 100)
		out[class] = sum
	}
	return out
}
