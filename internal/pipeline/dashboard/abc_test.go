package dashboard

import (
	"fmt"
	"testing"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productPopulation(n int) map[string]*domain.ProductProfitability {
	out := make(map[string]*domain.ProductProfitability, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Producto %02d", i)
		// skewed revenue so a few products dominate
		revenue := float64((i*i*37)%997 + 10*(n-i))
		out[name] = &domain.ProductProfitability{
			Product:           name,
			SKUs:              []string{fmt.Sprintf("SKU-%02d", i)},
			Revenue:           revenue,
			GrossProfit:       revenue * float64(10+i%5*10) / 100,
			Margin:            float64(10 + i%5*10),
			Turnover:          float64(i%7) / 3,
			DailyVelocity:     float64(i%4) / 10,
			CapitalEfficiency: float64(i%3) / 2,
			Stock:             float64((i * 13) % 120),
			DaysOfInventory:   float64((i * 29) % 400),
		}
	}
	return out
}

func TestClassifyABC_PartitionsPopulation(t *testing.T) {
	for n := 1; n <= 25; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			analysis := ClassifyABC(productPopulation(n))
			require.Len(t, analysis.Items, n)

			order := map[string]int{ClassA: 0, ClassB: 1, ClassC: 2}
			seen := make(map[string]bool, n)
			prev := 0
			for i, item := range analysis.Items {
				rank, ok := order[item.Class]
				require.True(t, ok, "unknown class %q", item.Class)
				assert.GreaterOrEqual(t, rank, prev, "classes must be rank-contiguous")
				prev = rank

				assert.Equal(t, i+1, item.Rank)
				assert.False(t, seen[item.Product], "duplicate %s", item.Product)
				seen[item.Product] = true
				if i > 0 {
					assert.LessOrEqual(t, item.Score, analysis.Items[i-1].Score)
				}
			}

			total := 0
			for _, class := range []string{ClassA, ClassB, ClassC} {
				summary, ok := analysis.Summaries[class]
				require.True(t, ok)
				total += summary.Count
			}
			assert.Equal(t, n, total)
			assert.Equal(t, ClassA, analysis.Items[0].Class)
		})
	}
}

func TestClassifyABC_Empty(t *testing.T) {
	analysis := ClassifyABC(nil)
	assert.NotNil(t, analysis.Items)
	assert.Empty(t, analysis.Items)
	assert.Len(t, analysis.Summaries, 3)
}

func TestClassifyABC_ItemsCarryStrategy(t *testing.T) {
	analysis := ClassifyABC(productPopulation(12))
	for _, item := range analysis.Items {
		assert.Equal(t, item.Class, item.Strategy.Category)
		assert.NotEmpty(t, item.Strategy.Label)
		assert.NotEmpty(t, item.Strategy.Actions)
		assert.NotNil(t, item.Strategy.Alerts)
		assert.GreaterOrEqual(t, item.Score, 0.0)
		assert.LessOrEqual(t, item.Score, 100.0)
		assert.GreaterOrEqual(t, item.RiskFactor, 0.0)
		assert.LessOrEqual(t, item.RiskFactor, 1.0)
	}
}

func TestNaturalGapTiers_Boundaries(t *testing.T) {
	tiers := DefaultNaturalGapTiers()

	t.Run("natural gaps", func(t *testing.T) {
		b := tiers.Boundaries([]float64{90, 88, 86, 50, 48, 46, 44, 10, 8, 6})
		assert.Equal(t, 3, b.AEnd)
		assert.Equal(t, 7, b.BEnd)
		assert.Equal(t, MethodNaturalGap, b.AMethod)
		assert.Equal(t, MethodNaturalGap, b.BMethod)
	})

	t.Run("flat scores fall back", func(t *testing.T) {
		scores := make([]float64, 10)
		for i := range scores {
			scores[i] = 50
		}
		b := tiers.Boundaries(scores)
		assert.Equal(t, 2, b.AEnd)
		assert.Equal(t, 6, b.BEnd)
		assert.Equal(t, MethodFallback, b.AMethod)
		assert.Equal(t, MethodFallback, b.BMethod)
	})

	t.Run("single item is class A", func(t *testing.T) {
		assert.Equal(t, []string{ClassA}, tiers.Assign([]float64{42}))
	})
}

func TestRiskFactor(t *testing.T) {
	tests := []struct {
		name string
		p    domain.ProductProfitability
		want float64
	}{
		{"healthy", domain.ProductProfitability{Margin: 50, DailyVelocity: 1, Stock: 5}, 0},
		{"every penalty caps at one", domain.ProductProfitability{DaysOfInventory: 730, Margin: 10, DailyVelocity: 0.01, Stock: 200}, 1},
		{"half year coverage and thin margin", domain.ProductProfitability{DaysOfInventory: 182.5, Margin: 20, DailyVelocity: 1}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RiskFactor(&tt.p), 1e-9)
		})
	}
}

func TestMarketPosition(t *testing.T) {
	assert.Equal(t, PositionStar, MarketPosition(0.5, 40, 0.25, 30))
	assert.Equal(t, PositionCashCow, MarketPosition(0.5, 20, 0.25, 30))
	assert.Equal(t, PositionQuestionMark, MarketPosition(0.1, 40, 0.25, 30))
	assert.Equal(t, PositionDog, MarketPosition(0.1, 20, 0.25, 30))
}

func TestBuildStrategy_Alerts(t *testing.T) {
	a := buildStrategy(domain.ABCItem{Class: ClassA, Stock: 3, RiskFactor: 0.7, RevenueShare: 0.4}, 80)
	assert.Len(t, a.Alerts, 3)

	b := buildStrategy(domain.ABCItem{Class: ClassB, Score: 75, Stock: 50}, 80)
	assert.Equal(t, []string{"Promotion candidate to class A"}, b.Alerts)

	c := buildStrategy(domain.ABCItem{Class: ClassC, Stock: 60, DailyVelocity: 0.01, Margin: 45}, 80)
	assert.Equal(t, []string{
		"Liquidation candidate: slow-moving excess stock",
		"Niche opportunity: high margin despite low volume",
	}, c.Alerts)
}
