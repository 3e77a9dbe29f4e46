package dashboard

import (
	"math"
	"strings"

	"github.com/andresuchdata/bizdash-go/internal/domain"
)

// LogisticsResult holds order metrics and their rollups.
type LogisticsResult struct {
	Orders     []domain.LogisticsOrder
	BySKU      map[string]*domain.LogisticsRollup
	ByProvider map[string]*domain.LogisticsRollup
}

type rollupBuilder struct {
	rollup        *domain.LogisticsRollup
	transit       []float64
	transitWeight []float64
}

func newRollupBuilder(key string) *rollupBuilder {
	return &rollupBuilder{rollup: &domain.LogisticsRollup{Key: key}}
}

func (b *rollupBuilder) add(o domain.LogisticsOrder) {
	r := b.rollup
	r.Orders = append(r.Orders, o)
	r.OrderCount++
	r.TotalValue += o.Value
	r.TotalFee += o.Fee
	r.TotalUnits += o.Units
	if o.HasTransit {
		r.TransitSamples++
		r.TotalTransitDays += o.TransitDays
		b.transit = append(b.transit, o.TransitDays)
		b.transitWeight = append(b.transitWeight, o.Value)
	}
}

func (b *rollupBuilder) finish() *domain.LogisticsRollup {
	r := b.rollup

	simple := mean(b.transit)
	var weighted, weight float64
	for i, days := range b.transit {
		weighted += days * b.transitWeight[i]
		weight += b.transitWeight[i]
	}
	avg := simple
	if weight > 0 {
		avg = weighted / weight
	}

	std := stdDev(b.transit)

	r.AvgTransitDays = round2(avg)
	r.SimpleAvgTransit = round2(simple)
	r.TransitStdDev = round2(std)
	r.TransitVariationPct = round2(safeDiv(std, simple) * 100)
	r.AvgValuePerOrder = round2(safeDiv(r.TotalValue, float64(r.OrderCount)))
	r.AvgFeePerOrder = round2(safeDiv(r.TotalFee, float64(r.OrderCount)))
	r.FeeToValueRatio = round2(safeDiv(r.TotalFee, r.TotalValue) * 100)
	r.TotalTransitDays = round2(r.TotalTransitDays)
	r.TotalValue = round2(r.TotalValue)
	r.TotalFee = round2(r.TotalFee)
	r.TotalUnits = round2(r.TotalUnits)
	return r
}

// OrderMetrics computes transit time and the two monetary figures of one
// purchase row. Negative transit collapses to 0.
func OrderMetrics(p domain.PurchaseRecord) domain.LogisticsOrder {
	o := domain.LogisticsOrder{
		Row:      p.Row,
		SKU:      p.SKU,
		Product:  p.Product,
		Provider: strings.TrimSpace(p.Provider),
		Units:    p.Quantity,
		Value:    round2(p.UnitCostForeign * p.ExchangeRate),
		Fee:      round2(p.UnitFeeForeign * p.ExchangeRate),
	}
	if p.HasPickup && p.HasDelivery {
		days := math.Round(p.DeliveryDate.Sub(p.PickupDate).Hours() / 24)
		o.TransitDays = math.Max(0, days)
		o.HasTransit = true
	}
	if o.Value > 0 {
		o.FeeToValueRatio = round2(o.Fee / o.Value * 100)
	}
	return o
}

// BuildLogistics considers only purchase rows carrying both an identifier
// and a logistics provider.
func BuildLogistics(purchases []domain.PurchaseRecord) LogisticsResult {
	bySKU := make(map[string]*rollupBuilder)
	byProvider := make(map[string]*rollupBuilder)
	var orders []domain.LogisticsOrder

	for _, p := range purchases {
		if p.SKU == "" || strings.TrimSpace(p.Provider) == "" {
			continue
		}
		o := OrderMetrics(p)
		orders = append(orders, o)

		sb, ok := bySKU[o.SKU]
		if !ok {
			sb = newRollupBuilder(o.SKU)
			bySKU[o.SKU] = sb
		}
		sb.add(o)

		pb, ok := byProvider[o.Provider]
		if !ok {
			pb = newRollupBuilder(o.Provider)
			byProvider[o.Provider] = pb
		}
		pb.add(o)
	}

	result := LogisticsResult{
		Orders:     orders,
		BySKU:      make(map[string]*domain.LogisticsRollup, len(bySKU)),
		ByProvider: make(map[string]*domain.LogisticsRollup, len(byProvider)),
	}
	for k, b := range bySKU {
		result.BySKU[k] = b.finish()
	}
	for k, b := range byProvider {
		result.ByProvider[k] = b.finish()
	}
	return result
}
