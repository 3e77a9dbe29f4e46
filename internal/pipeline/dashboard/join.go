package dashboard

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/samber/lo"
)

// JoinResult holds the per-identifier and per-product projections.
type JoinResult struct {
	BySKU              map[string]*domain.SKUProfitability
	ByProduct          map[string]*domain.ProductProfitability
	InventoryBySKU     map[string]*domain.InventoryPosition
	InventoryByProduct map[string]*domain.InventoryPosition
}

// skuAccumulator carries unrounded running sums for one identifier.
type skuAccumulator struct {
	sku        string
	product    string
	category   string
	units      float64
	revenue    float64
	lineProfit float64
	saleCount  int

	hasInventory bool
	stock        float64
	invValue     float64
	invUnitCost  float64
	invSold      float64
	invSalePrice float64
	arrival      time.Time
	hasArrival   bool

	purchaseQty   float64
	purchaseCost  float64
	purchaseSpend float64
	firstPurchase time.Time
	hasPurchase   bool

	// derived
	unitCost   float64
	profit     float64
	invested   float64
	daysOnHand float64
	velocity   float64
}

// Joiner joins sales, inventory and purchases by identifier. The reference
// date stands in for "today" when aging unsold stock.
type Joiner struct {
	reference time.Time
}

func NewJoiner(reference time.Time) *Joiner {
	return &Joiner{reference: reference}
}

func (j *Joiner) Join(sales []domain.SaleRecord, inventory []domain.InventoryRecord, purchases []domain.PurchaseRecord) JoinResult {
	accs := make(map[string]*skuAccumulator)
	get := func(sku string) *skuAccumulator {
		acc, ok := accs[sku]
		if !ok {
			acc = &skuAccumulator{sku: sku}
			accs[sku] = acc
		}
		return acc
	}

	for _, s := range sales {
		key := saleKey(s)
		if key == "" {
			continue
		}
		acc := get(key)
		acc.units += s.Quantity
		acc.revenue += s.LineTotal
		acc.lineProfit += s.LineProfit
		acc.saleCount++
		fillIdentity(acc, s.Product, s.Category)
	}

	for _, inv := range inventory {
		acc := get(inv.SKU)
		acc.hasInventory = true
		acc.stock += inv.Stock
		acc.invValue += inv.InventoryValue
		acc.invSold += inv.SoldToDate
		if inv.UnitCost > 0 {
			acc.invUnitCost = inv.UnitCost
		}
		if inv.SalePrice > 0 {
			acc.invSalePrice = inv.SalePrice
		}
		if inv.HasArrival && (!acc.hasArrival || inv.ArrivalDate.Before(acc.arrival)) {
			acc.arrival = inv.ArrivalDate
			acc.hasArrival = true
		}
		fillIdentity(acc, inv.Product, inv.Category)
	}

	for _, p := range purchases {
		if p.SKU == "" {
			continue
		}
		acc := get(p.SKU)
		unit := p.UnitCostLocal
		if unit == 0 && p.Quantity > 0 {
			unit = p.TotalCostLocal / p.Quantity
		}
		spend := p.TotalCostLocal
		if spend == 0 {
			spend = unit * p.Quantity
		}
		if p.Quantity > 0 && unit > 0 {
			acc.purchaseQty += p.Quantity
			acc.purchaseCost += unit * p.Quantity
		}
		acc.purchaseSpend += spend
		if p.HasDate && (!acc.hasPurchase || p.Date.Before(acc.firstPurchase)) {
			acc.firstPurchase = p.Date
			acc.hasPurchase = true
		}
		fillIdentity(acc, p.Product, p.Category)
	}

	result := JoinResult{
		BySKU:              make(map[string]*domain.SKUProfitability, len(accs)),
		InventoryBySKU:     make(map[string]*domain.InventoryPosition),
		InventoryByProduct: make(map[string]*domain.InventoryPosition),
	}

	ordered := make([]*skuAccumulator, 0, len(accs))
	for _, key := range sortedKeys(accs) {
		acc := accs[key]
		j.derive(acc)
		ordered = append(ordered, acc)
		result.BySKU[key] = j.skuRecord(acc)
	}

	result.ByProduct = j.groupByProduct(ordered)
	j.inventoryPositions(ordered, result)
	return result
}

func (j *Joiner) derive(acc *skuAccumulator) {
	// 1. Unit cost: purchase history, then inventory sheet, else zero
	switch {
	case acc.purchaseQty > 0:
		acc.unitCost = acc.purchaseCost / acc.purchaseQty
	case acc.invUnitCost > 0:
		acc.unitCost = acc.invUnitCost
	}

	// 2. Profit from units sold at the resolved cost
	acc.profit = acc.revenue - acc.units*acc.unitCost

	// 3. Capital tied up in the identifier
	acc.invested = acc.purchaseSpend
	if acc.invested == 0 {
		acc.invested = (acc.stock + acc.units) * acc.unitCost
	}

	// 4. Days since the stock first became available
	if first, ok := acc.firstSeen(); ok && !j.reference.IsZero() {
		acc.daysOnHand = math.Max(1, math.Floor(j.reference.Sub(first).Hours()/24))
	}
	acc.velocity = safeDiv(acc.units, acc.daysOnHand)
}

func (acc *skuAccumulator) firstSeen() (time.Time, bool) {
	switch {
	case acc.hasPurchase && acc.hasArrival:
		if acc.arrival.Before(acc.firstPurchase) {
			return acc.arrival, true
		}
		return acc.firstPurchase, true
	case acc.hasPurchase:
		return acc.firstPurchase, true
	case acc.hasArrival:
		return acc.arrival, true
	}
	return time.Time{}, false
}

func (j *Joiner) skuRecord(acc *skuAccumulator) *domain.SKUProfitability {
	avgPrice := safeDiv(acc.revenue, acc.units)
	unitProfit := 0.0
	if acc.units > 0 {
		unitProfit = avgPrice - acc.unitCost
	}

	rec := &domain.SKUProfitability{
		SKU:               acc.sku,
		Product:           acc.product,
		Category:          acc.category,
		UnitsSold:         round2(acc.units),
		Revenue:           round2(acc.revenue),
		GrossProfit:       round2(acc.profit),
		Margin:            round2(marginPct(acc.profit, acc.revenue)),
		AvgSalePrice:      round2(avgPrice),
		UnitCost:          round2(acc.unitCost),
		UnitProfit:        round2(unitProfit),
		SalesLineProfit:   round2(acc.lineProfit),
		Stock:             round2(acc.stock),
		InventoryValue:    round2(acc.invValue),
		InvestedCapital:   round2(acc.invested),
		DaysOnHand:        acc.daysOnHand,
		DailyVelocity:     roundFloat(acc.velocity, 4),
		DaysOfInventory:   round2(daysOfInventory(acc.stock, acc.velocity, acc.daysOnHand)),
		Turnover:          round2(turnover(acc.units, acc.stock)),
		SellThrough:       round2(sellThrough(acc.units, acc.stock)),
		CapitalEfficiency: round2(safeDiv(acc.profit, acc.invested)),
		SaleCount:         acc.saleCount,
	}
	if acc.hasPurchase {
		rec.FirstPurchase = acc.firstPurchase.Format("2006-01-02")
	}
	return rec
}

// groupByProduct folds identifiers sharing a product name. The name index is
// rebuilt on every call and dropped once the records are assembled.
func (j *Joiner) groupByProduct(accs []*skuAccumulator) map[string]*domain.ProductProfitability {
	index := lo.GroupBy(accs, func(acc *skuAccumulator) string { return productKey(acc) })

	out := make(map[string]*domain.ProductProfitability, len(index))
	for name, members := range index {
		var units, revenue, profit, stock, invValue, invested, velocity float64
		var maxDaysOnHand, topRevenue float64
		var priceSamples, costSamples weightedSamples
		var topSKU, category string

		skus := make([]string, 0, len(members))
		for i, m := range members {
			skus = append(skus, m.sku)
			units += m.units
			revenue += m.revenue
			profit += m.profit
			stock += m.stock
			invValue += m.invValue
			invested += m.invested
			velocity += m.velocity
			maxDaysOnHand = math.Max(maxDaysOnHand, m.daysOnHand)

			// each unit sold contributes one price and one cost sample
			priceSamples.add(safeDiv(m.revenue, m.units), m.units)
			costSamples.add(m.unitCost, m.units)

			if i == 0 || m.revenue > topRevenue {
				topRevenue = m.revenue
				topSKU = m.sku
			}
			if category == "" {
				category = m.category
			}
		}
		sort.Strings(skus)

		avgPrice := priceSamples.mean()
		avgCost := costSamples.mean()
		if units == 0 {
			avgCost = mean(lo.FilterMap(members, func(m *skuAccumulator, _ int) (float64, bool) {
				return m.unitCost, m.unitCost > 0
			}))
		}
		unitProfit := 0.0
		if units > 0 {
			unitProfit = avgPrice - avgCost
		}

		diversity := 0.0
		if revenue > 0 {
			diversity = 1 - topRevenue/revenue
		}

		out[name] = &domain.ProductProfitability{
			Product:           name,
			Category:          category,
			SKUs:              skus,
			UnitsSold:         round2(units),
			Revenue:           round2(revenue),
			GrossProfit:       round2(profit),
			Margin:            round2(marginPct(profit, revenue)),
			AvgSalePrice:      round2(avgPrice),
			AvgUnitCost:       round2(avgCost),
			UnitProfit:        round2(unitProfit),
			Stock:             round2(stock),
			InventoryValue:    round2(invValue),
			InvestedCapital:   round2(invested),
			DailyVelocity:     roundFloat(velocity, 4),
			DaysOfInventory:   round2(daysOfInventory(stock, velocity, maxDaysOnHand)),
			Turnover:          round2(turnover(units, stock)),
			SellThrough:       round2(sellThrough(units, stock)),
			CapitalEfficiency: round2(safeDiv(profit, invested)),
			SKUDiversity:      roundFloat(diversity, 4),
			TopSKU:            topSKU,
		}
	}
	return out
}

func (j *Joiner) inventoryPositions(accs []*skuAccumulator, result JoinResult) {
	for _, acc := range accs {
		if !acc.hasInventory {
			continue
		}
		pos := &domain.InventoryPosition{
			Key:              acc.sku,
			Product:          acc.product,
			Category:         acc.category,
			Stock:            round2(acc.stock),
			SoldToDate:       round2(acc.invSold),
			InventoryValue:   round2(acc.invValue),
			UnitCost:         round2(acc.invUnitCost),
			SalePrice:        round2(acc.invSalePrice),
			PotentialRevenue: round2(acc.stock * acc.invSalePrice),
			SKUCount:         1,
		}
		if acc.hasArrival {
			pos.ArrivalDate = acc.arrival.Format("2006-01-02")
		}
		result.InventoryBySKU[acc.sku] = pos

		name := productKey(acc)
		group, ok := result.InventoryByProduct[name]
		if !ok {
			group = &domain.InventoryPosition{Key: name, Product: name, Category: acc.category}
			result.InventoryByProduct[name] = group
		}
		group.Stock = round2(group.Stock + acc.stock)
		group.SoldToDate = round2(group.SoldToDate + acc.invSold)
		group.InventoryValue = round2(group.InventoryValue + acc.invValue)
		group.PotentialRevenue = round2(group.PotentialRevenue + acc.stock*acc.invSalePrice)
		group.SKUCount++
		// per-unit figures are stock-weighted across identifiers
		group.UnitCost = round2(safeDiv(group.InventoryValue, group.Stock))
		group.SalePrice = round2(safeDiv(group.PotentialRevenue, group.Stock))
		if pos.ArrivalDate != "" && (group.ArrivalDate == "" || pos.ArrivalDate < group.ArrivalDate) {
			group.ArrivalDate = pos.ArrivalDate
		}
	}
}

type weightedSamples struct {
	sum    float64
	weight float64
}

func (w *weightedSamples) add(value, weight float64) {
	if weight <= 0 {
		return
	}
	w.sum += value * weight
	w.weight += weight
}

func (w weightedSamples) mean() float64 {
	return safeDiv(w.sum, w.weight)
}

func fillIdentity(acc *skuAccumulator, product, category string) {
	if acc.product == "" {
		acc.product = strings.TrimSpace(product)
	}
	if acc.category == "" {
		acc.category = strings.TrimSpace(category)
	}
}

// saleKey falls back to the product name for rows without an identifier.
func saleKey(s domain.SaleRecord) string {
	if s.SKU != "" {
		return s.SKU
	}
	return normalizeSKU(s.Product)
}

func productKey(acc *skuAccumulator) string {
	if acc.product != "" {
		return acc.product
	}
	return acc.sku
}

func marginPct(profit, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return profit / revenue * 100
}

// turnover relates units sold to the average of opening and closing stock.
func turnover(units, stock float64) float64 {
	return safeDiv(units, stock+units/2)
}

func sellThrough(units, stock float64) float64 {
	return safeDiv(units, units+stock) * 100
}

// daysOfInventory falls back to the age of the stock when nothing sells.
func daysOfInventory(stock, velocity, daysOnHand float64) float64 {
	if velocity > 0 {
		return stock / velocity
	}
	if stock > 0 {
		return daysOnHand
	}
	return 0
}
