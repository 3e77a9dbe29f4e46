package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/domain"
)

// Purchase category buckets.
const (
	CategoryAccessories = "ACCESORIOS"
	CategoryClothing    = "ROPA"
	CategoryTechnology  = "TECNOLOGIA"
	CategorySupplements = "SUPLEMENTOS"
	CategoryOther       = "OTROS"
)

var purchaseCategories = []string{CategoryAccessories, CategoryClothing, CategoryTechnology, CategorySupplements, CategoryOther}

var investmentTypes = map[string]string{
	CategoryClothing:    "Inventario - Ropa",
	CategoryAccessories: "Inventario - Accesorios",
	CategorySupplements: "Inventario - Suplementos",
	CategoryTechnology:  "Inventario - Tecnología",
}

const (
	investmentOther      = "Otros"
	uncategorizedLabel   = "Sin categoría"
	unnamedProduct       = "Sin nombre"
	unknownSKU           = "Sin SKU"
	expenseKindPrincipal = "principal"
)

// SalesByChannel sums net line totals per sales channel.
func SalesByChannel(sales []domain.SaleRecord) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range sales {
		if s.Channel == "" {
			continue
		}
		out[s.Channel] += s.LineTotal
	}
	for k, v := range out {
		out[k] = round2(v)
	}
	return out
}

// ExpenseDetails groups principal expense lines by cost center and category.
func ExpenseDetails(expenses []domain.ExpenseRecord) map[string]map[string][]domain.ExpenseDetailItem {
	out := map[string]map[string][]domain.ExpenseDetailItem{
		domain.CostCenterSales:        {},
		domain.CostCenterDistribution: {},
		domain.CostCenterAdmin:        {},
	}
	for _, e := range expenses {
		if !e.Principal() || e.Amount <= 0 {
			continue
		}
		byCategory, ok := out[e.CostCenter]
		if !ok {
			continue
		}
		category := e.Category
		if category == "" {
			category = uncategorizedLabel
		}
		detail := e.Detail
		if detail == "" {
			detail = e.Concept
		}
		if detail == "" {
			detail = fmt.Sprintf("Gasto %s", e.CostCenter)
		}
		byCategory[category] = append(byCategory[category], domain.ExpenseDetailItem{
			Detail: detail,
			Amount: round2(e.Amount),
			Row:    e.Row,
			Kind:   expenseKindPrincipal,
		})
	}
	return out
}

// RealInvestment is the categorized purchase spend.
type RealInvestment struct {
	Total      float64
	ByCategory map[string]float64
	Items      map[string][]domain.InvestmentItem
}

// BuildRealInvestment counts purchases with a category and a positive local
// total cost.
func BuildRealInvestment(purchases []domain.PurchaseRecord) RealInvestment {
	ri := RealInvestment{
		ByCategory: make(map[string]float64),
		Items:      make(map[string][]domain.InvestmentItem),
	}
	for _, p := range purchases {
		category := strings.ToUpper(strings.TrimSpace(p.Category))
		if p.TotalCostLocal <= 0 || category == "" {
			continue
		}
		kind, ok := investmentTypes[category]
		if !ok {
			kind = investmentOther
		}

		ri.Total += p.TotalCostLocal
		ri.ByCategory[kind] += p.TotalCostLocal
		ri.Items[kind] = append(ri.Items[kind], domain.InvestmentItem{
			Product:        orDefault(p.Product, unnamedProduct),
			SKU:            orDefault(p.SKU, unknownSKU),
			UnitCost:       p.UnitCostLocal,
			Quantity:       p.Quantity,
			ComputedTotal:  round2(p.UnitCostLocal * p.Quantity),
			TotalCostLocal: p.TotalCostLocal,
			Date:           formatRecordDate(p.HasDate, p.Date),
			Row:            p.Row,
		})
	}

	for kind, items := range ri.Items {
		sort.SliceStable(items, func(i, j int) bool { return items[i].TotalCostLocal > items[j].TotalCostLocal })
		ri.ByCategory[kind] = round2(ri.ByCategory[kind])
	}
	ri.Total = round2(ri.Total)
	return ri
}

// PurchaseBreakdown groups purchase spend by category and month.
type PurchaseBreakdown struct {
	Categories map[string]map[string]*domain.PurchaseMonthGroup
	ByMonth    map[string]*domain.PurchaseMonthTotals
}

func BuildPurchaseBreakdown(purchases []domain.PurchaseRecord) PurchaseBreakdown {
	pb := PurchaseBreakdown{
		Categories: make(map[string]map[string]*domain.PurchaseMonthGroup, len(purchaseCategories)),
		ByMonth:    make(map[string]*domain.PurchaseMonthTotals),
	}
	for _, c := range purchaseCategories {
		pb.Categories[c] = make(map[string]*domain.PurchaseMonthGroup)
	}

	for _, p := range purchases {
		if p.TotalCostLocal <= 0 {
			continue
		}
		category := strings.ToUpper(strings.TrimSpace(p.Category))
		if _, ok := pb.Categories[category]; !ok {
			category = CategoryOther
		}

		// an undated purchase still lands in SIN_FECHA
		monthKey := p.Month.String()
		monthName := p.Month.Label()

		group, ok := pb.Categories[category][monthKey]
		if !ok {
			group = &domain.PurchaseMonthGroup{MonthName: monthName, Items: []domain.PurchaseItem{}}
			pb.Categories[category][monthKey] = group
		}
		group.Items = append(group.Items, domain.PurchaseItem{
			Product: orDefault(p.Product, unnamedProduct),
			Cost:    p.TotalCostLocal,
			Date:    formatRecordDate(p.HasDate, p.Date),
			Row:     p.Row,
		})
		group.Total = round2(group.Total + p.TotalCostLocal)

		totals, ok := pb.ByMonth[monthKey]
		if !ok {
			totals = &domain.PurchaseMonthTotals{MonthName: monthName, Categories: make(map[string]float64)}
			pb.ByMonth[monthKey] = totals
		}
		totals.Categories[category] = round2(totals.Categories[category] + p.TotalCostLocal)
		totals.Total = round2(totals.Total + p.TotalCostLocal)
	}
	return pb
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func formatRecordDate(ok bool, t time.Time) string {
	if !ok {
		return ""
	}
	return t.Format("01/02/2006")
}
