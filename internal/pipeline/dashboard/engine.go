package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Tables are the raw ranges of the four sources. The first row of each table
// is the header.
type Tables struct {
	Sales     [][]any
	Expenses  [][]any
	Purchases [][]any
	Inventory [][]any
}

// Rows returns the number of data rows per source.
func (t Tables) Rows() map[string]int {
	return map[string]int{
		SourceSales:     dataRows(t.Sales),
		SourceExpenses:  dataRows(t.Expenses),
		SourcePurchases: dataRows(t.Purchases),
		SourceInventory: dataRows(t.Inventory),
	}
}

type Options struct {
	Columns       config.ColumnsConfig
	Window        DateWindow
	ReferenceDate time.Time
}

// Engine turns raw tables into one dashboard report. An Engine holds no state
// between Build calls.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	if opts.Columns == (config.ColumnsConfig{}) {
		opts.Columns = config.DefaultColumns()
	}
	if opts.Window == (DateWindow{}) {
		opts.Window = DefaultDateWindow()
	}
	return &Engine{opts: opts}
}

// Build runs the full pipeline with a fresh diagnostics collector.
func (e *Engine) Build(tables Tables) (*domain.DashboardReport, error) {
	return e.BuildWithDiagnostics(tables, NewDiagnostics())
}

// BuildWithDiagnostics runs the pipeline appending to diag, which may already
// carry source availability entries from the gather step.
func (e *Engine) BuildWithDiagnostics(tables Tables, diag *Diagnostics) (*domain.DashboardReport, error) {
	if err := e.opts.Columns.Validate(); err != nil {
		return nil, err
	}
	// callers resolve the date; the engine never reads the clock
	if e.opts.ReferenceDate.IsZero() {
		return nil, fmt.Errorf("reference date is required: %w", domain.ErrInvalidConfig)
	}
	if diag == nil {
		diag = NewDiagnostics()
	}

	norm := NewNormalizer(e.opts.Columns, e.opts.Window, diag)
	sales := normalizeAll(SourceSales, tables.Sales, diag, norm.Sale)
	expenses := normalizeAll(SourceExpenses, tables.Expenses, diag, norm.Expense)
	purchases := normalizeAll(SourcePurchases, tables.Purchases, diag, norm.Purchase)
	inventory := normalizeAll(SourceInventory, tables.Inventory, diag, norm.Inventory)

	// 1. monthly series and scalar totals
	buckets := NewBucketizer()
	var grossRevenue, discounts float64
	for _, s := range sales {
		grossRevenue += s.SalePrice
		discounts += s.Discount
		if s.HasDate {
			buckets.Add(FamilyRevenue, s.Month, s.LineTotal)
		}
	}

	var cov, gvd, gad, totalExpenses float64
	for _, ex := range expenses {
		if !ex.Principal() {
			continue
		}
		totalExpenses += ex.Amount
		switch ex.CostCenter {
		case domain.CostCenterSales:
			cov += ex.Amount
		case domain.CostCenterDistribution:
			gvd += ex.Amount
		case domain.CostCenterAdmin:
			gad += ex.Amount
		}
		if ex.Amount <= 0 || !ex.HasDate {
			continue
		}
		buckets.Add(FamilyCost, ex.Month, ex.Amount)
		switch ex.CostCenter {
		case domain.CostCenterDistribution:
			buckets.Add(FamilyDistribution, ex.Month, ex.Amount)
		case domain.CostCenterAdmin:
			buckets.Add(FamilyAdmin, ex.Month, ex.Amount)
		}
	}

	var totalInvestment float64
	for _, p := range purchases {
		totalInvestment += p.TotalCostLocal
		if p.TotalCostLocal > 0 && p.HasDate {
			buckets.Add(FamilyInvestment, p.Month, p.TotalCostLocal)
		}
	}

	realInvestment := BuildRealInvestment(purchases)

	// 2. P&L cascade
	wf := ComputeWaterfall(WaterfallInput{
		GrossRevenue:        grossRevenue,
		Discounts:           discounts,
		CostOfSales:         cov,
		DistributionExpense: gvd,
		AdminExpense:        gad,
		TotalExpenses:       totalExpenses,
		Investment:          totalInvestment,
		RealInvestment:      realInvestment.Total,
	})

	// 3. profitability and rotation
	joined := NewJoiner(e.opts.ReferenceDate).Join(sales, inventory, purchases)

	// 4. logistics and provider ranking
	logistics := BuildLogistics(purchases)
	ranking := RankProviders(logistics.ByProvider)

	// 5. ABC classification
	abc := ClassifyABC(joined.ByProduct)

	purchaseBreakdown := BuildPurchaseBreakdown(purchases)

	report := &domain.DashboardReport{
		GrossRevenue:        wf.GrossRevenue,
		TotalDiscounts:      wf.Discounts,
		NetRevenue:          wf.NetRevenue,
		CostOfSales:         wf.CostOfSales,
		GrossProfit:         wf.GrossProfit,
		DistributionExpense: wf.DistributionExpense,
		AdminExpense:        wf.AdminExpense,
		TotalExpenses:       wf.TotalExpenses,
		OperatingProfit:     wf.OperatingProfit,
		TotalGVD:            wf.DistributionExpense,
		TotalGAD:            wf.AdminExpense,
		TotalInvestment:     wf.Investment,
		ROI:                 wf.ROI,
		GrossMargin:         wf.GrossMargin,
		OperatingMargin:     wf.OperatingMargin,

		MonthlyChartData: buckets.Merge(),
		SalesByChannel:   SalesByChannel(sales),
		ExpenseDetails:   ExpenseDetails(expenses),

		PurchaseCategories: purchaseBreakdown.Categories,
		PurchasesByMonth:   purchaseBreakdown.ByMonth,

		TotalRealInvestment:  wf.RealInvestment,
		InvestmentByCategory: realInvestment.ByCategory,
		RealInvestmentData:   realInvestment.Items,
		RealROI:              wf.RealROI,

		SKUProfitability:     joined.BySKU,
		ProductProfitability: joined.ByProduct,
		InventoryBySKU:       joined.InventoryBySKU,
		InventoryByProduct:   joined.InventoryByProduct,

		SKULogistics:        logistics.BySKU,
		ProviderPerformance: logistics.ByProvider,
		ProviderEfficiency:  ranking.ByProvider(),
		ProviderRanking:     ranking.Names(),
		OptimalProvider:     ranking.Optimal,

		ABCAnalysis: abc,

		ReferenceDate: e.opts.ReferenceDate.Format("2006-01-02"),
	}

	report.DebugInfo = buildDebugInfo(tables.Rows(), sales, buckets, purchaseBreakdown, diag)

	log.Info().
		Int("sales", len(sales)).
		Int("expenses", len(expenses)).
		Int("purchases", len(purchases)).
		Int("inventory", len(inventory)).
		Int("diagnostics", len(report.DebugInfo.Diagnostics)).
		Msg("dashboard: report built")

	return report, nil
}

// normalizeAll drops the header row and parses every data row. Rows the
// parser rejects are skipped with a diagnostic.
func normalizeAll[T any](source string, table [][]any, diag *Diagnostics, parse func(int, []any) (T, error)) []T {
	if len(table) < 2 {
		return []T{}
	}
	out := make([]T, 0, len(table)-1)
	for i, row := range table[1:] {
		rec, err := parse(i, row)
		switch {
		case err == nil:
			out = append(out, rec)
		case errors.Is(err, domain.ErrBlankRow):
			diag.Skip(source, i+2, ReasonBlankRow)
		case errors.Is(err, domain.ErrMissingField):
			diag.Skip(source, i+2, ReasonMissingSKU)
		default:
			diag.Skip(source, i+2, err.Error())
		}
	}
	return out
}

func dataRows(table [][]any) int {
	if len(table) < 2 {
		return 0
	}
	return len(table) - 1
}

// buildDebugInfo reports totals as raw data rows per source, blank and
// skipped rows included.
func buildDebugInfo(
	rows map[string]int,
	sales []domain.SaleRecord,
	buckets *Bucketizer,
	pb PurchaseBreakdown,
	diag *Diagnostics,
) domain.DebugInfo {
	categories := make(map[string]int, len(pb.Categories))
	for c, months := range pb.Categories {
		categories[c] = len(months)
	}

	investmentMonths := buckets.Keys(FamilyInvestment)

	return domain.DebugInfo{
		TotalSales:           rows[SourceSales],
		TotalExpenses:        rows[SourceExpenses],
		TotalPurchases:       rows[SourcePurchases],
		TotalInventory:       rows[SourceInventory],
		MonthsWithInvestment: investmentMonths,
		MonthsWithGVD:        buckets.Keys(FamilyDistribution),
		MonthsWithGAD:        buckets.Keys(FamilyAdmin),
		InvestmentMonthly:    domain.InvestmentMonthly{MonthsWithPurchases: len(investmentMonths)},
		Categories:           categories,
		SaleCategories:       distinct(lo.Map(sales, func(s domain.SaleRecord, _ int) string { return s.Category })),
		Couriers:             distinct(lo.Map(sales, func(s domain.SaleRecord, _ int) string { return s.Courier })),
		Channels:             distinct(lo.Map(sales, func(s domain.SaleRecord, _ int) string { return s.Channel })),
		SkippedRows:          diag.Skipped(),
		UnavailableSources:   diag.UnavailableSources(),
		Diagnostics:          diag.Entries(),
	}
}

// distinct returns the sorted non-empty unique values.
func distinct(values []string) []string {
	out := lo.Uniq(lo.Filter(values, func(v string, _ int) bool { return strings.TrimSpace(v) != "" }))
	sort.Strings(out)
	return out
}

// ParseReferenceDate reads an optional YYYY-MM-DD override.
func ParseReferenceDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("reference date %q: %w", s, domain.ErrInvalidConfig)
	}
	return t.UTC(), nil
}
