package dashboard

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(Options{
		Columns:       config.DefaultColumns(),
		Window:        DefaultDateWindow(),
		ReferenceDate: mustDate("2024-06-30"),
	})
}

func TestEngine_GrossAndNetRevenue(t *testing.T) {
	report, err := testEngine().Build(Tables{
		Sales: [][]any{
			header(18),
			saleRow("01/10/2024", "POL-01", "Polo", "100", "0"),
			saleRow("01/12/2024", "POL-01", "Polo", "200", "-20"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 300.0, report.GrossRevenue)
	assert.Equal(t, -20.0, report.TotalDiscounts)
	assert.Equal(t, 280.0, report.NetRevenue)

	sku := report.SKUProfitability["POL-01"]
	require.NotNil(t, sku)
	assert.Equal(t, 280.0, sku.Revenue)
	assert.Equal(t, 2.0, sku.UnitsSold)

	require.Len(t, report.MonthlyChartData, 1)
	assert.Equal(t, "2024-01", report.MonthlyChartData[0].Month)
	assert.Equal(t, 280.0, report.MonthlyChartData[0].Revenue)
	assert.Equal(t, 2, report.MonthlyChartData[0].SalesCount)
	assert.Equal(t, map[string]float64{"Tienda": 280}, report.SalesByChannel)
}

func TestEngine_ExpenseCostCenters(t *testing.T) {
	report, err := testEngine().Build(Tables{
		Expenses: [][]any{
			header(15),
			expenseRow("PRINCIPAL", "02/03/2024", "50", "COV"),
			expenseRow("PRINCIPAL", "02/04/2024", "30", "GVD"),
			expenseRow("SECUNDARIO", "02/05/2024", "999", "GAD"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, report.CostOfSales)
	assert.Equal(t, 30.0, report.DistributionExpense)
	assert.Equal(t, 0.0, report.AdminExpense)
	assert.Equal(t, 80.0, report.TotalExpenses)
	assert.Equal(t, -80.0, report.OperatingProfit)

	require.Len(t, report.MonthlyChartData, 1)
	point := report.MonthlyChartData[0]
	assert.Equal(t, 80.0, point.Cost)
	assert.Equal(t, 30.0, point.Distribution)
	assert.Equal(t, 0.0, point.Admin)
	assert.Equal(t, []string{"2024-02"}, report.DebugInfo.MonthsWithGVD)
	assert.Empty(t, report.DebugInfo.MonthsWithGAD)
}

func TestEngine_PurchaseLogistics(t *testing.T) {
	report, err := testEngine().Build(Tables{
		Purchases: [][]any{
			header(20),
			purchaseRow("01/05/2024", "POL-01", "Polo", "ROPA", "DHL", "01/10/2024", "01/15/2024", "1", "10", "0", "3.8", "38"),
		},
	})
	require.NoError(t, err)

	dhl := report.ProviderPerformance["DHL"]
	require.NotNil(t, dhl)
	require.Len(t, dhl.Orders, 1)
	assert.Equal(t, 5.0, dhl.Orders[0].TransitDays)
	assert.Equal(t, 38.0, dhl.Orders[0].Value)
	assert.Equal(t, 5.0, dhl.AvgTransitDays)

	assert.Equal(t, []string{"DHL"}, report.ProviderRanking)
	require.NotNil(t, report.OptimalProvider)
	assert.Equal(t, "DHL", report.OptimalProvider.Provider)
	assert.Equal(t, 38.0, report.TotalInvestment)
	assert.Equal(t, 38.0, report.TotalRealInvestment)
}

func TestEngine_ROIWithoutInvestment(t *testing.T) {
	report, err := testEngine().Build(Tables{
		Sales: [][]any{
			header(18),
			saleRow("03/01/2024", "POL-01", "Polo", "500", ""),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, report.OperatingProfit)
	assert.Zero(t, report.TotalInvestment)
	assert.Zero(t, report.ROI)
	assert.Zero(t, report.RealROI)
}

func TestEngine_MonthUnionAcrossFamilies(t *testing.T) {
	report, err := testEngine().Build(Tables{
		Sales:     [][]any{header(18), saleRow("01/10/2024", "POL-01", "Polo", "100", "")},
		Expenses:  [][]any{header(15), expenseRow("PRINCIPAL", "03/02/2024", "40", "GAD")},
		Purchases: [][]any{header(20), purchaseRow("02/01/2024", "POL-01", "Polo", "ROPA", "", "", "", "2", "5", "1", "3.7", "37")},
	})
	require.NoError(t, err)

	require.Len(t, report.MonthlyChartData, 3)
	months := []string{report.MonthlyChartData[0].Month, report.MonthlyChartData[1].Month, report.MonthlyChartData[2].Month}
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, months)

	feb := report.MonthlyChartData[1]
	assert.Zero(t, feb.Revenue)
	assert.Zero(t, feb.Cost)
	assert.Equal(t, 37.0, feb.Investment)

	// purchases without a provider stay out of logistics
	assert.Empty(t, report.ProviderPerformance)
	assert.Nil(t, report.OptimalProvider)
}

func TestEngine_BadRowsBecomeDiagnostics(t *testing.T) {
	report, err := testEngine().Build(Tables{
		Sales: [][]any{
			header(18),
			emptyRow(18),
			saleRow("15/01/2024", "POL-01", "Polo", "100", ""),
			saleRow("01/15/2024", "POL-02", "Gorra", "abc9", ""),
		},
		Inventory: [][]any{
			header(10),
			inventoryRow("", "Sin codigo", "10", "5"),
			inventoryRow("POL-01", "Polo", "40", "3"),
		},
	})
	require.NoError(t, err)

	debug := report.DebugInfo
	// totals count every data row, skipped ones included
	assert.Equal(t, 3, debug.TotalSales)
	assert.Equal(t, 2, debug.TotalInventory)
	assert.Zero(t, debug.TotalPurchases)
	assert.Equal(t, map[string]int{SourceSales: 1, SourceInventory: 1}, debug.SkippedRows)

	reasons := make(map[string]int)
	for _, d := range debug.Diagnostics {
		reasons[d.Reason]++
	}
	assert.Equal(t, 1, reasons[ReasonBlankRow])
	assert.Equal(t, 1, reasons[ReasonMissingSKU])
	assert.Equal(t, 1, reasons[ReasonInvalidDate])
	assert.Equal(t, 1, reasons[ReasonInvalidCurrency])

	// undated sale still counts toward gross revenue but not the series
	assert.Equal(t, 100.0, report.GrossRevenue)
	require.Len(t, report.MonthlyChartData, 1)
	assert.Zero(t, report.MonthlyChartData[0].Revenue)
	assert.Equal(t, 1, report.MonthlyChartData[0].SalesCount)
}

func TestEngine_EmptyTables(t *testing.T) {
	report, err := testEngine().Build(Tables{})
	require.NoError(t, err)

	assert.Zero(t, report.NetRevenue)
	assert.Zero(t, report.ROI)
	assert.Empty(t, report.MonthlyChartData)
	assert.Empty(t, report.ABCAnalysis.Items)
	assert.Len(t, report.ABCAnalysis.Summaries, 3)
	assert.Equal(t, "2024-06-30", report.ReferenceDate)

	_, err = json.Marshal(report)
	require.NoError(t, err)
}

func TestEngine_PreservesGatherDiagnostics(t *testing.T) {
	diag := NewDiagnostics()
	diag.Unavailable(SourceInventory, errors.New("sheet not found"))

	report, err := testEngine().BuildWithDiagnostics(Tables{}, diag)
	require.NoError(t, err)
	assert.Equal(t, []string{SourceInventory}, report.DebugInfo.UnavailableSources)
	require.Len(t, report.DebugInfo.Diagnostics, 1)
	assert.Equal(t, ReasonSourceUnavailable, report.DebugInfo.Diagnostics[0].Reason)
}

func TestEngine_InvalidColumns(t *testing.T) {
	cols := config.DefaultColumns()
	cols.Sales.SalePrice = -1

	_, err := NewEngine(Options{Columns: cols}).Build(Tables{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestEngine_MissingReferenceDate(t *testing.T) {
	_, err := NewEngine(Options{}).Build(Tables{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestEngine_BuildIsDeterministic(t *testing.T) {
	tables := Tables{
		Sales: [][]any{
			header(18),
			saleRow("01/10/2024", "POL-01", "Polo", "100", "-10"),
			saleRow("02/12/2024", "GOR-01", "Gorra", "40", ""),
		},
		Expenses: [][]any{
			header(15),
			expenseRow("PRINCIPAL", "02/03/2024", "50", "COV"),
		},
		Inventory: [][]any{
			header(10),
			inventoryRow("POL-01", "Polo", "40", "3"),
		},
	}
	eng := testEngine()

	first, err := eng.Build(tables)
	require.NoError(t, err)
	second, err := eng.Build(tables)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.True(t, first.GeneratedAt.IsZero())
}

func TestEngine_ReportJSONKeys(t *testing.T) {
	report, err := testEngine().Build(Tables{
		Sales: [][]any{header(18), saleRow("01/10/2024", "POL-01", "Polo", "100", "")},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{
		"ingresosBrutos", "totalDescuentos", "totalRevenue", "totalCogs", "grossProfit",
		"totalGastosGVD", "totalGastosGAD", "totalExpenses", "operatingProfit", "totalGvd",
		"totalGad", "totalInvestment", "roi", "monthlyChartData", "ventasPorCanal",
		"expenseDetails", "purchaseCategories", "purchasesByMonth", "totalRealInvestment",
		"investmentByCategory", "realInvestmentData", "realROI", "debugInfo",
		"skuProfitability", "productProfitability", "abcAnalysis", "optimalProvider",
	} {
		assert.Contains(t, decoded, key)
	}
}

func TestParseReferenceDate(t *testing.T) {
	got, err := ParseReferenceDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, mustDate("2024-05-01"), got)

	got, err = ParseReferenceDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseReferenceDate("05/01/2024")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
