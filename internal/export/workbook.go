package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	SheetSummary   = "Resumen"
	SheetMonthly   = "Mensual"
	SheetProducts  = "Productos"
	SheetProviders = "Proveedores"
	SheetABC       = "ABC"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(report *domain.DashboardReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteWorkbook renders the report as an .xlsx workbook, one sheet per view.
func WriteWorkbook(report *domain.DashboardReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetMonthly, SheetProducts, SheetProviders, SheetABC} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summaryRows(report)},
		{SheetMonthly, monthlyRows(report)},
		{SheetProducts, productRows(report)},
		{SheetProviders, providerRows(report)},
		{SheetABC, abcRows(report)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows); err != nil {
			return err
		}
		if err := f.SetRowStyle(s.name, 1, 1, bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", s.name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(r *domain.DashboardReport) [][]any {
	return [][]any{
		{"Concepto", "Valor"},
		{"Ingresos brutos", r.GrossRevenue},
		{"Descuentos", r.TotalDiscounts},
		{"Ingresos netos", r.NetRevenue},
		{"Costo de ventas", r.CostOfSales},
		{"Utilidad bruta", r.GrossProfit},
		{"Gastos de venta y distribución", r.DistributionExpense},
		{"Gastos administrativos", r.AdminExpense},
		{"Gastos totales", r.TotalExpenses},
		{"Utilidad operativa", r.OperatingProfit},
		{"Inversión total", r.TotalInvestment},
		{"ROI %", r.ROI},
		{"Inversión real", r.TotalRealInvestment},
		{"ROI real %", r.RealROI},
		{"Margen bruto %", r.GrossMargin},
		{"Margen operativo %", r.OperatingMargin},
		{"Fecha de referencia", r.ReferenceDate},
	}
}

func monthlyRows(r *domain.DashboardReport) [][]any {
	rows := [][]any{{"Mes", "Nombre", "Ingresos", "Costos", "Inversión", "GVD", "GAD", "Ventas"}}
	for _, m := range r.MonthlyChartData {
		rows = append(rows, []any{m.Month, m.Name, m.Revenue, m.Cost, m.Investment, m.Distribution, m.Admin, m.SalesCount})
	}
	return rows
}

func productRows(r *domain.DashboardReport) [][]any {
	rows := [][]any{{"Producto", "Categoría", "SKUs", "Unidades", "Ingresos", "Utilidad", "Margen %", "Stock", "Rotación", "Días inventario"}}
	names := lo.Keys(r.ProductProfitability)
	sort.Strings(names)
	for _, name := range names {
		p := r.ProductProfitability[name]
		rows = append(rows, []any{p.Product, p.Category, len(p.SKUs), p.UnitsSold, p.Revenue, p.GrossProfit, p.Margin, p.Stock, p.Turnover, p.DaysOfInventory})
	}
	return rows
}

func providerRows(r *domain.DashboardReport) [][]any {
	rows := [][]any{{"Ranking", "Proveedor", "Puntaje", "Nivel", "Órdenes", "Días tránsito", "Tarifa/valor %", "Valor total"}}
	for _, name := range r.ProviderRanking {
		p, ok := r.ProviderEfficiency[name]
		if !ok {
			continue
		}
		rows = append(rows, []any{p.Rank, p.Provider, p.Score, p.Tier, p.OrderCount, p.AvgTransitDays, p.FeeToValueRatio, p.TotalValue})
	}
	return rows
}

func abcRows(r *domain.DashboardReport) [][]any {
	rows := [][]any{{"Ranking", "Producto", "Clase", "Puntaje", "Ingresos", "Participación %", "Riesgo", "Posición", "Estrategia"}}
	for _, it := range r.ABCAnalysis.Items {
		rows = append(rows, []any{it.Rank, it.Product, it.Class, it.Score, it.Revenue, it.RevenueShare, it.RiskFactor, it.MarketPosition, it.Strategy.Label})
	}
	return rows
}
