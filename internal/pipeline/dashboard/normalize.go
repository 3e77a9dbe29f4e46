package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/shopspring/decimal"
)

// DateWindow bounds the years accepted by ParseDate.
type DateWindow struct {
	MinYear int
	MaxYear int
}

func DefaultDateWindow() DateWindow {
	return DateWindow{MinYear: 2020, MaxYear: 2030}
}

var currencyReplacer = strings.NewReplacer(
	"S/.", "",
	"S/", "",
	"USD", "",
	"PEN", "",
	"$", "",
	",", "",
	" ", "",
	"\u00a0", "",
	"\t", "",
)

// ParseCurrency converts a sheet cell into a number. Currency markers,
// thousands separators and whitespace are ignored. Empty input and input made
// only of symbols parse as 0. The boolean is false when the cell held
// something that could not be read as a number; the value is still 0.
func ParseCurrency(cell any) (float64, bool) {
	switch v := cell.(type) {
	case nil:
		return 0, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	}

	raw := strings.TrimSpace(fmt.Sprint(cell))
	cleaned := currencyReplacer.Replace(raw)
	if !strings.ContainsFunc(cleaned, unicode.IsDigit) {
		return 0, true
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "("), ")")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), true
}

// ParseDate accepts MM/DD/YYYY. The month key comes from the parsed fields so
// day 31 in a short month still lands in the written month.
func ParseDate(cell any, window DateWindow) (domain.MonthKey, time.Time, bool) {
	if t, ok := cell.(time.Time); ok {
		if t.IsZero() || t.Year() < window.MinYear || t.Year() > window.MaxYear {
			return domain.MonthKey{}, time.Time{}, false
		}
		return domain.MonthKey{Year: t.Year(), Month: int(t.Month())}, t.UTC(), true
	}

	s, ok := cell.(string)
	if !ok {
		return domain.MonthKey{}, time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if strings.Count(s, "/") != 2 {
		return domain.MonthKey{}, time.Time{}, false
	}

	parts := strings.Split(s, "/")
	yearPart := strings.TrimSpace(parts[2])
	// tolerate a trailing time of day
	if fields := strings.Fields(yearPart); len(fields) > 0 {
		yearPart = fields[0]
	}

	month, errM := strconv.Atoi(strings.TrimSpace(parts[0]))
	day, errD := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errY := strconv.Atoi(yearPart)
	if errM != nil || errD != nil || errY != nil {
		return domain.MonthKey{}, time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < window.MinYear || year > window.MaxYear {
		return domain.MonthKey{}, time.Time{}, false
	}

	key := domain.MonthKey{Year: year, Month: month}
	return key, time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// Normalizer turns raw sheet rows into typed records using a column mapping.
// Row numbers are sheet row numbers: data index 0 is row 2.
type Normalizer struct {
	cols   config.ColumnsConfig
	window DateWindow
	diag   *Diagnostics
}

func NewNormalizer(cols config.ColumnsConfig, window DateWindow, diag *Diagnostics) *Normalizer {
	if diag == nil {
		diag = NewDiagnostics()
	}
	return &Normalizer{cols: cols, window: window, diag: diag}
}

func (n *Normalizer) Sale(index int, row []any) (domain.SaleRecord, error) {
	if isBlankRow(row) {
		return domain.SaleRecord{}, domain.ErrBlankRow
	}
	c := n.cols.Sales
	rowNum := index + 2

	rec := domain.SaleRecord{
		Row:      rowNum,
		SKU:      normalizeSKU(cellText(row, c.SKU)),
		Product:  cellText(row, c.Product),
		Category: cellText(row, c.Category),
		Channel:  cellText(row, c.Channel),
		Courier:  cellText(row, c.Courier),
	}
	rec.Month, rec.Date, rec.HasDate = n.date(SourceSales, rowNum, "fecha", cellAt(row, c.Date), true)
	rec.UnitCost = n.money(SourceSales, rowNum, "costo_unitario", cellAt(row, c.UnitCost))
	rec.SalePrice = n.money(SourceSales, rowNum, "precio_venta", cellAt(row, c.SalePrice))
	rec.Discount = n.money(SourceSales, rowNum, "descuento", cellAt(row, c.Discount))
	if rec.Discount > 0 {
		rec.Discount = -rec.Discount
	}

	rec.Quantity = n.money(SourceSales, rowNum, "cantidad", cellAt(row, c.Quantity))
	if rec.Quantity <= 0 {
		rec.Quantity = 1
	}

	rec.LineTotal = rec.SalePrice + rec.Discount
	if cellText(row, c.LineProfit) != "" {
		rec.LineProfit = n.money(SourceSales, rowNum, "utilidad", cellAt(row, c.LineProfit))
		rec.HasLineProfit = true
	}

	return rec, nil
}

func (n *Normalizer) Expense(index int, row []any) (domain.ExpenseRecord, error) {
	if isBlankRow(row) {
		return domain.ExpenseRecord{}, domain.ErrBlankRow
	}
	c := n.cols.Expenses
	rowNum := index + 2

	rec := domain.ExpenseRecord{
		Row:        rowNum,
		Type:       cellText(row, c.Type),
		Concept:    cellText(row, c.Concept),
		Detail:     cellText(row, c.Detail),
		CostCenter: strings.ToUpper(cellText(row, c.CostCenter)),
		Category:   cellText(row, c.Category),
	}
	rec.Amount = n.money(SourceExpenses, rowNum, "monto", cellAt(row, c.Amount))
	rec.Month, rec.Date, rec.HasDate = n.date(SourceExpenses, rowNum, "fecha", cellAt(row, c.Date), rec.Principal())

	return rec, nil
}

func (n *Normalizer) Purchase(index int, row []any) (domain.PurchaseRecord, error) {
	if isBlankRow(row) {
		return domain.PurchaseRecord{}, domain.ErrBlankRow
	}
	c := n.cols.Purchases
	rowNum := index + 2

	rec := domain.PurchaseRecord{
		Row:       rowNum,
		SKU:       normalizeSKU(cellText(row, c.SKU)),
		Product:   cellText(row, c.Product),
		Category:  cellText(row, c.Category),
		Supplier:  cellText(row, c.Supplier),
		Provider:  cellText(row, c.Provider),
		Warehouse: cellText(row, c.Warehouse),
	}
	rec.Month, rec.Date, rec.HasDate = n.date(SourcePurchases, rowNum, "fecha", cellAt(row, c.Date), true)
	_, rec.PickupDate, rec.HasPickup = n.date(SourcePurchases, rowNum, "fecha_recojo", cellAt(row, c.PickupDate), false)
	_, rec.DeliveryDate, rec.HasDelivery = n.date(SourcePurchases, rowNum, "fecha_entrega", cellAt(row, c.DeliveryDate), false)

	rec.Quantity = n.money(SourcePurchases, rowNum, "cantidad", cellAt(row, c.Quantity))
	rec.UnitCostForeign = n.money(SourcePurchases, rowNum, "costo_unitario_usd", cellAt(row, c.UnitCostForeign))
	rec.UnitFeeForeign = n.money(SourcePurchases, rowNum, "tarifa_unitaria_usd", cellAt(row, c.UnitFeeForeign))
	rec.ExchangeRate = n.money(SourcePurchases, rowNum, "tipo_cambio", cellAt(row, c.ExchangeRate))
	rec.TotalCostLocal = n.money(SourcePurchases, rowNum, "costo_total", cellAt(row, c.TotalCostLocal))
	rec.UnitCostLocal = n.money(SourcePurchases, rowNum, "costo_unitario", cellAt(row, c.UnitCostLocal))

	return rec, nil
}

func (n *Normalizer) Inventory(index int, row []any) (domain.InventoryRecord, error) {
	if isBlankRow(row) {
		return domain.InventoryRecord{}, domain.ErrBlankRow
	}
	c := n.cols.Inventory
	rowNum := index + 2

	sku := normalizeSKU(cellText(row, c.SKU))
	if sku == "" {
		return domain.InventoryRecord{}, fmt.Errorf("inventory row %d: sku: %w", rowNum, domain.ErrMissingField)
	}

	rec := domain.InventoryRecord{
		Row:      rowNum,
		SKU:      sku,
		Product:  cellText(row, c.Product),
		Category: cellText(row, c.Category),
	}
	_, rec.ArrivalDate, rec.HasArrival = n.date(SourceInventory, rowNum, "fecha_llegada", cellAt(row, c.ArrivalDate), false)
	rec.UnitCost = n.money(SourceInventory, rowNum, "costo_unitario", cellAt(row, c.UnitCost))
	rec.SoldToDate = n.money(SourceInventory, rowNum, "vendidos", cellAt(row, c.SoldToDate))
	rec.Stock = n.money(SourceInventory, rowNum, "stock", cellAt(row, c.Stock))
	rec.InventoryValue = n.money(SourceInventory, rowNum, "valor_inventario", cellAt(row, c.InventoryValue))
	rec.SalePrice = n.money(SourceInventory, rowNum, "precio_venta", cellAt(row, c.SalePrice))
	if rec.InventoryValue == 0 && rec.Stock > 0 {
		rec.InventoryValue = rec.Stock * rec.UnitCost
	}

	return rec, nil
}

func (n *Normalizer) money(source string, row int, field string, cell any) float64 {
	v, ok := ParseCurrency(cell)
	if !ok {
		n.diag.Add(source, row, field, ReasonInvalidCurrency, fmt.Sprint(cell))
	}
	return v
}

// date parses a date cell. An empty cell only produces a diagnostic when
// required is set; a non-empty unparsable cell always does.
func (n *Normalizer) date(source string, row int, field string, cell any, required bool) (domain.MonthKey, time.Time, bool) {
	if isEmptyCell(cell) {
		if required {
			n.diag.Add(source, row, field, ReasonMissingDate, "")
		}
		return domain.MonthKey{}, time.Time{}, false
	}

	key, t, ok := ParseDate(cell, n.window)
	if !ok {
		n.diag.Add(source, row, field, ReasonInvalidDate, fmt.Sprint(cell))
	}
	return key, t, ok
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func cellText(row []any, idx int) string {
	v := cellAt(row, idx)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func isEmptyCell(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func isBlankRow(row []any) bool {
	for _, v := range row {
		if !isEmptyCell(v) {
			return false
		}
	}
	return true
}

func normalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
