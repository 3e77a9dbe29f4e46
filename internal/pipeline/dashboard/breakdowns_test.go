package dashboard

import (
	"testing"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesByChannel(t *testing.T) {
	got := SalesByChannel([]domain.SaleRecord{
		{Channel: "Tienda", LineTotal: 100},
		{Channel: "Tienda", LineTotal: 80},
		{Channel: "Web", LineTotal: 45.5},
		{Channel: "", LineTotal: 999},
	})
	assert.Equal(t, map[string]float64{"Tienda": 180, "Web": 45.5}, got)
}

func TestExpenseDetails(t *testing.T) {
	details := ExpenseDetails([]domain.ExpenseRecord{
		{Row: 2, Type: "PRINCIPAL", CostCenter: "GVD", Category: "Delivery", Detail: "Motorizado", Amount: 30},
		{Row: 3, Type: "PRINCIPAL", CostCenter: "GAD", Concept: "Alquiler", Amount: 500},
		{Row: 4, Type: "PRINCIPAL", CostCenter: "COV", Amount: 12},
		{Row: 5, Type: "SECUNDARIO", CostCenter: "GAD", Amount: 70},
		{Row: 6, Type: "PRINCIPAL", CostCenter: "GAD", Amount: 0},
		{Row: 7, Type: "PRINCIPAL", CostCenter: "OTRO", Amount: 15},
	})

	require.Len(t, details, 3)
	assert.Equal(t, []domain.ExpenseDetailItem{{Detail: "Motorizado", Amount: 30, Row: 2, Kind: "principal"}}, details["GVD"]["Delivery"])
	assert.Equal(t, "Alquiler", details["GAD"]["Sin categoría"][0].Detail)
	assert.Len(t, details["GAD"]["Sin categoría"], 1)
	assert.Equal(t, "Gasto COV", details["COV"]["Sin categoría"][0].Detail)
}

func TestBuildRealInvestment(t *testing.T) {
	ri := BuildRealInvestment([]domain.PurchaseRecord{
		{Row: 2, Product: "Polo", Category: "ropa", TotalCostLocal: 100, UnitCostLocal: 10, Quantity: 10},
		{Row: 3, Product: "Casaca", Category: "ROPA", TotalCostLocal: 300},
		{Row: 4, Product: "Proteina", Category: "SUPLEMENTOS", TotalCostLocal: 50},
		{Row: 5, Product: "Mochila", Category: "VIAJE", TotalCostLocal: 20},
		{Row: 6, Product: "Sin categoria", Category: "", TotalCostLocal: 999},
		{Row: 7, Product: "Devuelto", Category: "ROPA", TotalCostLocal: 0},
	})

	assert.Equal(t, 470.0, ri.Total)
	assert.Equal(t, map[string]float64{
		"Inventario - Ropa":        400,
		"Inventario - Suplementos": 50,
		"Otros":                    20,
	}, ri.ByCategory)

	ropa := ri.Items["Inventario - Ropa"]
	require.Len(t, ropa, 2)
	assert.Equal(t, "Casaca", ropa[0].Product)
	assert.Equal(t, "Polo", ropa[1].Product)
	assert.Equal(t, 100.0, ropa[1].ComputedTotal)
	assert.Equal(t, "Sin SKU", ropa[1].SKU)
}

func TestBuildPurchaseBreakdown(t *testing.T) {
	jan := domain.MonthKey{Year: 2024, Month: 1}
	pb := BuildPurchaseBreakdown([]domain.PurchaseRecord{
		{Row: 2, Product: "Polo", Category: "ROPA", Month: jan, HasDate: true, Date: mustDate("2024-01-05"), TotalCostLocal: 100},
		{Row: 3, Product: "Gorra", Category: "accesorios", Month: jan, HasDate: true, Date: mustDate("2024-01-09"), TotalCostLocal: 40},
		{Row: 4, Product: "Zapato", Category: "CALZADO", TotalCostLocal: 60},
		{Row: 5, Product: "Nada", Category: "ROPA", TotalCostLocal: 0},
	})

	require.Len(t, pb.Categories, 5)
	ropa := pb.Categories[CategoryClothing]["2024-01"]
	require.NotNil(t, ropa)
	assert.Equal(t, "ene 2024", ropa.MonthName)
	assert.Equal(t, 100.0, ropa.Total)
	assert.Equal(t, "01/05/2024", ropa.Items[0].Date)

	undated := pb.Categories[CategoryOther][domain.NoDateKey]
	require.NotNil(t, undated)
	assert.Equal(t, "Sin fecha", undated.MonthName)
	assert.Equal(t, 60.0, undated.Total)

	jan24 := pb.ByMonth["2024-01"]
	require.NotNil(t, jan24)
	assert.Equal(t, 140.0, jan24.Total)
	assert.Equal(t, map[string]float64{CategoryClothing: 100, CategoryAccessories: 40}, jan24.Categories)
	assert.Empty(t, pb.Categories[CategoryTechnology])
}
