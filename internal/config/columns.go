package config

import (
	"fmt"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Column indexes are zero-based positions inside a fetched range. A negative
// index marks a field the sheet does not carry.

type SalesColumns struct {
	Date       int `mapstructure:"date"`
	SKU        int `mapstructure:"sku"`
	Product    int `mapstructure:"product"`
	Category   int `mapstructure:"category"`
	UnitCost   int `mapstructure:"unit_cost"`
	SalePrice  int `mapstructure:"sale_price"`
	Discount   int `mapstructure:"discount"`
	Quantity   int `mapstructure:"quantity"`
	LineProfit int `mapstructure:"line_profit"`
	Channel    int `mapstructure:"channel"`
	Courier    int `mapstructure:"courier"`
}

type ExpenseColumns struct {
	Type       int `mapstructure:"type"`
	Date       int `mapstructure:"date"`
	Concept    int `mapstructure:"concept"`
	Detail     int `mapstructure:"detail"`
	Amount     int `mapstructure:"amount"`
	CostCenter int `mapstructure:"cost_center"`
	Category   int `mapstructure:"category"`
}

type PurchaseColumns struct {
	Date            int `mapstructure:"date"`
	Supplier        int `mapstructure:"supplier"`
	SKU             int `mapstructure:"sku"`
	Product         int `mapstructure:"product"`
	Category        int `mapstructure:"category"`
	Quantity        int `mapstructure:"quantity"`
	UnitCostForeign int `mapstructure:"unit_cost_foreign"`
	UnitFeeForeign  int `mapstructure:"unit_fee_foreign"`
	ExchangeRate    int `mapstructure:"exchange_rate"`
	Provider        int `mapstructure:"provider"`
	PickupDate      int `mapstructure:"pickup_date"`
	DeliveryDate    int `mapstructure:"delivery_date"`
	TotalCostLocal  int `mapstructure:"total_cost_local"`
	UnitCostLocal   int `mapstructure:"unit_cost_local"`
	Warehouse       int `mapstructure:"warehouse"`
}

type InventoryColumns struct {
	SKU            int `mapstructure:"sku"`
	Product        int `mapstructure:"product"`
	Category       int `mapstructure:"category"`
	ArrivalDate    int `mapstructure:"arrival_date"`
	UnitCost       int `mapstructure:"unit_cost"`
	SoldToDate     int `mapstructure:"sold_to_date"`
	Stock          int `mapstructure:"stock"`
	InventoryValue int `mapstructure:"inventory_value"`
	SalePrice      int `mapstructure:"sale_price"`
}

type ColumnsConfig struct {
	Sales     SalesColumns     `mapstructure:"sales"`
	Expenses  ExpenseColumns   `mapstructure:"expenses"`
	Purchases PurchaseColumns  `mapstructure:"purchases"`
	Inventory InventoryColumns `mapstructure:"inventory"`
}

// DefaultColumns matches the layout of the business spreadsheet.
func DefaultColumns() ColumnsConfig {
	return ColumnsConfig{
		Sales: SalesColumns{
			Date:       1,
			SKU:        2,
			Product:    3,
			Category:   4,
			UnitCost:   5,
			SalePrice:  6,
			Discount:   7,
			Quantity:   8,
			LineProfit: 10,
			Channel:    12,
			Courier:    13,
		},
		Expenses: ExpenseColumns{
			Type:       1,
			Date:       2,
			Concept:    4,
			Detail:     5,
			Amount:     8,
			CostCenter: 9,
			Category:   10,
		},
		Purchases: PurchaseColumns{
			Date:            0,
			Supplier:        1,
			SKU:             3,
			Product:         4,
			Category:        5,
			Quantity:        6,
			UnitCostForeign: 7,
			UnitFeeForeign:  8,
			ExchangeRate:    9,
			Provider:        10,
			PickupDate:      11,
			DeliveryDate:    12,
			TotalCostLocal:  13,
			UnitCostLocal:   14,
			Warehouse:       15,
		},
		Inventory: InventoryColumns{
			SKU:            0,
			Product:        1,
			Category:       2,
			ArrivalDate:    3,
			UnitCost:       4,
			SoldToDate:     5,
			Stock:          6,
			InventoryValue: 7,
			SalePrice:      8,
		},
	}
}

// Validate checks the fields every downstream stage depends on.
func (c ColumnsConfig) Validate() error {
	required := map[string]int{
		"sales.date":           c.Sales.Date,
		"sales.sale_price":     c.Sales.SalePrice,
		"expenses.type":        c.Expenses.Type,
		"expenses.amount":      c.Expenses.Amount,
		"expenses.cost_center": c.Expenses.CostCenter,
		"purchases.sku":        c.Purchases.SKU,
		"inventory.sku":        c.Inventory.SKU,
		"inventory.stock":      c.Inventory.Stock,
	}
	for name, idx := range required {
		if idx < 0 {
			return fmt.Errorf("column %s is required: %w", name, domain.ErrInvalidConfig)
		}
	}
	return nil
}

func loadColumns(v *viper.Viper) ColumnsConfig {
	cols := DefaultColumns()
	if !v.IsSet("columns") {
		return cols
	}

	// only keys present in the config file replace defaults
	if err := v.UnmarshalKey("columns", &cols); err != nil {
		log.Warn().Err(err).Msg("config: invalid columns section, using defaults")
		return DefaultColumns()
	}
	return cols
}
