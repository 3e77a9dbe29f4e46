package domain

import "time"

// Cost centers used to tag expense rows.
const (
	CostCenterSales        = "COV"
	CostCenterDistribution = "GVD"
	CostCenterAdmin        = "GAD"
)

// ExpenseTypePrincipal is the only expense record type counted in totals.
const ExpenseTypePrincipal = "PRINCIPAL"

// SaleRecord is one row of the sales sheet. LineTotal always equals
// SalePrice + Discount, with Discount <= 0.
type SaleRecord struct {
	Row           int
	Date          time.Time
	HasDate       bool
	Month         MonthKey
	SKU           string
	Product       string
	Category      string
	UnitCost      float64
	SalePrice     float64
	Discount      float64
	Quantity      float64
	Channel       string
	Courier       string
	LineTotal     float64
	LineProfit    float64
	HasLineProfit bool
}

type ExpenseRecord struct {
	Row        int
	Type       string
	Date       time.Time
	HasDate    bool
	Month      MonthKey
	Concept    string
	Detail     string
	Amount     float64
	CostCenter string
	Category   string
}

// Principal matches the trimmed record type exactly; "principal" is not a
// principal row.
func (e ExpenseRecord) Principal() bool {
	return e.Type == ExpenseTypePrincipal
}

type PurchaseRecord struct {
	Row             int
	Date            time.Time
	HasDate         bool
	Month           MonthKey
	SKU             string
	Product         string
	Category        string
	Quantity        float64
	UnitCostForeign float64
	UnitFeeForeign  float64
	ExchangeRate    float64
	Supplier        string
	Provider        string
	PickupDate      time.Time
	HasPickup       bool
	DeliveryDate    time.Time
	HasDelivery     bool
	Warehouse       string
	TotalCostLocal  float64
	UnitCostLocal   float64
}

type InventoryRecord struct {
	Row            int
	SKU            string
	Product        string
	Category       string
	ArrivalDate    time.Time
	HasArrival     bool
	UnitCost       float64
	SoldToDate     float64
	Stock          float64
	InventoryValue float64
	SalePrice      float64
}
