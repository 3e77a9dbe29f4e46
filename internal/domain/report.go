package domain

import "time"

// DashboardReport is the single object handed to the transport layer. JSON
// keys are consumed by the dashboard frontend and must stay stable.
type DashboardReport struct {
	GrossRevenue        float64 `json:"ingresosBrutos"`
	TotalDiscounts      float64 `json:"totalDescuentos"`
	NetRevenue          float64 `json:"totalRevenue"`
	CostOfSales         float64 `json:"totalCogs"`
	GrossProfit         float64 `json:"grossProfit"`
	DistributionExpense float64 `json:"totalGastosGVD"`
	AdminExpense        float64 `json:"totalGastosGAD"`
	TotalExpenses       float64 `json:"totalExpenses"`
	OperatingProfit     float64 `json:"operatingProfit"`
	TotalGVD            float64 `json:"totalGvd"`
	TotalGAD            float64 `json:"totalGad"`
	TotalInvestment     float64 `json:"totalInvestment"`
	ROI                 float64 `json:"roi"`
	GrossMargin         float64 `json:"grossMargin"`
	OperatingMargin     float64 `json:"operatingMargin"`

	MonthlyChartData []MonthlyPoint                            `json:"monthlyChartData"`
	SalesByChannel   map[string]float64                        `json:"ventasPorCanal"`
	ExpenseDetails   map[string]map[string][]ExpenseDetailItem `json:"expenseDetails"`

	PurchaseCategories map[string]map[string]*PurchaseMonthGroup `json:"purchaseCategories"`
	PurchasesByMonth   map[string]*PurchaseMonthTotals           `json:"purchasesByMonth"`

	TotalRealInvestment  float64                     `json:"totalRealInvestment"`
	InvestmentByCategory map[string]float64          `json:"investmentByCategory"`
	RealInvestmentData   map[string][]InvestmentItem `json:"realInvestmentData"`
	RealROI              float64                     `json:"realROI"`

	SKUProfitability     map[string]*SKUProfitability     `json:"skuProfitability"`
	ProductProfitability map[string]*ProductProfitability `json:"productProfitability"`
	InventoryBySKU       map[string]*InventoryPosition    `json:"inventoryBySku"`
	InventoryByProduct   map[string]*InventoryPosition    `json:"inventoryByProduct"`

	SKULogistics        map[string]*LogisticsRollup    `json:"skuLogistics"`
	ProviderPerformance map[string]*LogisticsRollup    `json:"providerPerformance"`
	ProviderEfficiency  map[string]*ProviderEfficiency `json:"providerEfficiency"`
	ProviderRanking     []string                       `json:"providerRanking"`
	OptimalProvider     *OptimalProviderReport         `json:"optimalProvider"`

	ABCAnalysis ABCAnalysis `json:"abcAnalysis"`

	ReferenceDate string `json:"referenceDate"`
	// stamped by the caller that runs the engine
	GeneratedAt time.Time `json:"generatedAt"`
	DebugInfo   DebugInfo `json:"debugInfo"`
}

// MonthlyPoint is one month of the merged time series.
type MonthlyPoint struct {
	Month             string  `json:"month"`
	Name              string  `json:"name"`
	Revenue           float64 `json:"ingresos"`
	Cost              float64 `json:"costos"`
	Investment        float64 `json:"inversion"`
	Distribution      float64 `json:"gvd"`
	Admin             float64 `json:"gad"`
	DistributionAdmin float64 `json:"gvdGadTotal"`
	SalesCount        int     `json:"count"`
	ExpenseCount      int     `json:"countGastos"`
	PurchaseCount     int     `json:"countCompras"`
	DistributionCount int     `json:"countGVD"`
	AdminCount        int     `json:"countGAD"`
}

type ExpenseDetailItem struct {
	Detail string  `json:"detalle"`
	Amount float64 `json:"monto"`
	Row    int     `json:"fila"`
	Kind   string  `json:"tipo"`
}

type PurchaseItem struct {
	Product string  `json:"producto"`
	Cost    float64 `json:"costo"`
	Date    string  `json:"fecha"`
	Row     int     `json:"fila"`
}

type PurchaseMonthGroup struct {
	MonthName string         `json:"monthName"`
	Items     []PurchaseItem `json:"items"`
	Total     float64        `json:"total"`
}

type PurchaseMonthTotals struct {
	MonthName  string             `json:"monthName"`
	Categories map[string]float64 `json:"categorias"`
	Total      float64            `json:"total"`
}

type InvestmentItem struct {
	Product        string  `json:"producto"`
	SKU            string  `json:"sku"`
	UnitCost       float64 `json:"costoUnitario"`
	Quantity       float64 `json:"cantidadPedido"`
	ComputedTotal  float64 `json:"totalCalculado"`
	TotalCostLocal float64 `json:"costoTotalSoles"`
	Date           string  `json:"fecha"`
	Row            int     `json:"fila"`
}

// SKUProfitability is the joined view of one product identifier.
type SKUProfitability struct {
	SKU               string  `json:"sku"`
	Product           string  `json:"producto"`
	Category          string  `json:"categoria"`
	UnitsSold         float64 `json:"unidadesVendidas"`
	Revenue           float64 `json:"ingresos"`
	GrossProfit       float64 `json:"utilidadBruta"`
	Margin            float64 `json:"margen"`
	AvgSalePrice      float64 `json:"precioPromedio"`
	UnitCost          float64 `json:"costoUnitario"`
	UnitProfit        float64 `json:"utilidadUnitaria"`
	SalesLineProfit   float64 `json:"utilidadLineas"`
	Stock             float64 `json:"stock"`
	InventoryValue    float64 `json:"valorInventario"`
	InvestedCapital   float64 `json:"capitalInvertido"`
	FirstPurchase     string  `json:"primeraCompra,omitempty"`
	DaysOnHand        float64 `json:"diasEnInventario"`
	DailyVelocity     float64 `json:"velocidadDiaria"`
	DaysOfInventory   float64 `json:"diasInventario"`
	Turnover          float64 `json:"rotacion"`
	SellThrough       float64 `json:"sellThrough"`
	CapitalEfficiency float64 `json:"eficienciaCapital"`
	SaleCount         int     `json:"ventas"`
}

// ProductProfitability folds every identifier sharing a product name.
type ProductProfitability struct {
	Product           string   `json:"producto"`
	Category          string   `json:"categoria"`
	SKUs              []string `json:"skus"`
	UnitsSold         float64  `json:"unidadesVendidas"`
	Revenue           float64  `json:"ingresos"`
	GrossProfit       float64  `json:"utilidadBruta"`
	Margin            float64  `json:"margen"`
	AvgSalePrice      float64  `json:"precioPromedio"`
	AvgUnitCost       float64  `json:"costoPromedio"`
	UnitProfit        float64  `json:"utilidadUnitaria"`
	Stock             float64  `json:"stock"`
	InventoryValue    float64  `json:"valorInventario"`
	InvestedCapital   float64  `json:"capitalInvertido"`
	DailyVelocity     float64  `json:"velocidadDiaria"`
	DaysOfInventory   float64  `json:"diasInventario"`
	Turnover          float64  `json:"rotacion"`
	SellThrough       float64  `json:"sellThrough"`
	CapitalEfficiency float64  `json:"eficienciaCapital"`
	SKUDiversity      float64  `json:"diversidadSku"`
	TopSKU            string   `json:"skuPrincipal"`
}

type InventoryPosition struct {
	Key              string  `json:"clave"`
	Product          string  `json:"producto"`
	Category         string  `json:"categoria"`
	Stock            float64 `json:"stock"`
	SoldToDate       float64 `json:"vendidos"`
	InventoryValue   float64 `json:"valorInventario"`
	UnitCost         float64 `json:"costoUnitario"`
	SalePrice        float64 `json:"precioVenta"`
	PotentialRevenue float64 `json:"ingresoPotencial"`
	ArrivalDate      string  `json:"fechaLlegada,omitempty"`
	SKUCount         int     `json:"skus"`
}

type LogisticsOrder struct {
	Row             int     `json:"fila"`
	SKU             string  `json:"sku"`
	Product         string  `json:"producto"`
	Provider        string  `json:"proveedor"`
	Units           float64 `json:"unidades"`
	TransitDays     float64 `json:"diasTransito"`
	HasTransit      bool    `json:"tieneTransito"`
	Value           float64 `json:"valorTransportado"`
	Fee             float64 `json:"tarifa"`
	FeeToValueRatio float64 `json:"ratioTarifaValor"`
}

// LogisticsRollup aggregates orders per identifier or per provider.
type LogisticsRollup struct {
	Key                 string           `json:"clave"`
	Orders              []LogisticsOrder `json:"ordenes"`
	OrderCount          int              `json:"totalOrdenes"`
	TransitSamples      int              `json:"muestrasTransito"`
	TotalTransitDays    float64          `json:"totalDiasTransito"`
	TotalValue          float64          `json:"valorTotal"`
	TotalFee            float64          `json:"tarifaTotal"`
	TotalUnits          float64          `json:"unidadesTotales"`
	AvgTransitDays      float64          `json:"promedioDiasTransito"`
	SimpleAvgTransit    float64          `json:"promedioSimpleTransito"`
	AvgValuePerOrder    float64          `json:"valorPromedioOrden"`
	AvgFeePerOrder      float64          `json:"tarifaPromedioOrden"`
	FeeToValueRatio     float64          `json:"ratioTarifaValor"`
	TransitStdDev       float64          `json:"desviacionTransito"`
	TransitVariationPct float64          `json:"coeficienteVariacion"`
}

type ProviderSubScores struct {
	Speed       float64 `json:"velocidad"`
	Cost        float64 `json:"costo"`
	Value       float64 `json:"valor"`
	Volume      float64 `json:"volumen"`
	Consistency float64 `json:"consistencia"`
}

type ProviderEfficiency struct {
	Provider        string            `json:"proveedor"`
	Score           float64           `json:"puntaje"`
	Tier            string            `json:"nivel"`
	Rank            int               `json:"ranking"`
	Percentile      float64           `json:"percentil"`
	SubScores       ProviderSubScores `json:"subPuntajes"`
	OrderCount      int               `json:"totalOrdenes"`
	AvgTransitDays  float64           `json:"promedioDiasTransito"`
	FeeToValueRatio float64           `json:"ratioTarifaValor"`
	TotalValue      float64           `json:"valorTotal"`
	Recommendations []string          `json:"recomendaciones"`
}

type OptimalProviderReport struct {
	Provider         string   `json:"proveedor"`
	Score            float64  `json:"puntaje"`
	Tier             string   `json:"nivel"`
	RunnerUp         string   `json:"segundo,omitempty"`
	MarginOverSecond float64  `json:"ventajaSobreSegundo"`
	Advantages       []string `json:"ventajas"`
}

// ABCCriteria holds the nine normalized (0-100) criterion values.
type ABCCriteria struct {
	Revenue           float64 `json:"ingresos"`
	Profit            float64 `json:"utilidad"`
	Margin            float64 `json:"margen"`
	Turnover          float64 `json:"rotacion"`
	Velocity          float64 `json:"velocidad"`
	CapitalEfficiency float64 `json:"eficienciaCapital"`
	Growth            float64 `json:"crecimiento"`
	MarketPosition    float64 `json:"posicionMercado"`
	InverseRisk       float64 `json:"riesgoInverso"`
}

type ABCStrategy struct {
	Category string   `json:"categoria"`
	Label    string   `json:"estrategia"`
	Actions  []string `json:"acciones"`
	Alerts   []string `json:"alertas"`
}

type ABCItem struct {
	Product             string      `json:"producto"`
	Category            string      `json:"categoria"`
	SKUs                []string    `json:"skus"`
	Revenue             float64     `json:"ingresos"`
	GrossProfit         float64     `json:"utilidadBruta"`
	Margin              float64     `json:"margen"`
	Turnover            float64     `json:"rotacion"`
	DailyVelocity       float64     `json:"velocidadDiaria"`
	CapitalEfficiency   float64     `json:"eficienciaCapital"`
	Stock               float64     `json:"stock"`
	DaysOfInventory     float64     `json:"diasInventario"`
	RevenueShare        float64     `json:"participacion"`
	Criteria            ABCCriteria `json:"criterios"`
	Score               float64     `json:"puntaje"`
	Rank                int         `json:"ranking"`
	Percentile          float64     `json:"percentil"`
	Class               string      `json:"clase"`
	RiskFactor          float64     `json:"factorRiesgo"`
	MarketPosition      string      `json:"posicionMercado"`
	MarketPositionValue float64     `json:"valorPosicion"`
	Strategy            ABCStrategy `json:"estrategia"`
}

type ABCClassSummary struct {
	Class        string   `json:"clase"`
	Count        int      `json:"cantidad"`
	Revenue      float64  `json:"ingresos"`
	RevenueShare float64  `json:"participacion"`
	AvgScore     float64  `json:"puntajePromedio"`
	MinScore     float64  `json:"puntajeMinimo"`
	MaxScore     float64  `json:"puntajeMaximo"`
	AvgRisk      float64  `json:"riesgoPromedio"`
	Products     []string `json:"productos"`
	Strategy     string   `json:"estrategia"`
}

type ABCThresholds struct {
	AEnd      int     `json:"finA"`
	BEnd      int     `json:"finB"`
	AMinScore float64 `json:"puntajeMinimoA"`
	BMinScore float64 `json:"puntajeMinimoB"`
	ABMethod  string  `json:"metodoAB"`
	BCMethod  string  `json:"metodoBC"`
}

type ABCAnalysis struct {
	Items        []ABCItem                  `json:"items"`
	Summaries    map[string]ABCClassSummary `json:"resumen"`
	Thresholds   ABCThresholds              `json:"umbrales"`
	TotalRevenue float64                    `json:"ingresosTotales"`
}

type Diagnostic struct {
	Source string `json:"fuente"`
	Row    int    `json:"fila"`
	Field  string `json:"campo,omitempty"`
	Reason string `json:"motivo"`
	Value  string `json:"valor,omitempty"`
}

type InvestmentMonthly struct {
	MonthsWithPurchases int `json:"mesesConCompras"`
}

type DebugInfo struct {
	TotalSales           int               `json:"totalVentas"`
	TotalExpenses        int               `json:"totalGastos"`
	TotalPurchases       int               `json:"totalCompras"`
	TotalInventory       int               `json:"totalInventario"`
	MonthsWithInvestment []string          `json:"mesesConInversion"`
	MonthsWithGVD        []string          `json:"mesesConGVD"`
	MonthsWithGAD        []string          `json:"mesesConGAD"`
	InvestmentMonthly    InvestmentMonthly `json:"inversionMensual"`
	Categories           map[string]int    `json:"categorias"`
	SaleCategories       []string          `json:"categoriasVentas"`
	Couriers             []string          `json:"couriers"`
	Channels             []string          `json:"canales"`
	SkippedRows          map[string]int    `json:"filasOmitidas"`
	UnavailableSources   []string          `json:"fuentesNoDisponibles"`
	Diagnostics          []Diagnostic      `json:"diagnosticos"`
}
