package dashboard

import "github.com/shopspring/decimal"

// WaterfallInput holds the scalar totals folded into the P&L cascade.
// Discounts are non-positive.
type WaterfallInput struct {
	GrossRevenue        float64
	Discounts           float64
	CostOfSales         float64
	DistributionExpense float64
	AdminExpense        float64
	TotalExpenses       float64
	Investment          float64
	RealInvestment      float64
}

type Waterfall struct {
	GrossRevenue        float64
	Discounts           float64
	NetRevenue          float64
	CostOfSales         float64
	GrossProfit         float64
	DistributionExpense float64
	AdminExpense        float64
	TotalExpenses       float64
	OperatingProfit     float64
	Investment          float64
	ROI                 float64
	RealInvestment      float64
	RealROI             float64
	GrossMargin         float64
	OperatingMargin     float64
}

// ComputeWaterfall folds totals into gross revenue, net revenue, gross
// profit, operating profit and return on investment. Every ratio is 0 when
// its denominator is 0. Outputs are rounded to 2 decimals.
func ComputeWaterfall(in WaterfallInput) Waterfall {
	gross := toDecimal(in.GrossRevenue)
	discounts := toDecimal(in.Discounts)
	cogs := toDecimal(in.CostOfSales)
	gvd := toDecimal(in.DistributionExpense)
	gad := toDecimal(in.AdminExpense)
	investment := toDecimal(in.Investment)
	realInvestment := toDecimal(in.RealInvestment)

	net := gross.Add(discounts)
	grossProfit := net.Sub(cogs)
	operating := grossProfit.Sub(gvd).Sub(gad)

	hundred := decimal.NewFromInt(100)
	ratio := func(num, den decimal.Decimal) float64 {
		if den.IsZero() {
			return 0
		}
		return num.Div(den).Mul(hundred).Round(2).InexactFloat64()
	}

	return Waterfall{
		GrossRevenue:        gross.Round(2).InexactFloat64(),
		Discounts:           discounts.Round(2).InexactFloat64(),
		NetRevenue:          net.Round(2).InexactFloat64(),
		CostOfSales:         cogs.Round(2).InexactFloat64(),
		GrossProfit:         grossProfit.Round(2).InexactFloat64(),
		DistributionExpense: gvd.Round(2).InexactFloat64(),
		AdminExpense:        gad.Round(2).InexactFloat64(),
		TotalExpenses:       round2(in.TotalExpenses),
		OperatingProfit:     operating.Round(2).InexactFloat64(),
		Investment:          investment.Round(2).InexactFloat64(),
		ROI:                 ratio(operating, investment),
		RealInvestment:      realInvestment.Round(2).InexactFloat64(),
		RealROI:             ratio(operating, realInvestment),
		GrossMargin:         ratio(grossProfit, net),
		OperatingMargin:     ratio(operating, net),
	}
}
