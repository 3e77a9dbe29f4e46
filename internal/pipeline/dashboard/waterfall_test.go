package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeWaterfall(t *testing.T) {
	tests := []struct {
		name          string
		in            WaterfallInput
		wantNet       float64
		wantGross     float64
		wantOperating float64
		wantROI       float64
	}{
		{
			name:          "all zero",
			in:            WaterfallInput{},
			wantNet:       0,
			wantGross:     0,
			wantOperating: 0,
			wantROI:       0,
		},
		{
			name: "full cascade",
			in: WaterfallInput{
				GrossRevenue:        1000,
				Discounts:           -100,
				CostOfSales:         300,
				DistributionExpense: 100,
				AdminExpense:        50,
				Investment:          900,
			},
			wantNet:       900,
			wantGross:     600,
			wantOperating: 450,
			wantROI:       50,
		},
		{
			name: "no investment with positive profit",
			in: WaterfallInput{
				GrossRevenue: 500,
				CostOfSales:  100,
			},
			wantNet:       500,
			wantGross:     400,
			wantOperating: 400,
			wantROI:       0,
		},
		{
			name: "loss",
			in: WaterfallInput{
				GrossRevenue:        100.10,
				Discounts:           -0.05,
				CostOfSales:         80.333,
				DistributionExpense: 40.2,
				AdminExpense:        10,
				Investment:          200,
			},
			wantNet:       100.05,
			wantGross:     19.72,
			wantOperating: -30.48,
			wantROI:       -15.24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := ComputeWaterfall(tt.in)
			assert.Equal(t, tt.wantNet, wf.NetRevenue)
			assert.Equal(t, tt.wantGross, wf.GrossProfit)
			assert.Equal(t, tt.wantOperating, wf.OperatingProfit)
			assert.Equal(t, tt.wantROI, wf.ROI)

			// operating profit identity holds to rounding
			assert.InDelta(t, wf.NetRevenue-wf.CostOfSales-wf.DistributionExpense-wf.AdminExpense, wf.OperatingProfit, 0.011)
		})
	}
}

func TestComputeWaterfall_RatiosGuardZeroDenominators(t *testing.T) {
	wf := ComputeWaterfall(WaterfallInput{CostOfSales: 10, AdminExpense: 5})
	assert.Zero(t, wf.ROI)
	assert.Zero(t, wf.RealROI)
	assert.Zero(t, wf.GrossMargin)
	assert.Zero(t, wf.OperatingMargin)
	assert.Equal(t, -15.0, wf.OperatingProfit)
}

func TestComputeWaterfall_RealROIAndMargins(t *testing.T) {
	wf := ComputeWaterfall(WaterfallInput{
		GrossRevenue:   1000,
		CostOfSales:    400,
		AdminExpense:   100,
		Investment:     2000,
		RealInvestment: 1000,
	})
	assert.Equal(t, 25.0, wf.ROI)
	assert.Equal(t, 50.0, wf.RealROI)
	assert.Equal(t, 60.0, wf.GrossMargin)
	assert.Equal(t, 50.0, wf.OperatingMargin)
}
