package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/andresuchdata/bizdash-go/internal/pipeline/dashboard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource struct {
	mu     sync.Mutex
	tables map[string][][]any
	errs   map[string]error
	calls  []string
}

func (m *mapSource) FetchRange(_ context.Context, a1 string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, a1)
	if err := m.errs[a1]; err != nil {
		return nil, err
	}
	return m.tables[a1], nil
}

type memArchive struct {
	runs []ReportRun
	err  error
}

func (m *memArchive) SaveRun(_ context.Context, run *ReportRun) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memArchive) GetRun(_ context.Context, id uuid.UUID) (*ReportRun, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memArchive) ListRuns(context.Context, int) ([]ReportRun, error) {
	return m.runs, nil
}

var testRanges = Ranges{
	Sales:     "VENTAS!A:R",
	Expenses:  "GASTOS OPERATIVOS!A:O",
	Purchases: "COMPRAS!A:T",
	Inventory: "INVENTARIO!A:J",
}

func row(width int, cells map[int]any) []any {
	out := make([]any, width)
	for i := range out {
		out[i] = ""
	}
	for i, v := range cells {
		out[i] = v
	}
	return out
}

func salesTable() [][]any {
	return [][]any{
		row(18, map[int]any{0: "ID", 1: "FECHA"}),
		row(18, map[int]any{1: "01/10/2024", 2: "POL-01", 3: "Polo", 4: "ROPA", 6: "100", 7: "0", 8: "1", 12: "Tienda"}),
		row(18, map[int]any{1: "02/10/2024", 2: "POL-01", 3: "Polo", 4: "ROPA", 6: "50", 7: "0", 8: "1", 12: "Web"}),
	}
}

func expensesTable() [][]any {
	return [][]any{
		row(15, map[int]any{0: "ID"}),
		row(15, map[int]any{1: "PRINCIPAL", 2: "01/15/2024", 4: "Alquiler", 8: "40", 9: "GAD"}),
	}
}

func TestOrchestrator_Gather(t *testing.T) {
	src := &mapSource{tables: map[string][][]any{
		testRanges.Sales:    salesTable(),
		testRanges.Expenses: expensesTable(),
	}}
	o := NewOrchestrator(src, OrchestratorConfig{Ranges: testRanges})

	tables, diag := o.Gather(context.Background())

	assert.Len(t, tables.Sales, 3)
	assert.Len(t, tables.Expenses, 2)
	assert.Empty(t, tables.Purchases)
	assert.ElementsMatch(t, []string{testRanges.Sales, testRanges.Expenses, testRanges.Purchases, testRanges.Inventory}, src.calls)
	assert.Empty(t, diag.UnavailableSources())
}

func TestOrchestrator_GatherDegradesFailingSource(t *testing.T) {
	tests := []struct {
		name   string
		ranges Ranges
		errs   map[string]error
		want   []string
	}{
		{
			name:   "fetch error",
			ranges: testRanges,
			errs:   map[string]error{testRanges.Purchases: errors.New("quota exceeded")},
			want:   []string{dashboard.SourcePurchases},
		},
		{
			name:   "missing range",
			ranges: Ranges{Sales: testRanges.Sales, Expenses: testRanges.Expenses, Purchases: testRanges.Purchases},
			want:   []string{dashboard.SourceInventory},
		},
		{
			name:   "every source down",
			ranges: testRanges,
			errs: map[string]error{
				testRanges.Sales:     errors.New("down"),
				testRanges.Expenses:  errors.New("down"),
				testRanges.Purchases: errors.New("down"),
				testRanges.Inventory: errors.New("down"),
			},
			want: []string{dashboard.SourceSales, dashboard.SourceExpenses, dashboard.SourcePurchases, dashboard.SourceInventory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mapSource{
				tables: map[string][][]any{testRanges.Sales: salesTable()},
				errs:   tt.errs,
			}
			o := NewOrchestrator(src, OrchestratorConfig{Ranges: tt.ranges})

			_, diag := o.Gather(context.Background())

			assert.Equal(t, tt.want, diag.UnavailableSources())
			assert.Equal(t, len(tt.want), diag.Count(dashboard.ReasonSourceUnavailable))
			for _, e := range diag.Entries() {
				assert.Contains(t, e.Value, domain.ErrSourceUnavailable.Error())
			}
		})
	}
}

func TestOrchestrator_Run(t *testing.T) {
	src := &mapSource{
		tables: map[string][][]any{
			testRanges.Sales:    salesTable(),
			testRanges.Expenses: expensesTable(),
		},
		errs: map[string]error{testRanges.Inventory: errors.New("timeout")},
	}
	archive := &memArchive{}
	o := NewOrchestrator(src, OrchestratorConfig{Name: "sheet-123", Ranges: testRanges, Archive: archive})

	ref := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	report, run, err := o.Run(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 150.0, report.NetRevenue)
	assert.Equal(t, 40.0, report.AdminExpense)
	assert.Equal(t, "2024-06-30", report.ReferenceDate)
	assert.Contains(t, report.DebugInfo.UnavailableSources, dashboard.SourceInventory)

	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, "sheet-123", run.Source)
	assert.Equal(t, 2, run.SalesRows)
	assert.Equal(t, 1, run.ExpenseRows)
	assert.Equal(t, 0, run.InventoryRows)
	assert.Equal(t, len(report.DebugInfo.Diagnostics), run.DiagnosticCount)
	require.NotNil(t, run.CompletedAt)

	require.Len(t, archive.runs, 1)
	var archived domain.DashboardReport
	require.NoError(t, json.Unmarshal(archive.runs[0].Report, &archived))
	assert.Equal(t, 150.0, archived.NetRevenue)
}

func TestOrchestrator_RunUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)
	src := &mapSource{tables: map[string][][]any{testRanges.Sales: salesTable()}}
	o := NewOrchestrator(src, OrchestratorConfig{Ranges: testRanges, Now: func() time.Time { return fixed }})

	report, run, err := o.Run(context.Background(), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, fixed, report.GeneratedAt)
	assert.Equal(t, fixed, run.StartedAt)
	require.NotNil(t, run.CompletedAt)
	assert.Equal(t, fixed, *run.CompletedAt)
}

func TestOrchestrator_RunArchiveFailureIsNotFatal(t *testing.T) {
	src := &mapSource{tables: map[string][][]any{testRanges.Sales: salesTable()}}
	o := NewOrchestrator(src, OrchestratorConfig{Ranges: testRanges, Archive: &memArchive{err: errors.New("db down")}})

	report, run, err := o.Run(context.Background(), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, StatusCompleted, run.Status)
}

func TestOrchestrator_RunErrors(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		_, _, err := NewOrchestrator(nil, OrchestratorConfig{Ranges: testRanges}).Run(context.Background(), time.Now())
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		archive := &memArchive{}
		o := NewOrchestrator(&mapSource{}, OrchestratorConfig{Ranges: testRanges, Archive: archive})
		_, run, err := o.Run(ctx, time.Now())
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, run)
		assert.Equal(t, StatusFailed, run.Status)
		require.Len(t, archive.runs, 1)
		assert.Equal(t, StatusFailed, archive.runs[0].Status)
	})
}

func TestRangesFromConfig(t *testing.T) {
	r := RangesFromConfig(config.SheetsConfig{SalesRange: "V!A:R", InventoryRange: "I!A:J"})
	assert.Equal(t, Ranges{Sales: "V!A:R", Inventory: "I!A:J"}, r)
}
