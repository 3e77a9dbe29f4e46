package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// RunStatus represents the current state of a report run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Ranges holds the A1 range of each source, e.g. "VENTAS!A:R".
type Ranges struct {
	Sales     string
	Expenses  string
	Purchases string
	Inventory string
}

// ReportRun tracks a single computation of the dashboard report
type ReportRun struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	Source          string         `db:"source" json:"source"`
	ReferenceDate   time.Time      `db:"reference_date" json:"referenceDate"`
	Status          RunStatus      `db:"status" json:"status"`
	SalesRows       int            `db:"sales_rows" json:"salesRows"`
	ExpenseRows     int            `db:"expense_rows" json:"expenseRows"`
	PurchaseRows    int            `db:"purchase_rows" json:"purchaseRows"`
	InventoryRows   int            `db:"inventory_rows" json:"inventoryRows"`
	DiagnosticCount int            `db:"diagnostic_count" json:"diagnosticCount"`
	StartedAt       time.Time      `db:"started_at" json:"startedAt"`
	CompletedAt     *time.Time     `db:"completed_at" json:"completedAt,omitempty"`
	ErrorMessage    string         `db:"error_message" json:"errorMessage,omitempty"`
	Report          types.JSONText `db:"report" json:"-"`
}

// Archive stores finished runs for audit. Runs never read from it.
type Archive interface {
	SaveRun(ctx context.Context, run *ReportRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*ReportRun, error)
	ListRuns(ctx context.Context, limit int) ([]ReportRun, error)
}

// NoopArchive drops every run.
type NoopArchive struct{}

func (NoopArchive) SaveRun(context.Context, *ReportRun) error { return nil }

func (NoopArchive) GetRun(context.Context, uuid.UUID) (*ReportRun, error) { return nil, nil }

func (NoopArchive) ListRuns(context.Context, int) ([]ReportRun, error) { return nil, nil }
