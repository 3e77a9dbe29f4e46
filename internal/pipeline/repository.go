package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Schema creates the archive table. Reports are stored as JSONB.
const Schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id               UUID PRIMARY KEY,
	source           TEXT NOT NULL,
	reference_date   DATE NOT NULL,
	status           TEXT NOT NULL,
	sales_rows       INTEGER NOT NULL DEFAULT 0,
	expense_rows     INTEGER NOT NULL DEFAULT 0,
	purchase_rows    INTEGER NOT NULL DEFAULT 0,
	inventory_rows   INTEGER NOT NULL DEFAULT 0,
	diagnostic_count INTEGER NOT NULL DEFAULT 0,
	started_at       TIMESTAMPTZ NOT NULL,
	completed_at     TIMESTAMPTZ,
	error_message    TEXT NOT NULL DEFAULT '',
	report           JSONB
);
CREATE INDEX IF NOT EXISTS idx_report_runs_started_at ON report_runs (started_at DESC);
`

// Repository archives report runs in postgres
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new run repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveRun inserts the run or updates it when the ID already exists
func (r *Repository) SaveRun(ctx context.Context, run *ReportRun) error {
	query := `
		INSERT INTO report_runs (
			id, source, reference_date, status, sales_rows, expense_rows,
			purchase_rows, inventory_rows, diagnostic_count, started_at,
			completed_at, error_message, report
		) VALUES (
			:id, :source, :reference_date, :status, :sales_rows, :expense_rows,
			:purchase_rows, :inventory_rows, :diagnostic_count, :started_at,
			:completed_at, :error_message, :report
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			diagnostic_count = EXCLUDED.diagnostic_count,
			completed_at = EXCLUDED.completed_at,
			error_message = EXCLUDED.error_message,
			report = EXCLUDED.report
	`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to save report run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run, including its report, by ID
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*ReportRun, error) {
	query := `
		SELECT id, source, reference_date, status, sales_rows, expense_rows,
		       purchase_rows, inventory_rows, diagnostic_count, started_at,
		       completed_at, error_message, report
		FROM report_runs
		WHERE id = $1
	`

	run := &ReportRun{}
	err := r.db.GetContext(ctx, run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the latest runs without their report payload
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, source, reference_date, status, sales_rows, expense_rows,
		       purchase_rows, inventory_rows, diagnostic_count, started_at,
		       completed_at, error_message
		FROM report_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []ReportRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
