package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/andresuchdata/bizdash-go/internal/pipeline/dashboard"
	"github.com/andresuchdata/bizdash-go/internal/sheets"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RangesFromConfig picks the per-source ranges out of the sheets config.
func RangesFromConfig(cfg config.SheetsConfig) Ranges {
	return Ranges{
		Sales:     cfg.SalesRange,
		Expenses:  cfg.ExpensesRange,
		Purchases: cfg.PurchasesRange,
		Inventory: cfg.InventoryRange,
	}
}

type OrchestratorConfig struct {
	// Name identifies the row source in run metadata, e.g. the spreadsheet ID.
	Name    string
	Ranges  Ranges
	Engine  dashboard.Options
	Archive Archive
	// Now stamps run times and the report's generatedAt; defaults to time.Now.
	Now func() time.Time
}

// Orchestrator gathers the four source ranges and runs the dashboard engine
// over them.
type Orchestrator struct {
	source  sheets.RowSource
	cfg     OrchestratorConfig
	archive Archive
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(source sheets.RowSource, cfg OrchestratorConfig) *Orchestrator {
	archive := cfg.Archive
	if archive == nil {
		archive = NoopArchive{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{
		source:  source,
		cfg:     cfg,
		archive: archive,
	}
}

// Gather fetches all sources concurrently. A source that fails is logged,
// recorded as unavailable and treated as an empty table, so Gather itself
// never fails because of one source.
func (o *Orchestrator) Gather(ctx context.Context) (dashboard.Tables, *dashboard.Diagnostics) {
	diag := dashboard.NewDiagnostics()

	jobs := []struct {
		source string
		a1     string
	}{
		{dashboard.SourceSales, o.cfg.Ranges.Sales},
		{dashboard.SourceExpenses, o.cfg.Ranges.Expenses},
		{dashboard.SourcePurchases, o.cfg.Ranges.Purchases},
		{dashboard.SourceInventory, o.cfg.Ranges.Inventory},
	}

	results := make([][][]any, len(jobs))
	failures := make([]error, len(jobs))

	// each job absorbs its own failure, so one source never cancels the others
	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if job.a1 == "" {
				failures[i] = fmt.Errorf("no range configured: %w", domain.ErrSourceUnavailable)
				return nil
			}
			rows, err := o.source.FetchRange(ctx, job.a1)
			if err != nil {
				failures[i] = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	// recorded after the join so diagnostics keep source order
	for i, job := range jobs {
		if failures[i] == nil {
			continue
		}
		log.Warn().
			Err(failures[i]).
			Str("source", job.source).
			Str("range", job.a1).
			Msg("pipeline: source unavailable, continuing with an empty table")
		diag.Unavailable(job.source, failures[i])
	}

	return dashboard.Tables{
		Sales:     results[0],
		Expenses:  results[1],
		Purchases: results[2],
		Inventory: results[3],
	}, diag
}

// Run gathers the sources and builds the report for the reference date. The
// finished run is handed to the archive; archive failures are only logged.
func (o *Orchestrator) Run(ctx context.Context, ref time.Time) (*domain.DashboardReport, *ReportRun, error) {
	if o.source == nil {
		return nil, nil, fmt.Errorf("row source is not configured: %w", domain.ErrInvalidConfig)
	}

	run := &ReportRun{
		ID:            uuid.New(),
		Source:        o.cfg.Name,
		ReferenceDate: ref,
		Status:        StatusProcessing,
		StartedAt:     o.cfg.Now().UTC(),
	}

	tables, diag := o.Gather(ctx)
	if err := ctx.Err(); err != nil {
		o.finish(ctx, run, nil, err)
		return nil, run, err
	}

	rows := tables.Rows()
	run.SalesRows = rows[dashboard.SourceSales]
	run.ExpenseRows = rows[dashboard.SourceExpenses]
	run.PurchaseRows = rows[dashboard.SourcePurchases]
	run.InventoryRows = rows[dashboard.SourceInventory]

	opts := o.cfg.Engine
	opts.ReferenceDate = ref
	report, err := dashboard.NewEngine(opts).BuildWithDiagnostics(tables, diag)
	if err == nil {
		report.GeneratedAt = o.cfg.Now().UTC()
	}
	o.finish(ctx, run, report, err)
	if err != nil {
		return nil, run, err
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Str("source", run.Source).
		Int("diagnostics", run.DiagnosticCount).
		Dur("duration", run.CompletedAt.Sub(run.StartedAt)).
		Msg("pipeline: report run completed")

	return report, run, nil
}

func (o *Orchestrator) finish(ctx context.Context, run *ReportRun, report *domain.DashboardReport, runErr error) {
	now := o.cfg.Now().UTC()
	run.CompletedAt = &now

	if runErr != nil {
		run.Status = StatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = StatusCompleted
		run.DiagnosticCount = len(report.DebugInfo.Diagnostics)
		payload, err := json.Marshal(report)
		if err != nil {
			log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("pipeline: failed to encode report for archive")
		} else {
			run.Report = types.JSONText(payload)
		}
	}

	// a cancelled request still gets its run archived
	if err := o.archive.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("pipeline: failed to archive report run")
	}
}
