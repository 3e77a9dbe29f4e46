package app

import (
	"context"
	"fmt"
	"io"

	"github.com/andresuchdata/bizdash-go/internal/cache"
	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/pipeline"
	"github.com/andresuchdata/bizdash-go/internal/pipeline/dashboard"
	"github.com/andresuchdata/bizdash-go/internal/repository/postgres"
	"github.com/andresuchdata/bizdash-go/internal/service"
	"github.com/andresuchdata/bizdash-go/internal/sheets"
	"github.com/rs/zerolog/log"
)

// App holds the wired dependencies shared by the binaries.
type App struct {
	Config       *config.Config
	Backend      sheets.Backend
	Orchestrator *pipeline.Orchestrator
	Service      *service.DashboardService
	DB           *postgres.DB

	closers []io.Closer
}

// Options lets a binary swap the row source, e.g. for a local workbook.
type Options struct {
	Backend    sheets.Backend
	SourceName string
	// WithCache enables the redis report cache when configured.
	WithCache bool
	// WithArchive stores runs in postgres when the database is enabled.
	WithArchive bool
	// Archive overrides the archive chosen from the config.
	Archive pipeline.Archive
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Columns.Validate(); err != nil {
		return nil, err
	}
	ref, err := dashboard.ParseReferenceDate(cfg.Pipeline.ReferenceDate)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	backend := opts.Backend
	sourceName := opts.SourceName
	if backend == nil {
		backend, err = sheets.Open(ctx, cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("failed to open row source: %w", err)
		}
		sourceName = sheets.Name(cfg.Sheets)
	}
	a.Backend = backend
	if c, ok := backend.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	var archive pipeline.Archive = pipeline.NoopArchive{}
	switch {
	case opts.Archive != nil:
		archive = opts.Archive
	case opts.WithArchive && cfg.Database.Enabled:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := db.Migrate(ctx, pipeline.Schema); err != nil {
			_ = db.Close()
			a.Close()
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, db)
		archive = pipeline.NewRepository(db.DB)
		log.Info().Str("database", postgres.Redacted(cfg.Database)).Msg("app: report archive enabled")
	}

	reportCache := cache.NewNoopReportCache()
	if opts.WithCache {
		c, err := cache.NewReportCache(cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("app: report cache unavailable, continuing without cache")
		} else {
			reportCache = c
			a.closers = append(a.closers, c)
		}
	}

	a.Orchestrator = pipeline.NewOrchestrator(backend, pipeline.OrchestratorConfig{
		Name:   sourceName,
		Ranges: pipeline.RangesFromConfig(cfg.Sheets),
		Engine: dashboard.Options{
			Columns: cfg.Columns,
			Window:  dashboard.DateWindow{MinYear: cfg.Pipeline.MinYear, MaxYear: cfg.Pipeline.MaxYear},
		},
		Archive: archive,
	})
	a.Service = service.NewDashboardService(a.Orchestrator, backend, reportCache, sourceName, ref)

	return a, nil
}

// Close releases every resource opened by New, last opened first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("app: close failed")
		}
	}
	a.closers = nil
}
