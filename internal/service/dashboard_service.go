package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/cache"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/andresuchdata/bizdash-go/internal/pipeline"
	"github.com/andresuchdata/bizdash-go/internal/pipeline/dashboard"
	"github.com/andresuchdata/bizdash-go/internal/sheets"
	"github.com/rs/zerolog/log"
)

// ErrInvalidReferenceDate is returned for a reference date that is not
// YYYY-MM-DD.
var ErrInvalidReferenceDate = errors.New("invalid reference date")

// ReportRunner computes one report for a reference date.
type ReportRunner interface {
	Run(ctx context.Context, ref time.Time) (*domain.DashboardReport, *pipeline.ReportRun, error)
}

type DashboardService struct {
	runner   ReportRunner
	verifier sheets.Verifier
	cache    cache.ReportCache
	source   string
	fixedRef time.Time
	now      func() time.Time
}

// NewDashboardService wires the report runner behind the cache. source keys
// the cache, fixedRef (when non-zero) replaces "today" as the default
// reference date.
func NewDashboardService(runner ReportRunner, verifier sheets.Verifier, cacheImpl cache.ReportCache, source string, fixedRef time.Time) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &DashboardService{
		runner:   runner,
		verifier: verifier,
		cache:    cacheImpl,
		source:   source,
		fixedRef: fixedRef,
		now:      time.Now,
	}
}

// GetReport returns the report for date (YYYY-MM-DD, empty for the default),
// serving from the cache when possible.
func (s *DashboardService) GetReport(ctx context.Context, date string) (*domain.DashboardReport, error) {
	ref, err := s.ReferenceDate(date)
	if err != nil {
		return nil, err
	}
	key := ref.Format("2006-01-02")

	if report, ok, err := s.cache.Get(ctx, s.source, key); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get report failed")
	}

	return s.compute(ctx, ref)
}

// Refresh recomputes the report ignoring any cached copy.
func (s *DashboardService) Refresh(ctx context.Context, date string) (*domain.DashboardReport, error) {
	ref, err := s.ReferenceDate(date)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, ref)
}

func (s *DashboardService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

// Verify checks access to the spreadsheet and lists its sheets.
func (s *DashboardService) Verify(ctx context.Context) (*sheets.SpreadsheetInfo, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("spreadsheet verification is not configured: %w", domain.ErrInvalidConfig)
	}
	return s.verifier.Verify(ctx)
}

func (s *DashboardService) compute(ctx context.Context, ref time.Time) (*domain.DashboardReport, error) {
	report, run, err := s.runner.Run(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard report: %w", err)
	}

	if err := s.cache.Set(ctx, s.source, ref.Format("2006-01-02"), report); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set report failed")
	}

	if run != nil {
		log.Debug().Str("run_id", run.ID.String()).Msg("dashboard: report computed")
	}
	return report, nil
}

// ReferenceDate resolves date, falling back to the configured date and then
// to today (UTC, midnight).
func (s *DashboardService) ReferenceDate(date string) (time.Time, error) {
	ref, err := dashboard.ParseReferenceDate(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidReferenceDate, date)
	}
	if !ref.IsZero() {
		return ref, nil
	}
	if !s.fixedRef.IsZero() {
		return s.fixedRef, nil
	}
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
}
