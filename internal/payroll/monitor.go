package payroll

import (
	"context"
	"log/slog"
)

// ProgressCache stages progress reports against repeated polling. Get must
// report a miss with ok=false rather than an error.
type ProgressCache interface {
	Get(ctx context.Context, periodID int64) (ProgressReport, bool)
	Set(ctx context.Context, report ProgressReport)
	Invalidate(ctx context.Context, periodID int64) error
}

// Monitor reports per-period completion and finalizes period status.
type Monitor struct {
	repo   Repository
	cache  ProgressCache
	logger *slog.Logger
}

// NewMonitor constructs the progress monitor. cache may be nil.
func NewMonitor(repo Repository, cache ProgressCache, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{repo: repo, cache: cache, logger: logger}
}

// Progress reports processed/expected counts for the period. Percentage uses
// integer truncation and is not clamped: more results than expected surface
// as >100. When the run is complete and the period not yet COMPLETED, the
// status transition is performed here; a concurrent double write is benign
// because the transition is idempotent.
func (m *Monitor) Progress(ctx context.Context, periodID int64) (ProgressReport, error) {
	if m.cache != nil {
		if report, ok := m.cache.Get(ctx, periodID); ok {
			return report, nil
		}
	}

	period, err := m.repo.GetPeriod(ctx, periodID)
	if err != nil {
		return ProgressReport{}, err
	}

	if period.TotalExpected == 0 {
		return ProgressReport{PeriodID: periodID, Status: period.Status}, nil
	}

	processed, err := m.repo.CountResults(ctx, period.PeriodIdentifier)
	if err != nil {
		return ProgressReport{}, err
	}

	percentage := processed * 100 / period.TotalExpected

	if percentage >= 100 && period.Status != StatusCompleted {
		if err := m.repo.UpdatePeriodStatus(ctx, periodID, StatusCompleted); err != nil {
			m.logger.Error("finalize period status",
				slog.Int64("period_id", periodID), slog.Any("error", err))
		} else {
			period.Status = StatusCompleted
		}
	}

	report := ProgressReport{
		PeriodID:   periodID,
		Total:      period.TotalExpected,
		Processed:  processed,
		Percentage: percentage,
		Status:     period.Status,
	}
	// Only terminal reports are staged: caching an in-flight report could
	// serve a stale, lower percentage after a fresher one was observed.
	if m.cache != nil && period.Status == StatusCompleted {
		m.cache.Set(ctx, report)
	}
	return report, nil
}
