package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/nomina-erp/nomina-erp/internal/payroll"
)

// ProgressReporter evaluates one period's completion.
type ProgressReporter interface {
	Progress(ctx context.Context, periodID int64) (payroll.ProgressReport, error)
}

// ProgressSweepJob walks PROCESSING periods and evaluates their progress,
// flipping fully-persisted ones to COMPLETED without waiting for a client
// to poll the monitor endpoint.
type ProgressSweepJob struct {
	repo    payroll.Repository
	monitor ProgressReporter
	logger  *slog.Logger
}

// NewProgressSweepJob constructs the sweep job.
func NewProgressSweepJob(repo payroll.Repository, monitor ProgressReporter, logger *slog.Logger) *ProgressSweepJob {
	return &ProgressSweepJob{repo: repo, monitor: monitor, logger: logger}
}

// Handle runs one sweep.
func (j *ProgressSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ProgressSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	periods, err := j.repo.ListPeriodsByStatus(ctx, payroll.StatusProcessing)
	if err != nil {
		return err
	}
	if len(periods) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, period := range periods {
		g.Go(func() error {
			report, err := j.monitor.Progress(ctx, period.ID)
			if err != nil {
				j.logger.Warn("progress sweep",
					slog.Int64("period_id", period.ID), slog.Any("error", err))
				return nil
			}
			j.logger.Info("progress sweep",
				slog.Int64("period_id", period.ID),
				slog.Int("percentage", report.Percentage),
				slog.String("status", report.Status))
			return nil
		})
	}
	return g.Wait()
}
