package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nomina-erp/nomina-erp/internal/employees"
	"github.com/nomina-erp/nomina-erp/internal/shared"
)

// Enqueuer pushes chunk jobs onto the durable queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job ChunkJob) error
}

// EnqueuerFunc adapts a function to the Enqueuer interface.
type EnqueuerFunc func(ctx context.Context, job ChunkJob) error

// Enqueue calls the wrapped function.
func (f EnqueuerFunc) Enqueue(ctx context.Context, job ChunkJob) error {
	return f(ctx, job)
}

// ProgressInvalidator drops any staged progress snapshot for a period so the
// next monitor read sees fresh state.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, periodID int64) error
}

// DispatchSummary reports what one dispatch call produced.
type DispatchSummary struct {
	RunID     string `json:"run_id"`
	Employees int    `json:"employees"`
	Chunks    int    `json:"chunks"`
}

// Dispatcher partitions the active population into fixed-size chunks and
// enqueues one job per chunk.
type Dispatcher struct {
	repo      Repository
	employees employees.Repository
	queue     Enqueuer
	progress  ProgressInvalidator
	chunkSize int
	logger    *slog.Logger
}

// NewDispatcher constructs a dispatcher. chunkSize falls back to
// DefaultChunkSize when non-positive; progress may be nil.
func NewDispatcher(repo Repository, emps employees.Repository, queue Enqueuer, progress ProgressInvalidator, chunkSize int, logger *slog.Logger) *Dispatcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		repo:      repo,
		employees: emps,
		queue:     queue,
		progress:  progress,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Dispatch counts the active population, records the expectation on the
// period, then enqueues one job per chunk. The totalExpected write happens
// before any enqueue: monitoring correctness depends on it.
func (d *Dispatcher) Dispatch(ctx context.Context, periodIdentifier string) (DispatchSummary, error) {
	period, err := d.repo.GetPeriodByIdentifier(ctx, periodIdentifier)
	if err != nil {
		return DispatchSummary{}, err
	}

	// Drop any staged snapshot so counts are read fresh for this run.
	if d.progress != nil {
		if err := d.progress.Invalidate(ctx, period.ID); err != nil {
			d.logger.Warn("invalidate progress snapshot",
				slog.Int64("period_id", period.ID), slog.Any("error", err))
		}
	}

	total, err := d.employees.CountActive(ctx)
	if err != nil {
		return DispatchSummary{}, fmt.Errorf("count active employees: %w", err)
	}

	if err := d.repo.UpdatePeriodExpected(ctx, period.ID, total, StatusProcessing); err != nil {
		return DispatchSummary{}, fmt.Errorf("record expected total: %w", err)
	}

	chunks := shared.ChunkCount(total, d.chunkSize)
	runID := uuid.NewString()
	d.logger.Info("dispatching payroll run",
		slog.String("run_id", runID),
		slog.String("period", periodIdentifier),
		slog.Int("employees", total),
		slog.Int("chunks", chunks))

	for page := 0; page < chunks; page++ {
		job := ChunkJob{PeriodID: periodIdentifier, Page: page, PageSize: d.chunkSize}
		if err := d.queue.Enqueue(ctx, job); err != nil {
			return DispatchSummary{}, fmt.Errorf("enqueue chunk %d: %w", page, err)
		}
	}

	return DispatchSummary{RunID: runID, Employees: total, Chunks: chunks}, nil
}
