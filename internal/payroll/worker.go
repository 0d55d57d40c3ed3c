package payroll

import (
	"context"
	"log/slog"

	"github.com/nomina-erp/nomina-erp/internal/employees"
	"github.com/nomina-erp/nomina-erp/internal/engine"
)

// Worker processes one chunk job at a time: it loads the page of employees
// and the period's formulas, calculates each employee with fault isolation,
// and persists the chunk's successes in one bulk write.
type Worker struct {
	repo      Repository
	employees employees.Repository
	calc      *Calculator
	logger    *slog.Logger
}

// NewWorker constructs the batch worker.
func NewWorker(repo Repository, emps employees.Repository, calc *Calculator, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{repo: repo, employees: emps, calc: calc, logger: logger}
}

// ProcessChunk handles one delivered chunk job. An unknown period is
// returned as an error so the queue's retry/dead-letter policy applies. A
// failed bulk write is logged and swallowed: the chunk's results are lost
// and recovery is a redispatch, not an automatic retry.
func (w *Worker) ProcessChunk(ctx context.Context, job ChunkJob) error {
	log := w.logger.With(slog.String("period", job.PeriodID), slog.Int("page", job.Page))
	log.Info("processing payroll chunk")

	period, err := w.repo.GetPeriodByIdentifier(ctx, job.PeriodID)
	if err != nil {
		return err
	}

	batch, err := w.employees.ListActivePage(ctx, job.Page, job.PageSize)
	if err != nil {
		return err
	}

	// Formulas are identical for every employee in the chunk; load once.
	globalFormulas, err := w.repo.ActiveFormulas(ctx, period.EndDate)
	if err != nil {
		return err
	}

	results := make([]engine.Result, 0, len(batch))
	failed := 0
	for _, emp := range batch {
		result, err := w.calc.CalculateForEmployee(ctx, emp, period, globalFormulas)
		if err != nil {
			failed++
			log.Error("employee calculation failed",
				slog.Int64("employee_id", emp.ID), slog.Any("error", err))
			continue
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		log.Info("chunk produced no results", slog.Int("failed", failed))
		return nil
	}

	if err := w.repo.SaveResults(ctx, results); err != nil {
		log.Error("bulk result write failed",
			slog.Int("results", len(results)), slog.Any("error", err))
		return nil
	}

	log.Info("chunk finished", slog.Int("saved", len(results)), slog.Int("failed", failed))
	return nil
}
