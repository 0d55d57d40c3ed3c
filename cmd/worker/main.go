package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nomina-erp/nomina-erp/internal/app"
	"github.com/nomina-erp/nomina-erp/internal/employees"
	"github.com/nomina-erp/nomina-erp/internal/formula"
	"github.com/nomina-erp/nomina-erp/internal/payroll"
	"github.com/nomina-erp/nomina-erp/internal/platform/db"
	"github.com/nomina-erp/nomina-erp/internal/tax"
	"github.com/nomina-erp/nomina-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	employeeRepo := employees.NewRepository(pool)
	payrollRepo := payroll.NewRepository(pool)

	taxResolver := tax.NewResolver(tax.NewRepository(pool), logger)
	formulaEngine := formula.NewEngine(formula.NewLibrary(taxResolver), logger, formula.EngineConfig{})

	calculator := payroll.NewCalculator(payrollRepo, formulaEngine, nil, logger)
	batchWorker := payroll.NewWorker(payrollRepo, employeeRepo, calculator, logger)
	monitor := payroll.NewMonitor(payrollRepo, nil, logger)
	sweepJob := jobs.NewProgressSweepJob(payrollRepo, monitor, logger)

	sweepTask, err := jobs.NewProgressSweepTask(time.Now().UTC())
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPayrollChunk, Handler: jobs.NewPayrollChunkHandler(batchWorker, logger)},
			{Type: jobs.TaskProgressSweep, Handler: sweepJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
