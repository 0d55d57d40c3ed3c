package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nomina-erp/nomina-erp/internal/payroll"
)

// ChunkProcessor consumes one chunk job.
type ChunkProcessor interface {
	ProcessChunk(ctx context.Context, job payroll.ChunkJob) error
}

// EnqueuePayrollChunk enqueues one chunk job.
func (c *Client) EnqueuePayrollChunk(ctx context.Context, job payroll.ChunkJob) error {
	task, err := NewPayrollChunkTask(job)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// NewPayrollChunkHandler bridges Asynq delivery to the batch worker. A
// malformed payload skips retry: redelivering it cannot make it parse.
func NewPayrollChunkHandler(processor ChunkProcessor, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var job payroll.ChunkJob
		if err := json.Unmarshal(t.Payload(), &job); err != nil {
			logger.Error("malformed chunk payload", slog.Any("error", err))
			return asynq.SkipRetry
		}
		return processor.ProcessChunk(ctx, job)
	}
}
