package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nomina-erp/nomina-erp/internal/payroll"
)

const (
	// QueueDefault is the queue name for payroll background jobs.
	QueueDefault = "default"
	// TaskPayrollChunk carries one chunk of the active population.
	TaskPayrollChunk = "payroll:chunk"
	// TaskProgressSweep periodically finalizes periods whose results are
	// all persisted, so completion does not depend on a client polling.
	TaskProgressSweep = "payroll:progress_sweep"
)

// NewPayrollChunkTask constructs an Asynq task for one chunk job.
func NewPayrollChunkTask(job payroll.ChunkJob) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayrollChunk, data, asynq.Queue(QueueDefault)), nil
}

// ProgressSweepPayload carries scheduling metadata.
type ProgressSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewProgressSweepTask constructs an Asynq task for the progress sweep.
func NewProgressSweepTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(ProgressSweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProgressSweep, data, asynq.Queue(QueueDefault)), nil
}
