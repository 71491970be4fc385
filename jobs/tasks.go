// Package jobs defines background tasks and the Asynq worker that runs them.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReconSweep repairs purchase orders left unconverted after a
	// partial conversion (a bill exists but the status flip failed).
	TaskReconSweep = "recon:sweep"
)

// ReconSweepPayload parametrises a reconciliation sweep run.
type ReconSweepPayload struct {
	Reason string `json:"reason"`
}

// NewReconSweepTask constructs an Asynq task for the sweep.
func NewReconSweepTask(payload ReconSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconSweep, data), nil
}

// Sweeper is the billing capability the sweep task needs.
type Sweeper interface {
	SweepOrphanedBills(ctx context.Context) (int, error)
}

// NewReconSweepHandler builds the handler for TaskReconSweep tasks.
func NewReconSweepHandler(sweeper Sweeper, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReconSweepPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		repaired, err := sweeper.SweepOrphanedBills(ctx)
		if err != nil {
			logger.Error("reconciliation sweep failed", slog.Any("error", err))
			return err
		}
		logger.Info("reconciliation sweep done",
			slog.Int("repaired", repaired), slog.String("reason", payload.Reason))
		return nil
	}
}
