package worker

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"github.com/tuneforge/api/internal/service"
)

// TaskTypeSweep is the asynq task type for the periodic reconciliation sweep.
const TaskTypeSweep = "tasks:sweep"

// SweepWorker runs the periodic reconciliation sweep.
type SweepWorker struct {
	sweeper *service.Sweeper
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(sweeper *service.Sweeper) *SweepWorker {
	return &SweepWorker{sweeper: sweeper}
}

// ProcessTask handles a scheduled sweep tick
func (w *SweepWorker) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	result, err := w.sweeper.Run(ctx)
	if err != nil {
		log.Printf("[SweepWorker] sweep failed: %v", err)
		return err
	}
	if result.Polled > 0 {
		log.Printf("[SweepWorker] polled=%d completed=%d failed=%d", result.Polled, result.Completed, result.Failed)
	}
	return nil
}

// NewSweepTask builds the periodic sweep task for scheduler registration
func NewSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSweep, nil)
}
