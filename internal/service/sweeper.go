package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
)

const (
	defaultSweepBatchSize = 10

	// recoveryWindow bounds the user-initiated recovery pass.
	recoveryWindow = 24 * time.Hour
)

// SweepResult counts what one sweep invocation did.
type SweepResult struct {
	Polled    int
	Completed int
	Failed    int
}

// Sweeper reconciles all due tasks in bounded batches. It is stateless
// between invocations: each run independently queries the task store for
// due work, so it can be driven by the scheduler, an external cron hitting
// the HTTP trigger, or both, without coordination.
type Sweeper struct {
	reconciler *Reconciler
	tasks      store.TaskStore
	batchSize  int
}

func NewSweeper(reconciler *Reconciler, tasks store.TaskStore, batchSize int) *Sweeper {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &Sweeper{
		reconciler: reconciler,
		tasks:      tasks,
		batchSize:  batchSize,
	}
}

// Run reconciles up to batchSize due tasks sequentially. One task's
// failure never aborts the batch. A non-nil error means the store query
// itself failed; per-task errors are absorbed into the counts.
func (s *Sweeper) Run(ctx context.Context) (*SweepResult, error) {
	sweepID := uuid.New().String()[:8]
	result := &SweepResult{}

	due, err := s.tasks.ListDue(ctx, s.reconciler.now(), s.batchSize)
	if err != nil {
		return result, err
	}

	if len(due) == 0 {
		return result, nil
	}

	log.Printf("[Sweep %s] reconciling %d due task(s)", sweepID, len(due))

	for _, task := range due {
		outcome := s.reconcileOne(ctx, task, sweepID)
		if outcome == nil {
			continue
		}
		result.Polled++
		switch outcome.Status {
		case model.TaskStatusCompleted:
			result.Completed++
		case model.TaskStatusFailed, model.TaskStatusAbandoned:
			result.Failed++
		}
	}

	log.Printf("[Sweep %s] done: polled=%d completed=%d failed=%d",
		sweepID, result.Polled, result.Completed, result.Failed)
	return result, nil
}

// reconcileOne isolates a single task: errors and panics are contained so
// the rest of the batch proceeds.
func (s *Sweeper) reconcileOne(ctx context.Context, task *model.GenerationTask, sweepID string) (outcome *ReconcileOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Sweep %s] panic reconciling task %s: %v", sweepID, task.TaskID, rec)
			outcome = s.quarantine(ctx, task)
		}
	}()

	outcome, err := s.reconciler.Reconcile(ctx, task)
	if err != nil {
		log.Printf("[Sweep %s] task %s: %v", sweepID, task.TaskID, err)
		outcome = s.quarantine(ctx, task)
	}
	return outcome
}

// quarantine reschedules a task that blew up mid-reconcile, or fails it
// when its attempts are spent.
func (s *Sweeper) quarantine(ctx context.Context, task *model.GenerationTask) *ReconcileOutcome {
	now := s.reconciler.now()
	out := &ReconcileOutcome{TaskID: task.TaskID}

	if task.Status.IsTerminal() {
		out.Status = task.Status
		return out
	}

	if task.PollAttempts >= task.MaxPollAttempts {
		s.reconciler.fail(task, now, model.TaskStatusFailed, "reconciliation failed and poll attempts exhausted")
	} else {
		s.reconciler.reschedule(task, now)
		out.Rescheduled = true
	}
	out.Status = task.Status

	if err := s.tasks.Update(ctx, task); err != nil && err != store.ErrTaskFinalized {
		log.Printf("[Sweep] failed to quarantine task %s: %v", task.TaskID, err)
	}
	return out
}

// RecoverUser reconciles all of one user's non-terminal tasks from the
// last 24 hours immediately, bypassing the poll schedule. It applies the
// same classification and deduplication rules as the scheduled sweep.
func (s *Sweeper) RecoverUser(ctx context.Context, userID string) (*model.RecoveryResponse, error) {
	since := s.reconciler.now().Add(-recoveryWindow)

	active, err := s.tasks.ListActiveByUser(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	resp := &model.RecoveryResponse{
		Success: true,
		Details: make([]model.TaskRecoveryDetail, 0, len(active)),
	}

	for _, task := range active {
		outcome := s.reconcileOne(ctx, task, "recovery")
		if outcome == nil {
			continue
		}
		resp.RecoveredTasks++
		if outcome.Status == model.TaskStatusCompleted {
			resp.CompletedTasks++
		}

		songCount := len(task.GeneratedSongIDs)
		resp.Details = append(resp.Details, model.TaskRecoveryDetail{
			TaskID:    task.TaskID,
			Status:    outcome.Status,
			SongCount: songCount,
		})
	}

	return resp, nil
}
