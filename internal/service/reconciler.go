package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
)

const (
	// Polling/backoff policy: flat 15s for the first attempts, then
	// exponential growth settling at a ~1 minute cadence.
	basePollInterval    = 15 * time.Second
	maxPollInterval     = 60 * time.Second
	backoffGrowthFactor = 1.2
	backoffFlatAttempts = 5

	// A task older than this is abandoned regardless of attempts left.
	maxTaskLifetime = 20 * time.Minute

	// DefaultMaxPollAttempts is the per-task poll cap.
	DefaultMaxPollAttempts = 30

	creditsPerSong = 10
)

// NextPollInterval computes the delay before the next status check for a
// task with the given attempt count.
func NextPollInterval(attempts int) time.Duration {
	exp := attempts - backoffFlatAttempts
	if exp < 0 {
		exp = 0
	}
	interval := time.Duration(float64(basePollInterval) * math.Pow(backoffGrowthFactor, float64(exp)))
	if interval > maxPollInterval {
		interval = maxPollInterval
	}
	return interval
}

// TaskEvents receives task lifecycle transitions. Satisfied by the
// websocket hub; a nil implementation is allowed.
type TaskEvents interface {
	BroadcastStatus(taskID string, status model.TaskStatus, pollAttempts int)
	BroadcastComplete(taskID string, songIDs []string)
	BroadcastError(taskID string, status model.TaskStatus, message string)
}

// SongArchiver schedules mirroring of a song's provider-hosted audio into
// durable storage. Enqueue failures are logged and never block completion.
type SongArchiver interface {
	EnqueueArchive(ctx context.Context, songID string) error
}

// ReconcileOutcome summarizes one reconciliation pass over a task.
type ReconcileOutcome struct {
	TaskID      string
	Status      model.TaskStatus
	NewSongIDs  []string
	Rescheduled bool
}

// Reconciler is the engine that drives a generation task to its terminal
// state: it queries the provider, classifies the clip results, persists
// new songs exactly once and updates the task's status and schedule.
//
// Correctness under concurrent invocation (sweep, recovery and inline
// checks may race on the same task) rests on two guarantees rather than
// locking: the song store's unique clipId constraint, and the task
// store's refusal to update finalized records.
type Reconciler struct {
	provider client.MusicGenerator
	tasks    store.TaskStore
	songs    store.SongStore
	users    store.UserStore
	archiver SongArchiver
	events   TaskEvents

	now func() time.Time
}

// NewReconciler creates a reconciler. archiver and events may be nil.
func NewReconciler(provider client.MusicGenerator, tasks store.TaskStore, songs store.SongStore, users store.UserStore, archiver SongArchiver, events TaskEvents) *Reconciler {
	return &Reconciler{
		provider: provider,
		tasks:    tasks,
		songs:    songs,
		users:    users,
		archiver: archiver,
		events:   events,
		now:      time.Now,
	}
}

// Reconcile performs one pass over a pending/in_progress task. A non-nil
// error means the task store itself failed; provider errors are absorbed
// into the outcome (reschedule or forced failure).
func (r *Reconciler) Reconcile(ctx context.Context, task *model.GenerationTask) (*ReconcileOutcome, error) {
	now := r.now()
	out := &ReconcileOutcome{TaskID: task.TaskID, Status: task.Status}

	// Terminal records are never polled again.
	if task.Status.IsTerminal() {
		return out, nil
	}

	if task.Age(now) > maxTaskLifetime {
		task.LastPolledAt = &now
		r.fail(task, now, model.TaskStatusAbandoned,
			fmt.Sprintf("task exceeded maximum lifetime of %s", maxTaskLifetime))
		return r.finalize(ctx, task, out)
	}

	resp, err := r.provider.GetTask(ctx, task.TaskID)
	task.LastPolledAt = &now
	if err != nil {
		log.Printf("[Reconcile] task %s: provider query failed: %v", task.TaskID, err)
		if task.PollAttempts >= task.MaxPollAttempts {
			r.fail(task, now, model.TaskStatusFailed,
				fmt.Sprintf("provider unreachable after %d attempts: %v", task.PollAttempts, err))
			return r.finalize(ctx, task, out)
		}
		r.reschedule(task, now)
		out.Status = task.Status
		out.Rescheduled = true
		return out, r.update(ctx, task)
	}

	if raw, merr := json.Marshal(resp); merr == nil {
		task.LastAPIResponse = string(raw)
	}

	succeeded, failedClips, inProgress := resp.Partition()

	switch {
	case len(succeeded) > 0:
		// Any succeeded clip completes the task, even when siblings
		// failed. Persist each unseen clip exactly once.
		songIDs, created := r.PersistSucceededClips(ctx, task, succeeded)
		if len(songIDs) == 0 {
			// Every persist hit a store error; completion would leave a
			// task with zero song references. Retry on the next cycle.
			log.Printf("[Reconcile] task %s: no songs persisted, rescheduling", task.TaskID)
			if task.PollAttempts >= task.MaxPollAttempts {
				r.fail(task, now, model.TaskStatusFailed, "failed to persist generated songs")
				return r.finalize(ctx, task, out)
			}
			r.reschedule(task, now)
			out.Status = task.Status
			out.Rescheduled = true
			return out, r.update(ctx, task)
		}

		task.GeneratedSongIDs = mergeIDs(task.GeneratedSongIDs, songIDs)
		task.Status = model.TaskStatusCompleted
		task.CompletedAt = &now

		for _, song := range created {
			out.NewSongIDs = append(out.NewSongIDs, song.ID.Hex())
		}

		outcome, err := r.finalize(ctx, task, out)
		if err != nil {
			return outcome, err
		}
		if outcome.Status == model.TaskStatusCompleted && len(created) > 0 {
			r.recordUsage(ctx, task.UserID, created)
		}
		return outcome, nil

	case len(failedClips) > 0 && len(inProgress) == 0:
		r.fail(task, now, model.TaskStatusFailed, "All songs in task failed")
		return r.finalize(ctx, task, out)

	default:
		// Clips still in progress, or none returned yet.
		if task.PollAttempts >= task.MaxPollAttempts {
			r.fail(task, now, model.TaskStatusFailed,
				fmt.Sprintf("no result after %d poll attempts", task.PollAttempts))
			return r.finalize(ctx, task, out)
		}
		r.reschedule(task, now)
		out.Status = task.Status
		out.Rescheduled = true
		return out, r.update(ctx, task)
	}
}

// PersistSucceededClips stores every succeeded clip that has no Song yet,
// skipping clips whose clipId already exists. It returns the song ids for
// all clips in the batch (existing and new) plus the newly created songs.
// Also used by the inline status check, which persists without touching
// the task's schedule.
func (r *Reconciler) PersistSucceededClips(ctx context.Context, task *model.GenerationTask, clips []client.Clip) (songIDs []string, created []*model.Song) {
	now := r.now()

	for _, clip := range clips {
		exists, err := r.songs.ExistsByClipID(ctx, clip.ClipID)
		if err != nil {
			log.Printf("[Reconcile] task %s: existence check for clip %s failed: %v", task.TaskID, clip.ClipID, err)
			continue
		}
		if exists {
			if existing, err := r.songs.GetByClipID(ctx, clip.ClipID); err == nil {
				songIDs = append(songIDs, existing.ID.Hex())
			}
			continue
		}

		song := &model.Song{
			ClipID:    clip.ClipID,
			TaskID:    task.TaskID,
			UserID:    task.UserID,
			Title:     clip.Title,
			Prompt:    task.Prompt,
			Lyrics:    clip.Lyrics,
			Tags:      clip.Tags,
			Duration:  clip.Duration,
			Model:     clip.MV,
			AudioURL:  clip.AudioURL,
			VideoURL:  clip.VideoURL,
			ImageURL:  clip.ImageURL,
			Status:    model.SongStatusCompleted,
			CreatedAt: now,
		}
		if song.Model == "" {
			song.Model = task.Model
		}
		if song.Title == "" {
			song.Title = task.Title
		}

		err = r.songs.Insert(ctx, song)
		switch {
		case err == nil:
			songIDs = append(songIDs, song.ID.Hex())
			created = append(created, song)
		case err == store.ErrDuplicateClip:
			// Another surface inserted it first; the index is the
			// authoritative signal. Not an error.
			if existing, gerr := r.songs.GetByClipID(ctx, clip.ClipID); gerr == nil {
				songIDs = append(songIDs, existing.ID.Hex())
			}
		default:
			log.Printf("[Reconcile] task %s: failed to persist clip %s: %v", task.TaskID, clip.ClipID, err)
		}
	}

	return songIDs, created
}

// reschedule increments the attempt counter and computes the next poll time.
func (r *Reconciler) reschedule(task *model.GenerationTask, now time.Time) {
	task.Status = model.TaskStatusInProgress
	task.PollAttempts++
	next := now.Add(NextPollInterval(task.PollAttempts))
	task.NextPollAt = &next
}

func (r *Reconciler) fail(task *model.GenerationTask, now time.Time, status model.TaskStatus, msg string) {
	task.Status = status
	task.ErrorMessage = msg
	task.FailedAt = &now
}

// finalize persists a terminal transition. A concurrent surface finishing
// first is benign: the stored record wins and its status is reported.
func (r *Reconciler) finalize(ctx context.Context, task *model.GenerationTask, out *ReconcileOutcome) (*ReconcileOutcome, error) {
	err := r.tasks.Update(ctx, task)
	if err == store.ErrTaskFinalized {
		if stored, gerr := r.tasks.GetByTaskID(ctx, task.TaskID); gerr == nil {
			out.Status = stored.Status
		} else {
			out.Status = task.Status
		}
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to update task %s: %w", task.TaskID, err)
	}

	out.Status = task.Status
	r.notify(task)
	return out, nil
}

func (r *Reconciler) update(ctx context.Context, task *model.GenerationTask) error {
	err := r.tasks.Update(ctx, task)
	if err == store.ErrTaskFinalized {
		// Lost the race against a finalizing surface; nothing to redo.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", task.TaskID, err)
	}
	if r.events != nil {
		r.events.BroadcastStatus(task.TaskID, task.Status, task.PollAttempts)
	}
	return nil
}

// recordUsage bumps informational counters and schedules media archiving.
// Both are best-effort: failures are logged and never affect the task.
func (r *Reconciler) recordUsage(ctx context.Context, userID string, created []*model.Song) {
	if r.users != nil {
		if err := r.users.IncrementUsage(ctx, userID, len(created), len(created)*creditsPerSong); err != nil {
			log.Printf("[Reconcile] usage increment failed for user %s: %v", userID, err)
		}
	}
	if r.archiver != nil {
		for _, song := range created {
			if err := r.archiver.EnqueueArchive(ctx, song.ID.Hex()); err != nil {
				log.Printf("[Reconcile] failed to enqueue archive for song %s: %v", song.ID.Hex(), err)
			}
		}
	}
}

func (r *Reconciler) notify(task *model.GenerationTask) {
	if r.events == nil {
		return
	}
	switch task.Status {
	case model.TaskStatusCompleted:
		r.events.BroadcastComplete(task.TaskID, task.GeneratedSongIDs)
	case model.TaskStatusFailed, model.TaskStatusAbandoned:
		r.events.BroadcastError(task.TaskID, task.Status, task.ErrorMessage)
	default:
		r.events.BroadcastStatus(task.TaskID, task.Status, task.PollAttempts)
	}
}

func mergeIDs(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing)+len(extra))
	merged := make([]string, 0, len(existing)+len(extra))
	for _, id := range existing {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	for _, id := range extra {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	return merged
}
