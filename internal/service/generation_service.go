package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
)

// GenerationService submits generation requests and serves the
// user-facing task views.
type GenerationService struct {
	provider   client.MusicGenerator
	tasks      store.TaskStore
	users      store.UserStore
	personas   store.PersonaStore
	songs      store.SongStore
	reconciler *Reconciler

	defaultModel string
	now          func() time.Time
}

func NewGenerationService(provider client.MusicGenerator, tasks store.TaskStore, users store.UserStore, personas store.PersonaStore, songs store.SongStore, reconciler *Reconciler, defaultModel string) *GenerationService {
	return &GenerationService{
		provider:     provider,
		tasks:        tasks,
		users:        users,
		personas:     personas,
		songs:        songs,
		reconciler:   reconciler,
		defaultModel: defaultModel,
		now:          time.Now,
	}
}

// Submit sends a generation request to the provider and creates the task
// record that the reconciliation engine will drive to completion.
func (s *GenerationService) Submit(ctx context.Context, userID, email, name string, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	user, err := s.users.Ensure(ctx, userID, email, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Status == model.UserStatusSuspended {
		return nil, ErrUserSuspended
	}

	tags := req.Tags
	if req.PersonaID != "" {
		persona, err := s.personas.GetByID(ctx, req.PersonaID, userID)
		if err != nil {
			if err == store.ErrNotFound {
				return nil, ErrPersonaNotFound
			}
			return nil, fmt.Errorf("failed to load persona: %w", err)
		}
		tags = mergeTags(tags, persona.StyleTags)
		if persona.VoicePrompt != "" {
			req.Prompt = persona.VoicePrompt + "\n\n" + req.Prompt
		}
	}

	modelID := req.Model
	if modelID == "" {
		modelID = s.defaultModel
	}

	submitted, err := s.provider.SubmitGeneration(ctx, &client.GenerateMusicRequest{
		Prompt:           req.Prompt,
		Title:            req.Title,
		Tags:             strings.Join(tags, ", "),
		MV:               modelID,
		MakeInstrumental: req.Instrumental,
	})
	if err != nil {
		return nil, fmt.Errorf("provider rejected generation request: %w", err)
	}

	now := s.now()
	firstPoll := now.Add(NextPollInterval(0))
	task := &model.GenerationTask{
		TaskID:          submitted.TaskID,
		UserID:          userID,
		Prompt:          req.Prompt,
		Title:           req.Title,
		Tags:            tags,
		Model:           modelID,
		Instrumental:    req.Instrumental,
		PersonaID:       req.PersonaID,
		Status:          model.TaskStatusPending,
		MaxPollAttempts: DefaultMaxPollAttempts,
		NextPollAt:      &firstPoll,
		CreatedAt:       now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	log.Printf("[Generate] user %s submitted task %s (model=%s)", userID, task.TaskID, modelID)

	return &model.GenerateResponse{
		TaskID:    task.TaskID,
		Status:    task.Status,
		CreatedAt: task.CreatedAt,
	}, nil
}

// Status is the inline status-check surface: it queries the provider
// directly and opportunistically persists newly-succeeded clips through
// the shared dedup path, but never touches the task's scheduling fields.
func (s *GenerationService) Status(ctx context.Context, userID, taskID string) (*model.TaskStatusResponse, error) {
	task, err := s.tasks.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, store.ErrNotFound
	}

	if !task.Status.IsTerminal() {
		if resp, perr := s.provider.GetTask(ctx, taskID); perr == nil {
			succeeded, _, _ := resp.Partition()
			if len(succeeded) > 0 {
				s.reconciler.PersistSucceededClips(ctx, task, succeeded)
			}
		} else {
			// Read-mostly surface: fall back to the stored record.
			log.Printf("[Status] task %s: provider query failed: %v", taskID, perr)
		}
	}

	return s.statusResponse(ctx, task), nil
}

// Pending returns the derived view of a user's outstanding tasks from the
// authoritative task store, reconciling any that are due. There is no
// second writable copy of this list.
func (s *GenerationService) Pending(ctx context.Context, userID string) (*model.PendingTasksResponse, error) {
	now := s.now()
	active, err := s.tasks.ListActiveByUser(ctx, userID, now.Add(-recoveryWindow))
	if err != nil {
		return nil, err
	}

	resp := &model.PendingTasksResponse{Tasks: make([]model.TaskStub, 0, len(active))}

	for _, task := range active {
		if task.Due(now) {
			if outcome, rerr := s.reconciler.Reconcile(ctx, task); rerr == nil {
				task.Status = outcome.Status
			}
		}
		if task.Status.IsTerminal() {
			continue
		}
		resp.Tasks = append(resp.Tasks, task.Stub())
	}

	return resp, nil
}

func (s *GenerationService) statusResponse(ctx context.Context, task *model.GenerationTask) *model.TaskStatusResponse {
	resp := &model.TaskStatusResponse{
		TaskID:       task.TaskID,
		Status:       task.Status,
		PollAttempts: task.PollAttempts,
		ErrorMessage: task.ErrorMessage,
		CreatedAt:    task.CreatedAt,
		CompletedAt:  task.CompletedAt,
	}

	songs, err := s.songs.ListByUser(ctx, task.UserID, 0, 0)
	if err != nil {
		log.Printf("[Status] failed to list songs for task %s: %v", task.TaskID, err)
		return resp
	}
	for _, song := range songs {
		if song.TaskID != task.TaskID {
			continue
		}
		resp.Songs = append(resp.Songs, model.SongSummary{
			ID:       song.ID.Hex(),
			ClipID:   song.ClipID,
			Title:    song.Title,
			Duration: song.Duration,
			AudioURL: song.AudioURL,
			ImageURL: song.ImageURL,
		})
	}
	return resp
}

func mergeTags(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, t := range base {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
	}
	for _, t := range extra {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
	}
	return merged
}
