package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
	"github.com/tuneforge/api/internal/store/memory"
)

func newGenerationService(env *testEnv, personas *memory.PersonaStore) *GenerationService {
	svc := NewGenerationService(env.provider, env.tasks, env.users, personas, env.songs, env.reconciler, "chirp-v4")
	svc.now = func() time.Time { return env.now }
	return svc
}

func TestSubmitCreatesPendingTask(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())

	resp, err := svc.Submit(context.Background(), "user-1", "u1@example.com", "User One", &model.GenerateRequest{
		Prompt: "an upbeat synthwave track",
		Title:  "Neon Drive",
	})
	require.NoError(t, err)

	assert.Equal(t, "task-1", resp.TaskID)
	assert.Equal(t, model.TaskStatusPending, resp.Status)

	stored, err := env.tasks.GetByTaskID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, stored.Status)
	assert.Equal(t, DefaultMaxPollAttempts, stored.MaxPollAttempts)
	assert.Zero(t, stored.PollAttempts)
	require.NotNil(t, stored.NextPollAt)
}

func TestSubmitRejectsSuspendedUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())
	require.NoError(t, env.users.UpdateStatus(context.Background(), "user-1", model.UserStatusSuspended))

	_, err := svc.Submit(context.Background(), "user-1", "u1@example.com", "User One", &model.GenerateRequest{
		Prompt: "anything",
	})
	assert.ErrorIs(t, err, ErrUserSuspended)
}

func TestSubmitMergesPersonaStyleTags(t *testing.T) {
	env := newTestEnv(t)
	personas := memory.NewPersonaStore()
	svc := newGenerationService(env, personas)

	persona := &model.Persona{
		UserID:    "user-1",
		Name:      "Luna",
		StyleTags: []string{"dreampop", "synthwave"},
	}
	require.NoError(t, personas.Create(context.Background(), persona))

	_, err := svc.Submit(context.Background(), "user-1", "u1@example.com", "User One", &model.GenerateRequest{
		Prompt:    "an upbeat track",
		Tags:      []string{"synthwave", "retro"},
		PersonaID: persona.ID.Hex(),
	})
	require.NoError(t, err)

	stored, err := env.tasks.GetByTaskID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"synthwave", "retro", "dreampop"}, stored.Tags)
}

func TestSubmitUnknownPersona(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())

	_, err := svc.Submit(context.Background(), "user-1", "u1@example.com", "User One", &model.GenerateRequest{
		Prompt:    "anything",
		PersonaID: "000000000000000000000000",
	})
	assert.ErrorIs(t, err, ErrPersonaNotFound)
}

func TestStatusPersistsClipsWithoutTouchingSchedule(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())

	task := env.newTask(t, "task-1")
	next := env.now.Add(time.Minute)
	task.NextPollAt = &next
	task.PollAttempts = 3
	require.NoError(t, env.tasks.Update(context.Background(), task))

	env.provider.resp = &client.TaskStatusResponse{
		Data: []client.Clip{succeededClip("clip-a")},
	}

	resp, err := svc.Status(context.Background(), "user-1", "task-1")
	require.NoError(t, err)

	require.Len(t, resp.Songs, 1)
	assert.Equal(t, "clip-a", resp.Songs[0].ClipID)
	assert.Equal(t, 1, env.songs.Count())

	// The inline check is read-mostly: scheduling state belongs to the
	// reconciliation engine.
	stored, err := env.tasks.GetByTaskID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.PollAttempts)
	require.NotNil(t, stored.NextPollAt)
	assert.Equal(t, next, *stored.NextPollAt)
}

func TestStatusHidesOtherUsersTasks(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())
	env.newTask(t, "task-1")

	_, err := svc.Status(context.Background(), "user-2", "task-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStatusFallsBackToStoredRecordOnProviderError(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())
	env.newTask(t, "task-1")
	env.provider.err = assertableError("provider down")

	resp, err := svc.Status(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, resp.Status)
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

func TestPendingDerivesFromTaskStore(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())

	waiting := env.newTask(t, "task-waiting")
	future := env.now.Add(time.Minute)
	waiting.NextPollAt = &future
	require.NoError(t, env.tasks.Update(context.Background(), waiting))

	done := env.newTask(t, "task-done")
	done.Status = model.TaskStatusCompleted
	require.NoError(t, env.tasks.Update(context.Background(), done))

	resp, err := svc.Pending(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "task-waiting", resp.Tasks[0].TaskID)
}

func TestPendingDropsTasksThatCompleteInline(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(env, memory.NewPersonaStore())

	env.newTask(t, "task-1")
	env.provider.resp = &client.TaskStatusResponse{
		Data: []client.Clip{succeededClip("clip-a")},
	}

	resp, err := svc.Pending(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Empty(t, resp.Tasks, "a task that completes during the listing is no longer pending")
	assert.Equal(t, 1, env.songs.Count())
}
