// Package memory provides in-memory store implementations with the same
// contracts as the Mongo stores, including the unique clipId constraint
// and the monotonic task update filter. They back unit and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
)

// TaskStore is an in-memory store.TaskStore.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]*model.GenerationTask
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*model.GenerationTask)}
}

func (s *TaskStore) Create(ctx context.Context, task *model.GenerationTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	cp := *task
	s.tasks[task.TaskID] = &cp
	return nil
}

func (s *TaskStore) GetByTaskID(ctx context.Context, taskID string) (*model.GenerationTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *TaskStore) Update(ctx context.Context, task *model.GenerationTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[task.TaskID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Status.IsTerminal() {
		return store.ErrTaskFinalized
	}
	cp := *task
	s.tasks[task.TaskID] = &cp
	return nil
}

func (s *TaskStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.GenerationTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*model.GenerationTask
	for _, t := range s.tasks {
		if t.Status != model.TaskStatusPending && t.Status != model.TaskStatusInProgress {
			continue
		}
		if t.PollAttempts >= t.MaxPollAttempts {
			continue
		}
		if t.NextPollAt != nil && t.NextPollAt.After(now) {
			continue
		}
		cp := *t
		due = append(due, &cp)
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].NextPollAt, due[j].NextPollAt
		switch {
		case a == nil && b == nil:
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *TaskStore) ListActiveByUser(ctx context.Context, userID string, since time.Time) ([]*model.GenerationTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.GenerationTask
	for _, t := range s.tasks {
		if t.UserID != userID || t.Status.IsTerminal() || t.CreatedAt.Before(since) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *TaskStore) ListByStatus(ctx context.Context, status model.TaskStatus, limit int) ([]*model.GenerationTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.GenerationTask
	for _, t := range s.tasks {
		if status != "" && t.Status != status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SongStore is an in-memory store.SongStore enforcing clipId uniqueness.
type SongStore struct {
	mu     sync.Mutex
	byID   map[string]*model.Song
	byClip map[string]*model.Song
}

func NewSongStore() *SongStore {
	return &SongStore{
		byID:   make(map[string]*model.Song),
		byClip: make(map[string]*model.Song),
	}
}

func (s *SongStore) Insert(ctx context.Context, song *model.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byClip[song.ClipID]; exists {
		return store.ErrDuplicateClip
	}
	if song.ID.IsZero() {
		song.ID = primitive.NewObjectID()
	}
	cp := *song
	s.byID[song.ID.Hex()] = &cp
	s.byClip[song.ClipID] = &cp
	return nil
}

func (s *SongStore) ExistsByClipID(ctx context.Context, clipID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byClip[clipID]
	return ok, nil
}

func (s *SongStore) GetByClipID(ctx context.Context, clipID string) (*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.byClip[clipID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *song
	return &cp, nil
}

func (s *SongStore) GetByID(ctx context.Context, id string) (*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *song
	return &cp, nil
}

func (s *SongStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Song
	for _, song := range s.byID {
		if song.UserID != userID {
			continue
		}
		cp := *song
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SongStore) SetArchivedURL(ctx context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	song.ArchivedURL = url
	return nil
}

func (s *SongStore) Delete(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	if userID != "" && song.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byClip, song.ClipID)
	return nil
}

// Count returns the number of stored songs.
func (s *SongStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

func (s *UserStore) Ensure(ctx context.Context, userID, email, name string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u, ok := s.users[userID]
	if !ok {
		u = &model.User{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Status:    model.UserStatusActive,
			CreatedAt: now,
		}
		s.users[userID] = u
	}
	u.Email = email
	u.Name = name
	u.UpdatedAt = now
	cp := *u
	return &cp, nil
}

func (s *UserStore) Get(ctx context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.User
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *UserStore) UpdateStatus(ctx context.Context, userID string, status model.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) IncrementUsage(ctx context.Context, userID string, songs, credits int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Usage.SongsGenerated += songs
	u.Usage.CreditsUsed += credits
	return nil
}

// PersonaStore is an in-memory store.PersonaStore.
type PersonaStore struct {
	mu       sync.Mutex
	personas map[string]*model.Persona
}

func NewPersonaStore() *PersonaStore {
	return &PersonaStore{personas: make(map[string]*model.Persona)}
}

func (s *PersonaStore) Create(ctx context.Context, persona *model.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if persona.ID.IsZero() {
		persona.ID = primitive.NewObjectID()
	}
	cp := *persona
	s.personas[persona.ID.Hex()] = &cp
	return nil
}

func (s *PersonaStore) GetByID(ctx context.Context, id, userID string) (*model.Persona, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.personas[id]
	if !ok || p.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PersonaStore) ListByUser(ctx context.Context, userID string) ([]*model.Persona, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Persona
	for _, p := range s.personas {
		if p.UserID != userID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *PersonaStore) Update(ctx context.Context, persona *model.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.personas[persona.ID.Hex()]
	if !ok || cur.UserID != persona.UserID {
		return store.ErrNotFound
	}
	cp := *persona
	s.personas[persona.ID.Hex()] = &cp
	return nil
}

func (s *PersonaStore) Delete(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.personas[id]
	if !ok || p.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.personas, id)
	return nil
}
