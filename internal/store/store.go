package store

import (
	"context"
	"errors"
	"time"

	"github.com/tuneforge/api/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateClip is returned by SongStore.Insert when a song with the
	// same clipId already exists. The unique index is the authoritative
	// "already exists" signal; callers treat this as a silent skip.
	ErrDuplicateClip = errors.New("clip already exists")

	// ErrTaskFinalized is returned when an update targets a task that has
	// already reached a terminal status. Terminal records are immutable.
	ErrTaskFinalized = errors.New("task already finalized")
)

// TaskStore persists generation task records.
type TaskStore interface {
	Create(ctx context.Context, task *model.GenerationTask) error
	GetByTaskID(ctx context.Context, taskID string) (*model.GenerationTask, error)

	// Update replaces a non-terminal task record. Updating a record that
	// has already reached completed/failed/abandoned returns
	// ErrTaskFinalized and leaves it untouched, which keeps status
	// transitions monotonic even under concurrent reconciliation.
	Update(ctx context.Context, task *model.GenerationTask) error

	// ListDue returns at most limit non-terminal tasks whose nextPollAt has
	// elapsed (or is unset) and whose attempts are below their cap.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*model.GenerationTask, error)

	// ListActiveByUser returns a user's non-terminal tasks created at or
	// after the given instant.
	ListActiveByUser(ctx context.Context, userID string, since time.Time) ([]*model.GenerationTask, error)

	// ListByStatus returns tasks for the admin view; an empty status
	// matches all.
	ListByStatus(ctx context.Context, status model.TaskStatus, limit int) ([]*model.GenerationTask, error)
}

// SongStore persists generated songs, keyed by provider clip id.
type SongStore interface {
	// Insert stores a new song. A clipId collision returns
	// ErrDuplicateClip; the stored record wins.
	Insert(ctx context.Context, song *model.Song) error

	ExistsByClipID(ctx context.Context, clipID string) (bool, error)
	GetByClipID(ctx context.Context, clipID string) (*model.Song, error)
	GetByID(ctx context.Context, id string) (*model.Song, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Song, error)
	SetArchivedURL(ctx context.Context, id, url string) error

	// Delete removes a song owned by userID; an empty userID skips the
	// ownership check (admin path).
	Delete(ctx context.Context, id, userID string) error
}

// UserStore persists user records mirrored from the identity provider.
type UserStore interface {
	Ensure(ctx context.Context, userID, email, name string) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	UpdateStatus(ctx context.Context, userID string, status model.UserStatus) error

	// IncrementUsage bumps the informational usage counters. Best-effort:
	// callers log failures and continue.
	IncrementUsage(ctx context.Context, userID string, songs, credits int) error
}

// PersonaStore persists voice personas.
type PersonaStore interface {
	Create(ctx context.Context, persona *model.Persona) error
	GetByID(ctx context.Context, id, userID string) (*model.Persona, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Persona, error)
	Update(ctx context.Context, persona *model.Persona) error
	Delete(ctx context.Context, id, userID string) error
}
