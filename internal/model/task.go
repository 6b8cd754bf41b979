package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationTask tracks one generation request submitted to the provider.
// It is created by the generation service and mutated only by the
// reconciliation engine; terminal records are retained as an audit trail.
type GenerationTask struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	// Provider-assigned identity, unique per task
	TaskID string `bson:"taskId" json:"taskId"`
	UserID string `bson:"userId" json:"userId"`

	// Request snapshot
	Prompt       string   `bson:"prompt" json:"prompt"`
	Title        string   `bson:"title,omitempty" json:"title,omitempty"`
	Tags         []string `bson:"tags,omitempty" json:"tags,omitempty"`
	Model        string   `bson:"model" json:"model"`
	Instrumental bool     `bson:"instrumental" json:"instrumental"`
	PersonaID    string   `bson:"personaId,omitempty" json:"personaId,omitempty"`

	Status TaskStatus `bson:"status" json:"status"`

	// Polling state
	PollAttempts    int        `bson:"pollAttempts" json:"pollAttempts"`
	MaxPollAttempts int        `bson:"maxPollAttempts" json:"maxPollAttempts"`
	LastPolledAt    *time.Time `bson:"lastPolledAt,omitempty" json:"lastPolledAt,omitempty"`
	NextPollAt      *time.Time `bson:"nextPollAt,omitempty" json:"nextPollAt,omitempty"`
	LastAPIResponse string     `bson:"lastApiResponse,omitempty" json:"-"`

	// Outcome
	GeneratedSongIDs []string   `bson:"generatedSongIds,omitempty" json:"generatedSongIds,omitempty"`
	ErrorMessage     string     `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CompletedAt      *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	FailedAt         *time.Time `bson:"failedAt,omitempty" json:"failedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Age returns how long the task has existed at the given instant.
func (t *GenerationTask) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// Due reports whether the task is eligible for a scheduled poll.
func (t *GenerationTask) Due(now time.Time) bool {
	if t.Status.IsTerminal() {
		return false
	}
	return t.NextPollAt == nil || !t.NextPollAt.After(now)
}

// TaskStub is the lightweight view of an outstanding task returned to
// clients. It is derived from the canonical task store on demand rather
// than being kept as a second writable copy on the user record.
type TaskStub struct {
	TaskID    string     `json:"taskId"`
	Prompt    string     `json:"prompt"`
	Title     string     `json:"title,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Model     string     `json:"model"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Stub converts the task to its client-facing summary form.
func (t *GenerationTask) Stub() TaskStub {
	return TaskStub{
		TaskID:    t.TaskID,
		Prompt:    t.Prompt,
		Title:     t.Title,
		Tags:      t.Tags,
		Model:     t.Model,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
}
