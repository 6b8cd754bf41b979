package model

import "time"

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Prompt       string   `json:"prompt" validate:"required,min=1,max=2500"`
	Title        string   `json:"title,omitempty" validate:"omitempty,max=120"`
	Tags         []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	Model        string   `json:"model,omitempty" validate:"omitempty,max=40"`
	Instrumental bool     `json:"instrumental,omitempty"`
	PersonaID    string   `json:"personaId,omitempty"`
}

// GenerateResponse acknowledges a submitted generation task
type GenerateResponse struct {
	TaskID    string     `json:"taskId"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SongSummary is the library view of a persisted song
type SongSummary struct {
	ID       string  `json:"id"`
	ClipID   string  `json:"clipId"`
	Title    string  `json:"title,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	AudioURL string  `json:"audioUrl,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// TaskStatusResponse is returned by the inline status check
type TaskStatusResponse struct {
	TaskID       string        `json:"taskId"`
	Status       TaskStatus    `json:"status"`
	PollAttempts int           `json:"pollAttempts"`
	Songs        []SongSummary `json:"songs,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
}

// PendingTasksResponse is the derived pending-task view for one user
type PendingTasksResponse struct {
	Tasks []TaskStub `json:"tasks"`
}

// TaskRecoveryDetail describes the outcome of recovering one task
type TaskRecoveryDetail struct {
	TaskID    string     `json:"taskId"`
	Status    TaskStatus `json:"status"`
	SongCount int        `json:"songCount"`
}

// RecoveryResponse summarizes a user-initiated recovery pass
type RecoveryResponse struct {
	Success        bool                 `json:"success"`
	RecoveredTasks int                  `json:"recoveredTasks"`
	CompletedTasks int                  `json:"completedTasks"`
	Details        []TaskRecoveryDetail `json:"details"`
}

// SweepResponse is the wire shape of the internal sweep trigger. It is
// well-formed even when the sweep itself failed.
type SweepResponse struct {
	Success   bool `json:"success"`
	Polled    int  `json:"polled"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
}
