package model

// Task status
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusAbandoned  TaskStatus = "abandoned"
)

// TerminalTaskStatuses lists the statuses a task can never leave.
var TerminalTaskStatuses = []TaskStatus{
	TaskStatusCompleted, TaskStatusFailed, TaskStatusAbandoned,
}

// IsTerminal reports whether the status is final.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusAbandoned:
		return true
	}
	return false
}

// Clip state as reported by the generation provider
type ClipState string

const (
	ClipStatePending   ClipState = "pending"
	ClipStateRunning   ClipState = "running"
	ClipStateSucceeded ClipState = "succeeded"
	ClipStateFailed    ClipState = "failed"
)

// Song status
type SongStatus string

const (
	SongStatusCompleted SongStatus = "completed"
)

// User status
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

var ValidUserStatuses = []UserStatus{UserStatusActive, UserStatusSuspended}

// Roles carried in token claims
const (
	RoleAdmin = "admin"
)
