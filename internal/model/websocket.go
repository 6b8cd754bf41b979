package model

// WebSocket message types
type WSMessageType string

const (
	WSMessageTypeStatus   WSMessageType = "status"
	WSMessageTypeComplete WSMessageType = "complete"
	WSMessageTypeError    WSMessageType = "error"
	WSMessageTypePing     WSMessageType = "ping"
	WSMessageTypePong     WSMessageType = "pong"
)

// WSMessage is the generic envelope for client messages
type WSMessage struct {
	Type WSMessageType `json:"type"`
}

// WSStatusMessage reports a task status transition
type WSStatusMessage struct {
	Type         WSMessageType `json:"type"`
	TaskID       string        `json:"taskId"`
	Status       TaskStatus    `json:"status"`
	PollAttempts int           `json:"pollAttempts"`
}

// WSCompleteMessage reports task completion with the persisted songs
type WSCompleteMessage struct {
	Type    WSMessageType `json:"type"`
	TaskID  string        `json:"taskId"`
	SongIDs []string      `json:"songIds"`
}

// WSErrorMessage reports a terminal failure
type WSErrorMessage struct {
	Type    WSMessageType `json:"type"`
	TaskID  string        `json:"taskId"`
	Status  TaskStatus    `json:"status"`
	Message string        `json:"message"`
}
