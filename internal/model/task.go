package model

import (
	"encoding/json"
	"time"
)

// TaskState mirrors the states reported by /task-status.
type TaskState string

const (
	TaskStatePending    TaskState = "PENDING"
	TaskStateStarted    TaskState = "STARTED"
	TaskStateProcessing TaskState = "PROCESSING"
	TaskStateSuccess    TaskState = "SUCCESS"
	TaskStateFailure    TaskState = "FAILURE"
)

// Terminal reports whether no further transitions are allowed.
func (s TaskState) Terminal() bool {
	return s == TaskStateSuccess || s == TaskStateFailure
}

// Task is a background task record kept in Redis
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	UserID    string          `json:"userId,omitempty"`
	State     TaskState       `json:"state"`
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
	Progress  int             `json:"progress"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TaskEnvelope is the asynq payload wrapper shared by all task types.
type TaskEnvelope struct {
	TaskID  string          `json:"taskId"`
	Payload json.RawMessage `json:"payload"`
}

// ExtractTaskPayload is the input of the resume:extract task
type ExtractTaskPayload struct {
	UserID   string `json:"userId"`
	Path     string `json:"path"`
	FileType string `json:"fileType"`
}

// ParseTaskPayload is the input of the resume:parse task
type ParseTaskPayload struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// TaskResult is the {status, message} result payload of a task.
type TaskResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskStatusResponse is returned by GET /task-status/:id
type TaskStatusResponse struct {
	State   TaskState `json:"state"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
}
