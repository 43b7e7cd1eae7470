package model

// Push event names
const (
	EventConnected       = "connected"
	EventResumeProgress  = "resume_progress"
	EventResumeProcessed = "resume_processed"
	EventPing            = "ping"
	EventPong            = "pong"
)

// WSMessage is the envelope of every frame on the push channel.
type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ConnectedEvent acknowledges a join
type ConnectedEvent struct {
	UserID string `json:"userId"`
}

// ResumeProgressEvent reports an intermediate pipeline stage
type ResumeProgressEvent struct {
	UserID   string `json:"userId"`
	TaskID   string `json:"taskId,omitempty"`
	Progress int    `json:"progress"`
	Step     string `json:"step"`
}

// ResumeProcessedEvent is emitted exactly once per ingestion outcome.
type ResumeProcessedEvent struct {
	UserID  string `json:"userId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Notification is what workers publish and the hub fans out to a user room.
type Notification struct {
	UserID  string `json:"userId"`
	Message []byte `json:"message"`
}
