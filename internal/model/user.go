package model

// UserRequest is the body of the user-scoped POST endpoints.
type UserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// SyncUserResponse is returned by POST /api/sync-user
type SyncUserResponse struct {
	Status string `json:"status"` // "inserted" or "exists"
}

const (
	SyncStatusInserted = "inserted"
	SyncStatusExists   = "exists"
)

// CheckResumeResponse is returned by POST /api/check-resume
type CheckResumeResponse struct {
	HasResume bool `json:"hasResume"`
}

// JobActionRequest is the body of POST /api/job-action
type JobActionRequest struct {
	UserID string    `json:"userId" validate:"required"`
	JobID  string    `json:"jobId" validate:"required"`
	Action JobAction `json:"action" validate:"required,oneof=save unsave apply unapply"`
	Type   string    `json:"type"`
}

// JobActionResponse is returned by POST /api/job-action
type JobActionResponse struct {
	Success  bool      `json:"success"`
	JobStats JobStats  `json:"jobstats"`
	Counts   JobCounts `json:"counts"`
}

// ParseResumeRequest is the body of POST /parse-resume
type ParseResumeRequest struct {
	ResumeData string `json:"resume_data" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
}

// ParseResumeResponse is returned by POST /parse-resume
type ParseResumeResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// UploadResumeResponse is returned by POST /api/upload-resume
type UploadResumeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}
