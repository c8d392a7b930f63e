package model

import "time"

// ExportStartRequest starts an export of the current timeline state.
type ExportStartRequest struct {
	ProjectID   string      `json:"projectId" validate:"required,uuid4"`
	AspectRatio AspectRatio `json:"aspectRatio" validate:"required,oneof=16:9 9:16 1:1"`
}

// ExportStartResponse acknowledges a queued export job.
type ExportStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportStatusResponse reports export job progress.
type ExportStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// ExportResultResponse is the outcome of a succeeded export.
type ExportResultResponse struct {
	JobID       string      `json:"jobId"`
	FileURL     string      `json:"fileUrl"`
	AspectRatio AspectRatio `json:"aspectRatio"`
	DurationMs  int64       `json:"durationMs"`
	Warnings    []string    `json:"warnings,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ExportCancelResponse acknowledges a cancellation.
type ExportCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}
