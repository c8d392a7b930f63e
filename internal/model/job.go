package model

import "time"

// Job represents a background job in the system
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"payload,omitempty"` // JSON, persisted with the job
	Result      []byte     `json:"result,omitempty"`  // JSON, persisted with the job
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// Job types
const (
	JobTypeExport = "export"
)

// ExportJobPayload contains everything the worker needs to composite one
// export: the media-resolved track state frozen at request time.
type ExportJobPayload struct {
	ProjectID       string          `json:"projectId"`
	AspectRatio     AspectRatio     `json:"aspectRatio"`
	TotalDurationMs int64           `json:"totalDurationMs"`
	Tracks          []ResolvedTrack `json:"tracks"`
}

// ResolvedTrack is a track with its keyframes resolved to concrete URLs.
type ResolvedTrack struct {
	Track     Track              `json:"track"`
	Keyframes []ResolvedKeyframe `json:"keyframes"`
}

// ResolvedKeyframe pairs a keyframe with its resolved playback URL. URL is
// empty when resolution failed; planning skips those with a warning.
type ResolvedKeyframe struct {
	Keyframe  Keyframe  `json:"keyframe"`
	URL       string    `json:"url,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
}
