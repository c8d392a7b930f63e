package model

// CreateTrackRequest creates a track lane in a project.
type CreateTrackRequest struct {
	ProjectID string    `json:"projectId" validate:"required,uuid4"`
	Type      TrackType `json:"type" validate:"required,oneof=video music voiceover"`
	Label     string    `json:"label" validate:"max=120"`
}

// UpdateTrackRequest changes mutable track fields.
type UpdateTrackRequest struct {
	Label  *string `json:"label,omitempty" validate:"omitempty,max=120"`
	Locked *bool   `json:"locked,omitempty"`
}

// CreateKeyframeRequest places a media interval on a track.
type CreateKeyframeRequest struct {
	TrackID   string           `json:"trackId" validate:"required,uuid4"`
	Timestamp int64            `json:"timestamp" validate:"min=0"`
	Duration  int64            `json:"duration" validate:"required,gt=0"`
	DataType  KeyframeDataType `json:"dataType" validate:"required,oneof=prompt image video voiceover music"`
	MediaID   string           `json:"mediaId" validate:"required"`
	Prompt    string           `json:"prompt,omitempty"`
}

// MoveKeyframeRequest commits a drag gesture. TrackWidthPx and TimelineMs
// describe the rendered geometry the gesture happened in; the server clamps
// against sibling bounds before persisting. FromInteractive marks gestures
// that started on an interactive child element and must be ignored.
type MoveKeyframeRequest struct {
	DeltaPx         float64 `json:"deltaPx"`
	TrackWidthPx    float64 `json:"trackWidthPx" validate:"min=0"`
	TimelineMs      int64   `json:"timelineMs" validate:"min=0"`
	FromInteractive bool    `json:"fromInteractive,omitempty"`
}

// ResizeKeyframeRequest commits a trailing-edge resize gesture.
type ResizeKeyframeRequest struct {
	DeltaPx         float64 `json:"deltaPx"`
	TrackWidthPx    float64 `json:"trackWidthPx" validate:"min=0"`
	TimelineMs      int64   `json:"timelineMs" validate:"min=0"`
	FromInteractive bool    `json:"fromInteractive,omitempty"`
}

// DuplicateKeyframeRequest commits a duplicate-drag: the original keyframe
// is left untouched and a copy is created at the previewed position.
type DuplicateKeyframeRequest struct {
	DeltaPx         float64 `json:"deltaPx"`
	TrackWidthPx    float64 `json:"trackWidthPx" validate:"min=0"`
	TimelineMs      int64   `json:"timelineMs" validate:"min=0"`
	FromInteractive bool    `json:"fromInteractive,omitempty"`
}

// RegisterMediaRequest registers an uploaded or generated media item.
type RegisterMediaRequest struct {
	ProjectID  string    `json:"projectId" validate:"required,uuid4"`
	Kind       MediaKind `json:"kind" validate:"required,oneof=generated uploaded"`
	MediaType  MediaType `json:"mediaType" validate:"required,oneof=image video audio"`
	Provider   string    `json:"provider,omitempty"`
	Prompt     string    `json:"prompt,omitempty"`
	FileName   string    `json:"fileName,omitempty"`
	URL        string    `json:"url,omitempty" validate:"omitempty,url"`
	BlobKey    string    `json:"blobKey,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty" validate:"min=0"`
	JobRef     string    `json:"jobRef,omitempty"`
}

// RulerRequest asks for ruler tick marks for the current viewport.
type RulerRequest struct {
	DurationSec   float64 `json:"duration" query:"duration" validate:"required,gt=0"`
	Zoom          float64 `json:"zoom" query:"zoom" validate:"required,gt=0"`
	ViewportWidth float64 `json:"viewportWidth" query:"viewportWidth" validate:"required,gt=0"`
	ContentWidth  float64 `json:"contentWidth" query:"contentWidth" validate:"min=0"`
	ScrollLeft    float64 `json:"scrollLeft" query:"scrollLeft" validate:"min=0"`
}
