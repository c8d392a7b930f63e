package model

import "time"

// MediaItem is a generated or uploaded asset with a completion-status
// lifecycle and, once completed, a resolvable playback URL.
type MediaItem struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"projectId"`
	Kind      MediaKind   `json:"kind"`
	Provider  string      `json:"provider,omitempty"`
	Status    MediaStatus `json:"status"`
	MediaType MediaType   `json:"mediaType"`
	Input     MediaInput  `json:"input"`
	Output    MediaOutput `json:"output"`
	URL       string      `json:"url,omitempty"`
	// BlobKey references locally uploaded bytes; the object-URL cache turns
	// it into a playable URL on demand.
	BlobKey string `json:"blobKey,omitempty"`
	// DurationMs is the natural duration of the asset, 0 for still images
	// until probed.
	DurationMs int64     `json:"durationMs,omitempty"`
	JobRef     string    `json:"jobRef,omitempty"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MediaInput is the request that produced the item.
type MediaInput struct {
	Prompt   string `json:"prompt,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// MediaOutput holds the provider-specific result shape. Providers disagree
// on where the playable URL lives; Resolve in internal/media normalizes it.
type MediaOutput struct {
	URL       string   `json:"url,omitempty"`
	VideoURL  string   `json:"videoUrl,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
}
