package model

import "sort"

// Timeline limits. Durations are milliseconds throughout.
const (
	// TrackMaxDurationMs is the product-wide ceiling for a single keyframe.
	TrackMaxDurationMs = 30000

	// MinKeyframeDurationMs is the shortest duration a resize may produce.
	MinKeyframeDurationMs = 1000

	// ResizeSnapMs is the grid a committed resize snaps to.
	ResizeSnapMs = 100
)

// Track is one lane of a single media category within a project.
type Track struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Type      TrackType `json:"type"`
	Label     string    `json:"label"`
	Locked    bool      `json:"locked"`
}

// Keyframe is a placed media interval on a track.
type Keyframe struct {
	ID        string       `json:"id"`
	TrackID   string       `json:"trackId"`
	Timestamp int64        `json:"timestamp"` // ms, >= 0
	Duration  int64        `json:"duration"`  // ms, > 0
	Data      KeyframeData `json:"data"`
}

// KeyframeData is the tagged payload variant carried by a keyframe.
type KeyframeData struct {
	Type    KeyframeDataType `json:"type"`
	MediaID string           `json:"mediaId"`
	Prompt  string           `json:"prompt,omitempty"`
	URL     string           `json:"url,omitempty"`
}

// End returns the exclusive end of the keyframe's interval in ms.
func (k *Keyframe) End() int64 {
	return k.Timestamp + k.Duration
}

// SortKeyframes orders keyframes by timestamp ascending. Storage order is
// insertion order, so every consumer sorts before walking.
func SortKeyframes(keyframes []Keyframe) {
	sort.Slice(keyframes, func(i, j int) bool {
		return keyframes[i].Timestamp < keyframes[j].Timestamp
	})
}

// SortTracks orders tracks by their type's display priority.
func SortTracks(tracks []Track) {
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Type.Priority() < tracks[j].Type.Priority()
	})
}
