package model

// Track types
type TrackType string

const (
	TrackTypeVideo     TrackType = "video"
	TrackTypeMusic     TrackType = "music"
	TrackTypeVoiceover TrackType = "voiceover"
)

var ValidTrackTypes = []TrackType{
	TrackTypeVideo, TrackTypeMusic, TrackTypeVoiceover,
}

// trackPriority fixes the display order of track lanes. Lower renders first.
var trackPriority = map[TrackType]int{
	TrackTypeVideo:     0,
	TrackTypeMusic:     1,
	TrackTypeVoiceover: 2,
}

// Priority returns the display rank for a track type. Unknown types sort last.
func (t TrackType) Priority() int {
	if p, ok := trackPriority[t]; ok {
		return p
	}
	return len(trackPriority)
}

// Keyframe payload variants
type KeyframeDataType string

const (
	KeyframeDataPrompt    KeyframeDataType = "prompt"
	KeyframeDataImage     KeyframeDataType = "image"
	KeyframeDataVideo     KeyframeDataType = "video"
	KeyframeDataVoiceover KeyframeDataType = "voiceover"
	KeyframeDataMusic     KeyframeDataType = "music"
)

var ValidKeyframeDataTypes = []KeyframeDataType{
	KeyframeDataPrompt, KeyframeDataImage, KeyframeDataVideo,
	KeyframeDataVoiceover, KeyframeDataMusic,
}

// Media item kinds
type MediaKind string

const (
	MediaKindGenerated MediaKind = "generated"
	MediaKindUploaded  MediaKind = "uploaded"
)

// Media lifecycle status. Completed and failed are terminal.
type MediaStatus string

const (
	MediaStatusPending   MediaStatus = "pending"
	MediaStatusRunning   MediaStatus = "running"
	MediaStatusCompleted MediaStatus = "completed"
	MediaStatusFailed    MediaStatus = "failed"
)

// Terminal reports whether the status is final.
func (s MediaStatus) Terminal() bool {
	return s == MediaStatusCompleted || s == MediaStatusFailed
}

// Media content types
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Export aspect ratios
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

var ValidAspectRatios = []AspectRatio{
	AspectLandscape, AspectPortrait, AspectSquare,
}

// Dimensions maps an aspect ratio to output pixel dimensions.
// Unknown ratios fall back to landscape.
func (a AspectRatio) Dimensions() (width, height int) {
	switch a {
	case AspectPortrait:
		return 720, 1280
	case AspectSquare:
		return 1080, 1080
	default:
		return 1280, 720
	}
}

// Segment kinds produced by export planning
type SegmentKind string

const (
	SegmentFrame SegmentKind = "frame"
	SegmentGap   SegmentKind = "gap"
)
