// Package compositor turns the final track/keyframe state into one finished
// video file: it plans a strictly ordered, gapless segment sequence from the
// sparse keyframe set, then drives the rendering backend one segment at a
// time and concatenates the clips.
package compositor

import (
	"fmt"
	"sort"

	"github.com/cutreel/api/internal/model"
)

// DefaultTotalDurationMs is used when no keyframe exists anywhere.
const DefaultTotalDurationMs = 5000

// Segment is one compositor-ready unit: a frame backed by real media or a
// gap rendered as filler.
type Segment struct {
	Kind        model.SegmentKind `json:"kind"`
	TimestampMs int64             `json:"timestamp"`
	DurationMs  int64             `json:"duration"`
	URL         string            `json:"url,omitempty"`
	MediaID     string            `json:"mediaId,omitempty"`
	MediaType   model.MediaType   `json:"mediaType,omitempty"`
}

// PlanTrack walks a track's keyframes in timestamp order and emits a
// gapless segment sequence covering [0, totalDurationMs). Keyframes without
// a resolvable URL, and keyframes whose interval is fully swallowed by an
// earlier overlap, are skipped with a warning rather than failing the plan.
func PlanTrack(keyframes []model.ResolvedKeyframe, totalDurationMs int64) ([]Segment, []string) {
	sorted := make([]model.ResolvedKeyframe, len(keyframes))
	copy(sorted, keyframes)
	sortResolved(sorted)

	var segments []Segment
	var warnings []string
	currentTime := int64(0)

	for _, rk := range sorted {
		kf := rk.Keyframe

		if rk.URL == "" {
			warnings = append(warnings, fmt.Sprintf("keyframe %s: no resolvable media URL, skipped", kf.ID))
			continue
		}

		// Overlap with the previous segment trims the start; a fully
		// swallowed keyframe has no effective duration left.
		start := kf.Timestamp
		effDuration := kf.Duration
		if start < currentTime {
			effDuration -= currentTime - start
			start = currentTime
		}
		if effDuration <= 0 {
			warnings = append(warnings, fmt.Sprintf("keyframe %s: non-positive effective duration, skipped", kf.ID))
			continue
		}

		if start > currentTime {
			segments = append(segments, Segment{
				Kind:        model.SegmentGap,
				TimestampMs: currentTime,
				DurationMs:  start - currentTime,
			})
		}

		segments = append(segments, Segment{
			Kind:        model.SegmentFrame,
			TimestampMs: start,
			DurationMs:  effDuration,
			URL:         rk.URL,
			MediaID:     kf.Data.MediaID,
			MediaType:   rk.MediaType,
		})
		currentTime = start + effDuration
	}

	if currentTime < totalDurationMs {
		segments = append(segments, Segment{
			Kind:        model.SegmentGap,
			TimestampMs: currentTime,
			DurationMs:  totalDurationMs - currentTime,
		})
	}

	return segments, warnings
}

// TotalDurationMs computes the export duration: the furthest keyframe end
// across all tracks plus fixed padding, or the default when the timeline is
// empty.
func TotalDurationMs(tracks []model.ResolvedTrack, paddingMs int64) int64 {
	var maxEnd int64
	found := false
	for _, rt := range tracks {
		for _, rk := range rt.Keyframes {
			found = true
			if end := rk.Keyframe.End(); end > maxEnd {
				maxEnd = end
			}
		}
	}
	if !found {
		return DefaultTotalDurationMs
	}
	if maxEnd < 0 {
		maxEnd = 0
	}
	return maxEnd + paddingMs
}

// HasFrames reports whether a plan contains at least one real media
// segment. A track whose plan is all gaps is excluded from the export.
func HasFrames(segments []Segment) bool {
	for _, s := range segments {
		if s.Kind == model.SegmentFrame {
			return true
		}
	}
	return false
}

func sortResolved(keyframes []model.ResolvedKeyframe) {
	sort.SliceStable(keyframes, func(i, j int) bool {
		return keyframes[i].Keyframe.Timestamp < keyframes[j].Keyframe.Timestamp
	})
}
