// Package editor implements the keyframe drag/resize gesture machinery:
// collision bounds computed from sibling intervals, pixel/timestamp
// conversion for the rendered track row, and the per-gesture state machine.
// Everything here is pure; commits are persisted by the timeline service.
package editor

import (
	"errors"
	"math"

	"github.com/cutreel/api/internal/model"
)

// ErrNoGeometry means the track row has no renderable geometry yet, so the
// gesture cannot start and is treated as a no-op.
var ErrNoGeometry = errors.New("editor: track geometry not available")

// ErrIndexOutOfRange means the gesture references a keyframe that is not in
// the sibling list.
var ErrIndexOutOfRange = errors.New("editor: keyframe index out of range")

// Interval is a keyframe's occupied range on its track, in ms.
type Interval struct {
	StartMs    int64
	DurationMs int64
}

// End returns the exclusive end of the interval.
func (iv Interval) End() int64 {
	return iv.StartMs + iv.DurationMs
}

// Bounds is the window the subject keyframe's interval may occupy without
// overlapping either adjacent sibling: LeftMs is the earliest allowed start,
// RightMs the latest allowed end.
type Bounds struct {
	LeftMs  int64
	RightMs int64
}

// ComputeBounds derives the collision bounds for the interval at index from
// the timestamp-sorted sibling list. A missing neighbor means the bound is
// the track edge: 0 on the left, timelineMs on the right.
func ComputeBounds(sorted []Interval, index int, timelineMs int64) (Bounds, error) {
	if index < 0 || index >= len(sorted) {
		return Bounds{}, ErrIndexOutOfRange
	}

	b := Bounds{LeftMs: 0, RightMs: timelineMs}
	if index > 0 {
		b.LeftMs = sorted[index-1].End()
	}
	if index < len(sorted)-1 {
		b.RightMs = sorted[index+1].StartMs
	}
	return b, nil
}

// ClampStart clamps a proposed start timestamp so the full interval stays
// inside the bounds. Violations never error; they clamp to the nearest
// legal value.
func (b Bounds) ClampStart(durationMs, proposedMs int64) int64 {
	maxStart := b.RightMs - durationMs
	if maxStart < b.LeftMs {
		maxStart = b.LeftMs
	}
	if proposedMs < b.LeftMs {
		return b.LeftMs
	}
	if proposedMs > maxStart {
		return maxStart
	}
	return proposedMs
}

// ClampDuration clamps a proposed duration for a trailing-edge resize:
// at least MinKeyframeDurationMs, at most the smallest of the media's
// natural duration (when known), the product ceiling, and the room left
// before the right bound. naturalMs <= 0 means the natural duration is
// unknown and only the ceiling applies.
func (b Bounds) ClampDuration(startMs, proposedMs, naturalMs int64) int64 {
	max := int64(model.TrackMaxDurationMs)
	if naturalMs > 0 && naturalMs < max {
		max = naturalMs
	}
	if room := b.RightMs - startMs; room < max {
		max = room
	}
	if max < model.MinKeyframeDurationMs {
		max = model.MinKeyframeDurationMs
	}
	if proposedMs < model.MinKeyframeDurationMs {
		return model.MinKeyframeDurationMs
	}
	if proposedMs > max {
		return max
	}
	return proposedMs
}

// SnapDuration rounds a duration to the nearest ResizeSnapMs grid line.
func SnapDuration(durationMs int64) int64 {
	snapped := int64(math.Round(float64(durationMs)/model.ResizeSnapMs)) * model.ResizeSnapMs
	if snapped < model.MinKeyframeDurationMs {
		snapped = model.MinKeyframeDurationMs
	}
	return snapped
}

// IntervalsOf projects timestamp-sorted keyframes onto their intervals.
func IntervalsOf(keyframes []model.Keyframe) []Interval {
	intervals := make([]Interval, len(keyframes))
	for i, k := range keyframes {
		intervals[i] = Interval{StartMs: k.Timestamp, DurationMs: k.Duration}
	}
	return intervals
}
