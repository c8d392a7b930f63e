package editor

import (
	"math"

	"github.com/cutreel/api/internal/model"
)

// State is the lifecycle of a single gesture. Only one gesture is active at
// a time; pointer capture on the client guarantees exclusivity.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateResizing
	StateCommitted
	StateCancelled
)

// Action is what a finished drag asks the caller to persist.
type Action int

const (
	// ActionMove persists the previewed timestamp onto the dragged keyframe.
	ActionMove Action = iota
	// ActionDuplicate creates a copy at the previewed timestamp and leaves
	// the original keyframe untouched.
	ActionDuplicate
)

// Commit is the outcome of a completed gesture. The caller persists it;
// the gesture itself never touches storage.
type Commit struct {
	Action      Action
	TimestampMs int64
	DurationMs  int64
}

// Geometry ties the gesture to the rendered track row so pointer deltas can
// be converted to timestamps.
type Geometry struct {
	TrackWidthPx float64
	TimelineMs   int64
}

func (g Geometry) valid() bool {
	return g.TrackWidthPx > 0 && g.TimelineMs > 0
}

func (g Geometry) pxToMs(px float64) int64 {
	ratio := px / g.TrackWidthPx
	return int64(math.Round(ratio * float64(g.TimelineMs)))
}

func (g Geometry) msToPx(ms int64) float64 {
	return float64(ms) / float64(g.TimelineMs) * g.TrackWidthPx
}

// DragGesture tracks one drag from pointer-down to release. The committed
// timestamp is never mutated during the gesture; Move only updates the
// preview value.
type DragGesture struct {
	state     State
	geom      Geometry
	bounds    Bounds
	committed Interval
	duplicate bool
	previewMs int64
}

// BeginDrag starts a drag for the keyframe at index within the sorted
// sibling intervals. Returns ErrNoGeometry when the track row has not been
// laid out, making the gesture a no-op.
func BeginDrag(sorted []Interval, index int, geom Geometry, duplicate bool) (*DragGesture, error) {
	if !geom.valid() {
		return nil, ErrNoGeometry
	}
	bounds, err := ComputeBounds(sorted, index, geom.TimelineMs)
	if err != nil {
		return nil, err
	}
	kf := sorted[index]
	return &DragGesture{
		state:     StateDragging,
		geom:      geom,
		bounds:    bounds,
		committed: kf,
		duplicate: duplicate,
		previewMs: kf.StartMs,
	}, nil
}

// Move applies a pointer delta in pixels: clamp to the pixel bounds, then
// convert the clamped position back to a timestamp for the preview.
func (d *DragGesture) Move(deltaPx float64) {
	if d.state != StateDragging {
		return
	}
	basePx := d.geom.msToPx(d.committed.StartMs)
	leftPx := d.geom.msToPx(d.bounds.LeftMs)
	rightPx := d.geom.msToPx(d.bounds.RightMs) - d.geom.msToPx(d.committed.DurationMs)
	if rightPx < leftPx {
		rightPx = leftPx
	}

	candidate := basePx + deltaPx
	if candidate < leftPx {
		candidate = leftPx
	}
	if candidate > rightPx {
		candidate = rightPx
	}

	// Pixel clamping can still land a hair outside the ms bounds after
	// rounding; clamp once more in the timestamp domain.
	d.previewMs = d.bounds.ClampStart(d.committed.DurationMs, d.geom.pxToMs(candidate))
}

// PreviewMs is the position the renderer shows while the gesture is live:
// the preview in normal mode, the untouched committed position when
// duplicating (the duplicate ghost carries the preview instead).
func (d *DragGesture) PreviewMs() int64 {
	if d.duplicate {
		return d.committed.StartMs
	}
	return d.previewMs
}

// DuplicatePreviewMs is the ghost position of the future duplicate.
func (d *DragGesture) DuplicatePreviewMs() int64 {
	return d.previewMs
}

// End completes the gesture and returns what to persist.
func (d *DragGesture) End() Commit {
	d.state = StateCommitted
	action := ActionMove
	if d.duplicate {
		action = ActionDuplicate
	}
	return Commit{
		Action:      action,
		TimestampMs: d.previewMs,
		DurationMs:  d.committed.DurationMs,
	}
}

// Cancel abandons the gesture; the committed state is untouched.
func (d *DragGesture) Cancel() {
	d.state = StateCancelled
	d.previewMs = d.committed.StartMs
}

// State reports the gesture lifecycle state.
func (d *DragGesture) State() State {
	return d.state
}

// ResizeGesture tracks a trailing-edge resize.
type ResizeGesture struct {
	state     State
	geom      Geometry
	bounds    Bounds
	committed Interval
	naturalMs int64
	previewMs int64
}

// BeginResize starts a resize for the keyframe at index. naturalMs is the
// media's natural duration (0 when unknown).
func BeginResize(sorted []Interval, index int, geom Geometry, naturalMs int64) (*ResizeGesture, error) {
	if !geom.valid() {
		return nil, ErrNoGeometry
	}
	bounds, err := ComputeBounds(sorted, index, geom.TimelineMs)
	if err != nil {
		return nil, err
	}
	kf := sorted[index]
	return &ResizeGesture{
		state:     StateResizing,
		geom:      geom,
		bounds:    bounds,
		committed: kf,
		naturalMs: naturalMs,
		previewMs: kf.DurationMs,
	}, nil
}

// Move applies a pointer delta to the trailing edge and clamps the
// resulting duration. No snapping while the gesture is live.
func (r *ResizeGesture) Move(deltaPx float64) {
	if r.state != StateResizing {
		return
	}
	proposed := r.committed.DurationMs + r.geom.pxToMs(deltaPx)
	r.previewMs = r.bounds.ClampDuration(r.committed.StartMs, proposed, r.naturalMs)
}

// PreviewDurationMs is the live duration shown during the gesture.
func (r *ResizeGesture) PreviewDurationMs() int64 {
	return r.previewMs
}

// End snaps the previewed duration to the 100ms grid, re-clamps, and
// returns the commit.
func (r *ResizeGesture) End() Commit {
	r.state = StateCommitted
	snapped := SnapDuration(r.previewMs)
	if clamped := r.bounds.ClampDuration(r.committed.StartMs, snapped, r.naturalMs); clamped != snapped {
		// Snapping overshot the ceiling; take the floor grid line instead so
		// the committed value is both legal and on the grid.
		snapped = clamped / model.ResizeSnapMs * model.ResizeSnapMs
		if snapped < model.MinKeyframeDurationMs {
			snapped = model.MinKeyframeDurationMs
		}
	}
	return Commit{
		Action:      ActionMove,
		TimestampMs: r.committed.StartMs,
		DurationMs:  snapped,
	}
}

// State reports the gesture lifecycle state.
func (r *ResizeGesture) State() State {
	return r.state
}
