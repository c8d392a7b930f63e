package compositor

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/render"
)

// ProgressFunc receives monotonically non-decreasing percentages. The value
// stays below 100 until the final concatenation has completed.
type ProgressFunc func(percent int, step string)

// Result is the outcome of a successful export.
type Result struct {
	OutputPath   string
	DurationMs   int64
	SegmentCount int
	Warnings     []string
}

// Compositor produces one finished video file per export request. Segments
// render strictly sequentially because the backend accepts one command at a
// time.
type Compositor struct {
	renderer render.Renderer
	workDir  string
}

// New creates a compositor that renders intermediate clips under workDir.
func New(renderer render.Renderer, workDir string) *Compositor {
	return &Compositor{renderer: renderer, workDir: workDir}
}

// Export plans and renders the payload's primary video track.
// Resolution failures were already absorbed into empty URLs during payload
// construction and surface as warnings here; backend failures abort the
// whole export.
func (c *Compositor) Export(ctx context.Context, payload *model.ExportJobPayload, onProgress ProgressFunc) (*Result, error) {
	progress := newProgressGate(onProgress)
	progress(2, "Planning segments...")

	segments, warnings := c.planPrimaryTrack(payload)
	for _, w := range warnings {
		log.Printf("Export warning: %s", w)
	}
	if segments == nil {
		return nil, &ValidationError{Message: "no track has any renderable segment"}
	}

	width, height := payload.AspectRatio.Dimensions()

	clipPaths := make([]string, 0, len(segments))
	for i, seg := range segments {
		step := fmt.Sprintf("Rendering segment %d/%d...", i+1, len(segments))
		progress(segmentPercent(i, len(segments)), step)

		clipPath := filepath.Join(c.workDir, fmt.Sprintf("seg_%03d.mp4", i))
		if err := c.renderSegment(ctx, seg, width, height, clipPath); err != nil {
			return nil, &RenderError{Step: fmt.Sprintf("segment %d", i), Err: err}
		}
		clipPaths = append(clipPaths, clipPath)
	}

	progress(99, "Concatenating clips...")
	outPath := filepath.Join(c.workDir, "output.mp4")
	if err := c.renderer.Concat(ctx, clipPaths, outPath); err != nil {
		return nil, &RenderError{Step: "concat", Err: err}
	}
	progress(100, "Done")

	return &Result{
		OutputPath:   outPath,
		DurationMs:   payload.TotalDurationMs,
		SegmentCount: len(segments),
		Warnings:     warnings,
	}, nil
}

// planPrimaryTrack plans video tracks in display-priority order and returns
// the first plan with at least one real frame. Tracks planning to all-gaps
// are excluded; nil means no track qualified.
func (c *Compositor) planPrimaryTrack(payload *model.ExportJobPayload) ([]Segment, []string) {
	var allWarnings []string
	for _, rt := range payload.Tracks {
		if rt.Track.Type != model.TrackTypeVideo {
			continue
		}
		segments, warnings := PlanTrack(rt.Keyframes, payload.TotalDurationMs)
		allWarnings = append(allWarnings, warnings...)
		if HasFrames(segments) {
			return segments, allWarnings
		}
		if len(rt.Keyframes) > 0 {
			allWarnings = append(allWarnings, fmt.Sprintf("track %s: no valid segments, excluded", rt.Track.ID))
		}
	}
	return nil, allWarnings
}

func (c *Compositor) renderSegment(ctx context.Context, seg Segment, width, height int, outPath string) error {
	if seg.Kind == model.SegmentGap {
		return c.renderer.RenderColor(ctx, render.ColorClipSpec{
			Color:      "black",
			DurationMs: seg.DurationMs,
			Width:      width,
			Height:     height,
			OutPath:    outPath,
		})
	}
	return c.renderer.RenderMedia(ctx, render.MediaClipSpec{
		SourceURL:  seg.URL,
		MediaType:  seg.MediaType,
		DurationMs: seg.DurationMs,
		Width:      width,
		Height:     height,
		OutPath:    outPath,
	})
}

// segmentPercent spreads segment rendering across 5..98 so the 99% mark is
// reserved for concatenation.
func segmentPercent(index, total int) int {
	if total == 0 {
		return 98
	}
	return 5 + (93*index)/total
}

// newProgressGate wraps a ProgressFunc so reported percentages never
// decrease.
func newProgressGate(fn ProgressFunc) ProgressFunc {
	last := -1
	return func(percent int, step string) {
		if fn == nil {
			return
		}
		if percent < last {
			percent = last
		}
		last = percent
		fn(percent, step)
	}
}
