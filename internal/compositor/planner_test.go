package compositor

import (
	"reflect"
	"testing"

	"github.com/cutreel/api/internal/model"
)

func resolved(id string, timestamp, duration int64, url string) model.ResolvedKeyframe {
	return model.ResolvedKeyframe{
		Keyframe: model.Keyframe{
			ID:        id,
			Timestamp: timestamp,
			Duration:  duration,
			Data:      model.KeyframeData{Type: model.KeyframeDataVideo, MediaID: "media-" + id},
		},
		URL:       url,
		MediaType: model.MediaTypeVideo,
	}
}

func TestPlanTrackWithGaps(t *testing.T) {
	keyframes := []model.ResolvedKeyframe{
		resolved("a", 0, 5000, "https://cdn/a.mp4"),
		resolved("b", 7000, 3000, "https://cdn/b.mp4"),
	}

	segments, warnings := PlanTrack(keyframes, 12000)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	want := []Segment{
		{Kind: model.SegmentFrame, TimestampMs: 0, DurationMs: 5000, URL: "https://cdn/a.mp4", MediaID: "media-a", MediaType: model.MediaTypeVideo},
		{Kind: model.SegmentGap, TimestampMs: 5000, DurationMs: 2000},
		{Kind: model.SegmentFrame, TimestampMs: 7000, DurationMs: 3000, URL: "https://cdn/b.mp4", MediaID: "media-b", MediaType: model.MediaTypeVideo},
		{Kind: model.SegmentGap, TimestampMs: 10000, DurationMs: 2000},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("plan =\n%+v\nwant\n%+v", segments, want)
	}
}

func TestPlanTrackEmpty(t *testing.T) {
	segments, warnings := PlanTrack(nil, 12000)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	want := []Segment{{Kind: model.SegmentGap, TimestampMs: 0, DurationMs: 12000}}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("plan = %+v, want single gap %+v", segments, want)
	}
}

func TestPlanTrackUnsortedInput(t *testing.T) {
	// Storage order is insertion order; planning must sort.
	keyframes := []model.ResolvedKeyframe{
		resolved("b", 7000, 3000, "https://cdn/b.mp4"),
		resolved("a", 0, 5000, "https://cdn/a.mp4"),
	}

	segments, _ := PlanTrack(keyframes, 12000)
	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}
	if segments[0].MediaID != "media-a" {
		t.Errorf("first frame = %s, want media-a", segments[0].MediaID)
	}
}

func TestPlanTrackSkipsUnresolvable(t *testing.T) {
	keyframes := []model.ResolvedKeyframe{
		resolved("a", 0, 5000, "https://cdn/a.mp4"),
		resolved("broken", 5000, 2000, ""), // no URL
		resolved("b", 7000, 3000, "https://cdn/b.mp4"),
	}

	segments, warnings := PlanTrack(keyframes, 12000)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}

	// The skipped keyframe's span becomes part of the gap.
	want := []Segment{
		{Kind: model.SegmentFrame, TimestampMs: 0, DurationMs: 5000, URL: "https://cdn/a.mp4", MediaID: "media-a", MediaType: model.MediaTypeVideo},
		{Kind: model.SegmentGap, TimestampMs: 5000, DurationMs: 2000},
		{Kind: model.SegmentFrame, TimestampMs: 7000, DurationMs: 3000, URL: "https://cdn/b.mp4", MediaID: "media-b", MediaType: model.MediaTypeVideo},
		{Kind: model.SegmentGap, TimestampMs: 10000, DurationMs: 2000},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("plan =\n%+v\nwant\n%+v", segments, want)
	}
}

func TestPlanTrackOverlapTrimsStart(t *testing.T) {
	keyframes := []model.ResolvedKeyframe{
		resolved("a", 0, 5000, "https://cdn/a.mp4"),
		resolved("b", 3000, 4000, "https://cdn/b.mp4"), // overlaps a by 2000
	}

	segments, warnings := PlanTrack(keyframes, 7000)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	want := []Segment{
		{Kind: model.SegmentFrame, TimestampMs: 0, DurationMs: 5000, URL: "https://cdn/a.mp4", MediaID: "media-a", MediaType: model.MediaTypeVideo},
		{Kind: model.SegmentFrame, TimestampMs: 5000, DurationMs: 2000, URL: "https://cdn/b.mp4", MediaID: "media-b", MediaType: model.MediaTypeVideo},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("plan =\n%+v\nwant\n%+v", segments, want)
	}
}

func TestPlanTrackSwallowedKeyframeSkipped(t *testing.T) {
	keyframes := []model.ResolvedKeyframe{
		resolved("a", 0, 10000, "https://cdn/a.mp4"),
		resolved("b", 2000, 3000, "https://cdn/b.mp4"), // fully inside a
	}

	segments, warnings := PlanTrack(keyframes, 10000)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one for the swallowed keyframe", warnings)
	}
	if len(segments) != 1 || segments[0].MediaID != "media-a" {
		t.Errorf("plan = %+v, want only keyframe a", segments)
	}
}

func TestPlanTrackIdempotent(t *testing.T) {
	keyframes := []model.ResolvedKeyframe{
		resolved("b", 7000, 3000, "https://cdn/b.mp4"),
		resolved("a", 0, 5000, "https://cdn/a.mp4"),
		resolved("c", 11000, 1000, ""),
	}

	first, _ := PlanTrack(keyframes, 15000)
	second, _ := PlanTrack(keyframes, 15000)
	if !reflect.DeepEqual(first, second) {
		t.Error("planning the same state twice produced different segment lists")
	}
}

func TestTotalDurationMs(t *testing.T) {
	tracks := []model.ResolvedTrack{
		{
			Track: model.Track{ID: "t1", Type: model.TrackTypeVideo},
			Keyframes: []model.ResolvedKeyframe{
				resolved("a", 0, 5000, "u"),
				resolved("b", 7000, 3000, "u"),
			},
		},
		{
			Track: model.Track{ID: "t2", Type: model.TrackTypeMusic},
			Keyframes: []model.ResolvedKeyframe{
				resolved("c", 2000, 12000, "u"), // furthest end: 14000
			},
		},
	}

	if got := TotalDurationMs(tracks, 1000); got != 15000 {
		t.Errorf("TotalDurationMs = %d, want 15000", got)
	}
}

func TestTotalDurationMsEmptyTimeline(t *testing.T) {
	if got := TotalDurationMs(nil, 1000); got != DefaultTotalDurationMs {
		t.Errorf("TotalDurationMs = %d, want default %d", got, DefaultTotalDurationMs)
	}

	empty := []model.ResolvedTrack{{Track: model.Track{ID: "t1", Type: model.TrackTypeVideo}}}
	if got := TotalDurationMs(empty, 1000); got != DefaultTotalDurationMs {
		t.Errorf("TotalDurationMs with empty tracks = %d, want default", got)
	}
}
