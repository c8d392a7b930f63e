package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cutreel/api/internal/editor"
	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/store"
	"github.com/cutreel/api/internal/timeline"
)

// ErrOverlap is returned when a keyframe would land on an occupied slot:
// explicit creation, and the duplicate commit, which adds a keyframe to a
// track whose collision window still contains the original's interval.
// Move and resize commits never return it; they clamp instead.
var ErrOverlap = errors.New("keyframe overlaps an existing keyframe")

// ErrTrackLocked is returned for edits against a locked track.
var ErrTrackLocked = errors.New("track is locked")

// TimelineService orchestrates track and keyframe state: CRUD, gesture
// commits, and viewport ruler computation.
type TimelineService struct {
	timeline *store.TimelineStore
	media    *store.MediaStore
}

func NewTimelineService(timelineStore *store.TimelineStore, mediaStore *store.MediaStore) *TimelineService {
	return &TimelineService{
		timeline: timelineStore,
		media:    mediaStore,
	}
}

// Tracks

func (s *TimelineService) CreateTrack(ctx context.Context, req *model.CreateTrackRequest) (*model.Track, error) {
	track := &model.Track{
		ID:        uuid.New().String(),
		ProjectID: req.ProjectID,
		Type:      req.Type,
		Label:     req.Label,
	}
	if track.Label == "" {
		track.Label = string(req.Type)
	}
	if err := s.timeline.CreateTrack(ctx, track); err != nil {
		return nil, fmt.Errorf("failed to create track: %w", err)
	}
	return track, nil
}

func (s *TimelineService) GetTrack(ctx context.Context, id string) (*model.Track, error) {
	return s.timeline.FindTrack(ctx, id)
}

// ListTracks returns the project's tracks in display order.
func (s *TimelineService) ListTracks(ctx context.Context, projectID string) ([]model.Track, error) {
	tracks, err := s.timeline.ListTracksByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	model.SortTracks(tracks)
	return tracks, nil
}

func (s *TimelineService) UpdateTrack(ctx context.Context, id string, req *model.UpdateTrackRequest) (*model.Track, error) {
	return s.timeline.UpdateTrack(ctx, id, store.TrackUpdate{
		Label:  req.Label,
		Locked: req.Locked,
	})
}

// DeleteTrack removes a track and all keyframes placed on it.
func (s *TimelineService) DeleteTrack(ctx context.Context, id string) error {
	return s.timeline.DeleteTrack(ctx, id)
}

// Keyframes

// CreateKeyframe places a media interval on a track. The duration is
// clamped to the allowed range before the overlap check, so an oversized
// request shrinks rather than fails; an occupied slot is an error.
func (s *TimelineService) CreateKeyframe(ctx context.Context, req *model.CreateKeyframeRequest) (*model.Keyframe, error) {
	track, err := s.timeline.FindTrack(ctx, req.TrackID)
	if err != nil {
		return nil, err
	}
	if track.Locked {
		return nil, ErrTrackLocked
	}

	item, err := s.media.FindMedia(ctx, req.MediaID)
	if err != nil {
		return nil, fmt.Errorf("media %s: %w", req.MediaID, err)
	}

	duration := clampCreateDuration(req.Duration, item.DurationMs)

	siblings, err := s.timeline.ListKeyframesByTrack(ctx, req.TrackID)
	if err != nil {
		return nil, err
	}
	for i := range siblings {
		if req.Timestamp < siblings[i].End() && req.Timestamp+duration > siblings[i].Timestamp {
			return nil, ErrOverlap
		}
	}

	kf := &model.Keyframe{
		ID:        uuid.New().String(),
		TrackID:   req.TrackID,
		Timestamp: req.Timestamp,
		Duration:  duration,
		Data: model.KeyframeData{
			Type:    req.DataType,
			MediaID: req.MediaID,
			Prompt:  req.Prompt,
		},
	}
	if err := s.timeline.CreateKeyframe(ctx, kf); err != nil {
		return nil, fmt.Errorf("failed to create keyframe: %w", err)
	}
	return kf, nil
}

func (s *TimelineService) GetKeyframe(ctx context.Context, id string) (*model.Keyframe, error) {
	return s.timeline.FindKeyframe(ctx, id)
}

func (s *TimelineService) ListKeyframes(ctx context.Context, trackID string) ([]model.Keyframe, error) {
	return s.timeline.ListKeyframesByTrack(ctx, trackID)
}

func (s *TimelineService) DeleteKeyframe(ctx context.Context, id string) error {
	return s.timeline.DeleteKeyframe(ctx, id)
}

// MoveKeyframe commits a drag gesture: the pointer delta is clamped against
// sibling bounds and the clamped timestamp is persisted. Gestures that
// started on an interactive child element, or arrived before the track row
// was laid out, are no-ops returning the unchanged keyframe.
func (s *TimelineService) MoveKeyframe(ctx context.Context, id string, req *model.MoveKeyframeRequest) (*model.Keyframe, error) {
	kf, siblings, idx, err := s.loadGestureState(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FromInteractive {
		return kf, nil
	}

	geom := editor.Geometry{TrackWidthPx: req.TrackWidthPx, TimelineMs: req.TimelineMs}
	g, err := editor.BeginDrag(editor.IntervalsOf(siblings), idx, geom, false)
	if errors.Is(err, editor.ErrNoGeometry) {
		return kf, nil
	}
	if err != nil {
		return nil, err
	}

	g.Move(req.DeltaPx)
	commit := g.End()
	return s.timeline.UpdateKeyframe(ctx, id, store.KeyframeUpdate{Timestamp: &commit.TimestampMs})
}

// ResizeKeyframe commits a trailing-edge resize: the previewed duration is
// snapped to the resize grid and clamped to the allowed range.
func (s *TimelineService) ResizeKeyframe(ctx context.Context, id string, req *model.ResizeKeyframeRequest) (*model.Keyframe, error) {
	kf, siblings, idx, err := s.loadGestureState(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FromInteractive {
		return kf, nil
	}

	geom := editor.Geometry{TrackWidthPx: req.TrackWidthPx, TimelineMs: req.TimelineMs}
	g, err := editor.BeginResize(editor.IntervalsOf(siblings), idx, geom, s.naturalDurationMs(ctx, kf))
	if errors.Is(err, editor.ErrNoGeometry) {
		return kf, nil
	}
	if err != nil {
		return nil, err
	}

	g.Move(req.DeltaPx)
	commit := g.End()
	return s.timeline.UpdateKeyframe(ctx, id, store.KeyframeUpdate{Duration: &commit.DurationMs})
}

// DuplicateKeyframe commits a duplicate-drag: the original keyframe is left
// untouched and a copy is created at the clamped ghost position. The drag
// bounds only exclude the siblings' intervals, so the ghost can still come
// to rest over the original; the commit re-checks every interval on the
// track, the original's included, and rejects with ErrOverlap.
func (s *TimelineService) DuplicateKeyframe(ctx context.Context, id string, req *model.DuplicateKeyframeRequest) (*model.Keyframe, error) {
	kf, siblings, idx, err := s.loadGestureState(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FromInteractive {
		return kf, nil
	}

	geom := editor.Geometry{TrackWidthPx: req.TrackWidthPx, TimelineMs: req.TimelineMs}
	g, err := editor.BeginDrag(editor.IntervalsOf(siblings), idx, geom, true)
	if errors.Is(err, editor.ErrNoGeometry) {
		return kf, nil
	}
	if err != nil {
		return nil, err
	}

	g.Move(req.DeltaPx)
	commit := g.End()

	for i := range siblings {
		if commit.TimestampMs < siblings[i].End() && commit.TimestampMs+commit.DurationMs > siblings[i].Timestamp {
			return nil, ErrOverlap
		}
	}

	dup := &model.Keyframe{
		ID:        uuid.New().String(),
		TrackID:   kf.TrackID,
		Timestamp: commit.TimestampMs,
		Duration:  commit.DurationMs,
		Data:      kf.Data,
	}
	if err := s.timeline.CreateKeyframe(ctx, dup); err != nil {
		return nil, fmt.Errorf("failed to persist duplicate: %w", err)
	}
	return dup, nil
}

// ComputeRuler returns tick marks for the requested viewport. Pure
// computation, no storage involved.
func (s *TimelineService) ComputeRuler(req *model.RulerRequest) timeline.Ruler {
	return timeline.ComputeRuler(timeline.Viewport{
		DurationSec:   req.DurationSec,
		Zoom:          req.Zoom,
		ViewportWidth: req.ViewportWidth,
		ContentWidth:  req.ContentWidth,
		ScrollLeft:    req.ScrollLeft,
	})
}

// loadGestureState loads a keyframe plus its sorted siblings and its index
// among them.
func (s *TimelineService) loadGestureState(ctx context.Context, id string) (*model.Keyframe, []model.Keyframe, int, error) {
	kf, err := s.timeline.FindKeyframe(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}

	track, err := s.timeline.FindTrack(ctx, kf.TrackID)
	if err != nil {
		return nil, nil, 0, err
	}
	if track.Locked {
		return nil, nil, 0, ErrTrackLocked
	}

	siblings, err := s.timeline.ListKeyframesByTrack(ctx, kf.TrackID)
	if err != nil {
		return nil, nil, 0, err
	}
	for i := range siblings {
		if siblings[i].ID == id {
			return kf, siblings, i, nil
		}
	}
	return nil, nil, 0, store.ErrNotFound
}

// naturalDurationMs looks up the natural duration of the keyframe's media.
// Missing media or still images report 0, which resize treats as unbounded
// below the product ceiling.
func (s *TimelineService) naturalDurationMs(ctx context.Context, kf *model.Keyframe) int64 {
	if kf.Data.MediaID == "" {
		return 0
	}
	item, err := s.media.FindMedia(ctx, kf.Data.MediaID)
	if err != nil {
		return 0
	}
	return item.DurationMs
}

// clampCreateDuration applies the duration range for a newly placed
// keyframe: at least the minimum, at most the natural duration when known,
// never above the product ceiling.
func clampCreateDuration(requested, naturalMs int64) int64 {
	max := int64(model.TrackMaxDurationMs)
	if naturalMs > 0 && naturalMs < max {
		max = naturalMs
	}
	if max < model.MinKeyframeDurationMs {
		max = model.MinKeyframeDurationMs
	}
	d := requested
	if d > max {
		d = max
	}
	if d < model.MinKeyframeDurationMs {
		d = model.MinKeyframeDurationMs
	}
	return d
}
