package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cutreel/api/internal/model"
)

// TimelineStore persists tracks and their keyframes.
type TimelineStore struct {
	redis *redis.Client
}

// NewTimelineStore creates a store on the shared Redis client.
func NewTimelineStore(redisClient *redis.Client) *TimelineStore {
	return &TimelineStore{redis: redisClient}
}

// TrackUpdate is a partial track mutation; nil fields are left unchanged.
type TrackUpdate struct {
	Label  *string
	Locked *bool
}

// KeyframeUpdate is a partial keyframe mutation; nil fields are left
// unchanged.
type KeyframeUpdate struct {
	Timestamp *int64
	Duration  *int64
}

func trackKey(id string) string { return fmt.Sprintf("track:%s", id) }
func projectTracksKey(id string) string { return fmt.Sprintf("project:%s:tracks", id) }
func keyframeKey(id string) string { return fmt.Sprintf("keyframe:%s", id) }
func trackKeyframesKey(id string) string { return fmt.Sprintf("track:%s:keyframes", id) }
func mediaKeyframesKey(id string) string { return fmt.Sprintf("media:%s:keyframes", id) }

// CreateTrack persists a track and indexes it under its project.
func (s *TimelineStore) CreateTrack(ctx context.Context, track *model.Track) error {
	if err := setJSON(ctx, s.redis, trackKey(track.ID), track); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, projectTracksKey(track.ProjectID), track.ID).Err()
}

// FindTrack fetches one track by id.
func (s *TimelineStore) FindTrack(ctx context.Context, id string) (*model.Track, error) {
	var track model.Track
	if err := getJSON(ctx, s.redis, trackKey(id), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// ListTracksByProject returns a project's tracks in display-priority order.
func (s *TimelineStore) ListTracksByProject(ctx context.Context, projectID string) ([]model.Track, error) {
	ids, err := s.redis.SMembers(ctx, projectTracksKey(projectID)).Result()
	if err != nil {
		return nil, err
	}

	tracks := make([]model.Track, 0, len(ids))
	for _, id := range ids {
		track, err := s.FindTrack(ctx, id)
		if err == ErrNotFound {
			continue // stale index entry
		}
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}
	model.SortTracks(tracks)
	return tracks, nil
}

// UpdateTrack applies a partial mutation to a track.
func (s *TimelineStore) UpdateTrack(ctx context.Context, id string, update TrackUpdate) (*model.Track, error) {
	track, err := s.FindTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Label != nil {
		track.Label = *update.Label
	}
	if update.Locked != nil {
		track.Locked = *update.Locked
	}
	if err := setJSON(ctx, s.redis, trackKey(id), track); err != nil {
		return nil, err
	}
	return track, nil
}

// DeleteTrack removes a track and cascades to its keyframes.
func (s *TimelineStore) DeleteTrack(ctx context.Context, id string) error {
	track, err := s.FindTrack(ctx, id)
	if err != nil {
		return err
	}

	keyframes, err := s.ListKeyframesByTrack(ctx, id)
	if err != nil {
		return err
	}
	for _, kf := range keyframes {
		if err := s.DeleteKeyframe(ctx, kf.ID); err != nil && err != ErrNotFound {
			return err
		}
	}

	if err := s.redis.Del(ctx, trackKey(id)).Err(); err != nil {
		return err
	}
	return s.redis.SRem(ctx, projectTracksKey(track.ProjectID), id).Err()
}

// CreateKeyframe persists a keyframe and indexes it under its track and
// referenced media item.
func (s *TimelineStore) CreateKeyframe(ctx context.Context, kf *model.Keyframe) error {
	if err := setJSON(ctx, s.redis, keyframeKey(kf.ID), kf); err != nil {
		return err
	}
	if err := s.redis.SAdd(ctx, trackKeyframesKey(kf.TrackID), kf.ID).Err(); err != nil {
		return err
	}
	if kf.Data.MediaID != "" {
		return s.redis.SAdd(ctx, mediaKeyframesKey(kf.Data.MediaID), kf.ID).Err()
	}
	return nil
}

// FindKeyframe fetches one keyframe by id.
func (s *TimelineStore) FindKeyframe(ctx context.Context, id string) (*model.Keyframe, error) {
	var kf model.Keyframe
	if err := getJSON(ctx, s.redis, keyframeKey(id), &kf); err != nil {
		return nil, err
	}
	return &kf, nil
}

// ListKeyframesByTrack returns a track's keyframes sorted by timestamp
// ascending. Storage order is insertion order, so the sort happens here.
func (s *TimelineStore) ListKeyframesByTrack(ctx context.Context, trackID string) ([]model.Keyframe, error) {
	ids, err := s.redis.SMembers(ctx, trackKeyframesKey(trackID)).Result()
	if err != nil {
		return nil, err
	}

	keyframes := make([]model.Keyframe, 0, len(ids))
	for _, id := range ids {
		kf, err := s.FindKeyframe(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		keyframes = append(keyframes, *kf)
	}
	model.SortKeyframes(keyframes)
	return keyframes, nil
}

// UpdateKeyframe applies a partial mutation and returns the stored result
// with all other fields unchanged.
func (s *TimelineStore) UpdateKeyframe(ctx context.Context, id string, update KeyframeUpdate) (*model.Keyframe, error) {
	kf, err := s.FindKeyframe(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Timestamp != nil {
		kf.Timestamp = *update.Timestamp
	}
	if update.Duration != nil {
		kf.Duration = *update.Duration
	}
	if err := setJSON(ctx, s.redis, keyframeKey(id), kf); err != nil {
		return nil, err
	}
	return kf, nil
}

// DeleteKeyframe removes a keyframe and its index entries.
func (s *TimelineStore) DeleteKeyframe(ctx context.Context, id string) error {
	kf, err := s.FindKeyframe(ctx, id)
	if err != nil {
		return err
	}
	if err := s.redis.Del(ctx, keyframeKey(id)).Err(); err != nil {
		return err
	}
	if err := s.redis.SRem(ctx, trackKeyframesKey(kf.TrackID), id).Err(); err != nil {
		return err
	}
	if kf.Data.MediaID != "" {
		return s.redis.SRem(ctx, mediaKeyframesKey(kf.Data.MediaID), id).Err()
	}
	return nil
}

// DeleteKeyframesByMedia cascades a media deletion to every keyframe that
// references it.
func (s *TimelineStore) DeleteKeyframesByMedia(ctx context.Context, mediaID string) error {
	ids, err := s.redis.SMembers(ctx, mediaKeyframesKey(mediaID)).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.DeleteKeyframe(ctx, id); err != nil && err != ErrNotFound {
			return err
		}
	}
	return s.redis.Del(ctx, mediaKeyframesKey(mediaID)).Err()
}
