package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cutreel/api/internal/model"
)

// MediaStore persists media items.
type MediaStore struct {
	redis *redis.Client
}

// NewMediaStore creates a store on the shared Redis client.
func NewMediaStore(redisClient *redis.Client) *MediaStore {
	return &MediaStore{redis: redisClient}
}

// ErrTerminalStatus is returned when a status transition is attempted on a
// media item that already reached a terminal state.
var ErrTerminalStatus = fmt.Errorf("store: media status is terminal")

func mediaKey(id string) string { return fmt.Sprintf("media:%s", id) }
func projectMediaKey(id string) string { return fmt.Sprintf("project:%s:media", id) }

// CreateMedia persists a media item and indexes it under its project.
func (s *MediaStore) CreateMedia(ctx context.Context, item *model.MediaItem) error {
	if err := setJSON(ctx, s.redis, mediaKey(item.ID), item); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, projectMediaKey(item.ProjectID), item.ID).Err()
}

// FindMedia fetches one media item by id.
func (s *MediaStore) FindMedia(ctx context.Context, id string) (*model.MediaItem, error) {
	var item model.MediaItem
	if err := getJSON(ctx, s.redis, mediaKey(id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListMediaByProject returns all media items of a project.
func (s *MediaStore) ListMediaByProject(ctx context.Context, projectID string) ([]model.MediaItem, error) {
	ids, err := s.redis.SMembers(ctx, projectMediaKey(projectID)).Result()
	if err != nil {
		return nil, err
	}

	items := make([]model.MediaItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.FindMedia(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// UpdateStatus transitions a media item's lifecycle status. Terminal states
// are final: transitions away from completed or failed are rejected.
func (s *MediaStore) UpdateStatus(ctx context.Context, id string, status model.MediaStatus, output *model.MediaOutput, errMsg *string) (*model.MediaItem, error) {
	item, err := s.FindMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status.Terminal() && item.Status != status {
		return nil, ErrTerminalStatus
	}

	item.Status = status
	if output != nil {
		item.Output = *output
	}
	item.Error = errMsg
	item.UpdatedAt = time.Now()

	if err := setJSON(ctx, s.redis, mediaKey(id), item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateDuration records the probed natural duration of the asset.
func (s *MediaStore) UpdateDuration(ctx context.Context, id string, durationMs int64) (*model.MediaItem, error) {
	item, err := s.FindMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	item.DurationMs = durationMs
	item.UpdatedAt = time.Now()
	if err := setJSON(ctx, s.redis, mediaKey(id), item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteMedia removes a media item. Keyframe cascade and blob-URL release
// are the timeline service's responsibility.
func (s *MediaStore) DeleteMedia(ctx context.Context, id string) error {
	item, err := s.FindMedia(ctx, id)
	if err != nil {
		return err
	}
	if err := s.redis.Del(ctx, mediaKey(id)).Err(); err != nil {
		return err
	}
	return s.redis.SRem(ctx, projectMediaKey(item.ProjectID), id).Err()
}
