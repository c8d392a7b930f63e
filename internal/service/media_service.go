package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cutreel/api/internal/media"
	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/provider"
	"github.com/cutreel/api/internal/store"
)

// DurationProber reports the natural duration of a local media file.
type DurationProber interface {
	ProbeDurationMs(ctx context.Context, inputPath string) (int64, error)
}

// MediaService manages the media library: registration, upload blobs,
// provider status refresh, and cascading deletes.
type MediaService struct {
	media     *store.MediaStore
	timeline  *store.TimelineStore
	cache     *media.ObjectURLCache
	resolver  *media.Resolver
	providers *provider.Registry
	prober    DurationProber
}

func NewMediaService(
	mediaStore *store.MediaStore,
	timelineStore *store.TimelineStore,
	cache *media.ObjectURLCache,
	providers *provider.Registry,
	prober DurationProber,
) *MediaService {
	return &MediaService{
		media:     mediaStore,
		timeline:  timelineStore,
		cache:     cache,
		resolver:  media.NewResolver(cache),
		providers: providers,
		prober:    prober,
	}
}

// RegisterMedia records a media item. Generated items start pending and are
// advanced by RefreshMedia polls; uploaded items with a direct URL are
// complete immediately.
func (s *MediaService) RegisterMedia(ctx context.Context, req *model.RegisterMediaRequest) (*model.MediaItem, error) {
	now := time.Now()
	item := &model.MediaItem{
		ID:        uuid.New().String(),
		ProjectID: req.ProjectID,
		Kind:      req.Kind,
		Provider:  req.Provider,
		MediaType: req.MediaType,
		Input: model.MediaInput{
			Prompt:   req.Prompt,
			FileName: req.FileName,
		},
		URL:        req.URL,
		BlobKey:    req.BlobKey,
		DurationMs: req.DurationMs,
		JobRef:     req.JobRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch req.Kind {
	case model.MediaKindUploaded:
		item.Status = model.MediaStatusCompleted
	default:
		item.Status = model.MediaStatusPending
		if item.Provider == "" || item.JobRef == "" {
			return nil, fmt.Errorf("generated media requires provider and jobRef")
		}
		if _, err := s.providers.Lookup(item.Provider); err != nil {
			return nil, err
		}
	}

	if err := s.media.CreateMedia(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to register media: %w", err)
	}
	return item, nil
}

// UploadBlob stores uploaded bytes in the object-URL cache and registers a
// completed media item backed by them. Video and audio uploads are probed
// for their natural duration.
func (s *MediaService) UploadBlob(ctx context.Context, projectID, fileName string, mediaType model.MediaType, data []byte) (*model.MediaItem, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}

	id := uuid.New().String()
	url := s.cache.Acquire(id, data)

	var durationMs int64
	if mediaType != model.MediaTypeImage && s.prober != nil {
		d, err := s.probeBlob(ctx, id, data)
		if err != nil {
			log.Printf("media: duration probe failed for %s: %v", fileName, err)
		} else {
			durationMs = d
		}
	}

	now := time.Now()
	item := &model.MediaItem{
		ID:         id,
		ProjectID:  projectID,
		Kind:       model.MediaKindUploaded,
		Status:     model.MediaStatusCompleted,
		MediaType:  mediaType,
		Input:      model.MediaInput{FileName: fileName},
		URL:        url,
		BlobKey:    id,
		DurationMs: durationMs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.media.CreateMedia(ctx, item); err != nil {
		s.cache.Release(id)
		return nil, fmt.Errorf("failed to register upload: %w", err)
	}
	return item, nil
}

// RefreshMedia polls the item's provider once and applies the result.
// Terminal items are returned as-is; completion status is final.
func (s *MediaService) RefreshMedia(ctx context.Context, id string) (*model.MediaItem, error) {
	item, err := s.media.FindMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Kind != model.MediaKindGenerated || item.Status.Terminal() {
		return item, nil
	}

	poller, err := s.providers.Lookup(item.Provider)
	if err != nil {
		return nil, err
	}

	status, output, err := poller.Poll(ctx, item.JobRef)
	if err != nil {
		return nil, fmt.Errorf("poll %s: %w", item.Provider, err)
	}
	if status == item.Status {
		return item, nil
	}

	var errMsg *string
	if status == model.MediaStatusFailed {
		msg := fmt.Sprintf("%s generation failed", item.Provider)
		errMsg = &msg
	}
	return s.media.UpdateStatus(ctx, id, status, output, errMsg)
}

// GetMedia returns a single media item.
func (s *MediaService) GetMedia(ctx context.Context, id string) (*model.MediaItem, error) {
	return s.media.FindMedia(ctx, id)
}

// ListMedia returns a project's media library.
func (s *MediaService) ListMedia(ctx context.Context, projectID string) ([]model.MediaItem, error) {
	return s.media.ListMediaByProject(ctx, projectID)
}

// DeleteMedia removes an item, every keyframe referencing it, and any
// cached upload bytes.
func (s *MediaService) DeleteMedia(ctx context.Context, id string) error {
	item, err := s.media.FindMedia(ctx, id)
	if err != nil {
		return err
	}

	if err := s.timeline.DeleteKeyframesByMedia(ctx, id); err != nil {
		return err
	}
	if item.BlobKey != "" {
		s.cache.Release(item.BlobKey)
	}
	return s.media.DeleteMedia(ctx, id)
}

// Blob returns the raw bytes behind an uploaded item's cache URL.
func (s *MediaService) Blob(mediaID string) ([]byte, bool) {
	return s.cache.Blob(mediaID)
}

// ResolveURL returns the playback URL for an item, empty when unresolvable.
func (s *MediaService) ResolveURL(item *model.MediaItem) string {
	return s.resolver.Resolve(item)
}

// probeBlob writes the blob to a temp file so ffprobe can read it.
func (s *MediaService) probeBlob(ctx context.Context, id string, data []byte) (int64, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("cutreel_probe_%s", id))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return 0, err
	}
	defer os.Remove(path)
	return s.prober.ProbeDurationMs(ctx, path)
}
