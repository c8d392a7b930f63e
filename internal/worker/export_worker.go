package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cutreel/api/internal/compositor"
	"github.com/cutreel/api/internal/media"
	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/render"
	"github.com/cutreel/api/internal/service"
	"github.com/cutreel/api/internal/storage"
	"github.com/cutreel/api/internal/websocket"
)

// ExportWorker processes export jobs: it composites the frozen timeline
// snapshot into one video file and publishes it.
type ExportWorker struct {
	exportService *service.ExportService
	renderer      *render.FFmpegRenderer
	cache         *media.ObjectURLCache
	storageClient storage.Client
	hub           *websocket.Hub
	workDir       string
}

// NewExportWorker creates a new export worker
func NewExportWorker(
	exportService *service.ExportService,
	renderer *render.FFmpegRenderer,
	cache *media.ObjectURLCache,
	storageClient storage.Client,
	hub *websocket.Hub,
	workDir string,
) *ExportWorker {
	return &ExportWorker{
		exportService: exportService,
		renderer:      renderer,
		cache:         cache,
		storageClient: storageClient,
		hub:           hub,
		workDir:       workDir,
	}
}

// ProcessTask handles export task processing
func (w *ExportWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting export job: %s", jobID)

	// A cancel that raced the dequeue wins; the job never starts.
	job, err := w.exportService.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == model.JobStatusCanceled {
		log.Printf("Export job %s was canceled before start", jobID)
		return nil
	}

	var payload model.ExportJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload")
		return fmt.Errorf("failed to unmarshal export payload: %w", err)
	}

	jobDir := filepath.Join(w.workDir, "export_"+jobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		w.failJob(ctx, jobID, "Failed to create work directory")
		return err
	}
	defer os.RemoveAll(jobDir)

	localized, cleanup, err := w.localizeBlobs(&payload, jobDir)
	if err != nil {
		w.failJob(ctx, jobID, fmt.Sprintf("Failed to stage uploads: %v", err))
		return err
	}
	defer cleanup()

	comp := compositor.New(w.renderer, jobDir)
	result, err := comp.Export(ctx, localized, func(percent int, step string) {
		w.updateProgress(ctx, jobID, percent, step)
	})
	if err != nil {
		return w.handleExportError(ctx, jobID, err)
	}

	fileURL, err := w.publish(ctx, payload.ProjectID, jobID, result.OutputPath)
	if err != nil {
		w.failJob(ctx, jobID, fmt.Sprintf("Upload failed: %v", err))
		return err
	}

	exportResult := &model.ExportResultResponse{
		JobID:       jobID,
		FileURL:     fileURL,
		AspectRatio: payload.AspectRatio,
		DurationMs:  result.DurationMs,
		Warnings:    result.Warnings,
		CreatedAt:   time.Now(),
	}

	if err := w.exportService.CompleteJob(ctx, jobID, exportResult); err != nil {
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}

	w.hub.BroadcastComplete(jobID, exportResult)
	log.Printf("Export job %s completed: %s", jobID, fileURL)
	return nil
}

// handleExportError maps compositor failures onto job state. Validation
// errors are final; retrying an empty timeline cannot succeed.
func (w *ExportWorker) handleExportError(ctx context.Context, jobID string, err error) error {
	var vErr *compositor.ValidationError
	if errors.As(err, &vErr) {
		w.failJob(ctx, jobID, vErr.Message)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	var rErr *compositor.RenderError
	if errors.As(err, &rErr) {
		w.failJob(ctx, jobID, fmt.Sprintf("Render failed at %s", rErr.Step))
		return err
	}

	w.failJob(ctx, jobID, fmt.Sprintf("Export failed: %v", err))
	return err
}

// localizeBlobs rewrites cache-backed blob URLs to local files ffmpeg can
// read. The payload is copied; the queued snapshot is never mutated.
func (w *ExportWorker) localizeBlobs(payload *model.ExportJobPayload, jobDir string) (*model.ExportJobPayload, func(), error) {
	out := *payload
	out.Tracks = make([]model.ResolvedTrack, len(payload.Tracks))
	copy(out.Tracks, payload.Tracks)

	var staged []string
	cleanup := func() {
		for _, p := range staged {
			os.Remove(p)
		}
	}

	for ti := range out.Tracks {
		keyframes := make([]model.ResolvedKeyframe, len(out.Tracks[ti].Keyframes))
		copy(keyframes, out.Tracks[ti].Keyframes)
		out.Tracks[ti].Keyframes = keyframes

		for ki := range keyframes {
			id := media.BlobID(keyframes[ki].URL)
			if id == "" {
				continue
			}
			blob, ok := w.cache.Blob(id)
			if !ok {
				// Leave the URL as-is; planning skips it with a warning.
				keyframes[ki].URL = ""
				continue
			}
			path := filepath.Join(jobDir, "blob_"+id)
			if err := os.WriteFile(path, blob, 0o600); err != nil {
				cleanup()
				return nil, nil, err
			}
			staged = append(staged, path)
			keyframes[ki].URL = path
		}
	}

	return &out, cleanup, nil
}

// publish uploads the finished file to object storage when configured,
// falling back to the local path in development.
func (w *ExportWorker) publish(ctx context.Context, projectID, jobID, outputPath string) (string, error) {
	if w.storageClient == nil {
		// Move out of the job dir, which is removed on return.
		finalPath := filepath.Join(w.workDir, fmt.Sprintf("export_%s.mp4", jobID))
		if err := os.Rename(outputPath, finalPath); err != nil {
			return "", err
		}
		return finalPath, nil
	}

	key := storage.ExportKey(projectID, jobID)
	return w.storageClient.UploadFile(ctx, key, outputPath, "video/mp4")
}

func (w *ExportWorker) updateProgress(ctx context.Context, jobID string, progress int, step string) {
	if err := w.exportService.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
		log.Printf("Failed to update progress: %v", err)
	}
	w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
}

func (w *ExportWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if err := w.exportService.FailJob(ctx, jobID, errMsg); err != nil {
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "EXPORT_FAILED", errMsg)
}
