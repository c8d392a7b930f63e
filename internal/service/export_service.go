package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/cutreel/api/internal/compositor"
	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/store"
)

const TaskTypeExport = "export:process"

// ExportService manages export job lifecycle: snapshotting the timeline,
// queueing the composite job, and serving status and results.
type ExportService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
	timeline    *store.TimelineStore
	mediaSvc    *MediaService
	paddingMs   int64
}

func NewExportService(
	redisClient *redis.Client,
	asynqClient *asynq.Client,
	timelineStore *store.TimelineStore,
	mediaSvc *MediaService,
	paddingMs int64,
) *ExportService {
	return &ExportService{
		redis:       redisClient,
		asynqClient: asynqClient,
		timeline:    timelineStore,
		mediaSvc:    mediaSvc,
		paddingMs:   paddingMs,
	}
}

// StartExport freezes the project's timeline into a job payload and queues
// it. Media URLs are resolved now, not at render time, so in-flight edits
// cannot change a queued export.
func (s *ExportService) StartExport(ctx context.Context, req *model.ExportStartRequest) (*model.ExportStartResponse, error) {
	payload, err := s.snapshotTimeline(ctx, req.ProjectID, req.AspectRatio)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	now := time.Now()

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypeExport,
		Status:    model.JobStatusQueued,
		Progress:  0,
		CreatedAt: now,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	job.Payload = payloadBytes

	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := newExportTask(jobID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.asynqClient.Enqueue(task,
		asynq.Queue("export"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.ExportStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}, nil
}

// GetStatus returns the current status of an export job
func (s *ExportService) GetStatus(ctx context.Context, jobID string) (*model.ExportStatusResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.ExportStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
	}, nil
}

// GetResult returns the result of a succeeded export job
func (s *ExportService) GetResult(ctx context.Context, jobID string) (*model.ExportResultResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusSucceeded {
		return nil, fmt.Errorf("job not completed")
	}

	var result model.ExportResultResponse
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// CancelExport cancels a queued export. Once the worker has picked the job
// up it runs to completion; only queued jobs can be canceled.
func (s *ExportService) CancelExport(ctx context.Context, jobID string) (*model.ExportCancelResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusQueued {
		return nil, fmt.Errorf("job already started")
	}

	job.Status = model.JobStatusCanceled
	now := time.Now()
	job.CompletedAt = &now

	if err := s.saveJob(ctx, job); err != nil {
		return nil, err
	}

	return &model.ExportCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// GetJob returns the raw job record (used by the worker).
func (s *ExportService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	return s.getJob(ctx, jobID)
}

// UpdateJobProgress updates job progress (called by worker)
func (s *ExportService) UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Progress = progress
	job.CurrentStep = step

	if job.Status == model.JobStatusQueued {
		job.Status = model.JobStatusRunning
		now := time.Now()
		job.StartedAt = &now
	}

	return s.saveJob(ctx, job)
}

// CompleteJob marks job as succeeded (called by worker)
func (s *ExportService) CompleteJob(ctx context.Context, jobID string, result interface{}) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusSucceeded
	job.Progress = 100
	job.Result = resultBytes
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// FailJob marks job as failed (called by worker)
func (s *ExportService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// snapshotTimeline resolves every keyframe's media to a concrete URL and
// computes the total duration the composite will cover.
func (s *ExportService) snapshotTimeline(ctx context.Context, projectID string, ratio model.AspectRatio) (*model.ExportJobPayload, error) {
	tracks, err := s.timeline.ListTracksByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	model.SortTracks(tracks)

	resolved := make([]model.ResolvedTrack, 0, len(tracks))
	for _, track := range tracks {
		keyframes, err := s.timeline.ListKeyframesByTrack(ctx, track.ID)
		if err != nil {
			return nil, err
		}

		rt := model.ResolvedTrack{Track: track}
		for _, kf := range keyframes {
			rk := model.ResolvedKeyframe{Keyframe: kf}
			if kf.Data.MediaID != "" {
				if item, err := s.mediaSvc.GetMedia(ctx, kf.Data.MediaID); err == nil {
					rk.URL = s.mediaSvc.ResolveURL(item)
					rk.MediaType = item.MediaType
				}
			}
			rt.Keyframes = append(rt.Keyframes, rk)
		}
		resolved = append(resolved, rt)
	}

	return &model.ExportJobPayload{
		ProjectID:       projectID,
		AspectRatio:     ratio,
		TotalDurationMs: compositor.TotalDurationMs(resolved, s.paddingMs),
		Tracks:          resolved,
	}, nil
}

// Helper methods

func (s *ExportService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, fmt.Sprintf("job:%s", job.ID), data, 24*time.Hour).Err()
}

func (s *ExportService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf("job:%s", jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("job not found")
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

func newExportTask(jobID string, payload []byte) (*asynq.Task, error) {
	taskPayload := map[string]interface{}{
		"jobId":   jobID,
		"payload": payload,
	}
	data, err := json.Marshal(taskPayload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeExport, data), nil
}
