package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cutreel/api/internal/config"
	"github.com/cutreel/api/internal/model"
)

// PixelforgeClient adapts the Pixelforge image/video generation API. Its
// wire shape uses string statuses and nests output under "output".
type PixelforgeClient struct {
	http *httpClient
}

// NewPixelforgeClient creates the adapter from config.
func NewPixelforgeClient(cfg *config.PixelforgeConfig) *PixelforgeClient {
	return &PixelforgeClient{
		http: newHTTPClient("Pixelforge", cfg.BaseURL, cfg.APIKey),
	}
}

// Name implements Poller.
func (c *PixelforgeClient) Name() string {
	return "pixelforge"
}

// Interval implements Poller. Pixelforge recommends a 5s cadence.
func (c *PixelforgeClient) Interval() time.Duration {
	return 5 * time.Second
}

// IsConfigured reports whether the adapter has credentials.
func (c *PixelforgeClient) IsConfigured() bool {
	return c.http.configured()
}

type pixelforgeTask struct {
	ID     string `json:"id"`
	Status string `json:"status"` // queued | processing | done | error
	Error  string `json:"error,omitempty"`
	Output struct {
		VideoURL  string   `json:"video_url,omitempty"`
		ImageURLs []string `json:"image_urls,omitempty"`
	} `json:"output"`
}

// Poll implements Poller by mapping the Pixelforge task shape onto the
// uniform status enum.
func (c *PixelforgeClient) Poll(ctx context.Context, jobRef string) (model.MediaStatus, *model.MediaOutput, error) {
	var task pixelforgeTask
	if err := c.http.get(ctx, fmt.Sprintf("/v1/tasks/%s", jobRef), &task); err != nil {
		return "", nil, err
	}

	switch task.Status {
	case "queued":
		return model.MediaStatusPending, nil, nil
	case "processing":
		return model.MediaStatusRunning, nil, nil
	case "done":
		return model.MediaStatusCompleted, &model.MediaOutput{
			VideoURL:  task.Output.VideoURL,
			ImageURLs: task.Output.ImageURLs,
		}, nil
	case "error":
		return model.MediaStatusFailed, nil, nil
	default:
		return "", nil, fmt.Errorf("pixelforge task %s: unknown status %q", jobRef, task.Status)
	}
}
