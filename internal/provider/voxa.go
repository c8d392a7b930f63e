package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cutreel/api/internal/config"
	"github.com/cutreel/api/internal/model"
)

// VoxaClient adapts the Voxa voice/music synthesis API. Its wire shape uses
// numeric states and a flat result URL, and it wants a slower cadence than
// Pixelforge.
type VoxaClient struct {
	http *httpClient
}

// NewVoxaClient creates the adapter from config.
func NewVoxaClient(cfg *config.VoxaConfig) *VoxaClient {
	return &VoxaClient{
		http: newHTTPClient("Voxa", cfg.BaseURL, cfg.APIKey),
	}
}

// Name implements Poller.
func (c *VoxaClient) Name() string {
	return "voxa"
}

// Interval implements Poller.
func (c *VoxaClient) Interval() time.Duration {
	return 10 * time.Second
}

// IsConfigured reports whether the adapter has credentials.
func (c *VoxaClient) IsConfigured() bool {
	return c.http.configured()
}

// Voxa numeric job states.
const (
	voxaStateSubmitted = 0
	voxaStateRendering = 1
	voxaStateFinished  = 2
	voxaStateFailed    = 3
)

type voxaJob struct {
	Ref      string `json:"ref"`
	State    int    `json:"state"`
	AudioURL string `json:"audio_url,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Poll implements Poller by mapping Voxa's numeric states onto the uniform
// status enum.
func (c *VoxaClient) Poll(ctx context.Context, jobRef string) (model.MediaStatus, *model.MediaOutput, error) {
	var job voxaJob
	if err := c.http.get(ctx, fmt.Sprintf("/api/jobs/%s", jobRef), &job); err != nil {
		return "", nil, err
	}

	switch job.State {
	case voxaStateSubmitted:
		return model.MediaStatusPending, nil, nil
	case voxaStateRendering:
		return model.MediaStatusRunning, nil, nil
	case voxaStateFinished:
		return model.MediaStatusCompleted, &model.MediaOutput{URL: job.AudioURL}, nil
	case voxaStateFailed:
		return model.MediaStatusFailed, nil, nil
	default:
		return "", nil, fmt.Errorf("voxa job %s: unknown state %d", jobRef, job.State)
	}
}
