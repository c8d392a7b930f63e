// Package provider adapts AI-generation providers to one uniform polling
// capability. Providers disagree on status wire shapes and polling cadence;
// everything above this package sees only the MediaStatus enum.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cutreel/api/internal/model"
)

// Poller is the uniform capability: resolve a provider job reference to the
// shared status enum plus, on completion, the provider's output.
type Poller interface {
	Name() string
	Poll(ctx context.Context, jobRef string) (model.MediaStatus, *model.MediaOutput, error)
	// Interval is the provider's recommended polling cadence.
	Interval() time.Duration
}

// Registry maps provider names to their adapters.
type Registry struct {
	pollers map[string]Poller
}

// NewRegistry creates a registry over the given adapters.
func NewRegistry(pollers ...Poller) *Registry {
	r := &Registry{pollers: make(map[string]Poller)}
	for _, p := range pollers {
		r.pollers[p.Name()] = p
	}
	return r
}

// Lookup returns the adapter for a provider name.
func (r *Registry) Lookup(name string) (Poller, error) {
	p, ok := r.pollers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

// PollUntilTerminal polls a job until it reaches a terminal status or the
// deadline passes.
func PollUntilTerminal(ctx context.Context, p Poller, jobRef string, maxWait time.Duration) (model.MediaStatus, *model.MediaOutput, error) {
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		status, output, err := p.Poll(ctx, jobRef)
		if err != nil {
			return "", nil, err
		}
		if status.Terminal() {
			return status, output, nil
		}

		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(p.Interval()):
		}
	}

	return "", nil, fmt.Errorf("%s job %s timed out after %v", p.Name(), jobRef, maxWait)
}
