package media

import (
	"testing"

	"github.com/cutreel/api/internal/model"
)

func TestResolveNil(t *testing.T) {
	r := NewResolver(NewObjectURLCache())
	if got := r.Resolve(nil); got != "" {
		t.Errorf("Resolve(nil) = %q, want empty", got)
	}
}

func TestResolveExplicitURL(t *testing.T) {
	r := NewResolver(NewObjectURLCache())
	item := &model.MediaItem{
		ID:     "m1",
		Status: model.MediaStatusPending, // explicit URL wins regardless of status
		URL:    "https://cdn.cutreel.app/media/m1.mp4",
	}
	if got := r.Resolve(item); got != "https://cdn.cutreel.app/media/m1.mp4" {
		t.Errorf("Resolve = %q, want explicit URL", got)
	}
}

func TestResolveUploadedBlob(t *testing.T) {
	cache := NewObjectURLCache()
	r := NewResolver(cache)

	item := &model.MediaItem{
		ID:      "m2",
		Kind:    model.MediaKindUploaded,
		Status:  model.MediaStatusCompleted,
		BlobKey: "uploads/m2.png",
	}

	// Not acquired yet → nothing playable.
	if got := r.Resolve(item); got != "" {
		t.Errorf("Resolve before acquire = %q, want empty", got)
	}

	url := cache.Acquire("m2", []byte("png-bytes"))
	if got := r.Resolve(item); got != url {
		t.Errorf("Resolve = %q, want cached blob URL %q", got, url)
	}

	cache.Release("m2")
	if got := r.Resolve(item); got != "" {
		t.Errorf("Resolve after release = %q, want empty", got)
	}
}

func TestResolveProviderOutputShapes(t *testing.T) {
	r := NewResolver(NewObjectURLCache())

	tests := []struct {
		name   string
		output model.MediaOutput
		want   string
	}{
		{"flat url", model.MediaOutput{URL: "https://p.example/out.mp4"}, "https://p.example/out.mp4"},
		{"video url", model.MediaOutput{VideoURL: "https://p.example/v.mp4"}, "https://p.example/v.mp4"},
		{"image list", model.MediaOutput{ImageURLs: []string{"https://p.example/a.png", "https://p.example/b.png"}}, "https://p.example/a.png"},
		{"empty", model.MediaOutput{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &model.MediaItem{
				ID:     "m3",
				Kind:   model.MediaKindGenerated,
				Status: model.MediaStatusCompleted,
				Output: tt.output,
			}
			if got := r.Resolve(item); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveIncompleteGeneration(t *testing.T) {
	r := NewResolver(NewObjectURLCache())
	for _, status := range []model.MediaStatus{model.MediaStatusPending, model.MediaStatusRunning, model.MediaStatusFailed} {
		item := &model.MediaItem{
			ID:     "m4",
			Kind:   model.MediaKindGenerated,
			Status: status,
			Output: model.MediaOutput{URL: "https://p.example/out.mp4"},
		}
		if got := r.Resolve(item); got != "" {
			t.Errorf("status %s: Resolve = %q, want empty until completed", status, got)
		}
	}
}

func TestCacheAtMostOneURL(t *testing.T) {
	cache := NewObjectURLCache()

	first := cache.Acquire("m5", []byte("v1"))
	second := cache.Acquire("m5", []byte("v2"))
	if first != second {
		t.Errorf("second acquire returned %q, want existing %q", second, first)
	}
	if cache.Len() != 1 {
		t.Errorf("cache holds %d URLs, want 1", cache.Len())
	}

	// The original blob survives the duplicate acquire.
	blob, ok := cache.Blob("m5")
	if !ok || string(blob) != "v1" {
		t.Errorf("blob = %q, want original v1", blob)
	}
}

func TestCacheReleaseUnknownID(t *testing.T) {
	cache := NewObjectURLCache()
	cache.Release("never-acquired") // must not panic
	if cache.Len() != 0 {
		t.Errorf("cache len = %d, want 0", cache.Len())
	}
}
