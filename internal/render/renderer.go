// Package render is the client for the external video-compositing backend.
// The compositor drives it with exactly three commands: render a solid
// color clip, render a trimmed+scaled+padded media clip, and concatenate an
// ordered list of clips into the final container.
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/cutreel/api/internal/model"
)

// ColorClipSpec describes a solid-color filler clip.
type ColorClipSpec struct {
	Color      string // ffmpeg color name or hex, e.g. "black"
	DurationMs int64
	Width      int
	Height     int
	OutPath    string
}

// MediaClipSpec describes a real media clip: an image held statically or a
// video trimmed to the duration, both scaled to fit and padded to the
// target dimensions.
type MediaClipSpec struct {
	SourceURL  string
	MediaType  model.MediaType
	DurationMs int64
	Width      int
	Height     int
	OutPath    string
}

// Renderer is the command surface of the compositing backend. Exactly one
// command runs at a time; the backend accepts no concurrency.
type Renderer interface {
	RenderColor(ctx context.Context, spec ColorClipSpec) error
	RenderMedia(ctx context.Context, spec MediaClipSpec) error
	Concat(ctx context.Context, clipPaths []string, outPath string) error
}

// ConcatList renders the concatenation list consumed by the backend: one
// `file '<path>'` entry per clip, newline-delimited, in final playback
// order. This is the only bit-exact artifact this core owns.
func ConcatList(clipPaths []string) string {
	var b strings.Builder
	for _, p := range clipPaths {
		fmt.Fprintf(&b, "file '%s'\n", p)
	}
	return b.String()
}
