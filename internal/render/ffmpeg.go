package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpegRenderer implements Renderer by shelling out to ffmpeg.
type FFmpegRenderer struct {
	ffmpegPath  string
	ffprobePath string
	frameRate   int
}

// NewFFmpegRenderer creates a renderer using the given ffmpeg and ffprobe
// binaries and a fixed output frame rate. An empty ffprobe path derives it
// from the ffmpeg path.
func NewFFmpegRenderer(ffmpegPath, ffprobePath string, frameRate int) *FFmpegRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	if ffprobePath == "" {
		ffprobePath = strings.Replace(ffmpegPath, "ffmpeg", "ffprobe", 1)
	}
	return &FFmpegRenderer{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, frameRate: frameRate}
}

// RenderColor produces a solid-color clip via the lavfi color source.
func (r *FFmpegRenderer) RenderColor(ctx context.Context, spec ColorClipSpec) error {
	color := spec.Color
	if color == "" {
		color = "black"
	}
	dur := msToSeconds(spec.DurationMs)

	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d:r=%d", color, spec.Width, spec.Height, r.frameRate),
		"-t", dur,
		"-pix_fmt", "yuv420p",
		"-y", spec.OutPath,
	}
	return r.run(ctx, args)
}

// RenderMedia produces a clip from real media. Images are looped for the
// duration; videos are trimmed to it. Both are scaled to fit and padded to
// the target dimensions.
func (r *FFmpegRenderer) RenderMedia(ctx context.Context, spec MediaClipSpec) error {
	dur := msToSeconds(spec.DurationMs)
	scalePad := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black",
		spec.Width, spec.Height, spec.Width, spec.Height,
	)

	var args []string
	if spec.MediaType == "image" || spec.MediaType == "" {
		args = append(args, "-loop", "1")
	}
	args = append(args,
		"-i", spec.SourceURL,
		"-t", dur,
		"-vf", scalePad,
		"-r", strconv.Itoa(r.frameRate),
		"-pix_fmt", "yuv420p",
		"-an",
		"-y", spec.OutPath,
	)
	return r.run(ctx, args)
}

// Concat losslessly concatenates the ordered clip list into the final
// container using the concat demuxer.
func (r *FFmpegRenderer) Concat(ctx context.Context, clipPaths []string, outPath string) error {
	listPath := filepath.Join(filepath.Dir(outPath), "concat.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(clipPaths)), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y", outPath,
	}
	return r.run(ctx, args)
}

// ProbeDurationMs uses ffprobe to read a media file's duration.
func (r *FFmpegRenderer) ProbeDurationMs(ctx context.Context, inputPath string) (int64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputPath,
	}

	cmd := exec.CommandContext(ctx, r.ffprobePath, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w\nFFprobe Error: %s", inputPath, err, stderr.String())
	}

	var probeData struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe duration %q: %w", probeData.Format.Duration, err)
	}
	return int64(seconds * 1000), nil
}

func (r *FFmpegRenderer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg execution failed: %w\nFFmpeg Error: %s", err, stderr.String())
	}
	return nil
}

func msToSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}
