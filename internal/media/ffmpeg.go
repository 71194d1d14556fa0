// Package media provides video probing and frame sampling using FFmpeg.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"video-narrator/internal/config"
	"video-narrator/internal/limiter"
	"video-narrator/internal/logger"
)

// ErrNoFrames is returned when sampling produced no images.
var ErrNoFrames = errors.New("no frames sampled from video")

// framePattern is the ffmpeg output pattern; zero padding keeps lexical order equal to frame order.
const framePattern = "frame_%05d.jpg"

// SampledFrame is one frame written to disk by SampleFrames.
type SampledFrame struct {
	Index       int           // position among sampled frames
	FrameNumber int           // position in the source video
	Timestamp   time.Duration // presentation time in the source video
	Path        string
}

// FFmpegService wraps FFmpeg commands for video processing.
type FFmpegService struct {
	ffmpegPath  string
	ffprobePath string
	cache       *ProbeCache
}

// NewFFmpegService creates a new FFmpeg service with auto-detected paths.
func NewFFmpegService() *FFmpegService {
	paths := []string{
		"/opt/homebrew/bin/ffmpeg",
		"/usr/local/bin/ffmpeg",
		"/usr/bin/ffmpeg",
	}

	ffmpegPath := "ffmpeg"
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			ffmpegPath = p
			break
		}
	}

	return NewFFmpegServiceWithPath(ffmpegPath)
}

// NewFFmpegServiceWithPath creates a new FFmpeg service with a custom path.
// ffprobe is expected next to ffmpeg.
func NewFFmpegServiceWithPath(path string) *FFmpegService {
	if path == "" {
		return NewFFmpegService()
	}
	dir, base := filepath.Split(path)
	return &FFmpegService{
		ffmpegPath:  path,
		ffprobePath: dir + strings.Replace(base, "ffmpeg", "ffprobe", 1),
		cache:       NewProbeCache(),
	}
}

// CheckInstalled verifies FFmpeg and FFprobe are available.
func (s *FFmpegService) CheckInstalled() error {
	if err := exec.Command(s.ffmpegPath, "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", s.ffmpegPath, err)
	}
	if err := exec.Command(s.ffprobePath, "-version").Run(); err != nil {
		return fmt.Errorf("ffprobe not found at %s: %w", s.ffprobePath, err)
	}
	return nil
}

// ProbeVideo reads resolution, frame rate and frame count of the first video stream.
// Results are cached per path.
func (s *FFmpegService) ProbeVideo(ctx context.Context, videoPath string) (*VideoInfo, error) {
	if info, ok := s.cache.Get(videoPath); ok {
		return &info, nil
	}

	output, err := s.runProbe(ctx, buildProbeArgs(videoPath))
	if err != nil {
		return nil, err
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, err
	}

	logger.Debug("FFprobe: %s → %s", filepath.Base(videoPath), info)
	s.cache.Set(videoPath, *info)

	return info, nil
}

// Forget drops the cached probe for a file that is about to be deleted.
func (s *FFmpegService) Forget(videoPath string) {
	s.cache.Remove(videoPath)
}

// SampleFrames writes every stride-th frame of the video to outDir as JPEG, starting with
// frame 0. maxFrames > 0 caps the number of frames written.
func (s *FFmpegService) SampleFrames(ctx context.Context, videoPath, outDir string, stride, maxFrames int) ([]SampledFrame, error) {
	if stride < 1 {
		stride = 1
	}

	info, err := s.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}

	logger.Info("FFmpeg: sampling every %d frames of %s", stride, filepath.Base(videoPath))

	if err := s.run(ctx, buildSampleArgs(videoPath, outDir, stride, maxFrames), "frame sampling"); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(outDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(paths) == 0 {
		return nil, ErrNoFrames
	}
	sort.Strings(paths)

	sampled := make([]SampledFrame, len(paths))
	for i, p := range paths {
		frameNumber := i * stride
		sampled[i] = SampledFrame{
			Index:       i,
			FrameNumber: frameNumber,
			Timestamp:   info.TimestampOf(frameNumber),
			Path:        p,
		}
	}

	logger.Info("FFmpeg: sampled %d frames", len(sampled))
	return sampled, nil
}

// ExtractFrameAt writes a single frame at the given offset to outputPath, used for previews.
func (s *FFmpegService) ExtractFrameAt(ctx context.Context, videoPath, outputPath string, at time.Duration) error {
	if err := ensureDir(outputPath); err != nil {
		return err
	}

	args := []string{
		"-ss", fmt.Sprintf("%.3f", at.Seconds()),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", fmt.Sprintf("%d", config.FFmpegJPEGQScale),
		"-y",
		outputPath,
	}

	return s.run(ctx, args, "preview extraction")
}

// ConvertAudio re-encodes an audio file; the output format follows the extension of outputPath.
func (s *FFmpegService) ConvertAudio(ctx context.Context, inputPath, outputPath string) error {
	if err := ensureDir(outputPath); err != nil {
		return err
	}

	args := []string{
		"-i", inputPath,
		"-vn",
		"-y",
		outputPath,
	}

	return s.run(ctx, args, "audio conversion")
}

// runProbe executes ffprobe and returns its stdout.
func (s *FFmpegService) runProbe(ctx context.Context, args []string) ([]byte, error) {
	if err := limiter.AcquireExecSlot(ctx); err != nil {
		return nil, err
	}
	defer limiter.ReleaseExecSlot()

	ctx, cancel := context.WithTimeout(ctx, config.ExecTimeoutFFprobe)
	defer cancel()

	output, err := exec.CommandContext(ctx, s.ffprobePath, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffprobe failed: %w\nOutput: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return output, nil
}

// run executes an FFmpeg command and returns any error.
func (s *FFmpegService) run(ctx context.Context, args []string, operation string) error {
	if err := limiter.AcquireExecSlot(ctx); err != nil {
		return fmt.Errorf("ffmpeg %s: %w", operation, err)
	}
	defer limiter.ReleaseExecSlot()

	ctx, cancel := context.WithTimeout(ctx, config.ExecTimeoutFFmpeg)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg %s: %w", operation, ctxErr)
		}
		return fmt.Errorf("ffmpeg %s failed: %w\nOutput: %s", operation, err, string(output))
	}
	return nil
}

func buildProbeArgs(videoPath string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames,codec_name:format=duration",
		"-of", "json",
		videoPath,
	}
}

func buildSampleArgs(videoPath, outDir string, stride, maxFrames int) []string {
	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d))", stride),
		"-vsync", "vfr",
		"-q:v", fmt.Sprintf("%d", config.FFmpegJPEGQScale),
		"-start_number", "0",
	}
	if maxFrames > 0 {
		args = append(args, "-frames:v", fmt.Sprintf("%d", maxFrames))
	}
	return append(args, "-y", filepath.Join(outDir, framePattern))
}

// ensureDir creates the parent directory for a file path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
