package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProbeDuration returns the container duration of an audio or video file.
func (s *FFmpegService) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	output, err := s.runProbe(ctx, buildDurationArgs(path))
	if err != nil {
		return 0, err
	}
	return parseDuration(string(output))
}

func buildDurationArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// parseDuration reads ffprobe's plain seconds output, e.g. "12.345000".
func parseDuration(output string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse duration %q", strings.TrimSpace(output))
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("media has no duration")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
