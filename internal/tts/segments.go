// Package tts synthesizes long texts as parallel segments joined into one file.
package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"video-narrator/internal/worker"
)

// SynthesizeFunc synthesizes a single text into outputPath.
type SynthesizeFunc func(ctx context.Context, text, outputPath string) error

// SegmentPath returns the path for a speech segment.
func SegmentPath(segmentDir string, index int) string {
	return filepath.Join(segmentDir, fmt.Sprintf("speech_%04d.mp3", index))
}

// CreateSegmentDir creates a unique temp directory for segments next to outputPath.
func CreateSegmentDir(outputPath string) (string, error) {
	return os.MkdirTemp(filepath.Dir(outputPath), "segments_")
}

// SynthesizeSegments runs synthesize for every segment on up to workers goroutines
// and returns the segment files in input order.
func SynthesizeSegments(
	ctx context.Context,
	segments []string,
	segmentDir string,
	workers int,
	synthesize SynthesizeFunc,
	onProgress worker.ProgressFunc,
) ([]string, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no text segments provided")
	}

	return worker.Process(ctx, segments, workers, func(ctx context.Context, job worker.Job[string]) (string, error) {
		path := SegmentPath(segmentDir, job.Index)
		if err := synthesize(ctx, job.Data, path); err != nil {
			return "", fmt.Errorf("segment %d: %w", job.Index+1, err)
		}
		return path, nil
	}, onProgress)
}

// JoinMP3 concatenates MP3 files into outputPath.
// MP3 frames are self-contained, so byte concatenation plays back as one stream.
func JoinMP3(parts []string, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}

	for _, part := range parts {
		if err := appendFile(out, part); err != nil {
			out.Close()
			os.Remove(outputPath)
			return err
		}
	}
	return out.Close()
}

func appendFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open segment: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to append segment %s: %w", filepath.Base(path), err)
	}
	return nil
}
