// Package frames turns sampled video frames into base64 JPEG payloads for vision requests.
package frames

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"time"

	"github.com/nfnt/resize"

	"video-narrator/internal/config"
	"video-narrator/internal/logger"
	"video-narrator/internal/media"
	"video-narrator/internal/worker"
)

// ErrEncodeJPEG is returned when a frame cannot be turned into a JPEG payload.
var ErrEncodeJPEG = errors.New("Could not encode image to JPEG format.")

// Frame is a sampled frame ready to be sent to a vision model.
type Frame struct {
	Index     int
	Timestamp time.Duration
	Base64    string
}

// DataURL returns the frame as a data URL accepted by image_url message parts.
func (f Frame) DataURL() string {
	return "data:image/jpeg;base64," + f.Base64
}

// Encoder converts frame files to base64 JPEG.
type Encoder struct {
	MaxWidth int // 0 keeps the original width
	Quality  int // JPEG quality used when a frame is re-encoded
}

// NewEncoder creates an encoder; out-of-range values fall back to defaults.
func NewEncoder(maxWidth, quality int) *Encoder {
	if maxWidth < 0 {
		maxWidth = config.DefaultFrameMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = config.DefaultFrameQuality
	}
	return &Encoder{MaxWidth: maxWidth, Quality: quality}
}

// EncodeFile reads a JPEG frame and returns its base64 payload.
// Frames wider than MaxWidth are downscaled and re-encoded; others are passed through unchanged.
func (e *Encoder) EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read frame: %w", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeJPEG, err)
	}

	if e.MaxWidth > 0 && cfg.Width > e.MaxWidth {
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncodeJPEG, err)
		}
		data, err = e.encode(resize.Resize(uint(e.MaxWidth), 0, img, resize.Lanczos3))
		if err != nil {
			return "", err
		}
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

func (e *Encoder) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeJPEG, err)
	}
	return buf.Bytes(), nil
}

// EncodeAll encodes sampled frames concurrently, keeping their order.
// The first failure stops the remaining work.
func (e *Encoder) EncodeAll(ctx context.Context, sampled []media.SampledFrame, workers int, onProgress worker.ProgressFunc) ([]Frame, error) {
	if len(sampled) == 0 {
		return nil, media.ErrNoFrames
	}
	if workers <= 0 {
		workers = config.DynamicWorkerCount("frame-encode")
	}

	logger.Debug("Frames: encoding %d frames with %d workers", len(sampled), workers)

	return worker.Process(ctx, sampled, workers, func(ctx context.Context, job worker.Job[media.SampledFrame]) (Frame, error) {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		b64, err := e.EncodeFile(job.Data.Path)
		if err != nil {
			return Frame{}, fmt.Errorf("frame %d: %w", job.Data.Index, err)
		}
		return Frame{
			Index:     job.Data.Index,
			Timestamp: job.Data.Timestamp,
			Base64:    b64,
		}, nil
	}, onProgress)
}
