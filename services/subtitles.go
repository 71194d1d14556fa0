package services

import (
	"context"
	"fmt"
	"time"

	"video-narrator/internal/logger"
	"video-narrator/internal/subtitle"
	textutil "video-narrator/internal/text"
	"video-narrator/models"
)

// DurationProber reports how long a media file plays.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// NarrationSubtitles times the job's narration sentences over its speech audio.
// The video's duration is used when the speech file cannot be probed.
func NarrationSubtitles(ctx context.Context, prober DurationProber, job *models.NarrationJob) (subtitle.List, error) {
	if !job.HasNarration() {
		return nil, fmt.Errorf("no narration to caption")
	}

	var total time.Duration
	if job.SpeechPath != "" && prober != nil {
		d, err := prober.ProbeDuration(ctx, job.SpeechPath)
		if err != nil {
			logger.Warn("Subtitles: could not probe speech duration: %v", err)
		} else {
			total = d
		}
	}
	if total == 0 && job.Info != nil && job.Info.Duration > 0 {
		total = time.Duration(job.Info.Duration * float64(time.Second))
	}
	if total == 0 {
		return nil, fmt.Errorf("could not determine narration length")
	}

	subs := subtitle.FromSentences(textutil.SplitSentences(job.Narration), total)
	logger.Debug("Subtitles: %d entries over %s", len(subs), subs.TotalDuration())
	return subs, nil
}
