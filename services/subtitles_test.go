package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-narrator/internal/media"
	"video-narrator/models"
)

type fakeProber struct {
	duration time.Duration
	err      error
	path     string
}

func (p *fakeProber) ProbeDuration(_ context.Context, path string) (time.Duration, error) {
	p.path = path
	return p.duration, p.err
}

func narratedJob() *models.NarrationJob {
	job := models.NewNarrationJob("/videos/cat.mp4", "")
	job.SetNarration("Behold the cat. It sleeps.")
	job.Complete("/work/speech.mp3")
	return job
}

func TestNarrationSubtitles_UsesSpeechDuration(t *testing.T) {
	prober := &fakeProber{duration: 6 * time.Second}

	subs, err := NarrationSubtitles(context.Background(), prober, narratedJob())
	require.NoError(t, err)

	assert.Equal(t, "/work/speech.mp3", prober.path)
	require.Len(t, subs, 2)
	assert.Equal(t, "Behold the cat.", subs[0].Text)
	assert.Equal(t, "It sleeps.", subs[1].Text)
	assert.Equal(t, 6*time.Second, subs.TotalDuration())
}

func TestNarrationSubtitles_FallsBackToVideoDuration(t *testing.T) {
	job := narratedJob()
	job.Info = &media.VideoInfo{Duration: 9.5}

	subs, err := NarrationSubtitles(context.Background(), &fakeProber{err: errors.New("no ffprobe")}, job)
	require.NoError(t, err)
	assert.Equal(t, 9500*time.Millisecond, subs.TotalDuration())
}

func TestNarrationSubtitles_Errors(t *testing.T) {
	_, err := NarrationSubtitles(context.Background(), &fakeProber{}, models.NewNarrationJob("/v.mp4", ""))
	assert.ErrorContains(t, err, "no narration")

	_, err = NarrationSubtitles(context.Background(), &fakeProber{err: errors.New("boom")}, narratedJob())
	assert.ErrorContains(t, err, "could not determine")
}
