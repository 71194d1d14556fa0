package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-narrator/internal/frames"
	"video-narrator/internal/media"
	"video-narrator/internal/worker"
	"video-narrator/models"
)

type fakeSampler struct {
	info      *media.VideoInfo
	count     int
	probeErr  error
	sampleErr error

	gotStride    int
	gotMaxFrames int
	gotOutDir    string
}

func (f *fakeSampler) ProbeVideo(ctx context.Context, videoPath string) (*media.VideoInfo, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return f.info, nil
}

func (f *fakeSampler) SampleFrames(ctx context.Context, videoPath, outDir string, stride, maxFrames int) ([]media.SampledFrame, error) {
	f.gotStride, f.gotMaxFrames, f.gotOutDir = stride, maxFrames, outDir
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	if _, err := os.Stat(outDir); err != nil {
		return nil, err
	}
	out := make([]media.SampledFrame, f.count)
	for i := range out {
		out[i] = media.SampledFrame{
			Index:       i,
			FrameNumber: i * stride,
			Timestamp:   f.info.TimestampOf(i * stride),
			Path:        filepath.Join(outDir, "frame.jpg"),
		}
	}
	return out, nil
}

type fakeEncoder struct{ err error }

func (f *fakeEncoder) EncodeAll(ctx context.Context, sampled []media.SampledFrame, workers int, onProgress worker.ProgressFunc) ([]frames.Frame, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]frames.Frame, len(sampled))
	for i, s := range sampled {
		out[i] = frames.Frame{Index: s.Index, Timestamp: s.Timestamp, Base64: "AAAA"}
		if onProgress != nil {
			onProgress(i+1, len(sampled))
		}
	}
	return out, nil
}

type fakeNarrator struct {
	text   string
	err    error
	frames int
}

func (f *fakeNarrator) Narrate(ctx context.Context, fs []frames.Frame) (string, error) {
	f.frames = len(fs)
	return f.text, f.err
}

type fakeSpeaker struct {
	err     error
	gotText string
}

func (f *fakeSpeaker) Synthesize(ctx context.Context, text, outputPath string) error {
	f.gotText = text
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte("ID3"), 0644)
}

type progressEvent struct {
	stage   string
	percent int
	message string
}

type progressRecorder struct {
	mu     sync.Mutex
	events []progressEvent
}

func (r *progressRecorder) callback(stage string, percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, progressEvent{stage, percent, message})
}

func (r *progressRecorder) messages() []string {
	var out []string
	for _, e := range r.events {
		out = append(out, e.message)
	}
	return out
}

func newTestJob(t *testing.T) *models.NarrationJob {
	job := models.NewNarrationJob("/videos/wolves.mp4", "wolves.mp4")
	job.WorkDir = filepath.Join(t.TempDir(), job.ID)
	return job
}

func newTestPipeline(sampler *fakeSampler, narrator *fakeNarrator, speaker *fakeSpeaker) *Pipeline {
	return NewPipelineWith(models.DefaultConfig(), sampler, &fakeEncoder{}, narrator, speaker)
}

func defaultSampler() *fakeSampler {
	return &fakeSampler{info: &media.VideoInfo{FPS: 30, TotalFrames: 300, Duration: 10}, count: 5}
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline(models.DefaultConfig())

	require.NotNil(t, p)
	assert.NotNil(t, p.sampler)
	assert.NotNil(t, p.encoder)
	assert.NotNil(t, p.narrator)
	assert.NotNil(t, p.speaker)
	assert.NotNil(t, p.config)
}

func TestPipeline_ProcessWithCallback(t *testing.T) {
	sampler := defaultSampler()
	narrator := &fakeNarrator{text: "Behold the wolves!"}
	speaker := &fakeSpeaker{}
	p := newTestPipeline(sampler, narrator, speaker)
	job := newTestJob(t)
	rec := &progressRecorder{}
	var narrated string

	require.NoError(t, p.ProcessWithCallback(context.Background(), job, rec.callback, func(text string) {
		narrated = text
		assert.Empty(t, speaker.gotText, "narration is reported before speech")
	}))
	assert.Equal(t, "Behold the wolves!", narrated)

	// 2s interval at 30 fps
	assert.Equal(t, 60, sampler.gotStride)
	assert.Equal(t, 0, sampler.gotMaxFrames)
	assert.Equal(t, job.FramesDir(), sampler.gotOutDir)
	assert.NoDirExists(t, job.FramesDir())

	assert.Equal(t, 5, narrator.frames)
	assert.Equal(t, "Behold the wolves!", speaker.gotText)

	assert.Equal(t, models.StatusCompleted, job.Status)
	assert.Equal(t, 5, job.FrameCount)
	assert.Equal(t, "Behold the wolves!", job.Narration)
	assert.Equal(t, filepath.Join(job.WorkDir, "speech.mp3"), job.SpeechPath)
	assert.FileExists(t, job.SpeechPath)
	assert.Equal(t, 30.0, job.Info.FPS)

	msgs := rec.messages()
	assert.Contains(t, msgs, MsgGeneratingNarration)
	assert.Contains(t, msgs, MsgGeneratingVoice)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, StageSynthesizing, last.stage)
	assert.Equal(t, 100, last.percent)
	assert.Equal(t, MsgDone, last.message)

	prev := -1
	for _, e := range rec.events {
		assert.GreaterOrEqual(t, e.percent, prev, "progress went backwards at %q", e.message)
		prev = e.percent
	}
}

func TestPipeline_NarrateThenSpeakSeparately(t *testing.T) {
	p := newTestPipeline(defaultSampler(), &fakeNarrator{text: "Look!"}, &fakeSpeaker{})
	job := newTestJob(t)

	require.NoError(t, p.Narrate(context.Background(), job, nil))
	assert.Equal(t, models.StatusNarrated, job.Status)
	assert.Empty(t, job.SpeechPath)

	require.NoError(t, p.Speak(context.Background(), job, nil))
	assert.Equal(t, models.StatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
}

func TestPipeline_MaxFramesPassedThrough(t *testing.T) {
	sampler := defaultSampler()
	cfg := models.DefaultConfig()
	cfg.MaxFrames = 12
	cfg.FrameInterval = 1
	p := NewPipelineWith(cfg, sampler, &fakeEncoder{}, &fakeNarrator{text: "x"}, &fakeSpeaker{})

	require.NoError(t, p.Narrate(context.Background(), newTestJob(t), nil))
	assert.Equal(t, 12, sampler.gotMaxFrames)
	assert.Equal(t, 30, sampler.gotStride)
}

func TestPipeline_ProbeFailure(t *testing.T) {
	sampler := defaultSampler()
	sampler.probeErr = errors.New("moov atom not found")
	p := newTestPipeline(sampler, &fakeNarrator{}, &fakeSpeaker{})
	job := newTestJob(t)

	err := p.ProcessWithCallback(context.Background(), job, nil, nil)
	assert.ErrorContains(t, err, "moov atom not found")
	assert.Equal(t, models.StatusFailed, job.Status)
}

func TestPipeline_NoFrames(t *testing.T) {
	sampler := defaultSampler()
	sampler.sampleErr = media.ErrNoFrames
	p := newTestPipeline(sampler, &fakeNarrator{}, &fakeSpeaker{})
	job := newTestJob(t)

	err := p.ProcessWithCallback(context.Background(), job, nil, nil)
	assert.ErrorIs(t, err, media.ErrNoFrames)
	assert.Equal(t, models.StatusFailed, job.Status)
}

func TestPipeline_EncodeFailure(t *testing.T) {
	p := NewPipelineWith(models.DefaultConfig(), defaultSampler(), &fakeEncoder{err: frames.ErrEncodeJPEG}, &fakeNarrator{}, &fakeSpeaker{})
	job := newTestJob(t)

	err := p.ProcessWithCallback(context.Background(), job, nil, nil)
	assert.ErrorIs(t, err, frames.ErrEncodeJPEG)
	assert.Equal(t, "Failed: Could not encode image to JPEG format.", job.StatusText())
}

func TestPipeline_NarrationFailureSkipsSpeech(t *testing.T) {
	speaker := &fakeSpeaker{}
	p := newTestPipeline(defaultSampler(), &fakeNarrator{err: ErrEmptyNarration}, speaker)
	job := newTestJob(t)

	err := p.ProcessWithCallback(context.Background(), job, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyNarration)
	assert.Empty(t, speaker.gotText)
	assert.Equal(t, models.StatusFailed, job.Status)
}

func TestPipeline_SpeechFailure(t *testing.T) {
	p := newTestPipeline(defaultSampler(), &fakeNarrator{text: "Look!"}, &fakeSpeaker{err: ErrInvalidAPIKey})
	job := newTestJob(t)

	err := p.ProcessWithCallback(context.Background(), job, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
	assert.Equal(t, models.StatusFailed, job.Status)
	// narration survives a speech failure
	assert.Equal(t, "Look!", job.Narration)
}

func TestPipeline_SpeakWithoutNarration(t *testing.T) {
	p := newTestPipeline(defaultSampler(), &fakeNarrator{}, &fakeSpeaker{})

	err := p.Speak(context.Background(), newTestJob(t), nil)
	assert.Error(t, err)
}

func TestPipeline_TimestampsFollowStride(t *testing.T) {
	sampler := defaultSampler()
	var got []time.Duration
	p := NewPipelineWith(models.DefaultConfig(), sampler, &fakeEncoder{}, narratorFunc(func(fs []frames.Frame) {
		for _, f := range fs {
			got = append(got, f.Timestamp)
		}
	}), &fakeSpeaker{})

	require.NoError(t, p.Narrate(context.Background(), newTestJob(t), nil))
	assert.Equal(t, []time.Duration{0, 2 * time.Second, 4 * time.Second, 6 * time.Second, 8 * time.Second}, got)
}

type narratorFunc func(fs []frames.Frame)

func (f narratorFunc) Narrate(ctx context.Context, fs []frames.Frame) (string, error) {
	f(fs)
	return "ok", nil
}
