package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"video-narrator/internal/config"
	"video-narrator/internal/frames"
	"video-narrator/internal/logger"
	"video-narrator/internal/media"
	"video-narrator/internal/worker"
	"video-narrator/models"
)

// Stage names reported to the progress callback.
const (
	StageSampling     = "Sampling"
	StageNarrating    = "Narrating"
	StageSynthesizing = "Synthesizing"
)

// Messages shown while a stage runs and when it finishes.
const (
	MsgGeneratingNarration = "Generating narration..."
	MsgGeneratingVoice     = "Generating voice..."
	MsgDone                = "Done!"
)

type ProgressCallback func(stage string, percent int, message string)

// NarrationCallback receives the narration as soon as it exists, before speech starts.
type NarrationCallback func(text string)

// FrameSampler probes a video and writes sampled frames to disk.
type FrameSampler interface {
	ProbeVideo(ctx context.Context, videoPath string) (*media.VideoInfo, error)
	SampleFrames(ctx context.Context, videoPath, outDir string, stride, maxFrames int) ([]media.SampledFrame, error)
}

// FrameEncoder turns sampled frames into base64 JPEG payloads.
type FrameEncoder interface {
	EncodeAll(ctx context.Context, sampled []media.SampledFrame, workers int, onProgress worker.ProgressFunc) ([]frames.Frame, error)
}

// Narrator describes frames as text.
type Narrator interface {
	Narrate(ctx context.Context, fs []frames.Frame) (string, error)
}

// Speaker turns text into an audio file.
type Speaker interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

type Pipeline struct {
	config *models.Config

	sampler  FrameSampler
	encoder  FrameEncoder
	narrator Narrator
	speaker  Speaker
}

// NewPipeline wires ffmpeg, the frame encoder and the OpenAI services from config.
func NewPipeline(cfg *models.Config) *Pipeline {
	ffmpeg := media.NewFFmpegServiceWithPath(cfg.FFmpegPath)
	client := NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)

	return NewPipelineWith(
		cfg,
		ffmpeg,
		frames.NewEncoder(cfg.FrameMaxWidth, config.DefaultFrameQuality),
		NewNarratorService(client, cfg.VisionModel, cfg.MaxTokens, cfg.FrameInterval, cfg.NarratorStyle),
		NewOpenAITTSService(client, cfg.TTSModel, cfg.TTSVoice, cfg.TTSSpeed, ffmpeg),
	)
}

// NewPipelineWith builds a pipeline from explicit stages.
func NewPipelineWith(cfg *models.Config, sampler FrameSampler, encoder FrameEncoder, narrator Narrator, speaker Speaker) *Pipeline {
	return &Pipeline{
		config:   cfg,
		sampler:  sampler,
		encoder:  encoder,
		narrator: narrator,
		speaker:  speaker,
	}
}

// ProcessWithCallback narrates the job's video and voices the narration.
// onNarrated, when set, gets the text between the two steps.
func (p *Pipeline) ProcessWithCallback(ctx context.Context, job *models.NarrationJob, onProgress ProgressCallback, onNarrated NarrationCallback) error {
	if err := p.Narrate(ctx, job, onProgress); err != nil {
		return err
	}
	if onNarrated != nil {
		onNarrated(job.Narration)
	}
	return p.Speak(ctx, job, onProgress)
}

// Narrate samples frames from the job's video and asks the vision model to describe them.
// Sampled frames are removed afterwards; the narration is stored on the job.
func (p *Pipeline) Narrate(ctx context.Context, job *models.NarrationJob, onProgress ProgressCallback) error {
	reportProgress := func(stage string, percent int, message string) {
		if onProgress != nil {
			onProgress(stage, percent, message)
		}
	}

	framesDir := job.FramesDir()
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(framesDir)

	// Stage 1: Sample frames
	logger.LogInfo("Pipeline: Stage 1/3 - Sampling frames from %s", job.FileName)
	reportProgress(StageSampling, config.ProgressSampleStart, "Reading video...")
	job.SetStatus(models.StatusSampling, "Sampling frames", config.ProgressSampleStart)

	info, err := p.sampler.ProbeVideo(ctx, job.VideoPath)
	if err != nil {
		job.Fail(err)
		return fmt.Errorf("failed to read video: %w", err)
	}
	job.Info = info

	stride := info.Stride(p.config.FrameInterval)
	logger.LogInfo("Pipeline: %s, keeping every %d frames (~%d frames)", info, stride, info.SampleCount(stride))

	sampleRange := config.ProgressSampleEnd - config.ProgressSampleStart
	encodeStart := config.ProgressSampleStart + sampleRange/2

	sampled, err := p.sampler.SampleFrames(ctx, job.VideoPath, framesDir, stride, p.config.MaxFrames)
	if err != nil {
		job.Fail(err)
		return fmt.Errorf("frame sampling failed: %w", err)
	}
	job.FrameCount = len(sampled)
	reportProgress(StageSampling, encodeStart, fmt.Sprintf("Sampled %d frames", len(sampled)))

	encodeRange := config.ProgressSampleEnd - encodeStart
	encoded, err := p.encoder.EncodeAll(ctx, sampled, config.DynamicWorkerCount("frame-encode"), func(completed, total int) {
		percent := encodeStart + (completed*encodeRange)/total
		reportProgress(StageSampling, percent, fmt.Sprintf("Encoded %d/%d frames", completed, total))
	})
	if err != nil {
		job.Fail(err)
		return err
	}
	reportProgress(StageSampling, config.ProgressSampleEnd, fmt.Sprintf("%d frames ready", len(encoded)))

	// Stage 2: Narrate
	logger.LogInfo("Pipeline: Stage 2/3 - Narrating %d frames", len(encoded))
	reportProgress(StageNarrating, config.ProgressNarrateStart, MsgGeneratingNarration)
	job.SetStatus(models.StatusNarrating, "Generating narration", config.ProgressNarrateStart)

	text, err := p.narrator.Narrate(ctx, encoded)
	if err != nil {
		job.Fail(err)
		return fmt.Errorf("narration failed: %w", err)
	}
	job.SetNarration(text)
	job.Progress = config.ProgressNarrateEnd
	reportProgress(StageNarrating, config.ProgressNarrateEnd, MsgDone)

	return nil
}

// Speak synthesizes the job's narration into an MP3 inside the job's work dir.
func (p *Pipeline) Speak(ctx context.Context, job *models.NarrationJob, onProgress ProgressCallback) error {
	reportProgress := func(stage string, percent int, message string) {
		if onProgress != nil {
			onProgress(stage, percent, message)
		}
	}

	if !job.HasNarration() {
		return fmt.Errorf("no narration to voice")
	}

	// Stage 3: Text-to-Speech
	logger.LogInfo("Pipeline: Stage 3/3 - Generating voice (%d chars)", len(job.Narration))
	reportProgress(StageSynthesizing, config.ProgressSynthesizeStart, MsgGeneratingVoice)
	job.SetStatus(models.StatusSynthesizing, "Generating voice", config.ProgressSynthesizeStart)

	speechPath := filepath.Join(job.WorkDir, "speech.mp3")
	if err := p.speaker.Synthesize(ctx, job.Narration, speechPath); err != nil {
		job.Fail(err)
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	job.Complete(speechPath)
	logger.LogInfo("Pipeline: Complete! Speech: %s", speechPath)
	reportProgress(StageSynthesizing, config.ProgressSynthesizeEnd, MsgDone)

	return nil
}
