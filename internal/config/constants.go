// Package config provides centralized configuration and constants for the video-narrator application.
package config

import (
	"runtime"
	"time"
)

// Progress stage boundaries (0-100%)
const (
	ProgressSampleStart     = 0
	ProgressSampleEnd       = 40
	ProgressNarrateStart    = 40
	ProgressNarrateEnd      = 75
	ProgressSynthesizeStart = 75
	ProgressSynthesizeEnd   = 100
)

// Frame sampling defaults
const (
	DefaultFrameInterval = 2   // seconds between sampled frames
	DefaultFrameQuality  = 90  // JPEG quality used when a frame has to be re-encoded
	DefaultFrameMaxWidth = 0   // 0 keeps the decoded size
	DefaultMaxFrames     = 0   // 0 means no limit
	PreviewWidth         = 480 // width of the preview thumbnail in the UI
	FFmpegJPEGQScale     = 2   // -q:v for sampled frames (2 = high quality)
)

// Narration defaults
const (
	DefaultNarratorStyle = "David Attenborough"
	DefaultMaxTokens     = 500
	MaxTokensLimit       = 4096
)

// API models
const (
	OpenAIVisionModel    = "gpt-4-vision-preview"
	OpenAITTSModelTTS1   = "tts-1"
	OpenAITTSModelTTS1HD = "tts-1-hd"
)

// Default TTS voice
const DefaultOpenAIVoice = "alloy"

// API endpoints
const OpenAIAPIEndpoint = "https://api.openai.com/v1"

// Retry settings
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelayBase = time.Second
)

// HTTP client settings
const (
	HTTPTimeout             = 2 * time.Minute
	HTTPMaxIdleConns        = 10
	HTTPMaxIdleConnsPerHost = 10
	HTTPIdleConnTimeout     = 90 * time.Second
)

// Concurrency limits
const (
	MaxConcurrentExec   = 2 // ffmpeg/ffprobe processes at once
	MaxSpeechSegmentJob = 4 // speech requests at once for a long narration
)

// MaxSpeechInputChars is the longest input the speech endpoint accepts.
const MaxSpeechInputChars = 4096

// Processing timeouts
const (
	APIKeyCheckTimeout = 20 * time.Second
	NarrationTimeout   = 3 * time.Minute
	SpeechTimeout      = 2 * time.Minute
)

// Exec command timeouts (for os/exec calls)
const (
	ExecTimeoutFFprobe = 30 * time.Second
	ExecTimeoutFFmpeg  = 10 * time.Minute
)

// DynamicWorkerCount returns the optimal worker count based on task type and CPU cores.
func DynamicWorkerCount(taskType string) int {
	cpus := runtime.NumCPU()

	switch taskType {
	case "frame-encode":
		// CPU-bound decode/resize/encode, cap to keep memory in check
		return minInt(cpus, 8)
	default:
		return cpus
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
