package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"video-narrator/internal/config"
	"video-narrator/internal/logger"
	"video-narrator/internal/media"
	textutil "video-narrator/internal/text"
	"video-narrator/internal/tts"
)

// voicePreviewText is spoken when the user previews a voice.
const voicePreviewText = "And here, in its natural habitat, we find the narrator, ready to describe your video."

// OpenAITTSService handles text-to-speech using OpenAI's API
type OpenAITTSService struct {
	client *openai.Client
	model  string  // tts-1 or tts-1-hd
	voice  string  // alloy, echo, fable, onyx, nova, shimmer
	speed  float64 // 0.25 to 4.0
	ffmpeg *media.FFmpegService
}

// OpenAI TTS voices with descriptions
var OpenAIVoices = map[string]string{
	"alloy":   "Alloy (Neutral, balanced)",
	"echo":    "Echo (Male, warm)",
	"fable":   "Fable (British, expressive)",
	"onyx":    "Onyx (Male, deep)",
	"nova":    "Nova (Female, friendly)",
	"shimmer": "Shimmer (Female, soft)",
}

// NewOpenAITTSService creates a new OpenAI TTS service.
// ffmpeg is only needed when writing formats other than MP3 and may be nil.
func NewOpenAITTSService(client *openai.Client, model, voice string, speed float64, ffmpeg *media.FFmpegService) *OpenAITTSService {
	if model == "" {
		model = config.OpenAITTSModelTTS1HD
	}
	if voice == "" {
		voice = config.DefaultOpenAIVoice
	}
	if speed <= 0 || speed > 4.0 {
		speed = 1.0
	}

	return &OpenAITTSService{
		client: client,
		model:  model,
		voice:  voice,
		speed:  speed,
		ffmpeg: ffmpeg,
	}
}

// SetVoice changes the voice for synthesis
func (s *OpenAITTSService) SetVoice(voice string) {
	if voice != "" {
		s.voice = voice
	}
}

// Synthesize generates speech for text and writes it to outputPath.
// The API returns MP3; a .wav outputPath is converted with ffmpeg.
func (s *OpenAITTSService) Synthesize(ctx context.Context, text, outputPath string) error {
	logger.LogInfo("OpenAI TTS: model=%s voice=%s speed=%.2f chars=%d", s.model, s.voice, s.speed, len(text))

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty text provided")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	mp3Path := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".mp3"
	if err := s.synthesizeLong(ctx, text, mp3Path); err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(outputPath), ".mp3") {
		return nil
	}

	// Other formats go through ffmpeg
	if s.ffmpeg == nil {
		os.Remove(mp3Path)
		return fmt.Errorf("ffmpeg is required to write %s", filepath.Ext(outputPath))
	}
	if err := s.ffmpeg.ConvertAudio(ctx, mp3Path, outputPath); err != nil {
		os.Remove(mp3Path)
		return fmt.Errorf("failed to convert audio: %w", err)
	}
	os.Remove(mp3Path)

	return nil
}

// synthesizeLong splits text that exceeds the input limit into segments,
// synthesizes them concurrently and joins the results.
func (s *OpenAITTSService) synthesizeLong(ctx context.Context, text, mp3Path string) error {
	chunks := textutil.Chunk(text, config.MaxSpeechInputChars)
	if len(chunks) == 1 {
		return s.synthesizeMP3(ctx, chunks[0], mp3Path)
	}

	logger.LogInfo("OpenAI TTS: splitting %d chars into %d segments", len(text), len(chunks))
	segmentDir, err := tts.CreateSegmentDir(mp3Path)
	if err != nil {
		return fmt.Errorf("failed to create segment directory: %w", err)
	}
	defer os.RemoveAll(segmentDir)

	parts, err := tts.SynthesizeSegments(ctx, chunks, segmentDir, config.MaxSpeechSegmentJob, s.synthesizeMP3, nil)
	if err != nil {
		return err
	}
	return tts.JoinMP3(parts, mp3Path)
}

// synthesizeMP3 makes one speech request and writes the MP3 response.
func (s *OpenAITTSService) synthesizeMP3(ctx context.Context, text, mp3Path string) error {
	ctx, cancel := context.WithTimeout(ctx, config.SpeechTimeout)
	defer cancel()

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          s.speed,
	})
	if err != nil {
		return describeAPIError("TTS", err)
	}
	defer resp.Close()

	return writeStream(resp, mp3Path)
}

// PreviewVoice synthesizes a short sample with the given voice.
func (s *OpenAITTSService) PreviewVoice(ctx context.Context, voice, outputPath string) error {
	preview := *s
	preview.SetVoice(voice)
	preview.model = config.OpenAITTSModelTTS1
	return preview.Synthesize(ctx, voicePreviewText, outputPath)
}

func writeStream(r io.Reader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return f.Close()
}

// GetOpenAIVoices returns the available OpenAI TTS voices with descriptions
func GetOpenAIVoices() map[string]string {
	return OpenAIVoices
}

// GetOpenAIVoiceList returns voice IDs as a slice
func GetOpenAIVoiceList() []string {
	return []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}
}

// EstimateCost estimates the cost for synthesizing text
// OpenAI TTS pricing: $15/1M characters (tts-1), $30/1M characters (tts-1-hd)
func (s *OpenAITTSService) EstimateCost(charCount int) float64 {
	pricePerMillion := 15.0
	if s.model == config.OpenAITTSModelTTS1HD {
		pricePerMillion = 30.0
	}
	return float64(charCount) / 1000000.0 * pricePerMillion
}
