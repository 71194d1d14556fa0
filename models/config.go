package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"video-narrator/internal/config"
)

// Config holds application settings.
// Values are read from the JSON config file, then overridden by .env and the environment.
type Config struct {
	// OpenAI API settings
	OpenAIKey     string `json:"openai_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `json:"openai_base_url" env:"OPENAI_BASE_URL"`

	// Narration settings
	VisionModel   string `json:"vision_model" env:"NARRATOR_VISION_MODEL"`
	MaxTokens     int    `json:"max_tokens" env:"NARRATOR_MAX_TOKENS"`
	NarratorStyle string `json:"narrator_style" env:"NARRATOR_STYLE"`

	// OpenAI TTS settings
	TTSModel string  `json:"tts_model" env:"NARRATOR_TTS_MODEL"` // tts-1, tts-1-hd
	TTSVoice string  `json:"tts_voice" env:"NARRATOR_TTS_VOICE"` // alloy, echo, fable, onyx, nova, shimmer
	TTSSpeed float64 `json:"tts_speed" env:"NARRATOR_TTS_SPEED"` // 0.25 to 4.0

	// Frame sampling
	FrameInterval int `json:"frame_interval" env:"NARRATOR_FRAME_INTERVAL"` // seconds
	FrameMaxWidth int `json:"frame_max_width" env:"NARRATOR_FRAME_MAX_WIDTH"`
	MaxFrames     int `json:"max_frames" env:"NARRATOR_MAX_FRAMES"`

	// Tool paths
	FFmpegPath string `json:"ffmpeg_path" env:"NARRATOR_FFMPEG_PATH"`

	LogLevel string `json:"log_level" env:"NARRATOR_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		OpenAIKey:     "",
		OpenAIBaseURL: config.OpenAIAPIEndpoint,

		VisionModel:   config.OpenAIVisionModel,
		MaxTokens:     config.DefaultMaxTokens,
		NarratorStyle: config.DefaultNarratorStyle,

		TTSModel: config.OpenAITTSModelTTS1HD,
		TTSVoice: config.DefaultOpenAIVoice,
		TTSSpeed: 1.0,

		FrameInterval: config.DefaultFrameInterval,
		FrameMaxWidth: config.DefaultFrameMaxWidth,
		MaxFrames:     config.DefaultMaxFrames,

		FFmpegPath: "", // auto-detect

		LogLevel: "info",
	}
}

func (c *Config) ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "video-narrator", "config.json")
}

// LoadConfig reads the user config file and applies .env and environment overrides.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfig().ConfigPath())
}

// LoadConfigFrom is LoadConfig with an explicit config file. Missing files are not an error.
func LoadConfigFrom(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the process environment
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	configPath := c.ConfigPath()

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600) // holds the API key
}

// Validate checks that numeric settings are in range.
func (c *Config) Validate() error {
	if c.FrameInterval < 1 {
		return fmt.Errorf("frame interval must be at least 1 second, got %d", c.FrameInterval)
	}
	if c.MaxTokens < 1 || c.MaxTokens > config.MaxTokensLimit {
		return fmt.Errorf("max tokens must be between 1 and %d, got %d", config.MaxTokensLimit, c.MaxTokens)
	}
	if c.TTSSpeed < 0.25 || c.TTSSpeed > 4.0 {
		return fmt.Errorf("speech speed must be between 0.25 and 4.0, got %.2f", c.TTSSpeed)
	}
	if c.FrameMaxWidth < 0 {
		return fmt.Errorf("frame max width cannot be negative")
	}
	if c.MaxFrames < 0 {
		return fmt.Errorf("max frames cannot be negative")
	}
	if c.VisionModel == "" || c.TTSModel == "" || c.TTSVoice == "" {
		return fmt.Errorf("vision model, speech model and voice are required")
	}
	return nil
}
