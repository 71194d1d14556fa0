package models

import (
	"os"
	"path/filepath"
	"testing"

	"video-narrator/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.VisionModel != config.OpenAIVisionModel {
		t.Errorf("VisionModel = %q, want %q", cfg.VisionModel, config.OpenAIVisionModel)
	}
	if cfg.TTSModel != "tts-1-hd" {
		t.Errorf("TTSModel = %q, want 'tts-1-hd'", cfg.TTSModel)
	}
	if cfg.TTSVoice != "alloy" {
		t.Errorf("TTSVoice = %q, want 'alloy'", cfg.TTSVoice)
	}
	if cfg.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", cfg.MaxTokens)
	}
	if cfg.FrameInterval != 2 {
		t.Errorf("FrameInterval = %d, want 2", cfg.FrameInterval)
	}
	if cfg.NarratorStyle != "David Attenborough" {
		t.Errorf("NarratorStyle = %q, want 'David Attenborough'", cfg.NarratorStyle)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	cfg := DefaultConfig()
	homeDir, _ := os.UserHomeDir()

	expected := filepath.Join(homeDir, ".config", "video-narrator", "config.json")
	if got := cfg.ConfigPath(); got != expected {
		t.Errorf("ConfigPath() = %q, want %q", got, expected)
	}
}

func TestLoadConfigFrom_MissingFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfigFrom(filepath.Join(dir, "config.json"), filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.FrameInterval != config.DefaultFrameInterval {
		t.Errorf("FrameInterval = %d, want default", cfg.FrameInterval)
	}
}

func TestLoadConfigFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"vision_model": "gpt-4o", "frame_interval": 5, "tts_voice": "onyx"}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path, filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.VisionModel != "gpt-4o" {
		t.Errorf("VisionModel = %q, want 'gpt-4o'", cfg.VisionModel)
	}
	if cfg.FrameInterval != 5 {
		t.Errorf("FrameInterval = %d, want 5", cfg.FrameInterval)
	}
	if cfg.TTSVoice != "onyx" {
		t.Errorf("TTSVoice = %q, want 'onyx'", cfg.TTSVoice)
	}
	// untouched fields keep defaults
	if cfg.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", cfg.MaxTokens)
	}
}

func TestLoadConfigFrom_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfigFrom(path, filepath.Join(dir, ".env")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadConfigFrom_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"openai_key": "sk-file", "max_tokens": 300}`), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("NARRATOR_MAX_TOKENS", "800")

	cfg, err := LoadConfigFrom(path, filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.OpenAIKey != "sk-env" {
		t.Errorf("OpenAIKey = %q, want 'sk-env'", cfg.OpenAIKey)
	}
	if cfg.MaxTokens != 800 {
		t.Errorf("MaxTokens = %d, want 800", cfg.MaxTokens)
	}
}

func TestLoadConfigFrom_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("NARRATOR_FRAME_MAX_WIDTH=512\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets variables directly; register cleanup through t.Setenv first
	t.Setenv("NARRATOR_FRAME_MAX_WIDTH", "")
	os.Unsetenv("NARRATOR_FRAME_MAX_WIDTH")

	cfg, err := LoadConfigFrom(filepath.Join(dir, "config.json"), envPath)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.FrameMaxWidth != 512 {
		t.Errorf("FrameMaxWidth = %d, want 512", cfg.FrameMaxWidth)
	}
}

func TestLoadConfigFrom_BadEnvValue(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NARRATOR_FRAME_INTERVAL", "often")

	if _, err := LoadConfigFrom(filepath.Join(dir, "config.json"), filepath.Join(dir, ".env")); err == nil {
		t.Error("expected error for non-numeric NARRATOR_FRAME_INTERVAL")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero interval", func(c *Config) { c.FrameInterval = 0 }},
		{"too many tokens", func(c *Config) { c.MaxTokens = config.MaxTokensLimit + 1 }},
		{"zero tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"slow speed", func(c *Config) { c.TTSSpeed = 0.1 }},
		{"fast speed", func(c *Config) { c.TTSSpeed = 5 }},
		{"negative width", func(c *Config) { c.FrameMaxWidth = -1 }},
		{"negative max frames", func(c *Config) { c.MaxFrames = -1 }},
		{"missing voice", func(c *Config) { c.TTSVoice = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.OpenAIKey = "sk-saved"
	cfg.TTSVoice = "nova"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(cfg.ConfigPath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := LoadConfigFrom(cfg.ConfigPath(), filepath.Join(home, ".env"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if loaded.TTSVoice != "nova" {
		t.Errorf("TTSVoice = %q, want 'nova'", loaded.TTSVoice)
	}
}
