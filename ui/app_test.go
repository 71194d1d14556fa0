package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-narrator/internal/media"
	"video-narrator/models"
	"video-narrator/services"
)

func newTestUI(t *testing.T) *MainUI {
	t.Helper()
	test.NewTempApp(t)
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)

	ui := NewMainUI(w, models.DefaultConfig())
	ui.checkFFmpeg = nil
	w.SetContent(ui.Build())
	return ui
}

// acceptKey types key and applies a successful check for it.
func acceptKey(ui *MainUI, key string) {
	ui.keyEntry.SetText(key)
	ui.applyKey(key, nil)
}

func TestKeyGate(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		err      error
		wantMsg  string
		unlocked bool
	}{
		{"empty", "", nil, "Please enter OpenAI API key to continue.", false},
		{"whitespace", "   ", nil, "Please enter OpenAI API key to continue.", false},
		{"rejected", "sk-bad", services.ErrInvalidAPIKey, "Invalid api key.", false},
		{"wrapped rejection", "sk-bad", fmt.Errorf("check: %w", services.ErrInvalidAPIKey), "Invalid api key.", false},
		{"network", "sk-test", errors.New("dial tcp: timeout"), "dial tcp: timeout", false},
		{"valid", "sk-test", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := keyGate(tt.key, tt.err)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.unlocked, ok)
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, isVideoFile("clip.mp4"))
	assert.True(t, isVideoFile("CLIP.MOV"))
	assert.True(t, isVideoFile("a.b.webm"))
	assert.False(t, isVideoFile("notes.txt"))
	assert.False(t, isVideoFile("mp4"))
}

func TestCopyUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	first, err := copyUpload(strings.NewReader("video bytes"), "Clip.MP4", dir)
	require.NoError(t, err)
	second, err := copyUpload(strings.NewReader("other"), "Clip.MP4", dir)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, dir, filepath.Dir(first))
	assert.Equal(t, ".mp4", filepath.Ext(first))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestCopyUpload_ReadErrorRemovesFile(t *testing.T) {
	dir := t.TempDir()

	_, err := copyUpload(failingReader{}, "clip.mp4", dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeURI struct {
	fyne.URI
	scheme string
	name   string
}

func (u fakeURI) Scheme() string { return u.scheme }
func (u fakeURI) Name() string   { return u.name }

type fakeReader struct {
	*strings.Reader
	uri fyne.URI
}

func (r fakeReader) Close() error  { return nil }
func (r fakeReader) URI() fyne.URI { return r.uri }

func TestLocalVideoPath(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "clip.mp4")

	path, err := localVideoPath(fakeReader{strings.NewReader(""), storage.NewFileURI(local)}, dir)
	require.NoError(t, err)
	assert.Equal(t, local, path)

	remote := fakeReader{strings.NewReader("data"), fakeURI{scheme: "content", name: "shared.mov"}}
	path, err = localVideoPath(remote, filepath.Join(dir, "job"))
	require.NoError(t, err)
	assert.Equal(t, ".mov", filepath.Ext(path))
	assert.FileExists(t, path)
}

func TestNarrationFileName(t *testing.T) {
	assert.Equal(t, "holiday_narration.mp3", narrationFileName("holiday.mp4"))
	assert.Equal(t, "a.b_narration.mp3", narrationFileName("a.b.mov"))
	assert.Equal(t, "narration_narration.mp3", narrationFileName(""))
	assert.Equal(t, "holiday_narration.srt", subtitleFileName("holiday.mp4"))
}

func TestPlaybackCommand(t *testing.T) {
	find := func(name string) string { return "/opt/bin/" + name }

	cmd, err := playbackCommand("linux", "/tmp/a.mp3", find)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/bin/ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "/tmp/a.mp3"}, cmd.Args)

	cmd, err = playbackCommand("darwin", "/tmp/a.mp3", find)
	require.NoError(t, err)
	assert.Equal(t, []string{"afplay", "/tmp/a.mp3"}, cmd.Args)

	cmd, err = playbackCommand("windows", `C:\Users\o'neil\speech.mp3`, find)
	require.NoError(t, err)
	require.Len(t, cmd.Args, 5)
	assert.Equal(t, []string{"powershell", "-NoProfile", "-NonInteractive", "-Command"}, cmd.Args[:4])
	assert.Contains(t, cmd.Args[4], "System.Windows.Media.MediaPlayer")
	assert.Contains(t, cmd.Args[4], `[Uri]'C:\Users\o''neil\speech.mp3'`)

	_, err = playbackCommand("plan9", "/tmp/a.mp3", find)
	assert.Error(t, err)
}

func TestAudioPlayer_StopWhenIdle(t *testing.T) {
	var p audioPlayer
	assert.False(t, p.Playing())
	p.Stop()
	assert.False(t, p.Playing())
}

func TestMainUI_LockedWithoutKey(t *testing.T) {
	ui := newTestUI(t)

	assert.Equal(t, services.ErrMissingAPIKey.Error(), ui.keyStatus.Text)
	assert.False(t, ui.uploadSection.Visible())
	assert.False(t, ui.narrationSection.Visible())
	assert.False(t, ui.ttsSection.Visible())

	test.Tap(ui.keyButton)
	assert.Equal(t, services.ErrMissingAPIKey.Error(), ui.keyStatus.Text)
	assert.Nil(t, ui.pipeline)
}

func TestMainUI_ApplyKey(t *testing.T) {
	ui := newTestUI(t)

	ui.keyEntry.SetText("sk-bad")
	ui.applyKey("sk-bad", services.ErrInvalidAPIKey)
	assert.Equal(t, "Invalid api key.", ui.keyStatus.Text)
	assert.False(t, ui.uploadSection.Visible())

	acceptKey(ui, "sk-test")
	assert.Equal(t, "", ui.keyStatus.Text)
	assert.True(t, ui.uploadSection.Visible())
	assert.False(t, ui.narrationSection.Visible())
	assert.NotNil(t, ui.pipeline)
	assert.Equal(t, "sk-test", ui.config.OpenAIKey)

	// editing the key locks the page again
	ui.keyEntry.SetText("sk-other")
	assert.False(t, ui.uploadSection.Visible())
	assert.Nil(t, ui.pipeline)
}

func TestMainUI_FinishSuccess(t *testing.T) {
	ui := newTestUI(t)
	acceptKey(ui, "sk-test")

	job := models.NewNarrationJob("/videos/clip.mp4", "")
	job.SetNarration("A lone penguin waddles across the ice.")
	job.Complete("/tmp/speech.mp3")
	ui.job = job
	ui.resetNarration()
	assert.True(t, ui.subsBtn.Disabled())

	assert.False(t, ui.narrationText.Visible())

	ui.showNarration(job.Narration)
	assert.True(t, ui.narrationText.Visible())
	assert.Equal(t, job.Narration, ui.narrationText.Content())
	assert.Equal(t, services.MsgDone, ui.narrationStatus.Text)
	assert.Equal(t, services.MsgGeneratingVoice, ui.voiceStatus.Text)
	assert.True(t, ui.ttsSection.Visible())
	assert.True(t, ui.copyBtn.Visible())

	ui.finish(job, nil)
	assert.Equal(t, services.MsgDone, ui.voiceStatus.Text)
	assert.False(t, ui.playBtn.Disabled())
	assert.False(t, ui.saveBtn.Disabled())
	assert.False(t, ui.subsBtn.Disabled())
	assert.False(t, ui.generateBtn.Disabled())
	assert.True(t, ui.cancelBtn.Disabled())
	assert.Equal(t, 100, ui.stageProgress.Progress)
}

func TestMainUI_FinishFailure(t *testing.T) {
	ui := newTestUI(t)
	acceptKey(ui, "sk-test")

	job := models.NewNarrationJob("/videos/clip.mp4", "")
	ui.job = job
	ui.resetNarration()

	job.Fail(errors.New("boom"))
	ui.finish(job, errors.New("narration failed: boom"))
	assert.Equal(t, "Failed: narration failed: boom", ui.narrationStatus.Text)
	assert.False(t, ui.retryBtn.Visible())

	job.SetNarration("text")
	ui.finish(job, fmt.Errorf("speech synthesis failed: %w", context.Canceled))
	assert.Equal(t, "Cancelled.", ui.voiceStatus.Text)
	assert.True(t, ui.retryBtn.Visible())
}

func TestMainUI_RunningLocksKeyControls(t *testing.T) {
	ui := newTestUI(t)
	acceptKey(ui, "sk-test")

	ui.setRunning(true)
	assert.True(t, ui.keyEntry.Disabled())
	assert.True(t, ui.keyButton.Disabled())
	assert.True(t, ui.chooseBtn.Disabled())

	// a submitted key is not rechecked while a run uses it
	ui.cancel = func() {}
	ui.onContinue()
	assert.Empty(t, ui.keyStatus.Text)
	ui.cancel = nil

	ui.setRunning(false)
	assert.False(t, ui.keyEntry.Disabled())
	assert.False(t, ui.keyButton.Disabled())
	assert.False(t, ui.chooseBtn.Disabled())
}

func TestMainUI_ApplyKeyDropsReplacedKey(t *testing.T) {
	ui := newTestUI(t)

	ui.keyEntry.SetText("sk-new")
	ui.applyKey("sk-old", nil)

	assert.False(t, ui.uploadSection.Visible())
	assert.Nil(t, ui.pipeline)
	assert.Empty(t, ui.config.OpenAIKey)
	assert.Empty(t, ui.validKey)
}

func TestMainUI_MissingFFmpegBlocksUpload(t *testing.T) {
	ui := newTestUI(t)
	acceptKey(ui, "sk-test")

	ui.applyDependencyResult(errors.New("ffmpeg not found at ffmpeg: exec: not found"))
	assert.True(t, ui.deps.container.Visible())
	assert.Equal(t, "ffmpeg not found at ffmpeg: exec: not found", ui.deps.detail.Text)
	assert.True(t, ui.chooseBtn.Disabled())

	// finishing a run does not re-enable uploads while ffmpeg is missing
	ui.setRunning(false)
	assert.True(t, ui.chooseBtn.Disabled())

	ui.applyDependencyResult(nil)
	assert.False(t, ui.deps.container.Visible())
	assert.False(t, ui.chooseBtn.Disabled())
}

func TestMainUI_DependencyCheckUsesConfiguredFFmpeg(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)

	cfg := models.DefaultConfig()
	cfg.FFmpegPath = "/opt/tools/ffmpeg"
	ui := NewMainUI(w, cfg)

	checked := make(chan *media.FFmpegService, 1)
	ui.checkFFmpeg = func(ff *media.FFmpegService) error {
		checked <- ff
		return nil
	}
	w.SetContent(ui.Build())

	select {
	case ff := <-checked:
		assert.Same(t, ui.ffmpeg, ff)
	case <-time.After(5 * time.Second):
		t.Fatal("ffmpeg check did not run")
	}
}
