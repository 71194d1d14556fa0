// Package ui builds the single-page narrator window.
package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"video-narrator/internal/config"
	"video-narrator/internal/frames"
	"video-narrator/internal/logger"
	"video-narrator/internal/media"
	"video-narrator/internal/subtitle"
	"video-narrator/models"
	"video-narrator/services"
	"video-narrator/ui/dialogs"
	"video-narrator/ui/widgets"
)

// AppTitle is the page heading and window title.
const AppTitle = "Automated Video Narration with GPT Vision and TTS"

// audioExtensions are offered when saving the narration audio.
var audioExtensions = []string{".mp3", ".wav", ".m4a"}

// MainUI holds the main window state
type MainUI struct {
	window   fyne.Window
	config   *models.Config
	pipeline *services.Pipeline
	ffmpeg   *media.FFmpegService
	player   audioPlayer

	checkFFmpeg func(*media.FFmpegService) error

	// API key gate
	keyEntry  *widget.Entry
	keyButton *widget.Button
	keyStatus *widget.Label

	// Upload Video
	uploadSection *fyne.Container
	deps          *dependencyRow
	ffmpegErr     error
	chooseBtn     *widget.Button
	fileName      *widget.RichText
	videoInfo     *widget.Label
	preview       *canvas.Image
	openVideoBtn  *widget.Button

	// Narration
	narrationSection *fyne.Container
	generateBtn      *widget.Button
	cancelBtn        *widget.Button
	stageProgress    *widgets.StageProgress
	narrationStatus  *widget.Label
	narrationText    *widgets.ReadOnlyEntry
	copyBtn          *widget.Button

	// TTS
	ttsSection  *fyne.Container
	voiceStatus *widget.Label
	retryBtn    *widget.Button
	playBtn     *widget.Button
	saveBtn     *widget.Button
	subsBtn     *widget.Button

	job      *models.NarrationJob
	validKey string
	cancel   context.CancelFunc
}

// NewMainUI creates the main UI; a nil config uses the defaults.
func NewMainUI(w fyne.Window, cfg *models.Config) *MainUI {
	if cfg == nil {
		cfg = models.DefaultConfig()
	}

	return &MainUI{
		window:      w,
		config:      cfg,
		ffmpeg:      media.NewFFmpegServiceWithPath(cfg.FFmpegPath),
		checkFFmpeg: (*media.FFmpegService).CheckInstalled,
	}
}

// Build creates the main UI layout
func (ui *MainUI) Build() fyne.CanvasObject {
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), ui.showSettings)
	header := container.NewBorder(nil, nil, nil, settingsBtn, widgets.NewPageHeader(AppTitle))

	// API key
	ui.keyEntry = widget.NewPasswordEntry()
	ui.keyEntry.SetPlaceHolder("sk-...")
	ui.keyEntry.SetText(ui.config.OpenAIKey)
	ui.keyEntry.OnSubmitted = func(string) { ui.onContinue() }
	ui.keyEntry.OnChanged = ui.onKeyChanged
	ui.keyButton = widget.NewButton("Continue", ui.onContinue)
	ui.keyStatus = widget.NewLabel("")
	ui.keyStatus.Wrapping = fyne.TextWrapWord

	keyForm := widget.NewForm(
		widget.NewFormItem("OpenAI API Key", container.NewBorder(nil, nil, nil, ui.keyButton, ui.keyEntry)),
	)

	// Upload Video
	ui.deps = newDependencyRow(ui.checkDependencies)
	ui.chooseBtn = widget.NewButtonWithIcon("Choose a video file", theme.FolderOpenIcon(), ui.chooseVideo)
	ui.fileName = widget.NewRichTextFromMarkdown("")
	ui.videoInfo = widget.NewLabel("")
	ui.preview = canvas.NewImageFromImage(nil)
	ui.preview.FillMode = canvas.ImageFillContain
	ui.preview.SetMinSize(fyne.NewSize(config.PreviewWidth, config.PreviewWidth*9/16))
	ui.preview.Hide()
	ui.openVideoBtn = widget.NewButtonWithIcon("Open Video", theme.MediaVideoIcon(), ui.openVideo)
	ui.openVideoBtn.Hide()

	ui.uploadSection = container.NewVBox(
		widgets.NewSectionHeader("Upload Video"),
		ui.deps.container,
		container.NewHBox(ui.chooseBtn),
		ui.fileName,
		ui.preview,
		ui.videoInfo,
		container.NewHBox(ui.openVideoBtn),
	)

	// Narration
	ui.generateBtn = widget.NewButtonWithIcon("Generate Narration", theme.MediaPlayIcon(), ui.onGenerate)
	ui.generateBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), ui.onCancel)
	ui.cancelBtn.Disable()
	ui.stageProgress = widgets.NewStageProgress()
	ui.narrationStatus = widget.NewLabel("")
	ui.narrationText = widgets.NewReadOnlyEntry()
	ui.narrationText.SetMinRowsVisible(8)
	ui.narrationText.Hide()
	ui.copyBtn = widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), ui.copyNarration)
	ui.copyBtn.Hide()

	ui.narrationSection = container.NewVBox(
		widgets.NewSectionHeader("Narration"),
		container.NewHBox(ui.generateBtn, ui.cancelBtn),
		ui.stageProgress,
		ui.narrationStatus,
		ui.narrationText,
		container.NewHBox(ui.copyBtn),
	)

	// TTS
	ui.voiceStatus = widget.NewLabel("")
	ui.retryBtn = widget.NewButtonWithIcon("Retry Voice", theme.ViewRefreshIcon(), ui.onRetryVoice)
	ui.retryBtn.Hide()
	ui.playBtn = widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), ui.togglePlayback)
	ui.saveBtn = widget.NewButtonWithIcon("Save Audio...", theme.DocumentSaveIcon(), ui.saveAudio)
	ui.subsBtn = widget.NewButtonWithIcon("Save Subtitles...", theme.DocumentIcon(), ui.saveSubtitles)

	ui.ttsSection = container.NewVBox(
		widgets.NewSectionHeader("TTS"),
		ui.voiceStatus,
		container.NewHBox(ui.playBtn, ui.saveBtn, ui.subsBtn, ui.retryBtn),
	)

	content := container.NewVBox(
		header,
		keyForm,
		ui.keyStatus,
		ui.uploadSection,
		ui.narrationSection,
		ui.ttsSection,
	)

	ui.lock()
	ui.checkDependencies()
	if strings.TrimSpace(ui.config.OpenAIKey) != "" {
		ui.onContinue()
	} else {
		msg, _ := keyGate("", nil)
		ui.keyStatus.SetText(msg)
	}

	return container.NewVScroll(container.NewPadded(content))
}

// lock hides everything below the key field.
func (ui *MainUI) lock() {
	ui.uploadSection.Hide()
	ui.narrationSection.Hide()
	ui.ttsSection.Hide()
}

// unlock shows the sections the current job has reached.
func (ui *MainUI) unlock() {
	ui.uploadSection.Show()
	if ui.job != nil {
		ui.narrationSection.Show()
	}
	if ui.job != nil && ui.job.HasNarration() {
		ui.ttsSection.Show()
	}
}

func (ui *MainUI) onKeyChanged(text string) {
	if ui.validKey == "" || strings.TrimSpace(text) == ui.validKey {
		return
	}
	ui.onCancel()
	ui.validKey = ""
	ui.pipeline = nil
	ui.lock()
	msg, _ := keyGate(text, nil)
	ui.keyStatus.SetText(msg)
}

func (ui *MainUI) onContinue() {
	if ui.cancel != nil {
		return
	}
	key := strings.TrimSpace(ui.keyEntry.Text)
	if key == "" {
		ui.applyKey(key, nil)
		return
	}

	ui.keyButton.Disable()
	ui.keyStatus.SetText("Checking API key...")
	baseURL := ui.config.OpenAIBaseURL

	go func() {
		err := services.CheckAPIKey(context.Background(), services.NewOpenAIClient(key, baseURL))
		if err != nil {
			logger.LogError("API key check failed: %v", err)
		}
		fyne.Do(func() {
			// a run started meanwhile keeps the accepted key; finishing it re-enables the button
			if ui.cancel != nil {
				ui.keyStatus.SetText("")
				return
			}
			ui.keyButton.Enable()
			ui.applyKey(key, err)
		})
	}()
}

// applyKey updates the page for the result of a key check.
// A result for a key the field no longer holds is dropped.
func (ui *MainUI) applyKey(key string, checkErr error) {
	if strings.TrimSpace(ui.keyEntry.Text) != key {
		logger.LogDebug("Dropping key check result for a replaced key")
		ui.keyStatus.SetText("")
		return
	}

	msg, ok := keyGate(key, checkErr)
	ui.keyStatus.SetText(msg)
	if !ok {
		ui.validKey = ""
		ui.pipeline = nil
		ui.lock()
		return
	}

	logger.LogInfo("API key accepted")
	ui.validKey = key
	ui.config.OpenAIKey = key
	ui.rebuildPipeline()
	ui.unlock()
}

func (ui *MainUI) rebuildPipeline() {
	ui.ffmpeg = media.NewFFmpegServiceWithPath(ui.config.FFmpegPath)
	ui.pipeline = services.NewPipeline(ui.config)
}

// resetFFmpeg switches to the configured ffmpeg and checks it again.
func (ui *MainUI) resetFFmpeg() {
	ui.ffmpeg = media.NewFFmpegServiceWithPath(ui.config.FFmpegPath)
	ui.checkDependencies()
}

func (ui *MainUI) chooseVideo() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if reader == nil {
			return
		}
		ui.loadVideo(reader)
	}, ui.window)
	d.SetFilter(storage.NewExtensionFileFilter(videoExtensions))
	d.Show()
}

func (ui *MainUI) loadVideo(reader fyne.URIReadCloser) {
	name := reader.URI().Name()
	if !isVideoFile(name) {
		reader.Close()
		dialog.ShowError(fmt.Errorf("%s is not a supported video file", name), ui.window)
		return
	}

	job := models.NewNarrationJob("", name)
	ui.chooseBtn.Disable()

	go func() {
		defer reader.Close()
		path, err := localVideoPath(reader, job.WorkDir)

		fyne.Do(func() {
			ui.enableChoose()
			if err != nil {
				job.Cleanup()
				dialog.ShowError(err, ui.window)
				return
			}
			job.VideoPath = path
			ui.setJob(job)
		})
	}()
}

// setJob replaces the current video, discarding the previous job's files.
func (ui *MainUI) setJob(job *models.NarrationJob) {
	ui.player.Stop()
	if ui.job != nil {
		ui.ffmpeg.Forget(ui.job.VideoPath)
		if err := ui.job.Cleanup(); err != nil {
			logger.LogError("Failed to clean up job %s: %v", ui.job.ID, err)
		}
	}
	ui.job = job
	logger.LogInfo("Loaded video %s (%s)", job.FileName, job.VideoPath)

	ui.fileName.ParseMarkdown("### Filename: " + job.FileName)
	ui.videoInfo.SetText("")
	ui.preview.Hide()
	ui.openVideoBtn.Show()

	ui.resetNarration()
	ui.narrationStatus.SetText(job.StatusText())
	ui.narrationSection.Show()
	ui.ttsSection.Hide()

	go ui.loadPreview(ui.ffmpeg, job)
}

// loadPreview probes the video and shows its first frame.
func (ui *MainUI) loadPreview(ff *media.FFmpegService, job *models.NarrationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), config.ExecTimeoutFFmpeg)
	defer cancel()

	info, err := ff.ProbeVideo(ctx, job.VideoPath)
	if err != nil {
		logger.LogError("Failed to probe %s: %v", job.VideoPath, err)
		fyne.Do(func() {
			if ui.job == job {
				ui.videoInfo.SetText("Could not read video: " + err.Error())
			}
		})
		return
	}

	var img image.Image
	previewPath := filepath.Join(job.WorkDir, "preview.jpg")
	if err := ff.ExtractFrameAt(ctx, job.VideoPath, previewPath, 0); err != nil {
		logger.LogError("Failed to extract preview: %v", err)
	} else if img, err = frames.Thumbnail(previewPath, config.PreviewWidth); err != nil {
		logger.LogError("Failed to load preview: %v", err)
	}

	summary := info.String()
	fyne.Do(func() {
		if ui.job != job {
			return
		}
		ui.videoInfo.SetText(summary)
		if img != nil {
			ui.preview.Image = img
			ui.preview.Refresh()
			ui.preview.Show()
		}
	})
}

func (ui *MainUI) openVideo() {
	if ui.job == nil {
		return
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(ui.job.VideoPath)}
	if err := fyne.CurrentApp().OpenURL(u); err != nil {
		dialog.ShowError(fmt.Errorf("failed to open video: %w", err), ui.window)
	}
}

// resetNarration clears the Narration and TTS output for a fresh run.
func (ui *MainUI) resetNarration() {
	ui.stageProgress.Reset()
	ui.narrationStatus.SetText("")
	ui.narrationText.SetText("")
	ui.narrationText.Hide()
	ui.copyBtn.Hide()
	ui.voiceStatus.SetText("")
	ui.retryBtn.Hide()
	ui.playBtn.Disable()
	ui.saveBtn.Disable()
	ui.subsBtn.Disable()
}

func (ui *MainUI) setRunning(running bool) {
	if running {
		ui.generateBtn.Disable()
		ui.chooseBtn.Disable()
		ui.retryBtn.Disable()
		ui.keyEntry.Disable()
		ui.keyButton.Disable()
		ui.cancelBtn.Enable()
		return
	}
	ui.generateBtn.Enable()
	ui.enableChoose()
	ui.retryBtn.Enable()
	ui.keyEntry.Enable()
	ui.keyButton.Enable()
	ui.cancelBtn.Disable()
}

func (ui *MainUI) onGenerate() {
	if ui.job == nil || ui.pipeline == nil {
		return
	}
	ui.player.Stop()
	ui.resetNarration()
	ui.ttsSection.Hide()
	ui.narrationStatus.SetText(services.MsgGeneratingNarration)
	ui.run(true)
}

func (ui *MainUI) onRetryVoice() {
	if ui.job == nil || ui.pipeline == nil || !ui.job.HasNarration() {
		return
	}
	ui.retryBtn.Hide()
	ui.voiceStatus.SetText(services.MsgGeneratingVoice)
	ui.run(false)
}

// run narrates the current job (when narrate is set) and voices the narration.
// The job is only read on the UI thread once the goroutine has finished with it.
func (ui *MainUI) run(narrate bool) {
	job := ui.job
	pipeline := ui.pipeline

	ctx, cancel := context.WithCancel(context.Background())
	ui.cancel = cancel
	ui.setRunning(true)

	onProgress := func(stage string, percent int, message string) {
		fyne.Do(func() {
			ui.stageProgress.SetStage(stage, percent, message)
		})
	}

	go func() {
		defer cancel()

		var err error
		if narrate {
			err = pipeline.ProcessWithCallback(ctx, job, onProgress, func(text string) {
				fyne.Do(func() {
					ui.showNarration(text)
				})
			})
		} else {
			err = pipeline.Speak(ctx, job, onProgress)
		}

		fyne.Do(func() {
			ui.finish(job, err)
		})
	}()
}

func (ui *MainUI) showNarration(text string) {
	ui.narrationStatus.SetText(services.MsgDone)
	ui.narrationText.SetText(text)
	ui.narrationText.Show()
	ui.copyBtn.Show()
	ui.voiceStatus.SetText(services.MsgGeneratingVoice)
	ui.ttsSection.Show()
}

func (ui *MainUI) finish(job *models.NarrationJob, err error) {
	ui.cancel = nil
	ui.setRunning(false)
	ui.stageProgress.SetStatus(job.Status)

	if err == nil {
		ui.voiceStatus.SetText(job.StatusText())
		ui.playBtn.Enable()
		ui.saveBtn.Enable()
		ui.subsBtn.Enable()
		return
	}

	msg := "Failed: " + err.Error()
	if errors.Is(err, context.Canceled) {
		msg = "Cancelled."
	} else {
		logger.LogError("Narration of %s failed: %v", job.FileName, err)
		dialog.ShowError(err, ui.window)
	}

	if job.HasNarration() {
		ui.voiceStatus.SetText(msg)
		ui.retryBtn.Show()
	} else {
		ui.narrationStatus.SetText(msg)
	}
}

func (ui *MainUI) onCancel() {
	if ui.cancel != nil {
		ui.cancel()
	}
}

func (ui *MainUI) copyNarration() {
	text := ui.narrationText.Content()
	if text == "" {
		return
	}
	ui.window.Clipboard().SetContent(text)
}

func (ui *MainUI) togglePlayback() {
	if ui.player.Playing() {
		ui.player.Stop()
		ui.setPlayButton(false)
		return
	}
	if ui.job == nil || ui.job.SpeechPath == "" {
		return
	}

	err := ui.player.Play(ui.job.SpeechPath, func(err error) {
		fyne.Do(func() {
			ui.setPlayButton(false)
			if err != nil {
				dialog.ShowError(fmt.Errorf("playback failed: %w", err), ui.window)
			}
		})
	})
	if err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	ui.setPlayButton(true)
}

func (ui *MainUI) setPlayButton(playing bool) {
	if playing {
		ui.playBtn.SetText("Stop")
		ui.playBtn.SetIcon(theme.MediaStopIcon())
		return
	}
	ui.playBtn.SetText("Play")
	ui.playBtn.SetIcon(theme.MediaPlayIcon())
}

func (ui *MainUI) saveAudio() {
	if ui.job == nil || ui.job.SpeechPath == "" {
		return
	}
	speechPath := ui.job.SpeechPath

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if writer == nil {
			return
		}
		ui.writeAudio(speechPath, writer)
	}, ui.window)
	d.SetFileName(narrationFileName(ui.job.FileName))
	d.SetFilter(storage.NewExtensionFileFilter(audioExtensions))
	d.Show()
}

// writeAudio copies MP3 output directly and converts other formats with ffmpeg.
func (ui *MainUI) writeAudio(speechPath string, writer fyne.URIWriteCloser) {
	ext := strings.ToLower(writer.URI().Extension())
	if ext == "" || ext == ".mp3" {
		err := copyFileTo(speechPath, writer)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to save audio: %w", err), ui.window)
		}
		return
	}

	writer.Close()
	outputPath := writer.URI().Path()
	ff := ui.ffmpeg

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ExecTimeoutFFmpeg)
		defer cancel()

		if err := ff.ConvertAudio(ctx, speechPath, outputPath); err != nil {
			logger.LogError("Failed to convert audio: %v", err)
			fyne.Do(func() {
				dialog.ShowError(err, ui.window)
			})
			return
		}
		logger.LogInfo("Saved narration audio to %s", outputPath)
	}()
}

func copyFileTo(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// narrationFileName suggests the audio file name for a video.
func narrationFileName(videoName string) string {
	return narrationBase(videoName) + "_narration.mp3"
}

// subtitleFileName suggests the caption file name for a video.
func subtitleFileName(videoName string) string {
	return narrationBase(videoName) + "_narration.srt"
}

func narrationBase(videoName string) string {
	base := strings.TrimSuffix(videoName, filepath.Ext(videoName))
	if base == "" {
		base = "narration"
	}
	return base
}

// saveSubtitles times the narration against the speech audio and saves it as SRT.
func (ui *MainUI) saveSubtitles() {
	if ui.job == nil || !ui.job.HasNarration() {
		return
	}
	job := ui.job
	ff := ui.ffmpeg
	ui.subsBtn.Disable()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ExecTimeoutFFmpeg)
		defer cancel()

		subs, err := services.NarrationSubtitles(ctx, ff, job)
		fyne.Do(func() {
			ui.subsBtn.Enable()
			if err != nil {
				dialog.ShowError(fmt.Errorf("failed to build subtitles: %w", err), ui.window)
				return
			}
			ui.showSubtitleSave(job.FileName, subtitle.FormatSRT(subs))
		})
	}()
}

func (ui *MainUI) showSubtitleSave(videoName, srt string) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if writer == nil {
			return
		}
		_, err = io.WriteString(writer, srt)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to save subtitles: %w", err), ui.window)
			return
		}
		logger.LogInfo("Saved narration subtitles to %s", writer.URI().Path())
	}, ui.window)
	d.SetFileName(subtitleFileName(videoName))
	d.SetFilter(storage.NewExtensionFileFilter([]string{".srt"}))
	d.Show()
}

func (ui *MainUI) showSettings() {
	d := dialogs.NewSettingsDialog(ui.window, ui.config)
	d.OnSave = ui.applySettings
	d.OnPreviewVoice = func(voice string) {
		ui.previewVoice(d, voice)
	}
	d.Show()
}

// applySettings is called after the settings dialog saved cfg.
func (ui *MainUI) applySettings(cfg *models.Config) {
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if ui.validKey != "" {
		ui.pipeline = services.NewPipeline(ui.config)
	}
	ui.resetFFmpeg()
}

func (ui *MainUI) previewVoice(d *dialogs.SettingsDialog, voice string) {
	if ui.validKey == "" {
		dialog.ShowError(services.ErrMissingAPIKey, ui.window)
		return
	}

	d.SetPreviewing(true)
	client := services.NewOpenAIClient(ui.validKey, ui.config.OpenAIBaseURL)
	tts := services.NewOpenAITTSService(client, ui.config.TTSModel, voice, ui.config.TTSSpeed, nil)
	previewPath := filepath.Join(os.TempDir(), "video-narrator", "preview-"+voice+".mp3")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.SpeechTimeout)
		defer cancel()

		err := tts.PreviewVoice(ctx, voice, previewPath)
		if err == nil {
			err = ui.player.Play(previewPath, func(error) {
				fyne.Do(func() {
					d.SetPreviewing(false)
				})
			})
		}
		if err != nil {
			logger.LogError("Voice preview failed: %v", err)
			fyne.Do(func() {
				d.SetPreviewing(false)
				dialog.ShowError(err, ui.window)
			})
		}
	}()
}

// Close stops running work and removes the current job's files.
func (ui *MainUI) Close() {
	ui.onCancel()
	ui.player.Stop()
	if ui.job != nil {
		ui.job.Cleanup()
	}
}

// GetWindow returns the main window
func (ui *MainUI) GetWindow() fyne.Window {
	return ui.window
}
