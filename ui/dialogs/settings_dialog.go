// Package dialogs holds the modal dialogs of the narrator window.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/validation"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"video-narrator/internal/config"
	"video-narrator/internal/logger"
	"video-narrator/models"
	"video-narrator/services"
	"video-narrator/ui/widgets"
)

// costSampleChars is the narration length used for the cost hint.
const costSampleChars = 1000

// SettingsDialog displays and manages application settings
type SettingsDialog struct {
	window fyne.Window
	config *models.Config

	baseURLEntry     *widget.Entry
	visionModelEntry *widget.Entry
	maxTokensEntry   *widget.Entry
	styleEntry       *widget.Entry

	intervalEntry  *widget.Entry
	maxWidthEntry  *widget.Entry
	maxFramesEntry *widget.Entry

	ttsModelSelect *widget.Select
	voiceSelector  *widgets.VoiceSelector
	speedSlider    *widget.Slider
	speedLabel     *widget.Label
	costLabel      *widget.Label

	ffmpegEntry    *widget.Entry
	logLevelSelect *widget.Select

	OnSave         func(config *models.Config)
	OnPreviewVoice func(voice string)
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(window fyne.Window, config *models.Config) *SettingsDialog {
	return &SettingsDialog{
		window: window,
		config: config,
	}
}

// Show displays the settings dialog
func (d *SettingsDialog) Show() {
	content := d.build()

	scrollContent := container.NewVScroll(content)
	scrollContent.SetMinSize(fyne.NewSize(520, 540))

	dialog.ShowCustomConfirm("Settings", "Save", "Cancel", scrollContent, func(save bool) {
		if save {
			d.saveSettings()
		}
	}, d.window)
}

// SetPreviewing toggles the voice preview button.
func (d *SettingsDialog) SetPreviewing(previewing bool) {
	if d.voiceSelector != nil {
		d.voiceSelector.SetPreviewing(previewing)
	}
}

func numberEntry(value int) *widget.Entry {
	e := widget.NewEntry()
	e.Validator = validation.NewRegexp(`^\d+$`, "must be a whole number")
	e.SetText(strconv.Itoa(value))
	return e
}

func (d *SettingsDialog) build() fyne.CanvasObject {
	d.baseURLEntry = widget.NewEntry()
	d.baseURLEntry.SetPlaceHolder(config.OpenAIAPIEndpoint)
	d.baseURLEntry.SetText(d.config.OpenAIBaseURL)

	d.visionModelEntry = widget.NewEntry()
	d.visionModelEntry.SetText(getOrDefault(d.config.VisionModel, config.OpenAIVisionModel))

	d.maxTokensEntry = numberEntry(d.config.MaxTokens)

	d.styleEntry = widget.NewMultiLineEntry()
	d.styleEntry.Wrapping = fyne.TextWrapWord
	d.styleEntry.SetMinRowsVisible(3)
	d.styleEntry.SetText(d.config.NarratorStyle)

	d.intervalEntry = numberEntry(d.config.FrameInterval)
	d.maxWidthEntry = numberEntry(d.config.FrameMaxWidth)
	d.maxWidthEntry.SetPlaceHolder("0 keeps the original size")
	d.maxFramesEntry = numberEntry(d.config.MaxFrames)
	d.maxFramesEntry.SetPlaceHolder("0 sends every sampled frame")

	d.costLabel = widget.NewLabel("")
	d.costLabel.TextStyle = fyne.TextStyle{Italic: true}

	d.ttsModelSelect = widget.NewSelect([]string{
		config.OpenAITTSModelTTS1, config.OpenAITTSModelTTS1HD,
	}, func(string) {
		d.updateCost()
	})
	d.ttsModelSelect.SetSelected(getOrDefault(d.config.TTSModel, config.OpenAITTSModelTTS1HD))

	d.voiceSelector = widgets.NewVoiceSelector(d.config.TTSVoice, nil, func(voice string) {
		if d.OnPreviewVoice != nil {
			d.OnPreviewVoice(voice)
		}
	})

	d.speedLabel = widget.NewLabel("")
	d.speedSlider = widget.NewSlider(0.25, 4.0)
	d.speedSlider.Step = 0.05
	d.speedSlider.OnChanged = func(value float64) {
		d.speedLabel.SetText(fmt.Sprintf("Speed: %.2fx", value))
	}
	d.speedSlider.SetValue(d.config.TTSSpeed)
	d.speedLabel.SetText(fmt.Sprintf("Speed: %.2fx", d.config.TTSSpeed))

	d.ffmpegEntry = widget.NewEntry()
	d.ffmpegEntry.SetPlaceHolder("Auto-detect")
	d.ffmpegEntry.SetText(d.config.FFmpegPath)
	browseBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			d.ffmpegEntry.SetText(reader.URI().Path())
			reader.Close()
		}, d.window)
	})

	d.logLevelSelect = widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	d.logLevelSelect.SetSelected(getOrDefault(d.config.LogLevel, "info"))

	narrationForm := widget.NewForm(
		widget.NewFormItem("Vision Model", d.visionModelEntry),
		widget.NewFormItem("Max Tokens", d.maxTokensEntry),
		widget.NewFormItem("Narrator Style", d.styleEntry),
	)

	samplingForm := widget.NewForm(
		widget.NewFormItem("Interval (seconds)", d.intervalEntry),
		widget.NewFormItem("Max Frame Width", d.maxWidthEntry),
		widget.NewFormItem("Max Frames", d.maxFramesEntry),
	)

	voiceForm := widget.NewForm(
		widget.NewFormItem("Model", d.ttsModelSelect),
		widget.NewFormItem("Voice", d.voiceSelector),
		widget.NewFormItem("", container.NewVBox(d.speedLabel, d.speedSlider)),
	)

	advancedForm := widget.NewForm(
		widget.NewFormItem("API Base URL", d.baseURLEntry),
		widget.NewFormItem("FFmpeg", container.NewBorder(nil, nil, nil, browseBtn, d.ffmpegEntry)),
		widget.NewFormItem("Log Level", d.logLevelSelect),
	)

	d.updateCost()

	return container.NewVBox(
		widget.NewLabel("Narration"),
		narrationForm,
		widget.NewSeparator(),
		widget.NewLabel("Frame Sampling"),
		samplingForm,
		widget.NewSeparator(),
		widget.NewLabel("Voice"),
		voiceForm,
		d.costLabel,
		widget.NewSeparator(),
		widget.NewLabel("Advanced"),
		advancedForm,
	)
}

func (d *SettingsDialog) updateCost() {
	if d.costLabel == nil || d.ttsModelSelect == nil {
		return
	}
	d.costLabel.SetText(costEstimate(d.ttsModelSelect.Selected))
}

// costEstimate describes the speech cost of a typical narration.
func costEstimate(ttsModel string) string {
	tts := services.NewOpenAITTSService(nil, ttsModel, "", 1.0, nil)
	return fmt.Sprintf("Voice cost per %d characters: ~$%.3f", costSampleChars, tts.EstimateCost(costSampleChars))
}

func (d *SettingsDialog) values() settingsValues {
	return settingsValues{
		BaseURL:       d.baseURLEntry.Text,
		VisionModel:   d.visionModelEntry.Text,
		MaxTokens:     d.maxTokensEntry.Text,
		NarratorStyle: d.styleEntry.Text,
		FrameInterval: d.intervalEntry.Text,
		FrameMaxWidth: d.maxWidthEntry.Text,
		MaxFrames:     d.maxFramesEntry.Text,
		TTSModel:      d.ttsModelSelect.Selected,
		TTSVoice:      d.voiceSelector.GetSelected(),
		TTSSpeed:      d.speedSlider.Value,
		FFmpegPath:    d.ffmpegEntry.Text,
		LogLevel:      d.logLevelSelect.Selected,
	}
}

func (d *SettingsDialog) saveSettings() {
	if err := d.values().applyTo(d.config); err != nil {
		dialog.ShowError(err, d.window)
		return
	}

	if err := d.config.Save(); err != nil {
		logger.LogError("Failed to save settings: %v", err)
		dialog.ShowError(err, d.window)
	}

	if d.OnSave != nil {
		d.OnSave(d.config)
	}
}

// settingsValues is the raw form state of the dialog.
type settingsValues struct {
	BaseURL       string
	VisionModel   string
	MaxTokens     string
	NarratorStyle string
	FrameInterval string
	FrameMaxWidth string
	MaxFrames     string
	TTSModel      string
	TTSVoice      string
	TTSSpeed      float64
	FFmpegPath    string
	LogLevel      string
}

// applyTo parses and validates the values, updating cfg only when all of them are valid.
func (v settingsValues) applyTo(cfg *models.Config) error {
	updated := *cfg

	updated.OpenAIBaseURL = getOrDefault(strings.TrimSpace(v.BaseURL), config.OpenAIAPIEndpoint)
	updated.VisionModel = strings.TrimSpace(v.VisionModel)
	updated.NarratorStyle = strings.TrimSpace(v.NarratorStyle)
	updated.TTSModel = v.TTSModel
	updated.TTSVoice = v.TTSVoice
	updated.TTSSpeed = v.TTSSpeed
	updated.FFmpegPath = strings.TrimSpace(v.FFmpegPath)
	updated.LogLevel = getOrDefault(v.LogLevel, "info")

	numbers := []struct {
		name  string
		value string
		dest  *int
	}{
		{"max tokens", v.MaxTokens, &updated.MaxTokens},
		{"frame interval", v.FrameInterval, &updated.FrameInterval},
		{"frame max width", v.FrameMaxWidth, &updated.FrameMaxWidth},
		{"max frames", v.MaxFrames, &updated.MaxFrames},
	}
	for _, n := range numbers {
		parsed, err := strconv.Atoi(strings.TrimSpace(n.value))
		if err != nil {
			return fmt.Errorf("%s must be a whole number", n.name)
		}
		*n.dest = parsed
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	*cfg = updated
	return nil
}

func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
