package widgets

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"video-narrator/models"
	"video-narrator/services"
	appTheme "video-narrator/ui/theme"
)

// Stage is one step shown by StageProgress.
type Stage struct {
	ID    string
	Label string
}

// Stage IDs
const (
	StageIDSample  = "sample"
	StageIDNarrate = "narrate"
	StageIDVoice   = "voice"
	stageIDDone    = "done"
)

// DefaultStages returns the narration pipeline stages
func DefaultStages() []Stage {
	return []Stage{
		{ID: StageIDSample, Label: "Sample frames"},
		{ID: StageIDNarrate, Label: "Narrate"},
		{ID: StageIDVoice, Label: "Voice"},
	}
}

// stageForPipeline maps pipeline stage names to stage IDs.
var stageForPipeline = map[string]string{
	services.StageSampling:     StageIDSample,
	services.StageNarrating:    StageIDNarrate,
	services.StageSynthesizing: StageIDVoice,
}

// stageForStatus maps job statuses to stage IDs.
func stageForStatus(status models.JobStatus) string {
	switch status {
	case models.StatusSampling:
		return StageIDSample
	case models.StatusNarrating:
		return StageIDNarrate
	case models.StatusNarrated, models.StatusSynthesizing:
		return StageIDVoice
	case models.StatusCompleted:
		return stageIDDone
	default:
		return ""
	}
}

// StageProgress shows which pipeline stage is running and the overall percentage.
type StageProgress struct {
	widget.BaseWidget

	Stages       []Stage
	CurrentStage string
	Progress     int // 0-100 overall
	Message      string
	Status       models.JobStatus
}

// NewStageProgress creates a new stage progress widget
func NewStageProgress() *StageProgress {
	p := &StageProgress{
		Stages: DefaultStages(),
		Status: models.StatusPending,
	}
	p.ExtendBaseWidget(p)
	return p
}

// SetStage updates the stage from a pipeline progress report.
func (p *StageProgress) SetStage(stage string, progress int, message string) {
	if id, ok := stageForPipeline[stage]; ok {
		p.CurrentStage = id
	}
	p.Progress = progress
	p.Message = message
	p.Refresh()
}

// SetStatus updates the widget from a job status.
// A failed job keeps its current stage so the failing step stays marked.
func (p *StageProgress) SetStatus(status models.JobStatus) {
	p.Status = status
	if status != models.StatusFailed {
		p.CurrentStage = stageForStatus(status)
	}
	if status == models.StatusCompleted {
		p.Progress = 100
	}
	p.Refresh()
}

// Reset returns the widget to its idle state.
func (p *StageProgress) Reset() {
	p.CurrentStage = ""
	p.Progress = 0
	p.Message = ""
	p.Status = models.StatusPending
	p.Refresh()
}

// currentIndex returns the index of the running stage, len(Stages) once done, -1 when idle.
func (p *StageProgress) currentIndex() int {
	if p.CurrentStage == stageIDDone || p.Status == models.StatusCompleted {
		return len(p.Stages)
	}
	for i, stage := range p.Stages {
		if stage.ID == p.CurrentStage {
			return i
		}
	}
	return -1
}

// CreateRenderer implements fyne.Widget
func (p *StageProgress) CreateRenderer() fyne.WidgetRenderer {
	stageDots := make([]*canvas.Circle, len(p.Stages))
	stageLabels := make([]*canvas.Text, len(p.Stages))
	connectors := make([]*canvas.Rectangle, 0, len(p.Stages))

	for i := range p.Stages {
		stageDots[i] = canvas.NewCircle(color.Transparent)
		stageLabels[i] = canvas.NewText(p.Stages[i].Label, color.White)
		stageLabels[i].TextSize = 11
		stageLabels[i].Alignment = fyne.TextAlignCenter

		if i > 0 {
			connectors = append(connectors, canvas.NewRectangle(color.Transparent))
		}
	}

	progressBg := canvas.NewRectangle(appTheme.ColorOverlay)
	progressBg.CornerRadius = 3
	progressFill := canvas.NewRectangle(color.Transparent)
	progressFill.CornerRadius = 3

	progressLabel := canvas.NewText("0%", color.White)
	progressLabel.TextSize = 12
	messageLabel := canvas.NewText("", color.White)
	messageLabel.TextSize = 12

	r := &stageProgressRenderer{
		stageDots:     stageDots,
		stageLabels:   stageLabels,
		connectors:    connectors,
		progressBg:    progressBg,
		progressFill:  progressFill,
		progressLabel: progressLabel,
		messageLabel:  messageLabel,
		widget:        p,
	}
	r.Refresh()
	return r
}

type stageProgressRenderer struct {
	stageDots     []*canvas.Circle
	stageLabels   []*canvas.Text
	connectors    []*canvas.Rectangle
	progressBg    *canvas.Rectangle
	progressFill  *canvas.Rectangle
	progressLabel *canvas.Text
	messageLabel  *canvas.Text
	widget        *StageProgress
}

const (
	stagePadding    = float32(12)
	stageDotSize    = float32(10)
	stageBarHeight  = float32(4)
	stageLabelGuess = float32(14)
)

func (r *stageProgressRenderer) Destroy() {}

func (r *stageProgressRenderer) Layout(size fyne.Size) {
	numStages := len(r.widget.Stages)
	if numStages == 0 {
		return
	}

	spacing := (size.Width - stagePadding*2) / float32(numStages)
	y := stagePadding
	centerOf := func(i int) float32 {
		return stagePadding + float32(i)*spacing + spacing/2
	}

	for i := range r.widget.Stages {
		centerX := centerOf(i)

		if i > 0 {
			prevX := centerOf(i - 1)
			connWidth := centerX - prevX - stageDotSize
			if connWidth > 0 {
				r.connectors[i-1].Resize(fyne.NewSize(connWidth, 2))
				r.connectors[i-1].Move(fyne.NewPos(prevX+stageDotSize/2, y+(stageDotSize-2)/2))
			}
		}

		r.stageDots[i].Resize(fyne.NewSize(stageDotSize, stageDotSize))
		r.stageDots[i].Move(fyne.NewPos(centerX-stageDotSize/2, y))

		labelSize := r.stageLabels[i].MinSize()
		labelX := centerX - labelSize.Width/2
		if labelX < stagePadding {
			labelX = stagePadding
		}
		if labelX+labelSize.Width > size.Width-stagePadding {
			labelX = size.Width - stagePadding - labelSize.Width
		}
		r.stageLabels[i].Move(fyne.NewPos(labelX, y+stageDotSize+6))
	}

	barY := y + stageDotSize + 6 + r.stageLabels[0].MinSize().Height + 10
	barWidth := size.Width - stagePadding*2

	r.progressBg.Resize(fyne.NewSize(barWidth, stageBarHeight))
	r.progressBg.Move(fyne.NewPos(stagePadding, barY))

	fill := barWidth * float32(clampPercent(r.widget.Progress)) / 100
	r.progressFill.Resize(fyne.NewSize(fill, stageBarHeight))
	r.progressFill.Move(fyne.NewPos(stagePadding, barY))

	textY := barY + stageBarHeight + 6
	r.messageLabel.Move(fyne.NewPos(stagePadding, textY))
	r.progressLabel.Move(fyne.NewPos(size.Width-stagePadding-r.progressLabel.MinSize().Width, textY))
}

func (r *stageProgressRenderer) MinSize() fyne.Size {
	height := stagePadding + stageDotSize + 6 + stageLabelGuess + 10 + stageBarHeight + 6 + stageLabelGuess + stagePadding
	return fyne.NewSize(320, height)
}

func (r *stageProgressRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(r.connectors)+len(r.stageDots)*2+4)
	for _, conn := range r.connectors {
		objs = append(objs, conn)
	}
	for i := range r.widget.Stages {
		objs = append(objs, r.stageDots[i], r.stageLabels[i])
	}
	return append(objs, r.progressBg, r.progressFill, r.messageLabel, r.progressLabel)
}

func (r *stageProgressRenderer) Refresh() {
	th := fyne.CurrentApp().Settings().Theme()
	variant := fyne.CurrentApp().Settings().ThemeVariant()

	failed := r.widget.Status == models.StatusFailed
	currentIdx := r.widget.currentIndex()

	for i := range r.widget.Stages {
		var dotColor, labelColor color.Color
		switch {
		case i < currentIdx:
			dotColor = th.Color(appTheme.ColorNameStageCompleted, variant)
			labelColor = th.Color(theme.ColorNameForeground, variant)
		case i == currentIdx && failed:
			dotColor = th.Color(appTheme.ColorNameStageFailed, variant)
			labelColor = th.Color(theme.ColorNameError, variant)
		case i == currentIdx:
			dotColor = th.Color(appTheme.ColorNameStageProcessing, variant)
			labelColor = th.Color(theme.ColorNamePrimary, variant)
		default:
			dotColor = th.Color(appTheme.ColorNameStagePending, variant)
			labelColor = th.Color(appTheme.ColorNameTextSecondary, variant)
		}

		r.stageDots[i].FillColor = dotColor
		r.stageDots[i].Refresh()
		r.stageLabels[i].Color = labelColor
		r.stageLabels[i].Refresh()

		if i > 0 {
			if i <= currentIdx {
				r.connectors[i-1].FillColor = th.Color(appTheme.ColorNameStageCompleted, variant)
			} else {
				r.connectors[i-1].FillColor = th.Color(appTheme.ColorNameStagePending, variant)
			}
			r.connectors[i-1].Refresh()
		}
	}

	switch {
	case failed:
		r.progressFill.FillColor = th.Color(appTheme.ColorNameStageFailed, variant)
	case r.widget.Status == models.StatusCompleted:
		r.progressFill.FillColor = th.Color(appTheme.ColorNameStageCompleted, variant)
	case currentIdx >= 0:
		r.progressFill.FillColor = th.Color(theme.ColorNamePrimary, variant)
	default:
		r.progressFill.FillColor = color.Transparent
	}
	r.progressFill.Refresh()

	r.messageLabel.Text = r.widget.Message
	r.messageLabel.Color = th.Color(appTheme.ColorNameTextSecondary, variant)
	r.messageLabel.Refresh()

	r.progressLabel.Text = formatProgress(r.widget.Progress)
	r.progressLabel.Color = th.Color(theme.ColorNameForeground, variant)
	r.progressLabel.Refresh()
}

func clampPercent(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

func formatProgress(progress int) string {
	return fmt.Sprintf("%d%%", clampPercent(progress))
}
