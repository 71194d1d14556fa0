package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"video-narrator/internal/logger"
)

const ffmpegMissingHint = "FFmpeg is required to sample frames. Install it or set its path in Settings."

// dependencyRow reports a missing ffmpeg/ffprobe above the upload button.
type dependencyRow struct {
	container *fyne.Container
	detail    *widget.Label
}

func newDependencyRow(onRecheck func()) *dependencyRow {
	icon := canvas.NewImageFromResource(theme.ErrorIcon())
	icon.FillMode = canvas.ImageFillContain
	icon.SetMinSize(fyne.NewSize(20, 20))

	name := widget.NewLabel("FFmpeg")
	name.TextStyle = fyne.TextStyle{Bold: true}

	detail := widget.NewLabel("")
	detail.Wrapping = fyne.TextWrapWord

	hint := widget.NewLabel(ffmpegMissingHint)
	hint.Wrapping = fyne.TextWrapWord

	recheck := widget.NewButtonWithIcon("Check Again", theme.ViewRefreshIcon(), onRecheck)

	row := &dependencyRow{
		container: container.NewVBox(
			container.NewBorder(nil, nil, container.NewHBox(icon, name), container.NewHBox(recheck), detail),
			hint,
		),
		detail: detail,
	}
	row.container.Hide()
	return row
}

// checkDependencies runs the ffmpeg check off the UI thread.
func (ui *MainUI) checkDependencies() {
	if ui.checkFFmpeg == nil {
		return
	}
	check, ff := ui.checkFFmpeg, ui.ffmpeg
	go func() {
		err := check(ff)
		if err != nil {
			logger.LogError("Dependency check failed: %v", err)
		}
		fyne.Do(func() {
			ui.applyDependencyResult(err)
		})
	}()
}

// applyDependencyResult shows the missing-ffmpeg row and blocks uploads until it is fixed.
func (ui *MainUI) applyDependencyResult(err error) {
	ui.ffmpegErr = err
	if err != nil {
		ui.deps.detail.SetText(err.Error())
		ui.deps.container.Show()
		ui.chooseBtn.Disable()
		return
	}
	ui.deps.detail.SetText("")
	ui.deps.container.Hide()
	if ui.cancel == nil {
		ui.chooseBtn.Enable()
	}
}

// enableChoose re-enables uploads unless ffmpeg is known to be missing.
func (ui *MainUI) enableChoose() {
	if ui.ffmpegErr == nil {
		ui.chooseBtn.Enable()
	}
}
