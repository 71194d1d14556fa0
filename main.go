package main

import (
	"video-narrator/internal/logger"
	"video-narrator/models"
	"video-narrator/ui"
	apptheme "video-narrator/ui/theme"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

func main() {
	cfg, err := models.LoadConfig()
	if err != nil {
		logger.LogError("Failed to load config, using defaults: %v", err)
		cfg = models.DefaultConfig()
	}
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	defer logger.Sync()

	a := app.NewWithID("video-narrator")
	a.Settings().SetTheme(&apptheme.NarratorTheme{})

	w := a.NewWindow("Video Narrator")
	w.Resize(fyne.NewSize(900, 800))

	mainUI := ui.NewMainUI(w, cfg)
	w.SetContent(mainUI.Build())
	w.SetOnClosed(mainUI.Close)

	w.ShowAndRun()
}
