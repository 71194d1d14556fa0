package services

import (
	"fmt"

	"video-narrator/internal/config"
)

// BuildPrompt returns the instruction sent ahead of the frames.
// Each frame should take about half the sampling interval to voice.
func BuildPrompt(intervalSeconds int, style string) string {
	if style == "" {
		style = config.DefaultNarratorStyle
	}
	return fmt.Sprintf(
		"The uploaded series of images is from a single video. "+
			"The frames were sampled every %d seconds. "+
			"Make sure it takes about %d seconds to voice the description of each frame. "+
			"Use exclamation points and capital letters to express excitement if necessary. "+
			"Describe the video using %s style.",
		intervalSeconds, intervalSeconds/2, style,
	)
}
