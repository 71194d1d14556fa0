// Package subtitle builds SRT captions for a narration.
package subtitle

import "time"

// Subtitle represents a single subtitle entry with timing and text.
type Subtitle struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// List is a slice of subtitles with utility methods.
type List []Subtitle

// TotalDuration returns the end time of the last subtitle.
func (l List) TotalDuration() time.Duration {
	if len(l) == 0 {
		return 0
	}
	return l[len(l)-1].EndTime
}
