package subtitle

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// FromSentences spreads sentences over total, giving each a share proportional to its length.
// Empty sentences are skipped; the last entry ends exactly at total.
func FromSentences(sentences []string, total time.Duration) List {
	var kept []string
	chars := 0
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		kept = append(kept, s)
		chars += utf8.RuneCountInString(s)
	}
	if len(kept) == 0 || total <= 0 {
		return nil
	}

	subs := make(List, len(kept))
	start := time.Duration(0)
	seen := 0
	for i, s := range kept {
		seen += utf8.RuneCountInString(s)
		end := time.Duration(int64(total) * int64(seen) / int64(chars))
		if i == len(kept)-1 {
			end = total
		}
		subs[i] = Subtitle{
			Index:     i + 1,
			StartTime: start.Truncate(time.Millisecond),
			EndTime:   end.Truncate(time.Millisecond),
			Text:      s,
		}
		start = end
	}
	return subs
}

// FormatSRT formats a list of subtitles to SRT format.
func FormatSRT(subs List) string {
	var builder strings.Builder
	for i, sub := range subs {
		builder.WriteString(strconv.Itoa(sub.Index))
		builder.WriteString("\n")

		builder.WriteString(FormatTimestamp(sub.StartTime))
		builder.WriteString(" --> ")
		builder.WriteString(FormatTimestamp(sub.EndTime))
		builder.WriteString("\n")

		builder.WriteString(sub.Text)
		builder.WriteString("\n")

		// Blank line between entries
		if i < len(subs)-1 {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}
