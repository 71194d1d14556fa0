package text

import (
	"strings"
	"unicode/utf8"
)

// SplitSentences splits text after sentence-ending punctuation, dropping empty parts.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRegex.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Chunk groups sentences into pieces of at most maxChars characters.
// A sentence longer than maxChars is split on word boundaries, and a single
// word longer than maxChars is cut.
func Chunk(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}
	add := func(piece string) {
		pieceLen := utf8.RuneCountInString(piece)
		if currentLen > 0 && currentLen+1+pieceLen > maxChars {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(piece)
		currentLen += pieceLen
	}

	for _, sentence := range SplitSentences(text) {
		if utf8.RuneCountInString(sentence) <= maxChars {
			add(sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			for utf8.RuneCountInString(word) > maxChars {
				flush()
				runes := []rune(word)
				chunks = append(chunks, string(runes[:maxChars]))
				word = string(runes[maxChars:])
			}
			add(word)
		}
	}
	flush()

	return chunks
}
