// Package text provides sentence splitting and chunking for narrations.
package text

import "regexp"

// sentenceEndRegex matches the end of a sentence and the spaces after it.
var sentenceEndRegex = regexp.MustCompile(`[.!?…]+["')\]]*\s+`)
