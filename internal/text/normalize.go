// Package text prepares extracted document text for speech synthesis.
package text

import (
	"regexp"
	"strings"
)

var (
	hyphenBreakRegex = regexp.MustCompile(`(\w)-[ \t]*\n[ \t]*(\w)`)
	spaceRunRegex    = regexp.MustCompile(`[ \t]+`)
	blankRunRegex    = regexp.MustCompile(`\n{3,}`)
)

var punctReplacer = strings.NewReplacer(
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"—", " - ", // em dash
	"–", " - ", // en dash
)

// Normalize cleans extracted text for TTS readability: rejoins words
// hyphenated across line breaks, collapses whitespace runs, and straightens
// typographic quotes and dashes.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")

	// word- \nword -> wordword
	s = hyphenBreakRegex.ReplaceAllString(s, "$1$2")

	s = spaceRunRegex.ReplaceAllString(s, " ")
	s = blankRunRegex.ReplaceAllString(s, "\n\n")

	s = punctReplacer.Replace(s)

	return strings.TrimSpace(s)
}
