package playback

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

// ProgressLine projects (chunkIndex, chunkCount) into a human-readable
// progress string.
func ProgressLine(chunk, count int) string {
	if count == 0 {
		return "Ready"
	}
	pct := (chunk + 1) * 100 / count
	return fmt.Sprintf("Chunk %d of %d (%d%%)", chunk+1, count, pct)
}

// HighlightWord renders chunk text with the word at the given index passed
// through mark and everything else untouched. Whitespace is preserved so
// the text keeps its shape. Word counting matches text.Words: any
// whitespace-delimited run counts as one word.
func HighlightWord(chunkText string, word int, mark func(string) string) string {
	return highlight(chunkText, word, mark, func(s string) string { return s })
}

// HighlightHTML is the HTML projection of HighlightWord: all text is
// escaped and the current word is wrapped in <mark>.
func HighlightHTML(chunkText string, word int) string {
	return highlight(chunkText, word,
		func(s string) string { return "<mark>" + html.EscapeString(s) + "</mark>" },
		html.EscapeString,
	)
}

func highlight(chunkText string, word int, mark, plain func(string) string) string {
	var out strings.Builder
	runes := []rune(chunkText)

	idx := 0
	i := 0
	for i < len(runes) {
		j := i
		space := unicode.IsSpace(runes[i])
		for j < len(runes) && unicode.IsSpace(runes[j]) == space {
			j++
		}
		seg := string(runes[i:j])
		if space {
			out.WriteString(seg)
		} else {
			if idx == word {
				out.WriteString(mark(seg))
			} else {
				out.WriteString(plain(seg))
			}
			idx++
		}
		i = j
	}

	return out.String()
}
