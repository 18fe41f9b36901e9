package text

import (
	"regexp"
	"strings"
)

// DefaultMinChunkLen is the minimum chunk length in bytes before short
// paragraphs are merged with their successors.
const DefaultMinChunkLen = 50

var paragraphSplitRegex = regexp.MustCompile(`\n[ \t]*\n`)

// Chunk splits normalized text into paragraph-sized chunks for TTS.
// Paragraphs shorter than minLen are merged forward into the next one so no
// chunk is awkwardly short; trailing text is never dropped. All returned
// chunks are non-empty.
func Chunk(text string, minLen int) []string {
	raw := paragraphSplitRegex.Split(text, -1)

	var chunks []string
	var buffer string

	for _, piece := range raw {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		if len(buffer)+len(piece) < minLen {
			buffer = strings.TrimSpace(buffer + " " + piece)
		} else {
			if buffer != "" {
				chunks = append(chunks, buffer)
			}
			buffer = piece
		}
	}

	if buffer != "" {
		chunks = append(chunks, buffer)
	}

	return chunks
}

// Words splits a chunk into its spoken words. This is the single word
// segmentation used everywhere: the display highlight, the resume slice
// handed to the synthesizer, and the word-boundary indices all derive from
// it, so the indices cannot drift apart.
func Words(chunk string) []string {
	return strings.Fields(chunk)
}
