package playback

import (
	"fmt"
	"strings"

	"github.com/metcalfc/aloud/internal/position"
	"github.com/metcalfc/aloud/internal/render"
	"github.com/metcalfc/aloud/internal/text"
	"github.com/metcalfc/aloud/internal/tts"
)

// LiveSource drives incremental synthesis: the offset is a word index. On
// resume it slices the chunk's words from the offset onward before handing
// text to the speaker; re-synthesizing the whole chunk would waste work and
// desync the highlighted word.
type LiveSource struct {
	speaker tts.Speaker
}

// NewLiveSource creates a live synthesis source.
func NewLiveSource(speaker tts.Speaker) *LiveSource {
	return &LiveSource{speaker: speaker}
}

// Begin speaks the remainder of text starting at pos.Word.
func (s *LiveSource) Begin(chunkText string, pos position.Position, rate float64, voice string, gen uint64) error {
	words := text.Words(chunkText)

	toSpeak := chunkText
	if pos.Word > 0 && pos.Word < len(words) {
		toSpeak = strings.Join(words[pos.Word:], " ")
	}

	return s.speaker.Speak(toSpeak, rate, voice, gen)
}

// Halt cancels the in-flight utterance.
func (s *LiveSource) Halt() {
	s.speaker.Cancel()
}

// ClipSource drives pre-rendered playback: the offset is a time in seconds
// and audio comes from the session's render cache. Rate was applied when
// the clips were rendered, so it is ignored here.
type ClipSource struct {
	cache  *render.Cache
	player tts.ClipOutput
}

// NewClipSource creates a pre-rendered playback source.
func NewClipSource(cache *render.Cache, player tts.ClipOutput) *ClipSource {
	return &ClipSource{cache: cache, player: player}
}

// Begin plays the cached clip for pos.Chunk, seeking to pos.Seconds. The
// player starts from 0 when the offset lies beyond the clip's duration.
func (s *ClipSource) Begin(chunkText string, pos position.Position, rate float64, voice string, gen uint64) error {
	clip, ok := s.cache.Clip(pos.Chunk)
	if !ok {
		return fmt.Errorf("no rendered audio for chunk %d", pos.Chunk)
	}
	return s.player.Start(clip, pos.Seconds, gen)
}

// Halt pauses the player.
func (s *ClipSource) Halt() {
	s.player.Pause()
}
