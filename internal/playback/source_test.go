package playback

import (
	"testing"

	"github.com/metcalfc/aloud/internal/position"
	"github.com/metcalfc/aloud/internal/render"
	"github.com/metcalfc/aloud/internal/tts"
)

type recordingSpeaker struct {
	texts   []string
	cancels int
}

func (s *recordingSpeaker) Speak(text string, rate float64, voice string, gen uint64) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSpeaker) Cancel() { s.cancels++ }

func TestLiveSourceSpeaksFullChunkFromStart(t *testing.T) {
	sp := &recordingSpeaker{}
	src := NewLiveSource(sp)

	if err := src.Begin("alpha beta gamma", position.Position{}, 1.0, "", 1); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if got := sp.texts[0]; got != "alpha beta gamma" {
		t.Errorf("spoke %q, want full chunk", got)
	}
}

func TestLiveSourceSlicesFromWordOffset(t *testing.T) {
	sp := &recordingSpeaker{}
	src := NewLiveSource(sp)

	if err := src.Begin("alpha beta gamma delta", position.Position{Word: 2}, 1.0, "", 1); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if got := sp.texts[0]; got != "gamma delta" {
		t.Errorf("spoke %q, want \"gamma delta\"", got)
	}
}

func TestLiveSourceOffsetPastEndSpeaksWholeChunk(t *testing.T) {
	sp := &recordingSpeaker{}
	src := NewLiveSource(sp)

	if err := src.Begin("alpha beta", position.Position{Word: 10}, 1.0, "", 1); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if got := sp.texts[0]; got != "alpha beta" {
		t.Errorf("spoke %q, want whole chunk", got)
	}
}

func TestLiveSourceHaltCancels(t *testing.T) {
	sp := &recordingSpeaker{}
	src := NewLiveSource(sp)

	src.Halt()
	if sp.cancels != 1 {
		t.Errorf("cancels = %d, want 1", sp.cancels)
	}
}

type recordingPlayer struct {
	clips  []*tts.Clip
	froms  []float64
	pauses int
}

func (p *recordingPlayer) Start(clip *tts.Clip, fromSeconds float64, gen uint64) error {
	p.clips = append(p.clips, clip)
	p.froms = append(p.froms, fromSeconds)
	return nil
}

func (p *recordingPlayer) Pause() { p.pauses++ }

func TestClipSourcePlaysCachedClipAtOffset(t *testing.T) {
	cache := render.NewCache([]*tts.Clip{{Data: []byte("riff")}})
	pl := &recordingPlayer{}
	src := NewClipSource(cache, pl)

	if err := src.Begin("ignored", position.Position{Chunk: 0, Seconds: 3.5}, 1.0, "", 1); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if len(pl.clips) != 1 || pl.froms[0] != 3.5 {
		t.Errorf("Start calls = %d froms = %v", len(pl.clips), pl.froms)
	}
}

func TestClipSourceMissingClip(t *testing.T) {
	src := NewClipSource(render.NewCache(nil), &recordingPlayer{})

	if err := src.Begin("text", position.Position{Chunk: 2}, 1.0, "", 1); err == nil {
		t.Error("expected error for missing clip")
	}
}

func TestClipSourceHaltPauses(t *testing.T) {
	pl := &recordingPlayer{}
	src := NewClipSource(render.NewCache(nil), pl)

	src.Halt()
	if pl.pauses != 1 {
		t.Errorf("pauses = %d, want 1", pl.pauses)
	}
}
