package tts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/metcalfc/aloud/internal/text"
)

// ClipOutput is the audio device surface the paced speaker plays through.
// Satisfied by audio.Player.
type ClipOutput interface {
	Start(clip *Clip, fromSeconds float64, gen uint64) error
	Pause()
}

// PacedSpeaker implements Speaker on top of a Renderer and a clip output.
// Piper does not report word boundaries, so the speaker estimates them:
// the rendered clip's duration is divided evenly across the words of the
// utterance and a WordEvent is emitted on that cadence while the clip
// plays. The EndEvent comes from the clip output at the natural end of
// playback.
type PacedSpeaker struct {
	renderer Renderer
	out      ClipOutput
	sink     Sink
	logger   *slog.Logger

	mu     sync.Mutex
	cancel chan struct{}
}

// NewPacedSpeaker creates a speaker that renders with renderer and plays
// through out, delivering events to sink.
func NewPacedSpeaker(renderer Renderer, out ClipOutput, sink Sink, logger *slog.Logger) *PacedSpeaker {
	return &PacedSpeaker{
		renderer: renderer,
		out:      out,
		sink:     sink,
		logger:   logger,
	}
}

// Speak renders and plays text asynchronously, pacing word boundary events
// across the clip's duration.
func (s *PacedSpeaker) Speak(txt string, rate float64, voice string, gen uint64) error {
	s.mu.Lock()
	if s.cancel != nil {
		close(s.cancel)
	}
	cancel := make(chan struct{})
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(txt, rate, voice, gen, cancel)
	return nil
}

// Cancel halts the in-flight utterance. Synchronous with respect to the
// audio device; the pacing goroutine stops on its next step.
func (s *PacedSpeaker) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
	s.mu.Unlock()
	s.out.Pause()
}

func (s *PacedSpeaker) run(txt string, rate float64, voice string, gen uint64, cancel chan struct{}) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-cancel:
			stop()
		case <-done:
		}
	}()

	clip, err := s.renderer.Render(ctx, Request{Text: txt, Voice: voice, Rate: rate})
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("synthesis failed", "error", err, "text_length", len(txt))
			s.sink(ErrorEvent{Gen: gen, Err: err})
		}
		return
	}

	select {
	case <-cancel:
		return
	default:
	}

	if err := s.out.Start(clip, 0, gen); err != nil {
		s.logger.Error("clip playback failed", "error", err)
		s.sink(ErrorEvent{Gen: gen, Err: err})
		return
	}

	words := text.Words(txt)
	if len(words) == 0 {
		return
	}
	interval := clip.Duration() / time.Duration(len(words))

	for i := range words {
		if i > 0 {
			select {
			case <-cancel:
				return
			case <-time.After(interval):
			}
		}
		s.sink(WordEvent{Gen: gen, Word: i})
	}
}
