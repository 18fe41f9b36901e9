// Package tts defines the synthesis capability consumed by the playback
// engine, and a Piper-backed implementation of it.
package tts

import (
	"context"
	"time"

	"github.com/metcalfc/aloud/internal/wav"
)

// Rate limits for speech speed multipliers.
const (
	MinRate = 0.5
	MaxRate = 2.0
)

// ClampRate forces a speech rate into the supported range.
func ClampRate(rate float64) float64 {
	if rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}

// Request contains parameters for TTS synthesis.
type Request struct {
	Text  string
	Voice string
	// Rate is the speech speed multiplier (1.0 = normal).
	Rate float64
}

// Clip is a rendered audio chunk (WAV format).
type Clip struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Duration returns the playing time of the clip, or 0 if the WAV payload
// does not parse.
func (c *Clip) Duration() time.Duration {
	d, err := wav.Duration(c.Data)
	if err != nil {
		return 0
	}
	return d
}

// Seconds returns the clip duration in seconds.
func (c *Clip) Seconds() float64 {
	return c.Duration().Seconds()
}

// Renderer converts text to a playable audio clip. This is the pre-rendered
// shape of the synthesis capability: called once per chunk up front.
type Renderer interface {
	Render(ctx context.Context, req Request) (*Clip, error)
	Name() string
}

// Speaker is the incremental shape of the synthesis capability: it speaks
// text asynchronously and reports word boundaries as they are spoken. Word
// indices are 0-based positions into the words of the text passed to Speak;
// the caller is responsible for slicing resumed text and re-basing indices.
type Speaker interface {
	// Speak begins speaking text. Events tagged with gen are delivered to
	// the sink the Speaker was constructed with: a WordEvent per spoken
	// word in order, then one EndEvent, or an ErrorEvent on failure.
	Speak(text string, rate float64, voice string, gen uint64) error

	// Cancel halts any in-flight utterance. Events for the canceled
	// generation may still be in flight; consumers discard them by
	// generation token.
	Cancel()
}

// Event is a progress notification from the synthesis capability or the
// clip player, tagged with the generation of the play request that caused
// it so stale events can be discarded after cancellation races.
type Event interface {
	Generation() uint64
}

// WordEvent fires once per spoken word, in order.
type WordEvent struct {
	Gen  uint64
	Word int
}

// EndEvent fires at the natural end of an utterance or clip.
type EndEvent struct {
	Gen uint64
}

// TickEvent reports elapsed playback time within a clip.
type TickEvent struct {
	Gen     uint64
	Seconds float64
}

// ErrorEvent reports a synthesis or playback failure.
type ErrorEvent struct {
	Gen uint64
	Err error
}

func (e WordEvent) Generation() uint64  { return e.Gen }
func (e EndEvent) Generation() uint64   { return e.Gen }
func (e TickEvent) Generation() uint64  { return e.Gen }
func (e ErrorEvent) Generation() uint64 { return e.Gen }

// Sink receives synthesis events. Implementations must be safe to call from
// background goroutines; the playback engine's owner is expected to funnel
// events back onto its single dispatch loop.
type Sink func(Event)

// WithoutTicks drops TickEvents before they reach sink. Incremental
// playback tracks progress by word boundaries; the clip player's time
// ticks are relative to the sliced utterance and would fight with them.
func WithoutTicks(sink Sink) Sink {
	return func(e Event) {
		if _, ok := e.(TickEvent); ok {
			return
		}
		sink(e)
	}
}
