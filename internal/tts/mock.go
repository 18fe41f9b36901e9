package tts

import (
	"context"

	"github.com/metcalfc/aloud/internal/text"
	"github.com/metcalfc/aloud/internal/wav"
)

// SilenceRenderer renders silent clips sized by word count. It stands in
// for a real engine when piper is unavailable (development, tests, CI).
type SilenceRenderer struct {
	// SecondsPerWord controls the duration of rendered silence.
	SecondsPerWord float64
}

// NewSilenceRenderer creates a silence renderer speaking at roughly 150
// words per minute at rate 1.0.
func NewSilenceRenderer() *SilenceRenderer {
	return &SilenceRenderer{SecondsPerWord: 0.4}
}

func (s *SilenceRenderer) Name() string { return "silence" }

// Render produces a silent WAV clip whose duration matches the estimated
// speaking time of the text at the requested rate.
func (s *SilenceRenderer) Render(ctx context.Context, req Request) (*Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rate := req.Rate
	if rate <= 0 {
		rate = 1.0
	}
	words := len(text.Words(req.Text))
	if words == 0 {
		words = 1
	}

	secs := float64(words) * s.SecondsPerWord / ClampRate(rate)
	samples := int(secs * float64(wav.PiperSampleRate))
	if samples < 1 {
		samples = 1
	}

	return &Clip{
		Data:       wav.CreateMinimal(samples, wav.PiperSampleRate, wav.PiperChannels, wav.PiperBitsPerSample),
		SampleRate: wav.PiperSampleRate,
		Channels:   wav.PiperChannels,
	}, nil
}
