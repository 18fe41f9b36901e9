package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/metcalfc/aloud/internal/audio"
	"github.com/metcalfc/aloud/internal/config"
	"github.com/metcalfc/aloud/internal/extract"
	"github.com/metcalfc/aloud/internal/playback"
	"github.com/metcalfc/aloud/internal/position"
	"github.com/metcalfc/aloud/internal/render"
	"github.com/metcalfc/aloud/internal/text"
	"github.com/metcalfc/aloud/internal/tts"
)

// sinkRelay forwards synthesis events to a target installed after the
// audio pipeline is built. The front end sets the target once its event
// loop exists; events arriving before that are dropped.
type sinkRelay struct {
	mu sync.Mutex
	fn tts.Sink
}

func (r *sinkRelay) Set(fn tts.Sink) {
	r.mu.Lock()
	r.fn = fn
	r.mu.Unlock()
}

func (r *sinkRelay) Send(e tts.Event) {
	r.mu.Lock()
	fn := r.fn
	r.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

// app wires the document pipeline and playback engine shared by both
// front ends.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	chunks []string
	engine *playback.Engine
	relay  *sinkRelay

	speaker *tts.PacedSpeaker // live mode only
	player  *audio.Player
}

// newApp builds the full pipeline for a document: extract, normalize,
// chunk, restore position, and construct the configured playback source.
func newApp(ctx context.Context, filename string, cfg *config.Config, logger *slog.Logger) (*app, error) {
	raw, err := extract.Text(filename)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", filename, err)
	}

	chunks := text.Chunk(text.Normalize(raw), cfg.MinChunkLen)
	logger.Info("document loaded", "file", filename, "chunks", len(chunks))

	docID, err := position.ComputeHash(filename)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", filename, err)
	}

	store, err := position.NewStore()
	if err != nil {
		return nil, fmt.Errorf("opening position store: %w", err)
	}

	renderer := buildRenderer(cfg, logger)

	a := &app{
		cfg:    cfg,
		logger: logger,
		chunks: chunks,
		relay:  &sinkRelay{},
	}

	playerSink := tts.Sink(a.relay.Send)
	if cfg.Mode != config.ModeClip {
		playerSink = tts.WithoutTicks(playerSink)
	}
	a.player = audio.NewPlayer(playerSink, logger)

	var source playback.Source
	switch cfg.Mode {
	case config.ModeClip:
		cache, err := render.Prerender(ctx, renderer, chunks, cfg.DefaultVoice, cfg.Rate, logger)
		if err != nil {
			return nil, fmt.Errorf("pre-rendering audio: %w", err)
		}
		source = playback.NewClipSource(cache, a.player)
	default:
		a.speaker = tts.NewPacedSpeaker(renderer, a.player, a.relay.Send, logger)
		source = playback.NewLiveSource(a.speaker)
	}

	a.engine = playback.New(chunks, docID, store, source, logger)
	if cfg.Rate != 1.0 {
		a.engine.SetRate(cfg.Rate)
	}
	if cfg.DefaultVoice != "" {
		a.engine.SetVoice(cfg.DefaultVoice)
	}
	return a, nil
}

// buildRenderer prefers Piper when a model is configured and the binary is
// on PATH; otherwise it falls back to silent audio so transport and resume
// still work without a synthesizer installed.
func buildRenderer(cfg *config.Config, logger *slog.Logger) tts.Renderer {
	registry := tts.NewRegistry()
	registry.Register(tts.NewSilenceRenderer())

	piper, err := tts.NewPiperRenderer(tts.PiperConfig{
		BinaryPath:   cfg.PiperPath,
		ModelPath:    cfg.PiperModel,
		DefaultVoice: cfg.DefaultVoice,
	}, logger)
	if err != nil {
		logger.Warn("piper unavailable, playing silence", "error", err)
	} else {
		registry.Register(piper)
		registry.SetDefault(piper.Name())
	}

	renderer, _ := registry.Default()
	return renderer
}

// shutdown halts any in-flight audio.
func (a *app) shutdown() {
	if a.speaker != nil {
		a.speaker.Cancel()
	}
	a.player.Pause()
}
