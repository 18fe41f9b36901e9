package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/metcalfc/aloud/internal/wav"
)

var (
	// ErrPiperNotFound is returned when the piper binary is not found.
	ErrPiperNotFound = errors.New("piper binary not found")
	// ErrNoModelSpecified is returned when no model is configured.
	ErrNoModelSpecified = errors.New("no piper model specified")
	// ErrSynthesisFailed is returned when TTS synthesis fails.
	ErrSynthesisFailed = errors.New("TTS synthesis failed")
)

// PiperConfig holds configuration for the Piper TTS renderer.
type PiperConfig struct {
	// BinaryPath is the path to the piper executable.
	BinaryPath string
	// ModelPath is the path to the ONNX model file.
	ModelPath string
	// DefaultVoice is the default voice/speaker to use.
	DefaultVoice string
}

// PiperRenderer implements Renderer using local Piper TTS.
type PiperRenderer struct {
	config PiperConfig
	logger *slog.Logger
}

// NewPiperRenderer creates a new Piper TTS renderer.
func NewPiperRenderer(cfg PiperConfig, logger *slog.Logger) (*PiperRenderer, error) {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "piper"
	}

	// Verify piper binary exists
	if _, err := exec.LookPath(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPiperNotFound, cfg.BinaryPath)
	}

	if cfg.ModelPath == "" {
		return nil, ErrNoModelSpecified
	}

	return &PiperRenderer{
		config: cfg,
		logger: logger,
	}, nil
}

// Name returns the renderer identifier.
func (p *PiperRenderer) Name() string {
	return "piper"
}

// Render converts text to audio using Piper.
func (p *PiperRenderer) Render(ctx context.Context, req Request) (*Clip, error) {
	if req.Text == "" {
		return nil, errors.New("empty text")
	}

	args := []string{
		"--model", p.config.ModelPath,
		"--output-raw",
	}

	// Piper's length scale is the inverse of the speech rate.
	if req.Rate > 0 && req.Rate != 1.0 {
		args = append(args, "--length-scale", fmt.Sprintf("%.3f", 1.0/ClampRate(req.Rate)))
	}

	voice := req.Voice
	if voice == "" || voice == "default" {
		voice = p.config.DefaultVoice
	}
	if voice != "" && voice != "default" {
		args = append(args, "--speaker", voice)
	}

	p.logger.Debug("running piper",
		"binary", p.config.BinaryPath,
		"model", p.config.ModelPath,
		"voice", voice,
		"rate", req.Rate,
		"text_length", len(req.Text),
	)

	cmd := exec.CommandContext(ctx, p.config.BinaryPath, args...)
	cmd.Stdin = bytes.NewReader([]byte(req.Text))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Error("piper failed",
			"error", err,
			"stderr", stderr.String(),
		)
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	rawAudio := stdout.Bytes()
	if len(rawAudio) == 0 {
		return nil, fmt.Errorf("%w: no audio output", ErrSynthesisFailed)
	}

	p.logger.Debug("piper synthesis complete", "output_bytes", len(rawAudio))

	// Piper outputs raw 16-bit PCM at 22050 Hz mono by default.
	return &Clip{
		Data:       wav.WrapRawPCM(rawAudio, wav.PiperSampleRate, wav.PiperChannels, wav.PiperBitsPerSample),
		SampleRate: wav.PiperSampleRate,
		Channels:   wav.PiperChannels,
	}, nil
}
