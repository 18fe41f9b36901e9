package tts

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClampRate(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.1, 0.5},
		{0.5, 0.5},
		{1.0, 1.0},
		{2.0, 2.0},
		{3.5, 2.0},
	}
	for _, tt := range tests {
		if got := ClampRate(tt.in); got != tt.want {
			t.Errorf("ClampRate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	r := NewSilenceRenderer()
	if err := reg.Register(r); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Duplicate registration rejected
	if err := reg.Register(r); !errors.Is(err, ErrRendererExists) {
		t.Errorf("expected ErrRendererExists, got %v", err)
	}

	// First registered becomes default
	def, err := reg.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if def.Name() != "silence" {
		t.Errorf("default = %q, want silence", def.Name())
	}

	if _, err := reg.Get("nonexistent"); !errors.Is(err, ErrRendererNotFound) {
		t.Errorf("expected ErrRendererNotFound, got %v", err)
	}

	if err := reg.SetDefault("nonexistent"); !errors.Is(err, ErrRendererNotFound) {
		t.Errorf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestNewPiperRenderer_NoModel(t *testing.T) {
	_, err := NewPiperRenderer(PiperConfig{
		BinaryPath: "echo", // stand-in binary that exists everywhere
		ModelPath:  "",
	}, testLogger())

	if !errors.Is(err, ErrNoModelSpecified) {
		t.Errorf("expected ErrNoModelSpecified, got %v", err)
	}
}

func TestNewPiperRenderer_BinaryNotFound(t *testing.T) {
	_, err := NewPiperRenderer(PiperConfig{
		BinaryPath: "/nonexistent/path/to/piper",
		ModelPath:  "/fake/model.onnx",
	}, testLogger())

	if !errors.Is(err, ErrPiperNotFound) {
		t.Errorf("expected ErrPiperNotFound, got %v", err)
	}
}

func TestPiperRenderer_EmptyText(t *testing.T) {
	r := &PiperRenderer{
		config: PiperConfig{BinaryPath: "echo", ModelPath: "/fake/model.onnx"},
		logger: testLogger(),
	}

	if _, err := r.Render(context.Background(), Request{Text: ""}); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestSilenceRendererDuration(t *testing.T) {
	r := &SilenceRenderer{SecondsPerWord: 0.5}

	clip, err := r.Render(context.Background(), Request{Text: "one two three four", Rate: 1.0})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// 4 words at 0.5 s/word = 2 s.
	if got := clip.Seconds(); got < 1.9 || got > 2.1 {
		t.Errorf("duration = %v s, want ~2 s", got)
	}

	// Doubling the rate halves the duration.
	fast, err := r.Render(context.Background(), Request{Text: "one two three four", Rate: 2.0})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := fast.Seconds(); got < 0.9 || got > 1.1 {
		t.Errorf("duration at 2x = %v s, want ~1 s", got)
	}
}

func TestWithoutTicks(t *testing.T) {
	var got []Event
	sink := WithoutTicks(func(e Event) { got = append(got, e) })

	sink(WordEvent{Gen: 1, Word: 0})
	sink(TickEvent{Gen: 1, Seconds: 0.25})
	sink(TickEvent{Gen: 1, Seconds: 0.5})
	sink(EndEvent{Gen: 1})

	if len(got) != 2 {
		t.Fatalf("delivered %d events, want 2: %v", len(got), got)
	}
	if _, ok := got[0].(WordEvent); !ok {
		t.Errorf("first event = %T, want WordEvent", got[0])
	}
	if _, ok := got[1].(EndEvent); !ok {
		t.Errorf("second event = %T, want EndEvent", got[1])
	}
}

// fakeOutput records clip starts and never plays anything.
type fakeOutput struct {
	mu      sync.Mutex
	started []uint64
	paused  int
}

func (f *fakeOutput) Start(clip *Clip, fromSeconds float64, gen uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, gen)
	return nil
}

func (f *fakeOutput) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused++
}

func TestPacedSpeakerEmitsWordsInOrder(t *testing.T) {
	out := &fakeOutput{}

	var mu sync.Mutex
	var words []int
	done := make(chan struct{})

	sink := func(e Event) {
		if w, ok := e.(WordEvent); ok {
			mu.Lock()
			words = append(words, w.Word)
			if len(words) == 3 {
				close(done)
			}
			mu.Unlock()
		}
	}

	// Tiny per-word duration keeps the test fast.
	s := NewPacedSpeaker(&SilenceRenderer{SecondsPerWord: 0.01}, out, sink, testLogger())

	if err := s.Speak("alpha beta gamma", 1.0, "", 7); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for word events")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, w := range words[:3] {
		if w != i {
			t.Errorf("word event %d = %d, want %d", i, w, i)
		}
	}
}

func TestPacedSpeakerCancelStopsOutput(t *testing.T) {
	out := &fakeOutput{}
	s := NewPacedSpeaker(&SilenceRenderer{SecondsPerWord: 1}, out, func(Event) {}, testLogger())

	s.Speak("a long utterance with several words", 1.0, "", 1)
	s.Cancel()

	out.mu.Lock()
	paused := out.paused
	out.mu.Unlock()
	if paused == 0 {
		t.Error("Cancel did not pause the output")
	}
}
