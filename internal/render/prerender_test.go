package render

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/metcalfc/aloud/internal/tts"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPrerender(t *testing.T) {
	chunks := []string{"first chunk here", "second chunk text", "third"}
	renderer := &tts.SilenceRenderer{SecondsPerWord: 0.01}

	cache, err := Prerender(context.Background(), renderer, chunks, "", 1.0, testLogger())
	if err != nil {
		t.Fatalf("Prerender failed: %v", err)
	}

	if cache.Len() != len(chunks) {
		t.Fatalf("cache len = %d, want %d", cache.Len(), len(chunks))
	}
	for i := range chunks {
		clip, ok := cache.Clip(i)
		if !ok || clip == nil {
			t.Errorf("missing clip for chunk %d", i)
		}
		if id, ok := cache.JobID(i); !ok || id == "" {
			t.Errorf("missing job id for chunk %d", i)
		}
	}
	if cache.TotalDuration() <= 0 {
		t.Error("expected positive total duration")
	}
}

func TestPrerenderEmpty(t *testing.T) {
	cache, err := Prerender(context.Background(), tts.NewSilenceRenderer(), nil, "", 1.0, testLogger())
	if err != nil {
		t.Fatalf("Prerender failed: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("cache len = %d, want 0", cache.Len())
	}
}

func TestCacheClipOutOfRange(t *testing.T) {
	cache := &Cache{}
	if _, ok := cache.Clip(0); ok {
		t.Error("expected no clip at index 0")
	}
	if _, ok := cache.Clip(-1); ok {
		t.Error("expected no clip at index -1")
	}
	if _, ok := cache.JobID(0); ok {
		t.Error("expected no job id at index 0")
	}
}

type failingRenderer struct{ failAt int }

func (f *failingRenderer) Name() string { return "failing" }

func (f *failingRenderer) Render(ctx context.Context, req tts.Request) (*tts.Clip, error) {
	if f.failAt == 0 {
		return nil, errors.New("synth exploded")
	}
	f.failAt--
	return tts.NewSilenceRenderer().Render(ctx, req)
}

func TestPrerenderAbortsOnFailure(t *testing.T) {
	chunks := []string{"one", "two", "three"}

	_, err := Prerender(context.Background(), &failingRenderer{failAt: 1}, chunks, "", 1.0, testLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "render job ") {
		t.Errorf("error does not name the failed job: %v", err)
	}
}

func TestPrerenderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Prerender(ctx, tts.NewSilenceRenderer(), []string{"a chunk"}, "", 1.0, testLogger())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
