// Package render produces the session-only audio cache for pre-rendered
// playback mode.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/metcalfc/aloud/internal/tts"
)

// Cache holds one rendered clip per chunk for the current session. It is
// never written to disk; a new session re-renders. Each clip keeps the id
// of the render job that produced it so log lines and errors can be traced
// back to a chunk.
type Cache struct {
	clips []*tts.Clip
	jobs  []string
}

// NewCache wraps an already-rendered clip sequence, assigning fresh job
// ids.
func NewCache(clips []*tts.Clip) *Cache {
	jobs := make([]string, len(clips))
	for i := range jobs {
		jobs[i] = uuid.New().String()
	}
	return &Cache{clips: clips, jobs: jobs}
}

// Clip returns the rendered audio for a chunk index.
func (c *Cache) Clip(i int) (*tts.Clip, bool) {
	if i < 0 || i >= len(c.clips) {
		return nil, false
	}
	return c.clips[i], true
}

// JobID returns the render job id behind a chunk's clip.
func (c *Cache) JobID(i int) (string, bool) {
	if i < 0 || i >= len(c.jobs) {
		return "", false
	}
	return c.jobs[i], true
}

// Len returns the number of cached clips.
func (c *Cache) Len() int {
	return len(c.clips)
}

// TotalDuration returns the combined duration of all cached clips.
func (c *Cache) TotalDuration() time.Duration {
	var total time.Duration
	for _, clip := range c.clips {
		total += clip.Duration()
	}
	return total
}

type job struct {
	id    string
	index int
	text  string
}

// Prerender renders every chunk up front, in order. A render failure or
// context cancellation aborts the whole run: a partial cache would leave
// chunks unplayable mid-document.
func Prerender(ctx context.Context, renderer tts.Renderer, chunks []string, voice string, rate float64, logger *slog.Logger) (*Cache, error) {
	logger.Info("pre-rendering document audio", "chunks", len(chunks), "engine", renderer.Name())

	clips := make([]*tts.Clip, len(chunks))
	jobs := make([]string, len(chunks))
	for i, chunkText := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		j := job{id: uuid.New().String(), index: i, text: chunkText}
		jobs[j.index] = j.id
		start := time.Now()

		clip, err := renderer.Render(ctx, tts.Request{Text: j.text, Voice: voice, Rate: rate})
		if err != nil {
			return nil, fmt.Errorf("render job %s (chunk %d): %w", j.id, j.index, err)
		}
		clips[j.index] = clip

		logger.Debug("chunk rendered",
			"job_id", j.id,
			"chunk", j.index,
			"clip_seconds", clip.Seconds(),
			"elapsed", time.Since(start),
		)
	}

	cache := &Cache{clips: clips, jobs: jobs}
	logger.Info("pre-render complete",
		"chunks", cache.Len(),
		"total_audio", cache.TotalDuration().Round(time.Second),
	)
	return cache, nil
}
