// Package playback owns the read-aloud state machine: current position,
// transport control, and position persistence.
package playback

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/metcalfc/aloud/internal/position"
	"github.com/metcalfc/aloud/internal/text"
	"github.com/metcalfc/aloud/internal/tts"
)

// State is the transport state of the engine.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Source starts and halts speech output for one chunk at a time. The two
// implementations (live incremental synthesis and pre-rendered clip
// playback) satisfy the same contract and are never mixed in a session.
type Source interface {
	// Begin starts output for text at pos. Progress events tagged with gen
	// are delivered to the engine owner's event loop.
	Begin(text string, pos position.Position, rate float64, voice string, gen uint64) error

	// Halt cancels in-flight output synchronously. Events from a halted
	// generation may still arrive; the engine discards them by token.
	Halt()
}

// Store is the persistence surface the engine writes through. Satisfied by
// *position.Store.
type Store interface {
	GetPosition(hash string, chunkCount int) position.Position
	SetPosition(hash string, pos position.Position) error
	GetSetting(key string) (string, bool)
	SetSetting(key, value string) error
}

// Settings keys in the position store.
const (
	settingRate  = "rate"
	settingVoice = "voice"
)

// Engine is the playback state machine. It is owned by a single event loop:
// all methods must be called from that loop. Events from the synthesis
// capability arrive on background goroutines and must be funneled into the
// owner loop before being handed to HandleEvent.
type Engine struct {
	chunks []string
	docID  string
	store  Store
	source Source
	logger *slog.Logger

	state  State
	pos    position.Position
	gen    uint64
	status string

	rate  float64
	voice string

	// word offset at the time the current utterance began; speaker word
	// indices are relative to the sliced text it was handed
	baseWord int
}

// New creates an engine over an ordered chunk sequence, restoring the
// persisted position and voice settings for docID. An empty chunk list
// leaves the engine permanently idle with every operation a no-op.
func New(chunks []string, docID string, store Store, source Source, logger *slog.Logger) *Engine {
	e := &Engine{
		chunks: chunks,
		docID:  docID,
		store:  store,
		source: source,
		logger: logger,
		state:  StateIdle,
		rate:   1.0,
		status: "Ready",
	}

	if len(chunks) == 0 {
		e.status = "No readable text"
		return e
	}

	e.pos = store.GetPosition(docID, len(chunks))
	if v, ok := store.GetSetting(settingRate); ok {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			e.rate = tts.ClampRate(r)
		}
	}
	if v, ok := store.GetSetting(settingVoice); ok {
		e.voice = v
	}

	logger.Debug("playback engine initialized",
		"doc_id", docID,
		"chunks", len(chunks),
		"resume_chunk", e.pos.Chunk,
		"resume_word", e.pos.Word,
		"resume_seconds", e.pos.Seconds,
	)
	return e
}

// Empty reports whether the document produced no chunks.
func (e *Engine) Empty() bool { return len(e.chunks) == 0 }

// State returns the current transport state.
func (e *Engine) State() State { return e.state }

// Position returns the current playback position.
func (e *Engine) Position() position.Position { return e.pos }

// Status returns the human-readable status line.
func (e *Engine) Status() string { return e.status }

// ChunkCount returns the number of chunks in the document.
func (e *Engine) ChunkCount() int { return len(e.chunks) }

// CurrentChunk returns the text of the chunk at the current position.
func (e *Engine) CurrentChunk() string {
	if e.Empty() {
		return ""
	}
	return e.chunks[e.pos.Chunk]
}

// Rate returns the speech rate multiplier.
func (e *Engine) Rate() float64 { return e.rate }

// Voice returns the configured voice identifier.
func (e *Engine) Voice() string { return e.voice }

// SetRate clamps and persists a new speech rate. It applies from the next
// utterance; the in-flight one finishes at the old rate.
func (e *Engine) SetRate(rate float64) {
	e.rate = tts.ClampRate(rate)
	if e.store != nil {
		e.store.SetSetting(settingRate, strconv.FormatFloat(e.rate, 'f', -1, 64))
	}
}

// SetVoice persists a new voice identifier, applied from the next utterance.
func (e *Engine) SetVoice(voice string) {
	e.voice = voice
	if e.store != nil {
		e.store.SetSetting(settingVoice, voice)
	}
}

// Play starts or resumes playback from the stored position. From Paused it
// resumes within the current chunk; from Idle or Stopped it starts the
// current chunk at its stored offset.
func (e *Engine) Play() error {
	if e.Empty() || e.state == StatePlaying {
		return nil
	}
	return e.begin()
}

// begin cancels any in-flight output and starts the current chunk at the
// current offset under a fresh generation.
func (e *Engine) begin() error {
	e.source.Halt()
	e.gen++

	// A stale word offset at or past the chunk's end restarts the chunk;
	// keeping it would rebase boundary events past the last word.
	chunkText := e.chunks[e.pos.Chunk]
	if e.pos.Word >= len(text.Words(chunkText)) {
		e.pos.Word = 0
	}
	e.baseWord = e.pos.Word

	if err := e.source.Begin(chunkText, e.pos, e.rate, e.voice, e.gen); err != nil {
		e.logger.Error("failed to start chunk", "chunk", e.pos.Chunk, "error", err)
		e.state = StatePaused
		e.status = fmt.Sprintf("Speech failed: %v", err)
		return err
	}

	e.state = StatePlaying
	e.status = "Playing"
	e.persist()
	return nil
}

// Pause halts output immediately and persists the current offset.
func (e *Engine) Pause() {
	if e.Empty() || e.state != StatePlaying {
		return
	}
	e.halt()
	e.state = StatePaused
	e.status = "Paused"
	e.persist()
}

// Stop halts output and resets the intra-chunk offset; the chunk index is
// retained.
func (e *Engine) Stop() {
	if e.Empty() || (e.state != StatePlaying && e.state != StatePaused) {
		return
	}
	e.halt()
	e.pos.Word = 0
	e.pos.Seconds = 0
	e.state = StateStopped
	e.status = "Stopped"
	e.persist()
}

// Next moves to the following chunk, clamped to the last one. Navigation
// never auto-resumes: the engine lands in Paused and an explicit Play is
// required.
func (e *Engine) Next() {
	e.navigate(e.pos.Chunk + 1)
}

// Prev moves to the preceding chunk, clamped to the first one.
func (e *Engine) Prev() {
	e.navigate(e.pos.Chunk - 1)
}

func (e *Engine) navigate(target int) {
	if e.Empty() {
		return
	}
	e.halt()
	if target < 0 {
		target = 0
	}
	if target > len(e.chunks)-1 {
		target = len(e.chunks) - 1
	}
	e.pos.Chunk = target
	e.pos.Word = 0
	e.pos.Seconds = 0
	e.state = StatePaused
	e.status = "Paused"
	e.persist()
}

// Reset returns to the start of the document.
func (e *Engine) Reset() {
	if e.Empty() {
		return
	}
	e.halt()
	e.pos = position.Position{}
	e.state = StateStopped
	e.status = "Ready"
	e.persist()
}

// halt cancels in-flight output and invalidates its generation so late
// callbacks are discarded.
func (e *Engine) halt() {
	e.source.Halt()
	e.gen++
}

// HandleEvent processes a synthesis or playback event. Events whose
// generation does not match the active one are from a canceled utterance
// and are dropped.
func (e *Engine) HandleEvent(ev tts.Event) {
	if e.Empty() {
		return
	}
	if ev.Generation() != e.gen {
		e.logger.Debug("discarding stale event", "event_gen", ev.Generation(), "active_gen", e.gen)
		return
	}

	switch ev := ev.(type) {
	case tts.WordEvent:
		if e.state != StatePlaying {
			return
		}
		e.pos.Word = e.baseWord + ev.Word
		// Word progress invalidates any seconds offset carried over from a
		// pre-rendered session; a stale one would point elsewhere in the
		// chunk.
		e.pos.Seconds = 0
		e.persist()

	case tts.TickEvent:
		if e.state != StatePlaying {
			return
		}
		e.pos.Seconds = ev.Seconds
		e.persist()

	case tts.EndEvent:
		if e.state != StatePlaying {
			return
		}
		e.chunkBoundary()

	case tts.ErrorEvent:
		e.logger.Error("synthesis failed mid-chunk", "chunk", e.pos.Chunk, "error", ev.Err)
		e.source.Halt()
		e.state = StatePaused
		e.status = fmt.Sprintf("Speech failed: %v", ev.Err)
		e.persist()
	}
}

// chunkBoundary advances past the natural end of the current chunk: start
// the next one, or finish the document if this was the last.
func (e *Engine) chunkBoundary() {
	if e.pos.Chunk+1 < len(e.chunks) {
		e.pos.Chunk++
		e.pos.Word = 0
		e.pos.Seconds = 0
		e.persist()
		e.begin()
		return
	}

	e.pos.Word = 0
	e.pos.Seconds = 0
	e.state = StateStopped
	e.status = "Finished"
	e.persist()
}

func (e *Engine) persist() {
	if e.store == nil {
		return
	}
	if err := e.store.SetPosition(e.docID, e.pos); err != nil {
		// Losing a position write degrades resume granularity, nothing
		// else; keep playing.
		e.logger.Warn("failed to persist position", "error", err)
	}
}
