// Package position persists playback positions and voice settings across
// sessions.
package position

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	stateFileName = "positions.json"
	hashBytes     = 8192 // First 8KB for content hash
)

// Position is a playback position within a document. Word is the offset used
// by incremental synthesis; Seconds is the offset used by pre-rendered clip
// playback. Exactly one of them is meaningful for a given playback mode, but
// both are stored so switching modes degrades to a chunk-level resume.
type Position struct {
	Chunk   int     `json:"chunk"`
	Word    int     `json:"word"`
	Seconds float64 `json:"seconds"`
}

type stateFile struct {
	Positions map[string]Position `json:"positions"`
	Settings  map[string]string   `json:"settings"`
}

// Store manages persistent playback state. Writes are last-write-wins; the
// whole file is rewritten on every save.
type Store struct {
	path string
	data stateFile
	mu   sync.RWMutex
}

// NewStore creates or loads state from XDG_STATE_HOME/aloud/.
func NewStore() (*Store, error) {
	dir := stateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &Store{
		path: filepath.Join(dir, stateFileName),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = stateFile{}
	}
	if store.data.Positions == nil {
		store.data.Positions = make(map[string]Position)
	}
	if store.data.Settings == nil {
		store.data.Settings = make(map[string]string)
	}
	return store, nil
}

// stateDir returns XDG_STATE_HOME/aloud or ~/.local/state/aloud
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "aloud")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "aloud")
}

// ComputeHash generates a content hash for document identity.
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

// GetPosition returns the saved position for a document, clamped to the
// current chunk count. Stale or malformed data (a chunk index from a run
// that produced more chunks, negative offsets) is clamped, never rejected.
func (s *Store) GetPosition(hash string, chunkCount int) Position {
	s.mu.RLock()
	pos := s.data.Positions[hash]
	s.mu.RUnlock()
	return Clamp(pos, chunkCount)
}

// SetPosition saves the position for a document.
func (s *Store) SetPosition(hash string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Positions[hash] = pos
	return s.save()
}

// Clear removes the saved position for a document.
func (s *Store) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Positions, hash)
	return s.save()
}

// GetSetting returns a persisted setting value.
func (s *Store) GetSetting(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data.Settings[key]
	return v, ok
}

// SetSetting persists a setting value.
func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Settings[key] = value
	return s.save()
}

// Clamp forces a position into the valid range for a document with
// chunkCount chunks.
func Clamp(pos Position, chunkCount int) Position {
	if pos.Chunk >= chunkCount {
		pos.Chunk = chunkCount - 1
	}
	if pos.Chunk < 0 {
		pos.Chunk = 0
	}
	if pos.Word < 0 {
		pos.Word = 0
	}
	if pos.Seconds < 0 {
		pos.Seconds = 0
	}
	return pos
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
