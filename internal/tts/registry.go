package tts

import (
	"errors"
	"sync"
)

var (
	// ErrRendererNotFound is returned when a renderer is not registered.
	ErrRendererNotFound = errors.New("TTS renderer not found")
	// ErrRendererExists is returned when registering a duplicate renderer.
	ErrRendererExists = errors.New("TTS renderer already registered")
)

// Registry manages available TTS renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	def       string
}

// NewRegistry creates a new TTS renderer registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer to the registry.
func (r *Registry) Register(renderer Renderer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := renderer.Name()
	if _, exists := r.renderers[name]; exists {
		return ErrRendererExists
	}

	r.renderers[name] = renderer

	// Set as default if first renderer
	if r.def == "" {
		r.def = name
	}

	return nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, exists := r.renderers[name]
	if !exists {
		return nil, ErrRendererNotFound
	}

	return renderer, nil
}

// Default returns the default renderer.
func (r *Registry) Default() (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.def == "" {
		return nil, ErrRendererNotFound
	}

	return r.renderers[r.def], nil
}

// SetDefault sets the default renderer by name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; !exists {
		return ErrRendererNotFound
	}

	r.def = name
	return nil
}

// List returns all registered renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	return names
}
