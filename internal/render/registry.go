package render

import (
	"fmt"
	"slices"
	"sync"
)

// Factory creates renderer instances
type Factory func(opts Options) (Renderer, error)

// Registry maps renderer names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var (
	registryInstance *Registry
	registryOnce     sync.Once
)

// GetRegistry returns the singleton registry with the built-in renderers
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		registryInstance = NewRegistry()
		registryInstance.Register("csv", func(Options) (Renderer, error) { return &CSVRenderer{}, nil })
		registryInstance.Register("pdf", func(opts Options) (Renderer, error) { return NewPDFRenderer(opts), nil })
		registryInstance.Register("sqlite", func(Options) (Renderer, error) { return &SQLiteRenderer{}, nil })
	})
	return registryInstance
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register registers a renderer factory, replacing any previous one
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get builds the named renderer
func (r *Registry) Get(name string, opts Options) (Renderer, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
	return factory(opts)
}

// Names lists registered renderers in ascending order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register adds a factory to the default registry
func Register(name string, factory Factory) {
	GetRegistry().Register(name, factory)
}

// Get builds a renderer from the default registry
func Get(name string, opts Options) (Renderer, error) {
	return GetRegistry().Get(name, opts)
}

// Names lists the default registry's renderers
func Names() []string {
	return GetRegistry().Names()
}
