package providers

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderExists is returned when trying to register a duplicate provider.
	ErrProviderExists = errors.New("provider already exists")

	// ErrNoAvailableProvider is returned when no provider is available.
	ErrNoAvailableProvider = errors.New("no available provider")

	// ErrProviderUnavailable is returned when a provider lacks credentials.
	ErrProviderUnavailable = errors.New("provider not available")
)

// Registry manages generator registration, the default provider and task
// routing.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
	defaultGen string
	routes     map[string]string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
		routes:     make(map[string]string),
	}
}

// Register adds a generator.
func (r *Registry) Register(g Generator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := g.Name()
	if _, exists := r.generators[name]; exists {
		return ErrProviderExists
	}

	r.generators[name] = g

	// Set as default if first available provider
	if r.defaultGen == "" && g.Available() {
		r.defaultGen = name
	}

	return nil
}

// Get returns a generator by name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, exists := r.generators[name]
	if !exists {
		return nil, ErrProviderNotFound
	}

	return g, nil
}

// Default returns the default generator, or the first available one in
// name order when no default is set.
func (r *Registry) Default() (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultLocked()
}

func (r *Registry) defaultLocked() (Generator, error) {
	if r.defaultGen != "" {
		return r.generators[r.defaultGen], nil
	}
	for _, name := range r.namesLocked() {
		if g := r.generators[name]; g.Available() {
			return g, nil
		}
	}
	return nil, ErrNoAvailableProvider
}

// SetDefault sets the default generator by name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[name]; !exists {
		return ErrProviderNotFound
	}

	r.defaultGen = name
	return nil
}

// SetRoutes replaces the task type to provider routing table.
func (r *Registry) SetRoutes(routes map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = make(map[string]string, len(routes))
	for task, name := range routes {
		r.routes[strings.ToLower(task)] = name
	}
}

// ForTask resolves the generator for a task type. A route to a registered,
// available provider wins; otherwise the default is used.
func (r *Registry) ForTask(task string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.routes[strings.ToLower(task)]; ok {
		if g, exists := r.generators[name]; exists && g.Available() {
			return g, nil
		}
	}
	return r.defaultLocked()
}

// List returns all registered generators in name order.
func (r *Registry) List() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Generator, 0, len(r.generators))
	for _, name := range r.namesLocked() {
		out = append(out, r.generators[name])
	}
	return out
}

// Available returns all available generators in name order.
func (r *Registry) Available() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Generator
	for _, name := range r.namesLocked() {
		if g := r.generators[name]; g.Available() {
			out = append(out, g)
		}
	}
	return out
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
