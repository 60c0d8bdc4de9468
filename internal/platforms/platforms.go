// Package platforms tracks the publishing platforms workflows can post to.
package platforms

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Platform statuses.
const (
	StatusConnected  = "connected"
	StatusReady      = "ready"
	StatusIntegrated = "integrated"
)

// Platform types with special handling.
const (
	TypeCustom  = "custom"
	TypeWebhook = "webhook"
)

var (
	// ErrEmptyName is returned when a platform name is blank.
	ErrEmptyName = errors.New("platform name must not be empty")

	// ErrUnknownPlatform is returned when a platform is not registered.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Config is the caller-supplied part of a registration.
type Config struct {
	Type      string `json:"type,omitempty" toml:"type"`
	URL       string `json:"url,omitempty" toml:"url"`
	APIKeyRef string `json:"apiKeyRef,omitempty" toml:"api_key_ref"`
}

// Platform is a registered publishing target.
type Platform struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
	APIKeyRef string `json:"apiKeyRef,omitempty"`
}

// Registry holds platforms keyed by lower-cased name. Registering an
// existing name replaces it.
type Registry struct {
	mu        sync.RWMutex
	platforms map[string]Platform
	logger    *slog.Logger
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry returns a registry seeded with the built-in platforms.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		platforms: make(map[string]Platform),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, p := range builtins() {
		r.platforms[p.Name] = p
	}
	return r
}

func builtins() []Platform {
	return []Platform{
		{Name: "wordpress", Status: StatusConnected, Type: "blog"},
		{Name: "instagram", Status: StatusReady, Type: "social"},
		{Name: "youtube", Status: StatusReady, Type: "video"},
		{Name: "github", Status: StatusConnected, Type: "code"},
	}
}

// Add registers or replaces a platform and returns the stored entry.
func (r *Registry) Add(name string, cfg Config) (Platform, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Platform{}, ErrEmptyName
	}

	p := Platform{
		Name:      key,
		Status:    StatusIntegrated,
		Type:      strings.ToLower(strings.TrimSpace(cfg.Type)),
		URL:       strings.TrimSpace(cfg.URL),
		APIKeyRef: cfg.APIKeyRef,
	}
	if p.Type == "" {
		p.Type = TypeCustom
	}

	r.mu.Lock()
	_, replaced := r.platforms[key]
	r.platforms[key] = p
	r.mu.Unlock()

	r.logger.Info("platform registered", "name", key, "type", p.Type, "replaced", replaced)
	return p, nil
}

// Get returns the platform registered under name, ignoring case.
func (r *Registry) Get(name string) (Platform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.platforms[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// List returns all platforms sorted by name.
func (r *Registry) List() []Platform {
	r.mu.RLock()
	out := make([]Platform, 0, len(r.platforms))
	for _, p := range r.platforms {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered platforms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.platforms)
}

type catalogue struct {
	Platforms []struct {
		Name string `toml:"name"`
		Config
	} `toml:"platform"`
}

// LoadCatalogue registers every [[platform]] entry of a TOML file and
// returns the number registered.
func (r *Registry) LoadCatalogue(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read platform catalogue; %w", err)
	}

	var cat catalogue
	if err := toml.Unmarshal(data, &cat); err != nil {
		return 0, fmt.Errorf("failed to parse platform catalogue %s; %w", path, err)
	}

	for i, entry := range cat.Platforms {
		if _, err := r.Add(entry.Name, entry.Config); err != nil {
			return i, fmt.Errorf("catalogue entry %d; %w", i+1, err)
		}
	}
	return len(cat.Platforms), nil
}
