// Package vbrain persists the brand knowledge base as a single JSON document.
package vbrain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/leefowlercu/phoenix/internal/fsutil"
	"github.com/leefowlercu/phoenix/internal/scanner"
)

// AgentStatusReady is the status recorded for every integrated agent.
const AgentStatusReady = "ready"

// ErrEmptyName is returned when an agent name is blank.
var ErrEmptyName = errors.New("agent name must not be empty")

// Agent is an external agent registration.
type Agent struct {
	URL          string    `json:"url"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// KnowledgeBase is the persisted document. learnedPatterns and workflows are
// reserved and always serialized as arrays.
type KnowledgeBase struct {
	ContextMap        map[string]scanner.Record `json:"contextMap"`
	AgentIntegrations map[string]Agent          `json:"agentIntegrations"`
	InspirationURLs   []string                  `json:"inspirationUrls"`
	LastSyncTime      *time.Time                `json:"lastSyncTime"`
	LearnedPatterns   []json.RawMessage         `json:"learnedPatterns"`
	Workflows         []json.RawMessage         `json:"workflows"`
	BrandManifest     json.RawMessage           `json:"brandManifest,omitempty"`
	LastManifestAt    *time.Time                `json:"lastManifestAt,omitempty"`
}

// NewKnowledgeBase returns an empty knowledge base.
func NewKnowledgeBase() KnowledgeBase {
	return KnowledgeBase{
		ContextMap:        map[string]scanner.Record{},
		AgentIntegrations: map[string]Agent{},
		InspirationURLs:   []string{},
		LearnedPatterns:   []json.RawMessage{},
		Workflows:         []json.RawMessage{},
	}
}

// normalize replaces nil collections with empty ones.
func (kb *KnowledgeBase) normalize() {
	if kb.ContextMap == nil {
		kb.ContextMap = map[string]scanner.Record{}
	}
	if kb.AgentIntegrations == nil {
		kb.AgentIntegrations = map[string]Agent{}
	}
	if kb.InspirationURLs == nil {
		kb.InspirationURLs = []string{}
	}
	if kb.LearnedPatterns == nil {
		kb.LearnedPatterns = []json.RawMessage{}
	}
	if kb.Workflows == nil {
		kb.Workflows = []json.RawMessage{}
	}
}

func (kb KnowledgeBase) clone() KnowledgeBase {
	out := kb
	out.ContextMap = maps.Clone(kb.ContextMap)
	out.AgentIntegrations = maps.Clone(kb.AgentIntegrations)
	out.InspirationURLs = slices.Clone(kb.InspirationURLs)
	out.LearnedPatterns = slices.Clone(kb.LearnedPatterns)
	out.Workflows = slices.Clone(kb.Workflows)
	out.BrandManifest = slices.Clone(kb.BrandManifest)
	out.normalize()
	return out
}

// Store owns the knowledge base and its file.
type Store struct {
	mu     sync.Mutex
	path   string
	kb     KnowledgeBase
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store backed by path. Call Load before use.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		kb:     NewKnowledgeBase(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file leaves an empty knowledge base.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.kb = NewKnowledgeBase()
		s.logger.Debug("knowledge base not found; starting empty", "path", s.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read knowledge base; %w", err)
	}

	kb := NewKnowledgeBase()
	if err := json.Unmarshal(data, &kb); err != nil {
		return fmt.Errorf("failed to parse knowledge base %s; %w", s.path, err)
	}
	kb.normalize()
	s.kb = kb

	s.logger.Debug("knowledge base loaded",
		"path", s.path,
		"roots", len(kb.ContextMap),
		"agents", len(kb.AgentIntegrations),
		"inspirations", len(kb.InspirationURLs))
	return nil
}

// Save rewrites the whole document.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.kb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge base; %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save knowledge base; %w", err)
	}
	return nil
}

// Snapshot returns a copy of the knowledge base.
func (s *Store) Snapshot() KnowledgeBase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kb.clone()
}

// SetContext replaces the entry for each given root, stamps the sync time,
// and saves. Entries for other roots are kept.
func (s *Store) SetContext(records map[string]scanner.Record) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for root, rec := range records {
		s.kb.ContextMap[root] = rec
	}
	at := s.now().UTC()
	s.kb.LastSyncTime = &at

	return at, s.saveLocked()
}

// AddInspirationURL appends url unless it is already present. It reports
// whether the list changed.
func (s *Store) AddInspirationURL(url string) (bool, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.kb.InspirationURLs, url) {
		return false, nil
	}
	s.kb.InspirationURLs = append(s.kb.InspirationURLs, url)
	return true, s.saveLocked()
}

// InspirationURLs returns the registered URLs in insertion order.
func (s *Store) InspirationURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.kb.InspirationURLs)
}

// IntegrateAgent registers or overwrites an agent and saves.
func (s *Store) IntegrateAgent(name, url string) (Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Agent{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	agent := Agent{
		URL:          url,
		Status:       AgentStatusReady,
		RegisteredAt: s.now().UTC(),
	}
	s.kb.AgentIntegrations[name] = agent
	return agent, s.saveLocked()
}

// Agents returns the agent names in sorted order.
func (s *Store) Agents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.kb.AgentIntegrations))
}

// SetManifest stores the last successful manifest and saves.
func (s *Store) SetManifest(manifest any) error {
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest; %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now().UTC()
	s.kb.BrandManifest = data
	s.kb.LastManifestAt = &at
	return s.saveLocked()
}

// Manifest decodes the stored manifest into v. It reports false when no
// manifest has been stored.
func (s *Store) Manifest(v any) (bool, error) {
	s.mu.Lock()
	raw := slices.Clone(s.kb.BrandManifest)
	s.mu.Unlock()

	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode stored manifest; %w", err)
	}
	return true, nil
}
