// Package orchestrator composes the brand pipeline: discovery roots, the
// knowledge base, synthesis, platforms and the workflow lifecycle. Every
// daemon surface (HTTP, MCP) calls into a single Orchestrator.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/leefowlercu/phoenix/internal/broadcast"
	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/fsutil"
	"github.com/leefowlercu/phoenix/internal/intel"
	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/platforms"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/scanner"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/vbrain"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

var (
	// ErrEmptyFocus is returned when a focus update carries no text.
	ErrEmptyFocus = errors.New("focus text required")

	// ErrEmptyPath is returned when a discovery root is blank.
	ErrEmptyPath = errors.New("path is required")

	// ErrPathNotFound is returned when a discovery root does not exist.
	ErrPathNotFound = errors.New("path does not exist")

	// ErrInvalidURL is returned for inspiration URLs that are not http(s).
	ErrInvalidURL = errors.New("inspiration url must be an absolute http or https url")

	// ErrInvalidFileName is returned for uploads whose name cannot be stored
	// in the bucket.
	ErrInvalidFileName = errors.New("invalid upload file name")

	// ErrNotDirectory is returned when a discovery root is a file.
	ErrNotDirectory = errors.New("path is not a directory")

	// ErrContentMismatch is returned for uploads whose bytes do not match the
	// media type their extension claims.
	ErrContentMismatch = errors.New("upload content does not match file extension")

	// ErrEmptyTask is returned when content generation has no task.
	ErrEmptyTask = errors.New("task is required")

	// ErrContentUnavailable is returned when no content engine is wired.
	ErrContentUnavailable = errors.New("content generation not available")
)

// ContentGenerator drafts content in the brand's voice.
type ContentGenerator interface {
	Generate(ctx context.Context, task, taskType string) (*providers.Response, error)
}

// Components are the collaborators the orchestrator composes. Store, Scanner,
// Fetcher, Synthesis, Platforms, Table, Processor and Executor are required.
type Components struct {
	Store      *vbrain.Store
	Scanner    *scanner.Scanner
	Fetcher    *intel.Fetcher
	Synthesis  *synthesis.Engine
	Content    ContentGenerator
	Platforms  *platforms.Registry
	Table      *workflow.Table
	Processor  *workflow.BucketProcessor
	Executor   *workflow.Executor
	Discussion *broadcast.Discussion
	Bus        events.Bus
}

// Orchestrator owns the discovery roots and the global focus, and
// serializes every mutating operation behind one mutex.
type Orchestrator struct {
	c Components

	// mu serializes mutating operations.
	mu sync.Mutex

	// stateMu guards roots and focus so reads never wait on a long sync.
	stateMu sync.RWMutex
	roots   []string
	focus   string

	home    string
	baseCtx context.Context
	logger  *slog.Logger
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithFocus sets the initial global focus.
func WithFocus(focus string) Option {
	return func(o *Orchestrator) {
		if f := strings.TrimSpace(focus); f != "" {
			o.focus = f
		}
	}
}

// WithHomeDir sets the directory searched by DiscoverSystemRoots.
func WithHomeDir(home string) Option {
	return func(o *Orchestrator) {
		o.home = home
	}
}

// WithBaseContext sets the context background discussions derive from.
func WithBaseContext(ctx context.Context) Option {
	return func(o *Orchestrator) {
		o.baseCtx = ctx
	}
}

// DefaultFocus is the focus used until one is set.
const DefaultFocus = "General Brand Sovereignty"

// New creates an Orchestrator whose primary discovery root is primaryRoot.
func New(primaryRoot string, c Components, opts ...Option) (*Orchestrator, error) {
	if c.Store == nil || c.Scanner == nil || c.Fetcher == nil || c.Synthesis == nil ||
		c.Platforms == nil || c.Table == nil || c.Processor == nil || c.Executor == nil {
		return nil, errors.New("orchestrator requires store, scanner, fetcher, synthesis, platforms and workflow components")
	}

	root, err := cmdutil.ResolvePath(primaryRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve primary root; %w", err)
	}
	if root == "" {
		return nil, ErrEmptyPath
	}

	o := &Orchestrator{
		c:       c,
		roots:   []string{root},
		focus:   DefaultFocus,
		baseCtx: context.Background(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			o.home = home
		}
	}

	return o, nil
}

// Status is the query view of the orchestrator state.
type Status struct {
	Roots          []string                `json:"roots"`
	Agents         map[string]vbrain.Agent `json:"agents"`
	Platforms      []platforms.Platform    `json:"platforms"`
	BucketPath     string                  `json:"bucket_path"`
	GlobalFocus    string                  `json:"global_focus"`
	Inspirations   []string                `json:"inspirations"`
	LastSyncTime   *time.Time              `json:"last_sync_time,omitempty"`
	LastManifestAt *time.Time              `json:"last_manifest_at,omitempty"`
	Brand          *BrandSummary           `json:"brand,omitempty"`
	Workflows      map[string]int          `json:"workflows"`
}

// BrandSummary is the identity part of the last stored manifest.
type BrandSummary struct {
	Name        string `json:"name"`
	Mission     string `json:"mission,omitempty"`
	Tone        string `json:"tone,omitempty"`
	ActiveFocus string `json:"active_focus,omitempty"`
}

// Status returns a snapshot of roots, agents, platforms, bucket, focus and
// the last synthesis.
func (o *Orchestrator) Status() Status {
	kb := o.c.Store.Snapshot()

	st := Status{
		Roots:          o.Roots(),
		Agents:         kb.AgentIntegrations,
		Platforms:      o.c.Platforms.List(),
		BucketPath:     o.c.Processor.BucketDir(),
		GlobalFocus:    o.Focus(),
		Inspirations:   kb.InspirationURLs,
		LastSyncTime:   kb.LastSyncTime,
		LastManifestAt: kb.LastManifestAt,
		Workflows:      o.c.Table.CountByStatus(),
	}

	if m, ok := o.storedManifest(); ok {
		st.Brand = &BrandSummary{
			Name:        m.BrandIdentity.Name,
			Mission:     m.BrandIdentity.Mission,
			Tone:        m.BrandIdentity.Tone,
			ActiveFocus: m.ActiveFocus,
		}
	}

	return st
}

// Roots returns the discovery roots, primary first.
func (o *Orchestrator) Roots() []string {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return slices.Clone(o.roots)
}

// Focus returns the current global focus.
func (o *Orchestrator) Focus() string {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.focus
}

// BucketDir returns the bucket directory.
func (o *Orchestrator) BucketDir() string {
	return o.c.Processor.BucketDir()
}

// SetFocus replaces the global focus.
func (o *Orchestrator) SetFocus(ctx context.Context, text string) (string, error) {
	focus := strings.TrimSpace(text)
	if focus == "" {
		return "", ErrEmptyFocus
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.stateMu.Lock()
	previous := o.focus
	o.focus = focus
	o.stateMu.Unlock()

	o.logger.Info("global focus set", "focus", focus)
	o.publish(ctx, events.NewFocusUpdated(previous, focus))
	return focus, nil
}

// AddDiscoveryPath registers path as a discovery root. Adding a root that is
// already tracked leaves the list unchanged. It returns the roots.
func (o *Orchestrator) AddDiscoveryPath(ctx context.Context, path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	resolved, err := cmdutil.ResolvePath(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path; %w", err)
	}
	if !fsutil.Exists(resolved) {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if !fsutil.IsDir(resolved) {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.stateMu.Lock()
	added := !slices.Contains(o.roots, resolved)
	if added {
		o.roots = append(o.roots, resolved)
	}
	roots := slices.Clone(o.roots)
	o.stateMu.Unlock()

	if added {
		o.logger.Info("discovery path added", "path", resolved)
		o.publish(ctx, events.NewDiscoveryRootAdded(resolved, false))
	}
	return roots, nil
}

// AddInspirationURL registers an inspiration URL. Duplicates are ignored.
// It returns the registered URLs.
func (o *Orchestrator) AddInspirationURL(ctx context.Context, rawURL string) ([]string, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	added, err := o.c.Store.AddInspirationURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to add inspiration url; %w", err)
	}
	if added {
		o.logger.Info("inspiration url added", "url", rawURL)
	}
	return o.c.Store.InspirationURLs(), nil
}

// AddPlatform registers or overwrites a custom platform.
func (o *Orchestrator) AddPlatform(ctx context.Context, name string, cfg platforms.Config) (platforms.Platform, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, err := o.c.Platforms.Add(name, cfg)
	if err != nil {
		return platforms.Platform{}, err
	}
	o.publish(ctx, events.NewPlatformAdded(p.Name, p.Type, p.Status))
	return p, nil
}

// IntegrateAgent registers or overwrites an external agent and persists it
// immediately.
func (o *Orchestrator) IntegrateAgent(ctx context.Context, name, agentURL string) (vbrain.Agent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	agent, err := o.c.Store.IntegrateAgent(name, agentURL)
	if err != nil {
		return vbrain.Agent{}, err
	}
	o.logger.Info("agent integrated", "name", name, "url", agentURL)
	o.publish(ctx, events.NewAgentIntegrated(name, agentURL))
	return agent, nil
}

// IntegrateAgents registers every agent in the map, in name order.
func (o *Orchestrator) IntegrateAgents(ctx context.Context, agents map[string]string) error {
	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if _, err := o.IntegrateAgent(ctx, name, agents[name]); err != nil {
			return fmt.Errorf("failed to integrate agent %s; %w", name, err)
		}
	}
	return nil
}

// Upload stores r in the bucket under name. An existing file with the same
// name is replaced.
func (o *Orchestrator) Upload(name string, r io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read upload; %w", err)
	}
	head = head[:n]
	mimeType, err := checkUploadContent(base, head)
	if err != nil {
		return "", err
	}
	r = io.MultiReader(bytes.NewReader(head), r)

	o.mu.Lock()
	defer o.mu.Unlock()

	dir := o.c.Processor.BucketDir()
	dest := filepath.Join(dir, base)
	replaced := fsutil.Exists(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create bucket directory; %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create upload file; %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write upload; %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close upload; %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to set upload permissions; %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to store upload; %w", err)
	}

	o.logger.Info("asset uploaded", "name", base, "mime", mimeType, "replaced", replaced)
	return base, nil
}

// checkUploadContent sniffs the first bytes of an upload. Image and video
// extensions must not carry content of another media class, such as an HTML
// error page saved as a .png.
func checkUploadContent(name string, head []byte) (string, error) {
	detected := fsutil.DetectMIME(name, head)
	claimed := fsutil.MIMEFromExtension(filepath.Ext(name))
	class, _, _ := strings.Cut(claimed, "/")
	if class != "image" && class != "video" {
		return detected, nil
	}
	if got, _, _ := strings.Cut(detected, "/"); got != class {
		return "", fmt.Errorf("%w: %s looks like %s", ErrContentMismatch, name, detected)
	}
	return detected, nil
}

// CollectMetrics updates the knowledge base gauges.
func (o *Orchestrator) CollectMetrics(ctx context.Context) error {
	kb := o.c.Store.Snapshot()
	metrics.UpdateBrandMetrics(len(o.Roots()), len(kb.InspirationURLs), o.c.Platforms.Len(), len(kb.AgentIntegrations))
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.c.Bus == nil {
		return
	}
	if err := o.c.Bus.Publish(ctx, event); err != nil {
		o.logger.Debug("event not published", "type", event.Type, "error", err)
	}
}
