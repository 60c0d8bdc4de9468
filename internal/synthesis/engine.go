// Package synthesis turns discovery records into a brand manifest and drafts
// content in the brand's voice.
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leefowlercu/phoenix/internal/fsutil"
	"github.com/leefowlercu/phoenix/internal/intel"
	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/scanner"
	"github.com/leefowlercu/phoenix/internal/schema"
)

// ErrMalformedManifest is returned when a reply is not a valid manifest.
var ErrMalformedManifest = errors.New("malformed brand manifest")

// Synthesis outcomes recorded in metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// GeneratorSource resolves a generator for a task type.
type GeneratorSource interface {
	ForTask(task string) (providers.Generator, error)
}

// Result is the outcome of one synthesis. Exactly one of Manifest and Error
// is set.
type Result struct {
	Manifest    *BrandManifest `json:"manifest,omitempty"`
	Diff        string         `json:"diff,omitempty"`
	Error       string         `json:"error,omitempty"`
	ProfilePath string         `json:"profilePath,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	Model       string         `json:"model,omitempty"`

	// Err carries the typed failure for callers in process.
	Err error `json:"-"`
}

// Failed returns true if synthesis did not produce a manifest.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Engine runs brand synthesis.
type Engine struct {
	source      GeneratorSource
	profilePath string
	validator   *schema.Validator
	logger      *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithValidator shares a schema validator.
func WithValidator(v *schema.Validator) EngineOption {
	return func(e *Engine) {
		e.validator = v
	}
}

// NewEngine creates an Engine that writes the brand profile to profilePath.
func NewEngine(source GeneratorSource, profilePath string, opts ...EngineOption) *Engine {
	e := &Engine{
		source:      source,
		profilePath: profilePath,
		validator:   schema.NewValidator(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProfilePath returns the brand profile location.
func (e *Engine) ProfilePath() string {
	return e.profilePath
}

// Synthesize makes one generation call and, when the reply is a valid
// manifest, overwrites the brand profile with brandManifestJson. Failures
// are returned in the Result and leave the profile untouched.
func (e *Engine) Synthesize(ctx context.Context, rec scanner.Record, externals []intel.Record) Result {
	gen, err := e.source.ForTask(providers.TaskSynthesis)
	if err != nil {
		return e.failed(OutcomeError, fmt.Errorf("failed to resolve provider; %w", err))
	}

	resp, err := gen.Generate(ctx, providers.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildPrompt(rec, externals),
		JSON:         true,
		Task:         providers.TaskSynthesis,
		MaxTokens:    8192,
	})
	if err != nil {
		if errors.Is(err, providers.ErrNotJSON) {
			return e.failed(OutcomeMalformed, fmt.Errorf("%w; %v", ErrMalformedManifest, err))
		}
		return e.failed(OutcomeError, fmt.Errorf("failed to generate manifest; %w", err))
	}

	manifest, err := e.parse(resp.Content)
	if err != nil {
		return e.failed(OutcomeMalformed, err)
	}

	diff, err := e.writeProfile(manifest.BrandManifestJSON)
	if err != nil {
		return e.failed(OutcomeError, err)
	}

	metrics.RecordSynthesis(OutcomeSuccess)
	e.logger.Info("brand manifest synthesized",
		"provider", resp.ProviderName,
		"model", resp.ModelName,
		"brand", manifest.BrandIdentity.Name,
		"focus", manifest.ActiveFocus,
		"workflows", len(manifest.SuggestedWorkflows))

	return Result{
		Manifest:    manifest,
		Diff:        diff,
		ProfilePath: e.profilePath,
		Provider:    resp.ProviderName,
		Model:       resp.ModelName,
	}
}

func (e *Engine) parse(content string) (*BrandManifest, error) {
	if err := e.validator.Validate(manifestSchema, []byte(content)); err != nil {
		return nil, fmt.Errorf("%w; %v", ErrMalformedManifest, err)
	}

	var m BrandManifest
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return nil, fmt.Errorf("%w; %v", ErrMalformedManifest, err)
	}
	m.Raw = content
	return &m, nil
}

// writeProfile replaces the profile and returns a diff against the previous one.
func (e *Engine) writeProfile(manifestJSON json.RawMessage) (string, error) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, manifestJSON, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format brand profile; %w", err)
	}
	pretty.WriteByte('\n')

	previous, err := os.ReadFile(e.profilePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read brand profile; %w", err)
	}

	if err := fsutil.WriteFileAtomic(e.profilePath, pretty.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write brand profile; %w", err)
	}

	return unifiedDiff(filepath.Base(e.profilePath), string(previous), pretty.String()), nil
}

func (e *Engine) failed(outcome string, err error) Result {
	metrics.RecordSynthesis(outcome)
	e.logger.Error("brand synthesis failed", "outcome", outcome, "error", err)
	return Result{Error: err.Error(), Err: err}
}
