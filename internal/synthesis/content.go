package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/leefowlercu/phoenix/internal/providers"
)

// Profile is the subset of the brand profile used to frame content requests.
type Profile struct {
	BrandName        string   `json:"brandName"`
	Mission          string   `json:"mission"`
	Tone             string   `json:"tone"`
	SignaturePhrases []string `json:"signaturePhrases"`
}

// LoadProfile reads the brand profile. Key spellings from older profiles
// (brand_name, signature_phrases, a nested voice object) are accepted. A
// missing file yields an empty profile.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read brand profile; %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Profile{}, fmt.Errorf("failed to parse brand profile; %w", err)
	}

	p := Profile{
		BrandName: firstString(doc, "brandName", "brand_name", "name"),
		Mission:   firstString(doc, "mission"),
		Tone:      firstString(doc, "tone"),
	}
	p.SignaturePhrases = stringList(doc, "signaturePhrases", "signature_phrases")

	if voice, ok := doc["voice"].(map[string]any); ok {
		if p.Tone == "" {
			p.Tone = firstString(voice, "tone")
		}
		if len(p.SignaturePhrases) == 0 {
			p.SignaturePhrases = stringList(voice, "signaturePhrases", "signature_phrases")
		}
	}
	return p, nil
}

// SystemPrompt frames generation in the brand's voice.
func (p Profile) SystemPrompt() string {
	name := p.BrandName
	if name == "" {
		name = "this brand"
	}
	return fmt.Sprintf(`You are the Brand Content Engine for %s.
Mission: %s
Tone: %s
Signature Phrases to use when appropriate: %s

You generate high-impact content that prioritizes community sovereignty and protection.
`, name, p.Mission, p.Tone, strings.Join(p.SignaturePhrases, ", "))
}

// ContentEngine drafts content in the brand's voice.
type ContentEngine struct {
	source      GeneratorSource
	profilePath string
	logger      *slog.Logger
}

// NewContentEngine creates a ContentEngine reading the profile at profilePath
// on every call, so a fresh synthesis takes effect immediately.
func NewContentEngine(source GeneratorSource, profilePath string, logger *slog.Logger) *ContentEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentEngine{source: source, profilePath: profilePath, logger: logger}
}

// Generate drafts content for task, routed by taskType.
func (c *ContentEngine) Generate(ctx context.Context, task, taskType string) (*providers.Response, error) {
	if strings.TrimSpace(task) == "" {
		return nil, errors.New("task must not be empty")
	}
	if taskType == "" {
		taskType = providers.TaskDefault
	}

	profile, err := LoadProfile(c.profilePath)
	if err != nil {
		return nil, err
	}

	gen, err := c.source.ForTask(taskType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider; %w", err)
	}

	c.logger.Info("generating content", "task_type", taskType, "provider", gen.Name(), "model", gen.Model())

	resp, err := gen.Generate(ctx, providers.Request{
		SystemPrompt: profile.SystemPrompt(),
		UserPrompt:   task,
		Task:         taskType,
		MaxTokens:    2048,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content; %w", err)
	}
	return resp, nil
}

func firstString(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := doc[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringList(doc map[string]any, keys ...string) []string {
	for _, k := range keys {
		items, ok := doc[k].([]any)
		if !ok {
			continue
		}
		var out []string
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
