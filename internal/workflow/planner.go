package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/scanner"
	"github.com/leefowlercu/phoenix/internal/schema"
)

// Brand is the brand context a planner works from.
type Brand struct {
	Name    string `json:"brand_name"`
	Mission string `json:"mission,omitempty"`
	Tone    string `json:"tone,omitempty"`
}

// PlanRequest describes one asset to plan for.
type PlanRequest struct {
	AssetName string
	Kind      scanner.AssetKind
	Steer     string
	Focus     string
	Brand     Brand
}

// Planner produces a plan for an asset.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (Plan, error)
}

// GeneratorSource resolves a generator for a task type.
type GeneratorSource interface {
	ForTask(task string) (providers.Generator, error)
}

// DefaultPlan is the plan used when no planner is configured or the
// planner fails. Images go to instagram and video to youtube.
func DefaultPlan(req PlanRequest) Plan {
	platform := "instagram"
	if req.Kind == scanner.AssetVideo {
		platform = "youtube"
	}

	title := fmt.Sprintf("%s%s: %s", strings.ToUpper(platform[:1]), platform[1:], req.AssetName)
	story := fmt.Sprintf("Turn %s into a story that serves %s.", req.AssetName, focusOrDefault(req.Focus))
	if req.Steer != "" {
		story += " Direction: " + req.Steer
	}

	return Plan{
		Title: title,
		Story: story,
		Tasks: [][2]string{
			{"Strategist", "Draft narrative hook"},
			{"Creative", fmt.Sprintf("Prepare %s for %s", req.AssetName, platform)},
			{"Publisher", "Schedule post"},
		},
		Platform: platform,
	}
}

func focusOrDefault(focus string) string {
	if strings.TrimSpace(focus) == "" {
		return "the brand"
	}
	return focus
}

const planSchema = `{
	"type": "object",
	"required": ["title", "story", "tasks", "platform"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"story": {"type": "string"},
		"platform": {"type": "string"},
		"tasks": {
			"type": "array",
			"items": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 2,
				"maxItems": 2
			}
		}
	}
}`

// LLMPlanner asks the language model for a plan.
type LLMPlanner struct {
	source    GeneratorSource
	validator *schema.Validator
}

// NewLLMPlanner creates a planner routed through the planning task type.
func NewLLMPlanner(source GeneratorSource, validator *schema.Validator) *LLMPlanner {
	if validator == nil {
		validator = schema.NewValidator()
	}
	return &LLMPlanner{source: source, validator: validator}
}

// Plan makes one generation call and validates the reply.
func (p *LLMPlanner) Plan(ctx context.Context, req PlanRequest) (Plan, error) {
	gen, err := p.source.ForTask(providers.TaskPlanning)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to resolve provider; %w", err)
	}

	resp, err := gen.Generate(ctx, providers.Request{
		SystemPrompt: "You plan content workflows for brand assets.",
		UserPrompt:   planPrompt(req),
		JSON:         true,
		Task:         providers.TaskPlanning,
		MaxTokens:    1024,
	})
	if err != nil {
		return Plan{}, fmt.Errorf("failed to generate plan; %w", err)
	}

	if err := p.validator.Validate(planSchema, []byte(resp.Content)); err != nil {
		return Plan{}, fmt.Errorf("plan for %s; %w", req.AssetName, err)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(resp.Content), &plan); err != nil {
		return Plan{}, fmt.Errorf("failed to decode plan; %w", err)
	}
	plan.Platform = strings.ToLower(strings.TrimSpace(plan.Platform))
	return plan, nil
}

func planPrompt(req PlanRequest) string {
	brand := req.Brand
	if brand.Name == "" {
		brand.Name = "Phoenix"
	}
	brandJSON, _ := json.Marshal(brand)

	var b strings.Builder
	fmt.Fprintf(&b, "Identify the best Workflow for this asset: '%s'.\n", req.AssetName)
	fmt.Fprintf(&b, "Brand DNA: %s\n", brandJSON)
	fmt.Fprintf(&b, "USER MISSION FOCUS: %s\n", focusOrDefault(req.Focus))
	if req.Steer != "" {
		fmt.Fprintf(&b, "USER DIRECTION: %s\n", req.Steer)
	}
	b.WriteString(`
Deliver a high-impact strategy that aligns with the user's specific mission focus.

Output a JSON object with:
- title: Name of the workflow
- story: The narrative hook (must incorporate the Focus)
- tasks: List of [agent, task_description]
- platform: Best platform for this (e.g. wordpress, instagram, youtube, or any custom platform)
`)
	return b.String()
}
