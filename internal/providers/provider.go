package providers

import (
	"context"
	"time"
)

// Task types used to route generation requests.
const (
	TaskDefault    = "default"
	TaskSynthesis  = "synthesis"
	TaskPlanning   = "planning"
	TaskStrategy   = "strategy"
	TaskCreative   = "creative"
	TaskAnalytical = "analytical"
)

// Provider is the base interface for all providers.
type Provider interface {
	// Name returns the provider's unique identifier.
	Name() string

	// Available returns true if the provider is configured and ready.
	Available() bool

	// RateLimit returns the rate limit configuration for this provider.
	RateLimit() RateLimitConfig
}

// RateLimitConfig defines rate limiting parameters for a provider.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// Request is a single text generation call.
type Request struct {
	// SystemPrompt frames the model's role.
	SystemPrompt string

	// UserPrompt is the task content.
	UserPrompt string

	// JSON asks for a single JSON object. Adapters return only the object
	// text, or an error wrapping ErrNotJSON.
	JSON bool

	// Task labels the request for routing and metrics.
	Task string

	// MaxTokens caps the reply length. Zero uses the adapter default.
	MaxTokens int
}

// Response is the result of a generation call.
type Response struct {
	// Content is the reply text, or the bare JSON object when requested.
	Content string `json:"content"`

	// ProviderName is the name of the provider that generated this result.
	ProviderName string `json:"provider"`

	// ModelName is the specific model used.
	ModelName string `json:"model"`

	// InputTokens and OutputTokens are the reported usage.
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// GeneratedAt is when the reply was received.
	GeneratedAt time.Time `json:"generated_at"`
}

// Generator produces text from a prompt.
type Generator interface {
	Provider

	// Model returns the model identifier used by this provider.
	Model() string

	// Generate runs one completion. It does not retry.
	Generate(ctx context.Context, req Request) (*Response, error)
}
