// Package llm holds the language model adapters behind providers.Generator.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/providers"
)

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 120 * time.Second
	jsonInstruction  = "\n\nRespond ONLY with a single valid JSON object, no markdown formatting or explanation."
)

// options holds settings shared by every adapter.
type options struct {
	apiKey     string
	model      string
	baseURL    string
	rateLimit  int
	httpClient httpDoer
}

// Option configures an adapter.
type Option func(*options)

// WithAPIKey sets the API key, overriding the environment.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithModel sets the model to use.
func WithModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the adapter at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithRateLimit sets the request rate in requests per minute.
func WithRateLimit(requestsPerMinute int) Option {
	return func(o *options) {
		o.rateLimit = requestsPerMinute
	}
}

// WithHTTPClient sets the HTTP client to use.
func WithHTTPClient(client httpDoer) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func newOptions(keyEnv, model string, opts []Option) options {
	o := options{
		apiKey:    os.Getenv(keyEnv),
		model:     model,
		rateLimit: 20,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func rateLimitConfig(rpm int) providers.RateLimitConfig {
	return providers.RateLimitConfig{
		RequestsPerMinute: rpm,
		BurstSize:         max(1, rpm/5),
	}
}

// finish applies the JSON contract and records metrics for one call.
func finish(provider, model string, req providers.Request, text string, in, out int, start time.Time) (*providers.Response, error) {
	content := text
	var err error
	if req.JSON {
		content, err = providers.ExtractJSON(text)
	}
	metrics.RecordProviderRequest(provider, taskLabel(req), time.Since(start), in, out, err)
	if err != nil {
		return nil, fmt.Errorf("%s returned malformed JSON; %w", provider, err)
	}
	return &providers.Response{
		Content:      content,
		ProviderName: provider,
		ModelName:    model,
		InputTokens:  in,
		OutputTokens: out,
		GeneratedAt:  time.Now(),
	}, nil
}

func fail(provider string, req providers.Request, start time.Time, err error) error {
	metrics.RecordProviderRequest(provider, taskLabel(req), time.Since(start), 0, 0, err)
	return err
}

func taskLabel(req providers.Request) string {
	if req.Task == "" {
		return providers.TaskDefault
	}
	return req.Task
}

func maxTokens(req providers.Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
