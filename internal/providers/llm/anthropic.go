package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leefowlercu/phoenix/internal/providers"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com"
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultModel = "claude-sonnet-4-5-20250929"
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// AnthropicProvider implements providers.Generator using the Messages API.
type AnthropicProvider struct {
	opts        options
	rateLimiter *providers.RateLimiter
}

// NewAnthropicProvider creates a new Anthropic generator. The key defaults
// to ANTHROPIC_API_KEY.
func NewAnthropicProvider(opts ...Option) *AnthropicProvider {
	o := newOptions("ANTHROPIC_API_KEY", anthropicDefaultModel, opts)
	if o.baseURL == "" {
		o.baseURL = anthropicAPIURL
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	p := &AnthropicProvider{opts: o}
	p.rateLimiter = providers.NewRateLimiter(p.RateLimit())
	return p
}

// Name returns the provider's unique identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Available returns true if the provider is configured and ready.
func (p *AnthropicProvider) Available() bool {
	return p.opts.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *AnthropicProvider) RateLimit() providers.RateLimitConfig {
	return rateLimitConfig(p.opts.rateLimit)
}

// Model returns the configured model name.
func (p *AnthropicProvider) Model() string {
	return p.opts.model
}

// Generate runs one completion.
func (p *AnthropicProvider) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	start := time.Now()
	if !p.Available() {
		return nil, fail(p.Name(), req, start, fmt.Errorf("anthropic; %w", providers.ErrProviderUnavailable))
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("rate limit wait failed; %w", err))
	}

	system := req.SystemPrompt
	if req.JSON {
		system += jsonInstruction
	}

	requestBody := map[string]any{
		"model":      p.opts.model,
		"max_tokens": maxTokens(req),
		"system":     system,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": req.UserPrompt,
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("failed to marshal request; %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("failed to create request; %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.opts.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.opts.httpClient.Do(httpReq)
	if err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("API request failed; %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("failed to read response; %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fail(p.Name(), req, start, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body)))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("failed to parse response; %w", err))
	}

	var text string
	for _, c := range apiResp.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	if text == "" {
		return nil, fail(p.Name(), req, start, fmt.Errorf("no text content in response"))
	}

	return finish(p.Name(), p.opts.model, req, text, apiResp.Usage.InputTokens, apiResp.Usage.OutputTokens, start)
}

// anthropicResponse represents the API response structure.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
