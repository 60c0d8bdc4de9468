package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/leefowlercu/phoenix/internal/providers"
)

const openaiDefaultModel = "gpt-4o"

// OpenAIProvider implements providers.Generator using the Chat Completions API.
type OpenAIProvider struct {
	opts        options
	client      *openai.Client
	rateLimiter *providers.RateLimiter
}

// NewOpenAIProvider creates a new OpenAI generator. The key defaults to
// OPENAI_API_KEY.
func NewOpenAIProvider(opts ...Option) *OpenAIProvider {
	o := newOptions("OPENAI_API_KEY", openaiDefaultModel, opts)

	cfg := openai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	} else {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	p := &OpenAIProvider{
		opts:   o,
		client: openai.NewClientWithConfig(cfg),
	}
	p.rateLimiter = providers.NewRateLimiter(p.RateLimit())
	return p
}

// Name returns the provider's unique identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Available returns true if the provider is configured and ready.
func (p *OpenAIProvider) Available() bool {
	return p.opts.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *OpenAIProvider) RateLimit() providers.RateLimitConfig {
	return rateLimitConfig(p.opts.rateLimit)
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.opts.model
}

// Generate runs one completion. JSON requests use JSON object mode.
func (p *OpenAIProvider) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	start := time.Now()
	if !p.Available() {
		return nil, fail(p.Name(), req, start, fmt.Errorf("openai; %w", providers.ErrProviderUnavailable))
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("rate limit wait failed; %w", err))
	}

	system := req.SystemPrompt
	chatReq := openai.ChatCompletionRequest{
		Model:               p.opts.model,
		MaxCompletionTokens: maxTokens(req),
	}
	if req.JSON {
		system += jsonInstruction
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	chatReq.Messages = []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("API request failed; %w", err))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fail(p.Name(), req, start, fmt.Errorf("no response content returned"))
	}

	return finish(p.Name(), p.opts.model, req, resp.Choices[0].Message.Content,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, start)
}
