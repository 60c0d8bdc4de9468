package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/leefowlercu/phoenix/internal/providers"
)

const googleDefaultModel = "gemini-1.5-pro"

// GoogleProvider implements providers.Generator using the Gemini API.
type GoogleProvider struct {
	opts        options
	rateLimiter *providers.RateLimiter
}

// NewGoogleProvider creates a new Gemini generator. The key defaults to
// GEMINI_API_KEY.
func NewGoogleProvider(opts ...Option) *GoogleProvider {
	o := newOptions("GEMINI_API_KEY", googleDefaultModel, opts)

	p := &GoogleProvider{opts: o}
	p.rateLimiter = providers.NewRateLimiter(p.RateLimit())
	return p
}

// Name returns the provider's unique identifier.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Available returns true if the provider is configured and ready.
func (p *GoogleProvider) Available() bool {
	return p.opts.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *GoogleProvider) RateLimit() providers.RateLimitConfig {
	return rateLimitConfig(p.opts.rateLimit)
}

// Model returns the configured model name.
func (p *GoogleProvider) Model() string {
	return p.opts.model
}

// Generate runs one completion. JSON requests set the JSON response MIME type.
func (p *GoogleProvider) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	start := time.Now()
	if !p.Available() {
		return nil, fail(p.Name(), req, start, fmt.Errorf("google; %w", providers.ErrProviderUnavailable))
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("rate limit wait failed; %w", err))
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(p.opts.apiKey)}
	if p.opts.baseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(p.opts.baseURL))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("failed to create client; %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel(p.opts.model)
	system := req.SystemPrompt
	if req.JSON {
		system += jsonInstruction
		model.ResponseMIMEType = "application/json"
	}
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	model.SetMaxOutputTokens(int32(maxTokens(req)))

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return nil, fail(p.Name(), req, start, fmt.Errorf("API request failed; %w", err))
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return nil, fail(p.Name(), req, start, fmt.Errorf("no response content returned"))
	}

	var in, out int
	if resp.UsageMetadata != nil {
		in = int(resp.UsageMetadata.PromptTokenCount)
		out = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return finish(p.Name(), p.opts.model, req, sb.String(), in, out, start)
}
