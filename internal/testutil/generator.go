package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/leefowlercu/phoenix/internal/providers"
)

// FakeGenerator is a providers.Generator that returns canned replies and
// records every request.
type FakeGenerator struct {
	mu       sync.Mutex
	name     string
	replies  []string
	err      error
	requests []providers.Request
}

// NewFakeGenerator returns a generator that answers with replies in order,
// repeating the last one.
func NewFakeGenerator(name string, replies ...string) *FakeGenerator {
	return &FakeGenerator{name: name, replies: replies}
}

// FailWith makes every subsequent call return err.
func (g *FakeGenerator) FailWith(err error) *FakeGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
	return g
}

func (g *FakeGenerator) Name() string                         { return g.name }
func (g *FakeGenerator) Available() bool                      { return true }
func (g *FakeGenerator) RateLimit() providers.RateLimitConfig { return providers.RateLimitConfig{} }
func (g *FakeGenerator) Model() string                        { return "fake-model" }

// Generate returns the next canned reply. JSON requests go through
// providers.ExtractJSON like the real adapters.
func (g *FakeGenerator) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reply string
	if n := len(g.replies); n > 0 {
		idx := len(g.requests) - 1
		if idx >= n {
			idx = n - 1
		}
		reply = g.replies[idx]
	}

	content := reply
	if req.JSON {
		extracted, err := providers.ExtractJSON(reply)
		if err != nil {
			return nil, err
		}
		content = extracted
	}

	return &providers.Response{
		Content:      content,
		ProviderName: g.name,
		ModelName:    "fake-model",
		GeneratedAt:  time.Now(),
	}, nil
}

// Requests returns the recorded requests.
func (g *FakeGenerator) Requests() []providers.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]providers.Request(nil), g.requests...)
}

// Calls returns the number of Generate calls.
func (g *FakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// StaticSource resolves every task to one generator.
type StaticSource struct {
	Generator providers.Generator
}

// ForTask returns the configured generator.
func (s StaticSource) ForTask(string) (providers.Generator, error) {
	if s.Generator == nil {
		return nil, providers.ErrNoAvailableProvider
	}
	return s.Generator, nil
}
