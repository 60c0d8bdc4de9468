package llm

import (
	"fmt"
	"strings"

	"github.com/leefowlercu/phoenix/internal/providers"
)

// Names lists the supported provider names.
var Names = []string{"anthropic", "google", "openai"}

// New creates the named adapter.
func New(name string, opts ...Option) (providers.Generator, error) {
	switch strings.ToLower(name) {
	case "anthropic":
		return NewAnthropicProvider(opts...), nil
	case "openai":
		return NewOpenAIProvider(opts...), nil
	case "google":
		return NewGoogleProvider(opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q; %w", name, providers.ErrProviderNotFound)
	}
}
