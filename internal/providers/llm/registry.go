package llm

import (
	"fmt"
	"strings"

	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/providers"
)

// NewRegistry registers every adapter. The configured provider receives the
// configured model and key and becomes the default when it is available;
// the others read their keys from the environment. Routing comes from
// cfg.Routing.
func NewRegistry(cfg config.LLMConfig, extra ...Option) (*providers.Registry, error) {
	reg := providers.NewRegistry()
	primary := strings.ToLower(cfg.Provider)

	for _, name := range Names {
		opts := []Option{WithRateLimit(cfg.RateLimit)}
		if name == primary {
			opts = append(opts, WithModel(cfg.Model))
			if key := cfg.ResolveAPIKey(); key != "" {
				opts = append(opts, WithAPIKey(key))
			}
		}
		opts = append(opts, extra...)

		g, err := New(name, opts...)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(g); err != nil {
			return nil, fmt.Errorf("failed to register %s provider; %w", name, err)
		}
	}

	if g, err := reg.Get(primary); err == nil && g.Available() {
		_ = reg.SetDefault(primary)
	}
	reg.SetRoutes(cfg.Routing)

	return reg, nil
}
