package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides token bucket rate limiting for API calls.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter. A non-positive request rate
// disables limiting.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	burst := config.BurstSize
	if burst <= 0 {
		burst = 1
	}
	if config.RequestsPerMinute <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, burst)}
	}
	every := rate.Every(time.Minute / time.Duration(config.RequestsPerMinute))
	return &RateLimiter{limiter: rate.NewLimiter(every, burst)}
}

// Wait blocks until a token is available or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	return r.limiter.Allow()
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	return r.limiter.Tokens()
}

// RateLimiterManager manages rate limiters for multiple providers.
type RateLimiterManager struct {
	mu       sync.RWMutex
	limiters map[string]*RateLimiter
}

// NewRateLimiterManager creates a new rate limiter manager.
func NewRateLimiterManager() *RateLimiterManager {
	return &RateLimiterManager{
		limiters: make(map[string]*RateLimiter),
	}
}

// GetOrCreate returns the rate limiter for a provider, creating if needed.
func (m *RateLimiterManager) GetOrCreate(providerName string, config RateLimitConfig) *RateLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limiter, exists := m.limiters[providerName]; exists {
		return limiter
	}

	limiter := NewRateLimiter(config)
	m.limiters[providerName] = limiter
	return limiter
}

// Get returns the rate limiter for a provider if it exists.
func (m *RateLimiterManager) Get(providerName string) (*RateLimiter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limiter, exists := m.limiters[providerName]
	return limiter, exists
}
