package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Post statuses.
const (
	PostSuccess = "success"
	PostError   = "error"
)

// localManifestOnly is reported for platforms without a delivery endpoint.
const localManifestOnly = "local_manifest_only"

// Content is what a workflow publishes.
type Content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PostResult is the outcome of a post. Failures are reported here rather
// than returned as errors.
type PostResult struct {
	Platform string `json:"platform"`
	Status   string `json:"status"`
	URL      string `json:"url,omitempty"`
	Message  string `json:"message,omitempty"`
}

// OK returns true if the post succeeded.
func (r PostResult) OK() bool {
	return r.Status == PostSuccess
}

// Poster delivers content to registered platforms.
type Poster struct {
	registry *Registry
	client   *http.Client
	logger   *slog.Logger
}

// PosterOption configures the Poster.
type PosterOption func(*Poster)

// WithHTTPClient sets the client used for webhook delivery.
func WithHTTPClient(c *http.Client) PosterOption {
	return func(p *Poster) {
		p.client = c
	}
}

// WithPosterLogger sets the logger.
func WithPosterLogger(logger *slog.Logger) PosterOption {
	return func(p *Poster) {
		p.logger = logger
	}
}

// NewPoster creates a Poster for the platforms in registry.
func NewPoster(registry *Registry, opts ...PosterOption) *Poster {
	p := &Poster{
		registry: registry,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Post publishes content to the named platform. Webhook platforms receive
// the content as a JSON POST; every other platform is recorded locally.
func (p *Poster) Post(ctx context.Context, platform string, content Content) PostResult {
	pl, ok := p.registry.Get(platform)
	if !ok {
		return PostResult{
			Platform: platform,
			Status:   PostError,
			Message:  fmt.Sprintf("%s: %s", ErrUnknownPlatform, platform),
		}
	}

	if pl.Type != TypeWebhook || pl.URL == "" {
		url := pl.URL
		if url == "" {
			url = localManifestOnly
		}
		p.logger.Info("content staged for platform", "platform", pl.Name, "title", content.Title)
		return PostResult{Platform: pl.Name, Status: PostSuccess, URL: url}
	}

	if err := p.deliver(ctx, pl, content); err != nil {
		p.logger.Warn("webhook delivery failed", "platform", pl.Name, "error", err)
		return PostResult{Platform: pl.Name, Status: PostError, Message: err.Error()}
	}

	p.logger.Info("content delivered", "platform", pl.Name, "url", pl.URL)
	return PostResult{Platform: pl.Name, Status: PostSuccess, URL: pl.URL}
}

func (p *Poster) deliver(ctx context.Context, pl Platform, content Content) error {
	body, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to encode content; %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pl.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request; %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if pl.APIKeyRef != "" {
		if key := os.Getenv(pl.APIKeyRef); key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post; %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
