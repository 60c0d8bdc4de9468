package daemonclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/orchestrator"
	"github.com/leefowlercu/phoenix/internal/platforms"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

const (
	DefaultTimeout = 5 * time.Second
	UploadTimeout  = 2 * time.Minute
	ProposeTimeout = 10 * time.Minute
	ExecuteTimeout = 10 * time.Minute
	ContentTimeout = 5 * time.Minute
	SyncTimeout    = 30 * time.Minute
)

// StatusError is a non-200 reply from the daemon.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("daemon request failed; %s", e.Message)
	}
	return fmt.Sprintf("daemon request failed; status %d", e.Code)
}

// IsNotFound reports whether err is a 404 from the daemon.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client provides a shared HTTP client for daemon endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithBaseURL points the client at an explicit daemon address.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// New creates a Client using daemon configuration.
func New(cfg config.DaemonConfig, opts ...Option) *Client {
	client := &Client{
		baseURL: ResolveBaseURL(cfg),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// NewFromConfig creates a Client from the root config.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	return New(cfg.Daemon, opts...), nil
}

// BaseURL returns the daemon address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveBaseURL builds the daemon base URL from config.
func ResolveBaseURL(cfg config.DaemonConfig) string {
	bind := NormalizeBind(cfg.HTTPBind)
	return fmt.Sprintf("http://%s:%d", bind, cfg.HTTPPort)
}

// NormalizeBind maps wildcard binds to loopback for local clients.
func NormalizeBind(bind string) string {
	if bind == "" || bind == "0.0.0.0" || bind == "::" {
		return "127.0.0.1"
	}
	if strings.Contains(bind, ":") && !strings.HasPrefix(bind, "[") {
		return "[" + bind + "]"
	}
	return bind
}

// Ready fetches /readyz health status.
func (c *Client) Ready(ctx context.Context) (*daemon.HealthStatus, error) {
	var status daemon.HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Status fetches the brand status.
func (c *Client) Status(ctx context.Context) (*orchestrator.Status, error) {
	var status orchestrator.Status
	if err := c.doJSON(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Manifest fetches the last synthesized brand manifest. A daemon that has
// not synthesized one yet answers with a 404; see IsNotFound.
func (c *Client) Manifest(ctx context.Context) (*synthesis.BrandManifest, error) {
	var m synthesis.BrandManifest
	if err := c.doJSON(ctx, http.MethodGet, "/api/manifest", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SetFocus replaces the global focus.
func (c *Client) SetFocus(ctx context.Context, focus string) (*daemon.FocusResponse, error) {
	var result daemon.FocusResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/focus/update", daemon.FocusRequest{Focus: focus}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Discover lists candidate project roots under the daemon's home directory.
func (c *Client) Discover(ctx context.Context) (*daemon.DiscoverResponse, error) {
	var result daemon.DiscoverResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/system/discover", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddRoot adds a discovery root.
func (c *Client) AddRoot(ctx context.Context, path string) (*daemon.RootsResponse, error) {
	var result daemon.RootsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/roots/add", daemon.RootRequest{Path: path}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddInspiration records an inspiration URL.
func (c *Client) AddInspiration(ctx context.Context, rawURL string) (*daemon.InspirationResponse, error) {
	var result daemon.InspirationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/inspiration/add", daemon.InspirationRequest{URL: rawURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddPlatform registers a publishing platform.
func (c *Client) AddPlatform(ctx context.Context, name string, cfg platforms.Config) (*daemon.PlatformResponse, error) {
	var result daemon.PlatformResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/platforms/add", daemon.PlatformRequest{Name: name, Config: cfg}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IntegrateAgent registers an external agent endpoint.
func (c *Client) IntegrateAgent(ctx context.Context, name, agentURL string) (*daemon.AgentResponse, error) {
	var result daemon.AgentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/agents/integrate", daemon.AgentRequest{Name: name, URL: agentURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upload sends local files to the daemon's bucket.
func (c *Client) Upload(ctx context.Context, paths []string) (*daemon.UploadResponse, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to upload")
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, p := range paths {
		if err := attach(mw, p); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode upload; %w", err)
	}

	var result daemon.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/bucket/upload", body, mw.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func attach(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s; %w", path, err)
	}
	defer f.Close()

	w, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to encode %s; %w", path, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read %s; %w", path, err)
	}
	return nil
}

// Propose turns the bucket's files into workflow proposals.
func (c *Client) Propose(ctx context.Context, steer string) (*daemon.WorkflowsResponse, error) {
	var result daemon.WorkflowsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/workflow/propose", daemon.ProposeRequest{Steer: steer}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Pending lists every known workflow.
func (c *Client) Pending(ctx context.Context) ([]workflow.Proposal, error) {
	var result daemon.WorkflowsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/workflow/pending", nil, &result); err != nil {
		return nil, err
	}
	return result.Workflows, nil
}

// Execute approves and runs one workflow.
func (c *Client) Execute(ctx context.Context, id string) (*workflow.Proposal, error) {
	var result workflow.Proposal
	if err := c.doJSON(ctx, http.MethodPost, "/api/workflow/execute/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Sync rescans every root and re-synthesizes the brand manifest.
func (c *Client) Sync(ctx context.Context) (*daemon.SyncResponse, error) {
	var result daemon.SyncResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/sync", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Generate drafts content in the brand voice.
func (c *Client) Generate(ctx context.Context, task, taskType string) (*daemon.ContentResponse, error) {
	var result daemon.ContentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/content/generate", daemon.ContentRequest{Task: task, TaskType: taskType}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("failed to encode request; %w", err)
		}
		body = buf
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request; %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon; %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Code: resp.StatusCode}
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil {
			se.Message = errResp.Error
		}
		return se
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response; %w", err)
	}

	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}
