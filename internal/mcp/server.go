// Package mcp exposes brand operations to agents over the Model Context
// Protocol.
package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/orchestrator"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/version"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

// Brand is the set of orchestrator operations reachable through tools.
type Brand interface {
	Status() orchestrator.Status
	SetFocus(ctx context.Context, text string) (string, error)
	AddDiscoveryPath(ctx context.Context, path string) ([]string, error)
	AddInspirationURL(ctx context.Context, rawURL string) ([]string, error)
	ProcessBucket(ctx context.Context, steer string) ([]workflow.Proposal, error)
	ListWorkflows() []workflow.Proposal
	ExecuteWorkflow(ctx context.Context, id string) (workflow.Proposal, error)
	Sync(ctx context.Context) (orchestrator.SyncResult, error)
	GenerateContent(ctx context.Context, task, taskType string) (*providers.Response, error)
	Manifest() (*synthesis.BrandManifest, bool)
}

// Config holds MCP server configuration.
type Config struct {
	Name     string
	Version  string
	BasePath string
}

// DefaultConfig returns the default MCP server configuration.
func DefaultConfig() Config {
	return Config{
		Name:     "phoenix",
		Version:  version.Get().Version,
		BasePath: "/mcp",
	}
}

// Server wraps the MCP server with brand tools and resources.
type Server struct {
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	brand      Brand
	bus        events.Bus
	logger     *slog.Logger
	mu         sync.Mutex
	running    bool

	unsubscribe func()
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBus sets the event bus used for resource change notifications.
func WithBus(bus events.Bus) Option {
	return func(s *Server) {
		s.bus = bus
	}
}

// NewServer creates a new MCP server over brand.
func NewServer(brand Brand, cfg Config, opts ...Option) *Server {
	s := &Server{
		brand:  brand,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithResourceCapabilities(false, true),
		server.WithToolCapabilities(true),
	)

	s.registerResources()
	s.registerTools()

	s.httpServer = server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateful(true),
		server.WithHeartbeatInterval(30*time.Second),
		server.WithEndpointPath(cfg.BasePath),
	)

	s.logger.Info("MCP StreamableHTTP server created",
		"name", cfg.Name,
		"version", cfg.Version,
		"base_path", cfg.BasePath,
	)

	return s
}

// Start begins forwarding brand events as resource notifications.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startEventListener()
	s.running = true
	s.logger.Info("MCP server started")
	return nil
}

// Stop stops the MCP server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopEventListener()

	if s.running {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("MCP server shutdown error", "error", err)
			return err
		}
	}

	s.running = false
	s.logger.Info("MCP server stopped")
	return nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.httpServer
}

// NotifyResourceChanged tells every connected client that uri changed.
func (s *Server) NotifyResourceChanged(uri string) {
	s.mcpServer.SendNotificationToAllClients("notifications/resources/updated", map[string]any{
		"uri": uri,
	})
}

func (s *Server) registerResources() {
	for _, info := range AvailableResources() {
		s.mcpServer.AddResource(
			mcp.NewResource(
				info.URI,
				info.Name,
				mcp.WithResourceDescription(info.Description),
				mcp.WithMIMEType(info.MIMEType),
			),
			s.handleReadResource,
		)
	}
}
