package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/orchestrator"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

// fakeBrand is a test implementation of Brand.
type fakeBrand struct {
	focus       string
	roots       []string
	urls        []string
	workflows   []workflow.Proposal
	manifest    *synthesis.BrandManifest
	sync        orchestrator.SyncResult
	err         error
	lastSteer   string
	lastTask    string
	lastType    string
	executedIDs []string
}

func (f *fakeBrand) Status() orchestrator.Status {
	return orchestrator.Status{Roots: f.roots, GlobalFocus: f.focus, Workflows: map[string]int{}}
}

func (f *fakeBrand) SetFocus(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", orchestrator.ErrEmptyFocus
	}
	f.focus = strings.TrimSpace(text)
	return f.focus, nil
}

func (f *fakeBrand) AddDiscoveryPath(ctx context.Context, path string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.roots = append(f.roots, path)
	return f.roots, nil
}

func (f *fakeBrand) AddInspirationURL(ctx context.Context, rawURL string) ([]string, error) {
	if !strings.HasPrefix(rawURL, "http") {
		return nil, orchestrator.ErrInvalidURL
	}
	f.urls = append(f.urls, rawURL)
	return f.urls, nil
}

func (f *fakeBrand) ProcessBucket(ctx context.Context, steer string) ([]workflow.Proposal, error) {
	f.lastSteer = steer
	return f.workflows, f.err
}

func (f *fakeBrand) ListWorkflows() []workflow.Proposal {
	return f.workflows
}

func (f *fakeBrand) ExecuteWorkflow(ctx context.Context, id string) (workflow.Proposal, error) {
	f.executedIDs = append(f.executedIDs, id)
	for _, p := range f.workflows {
		if p.ID == id {
			p.Status = workflow.StatusCompleted
			return p, nil
		}
	}
	return workflow.Proposal{}, workflow.ErrWorkflowNotFound
}

func (f *fakeBrand) Sync(ctx context.Context) (orchestrator.SyncResult, error) {
	return f.sync, f.err
}

func (f *fakeBrand) GenerateContent(ctx context.Context, task, taskType string) (*providers.Response, error) {
	f.lastTask, f.lastType = task, taskType
	return &providers.Response{Content: "drafted: " + task, ProviderName: "fake", ModelName: "fake-1"}, nil
}

func (f *fakeBrand) Manifest() (*synthesis.BrandManifest, bool) {
	return f.manifest, f.manifest != nil
}

func callTool(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func newTestServer(t *testing.T, brand *fakeBrand) *Server {
	t.Helper()
	return NewServer(brand, DefaultConfig())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "phoenix" {
		t.Errorf("Name = %q, want %q", cfg.Name, "phoenix")
	}
	if cfg.BasePath != "/mcp" {
		t.Errorf("BasePath = %q, want %q", cfg.BasePath, "/mcp")
	}
}

func TestSetFocusTool(t *testing.T) {
	brand := &fakeBrand{}
	s := newTestServer(t, brand)

	result, err := s.handleSetFocus(context.Background(), callTool(toolSetFocus, map[string]any{"focus": "  Launch week  "}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got %q", mcplib.GetTextFromContent(result.Content))
	}
	typed, ok := result.StructuredContent.(focusResult)
	if !ok {
		t.Fatalf("expected structured content %T, got %T", focusResult{}, result.StructuredContent)
	}
	if typed.Focus != "Launch week" {
		t.Errorf("Focus = %q, want %q", typed.Focus, "Launch week")
	}
}

func TestSetFocusToolRejectsMissingFocus(t *testing.T) {
	s := newTestServer(t, &fakeBrand{})

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing", map[string]any{}},
		{"blank", map[string]any{"focus": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleSetFocus(context.Background(), callTool(toolSetFocus, tt.args))
			if err != nil {
				t.Fatalf("unexpected protocol error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected tool error result")
			}
		})
	}
}

func TestAddDiscoveryRootToolSurfacesErrors(t *testing.T) {
	brand := &fakeBrand{err: orchestrator.ErrPathNotFound}
	s := newTestServer(t, brand)

	result, err := s.handleAddDiscoveryRoot(context.Background(), callTool(toolAddDiscoveryRoot, map[string]any{"path": "/nope"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error result")
	}
	if !strings.Contains(mcplib.GetTextFromContent(result.Content), orchestrator.ErrPathNotFound.Error()) {
		t.Errorf("unexpected error text %q", mcplib.GetTextFromContent(result.Content))
	}
}

func TestAddInspirationURLTool(t *testing.T) {
	brand := &fakeBrand{}
	s := newTestServer(t, brand)

	result, err := s.handleAddInspirationURL(context.Background(), callTool(toolAddInspirationURL, map[string]any{"url": "https://example.com"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	typed, ok := result.StructuredContent.(inspirationResult)
	if !ok {
		t.Fatalf("expected structured content %T, got %T", inspirationResult{}, result.StructuredContent)
	}
	if len(typed.URLs) != 1 || typed.URLs[0] != "https://example.com" {
		t.Errorf("URLs = %v", typed.URLs)
	}
}

func TestProposeAndListWorkflowTools(t *testing.T) {
	brand := &fakeBrand{
		workflows: []workflow.Proposal{
			{ID: "wf_1", AssetName: "a.png", Status: workflow.StatusPending},
			{ID: "wf_2", AssetName: "b.mp4", Status: workflow.StatusCompleted},
		},
	}
	s := newTestServer(t, brand)

	result, err := s.handleProposeWorkflows(context.Background(), callTool(toolProposeWorkflows, map[string]any{"steer": "go bold"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got %q", mcplib.GetTextFromContent(result.Content))
	}
	if brand.lastSteer != "go bold" {
		t.Errorf("steer = %q, want %q", brand.lastSteer, "go bold")
	}

	result, err = s.handleListWorkflows(context.Background(), callTool(toolListWorkflows, map[string]any{"status": "pending"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	typed := result.StructuredContent.(workflowsResult)
	if len(typed.Workflows) != 1 || typed.Workflows[0].ID != "wf_1" {
		t.Errorf("filtered workflows = %+v", typed.Workflows)
	}
}

func TestProposeWorkflowsToolEmptyBucket(t *testing.T) {
	s := newTestServer(t, &fakeBrand{})

	result, err := s.handleProposeWorkflows(context.Background(), callTool(toolProposeWorkflows, nil))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	typed := result.StructuredContent.(workflowsResult)
	if typed.Workflows == nil {
		t.Error("expected empty, non-nil workflows")
	}
	if !strings.Contains(mcplib.GetTextFromContent(result.Content), "no workflows") {
		t.Errorf("unexpected text %q", mcplib.GetTextFromContent(result.Content))
	}
}

func TestExecuteWorkflowToolUnknownID(t *testing.T) {
	brand := &fakeBrand{}
	s := newTestServer(t, brand)

	result, err := s.handleExecuteWorkflow(context.Background(), callTool(toolExecuteWorkflow, map[string]any{"id": "nonexistent-id"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error result")
	}
	if len(brand.executedIDs) != 1 || brand.executedIDs[0] != "nonexistent-id" {
		t.Errorf("executed = %v", brand.executedIDs)
	}
}

func TestSyncBrandToolReportsSynthesisFailure(t *testing.T) {
	brand := &fakeBrand{
		sync: orchestrator.SyncResult{
			Learn: orchestrator.LearnResult{Contexts: 3, Assets: 2},
			Synthesis: synthesis.Result{
				Error: "malformed brand manifest",
				Err:   synthesis.ErrMalformedManifest,
			},
		},
	}
	s := newTestServer(t, brand)

	result, err := s.handleSyncBrand(context.Background(), callTool(toolSyncBrand, nil))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	typed := result.StructuredContent.(syncResult)
	if typed.Status != "error" {
		t.Errorf("Status = %q, want error", typed.Status)
	}
	if typed.Contexts != 3 || typed.Assets != 2 {
		t.Errorf("counts = %d/%d, want 3/2", typed.Contexts, typed.Assets)
	}
	if typed.Manifest != nil {
		t.Error("expected no manifest on failure")
	}
}

func TestSyncBrandToolPersistenceError(t *testing.T) {
	s := newTestServer(t, &fakeBrand{err: errors.New("disk full")})

	result, err := s.handleSyncBrand(context.Background(), callTool(toolSyncBrand, nil))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error result")
	}
}

func TestGenerateContentTool(t *testing.T) {
	brand := &fakeBrand{}
	s := newTestServer(t, brand)

	result, err := s.handleGenerateContent(context.Background(), callTool(toolGenerateContent, map[string]any{
		"task":      "launch tweet",
		"task_type": providers.TaskCreative,
	}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	typed := result.StructuredContent.(contentResult)
	if typed.Content != "drafted: launch tweet" {
		t.Errorf("Content = %q", typed.Content)
	}
	if brand.lastType != providers.TaskCreative {
		t.Errorf("task_type = %q, want %q", brand.lastType, providers.TaskCreative)
	}
}

func TestReadResource(t *testing.T) {
	brand := &fakeBrand{focus: "Growth"}
	s := newTestServer(t, brand)

	req := mcplib.ReadResourceRequest{}
	req.Params.URI = ResourceURIStatus
	contents, err := s.handleReadResource(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadResource() error = %v", err)
	}
	text, ok := contents[0].(mcplib.TextResourceContents)
	if !ok {
		t.Fatalf("expected text contents, got %T", contents[0])
	}
	if !strings.Contains(text.Text, `"global_focus": "Growth"`) {
		t.Errorf("status resource missing focus: %s", text.Text)
	}

	req.Params.URI = ResourceURIManifest
	if _, err := s.handleReadResource(context.Background(), req); err == nil {
		t.Error("expected not found without a manifest")
	}

	req.Params.URI = "phoenix://unknown"
	_, err = s.handleReadResource(context.Background(), req)
	var notFound *ResourceNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected ResourceNotFoundError, got %v", err)
	}
}

func TestIsValidResourceURI(t *testing.T) {
	for _, info := range AvailableResources() {
		if !IsValidResourceURI(info.URI) {
			t.Errorf("IsValidResourceURI(%q) = false", info.URI)
		}
	}
	if IsValidResourceURI("memory://index") {
		t.Error("unexpected valid URI")
	}
}

func TestStartStopEventListener(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	s := NewServer(&fakeBrand{}, DefaultConfig(), WithBus(bus))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.unsubscribe == nil {
		t.Fatal("expected event subscriptions")
	}
	if err := bus.Publish(context.Background(), events.NewManifestSynthesized("Acme", "Growth", 0)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.unsubscribe != nil {
		t.Error("expected subscriptions cleared after Stop")
	}
}
