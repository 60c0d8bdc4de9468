package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

const (
	toolBrandStatus       = "brand_status"
	toolSetFocus          = "set_focus"
	toolAddDiscoveryRoot  = "add_discovery_root"
	toolAddInspirationURL = "add_inspiration_url"
	toolProposeWorkflows  = "propose_workflows"
	toolListWorkflows     = "list_workflows"
	toolExecuteWorkflow   = "execute_workflow"
	toolSyncBrand         = "sync_brand"
	toolGenerateContent   = "generate_content"
)

type focusResult struct {
	Status string `json:"status"`
	Focus  string `json:"focus"`
}

type rootsResult struct {
	Status string   `json:"status"`
	Roots  []string `json:"roots"`
}

type inspirationResult struct {
	Status string   `json:"status"`
	URLs   []string `json:"urls"`
}

type workflowsResult struct {
	Status    string              `json:"status,omitempty"`
	Workflows []workflow.Proposal `json:"workflows"`
}

type syncResult struct {
	Status   string                   `json:"status"`
	Manifest *synthesis.BrandManifest `json:"manifest,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Diff     string                   `json:"diff,omitempty"`
	Contexts int                      `json:"contexts"`
	Assets   int                      `json:"assets"`
}

type contentResult struct {
	Content  string `json:"content"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (s *Server) registerTools() {
	s.addTool(mcp.NewTool(
		toolBrandStatus,
		mcp.WithTitleAnnotation("Brand Status"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDescription("Current discovery roots, agents, platforms, focus and workflow counts."),
	), s.handleBrandStatus)

	s.addTool(mcp.NewTool(
		toolSetFocus,
		mcp.WithTitleAnnotation("Set Focus"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDescription("Replace the global strategic focus that steers planning."),
		mcp.WithString("focus", mcp.Required(), mcp.MinLength(1), mcp.Description("New focus text.")),
		mcp.WithSchemaAdditionalProperties(false),
	), s.handleSetFocus)

	s.addTool(mcp.NewTool(
		toolAddDiscoveryRoot,
		mcp.WithTitleAnnotation("Add Discovery Root"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDescription("Track an existing directory as a discovery root."),
		mcp.WithString("path", mcp.Required(), mcp.MinLength(1), mcp.Description("Directory path.")),
		mcp.WithSchemaAdditionalProperties(false),
	), s.handleAddDiscoveryRoot)

	s.addTool(mcp.NewTool(
		toolAddInspirationURL,
		mcp.WithTitleAnnotation("Add Inspiration URL"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDescription("Add a web page to read during the next brand sync."),
		mcp.WithString("url", mcp.Required(), mcp.MinLength(1), mcp.Description("http or https URL.")),
		mcp.WithSchemaAdditionalProperties(false),
	), s.handleAddInspirationURL)

	s.addTool(mcp.NewTool(
		toolProposeWorkflows,
		mcp.WithTitleAnnotation("Propose Workflows"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithDescription("Propose one workflow per asset in the bucket."),
		mcp.WithString("steer", mcp.Description("Optional steering text for the planner.")),
		mcp.WithSchemaAdditionalProperties(false),
	), s.handleProposeWorkflows)

	s.addTool(mcp.NewTool(
		toolListWorkflows,
		mcp.WithTitleAnnotation("List Workflows"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDescription("Every known workflow, pending and historical."),
		mcp.WithString("status", mcp.Description("Optional status filter.")),
		mcp.WithSchemaAdditionalProperties(false),
	), s.handleListWorkflows)

	s.addTool(mcp.NewTool(
		toolExecuteWorkflow,
		mcp.WithTitleAnnotation("Execute Workflow"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithDescription("Run a pending workflow, post to its platform and archive its asset."),
		mcp.WithString("id", mcp.Required(), mcp.MinLength(1), mcp.Description("Workflow identifier.")),
		mcp.WithSchemaAdditionalProperties(false),
	), s.handleExecuteWorkflow)

	s.addTool(mcp.NewTool(
		toolSyncBrand,
		mcp.WithTitleAnnotation("Sync Brand"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithDescription("Rescan discovery roots and synthesize a new brand manifest."),
	), s.handleSyncBrand)

	s.addTool(mcp.NewTool(
		toolGenerateContent,
		mcp.WithTitleAnnotation("Generate Content"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDescription("Draft content for a task in the brand's voice."),
		mcp.WithString("task", mcp.Required(), mcp.MinLength(1), mcp.Description("What to write.")),
		mcp.WithString("task_type",
			mcp.Enum(providers.TaskDefault, providers.TaskSynthesis, providers.TaskPlanning,
				providers.TaskStrategy, providers.TaskCreative, providers.TaskAnalytical),
			mcp.Description("Routing hint for provider selection."),
		),
		mcp.WithSchemaAdditionalProperties(false),
	), s.handleGenerateContent)
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	name := tool.Name
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics.RecordMCPRequest(name)
		return handler(ctx, request)
	})
}

func (s *Server) handleBrandStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.brand.Status()
	text := fmt.Sprintf("focus %q; %d roots, %d agents, %d platforms", st.GlobalFocus, len(st.Roots), len(st.Agents), len(st.Platforms))
	return mcp.NewToolResultStructured(st, text), nil
}

func (s *Server) handleSetFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	focus, err := request.RequireString("focus")
	if err != nil {
		return mcp.NewToolResultError("focus is required"), nil
	}
	applied, err := s.brand.SetFocus(ctx, focus)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(focusResult{Status: "success", Focus: applied}, "focus set to "+applied), nil
}

func (s *Server) handleAddDiscoveryRoot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	roots, err := s.brand.AddDiscoveryPath(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(rootsResult{Status: "success", Roots: roots}, strings.Join(roots, "\n")), nil
}

func (s *Server) handleAddInspirationURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}
	urls, err := s.brand.AddInspirationURL(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(inspirationResult{Status: "success", URLs: urls}, strings.Join(urls, "\n")), nil
}

func (s *Server) handleProposeWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steer := request.GetString("steer", "")
	proposals, err := s.brand.ProcessBucket(ctx, steer)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to process bucket: %v", err)), nil
	}
	if proposals == nil {
		proposals = []workflow.Proposal{}
	}
	res := workflowsResult{Status: "success", Workflows: proposals}
	return mcp.NewToolResultStructured(res, renderWorkflows(proposals)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := strings.TrimSpace(request.GetString("status", ""))
	all := s.brand.ListWorkflows()
	out := make([]workflow.Proposal, 0, len(all))
	for _, p := range all {
		if filter != "" && string(p.Status) != filter {
			continue
		}
		out = append(out, p)
	}
	return mcp.NewToolResultStructured(workflowsResult{Workflows: out}, renderWorkflows(out)), nil
}

func (s *Server) handleExecuteWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	p, err := s.brand.ExecuteWorkflow(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(p, fmt.Sprintf("workflow %s %s", p.ID, p.Status)), nil
}

func (s *Server) handleSyncBrand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.brand.Sync(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
	}

	out := syncResult{
		Status:   "success",
		Manifest: res.Synthesis.Manifest,
		Diff:     res.Synthesis.Diff,
		Contexts: res.Learn.Contexts,
		Assets:   res.Learn.Assets,
	}
	text := "brand manifest synthesized"
	if res.Synthesis.Failed() {
		out.Status = "error"
		out.Error = res.Synthesis.Error
		text = "brand synthesis failed: " + res.Synthesis.Error
	}
	return mcp.NewToolResultStructured(out, text), nil
}

func (s *Server) handleGenerateContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := request.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError("task is required"), nil
	}
	resp, err := s.brand.GenerateContent(ctx, task, request.GetString("task_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := contentResult{Content: resp.Content, Provider: resp.ProviderName, Model: resp.ModelName}
	return mcp.NewToolResultStructured(res, resp.Content), nil
}

func renderWorkflows(proposals []workflow.Proposal) string {
	if len(proposals) == 0 {
		return "no workflows"
	}
	var b strings.Builder
	for _, p := range proposals {
		fmt.Fprintf(&b, "%s [%s] %s -> %s\n", p.ID, p.Status, p.AssetName, p.Plan.Platform)
	}
	return b.String()
}
