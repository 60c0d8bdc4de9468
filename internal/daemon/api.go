package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leefowlercu/phoenix/internal/broadcast"
	"github.com/leefowlercu/phoenix/internal/orchestrator"
	"github.com/leefowlercu/phoenix/internal/platforms"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/vbrain"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

const (
	maxUploadMemory = 32 << 20
	syncTimeout     = 30 * time.Minute
)

// Brand is the orchestrator surface served by the API.
type Brand interface {
	Status() orchestrator.Status
	Manifest() (*synthesis.BrandManifest, bool)
	SetFocus(ctx context.Context, text string) (string, error)
	DiscoverSystemRoots() []string
	AddDiscoveryPath(ctx context.Context, path string) ([]string, error)
	AddInspirationURL(ctx context.Context, rawURL string) ([]string, error)
	AddPlatform(ctx context.Context, name string, cfg platforms.Config) (platforms.Platform, error)
	IntegrateAgent(ctx context.Context, name, agentURL string) (vbrain.Agent, error)
	Upload(name string, r io.Reader) (string, error)
	ProcessBucket(ctx context.Context, steer string) ([]workflow.Proposal, error)
	ListWorkflows() []workflow.Proposal
	ExecuteWorkflow(ctx context.Context, id string) (workflow.Proposal, error)
	Sync(ctx context.Context) (orchestrator.SyncResult, error)
	GenerateContent(ctx context.Context, task, taskType string) (*providers.Response, error)
}

// APIConfig holds what the API serves besides the brand operations.
type APIConfig struct {
	BucketDir    string
	ProcessedDir string
	Hub          *broadcast.Hub
	Jobs         *JobRunner
	Logger       *slog.Logger
}

// API serves the brand operations as JSON over HTTP.
type API struct {
	brand  Brand
	cfg    APIConfig
	logger *slog.Logger
}

// NewAPI creates the API. A nil Jobs runner disables job tracking.
func NewAPI(brand Brand, cfg APIConfig) *API {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{brand: brand, cfg: cfg, logger: logger}
}

func (a *API) mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", a.handleStatus)
		r.Get("/manifest", a.handleManifest)
		r.Post("/focus/update", a.handleFocusUpdate)
		r.Get("/system/discover", a.handleDiscover)
		r.Post("/roots/add", a.handleAddRoot)
		r.Post("/inspiration/add", a.handleAddInspiration)
		r.Post("/platforms/add", a.handleAddPlatform)
		r.Post("/agents/integrate", a.handleIntegrateAgent)
		r.Post("/bucket/upload", a.handleUpload)
		r.Post("/workflow/propose", a.handlePropose)
		r.Get("/workflow/pending", a.handlePending)
		r.Post("/workflow/execute/{id}", a.handleExecute)
		r.Post("/sync", a.handleSync)
		r.Post("/content/generate", a.handleGenerate)
		if a.cfg.Hub != nil {
			r.Handle("/ws", broadcast.WebsocketHandler(a.cfg.Hub, a.logger))
		}
	})

	if a.cfg.BucketDir != "" {
		r.Handle("/bucket/*", http.StripPrefix("/bucket/", http.FileServer(http.Dir(a.cfg.BucketDir))))
	}
	if a.cfg.ProcessedDir != "" {
		r.Handle("/processed/*", http.StripPrefix("/processed/", http.FileServer(http.Dir(a.cfg.ProcessedDir))))
	}
}

// Request and response bodies.
type (
	FocusRequest struct {
		Focus string `json:"focus"`
	}
	FocusResponse struct {
		Status string `json:"status"`
		Focus  string `json:"focus"`
	}
	DiscoverResponse struct {
		Potential []string `json:"potential"`
	}
	RootRequest struct {
		Path string `json:"path"`
	}
	RootsResponse struct {
		Status string   `json:"status"`
		Roots  []string `json:"roots"`
	}
	InspirationRequest struct {
		URL string `json:"url"`
	}
	InspirationResponse struct {
		Status string   `json:"status"`
		URLs   []string `json:"urls"`
	}
	PlatformRequest struct {
		Name   string           `json:"name"`
		Config platforms.Config `json:"config"`
	}
	PlatformResponse struct {
		Status   string             `json:"status"`
		Platform platforms.Platform `json:"platform"`
	}
	AgentRequest struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	AgentResponse struct {
		Status string       `json:"status"`
		Name   string       `json:"name"`
		Agent  vbrain.Agent `json:"agent"`
	}
	UploadResponse struct {
		Status   string   `json:"status"`
		Uploaded []string `json:"uploaded"`
	}
	ProposeRequest struct {
		Steer string `json:"steer,omitempty"`
	}
	WorkflowsResponse struct {
		Status    string              `json:"status,omitempty"`
		Workflows []workflow.Proposal `json:"workflows"`
	}
	SyncResponse struct {
		Status   string                   `json:"status"`
		Manifest *synthesis.BrandManifest `json:"manifest,omitempty"`
		Error    string                   `json:"error,omitempty"`
		Diff     string                   `json:"diff,omitempty"`
		Learn    orchestrator.LearnResult `json:"learn"`
	}
	ContentRequest struct {
		Task     string `json:"task"`
		TaskType string `json:"task_type,omitempty"`
	}
	ContentResponse struct {
		Status   string `json:"status"`
		Content  string `json:"content"`
		Provider string `json:"provider"`
		Model    string `json:"model"`
	}
)

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.brand.Status())
}

func (a *API) handleManifest(w http.ResponseWriter, r *http.Request) {
	m, ok := a.brand.Manifest()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no brand manifest synthesized yet")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) handleFocusUpdate(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	focus, err := a.brand.SetFocus(r.Context(), req.Focus)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FocusResponse{Status: "success", Focus: focus})
}

func (a *API) handleDiscover(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DiscoverResponse{Potential: a.brand.DiscoverSystemRoots()})
}

func (a *API) handleAddRoot(w http.ResponseWriter, r *http.Request) {
	var req RootRequest
	if !decodeBody(w, r, &req) {
		return
	}
	roots, err := a.brand.AddDiscoveryPath(r.Context(), req.Path)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RootsResponse{Status: "success", Roots: roots})
}

func (a *API) handleAddInspiration(w http.ResponseWriter, r *http.Request) {
	var req InspirationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	urls, err := a.brand.AddInspirationURL(r.Context(), req.URL)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InspirationResponse{Status: "success", URLs: urls})
}

func (a *API) handleAddPlatform(w http.ResponseWriter, r *http.Request) {
	var req PlatformRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := a.brand.AddPlatform(r.Context(), req.Name, req.Config)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlatformResponse{Status: "success", Platform: p})
}

func (a *API) handleIntegrateAgent(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	agent, err := a.brand.IntegrateAgent(r.Context(), req.Name, req.URL)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AgentResponse{Status: "success", Name: req.Name, Agent: agent})
}

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	uploaded := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "unreadable upload "+fh.Filename)
			return
		}
		name, err := a.brand.Upload(fh.Filename, f)
		_ = f.Close()
		if err != nil {
			a.writeError(w, err)
			return
		}
		uploaded = append(uploaded, name)
	}

	a.logger.Info("bucket upload", "files", len(uploaded))
	writeJSON(w, http.StatusOK, UploadResponse{Status: "success", Uploaded: uploaded})
}

func (a *API) handlePropose(w http.ResponseWriter, r *http.Request) {
	var req ProposeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var proposals []workflow.Proposal
	var err error
	a.runJob(r.Context(), JobPropose, func(ctx context.Context) RunResult {
		proposals, err = a.brand.ProcessBucket(ctx, req.Steer)
		if err != nil {
			return RunResult{Status: RunFailed, Error: err.Error()}
		}
		return RunResult{Status: RunSuccess, Counts: map[string]int{"proposals": len(proposals)}}
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	if proposals == nil {
		proposals = []workflow.Proposal{}
	}
	writeJSON(w, http.StatusOK, WorkflowsResponse{Status: "success", Workflows: proposals})
}

func (a *API) handlePending(w http.ResponseWriter, r *http.Request) {
	list := a.brand.ListWorkflows()
	if list == nil {
		list = []workflow.Proposal{}
	}
	writeJSON(w, http.StatusOK, WorkflowsResponse{Workflows: list})
}

func (a *API) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p workflow.Proposal
	var err error
	a.runJob(r.Context(), JobExecute, func(ctx context.Context) RunResult {
		p, err = a.brand.ExecuteWorkflow(ctx, id)
		if err != nil {
			return RunResult{Status: RunFailed, Error: err.Error(), Details: map[string]any{"workflow": id}}
		}
		status := RunSuccess
		if p.Status == workflow.StatusError || (p.PostResult != nil && !p.PostResult.OK()) {
			status = RunPartial
		}
		return RunResult{Status: status, Details: map[string]any{"workflow": id}}
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleSync(w http.ResponseWriter, r *http.Request) {
	// Sync runs to completion even if the caller disconnects.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), syncTimeout)
	defer cancel()

	var res orchestrator.SyncResult
	var err error
	a.runJob(ctx, JobSync, func(ctx context.Context) RunResult {
		res, err = a.brand.Sync(ctx)
		counts := map[string]int{"contexts": res.Learn.Contexts, "assets": res.Learn.Assets}
		switch {
		case err != nil:
			return RunResult{Status: RunFailed, Error: err.Error(), Counts: counts}
		case res.Synthesis.Failed():
			return RunResult{Status: RunPartial, Error: res.Synthesis.Error, Counts: counts}
		default:
			return RunResult{Status: RunSuccess, Counts: counts}
		}
	})
	if err != nil {
		a.writeError(w, err)
		return
	}

	resp := SyncResponse{
		Status:   "success",
		Manifest: res.Synthesis.Manifest,
		Diff:     res.Synthesis.Diff,
		Learn:    res.Learn,
	}
	if res.Synthesis.Failed() {
		resp.Status = "error"
		resp.Error = res.Synthesis.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := a.brand.GenerateContent(r.Context(), req.Task, req.TaskType)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ContentResponse{
		Status:   "success",
		Content:  resp.Content,
		Provider: resp.ProviderName,
		Model:    resp.ModelName,
	})
}

func (a *API) runJob(ctx context.Context, name string, fn func(context.Context) RunResult) {
	if a.cfg.Jobs == nil {
		fn(ctx)
		return
	}
	a.cfg.Jobs.Run(ctx, name, fn)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	writeJSONError(w, status, err.Error())
}

// statusFor maps operation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, orchestrator.ErrContentUnavailable),
		errors.Is(err, providers.ErrProviderUnavailable),
		errors.Is(err, providers.ErrNoAvailableProvider):
		return http.StatusServiceUnavailable
	case errors.Is(err, orchestrator.ErrEmptyFocus),
		errors.Is(err, orchestrator.ErrEmptyPath),
		errors.Is(err, orchestrator.ErrPathNotFound),
		errors.Is(err, orchestrator.ErrInvalidURL),
		errors.Is(err, orchestrator.ErrInvalidFileName),
		errors.Is(err, orchestrator.ErrNotDirectory),
		errors.Is(err, orchestrator.ErrContentMismatch),
		errors.Is(err, orchestrator.ErrEmptyTask),
		errors.Is(err, platforms.ErrEmptyName),
		errors.Is(err, vbrain.ErrEmptyName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes an optional JSON body into v. It writes a 400 and
// returns false on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		msg := "invalid request body"
		if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
			msg += "; expected application/json"
		}
		writeJSONError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}
