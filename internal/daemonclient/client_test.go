package daemonclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/platforms"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

func TestNormalizeBind(t *testing.T) {
	tests := []struct {
		bind string
		want string
	}{
		{"", "127.0.0.1"},
		{"0.0.0.0", "127.0.0.1"},
		{"::", "127.0.0.1"},
		{"192.168.1.4", "192.168.1.4"},
		{"::1", "[::1]"},
		{"[::1]", "[::1]"},
	}
	for _, tt := range tests {
		if got := NormalizeBind(tt.bind); got != tt.want {
			t.Errorf("NormalizeBind(%q) = %q, want %q", tt.bind, got, tt.want)
		}
	}
}

func TestResolveBaseURL(t *testing.T) {
	got := ResolveBaseURL(config.DaemonConfig{HTTPBind: "0.0.0.0", HTTPPort: 8000})
	if got != "http://127.0.0.1:8000" {
		t.Errorf("ResolveBaseURL() = %q", got)
	}
}

func TestNewFromConfig(t *testing.T) {
	if _, err := NewFromConfig(nil); err == nil {
		t.Error("NewFromConfig(nil) expected error")
	}

	cfg := config.NewDefaultConfig()
	c, err := NewFromConfig(&cfg, WithTimeout(time.Minute))
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if c.BaseURL() != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
	if c.httpClient.Timeout != time.Minute {
		t.Errorf("timeout = %v, want 1m", c.httpClient.Timeout)
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.DaemonConfig{}, WithBaseURL(srv.URL))
}

func TestClient_SetFocus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/focus/update" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req daemon.FocusRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(daemon.FocusResponse{Status: "success", Focus: req.Focus})
	}))

	got, err := c.SetFocus(context.Background(), "Launch week")
	if err != nil {
		t.Fatalf("SetFocus() error = %v", err)
	}
	if got.Focus != "Launch week" {
		t.Errorf("Focus = %q", got.Focus)
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/manifest":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"no brand manifest synthesized yet"}`)
		case "/api/workflow/execute/wf-1":
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"error":"invalid workflow transition"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))

	_, err := c.Manifest(context.Background())
	if !IsNotFound(err) {
		t.Errorf("Manifest() error = %v, want not found", err)
	}
	if err.Error() != "daemon request failed; no brand manifest synthesized yet" {
		t.Errorf("Manifest() error = %q", err)
	}

	_, err = c.Execute(context.Background(), "wf-1")
	if IsNotFound(err) || err == nil {
		t.Errorf("Execute() error = %v, want conflict", err)
	}

	_, err = c.Status(context.Background())
	if err == nil || err.Error() != "daemon request failed; status 502" {
		t.Errorf("Status() error = %v", err)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := New(config.DaemonConfig{}, WithBaseURL(addr))
	if _, err := c.Ready(context.Background()); err == nil {
		t.Error("Ready() expected error against closed server")
	}
}

func TestClient_Upload(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for name, content := range map[string]string{"logo.png": "png", "brief.md": "# brief"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var names []string
		for _, fh := range r.MultipartForm.File["files"] {
			names = append(names, fh.Filename)
		}
		sort.Strings(names)
		_ = json.NewEncoder(w).Encode(daemon.UploadResponse{Status: "success", Uploaded: names})
	}))

	got, err := c.Upload(context.Background(), paths)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(got.Uploaded) != 2 || got.Uploaded[0] != "brief.md" || got.Uploaded[1] != "logo.png" {
		t.Errorf("Uploaded = %v", got.Uploaded)
	}

	if _, err := c.Upload(context.Background(), nil); err == nil {
		t.Error("Upload(nil) expected error")
	}
	if _, err := c.Upload(context.Background(), []string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("Upload(missing) expected error")
	}
}

func TestClient_WorkflowRoundTrip(t *testing.T) {
	proposals := []workflow.Proposal{{ID: "wf-1", AssetName: "logo.png", Status: workflow.StatusAwaitingApproval}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/workflow/propose", func(w http.ResponseWriter, r *http.Request) {
		var req daemon.ProposeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Steer != "video first" {
			t.Errorf("steer = %q", req.Steer)
		}
		_ = json.NewEncoder(w).Encode(daemon.WorkflowsResponse{Status: "success", Workflows: proposals})
	})
	mux.HandleFunc("GET /api/workflow/pending", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(daemon.WorkflowsResponse{Workflows: proposals})
	})
	mux.HandleFunc("POST /api/workflow/execute/{id}", func(w http.ResponseWriter, r *http.Request) {
		p := proposals[0]
		p.Status = workflow.StatusCompleted
		_ = json.NewEncoder(w).Encode(p)
	})
	mux.HandleFunc("POST /api/platforms/add", func(w http.ResponseWriter, r *http.Request) {
		var req daemon.PlatformRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(daemon.PlatformResponse{
			Status:   "success",
			Platform: platforms.Platform{Name: req.Name, Type: req.Config.Type, Status: "connected"},
		})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	proposed, err := c.Propose(ctx, "video first")
	if err != nil || len(proposed.Workflows) != 1 {
		t.Fatalf("Propose() = %+v, %v", proposed, err)
	}
	pending, err := c.Pending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("Pending() = %+v, %v", pending, err)
	}
	done, err := c.Execute(ctx, "wf-1")
	if err != nil || done.Status != workflow.StatusCompleted {
		t.Fatalf("Execute() = %+v, %v", done, err)
	}
	pl, err := c.AddPlatform(ctx, "blog", platforms.Config{Type: "webhook", URL: "http://example.com/hook"})
	if err != nil || pl.Platform.Name != "blog" || pl.Platform.Type != "webhook" {
		t.Fatalf("AddPlatform() = %+v, %v", pl, err)
	}
}
