package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer() (*Server, *HealthManager) {
	hm := NewHealthManager()
	return NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"}), hm
}

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		cfg  ServerConfig
		want string
	}{
		{ServerConfig{Port: 8000, Bind: "127.0.0.1"}, "127.0.0.1:8000"},
		{ServerConfig{Port: 0, Bind: ""}, ":0"},
		{ServerConfig{Port: 9000, Bind: "::1"}, "[::1]:9000"},
	}
	for _, tt := range tests {
		if got := tt.cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer()

	w := serve(t, srv.Handler(), http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp LivezResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "alive" {
		t.Errorf("GET /healthz status = %q, want alive", resp.Status)
	}
}

func TestServer_Readyz(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(hm *HealthManager)
		status string
	}{
		{
			name:   "healthy",
			setup:  func(hm *HealthManager) {},
			status: "healthy",
		},
		{
			name: "failed watcher",
			setup: func(hm *HealthManager) {
				hm.UpdateComponent("mcp", ComponentHealth{Status: ComponentStatusRunning})
				hm.UpdateComponent("watcher", ComponentHealth{Status: ComponentStatusFailed, Error: "too many open files"})
			},
			status: "degraded",
		},
		{
			name: "failed sync job",
			setup: func(hm *HealthManager) {
				hm.UpdateJob(JobSync, JobHealth{Status: JobStatusFailed, Error: "scan failed"})
			},
			status: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hm := newTestServer()
			tt.setup(hm)

			w := serve(t, srv.Handler(), http.MethodGet, "/readyz")
			if w.Code != http.StatusOK {
				t.Fatalf("GET /readyz status = %d, want 200", w.Code)
			}
			var resp HealthStatus
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("GET /readyz Status = %q, want %q", resp.Status, tt.status)
			}
			if !resp.Ready {
				t.Error("GET /readyz Ready = false, want true")
			}
		})
	}
}

func TestServer_MountsHandlers(t *testing.T) {
	srv, _ := newTestServer()

	if w := serve(t, srv.Handler(), http.MethodGet, "/metrics"); w.Code != http.StatusNotFound {
		t.Errorf("GET /metrics before SetMetricsHandler status = %d, want 404", w.Code)
	}

	srv.SetMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	srv.SetMCPHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	if w := serve(t, srv.Handler(), http.MethodGet, "/metrics"); w.Code != http.StatusTeapot {
		t.Errorf("GET /metrics status = %d, want %d", w.Code, http.StatusTeapot)
	}
	if w := serve(t, srv.Handler(), http.MethodPost, "/mcp"); w.Code != http.StatusAccepted {
		t.Errorf("POST /mcp status = %d, want %d", w.Code, http.StatusAccepted)
	}
}

func TestServer_CORS(t *testing.T) {
	srv, _ := newTestServer()

	w := serve(t, srv.Handler(), http.MethodOptions, "/api/status")
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	w = serve(t, srv.Handler(), http.MethodGet, "/healthz")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("GET Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestServer_ListenServeShutdown(t *testing.T) {
	srv, _ := newTestServer()
	if srv.Addr() != "" {
		t.Errorf("Addr() before Listen = %q, want empty", srv.Addr())
	}
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after Shutdown")
	}
}

func TestServer_ShutdownBeforeServe(t *testing.T) {
	srv, _ := newTestServer()
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() before Listen error = %v", err)
	}
	if err := srv.Serve(context.Background()); err == nil {
		t.Error("Serve() without Listen expected error")
	}
}
