package subcommands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/testutil"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())
	return cmd, buf
}

func TestUploadAndProcess(t *testing.T) {
	env := testutil.NewTestEnv(t)
	dir := env.CreateTestDir("assets")
	clip := env.CreateTestFile(dir, "clip.mp4", "not really a video")

	var (
		mu       sync.Mutex
		uploaded []string
		steer    string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bucket/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		for _, fh := range r.MultipartForm.File["files"] {
			uploaded = append(uploaded, fh.Filename)
		}
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(daemon.UploadResponse{Status: "success", Uploaded: []string{"clip.mp4"}})
	})
	mux.HandleFunc("POST /api/workflow/propose", func(w http.ResponseWriter, r *http.Request) {
		var req daemon.ProposeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		steer = req.Steer
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(daemon.WorkflowsResponse{
			Status: "success",
			Workflows: []workflow.Proposal{{
				ID:        "wf_9",
				AssetName: "clip.mp4",
				Status:    workflow.StatusAwaitingApproval,
				Plan:      workflow.Plan{Title: "Vertical teaser"},
			}},
		})
	})
	env.ServeDaemon(mux)

	uploadProcess = true
	uploadSteer = "vertical video"
	t.Cleanup(func() {
		uploadProcess = false
		uploadSteer = ""
	})

	cmd, buf := newTestCmd()
	if err := validateUpload(cmd, []string{clip}); err != nil {
		t.Fatalf("validateUpload() error = %v", err)
	}
	if err := runUpload(cmd, []string{clip}); err != nil {
		t.Fatalf("runUpload() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(uploaded) != 1 || uploaded[0] != "clip.mp4" {
		t.Errorf("uploaded = %v", uploaded)
	}
	if steer != "vertical video" {
		t.Errorf("steer = %q", steer)
	}
	for _, want := range []string{"Uploaded", "clip.mp4", "wf_9", "Vertical teaser"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q: %q", want, buf.String())
		}
	}
}

func TestValidateUpload(t *testing.T) {
	env := testutil.NewTestEnv(t)
	dir := env.CreateTestDir("assets")

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{dir + "/nope.png"}},
		{"directory", []string{dir}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCmd()
			if err := validateUpload(cmd, tt.args); err == nil {
				t.Error("validateUpload() expected error")
			}
		})
	}
}

func TestProcess_DaemonError(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.ServeDaemon(http.NotFoundHandler())

	cmd, _ := newTestCmd()
	err := runProcess(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("runProcess() error = %v, want status 404", err)
	}
}
