package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/testutil"
)

func TestRunGenerate(t *testing.T) {
	env := testutil.NewTestEnv(t)

	reqs := make(chan daemon.ContentRequest, 1)
	env.ServeDaemon(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req daemon.ContentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reqs <- req
		_ = json.NewEncoder(w).Encode(daemon.ContentResponse{
			Status:   "success",
			Content:  "Rise with **Phoenix**.",
			Provider: "anthropic",
			Model:    "claude",
		})
	}))

	generateType, generateStyle = "copy", "notty"
	t.Cleanup(func() { generateType, generateStyle = "", "auto" })

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())

	args := []string{"Launch", "tweet"}
	if err := validateGenerate(cmd, args); err != nil {
		t.Fatalf("validateGenerate() error = %v", err)
	}
	if err := runGenerate(cmd, args); err != nil {
		t.Fatalf("runGenerate() error = %v", err)
	}

	got := <-reqs
	if got.Task != "Launch tweet" || got.TaskType != "copy" {
		t.Errorf("request = %+v", got)
	}
	for _, want := range []string{"Phoenix", "anthropic / claude"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q: %q", want, buf.String())
		}
	}
}
