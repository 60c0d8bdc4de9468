package sync

import (
	"strings"
	"testing"

	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/orchestrator"
	"github.com/leefowlercu/phoenix/internal/synthesis"
)

func TestFormatSync(t *testing.T) {
	learn := orchestrator.LearnResult{Roots: []string{"/a", "/b"}, Contexts: 7, Assets: 3}

	tests := []struct {
		name     string
		resp     daemon.SyncResponse
		withDiff bool
		want     []string
		notWant  []string
	}{
		{
			name: "success",
			resp: daemon.SyncResponse{
				Status:   "success",
				Learn:    learn,
				Manifest: &synthesis.BrandManifest{BrandIdentity: synthesis.BrandIdentity{Name: "Phoenix"}, ActiveFocus: "Launch"},
			},
			want:    []string{"success", "7", "Phoenix", "Launch"},
			notWant: []string{"no manifest changes"},
		},
		{
			name:    "synthesis failed",
			resp:    daemon.SyncResponse{Status: "error", Learn: learn, Error: "no LLM provider available"},
			want:    []string{"error", "no LLM provider available"},
			notWant: []string{"Brand"},
		},
		{
			name:     "diff",
			resp:     daemon.SyncResponse{Status: "success", Learn: learn, Diff: "--- a\n+++ b\n-old\n+new\n"},
			withDiff: true,
			want:     []string{"+new"},
		},
		{
			name:     "empty diff",
			resp:     daemon.SyncResponse{Status: "success", Learn: learn},
			withDiff: true,
			want:     []string{"no manifest changes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatSync(&tt.resp, tt.withDiff)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("formatSync() missing %q in:\n%s", want, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("formatSync() unexpectedly contains %q", nw)
				}
			}
		})
	}
}
