package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
)

func TestWrapClientError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := daemonclient.New(config.DaemonConfig{}, daemonclient.WithBaseURL(addr))
	_, refused := c.Ready(context.Background())

	statusErr := &daemonclient.StatusError{Code: http.StatusConflict, Message: "busy"}

	tests := []struct {
		name            string
		err             error
		wantUnreachable bool
	}{
		{"nil", nil, false},
		{"refused", refused, true},
		{"status", statusErr, false},
		{"wrapped status", fmt.Errorf("outer; %w", statusErr), false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapClientError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("WrapClientError(nil) = %v", got)
				}
				return
			}
			if errors.Is(got, ErrDaemonUnreachable) != tt.wantUnreachable {
				t.Errorf("WrapClientError(%v) = %v, unreachable want %v", tt.err, got, tt.wantUnreachable)
			}
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]string{"focus": "Launch week"}); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"focus\": \"Launch week\"") {
		t.Errorf("PrintJSON() = %q", buf.String())
	}
}
