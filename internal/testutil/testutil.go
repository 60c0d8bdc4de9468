// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/phoenix/internal/config"
)

// TestEnv provides an isolated test environment with its own config directory
// and workspace.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
	Workspace string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths, ensuring complete
// isolation even when tests run in parallel across packages.
// Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	base := t.TempDir()
	configDir := filepath.Join(base, "config")
	workspace := filepath.Join(base, "workspace")
	for _, dir := range []string{configDir, workspace} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create test dir %s: %v", dir, err)
		}
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv("PHOENIX_CONFIG_DIR", configDir)
	t.Setenv("PHOENIX_LOG_FILE", filepath.Join(configDir, "phoenix.log"))
	t.Setenv("PHOENIX_DAEMON_PID_FILE", filepath.Join(configDir, "daemon.pid"))
	t.Setenv("PHOENIX_WORKSPACE_ROOT", workspace)
	t.Setenv("PHOENIX_WORKFLOWS_JOURNAL_PATH", filepath.Join(workspace, "workflows.db"))
	t.Setenv("PHOENIX_BROADCAST_MESSAGE_DELAY_MS", "0")

	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}

	env := &TestEnv{
		t:         t,
		ConfigDir: configDir,
		Workspace: workspace,
	}

	t.Cleanup(func() {
		config.Reset()
	})

	return env
}

// JournalPath returns the path where the test workflow journal will be created.
func (e *TestEnv) JournalPath() string {
	return filepath.Join(e.Workspace, "workflows.db")
}

// CreateTestDir creates a test directory within the test environment's temp space.
// Returns the absolute path to the created directory.
func (e *TestEnv) CreateTestDir(name string) string {
	e.t.Helper()

	testDataDir := filepath.Join(e.t.TempDir(), "testdata", name)
	if err := os.MkdirAll(testDataDir, 0755); err != nil {
		e.t.Fatalf("failed to create test dir %s: %v", name, err)
	}
	return testDataDir
}

// CreateTestFile creates a test file with the given content, creating parent
// directories as needed. Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(dir, name, content string) string {
	e.t.Helper()

	filePath := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		e.t.Fatalf("failed to create parent dir for %s: %v", filePath, err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", filePath, err)
	}
	return filePath
}

// ServeDaemon starts h as a stand-in daemon and reloads config so daemon
// clients built from it talk to h. Returns the server URL.
func (e *TestEnv) ServeDaemon(h http.Handler) string {
	e.t.Helper()

	srv := httptest.NewServer(h)
	e.t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		e.t.Fatalf("failed to parse test server URL: %v", err)
	}
	e.t.Setenv("PHOENIX_DAEMON_HTTP_BIND", u.Hostname())
	e.t.Setenv("PHOENIX_DAEMON_HTTP_PORT", u.Port())

	config.Reset()
	if err := config.Init(); err != nil {
		e.t.Fatalf("failed to reinitialize test config: %v", err)
	}
	return srv.URL
}
