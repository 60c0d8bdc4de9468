package subcommands

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/servicemanager"
)

type nopExecutor struct{}

func (nopExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return nil, nil
}

func useLinuxServiceManager(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	orig := newServiceManager
	newServiceManager = func() (servicemanager.Manager, error) {
		return servicemanager.New(servicemanager.PlatformLinux,
			servicemanager.WithHomeDir(home),
			servicemanager.WithBinaryPath("/opt/phoenix/bin/phoenix"),
			servicemanager.WithExecutor(nopExecutor{}),
		)
	}
	t.Cleanup(func() { newServiceManager = orig })
	return home
}

func newCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestInstall_Print(t *testing.T) {
	useLinuxServiceManager(t)
	installPrint = true
	t.Cleanup(func() { installPrint = false })

	cmd, buf := newCmd()
	if err := runInstall(cmd, nil); err != nil {
		t.Fatalf("runInstall() error = %v", err)
	}
	if !strings.Contains(buf.String(), "ExecStart=/opt/phoenix/bin/phoenix daemon start") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestInstallThenUninstall(t *testing.T) {
	useLinuxServiceManager(t)

	cmd, buf := newCmd()
	if err := runUninstall(cmd, nil); err != nil {
		t.Fatalf("runUninstall() error = %v", err)
	}
	if !strings.Contains(buf.String(), "not installed") {
		t.Errorf("uninstall before install output = %q", buf.String())
	}

	cmd, buf = newCmd()
	if err := runInstall(cmd, nil); err != nil {
		t.Fatalf("runInstall() error = %v", err)
	}
	path := strings.TrimSpace(strings.TrimPrefix(buf.String(), "Installed service at "))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("unit file %q not written: %v", path, err)
	}

	cmd, buf = newCmd()
	if err := runUninstall(cmd, nil); err != nil {
		t.Fatalf("runUninstall() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Removed service at") {
		t.Errorf("uninstall output = %q", buf.String())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("unit file still present after uninstall")
	}
}
