package servicemanager

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

const systemdServiceName = "phoenix.service"

// The daemon reports readiness over sd_notify and reloads config on SIGHUP.
const systemdUnitTemplate = `[Unit]
Description=Phoenix brand operations daemon
After=network-online.target
Wants=network-online.target
StartLimitBurst=5
StartLimitIntervalSec=60

[Service]
Type=notify
ExecStart={{.BinaryPath}} daemon start
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure
RestartSec=5
TimeoutStopSec=45
{{- range .Env}}
Environment="{{index . 0}}={{index . 1}}"
{{- end}}

[Install]
WantedBy=default.target
`

var systemdTmpl = template.Must(template.New("unit").Parse(systemdUnitTemplate))

// systemdManager manages a systemd user unit.
type systemdManager struct {
	*unit
}

func (m *systemdManager) Path() string {
	return filepath.Join(m.homeDir, ".config", "systemd", "user", systemdServiceName)
}

func (m *systemdManager) Render() (string, error) {
	var buf bytes.Buffer
	err := systemdTmpl.Execute(&buf, struct {
		BinaryPath string
		Env        [][2]string
	}{m.binaryPath, m.envPairs()})
	if err != nil {
		return "", fmt.Errorf("failed to render unit file; %w", err)
	}
	return buf.String(), nil
}

func (m *systemdManager) Install(ctx context.Context) error {
	content, err := m.Render()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.Path()), 0755); err != nil {
		return fmt.Errorf("failed to create systemd user directory; %w", err)
	}
	if err := os.WriteFile(m.Path(), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write unit file; %w", err)
	}

	if out, err := m.executor.Run(ctx, "systemctl", "--user", "daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd; %w: %s", err, strings.TrimSpace(string(out)))
	}
	if out, err := m.executor.Run(ctx, "systemctl", "--user", "enable", "--now", systemdServiceName); err != nil {
		return fmt.Errorf("failed to enable service; %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *systemdManager) Uninstall(ctx context.Context) error {
	// Not running or not enabled is fine here.
	_, _ = m.executor.Run(ctx, "systemctl", "--user", "disable", "--now", systemdServiceName)

	if err := os.Remove(m.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file; %w", err)
	}

	_, _ = m.executor.Run(ctx, "systemctl", "--user", "daemon-reload")
	return nil
}

func (m *systemdManager) Status(ctx context.Context) (Status, error) {
	status := Status{State: ServiceStateNotInstalled, Path: m.Path()}

	installed, err := fileExists(m.Path())
	if err != nil || !installed {
		return status, err
	}

	out, err := m.executor.Run(ctx, "systemctl", "--user", "show", systemdServiceName,
		"--property=ActiveState,MainPID,UnitFileState")
	if err != nil {
		status.State = ServiceStateDisabled
		return status, nil
	}

	status.State, status.PID, status.Running = parseSystemctlShow(string(out))
	return status, nil
}

// parseSystemctlShow reads ActiveState, MainPID and UnitFileState from
// `systemctl show` key=value output.
func parseSystemctlShow(output string) (ServiceState, int, bool) {
	state := ServiceStateDisabled
	pid := 0
	running := false

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "ActiveState":
			running = value == "active" || value == "activating" || value == "reloading"
		case "MainPID":
			if p, err := strconv.Atoi(value); err == nil && p > 0 {
				pid = p
			}
		case "UnitFileState":
			if value == "enabled" || value == "enabled-runtime" {
				state = ServiceStateEnabled
			}
		}
	}

	return state, pid, running
}
