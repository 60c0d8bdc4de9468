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

const launchdLabel = "com.leefowlercu.phoenix"

const launchdPlistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.BinaryPath}}</string>
        <string>daemon</string>
        <string>start</string>
    </array>
{{- if .Env}}
    <key>EnvironmentVariables</key>
    <dict>
{{- range .Env}}
        <key>{{index . 0}}</key>
        <string>{{index . 1}}</string>
{{- end}}
    </dict>
{{- end}}
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <dict>
        <key>SuccessfulExit</key>
        <false/>
    </dict>
    <key>ThrottleInterval</key>
    <integer>10</integer>
</dict>
</plist>
`

var launchdTmpl = template.Must(template.New("plist").Parse(launchdPlistTemplate))

// launchdManager manages a launchd user agent.
type launchdManager struct {
	*unit
}

func (m *launchdManager) Path() string {
	return filepath.Join(m.homeDir, "Library", "LaunchAgents", launchdLabel+".plist")
}

func (m *launchdManager) Render() (string, error) {
	var buf bytes.Buffer
	err := launchdTmpl.Execute(&buf, struct {
		Label      string
		BinaryPath string
		Env        [][2]string
	}{launchdLabel, m.binaryPath, m.envPairs()})
	if err != nil {
		return "", fmt.Errorf("failed to render plist; %w", err)
	}
	return buf.String(), nil
}

func (m *launchdManager) Install(ctx context.Context) error {
	content, err := m.Render()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.Path()), 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory; %w", err)
	}
	if err := os.WriteFile(m.Path(), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write plist file; %w", err)
	}

	if out, err := m.executor.Run(ctx, "launchctl", "load", "-w", m.Path()); err != nil {
		return fmt.Errorf("failed to load service with launchctl; %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *launchdManager) Uninstall(ctx context.Context) error {
	_, _ = m.executor.Run(ctx, "launchctl", "unload", m.Path())

	if err := os.Remove(m.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plist file; %w", err)
	}
	return nil
}

func (m *launchdManager) Status(ctx context.Context) (Status, error) {
	status := Status{State: ServiceStateNotInstalled, Path: m.Path()}

	installed, err := fileExists(m.Path())
	if err != nil || !installed {
		return status, err
	}

	out, err := m.executor.Run(ctx, "launchctl", "list", launchdLabel)
	if err != nil {
		// Installed but not loaded.
		status.State = ServiceStateDisabled
		return status, nil
	}

	status.State = ServiceStateEnabled
	status.PID, status.Running = parseLaunchctlList(string(out))
	return status, nil
}

// parseLaunchctlList finds the `"PID" = N;` entry in `launchctl list <label>`
// output.
func parseLaunchctlList(output string) (int, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, `"PID"`) {
			continue
		}
		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
		if pid, err := strconv.Atoi(value); err == nil && pid > 0 {
			return pid, true
		}
	}
	return 0, false
}
