// Package servicemanager installs the phoenix daemon as a user service under
// systemd or launchd.
package servicemanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
)

// Platform represents an operating system platform.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "darwin"
	PlatformUnknown Platform = "unknown"
)

// ErrUnsupportedPlatform is returned on platforms without a service manager.
var ErrUnsupportedPlatform = errors.New("platform has no supported service manager")

// DetectPlatform returns the current platform.
func DetectPlatform() Platform {
	switch runtime.GOOS {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformMacOS
	default:
		return PlatformUnknown
	}
}

// ServiceState represents the installation state of the service.
type ServiceState string

const (
	ServiceStateEnabled      ServiceState = "enabled"
	ServiceStateDisabled     ServiceState = "disabled"
	ServiceStateNotInstalled ServiceState = "not-installed"
)

// Status is what the service manager reports about the daemon unit.
type Status struct {
	State   ServiceState `json:"state"`
	Running bool         `json:"running"`
	PID     int          `json:"pid,omitempty"`
	Path    string       `json:"path"`
}

// Manager installs and inspects the daemon service.
type Manager interface {
	// Install writes the service file and enables auto-start.
	Install(ctx context.Context) error

	// Uninstall stops the service, disables auto-start, and removes the service file.
	Uninstall(ctx context.Context) error

	Status(ctx context.Context) (Status, error)

	// Path is the service file location.
	Path() string

	// Render returns the service file content Install would write.
	Render() (string, error)
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execExecutor struct{}

func (execExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// unit is the platform-independent description of the service.
type unit struct {
	homeDir    string
	binaryPath string
	env        map[string]string
	executor   CommandExecutor
}

// Option configures a Manager.
type Option func(*unit)

// WithHomeDir overrides the home directory service files are written under.
func WithHomeDir(dir string) Option {
	return func(u *unit) { u.homeDir = dir }
}

// WithBinaryPath sets the phoenix binary the service runs.
func WithBinaryPath(path string) Option {
	return func(u *unit) { u.binaryPath = path }
}

// WithEnv adds an environment variable to the service definition.
func WithEnv(key, value string) Option {
	return func(u *unit) {
		if value != "" {
			u.env[key] = value
		}
	}
}

// WithExecutor replaces the command runner used for systemctl and launchctl.
func WithExecutor(e CommandExecutor) Option {
	return func(u *unit) { u.executor = e }
}

// New returns the Manager for platform.
func New(platform Platform, opts ...Option) (Manager, error) {
	u := &unit{
		env:      make(map[string]string),
		executor: execExecutor{},
	}
	for _, opt := range opts {
		opt(u)
	}

	if u.homeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory; %w", err)
		}
		u.homeDir = home
	}
	if u.binaryPath == "" {
		u.binaryPath = binaryPath()
	}

	switch platform {
	case PlatformLinux:
		return &systemdManager{unit: u}, nil
	case PlatformMacOS:
		return &launchdManager{unit: u}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
}

// binaryPath returns the running executable, falling back to a PATH lookup.
func binaryPath() string {
	if exe, err := os.Executable(); err == nil {
		return exe
	}
	if path, err := exec.LookPath("phoenix"); err == nil {
		return path
	}
	return "phoenix"
}

// envPairs returns env sorted by key so rendered files are stable.
func (u *unit) envPairs() [][2]string {
	keys := make([]string, 0, len(u.env))
	for k := range u.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k, u.env[k]}
	}
	return pairs
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
