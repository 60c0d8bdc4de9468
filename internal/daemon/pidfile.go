package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/leefowlercu/phoenix/internal/fsutil"
)

// ErrDaemonAlreadyRunning indicates that another daemon process is already running.
var ErrDaemonAlreadyRunning = errors.New("daemon already running")

// ErrDaemonNotRunning indicates that no live daemon owns the PID file.
var ErrDaemonNotRunning = errors.New("daemon not running")

// PIDFile manages a process ID file for the daemon.
type PIDFile struct {
	path string
}

// NewPIDFile creates a new PIDFile instance with the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the path to the PID file.
func (p *PIDFile) Path() string {
	return p.path
}

// Write records the current process's PID via temp-then-rename.
func (p *PIDFile) Write() error {
	if err := fsutil.WriteFileAtomic(p.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file; %w", err)
	}
	return nil
}

// Read reads and returns the PID from the file.
func (p *PIDFile) Read() (int, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file; %w", err)
	}

	pidStr := strings.TrimSpace(string(content))
	if pidStr == "" {
		return 0, errors.New("empty PID file")
	}

	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file; %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID %d; must be positive", pid)
	}

	return pid, nil
}

// Remove removes the PID file if it exists.
func (p *PIDFile) Remove() error {
	err := os.Remove(p.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file; %w", err)
	}
	return nil
}

// IsStale reports whether the PID file names a process that no longer
// exists. A missing file is not stale.
func (p *PIDFile) IsStale() (bool, error) {
	pid, err := p.Read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if _, statErr := os.Stat(p.path); errors.Is(statErr, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("PID file exists but unreadable; %w", err)
	}

	alive, err := processAlive(pid)
	if err != nil {
		return false, err
	}
	return !alive, nil
}

// Running returns the PID of the live daemon, or ErrDaemonNotRunning.
func (p *PIDFile) Running() (int, error) {
	pid, err := p.Read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrDaemonNotRunning
		}
		return 0, err
	}
	alive, err := processAlive(pid)
	if err != nil {
		return 0, err
	}
	if !alive {
		return pid, ErrDaemonNotRunning
	}
	return pid, nil
}

// CheckAndClaim writes the current PID unless a live daemon already owns
// the file. A stale file is replaced.
func (p *PIDFile) CheckAndClaim() error {
	if _, err := os.Stat(p.path); errors.Is(err, fs.ErrNotExist) {
		return p.Write()
	}

	stale, err := p.IsStale()
	if err != nil {
		return fmt.Errorf("failed to check if PID file is stale; %w", err)
	}
	if !stale {
		return ErrDaemonAlreadyRunning
	}

	if err := p.Remove(); err != nil {
		return fmt.Errorf("failed to remove stale PID file; %w", err)
	}
	return p.Write()
}

// processAlive probes pid with signal 0.
func processAlive(pid int) (bool, error) {
	err := syscall.Kill(pid, 0)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, syscall.ESRCH):
		return false, nil
	case errors.Is(err, syscall.EPERM):
		return true, nil
	default:
		return false, fmt.Errorf("failed to check process; %w", err)
	}
}
