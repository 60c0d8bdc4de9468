package subcommands

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/daemon"
)

// ErrStalePIDFile reports a PID file left behind by a dead daemon.
var ErrStalePIDFile = errors.New("stale PID file found and cleaned up")

// StopCmd stops a running daemon.
var StopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon gracefully",
	Long: "Stop the running daemon gracefully.\n\n" +
		"Sends SIGTERM to the running daemon process and waits for it to shut down. " +
		"If the daemon does not exit within the timeout period, the command returns " +
		"and the daemon keeps draining in the background.",
	Example: `  # Stop the daemon
  phoenix daemon stop

  # Wait up to two minutes for in-flight workflows
  phoenix daemon stop --timeout 2m`,
	PreRunE: validateStop,
	RunE:    runStop,
}

var (
	stopTimeout time.Duration
)

func init() {
	StopCmd.Flags().DurationVar(&stopTimeout, "timeout", 30*time.Second,
		"Maximum time to wait for daemon to stop")
}

func validateStop(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	err := stopDaemon(configuredPIDFile(), stopTimeout)
	switch {
	case errors.Is(err, daemon.ErrDaemonNotRunning):
		fmt.Fprintln(out, "No daemon is running")
		return nil
	case errors.Is(err, ErrStalePIDFile):
		fmt.Fprintln(out, "Found stale PID file, cleaned up")
		return nil
	case err != nil:
		return fmt.Errorf("failed to stop daemon; %w", err)
	}

	fmt.Fprintln(out, "Daemon stopped")
	return nil
}

// stopDaemon sends SIGTERM to the daemon named by pf and waits up to timeout
// for it to exit.
func stopDaemon(pf *daemon.PIDFile, timeout time.Duration) error {
	pid, err := pf.Running()
	if err != nil {
		if errors.Is(err, daemon.ErrDaemonNotRunning) && pid > 0 {
			_ = pf.Remove()
			return ErrStalePIDFile
		}
		return err
	}

	slog.Debug("sending SIGTERM to daemon", "pid", pid)

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM; %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := pf.Running(); errors.Is(err, daemon.ErrDaemonNotRunning) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	slog.Warn("daemon did not stop within timeout", "pid", pid, "timeout", timeout)
	return nil
}
