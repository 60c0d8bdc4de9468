package subcommands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

// DaemonStatus holds the status information about the daemon.
type DaemonStatus struct {
	Running      bool                 `json:"running"`
	PID          int                  `json:"pid,omitempty"`
	StalePIDFile bool                 `json:"stale_pid_file,omitempty"`
	Health       *daemon.HealthStatus `json:"health,omitempty"`
}

var statusJSON bool

// StatusCmd shows the daemon status.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and health",
	Long: "Show daemon status and health.\n\n" +
		"Displays whether the daemon is running, its PID, and the health of its " +
		"components and background jobs when the HTTP endpoint answers.",
	Example: `  # Check daemon status
  phoenix daemon status

  # Machine-readable output
  phoenix daemon status --json`,
	PreRunE: validateStatus,
	RunE:    runStatus,
}

func init() {
	StatusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
	StatusCmd.Flags().BoolP("quiet", "q", false, "Print nothing; only set the exit code")
}

func validateStatus(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	status, err := getDaemonStatus(cmd.Context(), configuredPIDFile(), client)
	if err != nil {
		return fmt.Errorf("failed to get daemon status; %w", err)
	}

	switch {
	case isQuiet(cmd):
		if !status.Running {
			return daemon.ErrDaemonNotRunning
		}
		return nil
	case statusJSON:
		return cmdutil.PrintJSON(out, status)
	default:
		fmt.Fprintln(out, formatStatus(status))
		return nil
	}
}

// getDaemonStatus reads the PID file and, for a live daemon, its health.
func getDaemonStatus(ctx context.Context, pf *daemon.PIDFile, client *daemonclient.Client) (*DaemonStatus, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	status := &DaemonStatus{}

	pid, err := pf.Running()
	if err != nil {
		if errors.Is(err, daemon.ErrDaemonNotRunning) {
			status.PID = pid
			status.StalePIDFile = pid > 0
			return status, nil
		}
		return nil, err
	}

	status.PID = pid
	status.Running = true

	if health, err := client.Ready(ctx); err == nil {
		status.Health = health
	}

	return status, nil
}

// formatStatus formats the daemon status for display.
func formatStatus(status *DaemonStatus) string {
	var sb strings.Builder

	if !status.Running {
		sb.WriteString(styles.KeyValue("Daemon", styles.Status("stopped")))
		if status.StalePIDFile {
			sb.WriteString(fmt.Sprintf(" (stale PID file with PID %d)", status.PID))
		}
		return sb.String()
	}

	sb.WriteString(styles.KeyValue("Daemon", fmt.Sprintf("%s (PID %d)", styles.Status("running"), status.PID)))

	if status.Health == nil {
		return sb.String()
	}

	sb.WriteString("\n" + styles.KeyValue("Health", styles.Status(status.Health.Status)))
	sb.WriteString("\n" + styles.KeyValue("Uptime", status.Health.Uptime.Round(time.Second)))

	if len(status.Health.Components) > 0 {
		sb.WriteString("\n" + styles.Heading.Render("Components"))
		for _, name := range sortedKeys(status.Health.Components) {
			c := status.Health.Components[name]
			sb.WriteString(fmt.Sprintf("\n  %s: %s", name, styles.Status(string(c.Status))))
			if c.Error != "" {
				sb.WriteString(" " + styles.MutedText.Render("("+c.Error+")"))
			}
		}
	}

	if len(status.Health.Jobs) > 0 {
		sb.WriteString("\n" + styles.Heading.Render("Jobs"))
		for _, name := range sortedKeys(status.Health.Jobs) {
			j := status.Health.Jobs[name]
			sb.WriteString(fmt.Sprintf("\n  %s: %s", name, styles.Status(string(j.Status))))
			if j.Error != "" {
				sb.WriteString(" " + styles.MutedText.Render("("+j.Error+")"))
			}
		}
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
