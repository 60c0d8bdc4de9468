// Package daemon provides the daemon parent command and subcommands.
package daemon

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/daemon/subcommands"
	"github.com/leefowlercu/phoenix/internal/logging"
)

// DaemonCmd is the parent command for all daemon-related subcommands.
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the phoenix daemon",
	Long: "Manage the phoenix daemon.\n\n" +
		"The daemon command allows you to start, stop, install, and check the status of the " +
		"background phoenix service. The daemon owns the brand state, runs workflows, " +
		"and exposes the HTTP API, MCP endpoint, and health checks the other commands use.",
}

// SetLogManager hands the root logging manager to the start command so log
// levels can follow config reloads.
func SetLogManager(m *logging.Manager) {
	subcommands.SetLogManager(m)
}

func init() {
	DaemonCmd.AddCommand(subcommands.StartCmd)
	DaemonCmd.AddCommand(subcommands.StopCmd)
	DaemonCmd.AddCommand(subcommands.StatusCmd)
	DaemonCmd.AddCommand(subcommands.InstallCmd)
	DaemonCmd.AddCommand(subcommands.UninstallCmd)
}
