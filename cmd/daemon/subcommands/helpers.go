// Package subcommands provides the daemon subcommands.
package subcommands

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/logging"
)

var logManager *logging.Manager

// SetLogManager sets the manager passed to the daemon on start.
func SetLogManager(m *logging.Manager) {
	logManager = m
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return false
	}
	return quiet
}

func configuredPIDFile() *daemon.PIDFile {
	return daemon.NewPIDFile(config.ExpandPath(config.Get().Daemon.PIDFile))
}
