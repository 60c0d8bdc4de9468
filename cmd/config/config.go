// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage phoenix configuration",
	Long: "Manage phoenix configuration.\n\n" +
		"The config command allows you to view, validate, and initialize the phoenix " +
		"configuration. Configuration is stored in a YAML file located at " +
		"~/.config/phoenix/config.yaml by default; PHOENIX_CONFIG_DIR overrides the directory " +
		"and PHOENIX_* environment variables override individual keys.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
	ConfigCmd.AddCommand(subcommands.InitCmd)
}
