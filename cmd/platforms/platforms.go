// Package platforms provides the platforms parent command and subcommands.
package platforms

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/platforms/subcommands"
)

// PlatformsCmd is the parent command for publishing platforms.
var PlatformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Manage publishing platforms",
	Long: "Manage publishing platforms.\n\n" +
		"Platforms are the destinations completed workflows post to. Webhook platforms " +
		"receive a JSON post; every other type is recorded for agents to publish through.",
}

func init() {
	PlatformsCmd.AddCommand(subcommands.AddCmd)
	PlatformsCmd.AddCommand(subcommands.ListCmd)
}
