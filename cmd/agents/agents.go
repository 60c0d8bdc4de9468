// Package agents provides the agents parent command and subcommands.
package agents

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/agents/subcommands"
)

// AgentsCmd is the parent command for external agents.
var AgentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Manage integrated agents",
	Long: "Manage integrated agents.\n\n" +
		"Agents are external services that carry out workflow tasks. They are stored in the " +
		"knowledge base and named in workflow plans.",
}

func init() {
	AgentsCmd.AddCommand(subcommands.IntegrateCmd)
	AgentsCmd.AddCommand(subcommands.ListCmd)
}
