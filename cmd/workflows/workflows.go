// Package workflows provides the workflows parent command and subcommands.
package workflows

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/workflows/subcommands"
)

// WorkflowsCmd is the parent command for workflow proposals.
var WorkflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Review and run workflows",
	Long: "Review and run workflows.\n\n" +
		"Workflows are proposed from bucket assets and wait for approval. Executing one runs " +
		"its tasks through the integrated agents and posts the result to its platform.",
}

func init() {
	WorkflowsCmd.AddCommand(subcommands.ListCmd)
	WorkflowsCmd.AddCommand(subcommands.ShowCmd)
	WorkflowsCmd.AddCommand(subcommands.ExecuteCmd)
	WorkflowsCmd.AddCommand(subcommands.ExportCmd)
}
