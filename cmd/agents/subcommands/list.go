package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

// ListCmd prints integrated agents.
var ListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List integrated agents",
	Long:    "List integrated agents.\n\nPrints every agent in the knowledge base with its endpoint and status.",
	Example: `  phoenix agents list`,
	PreRunE: validateList,
	RunE:    runList,
}

func validateList(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	status, err := client.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list agents; %w", cmdutil.WrapClientError(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.Bullets(sortedAgents(status.Agents), "none integrated"))
	return nil
}
