package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

// ExecuteCmd approves and runs a workflow.
var ExecuteCmd = &cobra.Command{
	Use:   "execute <id>...",
	Short: "Approve and execute workflows",
	Long: "Approve and execute workflows.\n\n" +
		"Runs each workflow's tasks in order and posts the result to its platform. Only " +
		"pending or awaiting_approval workflows can be executed; a failed task leaves the " +
		"workflow in the error status with the results recorded so far.",
	Example: `  phoenix workflows execute wf_1760000000_1a2b3c4d`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateExecute,
	RunE:    runExecute,
}

func validateExecute(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runExecute(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.ExecuteTimeout)
	if err != nil {
		return err
	}

	var failed int
	for _, id := range args {
		result, err := client.Execute(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to execute %s; %w", id, cmdutil.WrapClientError(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatProposal(*result))
		if result.Status == workflow.StatusError {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d workflows ended in error", failed, len(args))
	}
	return nil
}
