package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

// ListCmd prints registered roots.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List project roots",
	Long: "List project roots.\n\n" +
		"Prints every directory the daemon learns from, in registration order.",
	Example: `  phoenix roots list`,
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
		return fmt.Errorf("failed to list roots; %w", cmdutil.WrapClientError(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.Bullets(status.Roots, "none registered"))
	return nil
}
