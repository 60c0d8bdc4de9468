package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var listJSON bool

// ListCmd prints registered platforms.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List publishing platforms",
	Long: "List publishing platforms.\n\n" +
		"Prints every registered platform with its type, status, and endpoint.",
	Example: `  phoenix platforms list`,
	PreRunE: validateList,
	RunE:    runList,
}

func init() {
	ListCmd.Flags().BoolVar(&listJSON, "json", false, "Print platforms as JSON")
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
		return fmt.Errorf("failed to list platforms; %w", cmdutil.WrapClientError(err))
	}

	if listJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), status.Platforms)
	}

	lines := make([]string, 0, len(status.Platforms))
	for _, p := range status.Platforms {
		lines = append(lines, formatPlatform(p))
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.Bullets(lines, "none registered"))
	return nil
}
