// Package subcommands provides the roots subcommands (add, list, discover).
package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

// AddCmd registers project roots.
var AddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Add project roots",
	Long: "Add project roots.\n\n" +
		"Resolves each path to an absolute directory and registers it with the daemon. " +
		"Paths must exist; duplicates are ignored.",
	Example: `  # Add the current directory
  phoenix roots add .

  # Add several projects
  phoenix roots add ~/code/site ~/code/app`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateAdd,
	RunE:    runAdd,
}

var addPaths []string

func validateAdd(cmd *cobra.Command, args []string) error {
	resolved, err := cmdutil.ResolvePaths(args)
	if err != nil {
		return fmt.Errorf("failed to resolve path; %w", err)
	}
	for _, p := range resolved {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("root %s does not exist", p)
		}
		if !info.IsDir() {
			return fmt.Errorf("root %s is not a directory", p)
		}
	}
	addPaths = resolved

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.UploadTimeout)
	if err != nil {
		return err
	}

	var roots []string
	for _, p := range addPaths {
		result, err := client.AddRoot(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("failed to add %s; %w", p, cmdutil.WrapClientError(err))
		}
		roots = result.Roots
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.Heading.Render("Roots"))
	fmt.Fprintln(cmd.OutOrStdout(), styles.Bullets(roots, "none registered"))
	return nil
}
