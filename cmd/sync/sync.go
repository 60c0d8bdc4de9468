// Package sync provides the sync command.
package sync

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemon"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var (
	syncJSON bool
	syncDiff bool
)

// SyncCmd rescans every root and re-synthesizes the brand manifest.
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Learn from every root and re-synthesize the brand",
	Long: "Learn from every root and re-synthesize the brand.\n\n" +
		"Asks the daemon to rescan the registered project roots and inspiration URLs, then " +
		"synthesize a fresh brand manifest. A synthesis failure is reported without losing " +
		"what was learned; the previous manifest stays in place.",
	Example: `  # Sync and print a summary
  phoenix sync

  # Show what changed in the manifest
  phoenix sync --diff`,
	PreRunE: validateSync,
	RunE:    runSync,
}

func init() {
	SyncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print the sync result as JSON")
	SyncCmd.Flags().BoolVar(&syncDiff, "diff", false, "Print the manifest diff against the previous sync")
}

func validateSync(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.SyncTimeout)
	if err != nil {
		return err
	}

	result, err := client.Sync(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to sync; %w", cmdutil.WrapClientError(err))
	}

	if syncJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatSync(result, syncDiff))
	return nil
}

func formatSync(r *daemon.SyncResponse, withDiff bool) string {
	var sb strings.Builder

	sb.WriteString(styles.KeyValue("Sync", styles.Status(r.Status)))
	sb.WriteString("\n" + styles.KeyValue("Roots", len(r.Learn.Roots)))
	sb.WriteString("\n" + styles.KeyValue("Contexts", r.Learn.Contexts))
	sb.WriteString("\n" + styles.KeyValue("Assets", r.Learn.Assets))

	if r.Error != "" {
		sb.WriteString("\n" + styles.KeyValue("Synthesis", styles.ErrorText.Render(r.Error)))
	}
	if r.Manifest != nil {
		sb.WriteString("\n" + styles.KeyValue("Brand", r.Manifest.BrandIdentity.Name))
		sb.WriteString("\n" + styles.KeyValue("Focus", r.Manifest.ActiveFocus))
	}

	if withDiff {
		sb.WriteString("\n\n")
		if r.Diff == "" {
			sb.WriteString(styles.MutedText.Render("no manifest changes"))
		} else {
			sb.WriteString(strings.TrimRight(r.Diff, "\n"))
		}
	}

	return sb.String()
}
