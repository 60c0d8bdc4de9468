// Package subcommands provides the workflows subcommands (list, show, execute, export).
package subcommands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

var (
	listStatus string
	listJSON   bool
)

var validStatuses = []workflow.Status{
	workflow.StatusPending,
	workflow.StatusAwaitingApproval,
	workflow.StatusExecuting,
	workflow.StatusCompleted,
	workflow.StatusError,
}

// ListCmd prints known workflows.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflows",
	Long: "List workflows.\n\n" +
		"Prints every workflow the daemon knows about, newest last. Use --status to filter.",
	Example: `  # Everything
  phoenix workflows list

  # Only those waiting for approval
  phoenix workflows list --status awaiting_approval`,
	PreRunE: validateList,
	RunE:    runList,
}

func init() {
	ListCmd.Flags().StringVar(&listStatus, "status", "", "Only show workflows in this status")
	ListCmd.Flags().BoolVar(&listJSON, "json", false, "Print workflows as JSON")
}

func validateList(cmd *cobra.Command, args []string) error {
	if listStatus != "" && !slices.Contains(validStatuses, workflow.Status(listStatus)) {
		names := make([]string, len(validStatuses))
		for i, s := range validStatuses {
			names[i] = string(s)
		}
		return fmt.Errorf("invalid --status %q; must be one of: %s", listStatus, strings.Join(names, ", "))
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	proposals, err := fetchWorkflows(cmd, workflow.Status(listStatus))
	if err != nil {
		return err
	}

	if listJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), proposals)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatList(proposals))
	return nil
}

func fetchWorkflows(cmd *cobra.Command, status workflow.Status) ([]workflow.Proposal, error) {
	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	all, err := client.Pending(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows; %w", cmdutil.WrapClientError(err))
	}
	return filterByStatus(all, status), nil
}

func filterByStatus(proposals []workflow.Proposal, status workflow.Status) []workflow.Proposal {
	if status == "" {
		return proposals
	}
	out := make([]workflow.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

func formatList(proposals []workflow.Proposal) string {
	if len(proposals) == 0 {
		return styles.MutedText.Render("no workflows")
	}

	var sb strings.Builder
	for i, p := range proposals {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s  %s  %s [%s]", p.ID, styles.Status(string(p.Status)), p.AssetName, p.Classification)
		if p.Plan.Title != "" {
			sb.WriteString("\n    " + p.Plan.Title)
		}
		if p.Archived {
			sb.WriteString(" " + styles.MutedText.Render("(archived)"))
		}
	}
	return sb.String()
}
