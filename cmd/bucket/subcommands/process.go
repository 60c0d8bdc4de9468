package subcommands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

var processSteer string

// ProcessCmd turns bucket files into workflow proposals.
var ProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Propose workflows for bucket files",
	Long: "Propose workflows for bucket files.\n\n" +
		"Classifies every file in the bucket, plans a workflow for it in the brand voice, and " +
		"moves it to the processed archive. Proposals wait for `phoenix workflows execute`.",
	Example: `  # Propose workflows
  phoenix bucket process

  # Steer the plans
  phoenix bucket process --steer "focus on the Seattle launch"`,
	PreRunE: validateProcess,
	RunE:    runProcess,
}

func init() {
	ProcessCmd.Flags().StringVar(&processSteer, "steer", "", "Steering text added to every proposal")
}

func validateProcess(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	return process(cmd, processSteer)
}

func process(cmd *cobra.Command, steer string) error {
	client, err := cmdutil.NewClient(daemonclient.ProposeTimeout)
	if err != nil {
		return err
	}

	result, err := client.Propose(cmd.Context(), steer)
	if err != nil {
		return fmt.Errorf("failed to process bucket; %w", cmdutil.WrapClientError(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Heading.Render("Proposed"))
	fmt.Fprintln(out, styles.Bullets(formatProposals(result.Workflows), "bucket is empty"))
	return nil
}

func formatProposals(proposals []workflow.Proposal) []string {
	lines := make([]string, 0, len(proposals))
	for _, p := range proposals {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %s %s", p.ID, styles.Status(string(p.Status)), p.AssetName)
		if p.Plan.Title != "" {
			fmt.Fprintf(&sb, " %s", styles.MutedText.Render(p.Plan.Title))
		}
		lines = append(lines, sb.String())
	}
	return lines
}
