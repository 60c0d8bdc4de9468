package subcommands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/styles"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

var showJSON bool

// ShowCmd prints one workflow in full.
var ShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workflow",
	Long: "Show a workflow.\n\n" +
		"Prints the plan, tasks, and, once executed, the per-task results and platform post.",
	Example: `  phoenix workflows show wf_1760000000_1a2b3c4d`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showJSON, "json", false, "Print the workflow as JSON")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	proposals, err := fetchWorkflows(cmd, "")
	if err != nil {
		return err
	}

	for _, p := range proposals {
		if p.ID != args[0] {
			continue
		}
		if showJSON {
			return cmdutil.PrintJSON(cmd.OutOrStdout(), p)
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatProposal(p))
		return nil
	}
	return fmt.Errorf("%w: %s", workflow.ErrWorkflowNotFound, args[0])
}

func formatProposal(p workflow.Proposal) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(p.ID) + "\n")
	sb.WriteString(styles.KeyValue("Status", styles.Status(string(p.Status))))
	sb.WriteString("\n" + styles.KeyValue("Asset", fmt.Sprintf("%s [%s]", p.AssetName, p.Classification)))
	if p.Steer != "" {
		sb.WriteString("\n" + styles.KeyValue("Steer", p.Steer))
	}
	if p.Plan.Platform != "" {
		sb.WriteString("\n" + styles.KeyValue("Platform", p.Plan.Platform))
	}

	sb.WriteString("\n\n" + styles.Heading.Render(p.Plan.Title))
	if p.Plan.Story != "" {
		sb.WriteString("\n" + p.Plan.Story)
	}

	if len(p.Plan.Tasks) > 0 {
		tasks := make([]string, len(p.Plan.Tasks))
		for i, t := range p.Plan.Tasks {
			tasks[i] = fmt.Sprintf("%s: %s", t[0], t[1])
		}
		sb.WriteString("\n\n" + styles.Heading.Render("Tasks") + "\n")
		sb.WriteString(styles.Bullets(tasks, ""))
	}

	if len(p.TaskResults) > 0 {
		results := make([]string, len(p.TaskResults))
		for i, r := range p.TaskResults {
			results[i] = fmt.Sprintf("%s %s", r.Agent, styles.Status(r.Status))
			if r.Error != "" {
				results[i] += " " + styles.ErrorText.Render(r.Error)
			}
		}
		sb.WriteString("\n\n" + styles.Heading.Render("Results") + "\n")
		sb.WriteString(styles.Bullets(results, ""))
	}

	if p.PostResult != nil {
		post := fmt.Sprintf("%s %s", p.PostResult.Platform, styles.Status(p.PostResult.Status))
		if p.PostResult.URL != "" {
			post += " " + p.PostResult.URL
		}
		sb.WriteString("\n\n" + styles.KeyValue("Post", post))
	}
	if p.Error != "" {
		sb.WriteString("\n" + styles.KeyValue("Error", styles.ErrorText.Render(p.Error)))
	}

	return sb.String()
}
