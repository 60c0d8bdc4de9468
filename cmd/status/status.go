// Package status provides the brand status command.
package status

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/orchestrator"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var statusJSON bool

// StatusCmd shows what the daemon currently knows about the brand.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the brand status",
	Long: "Show the brand status.\n\n" +
		"Prints the global focus, registered project roots, inspiration URLs, integrated agents, " +
		"platforms, the bucket location, and workflow counts from the running daemon.",
	Example: `  # Show brand status
  phoenix status

  # As JSON
  phoenix status --json`,
	PreRunE: validateStatus,
	RunE:    runStatus,
}

func init() {
	StatusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
}

func validateStatus(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	status, err := client.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get brand status; %w", cmdutil.WrapClientError(err))
	}

	if statusJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), status)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatStatus(status))
	return nil
}

func formatStatus(s *orchestrator.Status) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Phoenix"))
	if s.Brand != nil && s.Brand.Name != "" {
		sb.WriteString(" " + styles.Heading.Render(s.Brand.Name))
	}
	sb.WriteString("\n")
	if s.Brand != nil && s.Brand.Mission != "" {
		sb.WriteString(styles.MutedText.Render(s.Brand.Mission) + "\n")
	}

	sb.WriteString("\n" + styles.KeyValue("Focus", s.GlobalFocus))
	sb.WriteString("\n" + styles.KeyValue("Bucket", s.BucketPath))
	sb.WriteString("\n" + styles.KeyValue("Last sync", formatTime(s.LastSyncTime)))
	sb.WriteString("\n" + styles.KeyValue("Last manifest", formatTime(s.LastManifestAt)))

	sb.WriteString("\n\n" + styles.Heading.Render("Roots") + "\n")
	sb.WriteString(styles.Bullets(s.Roots, "none registered"))

	sb.WriteString("\n\n" + styles.Heading.Render("Inspiration") + "\n")
	sb.WriteString(styles.Bullets(s.Inspirations, "none yet"))

	agents := make([]string, 0, len(s.Agents))
	for name, a := range s.Agents {
		agents = append(agents, fmt.Sprintf("%s %s %s", name, styles.MutedText.Render(a.URL), styles.Status(a.Status)))
	}
	sort.Strings(agents)
	sb.WriteString("\n\n" + styles.Heading.Render("Agents") + "\n")
	sb.WriteString(styles.Bullets(agents, "none integrated"))

	platforms := make([]string, 0, len(s.Platforms))
	for _, p := range s.Platforms {
		platforms = append(platforms, fmt.Sprintf("%s (%s) %s", p.Name, p.Type, styles.Status(p.Status)))
	}
	sb.WriteString("\n\n" + styles.Heading.Render("Platforms") + "\n")
	sb.WriteString(styles.Bullets(platforms, "none connected"))

	counts := make([]string, 0, len(s.Workflows))
	for st, n := range s.Workflows {
		counts = append(counts, fmt.Sprintf("%s %d", styles.Status(st), n))
	}
	sort.Strings(counts)
	sb.WriteString("\n\n" + styles.Heading.Render("Workflows") + "\n")
	sb.WriteString(styles.Bullets(counts, "none proposed"))

	return sb.String()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return styles.MutedText.Render("never")
	}
	return t.Local().Format(time.DateTime)
}
