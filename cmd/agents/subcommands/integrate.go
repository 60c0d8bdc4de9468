// Package subcommands provides the agents subcommands (integrate, list).
package subcommands

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
	"github.com/leefowlercu/phoenix/internal/vbrain"
)

// IntegrateCmd registers an external agent.
var IntegrateCmd = &cobra.Command{
	Use:   "integrate <name> <url>",
	Short: "Integrate an external agent",
	Long: "Integrate an external agent.\n\n" +
		"Records the agent endpoint in the knowledge base. Integrating an existing name " +
		"replaces its URL.",
	Example: `  phoenix agents integrate video-editor http://localhost:9100`,
	Args:    cobra.ExactArgs(2),
	PreRunE: validateIntegrate,
	RunE:    runIntegrate,
}

func validateIntegrate(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("agent name must not be empty")
	}
	u, err := url.Parse(args[1])
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid agent URL %q", args[1])
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	result, err := client.IntegrateAgent(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to integrate agent; %w", cmdutil.WrapClientError(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatAgent(result.Name, result.Agent))
	return nil
}

func formatAgent(name string, a vbrain.Agent) string {
	return fmt.Sprintf("%s %s %s", name, styles.MutedText.Render(a.URL), styles.Status(a.Status))
}

func sortedAgents(agents map[string]vbrain.Agent) []string {
	lines := make([]string, 0, len(agents))
	for name, a := range agents {
		lines = append(lines, formatAgent(name, a))
	}
	sort.Strings(lines)
	return lines
}
