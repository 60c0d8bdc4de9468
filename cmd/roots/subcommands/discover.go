package subcommands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var discoverAdd bool

// DiscoverCmd lists candidate roots found under the home directory.
var DiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find candidate project roots",
	Long: "Find candidate project roots.\n\n" +
		"Asks the daemon to look through common project folders in the home directory and " +
		"prints those that are not registered yet. With --add every candidate is registered.",
	Example: `  # Show candidates
  phoenix roots discover

  # Register them all
  phoenix roots discover --add`,
	PreRunE: validateDiscover,
	RunE:    runDiscover,
}

func init() {
	DiscoverCmd.Flags().BoolVar(&discoverAdd, "add", false, "Register every discovered root")
}

func validateDiscover(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	client, err := cmdutil.NewClient(daemonclient.UploadTimeout)
	if err != nil {
		return err
	}

	found, err := client.Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to discover roots; %w", cmdutil.WrapClientError(err))
	}
	status, err := client.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list roots; %w", cmdutil.WrapClientError(err))
	}

	var candidates []string
	for _, p := range found.Potential {
		if !slices.Contains(status.Roots, p) {
			candidates = append(candidates, p)
		}
	}

	fmt.Fprintln(out, styles.Heading.Render("Candidates"))
	fmt.Fprintln(out, styles.Bullets(candidates, "nothing new found"))

	if !discoverAdd || len(candidates) == 0 {
		return nil
	}

	for _, p := range candidates {
		if _, err := client.AddRoot(cmd.Context(), p); err != nil {
			return fmt.Errorf("failed to add %s; %w", p, cmdutil.WrapClientError(err))
		}
		fmt.Fprintln(out, styles.SuccessText.Render("added ")+p)
	}
	return nil
}
