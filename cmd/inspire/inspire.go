// Package inspire provides the inspire command.
package inspire

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

// InspireCmd records inspiration URLs.
var InspireCmd = &cobra.Command{
	Use:   "inspire <url>...",
	Short: "Add inspiration URLs",
	Long: "Add inspiration URLs.\n\n" +
		"Registers one or more web pages whose tone and positioning should inform the brand. " +
		"Pages are fetched and distilled on the next sync; duplicates are ignored.",
	Example: `  # Add a single page
  phoenix inspire https://example.com/about

  # Add several
  phoenix inspire https://example.com https://blog.example.com/manifesto`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateInspire,
	RunE:    runInspire,
}

func validateInspire(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		u, err := url.Parse(arg)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid URL %q; must be an absolute http(s) URL", arg)
		}
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInspire(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	var urls []string
	for _, arg := range args {
		result, err := client.AddInspiration(cmd.Context(), arg)
		if err != nil {
			return fmt.Errorf("failed to add %s; %w", arg, cmdutil.WrapClientError(err))
		}
		urls = result.URLs
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.Heading.Render("Inspiration"))
	fmt.Fprintln(cmd.OutOrStdout(), styles.Bullets(urls, "none yet"))
	return nil
}
