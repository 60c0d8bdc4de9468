// Package manifest provides the manifest command.
package manifest

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var (
	manifestJSON  bool
	manifestStyle string
	manifestWidth int
)

// ErrNoManifest is returned when the daemon has not synthesized a manifest.
var ErrNoManifest = errors.New("no brand manifest yet; run `phoenix sync` first")

// ManifestCmd prints the last synthesized brand manifest.
var ManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Show the brand manifest",
	Long: "Show the brand manifest.\n\n" +
		"Renders the brand identity, active focus, and suggested workflows from the last " +
		"successful sync as formatted markdown. Use --json for the full manifest including " +
		"the structured brandManifestJson document.",
	Example: `  # Render the manifest
  phoenix manifest

  # Plain output for piping
  phoenix manifest --style notty

  # Full JSON
  phoenix manifest --json`,
	PreRunE: validateManifest,
	RunE:    runManifest,
}

func init() {
	ManifestCmd.Flags().BoolVar(&manifestJSON, "json", false, "Print the manifest as JSON")
	ManifestCmd.Flags().StringVar(&manifestStyle, "style", "auto", "Markdown style (auto, dark, light, notty, ascii)")
	ManifestCmd.Flags().IntVar(&manifestWidth, "width", 80, "Word wrap width")
}

func validateManifest(cmd *cobra.Command, args []string) error {
	if manifestWidth < 20 {
		return fmt.Errorf("--width must be at least 20, got %d", manifestWidth)
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runManifest(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	m, err := client.Manifest(cmd.Context())
	if err != nil {
		if daemonclient.IsNotFound(err) {
			return ErrNoManifest
		}
		return fmt.Errorf("failed to get manifest; %w", cmdutil.WrapClientError(err))
	}

	if manifestJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), m)
	}
	fmt.Fprint(cmd.OutOrStdout(), styles.Markdown(m.Markdown(), manifestStyle, manifestWidth))
	return nil
}
