// Package generate provides the generate command.
package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var (
	generateType  string
	generateJSON  bool
	generateStyle string
)

// GenerateCmd drafts content in the brand voice.
var GenerateCmd = &cobra.Command{
	Use:   "generate <task...>",
	Short: "Draft content in the brand voice",
	Long: "Draft content in the brand voice.\n\n" +
		"Sends the task to the daemon's content generator along with the brand profile and " +
		"global focus. The task type selects the routed provider, for example \"copy\" or \"code\".",
	Example: `  # Draft a launch tweet
  phoenix generate "Announce the beta in under 280 characters"

  # Route to the code provider
  phoenix generate --type code "Landing page hero section in HTML"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateGenerate,
	RunE:    runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&generateType, "type", "t", "", "Task type used for provider routing")
	GenerateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the response as JSON")
	GenerateCmd.Flags().StringVar(&generateStyle, "style", "auto", "Markdown style (auto, dark, light, notty, ascii)")
}

func validateGenerate(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(strings.Join(args, " ")) == "" {
		return errors.New("task must not be empty")
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.ContentTimeout)
	if err != nil {
		return err
	}

	result, err := client.Generate(cmd.Context(), strings.Join(args, " "), generateType)
	if err != nil {
		return fmt.Errorf("failed to generate content; %w", cmdutil.WrapClientError(err))
	}

	out := cmd.OutOrStdout()
	if generateJSON {
		return cmdutil.PrintJSON(out, result)
	}
	fmt.Fprint(out, styles.Markdown(result.Content, generateStyle, 80))
	fmt.Fprintln(out, styles.MutedText.Render(fmt.Sprintf("%s / %s", result.Provider, result.Model)))
	return nil
}
