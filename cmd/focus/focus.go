// Package focus provides the focus command.
package focus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

// FocusCmd shows or replaces the global focus.
var FocusCmd = &cobra.Command{
	Use:   "focus [text...]",
	Short: "Show or set the global focus",
	Long: "Show or set the global focus.\n\n" +
		"The global focus steers brand synthesis, workflow proposals, and generated content. " +
		"With no arguments the current focus is printed; otherwise the arguments are joined " +
		"and stored as the new focus.",
	Example: `  # Show the current focus
  phoenix focus

  # Set a new focus
  phoenix focus "Launch week for the mobile app"`,
	PreRunE: validateFocus,
	RunE:    runFocus,
}

func validateFocus(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && strings.TrimSpace(strings.Join(args, " ")) == "" {
		return errors.New("focus text must not be empty")
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runFocus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		status, err := client.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get focus; %w", cmdutil.WrapClientError(err))
		}
		fmt.Fprintln(out, styles.KeyValue("Focus", status.GlobalFocus))
		return nil
	}

	result, err := client.SetFocus(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to set focus; %w", cmdutil.WrapClientError(err))
	}
	fmt.Fprintln(out, styles.KeyValue("Focus", result.Focus))
	return nil
}
