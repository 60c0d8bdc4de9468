package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/servicemanager"
)

// UninstallCmd removes the daemon user service.
var UninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the daemon user service",
	Long: "Remove the daemon user service.\n\n" +
		"Stops the service, disables auto-start, and deletes the unit file written by " +
		"`phoenix daemon install`. Brand state and logs are left in place.",
	Example: `  # Remove the service
  phoenix daemon uninstall`,
	PreRunE: validateUninstall,
	RunE:    runUninstall,
}

func validateUninstall(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	mgr, err := newServiceManager()
	if err != nil {
		return fmt.Errorf("failed to initialize service manager; %w", err)
	}

	st, err := mgr.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read service status; %w", err)
	}
	if st.State == servicemanager.ServiceStateNotInstalled {
		fmt.Fprintln(out, "Service is not installed")
		return nil
	}

	if err := mgr.Uninstall(cmd.Context()); err != nil {
		return fmt.Errorf("failed to uninstall service; %w", err)
	}

	fmt.Fprintf(out, "Removed service at %s\n", mgr.Path())
	return nil
}
