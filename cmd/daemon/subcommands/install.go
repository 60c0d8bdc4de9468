package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/servicemanager"
)

// InstallCmd registers the daemon with the platform service manager.
var InstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the daemon as a user service",
	Long: "Install the daemon as a user service.\n\n" +
		"Writes a systemd user unit on Linux or a launchd agent on macOS and enables it " +
		"so the daemon starts at login and restarts on failure. The unit runs " +
		"`phoenix daemon start` with the current PHOENIX_CONFIG_DIR, if set.",
	Example: `  # Install and start the service
  phoenix daemon install

  # Print the unit file without installing it
  phoenix daemon install --print`,
	PreRunE: validateInstall,
	RunE:    runInstall,
}

var (
	installPrint bool
)

// newServiceManager is replaced in tests.
var newServiceManager = func() (servicemanager.Manager, error) {
	return servicemanager.New(servicemanager.DetectPlatform(),
		servicemanager.WithEnv("PHOENIX_CONFIG_DIR", os.Getenv("PHOENIX_CONFIG_DIR")),
	)
}

func init() {
	InstallCmd.Flags().BoolVar(&installPrint, "print", false, "Print the service file instead of installing it")
}

func validateInstall(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	mgr, err := newServiceManager()
	if err != nil {
		return fmt.Errorf("failed to initialize service manager; %w", err)
	}

	if installPrint {
		content, err := mgr.Render()
		if err != nil {
			return err
		}
		fmt.Fprint(out, content)
		return nil
	}

	if err := mgr.Install(cmd.Context()); err != nil {
		return fmt.Errorf("failed to install service; %w", err)
	}

	fmt.Fprintf(out, "Installed service at %s\n", mgr.Path())
	return nil
}
