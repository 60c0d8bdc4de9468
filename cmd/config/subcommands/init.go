package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/config"
)

var (
	initForce bool
)

// InitCmd writes a default configuration file.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: "Write a default configuration file.\n\n" +
		"Creates the config directory and writes every setting with its default value " +
		"so it can be edited in place. An existing file is left alone unless --force is given.",
	Example: `  # Create ~/.config/phoenix/config.yaml
  phoenix config init

  # Overwrite an existing file
  phoenix config init --force`,
	PreRunE: validateInit,
	RunE:    runInit,
}

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func validateInit(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := targetConfigPath()

	if config.ConfigExistsAt(path) && !initForce {
		fmt.Fprintf(out, "Configuration file already exists: %s\n", path)
		fmt.Fprintln(out, "Use --force to overwrite it.")
		return nil
	}

	if err := config.Write(config.LoadWithDefaults(), path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration written: %s\n", path)
	return nil
}
