// Package roots provides the roots parent command and subcommands.
package roots

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/roots/subcommands"
)

// RootsCmd is the parent command for project root management.
var RootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Manage project roots",
	Long: "Manage project roots.\n\n" +
		"Project roots are directories the daemon scans for brand context: READMEs, docs, " +
		"package manifests, and media assets. Adding a root triggers a learn pass.",
}

func init() {
	RootsCmd.AddCommand(subcommands.AddCmd)
	RootsCmd.AddCommand(subcommands.ListCmd)
	RootsCmd.AddCommand(subcommands.DiscoverCmd)
}
