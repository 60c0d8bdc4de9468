package subcommands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

var (
	exportStatus string
	exportPath   string
)

// ExportCmd writes workflows to a spreadsheet.
var ExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export workflows to a spreadsheet",
	Long: "Export workflows to a spreadsheet.\n\n" +
		"Writes one row per workflow with its asset, status, plan, tasks, and post result " +
		"to an Excel workbook for review outside the terminal.",
	Example: `  # Everything
  phoenix workflows export workflows.xlsx

  # Completed work only
  phoenix workflows export done.xlsx --status completed`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateExport,
	RunE:    runExport,
}

func init() {
	ExportCmd.Flags().StringVar(&exportStatus, "status", "", "Only export workflows in this status")
}

func validateExport(cmd *cobra.Command, args []string) error {
	if !strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
		return fmt.Errorf("export file must end in .xlsx, got %q", args[0])
	}
	resolved, err := cmdutil.ResolvePath(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path; %w", err)
	}
	exportPath = resolved

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	proposals, err := fetchWorkflows(cmd, workflow.Status(exportStatus))
	if err != nil {
		return err
	}

	if err := workflow.ExportXLSX(proposals, exportPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d workflows to %s\n", len(proposals), exportPath)
	return nil
}
