package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Workflows"

var reportHeader = []any{"ID", "Asset", "Classification", "Status", "Title", "Platform", "Tasks", "Post", "Archived", "Created", "Updated"}

// ExportXLSX writes a spreadsheet report of proposals to path.
func ExportXLSX(proposals []Proposal, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return fmt.Errorf("failed to name report sheet; %w", err)
	}

	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return fmt.Errorf("failed to write report header; %w", err)
	}

	for i, p := range proposals {
		row := []any{
			p.ID,
			p.AssetName,
			string(p.Classification),
			string(p.Status),
			p.Plan.Title,
			p.Plan.Platform,
			taskSummary(p),
			postSummary(p),
			p.Archived,
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write report row %d; %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report; %w", err)
	}
	return nil
}

func taskSummary(p Proposal) string {
	parts := make([]string, 0, len(p.Plan.Tasks))
	for _, t := range p.Plan.Tasks {
		parts = append(parts, t[0]+": "+t[1])
	}
	return strings.Join(parts, "; ")
}

func postSummary(p Proposal) string {
	if p.PostResult == nil {
		return ""
	}
	if p.PostResult.Message != "" {
		return p.PostResult.Status + " (" + p.PostResult.Message + ")"
	}
	return p.PostResult.Status
}
