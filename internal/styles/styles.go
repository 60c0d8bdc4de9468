// Package styles provides shared lipgloss styles and markdown rendering for
// the command line.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Color palette using ANSI colors for broad terminal compatibility.
var (
	Primary = lipgloss.Color("202") // Ember orange
	Accent  = lipgloss.Color("214") // Gold
	Success = lipgloss.Color("2")
	Warning = lipgloss.Color("3")
	Error   = lipgloss.Color("1")
	Info    = lipgloss.Color("12")
	Muted   = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
)

// Text styles.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent)

	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(16)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// Box frames a block such as a brand card.
var Box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// statusColors maps workflow, job and component states to colors.
var statusColors = map[string]lipgloss.Color{
	"pending":           Muted,
	"awaiting_approval": Warning,
	"executing":         Info,
	"completed":         Success,
	"error":             Error,
	"healthy":           Success,
	"degraded":          Warning,
	"running":           Info,
	"success":           Success,
	"partial":           Warning,
	"failed":            Error,
	"stopped":           Muted,
	"connected":         Success,
	"integrated":        Success,
}

// Status renders a state name in its color. Unknown states render muted.
func Status(s string) string {
	color, ok := statusColors[strings.ToLower(s)]
	if !ok {
		color = Muted
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(s)
}

// KeyValue renders an aligned "label value" line.
func KeyValue(label string, value any) string {
	return Label.Render(label) + " " + fmt.Sprint(value)
}

// Bullets renders items as an indented list, or a muted placeholder when
// there are none.
func Bullets(items []string, empty string) string {
	if len(items) == 0 {
		return "  " + MutedText.Render(empty)
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  • ")
		b.WriteString(item)
	}
	return b.String()
}

// Markdown renders markdown for the terminal. style is a glamour style name
// such as "dark", "light" or "notty"; "auto" detects the terminal. On a
// renderer error the source is returned unchanged.
func Markdown(src, style string, width int) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}
