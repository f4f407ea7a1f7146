// Package tui implements the "browse" terminal UI: a query box for ad-hoc
// searches over one collection plus a table of the latest query's results.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette, lime-green accent to match the rest of the CLI's output
// mode.
const (
	ColorLime     = "154"
	ColorLimeDim  = "106"
	ColorWhite    = "255"
	ColorGray     = "245"
	ColorDarkGray = "238"
	ColorRed      = "196"
)

// Styles holds the lipgloss styles the browse model renders with.
type Styles struct {
	Header lipgloss.Style
	Dim    lipgloss.Style
	Error  lipgloss.Style
	Border lipgloss.Style
	Label  lipgloss.Style
	Active lipgloss.Style
}

// DefaultStyles returns the browse TUI's styling.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
	}
}
