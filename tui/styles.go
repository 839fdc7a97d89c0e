package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all the UI styles
type Styles struct {
	Title lipgloss.Style

	Column             lipgloss.Style
	ColumnActive       lipgloss.Style
	ColumnHeader       lipgloss.Style
	ColumnHeaderActive lipgloss.Style

	Item        lipgloss.Style
	ItemCursor  lipgloss.Style
	ItemEditing lipgloss.Style
	Empty       lipgloss.Style

	FormLabel       lipgloss.Style
	FormLabelActive lipgloss.Style
	FormWarning     lipgloss.Style

	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	Hint        lipgloss.Style
}

// NewStyles builds the default palette.
func NewStyles() *Styles {
	var (
		subtle  = lipgloss.Color("#6c7086")
		text    = lipgloss.Color("#cdd6f4")
		accent  = lipgloss.Color("#89b4fa")
		warning = lipgloss.Color("#f9e2af")
		danger  = lipgloss.Color("#f38ba8")
	)
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(subtle).
		Padding(0, 1)

	return &Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),

		Column:             column,
		ColumnActive:       column.BorderForeground(accent),
		ColumnHeader:       lipgloss.NewStyle().Bold(true).Foreground(text),
		ColumnHeaderActive: lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true),

		Item:        lipgloss.NewStyle().Foreground(text),
		ItemCursor:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		ItemEditing: lipgloss.NewStyle().Foreground(warning).Italic(true),
		Empty:       lipgloss.NewStyle().Foreground(subtle).Italic(true),

		FormLabel:       lipgloss.NewStyle().Foreground(subtle).Width(12),
		FormLabelActive: lipgloss.NewStyle().Foreground(accent).Bold(true).Width(12),
		FormWarning:     lipgloss.NewStyle().Foreground(warning),

		StatusBar:   lipgloss.NewStyle().Foreground(subtle).MarginTop(1),
		StatusError: lipgloss.NewStyle().Foreground(danger).MarginTop(1),
		Hint:        lipgloss.NewStyle().Foreground(subtle),
	}
}
