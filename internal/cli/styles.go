package cli

import "github.com/charmbracelet/lipgloss"

// palette is the CLI's own output theme. It has nothing to do with the
// colors the engine writes into documents.
type palette struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Badge   lipgloss.Style
}

func newPalette() *palette {
	accent := lipgloss.Color("#4ade80")
	return &palette{
		Title:   lipgloss.NewStyle().Bold(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#909090")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#707070")),
		Success: lipgloss.NewStyle().Foreground(accent),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		Badge:   lipgloss.NewStyle().Foreground(lipgloss.Color("#0a0a0b")).Background(accent).Padding(0, 1),
	}
}
