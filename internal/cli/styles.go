package cli

import "github.com/charmbracelet/lipgloss"

// Styles following Bubble Tea examples
var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0B0B0B")).
			Background(lipgloss.Color("#FFE66D")).
			Bold(true).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7FDBFF")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00F5D4")).
			Bold(true)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8"))

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDE68A")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D27A")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8")).
			Faint(true)
)

// panel renders a titled rounded-border box.
func panel(title string, body string) string {
	content := panelTitleStyle.Render(title) + "\n" + body
	return panelStyle.Render(content)
}

// field renders one "Label: value" line for info panels.
func field(label, value string) string {
	return fieldLabelStyle.Render(label+": ") + fieldValueStyle.Render(value)
}
