package theme

import "github.com/charmbracelet/lipgloss"

// Color constants for the brd-tui dark theme.
const (
	ColorBackground    = lipgloss.Color("#0b0f1a")
	ColorPanel         = lipgloss.Color("#11182a")
	ColorPrimary       = lipgloss.Color("#1f77b4")
	ColorAccent        = lipgloss.Color("#dc2626")
	ColorTextPrimary   = lipgloss.Color("#e5e7eb")
	ColorTextSecondary = lipgloss.Color("#9ca3af")
	ColorBorderSoft    = lipgloss.Color("#24324f")
	ColorSuccess       = lipgloss.Color("#22c55e")
	ColorWarning       = lipgloss.Color("#f59e0b")
	ColorAgentic       = lipgloss.Color("#8b5cf6")
)

// Spreadsheet colours, as the xlsx writer expects them (no leading #).
const (
	SheetHeaderFill = "1F77B4"
	SheetHeaderFont = "FFFFFF"
	SheetBorder     = "9CA3AF"
)

// Styles holds every lipgloss style used across the TUI.
type Styles struct {
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style

	Header lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonDanger  lipgloss.Style

	// Template badges.
	BadgeNormal  lipgloss.Style
	BadgeAgentic lipgloss.Style
	BadgeMulti   lipgloss.Style

	FieldLabel    lipgloss.Style
	FieldRequired lipgloss.Style
	FieldError    lipgloss.Style

	GatewayUp   lipgloss.Style
	GatewayDown lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	CommandBar  lipgloss.Style
	HelpOverlay lipgloss.Style
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
}

// DefaultStyles returns the default set of styles for brd-tui.
// Callers receive a value copy, so mutations stay local.
func DefaultStyles() Styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return Styles{
		Panel: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderSoft).
			Padding(0, 1),

		PanelFocused: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorTextPrimary).
			Bold(true).
			Padding(0, 2),

		ListItem: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			PaddingLeft(2),

		ListItemSelected: lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorTextPrimary).
			Bold(true).
			PaddingLeft(2),

		Button: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorPanel).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 2),

		ButtonDanger: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 2),

		BadgeNormal:  badge.Foreground(ColorBackground).Background(ColorTextSecondary),
		BadgeAgentic: badge.Foreground(ColorTextPrimary).Background(ColorPrimary),
		BadgeMulti:   badge.Foreground(ColorTextPrimary).Background(ColorAgentic),

		FieldLabel: lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Width(28),

		FieldRequired: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Width(28),

		FieldError: lipgloss.NewStyle().
			Foreground(ColorAccent),

		GatewayUp: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		GatewayDown: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorPanel).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1),

		TabInactive: lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Background(ColorPanel).
			Padding(0, 1),

		CommandBar: lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(ColorBorderSoft),

		HelpOverlay: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorPanel).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 3),

		StatusBar: lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Padding(0, 1),

		StatusError: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Padding(0, 1),
	}
}

// TemplateBadge returns the badge style for a template kind name.
func (s Styles) TemplateBadge(kind string) lipgloss.Style {
	switch kind {
	case "Agentic":
		return s.BadgeAgentic
	case "Multi-Agentic":
		return s.BadgeMulti
	}
	return s.BadgeNormal
}
