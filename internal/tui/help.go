package tui

import (
	"strings"

	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel renders a centered overlay showing all keybindings.
// It is not a screen; it floats on top of whatever screen is active.
type HelpModel struct {
	visible bool
	keys    KeyMap
	styles  theme.Styles
	help    help.Model
}

// NewHelpModel creates a new help overlay.
func NewHelpModel(keys KeyMap, styles theme.Styles) HelpModel {
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(theme.ColorTextSecondary)
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(theme.ColorBorderSoft)
	return HelpModel{
		keys:   keys,
		styles: styles,
		help:   h,
	}
}

// Toggle flips the overlay visibility.
func (h *HelpModel) Toggle() {
	h.visible = !h.visible
}

// Visible reports whether the overlay is currently showing.
func (h *HelpModel) Visible() bool {
	return h.visible
}

// View renders the help overlay, centered within the given dimensions.
func (h *HelpModel) View(width, height int) string {
	if !h.visible {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorTextPrimary).
		Render("Keybindings")

	h.help.Width = max(width-8, 40)
	lines := []string{
		title,
		"",
		h.help.View(h.keys),
		"",
		lipgloss.NewStyle().
			Foreground(theme.ColorTextSecondary).
			Italic(true).
			Render("Press any key to close"),
	}

	overlay := h.styles.HelpOverlay.Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
}
