package tui

import (
	"strings"

	"brd-tui/internal/brd"
	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OverviewScreen edits the overview of the open project. The result is
// handed back as an OverviewSubmittedMsg; saving is the project
// screen's job.
type OverviewScreen struct {
	styles theme.Styles
	form   fieldForm
}

// NewOverviewScreen creates an overview editor.
func NewOverviewScreen(s theme.Styles) OverviewScreen {
	return OverviewScreen{styles: s}
}

func (s *OverviewScreen) open(o brd.Overview) tea.Cmd {
	s.form = newFieldForm(brd.OverviewSchema, o.Get)
	return s.form.init()
}

func (s *OverviewScreen) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	keys := DefaultKeyMap()
	switch {
	case key.Matches(km, keys.Back):
		return func() tea.Msg { return NavigateBackMsg{} }
	case key.Matches(km, keys.Submit):
		var o brd.Overview
		for name, v := range s.form.Values() {
			_ = o.Set(name, v)
		}
		if err := o.Validate(); err != nil {
			return errorCmd(s.form.SetErrors(err))
		}
		return func() tea.Msg { return OverviewSubmittedMsg{Overview: o} }
	}
	return s.form.Update(km)
}

func (s *OverviewScreen) View(width, height int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorTextPrimary).
		Background(theme.ColorPrimary).
		Padding(0, 3).
		Render("Project Overview")
	hint := lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Italic(true).
		Render("  tab: next field  ctrl+s: apply  esc: cancel")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingTop(1).
		PaddingLeft(4).
		Render(strings.Join([]string{title, "", s.form.View(s.styles), "", hint}, "\n"))
}

// errorCmd reports err in the status bar, or does nothing for nil.
func errorCmd(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg { return ErrorMsg{Err: err} }
}
