package tui

import (
	"fmt"
	"strings"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const templateField = "template_type"

// NewProjectScreen collects the overview and template kind for a new
// project, then asks for confirmation before creating it.
type NewProjectScreen struct {
	app    *app.App
	styles theme.Styles
	form   fieldForm

	confirming bool
	creating   bool
	err        error
}

// NewNewProjectScreen creates a new project form.
func NewNewProjectScreen(a *app.App, s theme.Styles) NewProjectScreen {
	return NewProjectScreen{app: a, styles: s}
}

func templateOptions() []string {
	out := make([]string, len(brd.AllTemplateKinds))
	for i, t := range brd.AllTemplateKinds {
		out[i] = string(t)
	}
	return out
}

// reset clears the form so the screen is fresh on re-entry.
func (s *NewProjectScreen) reset() tea.Cmd {
	fields := append([]brd.Field{{
		Name:     templateField,
		Label:    "Template Type",
		Type:     brd.FieldEnum,
		Options:  templateOptions(),
		Required: true,
	}}, brd.OverviewSchema...)
	s.form = newFieldForm(fields, func(name string) string {
		if name == "document_version" {
			return "1.0"
		}
		return ""
	})
	s.confirming = false
	s.creating = false
	s.err = nil
	return s.form.init()
}

func (s *NewProjectScreen) overview() brd.Overview {
	var o brd.Overview
	for name, v := range s.form.Values() {
		if name != templateField {
			_ = o.Set(name, v)
		}
	}
	return o
}

func (s *NewProjectScreen) template() brd.TemplateKind {
	return brd.TemplateKind(s.form.Value(templateField))
}

// Update handles messages for the new project screen.
func (s *NewProjectScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ErrorMsg:
		s.creating = false
		s.confirming = false
		s.err = s.form.SetErrors(msg.Err)
		return nil

	case tea.KeyMsg:
		km := DefaultKeyMap()

		if s.creating {
			return nil
		}
		if s.confirming {
			switch {
			case key.Matches(msg, km.Confirm):
				s.creating = true
				return createProjectCmd(s.app, s.overview(), s.template())
			case key.Matches(msg, km.Deny):
				s.confirming = false
			}
			return nil
		}

		switch {
		case key.Matches(msg, km.Back):
			return func() tea.Msg { return NavigateBackMsg{} }
		case key.Matches(msg, km.Submit):
			s.err = s.form.SetErrors(s.overview().Validate())
			if s.err == nil && !s.form.HasErrors() {
				s.confirming = true
			}
			return nil
		}
		return s.form.Update(msg)
	}
	return nil
}

// View renders the new project form.
func (s *NewProjectScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorTextPrimary).
		Background(theme.ColorPrimary).
		Padding(0, 3).
		Render("New Project"), "")

	if s.err != nil {
		sections = append(sections, s.styles.StatusError.Render("  Error: "+s.err.Error()), "")
	}

	sections = append(sections, s.form.View(s.styles), "")

	hint := lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Italic(true)
	switch {
	case s.creating:
		sections = append(sections, hint.Render("  Creating..."))
	case s.confirming:
		t := s.template()
		sections = append(sections, s.styles.ButtonFocused.Render(fmt.Sprintf(
			"Create %s project %q? y/n", t, s.overview().ProjectName)))
		sections = append(sections, hint.Render("  Sections: "+kindLabels(brd.KindsFor(t))))
	default:
		sections = append(sections, hint.Render("  tab: next field  ←/→: choose  ctrl+s: create  esc: cancel"))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingTop(1).
		PaddingLeft(4).
		Render(strings.Join(sections, "\n"))
}

func kindLabels(kinds []brd.Kind) string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.Label()
	}
	return strings.Join(out, ", ")
}
