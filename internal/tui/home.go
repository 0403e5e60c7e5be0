package tui

import (
	"fmt"
	"strings"
	"time"

	"brd-tui/internal/app"
	"brd-tui/internal/db"
	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// HomeScreen lists stored projects.
type HomeScreen struct {
	app      *app.App
	styles   theme.Styles
	projects []db.ProjectSummary
	cursor   int
	loaded   bool

	// confirmDelete holds the id awaiting a y/n answer.
	confirmDelete string
	now           func() time.Time
}

// NewHomeScreen creates a new home screen.
func NewHomeScreen(a *app.App, s theme.Styles) HomeScreen {
	return HomeScreen{
		app:    a,
		styles: s,
		now:    time.Now,
	}
}

// init returns a command that loads the project list.
func (s *HomeScreen) init() tea.Cmd {
	s.confirmDelete = ""
	return loadProjectsCmd(s.app)
}

func (s *HomeScreen) selected() (db.ProjectSummary, bool) {
	if s.cursor < 0 || s.cursor >= len(s.projects) {
		return db.ProjectSummary{}, false
	}
	return s.projects[s.cursor], true
}

// Update handles messages relevant to the home screen.
func (s *HomeScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ProjectsLoadedMsg:
		s.projects = msg.Projects
		s.loaded = true
		if s.cursor >= len(s.projects) {
			s.cursor = max(len(s.projects)-1, 0)
		}
		return nil

	case ProjectDeletedMsg:
		return tea.Batch(
			loadProjectsCmd(s.app),
			func() tea.Msg { return StatusMsg("Project deleted") },
		)

	case tea.KeyMsg:
		km := DefaultKeyMap()

		if s.confirmDelete != "" {
			id := s.confirmDelete
			s.confirmDelete = ""
			if key.Matches(msg, km.Confirm) {
				return deleteProjectCmd(s.app, id)
			}
			return nil
		}

		switch {
		case key.Matches(msg, km.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, km.Down):
			if s.cursor < len(s.projects)-1 {
				s.cursor++
			}
		case key.Matches(msg, km.Enter):
			if p, ok := s.selected(); ok {
				return openProjectCmd(s.app, p.ID)
			}
		case key.Matches(msg, km.NewProject):
			return func() tea.Msg { return NavigateMsg{Screen: ScreenNewProject} }
		case key.Matches(msg, km.Delete):
			if p, ok := s.selected(); ok {
				s.confirmDelete = p.ID
			}
		case key.Matches(msg, km.Refresh):
			return loadProjectsCmd(s.app)
		case key.Matches(msg, km.Settings):
			return func() tea.Msg { return NavigateMsg{Screen: ScreenConfigEditor} }
		}
	}
	return nil
}

// View renders the home screen.
func (s *HomeScreen) View(width, height int) string {
	var sections []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorTextPrimary).
		Background(theme.ColorPrimary).
		Padding(0, 3).
		Render("BRD BUILDER")

	subtitle := lipgloss.NewStyle().
		Foreground(theme.ColorTextSecondary).
		Render("Business requirement documents, drafted locally")

	sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, title, "", subtitle, ""))

	if !s.loaded {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorTextSecondary).
			Italic(true).
			Render("  Loading projects..."))
		return s.wrapContent(sections, width, height)
	}

	if len(s.projects) == 0 {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorTextSecondary).
			Italic(true).
			PaddingLeft(2).
			Render("No projects yet. Press n to start one."))
	} else {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorTextPrimary).
			Bold(true).
			Render("  Projects"), "")

		nameWidth := 0
		for _, p := range s.projects {
			nameWidth = max(nameWidth, lipgloss.Width(p.Name))
		}
		nameStyle := lipgloss.NewStyle().Width(min(nameWidth, 40) + 2)
		when := lipgloss.NewStyle().Foreground(theme.ColorTextSecondary)

		for i, p := range s.projects {
			badge := s.styles.TemplateBadge(string(p.Template)).Render(string(p.Template))
			line := fmt.Sprintf("%s %s  %s",
				nameStyle.Render(p.Name),
				badge,
				when.Render("updated "+humanize.RelTime(p.UpdatedAt, s.now(), "ago", "from now")),
			)
			if i == s.cursor {
				sections = append(sections, s.styles.ListItemSelected.Render(" > "+line))
			} else {
				sections = append(sections, s.styles.ListItem.Render("   "+line))
			}
		}
	}

	sections = append(sections, "")
	if s.confirmDelete != "" {
		name := s.confirmDelete
		if p, ok := s.selected(); ok {
			name = p.Name
		}
		sections = append(sections, s.styles.ButtonDanger.Render(
			fmt.Sprintf("Delete %q permanently? y/n", name)))
	} else {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorTextSecondary).
			Italic(true).
			Render("  n: new  enter: open  d: delete  r: refresh  c: settings  q: quit"))
	}

	return s.wrapContent(sections, width, height)
}

// wrapContent positions the section content in the upper third.
func (s *HomeScreen) wrapContent(sections []string, width, height int) string {
	content := strings.Join(sections, "\n")
	contentHeight := lipgloss.Height(content)

	padTop := 0
	if height > contentHeight {
		padTop = (height - contentHeight) / 3
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingTop(padTop).
		PaddingLeft(4).
		Render(content)
}
