package tui

import (
	"fmt"
	"strings"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProjectScreen shows one project: a tab per record kind, the records of
// the active kind, and the fields of the selected record.
//
// Edits change the in-memory project and bump rev; s saves a snapshot.
// The project is dirty while rev is ahead of the last saved revision.
type ProjectScreen struct {
	app    *app.App
	styles theme.Styles

	project *brd.Project
	kinds   []brd.Kind
	tab     int
	cursor  int

	rev      int
	savedRev int
	saving   bool

	confirmRemove bool
	// leaving is set by a first esc on a dirty project.
	leaving bool

	detail viewport.Model
	width  int
	height int
}

// NewProjectViewScreen creates an empty project screen.
func NewProjectViewScreen(a *app.App, s theme.Styles) ProjectScreen {
	return ProjectScreen{app: a, styles: s, detail: viewport.New(0, 0)}
}

func (s *ProjectScreen) open(p *brd.Project) {
	s.project = p
	s.kinds = p.Kinds()
	s.tab = 0
	s.cursor = 0
	s.rev = 0
	s.savedRev = 0
	s.saving = false
	s.confirmRemove = false
	s.leaving = false
}

func (s *ProjectScreen) resize(width, height int) {
	s.width = width
	s.height = height
	s.detail.Width = max(width/2-4, 20)
	s.detail.Height = max(height-12, 5)
}

// Dirty reports unsaved edits.
func (s *ProjectScreen) Dirty() bool { return s.rev != s.savedRev }

func (s *ProjectScreen) kind() brd.Kind {
	if len(s.kinds) == 0 {
		return ""
	}
	return s.kinds[s.tab]
}

func (s *ProjectScreen) changed() {
	s.rev++
	s.leaving = false
}

// apply adds or replaces a record submitted by the record form.
func (s *ProjectScreen) apply(msg RecordSubmittedMsg) error {
	if s.project == nil {
		return fmt.Errorf("no project open")
	}
	if msg.Index < 0 {
		if err := s.project.Add(msg.Record); err != nil {
			return err
		}
		s.selectKind(msg.Kind)
		s.cursor = s.project.Len(msg.Kind) - 1
	} else {
		if err := s.project.Replace(msg.Index, msg.Record); err != nil {
			return err
		}
	}
	s.changed()
	return nil
}

func (s *ProjectScreen) setOverview(o brd.Overview) error {
	if s.project == nil {
		return fmt.Errorf("no project open")
	}
	if err := s.project.SetOverview(o); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *ProjectScreen) selectKind(k brd.Kind) {
	for i, kk := range s.kinds {
		if kk == k {
			s.tab = i
			return
		}
	}
}

// Update handles messages for the project screen.
func (s *ProjectScreen) Update(msg tea.Msg) tea.Cmd {
	if s.project == nil {
		return nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return nil

	case ProjectSavedMsg:
		if msg.ID != s.project.ID {
			return nil
		}
		s.saving = false
		s.savedRev = max(s.savedRev, msg.Rev)
		s.project.UpdatedAt = msg.UpdatedAt
		return func() tea.Msg { return StatusMsg("Project saved") }

	case ErrorMsg:
		s.saving = false
		return nil

	case ExportedMsg:
		return func() tea.Msg { return StatusMsg("Exported to " + msg.Path) }

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *ProjectScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	km := DefaultKeyMap()
	k := s.kind()
	n := s.project.Len(k)

	if s.confirmRemove {
		s.confirmRemove = false
		if key.Matches(msg, km.Confirm) && s.cursor < n {
			if err := s.project.Remove(k, s.cursor); err != nil {
				return errorCmd(err)
			}
			if s.cursor >= s.project.Len(k) {
				s.cursor = max(s.project.Len(k)-1, 0)
			}
			s.changed()
		}
		return nil
	}

	if !key.Matches(msg, km.Back) {
		s.leaving = false
	}

	switch {
	case key.Matches(msg, km.Back):
		if s.Dirty() && !s.leaving {
			s.leaving = true
			return func() tea.Msg { return StatusMsg("Unsaved changes: press s to save or esc again to discard") }
		}
		return func() tea.Msg { return NavigateBackMsg{} }
	case key.Matches(msg, km.NextTab):
		s.tab = (s.tab + 1) % len(s.kinds)
		s.cursor = 0
		s.detail.GotoTop()
	case key.Matches(msg, km.PrevTab):
		s.tab = (s.tab - 1 + len(s.kinds)) % len(s.kinds)
		s.cursor = 0
		s.detail.GotoTop()
	case key.Matches(msg, km.Up):
		if s.cursor > 0 {
			s.cursor--
			s.detail.GotoTop()
		}
	case key.Matches(msg, km.Down):
		if s.cursor < n-1 {
			s.cursor++
			s.detail.GotoTop()
		}
	case key.Matches(msg, km.Add):
		return func() tea.Msg {
			return NavigateMsg{Screen: ScreenRecordForm, Data: recordFormData{Kind: k, Index: -1}}
		}
	case key.Matches(msg, km.Edit):
		r, err := s.project.Record(k, s.cursor)
		if err != nil {
			return nil
		}
		i := s.cursor
		return func() tea.Msg {
			return NavigateMsg{Screen: ScreenRecordForm, Data: recordFormData{Kind: k, Index: i, Record: r}}
		}
	case key.Matches(msg, km.Remove):
		if n > 0 {
			s.confirmRemove = true
		}
	case key.Matches(msg, km.Save):
		if s.saving {
			return nil
		}
		s.saving = true
		return saveProjectCmd(s.app, s.project, s.rev)
	case key.Matches(msg, km.Export):
		return exportProjectCmd(s.app, s.project)
	case key.Matches(msg, km.Overview):
		o := s.project.Overview
		return func() tea.Msg { return NavigateMsg{Screen: ScreenOverview, Data: o} }
	case msg.String() == "pgdown":
		s.detail.SetYOffset(s.detail.YOffset + s.detail.Height/2)
	case msg.String() == "pgup":
		s.detail.SetYOffset(s.detail.YOffset - s.detail.Height/2)
	}
	return nil
}

// View renders the project screen.
func (s *ProjectScreen) View(width, height int) string {
	if s.project == nil {
		return ""
	}
	p := s.project

	name := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorTextPrimary).
		Background(theme.ColorPrimary).
		Padding(0, 2).
		Render(p.Overview.ProjectName)
	badge := s.styles.TemplateBadge(string(p.Template)).Render(string(p.Template))
	header := name + " " + badge + lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).
		Render("  v"+p.Overview.DocumentVersion)
	if s.Dirty() {
		header += lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("  ● unsaved")
	}
	if s.saving {
		header += lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Render("  saving...")
	}

	var tabs []string
	for i, k := range s.kinds {
		label := fmt.Sprintf("%s (%d)", k.Label(), p.Len(k))
		if i == s.tab {
			tabs = append(tabs, s.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, s.styles.TabInactive.Render(label))
		}
	}
	tabRow := lipgloss.NewStyle().Width(width - 4).Render(strings.Join(tabs, " "))

	listWidth := max(width/2-4, 20)
	list := s.styles.PanelFocused.Width(listWidth).Height(max(height-12, 5)).Render(s.renderList(listWidth - 4))

	s.detail.SetContent(s.renderDetail())
	detail := s.styles.Panel.Width(s.detail.Width + 2).Render(s.detail.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)

	var footer string
	if s.confirmRemove {
		footer = s.styles.ButtonDanger.Render(fmt.Sprintf("Remove record #%d from %s? y/n", s.cursor+1, s.kind().Label()))
	} else {
		footer = lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Italic(true).Render(
			"a: add  e: edit  x: remove  s: save  E: export  o: overview  tab: section  esc: back")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingLeft(2).
		Render(strings.Join([]string{"", header, "", tabRow, "", body, "", footer}, "\n"))
}

func (s *ProjectScreen) renderList(width int) string {
	k := s.kind()
	recs := s.project.Records(k)
	if len(recs) == 0 {
		return lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Italic(true).
			Render("No records. Press a to add one.")
	}
	lines := make([]string, len(recs))
	for i, r := range recs {
		line := fmt.Sprintf("%2d. %s", i+1, recordTitle(k, r))
		if lipgloss.Width(line) > width {
			line = truncate(line, width)
		}
		if i == s.cursor {
			lines[i] = s.styles.ListItemSelected.Render(line)
		} else {
			lines[i] = s.styles.ListItem.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (s *ProjectScreen) renderDetail() string {
	k := s.kind()
	r, err := s.project.Record(k, s.cursor)
	if err != nil {
		return lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Italic(true).Render(k.Label())
	}
	var b strings.Builder
	for _, f := range brd.Schema(k) {
		v := r.Get(f.Name)
		if f.Type == brd.FieldBool {
			if ok, _ := brd.ParseBool(v); ok {
				v = "Yes"
			} else {
				v = "No"
			}
		}
		if v == "" {
			v = "-"
		}
		b.WriteString(s.styles.FieldLabel.Render(f.Label))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(max(s.detail.Width-2, 10)).Render(v))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// recordTitle picks a short label for a record: its own id, then the
// first required field that is set.
func recordTitle(k brd.Kind, r brd.Record) string {
	var parts []string
	if ref := r.Ref(); ref != "" {
		parts = append(parts, ref)
	}
	for _, f := range brd.Schema(k) {
		if !f.Required || f.Type == brd.FieldLongText {
			continue
		}
		if v := r.Get(f.Name); v != "" && v != r.Ref() {
			parts = append(parts, v)
			break
		}
	}
	if len(parts) == 0 {
		return "(untitled)"
	}
	return strings.Join(parts, "  ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
