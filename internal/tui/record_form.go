package tui

import (
	"fmt"
	"strings"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// recordFormData opens the record form. Index is -1 to add a record;
// Record is nil when adding.
type recordFormData struct {
	Kind   brd.Kind
	Index  int
	Record brd.Record
}

// RecordFormScreen edits one record. ctrl+g asks the gateway to draft
// the fields from a short hint.
type RecordFormScreen struct {
	app    *app.App
	styles theme.Styles

	kind  brd.Kind
	index int
	form  fieldForm
	body  viewport.Model

	hint       textinput.Model
	hinting    bool
	suggesting bool
	spinner    spinner.Model
	// seq identifies the current form so a late suggestion for an
	// earlier one is ignored.
	seq int

	err    error
	notice string
	width  int
	height int
}

// NewRecordFormScreen creates a record form.
func NewRecordFormScreen(a *app.App, s theme.Styles) RecordFormScreen {
	hint := textinput.New()
	hint.Placeholder = "e.g. login screen with email and password"
	hint.CharLimit = 500
	hint.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorPrimary)

	return RecordFormScreen{
		app:     a,
		styles:  s,
		hint:    hint,
		spinner: sp,
		body:    viewport.New(0, 0),
	}
}

func (s *RecordFormScreen) open(d recordFormData) tea.Cmd {
	s.seq++
	s.kind = d.Kind
	s.index = d.Index
	var get func(string) string
	if d.Record != nil {
		get = d.Record.Get
	} else if r, err := brd.NewRecord(d.Kind); err == nil {
		get = r.Get
	}
	s.form = newFieldForm(brd.Schema(d.Kind), get)
	s.hint.Reset()
	s.hint.Blur()
	s.hinting = false
	s.suggesting = false
	s.err = nil
	s.notice = ""
	s.body.GotoTop()
	return s.form.init()
}

func (s *RecordFormScreen) resize(width, height int) {
	s.width = width
	s.height = height
	s.body.Width = max(width-8, 20)
	s.body.Height = max(height-10, 5)
}

// Update handles messages for the record form.
func (s *RecordFormScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return nil

	case spinner.TickMsg:
		if !s.suggesting {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case SuggestionMsg:
		if msg.Seq != s.seq {
			return nil
		}
		s.suggesting = false
		if msg.Err != nil {
			s.err = fmt.Errorf("suggestion failed: %w", msg.Err)
			return nil
		}
		s.applySuggestion(msg)
		return nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *RecordFormScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	km := DefaultKeyMap()

	if s.hinting {
		switch {
		case key.Matches(msg, km.Back):
			s.hinting = false
			s.hint.Blur()
			return s.form.inputs[s.form.focus].focus()
		case key.Matches(msg, km.Enter):
			s.hinting = false
			s.hint.Blur()
			s.suggesting = true
			s.err = nil
			s.notice = ""
			return tea.Batch(
				s.spinner.Tick,
				suggestCmd(s.app, s.seq, s.kind, strings.TrimSpace(s.hint.Value())),
			)
		}
		var cmd tea.Cmd
		s.hint, cmd = s.hint.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, km.Back):
		return func() tea.Msg { return NavigateBackMsg{} }
	case key.Matches(msg, km.Suggest):
		if s.suggesting {
			return nil
		}
		s.hinting = true
		s.form.inputs[s.form.focus].blur()
		return s.hint.Focus()
	case key.Matches(msg, km.Submit):
		return s.submit()
	case msg.String() == "pgdown":
		s.body.SetYOffset(s.body.YOffset + s.body.Height/2)
		return nil
	case msg.String() == "pgup":
		s.body.SetYOffset(s.body.YOffset - s.body.Height/2)
		return nil
	}
	return s.form.Update(msg)
}

// applySuggestion copies non-empty suggested values into the form.
// Values a row cannot take are skipped.
func (s *RecordFormScreen) applySuggestion(msg SuggestionMsg) {
	applied := 0
	for _, f := range brd.Schema(s.kind) {
		v := msg.Suggestion.Fields[f.Name]
		if v == "" {
			continue
		}
		if s.form.Set(f.Name, v) {
			applied++
		}
	}
	if applied == 0 {
		s.notice = "The model returned nothing usable"
		return
	}
	s.notice = fmt.Sprintf("Filled %d field(s) from the suggestion; review before saving", applied)
}

func (s *RecordFormScreen) submit() tea.Cmd {
	r, err := brd.BuildRecord(s.kind, s.form.Values())
	if err != nil {
		s.err = s.form.SetErrors(err)
		if s.err == nil {
			s.err = fmt.Errorf("%d field(s) need attention", len(s.form.errs))
		}
		return nil
	}
	k, i := s.kind, s.index
	return func() tea.Msg { return RecordSubmittedMsg{Kind: k, Index: i, Record: r} }
}

// View renders the record form.
func (s *RecordFormScreen) View(width, height int) string {
	verb := "Edit"
	if s.index < 0 {
		verb = "Add"
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorTextPrimary).
		Background(theme.ColorPrimary).
		Padding(0, 3).
		Render(fmt.Sprintf("%s %s", verb, s.kind.Label()))
	if s.index >= 0 {
		title += lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Render(fmt.Sprintf("  #%d", s.index+1))
	}

	var top []string
	top = append(top, title, "")

	switch {
	case s.hinting:
		top = append(top, s.styles.FieldLabel.Render("  Describe the record for the model:"), "  "+s.hint.View())
	case s.suggesting:
		top = append(top, fmt.Sprintf("  %s Asking %s...", s.spinner.View(), s.app.Config().LLM.DefaultModel))
	case s.err != nil:
		top = append(top, s.styles.StatusError.Render("  "+s.err.Error()))
	case s.notice != "":
		top = append(top, lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("  "+s.notice))
	}
	top = append(top, "")

	s.body.SetContent(s.form.View(s.styles))
	s.followFocus()

	hint := lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Italic(true).
		Render("  tab: next field  ←/→: choose  ctrl+g: suggest  ctrl+s: apply  pgup/pgdn: scroll  esc: cancel")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingTop(1).
		PaddingLeft(4).
		Render(strings.Join(append(top, s.body.View(), "", hint), "\n"))
}

// followFocus scrolls the body so the focused row is visible. Each row
// is a label line plus its value, so the offset is estimated from the
// rendered heights of the rows above it.
func (s *RecordFormScreen) followFocus() {
	if s.body.Height <= 0 {
		return
	}
	line := 0
	for i := 0; i < s.form.focus && i < len(s.form.inputs); i++ {
		line += 1 + rowHeight(&s.form.inputs[i])
		if _, ok := s.form.errs[s.form.inputs[i].field.Name]; ok {
			line++
		}
	}
	switch {
	case line < s.body.YOffset:
		s.body.SetYOffset(line)
	case line+4 > s.body.YOffset+s.body.Height:
		s.body.SetYOffset(line + 4 - s.body.Height)
	}
}

func rowHeight(in *formInput) int {
	if in.isArea() {
		return in.area.Height()
	}
	return 1
}
