package tui

import (
	"fmt"
	"strconv"
	"strings"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
	"brd-tui/internal/config"
	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// configField represents a single editable configuration value.
type configField struct {
	label   string
	key     string
	value   string
	kind    string   // "string", "int", "float", "bool", "choice"
	choices []string // for "choice"
}

// ConfigEditorScreen displays and edits the workspace configuration.
type ConfigEditorScreen struct {
	app     *app.App
	styles  theme.Styles
	fields  []configField
	cursor  int
	editing bool
	input   textinput.Model
	err     error
	saved   bool
}

// NewConfigEditorScreen creates a new config editor screen.
func NewConfigEditorScreen(a *app.App, s theme.Styles) ConfigEditorScreen {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return ConfigEditorScreen{
		app:    a,
		styles: s,
		input:  ti,
	}
}

func modelChoices() []string {
	out := make([]string, len(brd.AllModelNames))
	for i, m := range brd.AllModelNames {
		out[i] = string(m)
	}
	return out
}

// loadFields populates the editable fields from the current configuration.
func (s *ConfigEditorScreen) loadFields() {
	cfg := s.app.Config()

	s.fields = []configField{
		{label: "Ollama URL", key: "llm.base_url", value: cfg.LLM.BaseURL, kind: "string"},
		{label: "Default Model", key: "llm.default_model", value: cfg.LLM.DefaultModel, kind: "choice", choices: modelChoices()},
		{label: "Temperature", key: "llm.temperature", value: strconv.FormatFloat(cfg.LLM.Temperature, 'f', -1, 64), kind: "float"},
		{label: "Timeout (s)", key: "llm.timeout_seconds", value: strconv.Itoa(cfg.LLM.TimeoutSeconds), kind: "int"},
		{label: "Probe Timeout (s)", key: "llm.probe_timeout_seconds", value: strconv.Itoa(cfg.LLM.ProbeTimeoutSeconds), kind: "int"},
		{label: "Stream Responses", key: "llm.stream", value: strconv.FormatBool(cfg.LLM.Stream), kind: "bool"},
		{label: "Export Directory", key: "export.dir", value: cfg.Export.Dir, kind: "string"},
		{label: "Log Level", key: "logging.level", value: cfg.Logging.Level, kind: "choice", choices: []string{"debug", "info", "warn", "error"}},
		{label: "Log Rotation (MB)", key: "logging.max_size_mb", value: strconv.Itoa(cfg.Logging.MaxSizeMB), kind: "int"},
	}

	s.cursor = 0
	s.editing = false
	s.err = nil
	s.saved = false
}

// Editing reports whether a text field is being edited.
func (s *ConfigEditorScreen) Editing() bool { return s.editing }

// Update handles messages for the config editor screen.
func (s *ConfigEditorScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		km := DefaultKeyMap()

		if s.editing {
			switch msg.String() {
			case "enter":
				return s.commitEdit()
			case "esc":
				s.editing = false
				s.input.Blur()
				return nil
			}
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return cmd
		}

		switch {
		case key.Matches(msg, km.Back):
			return func() tea.Msg { return NavigateBackMsg{} }
		case key.Matches(msg, km.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, km.Down):
			if s.cursor < len(s.fields)-1 {
				s.cursor++
			}
		case key.Matches(msg, km.Left):
			s.cycle(-1)
		case key.Matches(msg, km.Right):
			s.cycle(1)
		case key.Matches(msg, km.Enter):
			return s.startEdit()
		case key.Matches(msg, km.Save):
			return s.save()
		}
	}
	return nil
}

// cycle steps a choice field through its options.
func (s *ConfigEditorScreen) cycle(delta int) {
	if len(s.fields) == 0 {
		return
	}
	f := &s.fields[s.cursor]
	if f.kind != "choice" {
		return
	}
	i := 0
	for j, c := range f.choices {
		if c == f.value {
			i = j
		}
	}
	f.value = f.choices[(i+delta+len(f.choices))%len(f.choices)]
	s.saved = false
}

// startEdit begins editing the selected field.
func (s *ConfigEditorScreen) startEdit() tea.Cmd {
	if len(s.fields) == 0 {
		return nil
	}

	f := &s.fields[s.cursor]

	switch f.kind {
	case "bool":
		if f.value == "true" {
			f.value = "false"
		} else {
			f.value = "true"
		}
		s.saved = false
		return nil
	case "choice":
		s.cycle(1)
		return nil
	}

	s.editing = true
	s.input.SetValue(f.value)
	s.input.Focus()
	s.input.CursorEnd()
	return textinput.Blink
}

// commitEdit applies the edited value back to the field.
func (s *ConfigEditorScreen) commitEdit() tea.Cmd {
	if s.cursor >= len(s.fields) {
		s.editing = false
		return nil
	}

	f := &s.fields[s.cursor]
	newVal := strings.TrimSpace(s.input.Value())

	switch f.kind {
	case "int":
		if _, err := strconv.Atoi(newVal); err != nil {
			s.err = fmt.Errorf("%s must be an integer", f.label)
			return nil
		}
	case "float":
		if _, err := strconv.ParseFloat(newVal, 64); err != nil {
			s.err = fmt.Errorf("%s must be a number", f.label)
			return nil
		}
	}

	f.value = newVal
	s.editing = false
	s.saved = false
	s.err = nil
	s.input.Blur()
	return nil
}

// save validates the edited fields and applies them to the app.
func (s *ConfigEditorScreen) save() tea.Cmd {
	cfg := s.buildConfig()

	if err := s.app.UpdateConfig(cfg); err != nil {
		s.err = err
		return nil
	}

	s.saved = true
	s.err = nil
	return tea.Batch(
		func() tea.Msg { return StatusMsg("Configuration saved") },
		pingGatewayCmd(s.app),
	)
}

// buildConfig overlays the field values on the current configuration so
// settings not shown here are kept.
func (s *ConfigEditorScreen) buildConfig() config.Config {
	cfg := s.app.Config()

	for _, f := range s.fields {
		switch f.key {
		case "llm.base_url":
			cfg.LLM.BaseURL = strings.TrimRight(f.value, "/")
		case "llm.default_model":
			cfg.LLM.DefaultModel = f.value
		case "llm.temperature":
			cfg.LLM.Temperature, _ = strconv.ParseFloat(f.value, 64)
		case "llm.timeout_seconds":
			cfg.LLM.TimeoutSeconds, _ = strconv.Atoi(f.value)
		case "llm.probe_timeout_seconds":
			cfg.LLM.ProbeTimeoutSeconds, _ = strconv.Atoi(f.value)
		case "llm.stream":
			cfg.LLM.Stream = f.value == "true"
		case "export.dir":
			cfg.Export.Dir = f.value
		case "logging.level":
			cfg.Logging.Level = f.value
		case "logging.max_size_mb":
			cfg.Logging.MaxSizeMB, _ = strconv.Atoi(f.value)
		}
	}

	return cfg
}

// View renders the config editor screen.
func (s *ConfigEditorScreen) View(width, height int) string {
	var sections []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorTextPrimary).
		Background(theme.ColorPrimary).
		Padding(0, 3).
		Render("Configuration")

	sections = append(sections, title, "")

	if s.err != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorAccent).
			Bold(true).
			Render(fmt.Sprintf("  Error: %s", s.err.Error())), "")
	} else if s.saved {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorSuccess).
			Render("  Configuration saved successfully"), "")
	}

	maxLabel := 0
	for _, f := range s.fields {
		maxLabel = max(maxLabel, len(f.label))
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(theme.ColorTextSecondary).
		Width(maxLabel + 2)

	valueStyle := lipgloss.NewStyle().
		Foreground(theme.ColorTextPrimary)

	boolTrueStyle := lipgloss.NewStyle().
		Foreground(theme.ColorSuccess).
		Bold(true)

	boolFalseStyle := lipgloss.NewStyle().
		Foreground(theme.ColorTextSecondary)

	for i, f := range s.fields {
		label := labelStyle.Render(f.label)

		var val string
		switch {
		case s.editing && i == s.cursor:
			val = s.input.View()
		case f.kind == "bool" && f.value == "true":
			val = boolTrueStyle.Render("true")
		case f.kind == "bool":
			val = boolFalseStyle.Render("false")
		case f.kind == "choice" && i == s.cursor:
			val = valueStyle.Render("← " + f.value + " →")
		default:
			val = valueStyle.Render(f.value)
		}

		line := fmt.Sprintf("  %s  %s", label, val)

		if i == s.cursor {
			prefix := lipgloss.NewStyle().
				Foreground(theme.ColorPrimary).
				Bold(true).
				Render(">")
			line = lipgloss.NewStyle().
				Background(theme.ColorPanel).
				Render(fmt.Sprintf(" %s%s  %s", prefix, label, val))
		}

		sections = append(sections, line)
	}

	sections = append(sections, "")
	var hints []string
	if s.editing {
		hints = append(hints, "Enter: confirm", "Esc: cancel")
	} else {
		hints = append(hints, "Enter: edit", "←/→: choose", "s: save", "Esc: back")
	}
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.ColorTextSecondary).
		Italic(true).
		Render("  "+strings.Join(hints, "  |  ")))

	content := strings.Join(sections, "\n")
	padTop := 0
	if h := lipgloss.Height(content); height > h {
		padTop = (height - h) / 4
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingTop(padTop).
		PaddingLeft(4).
		Render(content)
}
