package tui

import (
	"errors"
	"fmt"
	"strings"

	"brd-tui/internal/brd"
	"brd-tui/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Bool fields are presented as a two-way choice.
var boolChoices = []string{"No", "Yes"}

// formInput is one row of a fieldForm. Exactly one of text, area or
// choices is in use, depending on the field type.
type formInput struct {
	field   brd.Field
	text    textinput.Model
	area    textarea.Model
	choices []string
	choice  int
}

func (in *formInput) isArea() bool   { return in.field.Type == brd.FieldLongText }
func (in *formInput) isChoice() bool { return in.choices != nil }

func (in *formInput) value() string {
	switch {
	case in.isChoice():
		if in.field.Type == brd.FieldBool {
			return fmt.Sprint(in.choice == 1)
		}
		return in.choices[in.choice]
	case in.isArea():
		return strings.TrimSpace(in.area.Value())
	}
	return strings.TrimSpace(in.text.Value())
}

// set reports whether v could be applied. Choice rows accept any casing
// of an option; bools accept anything brd.ParseBool does.
func (in *formInput) set(v string) bool {
	switch {
	case in.field.Type == brd.FieldBool:
		b, err := brd.ParseBool(v)
		if err != nil {
			return false
		}
		in.choice = 0
		if b {
			in.choice = 1
		}
	case in.isChoice():
		for i, opt := range in.choices {
			if strings.EqualFold(opt, strings.TrimSpace(v)) {
				in.choice = i
				return true
			}
		}
		return false
	case in.isArea():
		in.area.SetValue(v)
	default:
		in.text.SetValue(v)
		in.text.CursorEnd()
	}
	return true
}

func (in *formInput) focus() tea.Cmd {
	switch {
	case in.isChoice():
		return nil
	case in.isArea():
		return in.area.Focus()
	}
	return in.text.Focus()
}

func (in *formInput) blur() {
	in.text.Blur()
	in.area.Blur()
}

// fieldForm edits a list of schema fields. It is shared by the record,
// overview and new-project screens.
type fieldForm struct {
	inputs []formInput
	focus  int
	errs   map[string]string
	width  int
}

// newFieldForm builds one input per field, prefilled from get.
func newFieldForm(fields []brd.Field, get func(string) string) fieldForm {
	f := fieldForm{width: 60}
	for _, fd := range fields {
		in := formInput{field: fd}
		switch fd.Type {
		case brd.FieldEnum:
			in.choices = fd.Options
		case brd.FieldBool:
			in.choices = boolChoices
		case brd.FieldLongText:
			ta := textarea.New()
			ta.ShowLineNumbers = false
			ta.CharLimit = 0
			ta.SetWidth(f.width)
			ta.SetHeight(3)
			in.area = ta
		default:
			ti := textinput.New()
			ti.CharLimit = 255
			ti.Width = f.width
			switch fd.Type {
			case brd.FieldDate:
				ti.Placeholder = "YYYY-MM-DD"
			case brd.FieldFloat:
				ti.Placeholder = "0.0"
			}
			in.text = ti
		}
		if get != nil {
			if v := get(fd.Name); v != "" {
				in.set(v)
			}
		}
		f.inputs = append(f.inputs, in)
	}
	return f
}

// init focuses the first input.
func (f *fieldForm) init() tea.Cmd {
	f.focus = 0
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[0].focus()
}

func (f *fieldForm) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focus].blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].focus()
}

// Update handles a key for the focused input. Navigation keys move
// between rows; up and down are left to text areas.
func (f *fieldForm) Update(msg tea.KeyMsg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	km := DefaultKeyMap()
	in := &f.inputs[f.focus]

	switch {
	case key.Matches(msg, km.NextField):
		return f.move(1)
	case key.Matches(msg, km.PrevField):
		return f.move(-1)
	case !in.isArea() && (msg.String() == "down" || msg.String() == "enter"):
		return f.move(1)
	case !in.isArea() && msg.String() == "up":
		return f.move(-1)
	}

	if in.isChoice() {
		switch {
		case key.Matches(msg, km.Left):
			in.choice = (in.choice - 1 + len(in.choices)) % len(in.choices)
		case key.Matches(msg, km.Right), msg.String() == " ":
			in.choice = (in.choice + 1) % len(in.choices)
		}
		return nil
	}

	var cmd tea.Cmd
	if in.isArea() {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.text, cmd = in.text.Update(msg)
	}
	delete(f.errs, in.field.Name)
	return cmd
}

// Values returns the current field values. Empty numeric fields are
// omitted so record defaults apply.
func (f *fieldForm) Values() map[string]string {
	out := make(map[string]string, len(f.inputs))
	for i := range f.inputs {
		in := &f.inputs[i]
		v := in.value()
		if v == "" && in.field.Type == brd.FieldFloat {
			continue
		}
		out[in.field.Name] = v
	}
	return out
}

// Value returns a single field value.
func (f *fieldForm) Value(name string) string {
	for i := range f.inputs {
		if f.inputs[i].field.Name == name {
			return f.inputs[i].value()
		}
	}
	return ""
}

// Set applies v to the named field and reports whether it was accepted.
func (f *fieldForm) Set(name, v string) bool {
	for i := range f.inputs {
		if f.inputs[i].field.Name == name {
			return f.inputs[i].set(v)
		}
	}
	return false
}

// SetErrors attaches validation messages to their rows. Field names
// may carry a path prefix such as "overview.". Errors that are not
// validation errors are returned unchanged.
func (f *fieldForm) SetErrors(err error) error {
	f.errs = nil
	if err == nil {
		return nil
	}
	var ve *brd.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	f.errs = make(map[string]string, len(ve.Fields))
	for _, fe := range ve.Fields {
		name := fe.Field
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		f.errs[name] = fe.Message
	}
	return nil
}

// HasErrors reports whether any row carries a validation message.
func (f *fieldForm) HasErrors() bool { return len(f.errs) > 0 }

// View renders every row, label above value.
func (f *fieldForm) View(styles theme.Styles) string {
	var rows []string
	for i := range f.inputs {
		in := &f.inputs[i]
		focused := i == f.focus

		label := styles.FieldLabel.Render(in.field.Label)
		if in.field.Required {
			label += styles.FieldRequired.Render(" *")
		}
		if focused {
			label = lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true).Render("> ") + label
		} else {
			label = "  " + label
		}

		var val string
		switch {
		case in.isChoice():
			val = renderChoices(in.choices, in.choice, focused)
		case in.isArea():
			val = in.area.View()
		default:
			val = in.text.View()
		}
		val = lipgloss.NewStyle().PaddingLeft(2).Render(val)

		rows = append(rows, label, val)
		if msg, ok := f.errs[in.field.Name]; ok {
			rows = append(rows, styles.FieldError.Render("  "+msg))
		}
	}
	return strings.Join(rows, "\n")
}

func renderChoices(opts []string, sel int, focused bool) string {
	selStyle := lipgloss.NewStyle().Foreground(theme.ColorTextPrimary).Bold(true)
	if focused {
		selStyle = selStyle.Background(theme.ColorPrimary).Padding(0, 1)
	}
	dim := lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Padding(0, 1)

	parts := make([]string, len(opts))
	for i, o := range opts {
		if i == sel {
			parts[i] = selStyle.Render(o)
		} else {
			parts[i] = dim.Render(o)
		}
	}
	line := strings.Join(parts, " ")
	if focused {
		line = "← " + line + " →"
	}
	return line
}
