package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
	"brd-tui/internal/db"
	"brd-tui/internal/suggest"
	"brd-tui/internal/theme"
)

func openApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.Open(context.Background(), app.Options{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func keyRunes(s string) tea.KeyMsg     { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
func keyType(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

// send feeds msgs through the model, returning the final model and the
// command produced by the last message.
func send(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var tm tea.Model
		tm, cmd = m.Update(msg)
		m = tm.(Model)
	}
	return m, cmd
}

// typeText sends each rune as its own key press.
func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = send(m, keyRunes(string(r)))
	}
	return m
}

// collect runs cmd and any batched commands, returning messages of type T.
func collect[T any](cmd tea.Cmd) []T {
	if cmd == nil {
		return nil
	}
	var out []T
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect[T](c)...)
		}
	case T:
		out = append(out, msg)
	}
	return out
}

func newProject(t *testing.T, a *app.App, tk brd.TemplateKind) *brd.Project {
	t.Helper()
	p, err := a.CreateProject(context.Background(), brd.Overview{
		ProjectName:        "Order Tracker",
		ProjectDescription: "Tracks orders",
		BusinessGoal:       "Fewer status calls",
		DocumentVersion:    "1.0",
	}, tk)
	require.NoError(t, err)
	return p
}

func TestFieldFormChoices(t *testing.T) {
	f := newFieldForm(brd.Schema(brd.KindAgentConfig), nil)
	f.init()

	var required *formInput
	for i := range f.inputs {
		if f.inputs[i].field.Name == "required" {
			required = &f.inputs[i]
			f.focus = i
		}
	}
	require.NotNil(t, required)
	assert.Equal(t, "false", f.Value("required"))

	f.Update(keyType(tea.KeyRight))
	assert.Equal(t, "true", f.Value("required"))
	f.Update(keyType(tea.KeyLeft))
	assert.Equal(t, "false", f.Value("required"))

	assert.True(t, f.Set("parameter_type", "BOOLEAN"))
	assert.Equal(t, "boolean", f.Value("parameter_type"))
	assert.False(t, f.Set("parameter_type", "Quaternion"))
	assert.True(t, f.Set("required", "yes"))
	assert.Equal(t, "true", f.Value("required"))
}

func TestFieldFormValuesSkipEmptyNumbers(t *testing.T) {
	f := newFieldForm(brd.Schema(brd.KindLLMPrompt), nil)
	vals := f.Values()
	_, ok := vals["temperature"]
	assert.False(t, ok)
	assert.Equal(t, "llama3.2", vals["model_name"])
}

func TestFieldFormErrorsStripPrefix(t *testing.T) {
	f := newFieldForm(brd.OverviewSchema, nil)
	err := f.SetErrors((brd.Overview{}).Validate())
	require.NoError(t, err)
	assert.True(t, f.HasErrors())
	assert.Contains(t, f.errs, "project_name")

	other := errors.New("disk full")
	assert.Equal(t, other, f.SetErrors(other))
}

func TestRecordFormValidation(t *testing.T) {
	a := openApp(t)
	s := NewRecordFormScreen(a, theme.DefaultStyles())
	s.open(recordFormData{Kind: brd.KindUISpec, Index: -1})

	cmd := s.Update(keyType(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	require.Error(t, s.err)
	assert.Contains(t, s.form.errs, "screen_component")
	assert.Contains(t, s.form.errs, "requirement_description")

	require.True(t, s.form.Set("screen_component", "Order List"))
	require.True(t, s.form.Set("requirement_description", "Paged list of orders"))
	cmd = s.Update(keyType(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	msg, ok := cmd().(RecordSubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, -1, msg.Index)
	assert.Equal(t, "Order List", msg.Record.Get("screen_component"))
	assert.Equal(t, "Should", msg.Record.Get("priority"))
}

func TestRecordFormSuggestionOutcomes(t *testing.T) {
	a := openApp(t)
	s := NewRecordFormScreen(a, theme.DefaultStyles())
	s.open(recordFormData{Kind: brd.KindUISpec, Index: -1})
	s.form.Set("screen_component", "Typed by hand")

	s.suggesting = true
	s.Update(SuggestionMsg{Seq: s.seq, Err: suggest.ErrUnavailable})
	assert.False(t, s.suggesting)
	require.Error(t, s.err)
	assert.Equal(t, "Typed by hand", s.form.Value("screen_component"))

	s.Update(SuggestionMsg{Seq: s.seq - 1, Suggestion: suggest.Suggestion{
		Kind:   brd.KindUISpec,
		Fields: map[string]string{"screen_component": "Stale"},
	}})
	assert.Equal(t, "Typed by hand", s.form.Value("screen_component"))

	s.Update(SuggestionMsg{Seq: s.seq, Suggestion: suggest.Suggestion{
		Kind: brd.KindUISpec,
		Fields: map[string]string{
			"screen_component":        "",
			"requirement_description": "Show a searchable order table",
			"priority":                "must",
		},
	}})
	assert.Equal(t, "Typed by hand", s.form.Value("screen_component"))
	assert.Equal(t, "Show a searchable order table", s.form.Value("requirement_description"))
	assert.Equal(t, "Must", s.form.Value("priority"))
	assert.Contains(t, s.notice, "2 field(s)")
}

func TestRecordFormSuggestThroughGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"response":"{\"screen_component\":\"Login\",\"requirement_description\":\"Email and password sign-in\"}","done":true}`)
	}))
	defer srv.Close()

	a := openApp(t)
	cfg := a.Config()
	cfg.LLM.BaseURL = srv.URL
	require.NoError(t, a.UpdateConfig(cfg))

	s := NewRecordFormScreen(a, theme.DefaultStyles())
	s.open(recordFormData{Kind: brd.KindUISpec, Index: -1})

	s.Update(keyType(tea.KeyCtrlG))
	require.True(t, s.hinting)
	for _, r := range "login" {
		s.Update(keyRunes(string(r)))
	}
	cmd := s.Update(keyType(tea.KeyEnter))
	require.True(t, s.suggesting)

	msgs := collect[SuggestionMsg](cmd)
	require.Len(t, msgs, 1)
	require.NoError(t, msgs[0].Err)
	s.Update(msgs[0])

	assert.False(t, s.suggesting)
	assert.Equal(t, "Login", s.form.Value("screen_component"))
	assert.Equal(t, "Email and password sign-in", s.form.Value("requirement_description"))
}

func TestHomeDeleteNeedsConfirm(t *testing.T) {
	a := openApp(t)
	p := newProject(t, a, brd.TemplateNormal)

	m := NewModel(a)
	m, _ = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = send(m, ProjectsLoadedMsg{Projects: mustList(t, a)})
	assert.Contains(t, m.View(), "Order Tracker")

	m, cmd := send(m, keyRunes("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, p.ID, m.home.confirmDelete)

	m, cmd = send(m, keyRunes("n"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.home.confirmDelete)

	m, _ = send(m, keyRunes("d"))
	_, cmd = send(m, keyRunes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, ProjectDeletedMsg{ID: p.ID}, cmd())
	assert.Empty(t, mustList(t, a))
}

func mustList(t *testing.T, a *app.App) []db.ProjectSummary {
	t.Helper()
	list, err := a.ListProjects(context.Background())
	require.NoError(t, err)
	return list
}

func TestHelpToggleOnlyOutsideForms(t *testing.T) {
	a := openApp(t)
	m := NewModel(a)
	m, _ = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = send(m, keyRunes("?"))
	assert.True(t, m.help.Visible())
	m, _ = send(m, keyRunes("x"))
	assert.False(t, m.help.Visible())

	m, _ = send(m, NavigateMsg{Screen: ScreenNewProject})
	m, _ = send(m, keyType(tea.KeyTab))
	m = typeText(m, "What?")
	assert.False(t, m.help.Visible())
	assert.Equal(t, "What?", m.newProject.form.Value("project_name"))
}

func TestNewProjectFlow(t *testing.T) {
	a := openApp(t)
	m := NewModel(a)
	m, _ = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = send(m, NavigateMsg{Screen: ScreenNewProject})
	require.Equal(t, ScreenNewProject, m.screen)

	// Template: Normal -> Agentic.
	m, _ = send(m, keyType(tea.KeyRight))
	m, _ = send(m, keyType(tea.KeyTab))
	m = typeText(m, "Claims Bot")

	m, _ = send(m, keyType(tea.KeyCtrlS))
	assert.False(t, m.newProject.confirming, "description and goal are required")
	assert.Contains(t, m.newProject.form.errs, "project_description")

	m, _ = send(m, keyType(tea.KeyTab))
	m = typeText(m, "Triage insurance claims")
	m, _ = send(m, keyType(tea.KeyTab))
	m = typeText(m, "Halve triage time")

	m, _ = send(m, keyType(tea.KeyCtrlS))
	require.True(t, m.newProject.confirming)
	assert.Contains(t, m.View(), "Create Agentic project")

	m, cmd := send(m, keyRunes("y"))
	require.NotNil(t, cmd)
	created, ok := cmd().(ProjectCreatedMsg)
	require.True(t, ok)

	m, _ = send(m, created)
	assert.Equal(t, ScreenProject, m.screen)
	assert.Equal(t, brd.TemplateAgentic, m.project.project.Template)
	assert.Len(t, m.project.kinds, len(brd.AllKinds))

	m, cmd = send(m, keyType(tea.KeyEsc))
	require.NotNil(t, cmd)
	m, _ = send(m, cmd())
	assert.Equal(t, ScreenHome, m.screen)
}

func TestProjectEditSaveFlow(t *testing.T) {
	a := openApp(t)
	p := newProject(t, a, brd.TemplateNormal)

	m := NewModel(a)
	m, _ = send(m, tea.WindowSizeMsg{Width: 140, Height: 45})
	m, _ = send(m, NavigateMsg{Screen: ScreenProject, Data: p})
	require.Equal(t, ScreenProject, m.screen)

	m, cmd := send(m, keyRunes("a"))
	require.NotNil(t, cmd)
	m, _ = send(m, cmd())
	require.Equal(t, ScreenRecordForm, m.screen)
	assert.Equal(t, brd.KindUISpec, m.recordForm.kind)

	rec, err := brd.BuildRecord(brd.KindUISpec, map[string]string{
		"screen_component":        "Order List",
		"requirement_description": "Paged list of orders",
	})
	require.NoError(t, err)
	m, _ = send(m, RecordSubmittedMsg{Kind: brd.KindUISpec, Index: -1, Record: rec})
	require.Equal(t, ScreenProject, m.screen)
	assert.True(t, m.project.Dirty())
	assert.Equal(t, 1, m.project.project.Len(brd.KindUISpec))
	assert.Contains(t, m.View(), "Order List")

	// esc on a dirty project warns first.
	m, cmd = send(m, keyType(tea.KeyEsc))
	m, _ = send(m, cmd())
	assert.Equal(t, ScreenProject, m.screen)
	assert.Contains(t, m.status, "Unsaved changes")

	m, cmd = send(m, keyRunes("s"))
	require.NotNil(t, cmd)
	saved, ok := cmd().(ProjectSavedMsg)
	require.True(t, ok, "save failed")
	m, _ = send(m, saved)
	assert.False(t, m.project.Dirty())

	stored, err := a.LoadProject(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.UISpecs, 1)
	assert.Equal(t, "Order List", stored.UISpecs[0].ScreenComponent)

	// Remove asks first.
	m, _ = send(m, keyRunes("x"))
	assert.True(t, m.project.confirmRemove)
	m, _ = send(m, keyRunes("y"))
	assert.Equal(t, 0, m.project.project.Len(brd.KindUISpec))
	assert.True(t, m.project.Dirty())
}

func TestProjectTabsFollowTemplate(t *testing.T) {
	a := openApp(t)
	s := NewProjectViewScreen(a, theme.DefaultStyles())
	s.open(newProject(t, a, brd.TemplateNormal))
	assert.Equal(t, brd.BaseKinds, s.kinds)

	s.Update(keyType(tea.KeyShiftTab))
	assert.Equal(t, brd.KindTraceability, s.kind())
	s.Update(keyType(tea.KeyTab))
	assert.Equal(t, brd.KindUISpec, s.kind())
}

func TestOverviewEdit(t *testing.T) {
	a := openApp(t)
	p := newProject(t, a, brd.TemplateNormal)

	m := NewModel(a)
	m, _ = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = send(m, NavigateMsg{Screen: ScreenProject, Data: p})
	m, cmd := send(m, keyRunes("o"))
	m, _ = send(m, cmd())
	require.Equal(t, ScreenOverview, m.screen)

	m, _ = send(m, keyType(tea.KeyCtrlU))
	m = typeText(m, "Order Hub")
	m, cmd = send(m, keyType(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	m, _ = send(m, cmd())

	assert.Equal(t, ScreenProject, m.screen)
	assert.Equal(t, "Order Hub", m.project.project.Overview.ProjectName)
	assert.True(t, m.project.Dirty())
}

func TestConfigEditorSave(t *testing.T) {
	a := openApp(t)
	s := NewConfigEditorScreen(a, theme.DefaultStyles())
	s.loadFields()

	// Default Model is the second row.
	s.Update(keyType(tea.KeyDown))
	before := a.Config().LLM.DefaultModel
	s.Update(keyType(tea.KeyRight))
	s.Update(keyRunes("s"))
	require.NoError(t, s.err)
	assert.True(t, s.saved)
	assert.NotEqual(t, before, a.Config().LLM.DefaultModel)

	// An invalid URL is rejected and nothing changes.
	s.cursor = 0
	s.Update(keyType(tea.KeyEnter))
	require.True(t, s.Editing())
	s.input.SetValue("localhost:11434")
	s.Update(keyType(tea.KeyEnter))
	s.Update(keyRunes("s"))
	require.Error(t, s.err)
	assert.NotEqual(t, "localhost:11434", a.Config().LLM.BaseURL)
}

func TestGatewayIndicator(t *testing.T) {
	a := openApp(t)
	m := NewModel(a)
	m, _ = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), "ollama: checking")

	m, _ = send(m, GatewayStatusMsg{Status: suggest.Status{Reachable: true, Models: []string{"llama3.2", "mistral"}}})
	assert.Contains(t, m.View(), "ollama: up (2 models)")

	m, _ = send(m, GatewayStatusMsg{Status: suggest.Status{Reachable: false}})
	assert.Contains(t, m.View(), "ollama: down")
}
