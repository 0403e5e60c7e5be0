package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brd-tui/internal/brd"
	"brd-tui/internal/config"
	"brd-tui/internal/db"
	"brd-tui/internal/suggest"
)

func newApp(t *testing.T) *App {
	t.Helper()
	a, err := Open(context.Background(), Options{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func orderTracker() brd.Overview {
	return brd.Overview{
		ProjectName:        "Order Tracker",
		ProjectDescription: "Tracks customer orders end to end",
		BusinessGoal:       "Reduce order-status inquiries by 40%",
		DocumentVersion:    "1.0",
	}
}

func TestOpenCreatesWorkspace(t *testing.T) {
	a := newApp(t)
	ws := a.Workspace()
	for _, p := range []string{"brd.db", "logs/system.log", "logs/audit.log"} {
		_, err := os.Stat(filepath.Join(ws, p))
		assert.NoError(t, err, p)
	}
	assert.Equal(t, filepath.Join(ws, "exports"), a.ExportDir())
}

func TestOpenRejectsBadEnvironment(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "chatty")
	_, err := Open(context.Background(), Options{Workspace: t.TempDir()})
	assert.ErrorContains(t, err, "logging.level")
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)

	var changes []Change
	a.Subscribe(func(c Change) { changes = append(changes, c) })

	p, err := a.CreateProject(ctx, orderTracker(), brd.TemplateNormal)
	require.NoError(t, err)
	assert.Equal(t, p.ID, a.State().LastProjectID)

	require.NoError(t, p.Add(&brd.UISpecification{
		ScreenComponent:        "Order List",
		RequirementDescription: "Paginated list of orders with status filter",
	}))
	require.NoError(t, a.SaveProject(ctx, p))

	got, err := a.LoadProject(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len(brd.KindUISpec))
	assert.Equal(t, "Order List", got.UISpecs[0].ScreenComponent)

	list, err := a.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Order Tracker", list[0].Name)

	path, err := a.ExportProject(ctx, got, "")
	require.NoError(t, err)
	assert.Equal(t, a.ExportDir(), filepath.Dir(path))

	require.NoError(t, a.DeleteProject(ctx, p.ID))
	_, err = a.LoadProject(ctx, p.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Empty(t, a.State().LastProjectID)

	require.Len(t, changes, 3)
	assert.Equal(t, ChangeSaved, changes[0].Type)
	assert.Equal(t, ChangeSaved, changes[1].Type)
	assert.Equal(t, ChangeDeleted, changes[2].Type)

	events, err := a.Events(ctx, p.ID, 0)
	require.NoError(t, err)
	var types []string
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.Equal(t, []string{
		db.EventProjectDeleted, db.EventProjectExported, db.EventProjectUpdated, db.EventProjectCreated,
	}, types)
}

func TestSaveInvalidKeepsWorkingCopy(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	p, err := a.CreateProject(ctx, orderTracker(), brd.TemplateNormal)
	require.NoError(t, err)

	p.Overview.ProjectName = ""
	before := p.UpdatedAt
	err = a.SaveProject(ctx, p)
	var ve *brd.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, before, p.UpdatedAt)

	stored, err := a.LoadProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Order Tracker", stored.Overview.ProjectName)
}

func TestDumpImportAssignsNewID(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	p, err := a.CreateProject(ctx, orderTracker(), brd.TemplateAgentic)
	require.NoError(t, err)
	require.NoError(t, p.Add(&brd.AgentArchitecture{
		AgentID: "AG-1", AgentName: "Router", AgentType: brd.AgentReactive, PrimaryRole: "Route requests",
	}))
	require.NoError(t, a.SaveProject(ctx, p))

	data, err := a.DumpJSON(ctx, p.ID)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, p.ID, doc["project_id"])

	imported, err := a.ImportJSON(ctx, data)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, imported.ID)
	assert.Equal(t, 1, imported.Len(brd.KindAgentArch))

	list, err := a.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = a.ImportJSON(ctx, []byte(`{"overview":{"project_name":""}}`))
	var ve *brd.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestImportHandWrittenDocument(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)

	doc := `{
		"template_type": "Normal",
		"overview": {
			"project_name": "Order Tracker",
			"project_description": "Tracks customer orders end to end",
			"business_goal": "Reduce order-status inquiries by 40%",
			"document_version": "1.0"
		}
	}`
	before := time.Now().UTC().Add(-time.Second)
	p, err := a.ImportJSON(ctx, []byte(doc))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.CreatedAt.After(before))
	assert.False(t, p.UpdatedAt.Before(p.CreatedAt))

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	withTimes := `{"project_id":"proj-elsewhere","created_at":"2024-03-01T09:00:00Z","updated_at":"2024-03-02T09:00:00Z",` +
		doc[strings.Index(doc, `"template_type"`):]
	q, err := a.ImportJSON(ctx, []byte(withTimes))
	require.NoError(t, err)
	assert.NotEqual(t, "proj-elsewhere", q.ID)
	assert.True(t, q.CreatedAt.Equal(created))
	assert.True(t, q.UpdatedAt.After(before), "updated_at is the import time")

	stored, err := a.LoadProject(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(created))
}

func TestSuggestUsesConfiguredDefaults(t *testing.T) {
	var got struct {
		Model   string         `json:"model"`
		Options map[string]any `json:"options"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprintln(w, `{"response":"{\"category\":\"Backend\",\"technology_tool\":\"Go\"}","done":true}`)
	}))
	defer srv.Close()

	a := newApp(t)
	cfg := a.Config()
	cfg.LLM.BaseURL = srv.URL
	cfg.LLM.DefaultModel = "phi4-mini"
	cfg.LLM.Temperature = 0.2
	require.NoError(t, a.UpdateConfig(cfg))

	s, err := a.Suggest(context.Background(), suggest.Request{Kind: brd.KindTechStack, Hint: "language", Temperature: -1})
	require.NoError(t, err)
	assert.Equal(t, "Go", s.Fields["technology_tool"])
	assert.Equal(t, "phi4-mini", got.Model)
	assert.Equal(t, 0.2, got.Options["temperature"])
	assert.Equal(t, "phi4-mini", a.State().LastModel)

	reloaded, err := config.Load(filepath.Join(a.Workspace(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL, reloaded.LLM.BaseURL)
}

func TestSuggestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := newApp(t)
	cfg := a.Config()
	cfg.LLM.BaseURL = url
	require.NoError(t, a.UpdateConfig(cfg))

	_, err := a.Suggest(context.Background(), suggest.Request{Kind: brd.KindUISpec, Hint: "x", Temperature: -1})
	assert.ErrorIs(t, err, suggest.ErrUnavailable)
	assert.False(t, a.Probe(context.Background()).Reachable)
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	a := newApp(t)
	cfg := a.Config()
	cfg.LLM.TimeoutSeconds = 0
	assert.Error(t, a.UpdateConfig(cfg))
	assert.Equal(t, 300, a.Config().LLM.TimeoutSeconds)
}
