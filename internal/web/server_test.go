package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
)

type testServer struct {
	*httptest.Server
	a *app.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	a, err := app.Open(context.Background(), app.Options{Workspace: t.TempDir()})
	require.NoError(t, err)
	s := New(a)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Stop(context.Background())
		a.Close()
	})
	return &testServer{Server: ts, a: a}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

var orderTracker = map[string]any{
	"overview": map[string]string{
		"project_name":        "Order Tracker",
		"project_description": "Tracks customer orders end to end",
		"business_goal":       "Reduce order-status inquiries by 40%",
		"document_version":    "1.0",
	},
	"template_kind": "Normal",
}

func (ts *testServer) create(t *testing.T) string {
	t.Helper()
	resp, data := ts.do(t, http.MethodPost, "/api/projects", orderTracker)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var p brd.Project
	require.NoError(t, json.Unmarshal(data, &p))
	return p.ID
}

func TestProjectRoutes(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t)

	resp, data := ts.do(t, http.MethodPost, "/api/projects/"+id+"/records/ui_specs", map[string]string{
		"screen_component":        "Order List",
		"requirement_description": "Paginated list of orders with status filter",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var added struct {
		Index   int         `json:"index"`
		Project brd.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(data, &added))
	assert.Equal(t, 0, added.Index)

	resp, data = ts.do(t, http.MethodPut, "/api/projects/"+id+"/records/ui_specs/0", map[string]string{"priority": "Must"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = ts.do(t, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p brd.Project
	require.NoError(t, json.Unmarshal(data, &p))
	require.Len(t, p.UISpecs, 1)
	assert.Equal(t, "Order List", p.UISpecs[0].ScreenComponent)
	assert.Equal(t, brd.PriorityMust, p.UISpecs[0].Priority)

	resp, data = ts.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"project_name":"Order Tracker"`)

	resp, _ = ts.do(t, http.MethodDelete, "/api/projects/"+id+"/records/ui_specs/0", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, "/api/projects/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodGet, "/api/projects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t)

	resp, data := ts.do(t, http.MethodPost, "/api/projects/"+id+"/records/ui_specs", map[string]string{"screen_component": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), "requirement_description")

	resp, _ = ts.do(t, http.MethodPut, "/api/projects/"+id+"/records/ui_specs/3", map[string]string{"priority": "Must"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/api/projects/"+id+"/records/widgets", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/api/projects/"+id+"/records/agent_tasks", map[string]string{
		"task_id": "T-1", "agent_id": "AG-1", "task_name": "Classify",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "agent kinds are rejected on Normal projects")

	resp, _ = ts.do(t, http.MethodGet, "/api/projects/proj-missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, "/api/projects/"+id+"/overview", map[string]string{"project_name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExportDownload(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t)

	resp, data := ts.do(t, http.MethodGet, "/api/projects/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "BRD_Order_Tracker_")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Overview", f.GetSheetList()[0])
}

func TestReferences(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t)
	resp, _ := ts.do(t, http.MethodPost, "/api/projects/"+id+"/records/traceability", map[string]string{
		"business_requirement_id": "BR-1",
		"business_requirement":    "Customers can see order status",
		"linked_ui_ids":           "UI-404",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data := ts.do(t, http.MethodGet, "/api/projects/"+id+"/references", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Problems []string `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"Requirement BR-1 links unknown UI id UI-404"}, out.Problems)
}

func TestSuggestGatewayDown(t *testing.T) {
	ts := newTestServer(t)
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	cfg := ts.a.Config()
	cfg.LLM.BaseURL = url
	require.NoError(t, ts.a.UpdateConfig(cfg))

	resp, _ := ts.do(t, http.MethodPost, "/api/suggest", map[string]any{"kind": "ui_specs", "hint": "orders"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, data := ts.do(t, http.MethodGet, "/api/gateway", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"reachable":false`)
}

func TestSchemaAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodGet, "/api/schema", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"kind":"agent_tasks"`)

	resp, data = ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "go_goroutines")
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		require.True(t, lines.Scan(), "stream ended: %v", lines.Err())
		return lines.Text()
	}
	require.Equal(t, "event: connected", next())

	id := ts.create(t)
	for {
		line := next()
		if line == "event: project_saved" {
			break
		}
	}
	data := next()
	assert.True(t, strings.HasPrefix(data, "data: "), data)
	assert.Contains(t, data, fmt.Sprintf(`"project_id":%q`, id))
}

func TestMultiAgentDesign(t *testing.T) {
	ts := newTestServer(t)
	normal := ts.create(t)

	design := map[string]any{
		"framework_type": "CrewAI",
		"agents": []map[string]any{{
			"agent_id": "AGENT-1", "agent_name": "Router", "agent_role": "Classifier",
			"agent_type": "LLM-based", "primary_responsibility": "Route tickets",
			"max_retries": 2, "timeout_seconds": 30,
		}},
	}
	resp, _ := ts.do(t, http.MethodPut, "/api/projects/"+normal+"/multi-agent", design)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "Normal projects carry no design")

	body := map[string]any{"overview": orderTracker["overview"], "template_kind": "Multi-Agentic"}
	resp, data := ts.do(t, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var p brd.Project
	require.NoError(t, json.Unmarshal(data, &p))

	resp, data = ts.do(t, http.MethodPut, "/api/projects/"+p.ID+"/multi-agent", design)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &p))
	require.NotNil(t, p.MultiAgent)
	assert.Equal(t, "CrewAI", p.MultiAgent.Framework)
	assert.Len(t, p.MultiAgent.Agents, 1)

	resp, data = ts.do(t, http.MethodPut, "/api/projects/"+p.ID+"/multi-agent", map[string]any{"framework_type": "Autogen"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), "multi_agent.framework_type")

	resp, data = ts.do(t, http.MethodDelete, "/api/projects/"+p.ID+"/multi-agent", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared brd.Project
	require.NoError(t, json.Unmarshal(data, &cleared))
	assert.Nil(t, cleared.MultiAgent)

	resp, data = ts.do(t, http.MethodGet, "/api/governance/default", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "default_framework")
}
