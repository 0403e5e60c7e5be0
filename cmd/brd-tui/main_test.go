package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderDoc = `{
  "project_id": "proj-original",
  "overview": {
    "project_name": "Order Tracker",
    "project_description": "Tracks customer orders end to end",
    "business_goal": "Reduce order-status inquiries",
    "document_version": "1.0"
  },
  "template_type": "Normal",
  "ui_specs": [
    {"screen_component": "Order List", "requirement_description": "Paged list of orders",
     "master_detail": "Master", "priority": "Must"}
  ],
  "traceability": [
    {"business_requirement_id": "BR-1", "business_requirement": "Customers see status",
     "linked_ui_ids": "UI-9", "status": "Proposed"}
  ]
}`

func run(t *testing.T, ws string, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--workspace", ws}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestProjectCommands(t *testing.T) {
	ws := t.TempDir()

	out, err := run(t, ws, "", "list")
	require.NoError(t, err)
	assert.Equal(t, "no projects\n", out)

	doc := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(doc, []byte(orderDoc), 0o644))
	out, err = run(t, ws, "", "import", doc)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, `imported "Order Tracker" as proj-`), out)
	id := strings.TrimSpace(out[strings.LastIndex(out, " "):])
	assert.NotEqual(t, "proj-original", id)

	out, err = run(t, ws, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, ws, "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "UI Specification")
	assert.Contains(t, out, "Requirement BR-1 links unknown UI id UI-9")

	out, err = run(t, ws, "", "dump", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"screen_component": "Order List"`)

	dir := t.TempDir()
	out, err = run(t, ws, "", "export", id, "--out", dir)
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.FileExists(t, path)

	out, err = run(t, ws, "no\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "aborted")

	_, err = run(t, ws, "", "delete", id, "--yes")
	require.NoError(t, err)
	_, err = run(t, ws, "", "show", id)
	assert.Error(t, err)
}

func TestSuggestRejectsBadInput(t *testing.T) {
	ws := t.TempDir()
	_, err := run(t, ws, "", "suggest", "widgets", "anything")
	assert.Error(t, err)

	_, err = run(t, ws, "", "suggest", "ui_specs", "--model", "gpt-9", "login")
	assert.Error(t, err)
}
