package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"brd-tui/internal/brd"
)

// timeLayout is fixed width so that text order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts what this store writes, any RFC3339 value, and the
// zone-less ISO form older databases contain (read as UTC).
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.999999999", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

const projectColumns = `project_id, project_name, template_type, overview_json,
	ui_specs_json, api_specs_json, llm_prompts_json, db_schema_json, tech_stack_json, traceability_json,
	agent_architectures_json, agent_configurations_json, agent_tasks_json, multi_agent_json,
	created_at, updated_at`

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// Save validates p and writes every part of it, inserting a new row or
// overwriting the existing one. On success p.UpdatedAt is advanced; on
// failure p is left untouched.
func (d *DB) Save(ctx context.Context, p *brd.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}

	updated := time.Now().UTC()
	if updated.Before(p.CreatedAt) {
		updated = p.CreatedAt
	}

	overview, err := json.Marshal(p.Overview)
	if err != nil {
		return &PersistenceError{Op: "save", ID: p.ID, Err: fmt.Errorf("encode overview: %w", err)}
	}
	blocks := make([]any, 0, len(brd.AllKinds))
	for _, b := range []any{
		p.UISpecs, p.APISpecs, p.LLMPrompts, p.DBSchema, p.TechStack, p.Traceability,
		p.AgentArchitectures, p.AgentConfigurations, p.AgentTasks,
	} {
		raw, err := encodeBlock(b)
		if err != nil {
			return &PersistenceError{Op: "save", ID: p.ID, Err: err}
		}
		blocks = append(blocks, raw)
	}
	multi := ""
	if p.MultiAgent != nil {
		raw, err := json.Marshal(p.MultiAgent)
		if err != nil {
			return &PersistenceError{Op: "save", ID: p.ID, Err: fmt.Errorf("encode multi-agent design: %w", err)}
		}
		multi = string(raw)
	}

	args := []any{p.ID, p.Overview.ProjectName, string(p.Template), string(overview)}
	args = append(args, blocks...)
	args = append(args, multi, formatTime(p.CreatedAt), formatTime(updated))

	_, err = d.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET
			project_name = excluded.project_name,
			template_type = excluded.template_type,
			overview_json = excluded.overview_json,
			ui_specs_json = excluded.ui_specs_json,
			api_specs_json = excluded.api_specs_json,
			llm_prompts_json = excluded.llm_prompts_json,
			db_schema_json = excluded.db_schema_json,
			tech_stack_json = excluded.tech_stack_json,
			traceability_json = excluded.traceability_json,
			agent_architectures_json = excluded.agent_architectures_json,
			agent_configurations_json = excluded.agent_configurations_json,
			agent_tasks_json = excluded.agent_tasks_json,
			multi_agent_json = excluded.multi_agent_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		args...,
	)
	if err != nil {
		return &PersistenceError{Op: "save", ID: p.ID, Err: err}
	}
	p.UpdatedAt = updated
	return nil
}

func encodeBlock(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode block: %w", err)
	}
	if string(raw) == "null" {
		return "[]", nil
	}
	return string(raw), nil
}

// Load reads one project. Each collection is decoded on its own: a block
// that is missing, malformed, or holds a record that no longer validates
// is logged and loaded as an empty collection.
func (d *DB) Load(ctx context.Context, id string) (*brd.Project, error) {
	row := d.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE project_id = ?`, id,
	)

	var (
		projectID, name      string
		template, overview   sql.NullString
		blocks               [9]sql.NullString
		multi                sql.NullString
		createdAt, updatedAt sql.NullString
	)
	dest := []any{&projectID, &name, &template, &overview}
	for i := range blocks {
		dest = append(dest, &blocks[i])
	}
	dest = append(dest, &multi, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load project %s: %w", id, ErrNotFound)
		}
		return nil, &PersistenceError{Op: "load", ID: id, Err: err}
	}

	p := &brd.Project{ID: projectID}

	if !overview.Valid || json.Unmarshal([]byte(overview.String), &p.Overview) != nil {
		return nil, &PersistenceError{Op: "load", ID: id, Err: fmt.Errorf("%w: overview", ErrCorruptRow)}
	}

	p.Template = brd.TemplateKind(template.String)
	if !template.Valid || template.String == "" {
		p.Template = brd.TemplateNormal
	} else if !p.Template.Valid() {
		d.log.Warn("unknown template kind, using Normal", "project", id, "template", template.String)
		p.Template = brd.TemplateNormal
	}

	p.UISpecs = decodeBlock[brd.UISpecification](d, id, brd.KindUISpec, blocks[0])
	p.APISpecs = decodeBlock[brd.APISpecification](d, id, brd.KindAPISpec, blocks[1])
	p.LLMPrompts = decodeBlock[brd.LLMPrompt](d, id, brd.KindLLMPrompt, blocks[2])
	p.DBSchema = decodeBlock[brd.DBField](d, id, brd.KindDBField, blocks[3])
	p.TechStack = decodeBlock[brd.TechStackEntry](d, id, brd.KindTechStack, blocks[4])
	p.Traceability = decodeBlock[brd.TraceLink](d, id, brd.KindTraceability, blocks[5])
	p.AgentArchitectures = decodeBlock[brd.AgentArchitecture](d, id, brd.KindAgentArch, blocks[6])
	p.AgentConfigurations = decodeBlock[brd.AgentConfiguration](d, id, brd.KindAgentConfig, blocks[7])
	p.AgentTasks = decodeBlock[brd.AgentTask](d, id, brd.KindAgentTask, blocks[8])

	if multi.Valid && strings.TrimSpace(multi.String) != "" {
		var m brd.MultiAgentDesign
		if err := json.Unmarshal([]byte(multi.String), &m); err != nil {
			d.log.Warn("dropping malformed block", "project", id, "block", "multi_agent", "err", err)
		} else {
			p.MultiAgent = &m
		}
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt.String); err != nil {
		return nil, &PersistenceError{Op: "load", ID: id, Err: fmt.Errorf("%w: %v", ErrCorruptRow, err)}
	}
	if p.UpdatedAt, err = parseTime(updatedAt.String); err != nil {
		return nil, &PersistenceError{Op: "load", ID: id, Err: fmt.Errorf("%w: %v", ErrCorruptRow, err)}
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}

	p.Normalize()
	return p, nil
}

func decodeBlock[T interface{ Validate() error }](d *DB, id string, k brd.Kind, raw sql.NullString) []T {
	out := []T{}
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return out
	}
	var recs []T
	if err := json.Unmarshal([]byte(raw.String), &recs); err != nil {
		d.log.Warn("dropping malformed block", "project", id, "block", string(k), "err", err)
		return out
	}
	for i, r := range recs {
		if err := r.Validate(); err != nil {
			d.log.Warn("dropping block with invalid record", "project", id, "block", string(k), "index", i, "err", err)
			return out
		}
	}
	if recs == nil {
		return out
	}
	return recs
}

// Delete removes a project permanently.
func (d *DB) Delete(ctx context.Context, id string) error {
	res, err := d.conn.ExecContext(ctx, `DELETE FROM projects WHERE project_id = ?`, id)
	if err != nil {
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns every project, most recently updated first.
func (d *DB) List(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT project_id, project_name, template_type, created_at, updated_at
		 FROM projects ORDER BY updated_at DESC, project_id`,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	out := []ProjectSummary{}
	for rows.Next() {
		var (
			s                    ProjectSummary
			template             sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&s.ID, &s.Name, &template, &createdAt, &updatedAt); err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		s.Template = brd.TemplateKind(template.String)
		if !s.Template.Valid() {
			s.Template = brd.TemplateNormal
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, &PersistenceError{Op: "list", ID: s.ID, Err: err}
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, &PersistenceError{Op: "list", ID: s.ID, Err: err}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return out, nil
}

// Count returns the number of stored projects.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return n, nil
}
