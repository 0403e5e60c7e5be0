package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"brd-tui/internal/brd"
	"brd-tui/internal/db"
	"brd-tui/internal/export"
	"brd-tui/internal/suggest"
)

// maxBody bounds request bodies, imports included.
const maxBody = 8 << 20

// jsonOK writes v as a JSON response with the given status.
func jsonOK(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// The status line is already out; an encode error cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError writes {"error": msg} plus any extra fields.
func jsonError(w http.ResponseWriter, code int, msg string, extra map[string]any) {
	body := map[string]any{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	jsonOK(w, code, body)
}

// writeErr maps domain errors onto HTTP statuses.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	var (
		ve *brd.ValidationError
		ie *brd.IndexError
	)
	switch {
	case errors.As(err, &ve):
		jsonError(w, http.StatusUnprocessableEntity, "validation failed", map[string]any{"fields": ve.Fields})
	case errors.Is(err, db.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &ie), errors.Is(err, brd.ErrUnknownKind), errors.Is(err, brd.ErrKindNotAllowed):
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, suggest.ErrTimeout):
		jsonError(w, http.StatusGatewayTimeout, err.Error(), nil)
	case errors.Is(err, suggest.ErrUnavailable):
		jsonError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		s.a.Logs().System.Error("web: request failed", "err", err)
		jsonError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	return nil
}

// pathKind parses the {kind} path value; labels and aliases are accepted.
func pathKind(r *http.Request) (brd.Kind, error) {
	return brd.ParseKind(r.PathValue("kind"))
}

func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return i, nil
}

// mutate loads a project, applies fn, and saves it.
func (s *Server) mutate(ctx context.Context, id string, fn func(p *brd.Project) error) (*brd.Project, error) {
	p, err := s.a.LoadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.a.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.a.ListProjects(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, list)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Overview     brd.Overview     `json:"overview"`
		TemplateKind brd.TemplateKind `json:"template_kind"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.TemplateKind == "" {
		req.TemplateKind = brd.TemplateNormal
	}
	p, err := s.a.CreateProject(r.Context(), req.Overview, req.TemplateKind)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusCreated, p)
}

func (s *Server) handleImportProject(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(w, r, &raw); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, err := s.a.ImportJSON(r.Context(), raw)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.a.LoadProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.a.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetOverview(w http.ResponseWriter, r *http.Request) {
	var o brd.Overview
	if err := decodeBody(w, r, &o); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, err := s.mutate(r.Context(), r.PathValue("id"), func(p *brd.Project) error {
		return p.SetOverview(o)
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, p)
}

func (s *Server) handleSetMultiAgent(w http.ResponseWriter, r *http.Request) {
	m := brd.NewMultiAgentDesign()
	if err := decodeBody(w, r, m); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, err := s.mutate(r.Context(), r.PathValue("id"), func(p *brd.Project) error {
		if !p.Template.HasAgents() {
			return fmt.Errorf("multi-agent design on %s project: %w", p.Template, brd.ErrKindNotAllowed)
		}
		p.MultiAgent = m
		return p.Validate()
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, p)
}

func (s *Server) handleClearMultiAgent(w http.ResponseWriter, r *http.Request) {
	p, err := s.mutate(r.Context(), r.PathValue("id"), func(p *brd.Project) error {
		p.MultiAgent = nil
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, p)
}

func (s *Server) handleDefaultGovernance(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, http.StatusOK, brd.DefaultGovernanceFramework())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := s.a.LoadProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	data, err := export.Bytes(p)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	name := export.FileName(p, p.UpdatedAt)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.a.LoadProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	resp := struct {
		Problems []string      `json:"problems"`
		Review   *brd.Findings `json:"multi_agent_review,omitempty"`
	}{Problems: p.CheckReferences()}
	if resp.Problems == nil {
		resp.Problems = []string{}
	}
	if p.MultiAgent != nil {
		f := p.MultiAgent.Review()
		resp.Review = &f
	}
	jsonOK(w, http.StatusOK, resp)
}

func (s *Server) handleProjectEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v), nil)
			return
		}
		limit = n
	}
	events, err := s.a.Events(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if events == nil {
		events = []db.Event{}
	}
	jsonOK(w, http.StatusOK, events)
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	k, err := pathKind(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var fields map[string]string
	if err := decodeBody(w, r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, err := s.mutate(r.Context(), r.PathValue("id"), func(p *brd.Project) error {
		rec, err := brd.BuildRecord(k, fields)
		if err != nil {
			return err
		}
		return p.Add(rec)
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusCreated, map[string]any{"index": p.Len(k) - 1, "project": p})
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	k, err := pathKind(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	i, err := pathIndex(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	var fields map[string]string
	if err := decodeBody(w, r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, err := s.mutate(r.Context(), r.PathValue("id"), func(p *brd.Project) error {
		return p.Update(k, i, fields)
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, p)
}

func (s *Server) handleRemoveRecord(w http.ResponseWriter, r *http.Request) {
	k, err := pathKind(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	i, err := pathIndex(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, err := s.mutate(r.Context(), r.PathValue("id"), func(p *brd.Project) error {
		return p.Remove(k, i)
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, p)
}

// ---------------------------------------------------------------------------
// Schema & gateway
// ---------------------------------------------------------------------------

type fieldDTO struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

var fieldTypeNames = map[brd.FieldType]string{
	brd.FieldText:     "text",
	brd.FieldLongText: "long_text",
	brd.FieldEnum:     "enum",
	brd.FieldFloat:    "number",
	brd.FieldBool:     "bool",
	brd.FieldDate:     "date",
}

func fieldDTOs(fs []brd.Field) []fieldDTO {
	out := make([]fieldDTO, len(fs))
	for i, f := range fs {
		out[i] = fieldDTO{Name: f.Name, Label: f.Label, Type: fieldTypeNames[f.Type], Options: f.Options, Required: f.Required}
	}
	return out
}

// handleSchema describes the overview and every record kind.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	type kindDTO struct {
		Kind   brd.Kind   `json:"kind"`
		Label  string     `json:"label"`
		Agent  bool       `json:"agent"`
		Fields []fieldDTO `json:"fields"`
	}
	kinds := make([]kindDTO, 0, len(brd.AllKinds))
	for _, k := range brd.AllKinds {
		kinds = append(kinds, kindDTO{Kind: k, Label: k.Label(), Agent: k.IsAgent(), Fields: fieldDTOs(brd.Schema(k))})
	}
	jsonOK(w, http.StatusOK, map[string]any{
		"overview": fieldDTOs(brd.OverviewSchema),
		"kinds":    kinds,
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind        string   `json:"kind"`
		Hint        string   `json:"hint"`
		Model       string   `json:"model"`
		Temperature *float64 `json:"temperature"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	k, err := brd.ParseKind(req.Kind)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	sreq := suggest.Request{Kind: k, Hint: req.Hint, Model: brd.ModelName(req.Model), Temperature: -1}
	if req.Temperature != nil {
		sreq.Temperature = *req.Temperature
	}
	sg, err := s.a.Suggest(r.Context(), sreq)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{"kind": sg.Kind, "fields": sg.Fields})
}

func (s *Server) handleGateway(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, s.a.Probe(r.Context()))
}
