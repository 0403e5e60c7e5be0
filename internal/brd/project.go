package brd

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Project is the in-memory working copy of one BRD. Mutations are not
// persisted until the caller saves the project.
type Project struct {
	ID       string       `json:"project_id"`
	Template TemplateKind `json:"template_type"`
	Overview Overview     `json:"overview"`

	UISpecs      []UISpecification  `json:"ui_specs"`
	APISpecs     []APISpecification `json:"api_specs"`
	LLMPrompts   []LLMPrompt        `json:"llm_prompts"`
	DBSchema     []DBField          `json:"db_schema"`
	TechStack    []TechStackEntry   `json:"tech_stack"`
	Traceability []TraceLink        `json:"traceability"`

	AgentArchitectures  []AgentArchitecture  `json:"agent_architectures"`
	AgentConfigurations []AgentConfiguration `json:"agent_configurations"`
	AgentTasks          []AgentTask          `json:"agent_tasks"`

	// MultiAgent is the optional extended design; nil when unused.
	MultiAgent *MultiAgentDesign `json:"multi_agent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID returns a fresh project identifier. Identifiers are UUIDv7 and so
// sort by creation time.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate project id: %w", err)
	}
	return "proj-" + id.String(), nil
}

// Create starts a new project from a validated overview.
func Create(o Overview, t TemplateKind) (*Project, error) {
	var c check
	c.merge("overview", o.Validate())
	c.oneOf("template_type", t.Valid(), string(t), options(AllTemplateKinds))
	if err := c.err(); err != nil {
		return nil, err
	}
	id, err := NewID()
	if err != nil {
		return nil, err
	}
	ts := time.Now().UTC()
	p := &Project{
		ID:        id,
		Template:  t,
		Overview:  o,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	p.Normalize()
	return p, nil
}

// Normalize replaces nil collections with empty ones so every collection
// is present after construction or decoding.
func (p *Project) Normalize() {
	if p.Template == "" {
		p.Template = TemplateNormal
	}
	if p.UISpecs == nil {
		p.UISpecs = []UISpecification{}
	}
	if p.APISpecs == nil {
		p.APISpecs = []APISpecification{}
	}
	if p.LLMPrompts == nil {
		p.LLMPrompts = []LLMPrompt{}
	}
	if p.DBSchema == nil {
		p.DBSchema = []DBField{}
	}
	if p.TechStack == nil {
		p.TechStack = []TechStackEntry{}
	}
	if p.Traceability == nil {
		p.Traceability = []TraceLink{}
	}
	if p.AgentArchitectures == nil {
		p.AgentArchitectures = []AgentArchitecture{}
	}
	if p.AgentConfigurations == nil {
		p.AgentConfigurations = []AgentConfiguration{}
	}
	if p.AgentTasks == nil {
		p.AgentTasks = []AgentTask{}
	}
}

// Kinds returns the record kinds that apply to this project.
func (p *Project) Kinds() []Kind { return KindsFor(p.Template) }

// Touch advances UpdatedAt, never to a time before CreatedAt.
func (p *Project) Touch(now time.Time) {
	now = now.UTC()
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.UpdatedAt = now
}

// SetOverview replaces the overview when o is valid.
func (p *Project) SetOverview(o Overview) error {
	if err := o.Validate(); err != nil {
		return err
	}
	p.Overview = o
	return nil
}

// Len returns the number of records of kind k.
func (p *Project) Len(k Kind) int {
	switch k {
	case KindUISpec:
		return len(p.UISpecs)
	case KindAPISpec:
		return len(p.APISpecs)
	case KindLLMPrompt:
		return len(p.LLMPrompts)
	case KindDBField:
		return len(p.DBSchema)
	case KindTechStack:
		return len(p.TechStack)
	case KindTraceability:
		return len(p.Traceability)
	case KindAgentArch:
		return len(p.AgentArchitectures)
	case KindAgentConfig:
		return len(p.AgentConfigurations)
	case KindAgentTask:
		return len(p.AgentTasks)
	}
	return 0
}

// Records returns copies of the records of kind k in insertion order.
func (p *Project) Records(k Kind) []Record {
	switch k {
	case KindUISpec:
		return asRecords(p.UISpecs)
	case KindAPISpec:
		return asRecords(p.APISpecs)
	case KindLLMPrompt:
		return asRecords(p.LLMPrompts)
	case KindDBField:
		return asRecords(p.DBSchema)
	case KindTechStack:
		return asRecords(p.TechStack)
	case KindTraceability:
		return asRecords(p.Traceability)
	case KindAgentArch:
		return asRecords(p.AgentArchitectures)
	case KindAgentConfig:
		return asRecords(p.AgentConfigurations)
	case KindAgentTask:
		return asRecords(p.AgentTasks)
	}
	return nil
}

// Record returns a copy of the record at position i of kind k.
func (p *Project) Record(k Kind, i int) (Record, error) {
	recs := p.Records(k)
	if i < 0 || i >= len(recs) {
		return nil, &IndexError{Kind: k, Index: i, Len: len(recs)}
	}
	return recs[i], nil
}

// Add validates r and appends it to its collection.
func (p *Project) Add(r Record) error {
	if r.Kind().IsAgent() && !p.Template.HasAgents() {
		return fmt.Errorf("%w: %s on %s project", ErrKindNotAllowed, r.Kind(), p.Template)
	}
	if err := r.Validate(); err != nil {
		return err
	}
	switch v := r.(type) {
	case *UISpecification:
		p.UISpecs = append(p.UISpecs, *v)
	case *APISpecification:
		p.APISpecs = append(p.APISpecs, *v)
	case *LLMPrompt:
		p.LLMPrompts = append(p.LLMPrompts, *v)
	case *DBField:
		p.DBSchema = append(p.DBSchema, *v)
	case *TechStackEntry:
		p.TechStack = append(p.TechStack, *v)
	case *TraceLink:
		p.Traceability = append(p.Traceability, *v)
	case *AgentArchitecture:
		p.AgentArchitectures = append(p.AgentArchitectures, *v)
	case *AgentConfiguration:
		p.AgentConfigurations = append(p.AgentConfigurations, *v)
	case *AgentTask:
		p.AgentTasks = append(p.AgentTasks, *v)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, r)
	}
	return nil
}

// Update assigns fields to the record at position i of kind k. The
// record is replaced only if the result validates.
func (p *Project) Update(k Kind, i int, fields map[string]string) error {
	switch k {
	case KindUISpec:
		return updateAt(k, p.UISpecs, i, fields)
	case KindAPISpec:
		return updateAt(k, p.APISpecs, i, fields)
	case KindLLMPrompt:
		return updateAt(k, p.LLMPrompts, i, fields)
	case KindDBField:
		return updateAt(k, p.DBSchema, i, fields)
	case KindTechStack:
		return updateAt(k, p.TechStack, i, fields)
	case KindTraceability:
		return updateAt(k, p.Traceability, i, fields)
	case KindAgentArch:
		return updateAt(k, p.AgentArchitectures, i, fields)
	case KindAgentConfig:
		return updateAt(k, p.AgentConfigurations, i, fields)
	case KindAgentTask:
		return updateAt(k, p.AgentTasks, i, fields)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// Replace swaps the record at position i for r after validating it.
func (p *Project) Replace(i int, r Record) error {
	k := r.Kind()
	if i < 0 || i >= p.Len(k) {
		return &IndexError{Kind: k, Index: i, Len: p.Len(k)}
	}
	fields := make(map[string]string)
	for _, f := range Schema(k) {
		fields[f.Name] = r.Get(f.Name)
	}
	return p.Update(k, i, fields)
}

// Remove deletes the record at position i of kind k. Later records shift
// down by one position.
func (p *Project) Remove(k Kind, i int) error {
	var err error
	switch k {
	case KindUISpec:
		p.UISpecs, err = removeAt(k, p.UISpecs, i)
	case KindAPISpec:
		p.APISpecs, err = removeAt(k, p.APISpecs, i)
	case KindLLMPrompt:
		p.LLMPrompts, err = removeAt(k, p.LLMPrompts, i)
	case KindDBField:
		p.DBSchema, err = removeAt(k, p.DBSchema, i)
	case KindTechStack:
		p.TechStack, err = removeAt(k, p.TechStack, i)
	case KindTraceability:
		p.Traceability, err = removeAt(k, p.Traceability, i)
	case KindAgentArch:
		p.AgentArchitectures, err = removeAt(k, p.AgentArchitectures, i)
	case KindAgentConfig:
		p.AgentConfigurations, err = removeAt(k, p.AgentConfigurations, i)
	case KindAgentTask:
		p.AgentTasks, err = removeAt(k, p.AgentTasks, i)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	return err
}

// Validate checks the overview and every record, collecting all
// violations. Record field names carry their position, for example
// "ui_specs[2].screen_component".
func (p *Project) Validate() error {
	var c check
	if p.ID == "" {
		c.add("project_id", "is required")
	}
	c.oneOf("template_type", p.Template.Valid(), string(p.Template), options(AllTemplateKinds))
	c.merge("overview", p.Overview.Validate())
	for _, k := range AllKinds {
		recs := p.Records(k)
		if k.IsAgent() && !p.Template.HasAgents() && len(recs) > 0 {
			c.add(string(k), "not allowed for %s template", p.Template)
			continue
		}
		for i, r := range recs {
			c.merge(fmt.Sprintf("%s[%d]", k, i), r.Validate())
		}
	}
	if p.MultiAgent != nil {
		c.merge("multi_agent", p.MultiAgent.Validate())
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		c.add("updated_at", "must not be before created_at")
	}
	return c.err()
}

// Clone returns a copy that shares no mutable state with p.
func (p *Project) Clone() *Project {
	cp := *p
	cp.UISpecs = slices.Clone(p.UISpecs)
	cp.APISpecs = slices.Clone(p.APISpecs)
	cp.LLMPrompts = slices.Clone(p.LLMPrompts)
	cp.DBSchema = slices.Clone(p.DBSchema)
	cp.TechStack = slices.Clone(p.TechStack)
	cp.Traceability = slices.Clone(p.Traceability)
	cp.AgentArchitectures = slices.Clone(p.AgentArchitectures)
	cp.AgentConfigurations = slices.Clone(p.AgentConfigurations)
	cp.AgentTasks = slices.Clone(p.AgentTasks)
	cp.MultiAgent = p.MultiAgent.Clone()
	cp.Normalize()
	return &cp
}

// Decode parses a serialized project document and validates it.
func Decode(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// recordPtr is satisfied by *T for every record type T.
type recordPtr[T any] interface {
	*T
	Record
}

func asRecords[T any, P recordPtr[T]](s []T) []Record {
	out := make([]Record, len(s))
	for i := range s {
		cp := s[i]
		out[i] = P(&cp)
	}
	return out
}

func updateAt[T any, P recordPtr[T]](k Kind, s []T, i int, fields map[string]string) error {
	if i < 0 || i >= len(s) {
		return &IndexError{Kind: k, Index: i, Len: len(s)}
	}
	cp := s[i]
	r := P(&cp)

	var c check
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c.merge("", r.Set(name, fields[name]))
	}
	if err := c.err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	s[i] = cp
	return nil
}

func removeAt[T any](k Kind, s []T, i int) ([]T, error) {
	if i < 0 || i >= len(s) {
		return s, &IndexError{Kind: k, Index: i, Len: len(s)}
	}
	return slices.Delete(s, i, i+1), nil
}
