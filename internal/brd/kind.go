package brd

import (
	"fmt"
	"slices"
	"strings"
)

// Kind names a record collection. The string value is also the JSON key
// of the collection in a serialized project.
type Kind string

const (
	KindUISpec       Kind = "ui_specs"
	KindAPISpec      Kind = "api_specs"
	KindLLMPrompt    Kind = "llm_prompts"
	KindDBField      Kind = "db_schema"
	KindTechStack    Kind = "tech_stack"
	KindTraceability Kind = "traceability"
	KindAgentArch    Kind = "agent_architectures"
	KindAgentConfig  Kind = "agent_configurations"
	KindAgentTask    Kind = "agent_tasks"
)

// BaseKinds are carried by every project, in document order.
var BaseKinds = []Kind{
	KindUISpec, KindAPISpec, KindLLMPrompt, KindDBField, KindTechStack, KindTraceability,
}

// AgentKinds are carried by Agentic and Multi-Agentic projects only.
var AgentKinds = []Kind{KindAgentArch, KindAgentConfig, KindAgentTask}

// AllKinds lists every record kind in document order.
var AllKinds = append(append([]Kind{}, BaseKinds...), AgentKinds...)

// KindsFor returns the kinds that apply to a template kind.
func KindsFor(t TemplateKind) []Kind {
	if t.HasAgents() {
		return AllKinds
	}
	return BaseKinds
}

// Label is the human-readable section name.
func (k Kind) Label() string {
	switch k {
	case KindUISpec:
		return "UI Specification"
	case KindAPISpec:
		return "API Specification"
	case KindLLMPrompt:
		return "LLM Prompts"
	case KindDBField:
		return "Database Schema"
	case KindTechStack:
		return "Tech Stack & Version Control"
	case KindTraceability:
		return "Traceability Matrix"
	case KindAgentArch:
		return "Agent Architecture"
	case KindAgentConfig:
		return "Agent Configuration"
	case KindAgentTask:
		return "Agent Tasks"
	}
	return string(k)
}

// IsAgent reports whether k is one of the agent collections.
func (k Kind) IsAgent() bool {
	switch k {
	case KindAgentArch, KindAgentConfig, KindAgentTask:
		return true
	default:
		return false
	}
}

var kindAliases = map[string]Kind{
	"ui":           KindUISpec,
	"api":          KindAPISpec,
	"llm":          KindLLMPrompt,
	"prompt":       KindLLMPrompt,
	"db":           KindDBField,
	"tech":         KindTechStack,
	"trace":        KindTraceability,
	"agent":        KindAgentArch,
	"agent-config": KindAgentConfig,
	"agent-task":   KindAgentTask,
}

// ParseKind accepts a kind value, its label or a short alias.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range AllKinds {
		if s == string(k) || strings.EqualFold(s, k.Label()) {
			return k, nil
		}
	}
	if k, ok := kindAliases[strings.ToLower(s)]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NewRecord returns an empty record of kind k with enum defaults applied.
func NewRecord(k Kind) (Record, error) {
	switch k {
	case KindUISpec:
		return &UISpecification{MasterDetail: MasterDetailNA, Priority: PriorityShould}, nil
	case KindAPISpec:
		return &APISpecification{Method: MethodGet, APIType: APIInternal}, nil
	case KindLLMPrompt:
		return &LLMPrompt{ModelName: ModelLlama32, Temperature: DefaultTemperature}, nil
	case KindDBField:
		return &DBField{DataType: DataVarchar, Relationship: RelationNA}, nil
	case KindTechStack:
		return &TechStackEntry{}, nil
	case KindTraceability:
		return &TraceLink{Status: StatusProposed}, nil
	case KindAgentArch:
		return &AgentArchitecture{AgentType: AgentAutonomous, CommunicationProtocol: "REST"}, nil
	case KindAgentConfig:
		return &AgentConfiguration{ParameterType: ParamString}, nil
	case KindAgentTask:
		return &AgentTask{TaskType: TaskDataProcessing}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// BuildRecord returns a validated record of kind k with fields applied on
// top of the defaults. Every rejected assignment and violated constraint
// is reported in one *ValidationError.
func BuildRecord(k Kind, fields map[string]string) (Record, error) {
	r, err := NewRecord(k)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	var c check
	for _, name := range names {
		c.merge("", r.Set(name, fields[name]))
	}
	if err := c.err(); err != nil {
		return r, err
	}
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}
