package brd

import (
	"fmt"
	"slices"
)

// MultiAgentDesign is the extended, cross-referencing model of a
// multi-agent system. Identifiers carry fixed prefixes (AGENT-, TASK-,
// TOOL-, INTERACTION-, WORKFLOW-, STATE-, ERROR-).
type MultiAgentDesign struct {
	Framework        string `json:"framework_type"`
	FrameworkVersion string `json:"framework_version,omitempty"`

	Agents        []AgentSpec    `json:"agents"`
	Tasks         []TaskSpec     `json:"tasks"`
	Tools         []ToolSpec     `json:"tools"`
	Interactions  []Interaction  `json:"interactions"`
	Workflows     []Workflow     `json:"workflows"`
	States        []StateSpec    `json:"states"`
	ErrorHandlers []ErrorHandler `json:"error_handlers"`
	LLMConfigs    []AgentLLM     `json:"llm_configs"`

	Patterns   []Pattern            `json:"patterns,omitempty"`
	Governance *GovernanceFramework `json:"governance,omitempty"`
}

var (
	agentRoles       = []string{"Classifier", "Executor", "Reviewer", "Coordinator", "Specialist", "Other"}
	agentImpls       = []string{"LLM-based", "Rule-based", "Hybrid", "Tool-based"}
	executionModes   = []string{"Sequential", "Parallel", "Conditional"}
	taskPriorities   = []string{"Critical", "High", "Medium", "Low"}
	toolTypes        = []string{"External API", "Internal Function", "Database Query", "LLM Call", "Webhook"}
	interactionTypes = []string{"Sequential", "Parallel", "Conditional", "Hierarchical", "Broadcast"}
	commMethods      = []string{"Direct Call", "Message Queue", "Shared State", "Event-based", "REST API"}
	frameworks       = []string{"LangGraph", "CrewAI", "Custom", "Hybrid"}
	stateTypes       = []string{"User Context", "Task State", "Workflow State", "Agent Memory", "Shared Context"}
	stateBackends    = []string{"In-Memory", "Database", "Cache", "Message Queue", "Distributed"}
	errorTypes       = []string{"Timeout", "API Failure", "Validation Error", "Resource Exhausted", "Authentication", "Other"}
	errorSeverities  = taskPriorities
	defaultFramework = "LangGraph"
)

// AgentSpec is one agent of a multi-agent design.
type AgentSpec struct {
	AgentID         string   `json:"agent_id"`
	Name            string   `json:"agent_name"`
	Role            string   `json:"agent_role"`
	Type            string   `json:"agent_type"`
	Responsibility  string   `json:"primary_responsibility"`
	LLMModel        string   `json:"llm_model,omitempty"`
	SystemPrompt    string   `json:"system_prompt,omitempty"`
	Tools           []string `json:"tools_available"`
	Input           string   `json:"input_requirements"`
	OutputFormat    string   `json:"output_format"`
	SuccessCriteria string   `json:"success_criteria"`
	ErrorStrategy   string   `json:"error_handling_strategy"`
	MaxRetries      int      `json:"max_retries"`
	TimeoutSeconds  int      `json:"timeout_seconds"`
}

func (a AgentSpec) validate(c *check, at string) {
	c.prefix(at+".agent_id", a.AgentID, "AGENT-")
	c.required(at+".agent_name", a.Name, 255)
	c.oneOf(at+".agent_role", slices.Contains(agentRoles, a.Role), a.Role, agentRoles)
	c.oneOf(at+".agent_type", slices.Contains(agentImpls, a.Type), a.Type, agentImpls)
	c.required(at+".primary_responsibility", a.Responsibility, 2000)
	if a.MaxRetries < 0 || a.MaxRetries > 10 {
		c.add(at+".max_retries", "must be between 0 and 10")
	}
	if a.TimeoutSeconds <= 0 {
		c.add(at+".timeout_seconds", "must be positive")
	}
}

// TaskSpec is a unit of work assigned to one or more agents.
type TaskSpec struct {
	TaskID         string   `json:"task_id"`
	Name           string   `json:"task_name"`
	Description    string   `json:"task_description"`
	AssignedAgents []string `json:"assigned_agents"`
	Goal           string   `json:"task_goal"`
	Dependencies   []string `json:"dependencies"`
	Strategy       string   `json:"execution_strategy"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	Priority       string   `json:"priority"`
}

func (t TaskSpec) validate(c *check, at string) {
	c.prefix(at+".task_id", t.TaskID, "TASK-")
	c.required(at+".task_name", t.Name, 255)
	if len(t.AssignedAgents) == 0 {
		c.add(at+".assigned_agents", "is required")
	}
	c.oneOf(at+".execution_strategy", slices.Contains(executionModes, t.Strategy), t.Strategy, executionModes)
	c.oneOf(at+".priority", slices.Contains(taskPriorities, t.Priority), t.Priority, taskPriorities)
	if t.TimeoutSeconds <= 0 {
		c.add(at+".timeout_seconds", "must be positive")
	}
}

// ToolSpec is a function or service an agent can call.
type ToolSpec struct {
	ToolID           string   `json:"tool_id"`
	Name             string   `json:"tool_name"`
	Type             string   `json:"tool_type"`
	Description      string   `json:"tool_description"`
	AssociatedAgents []string `json:"associated_agents"`
	Dependencies     []string `json:"dependencies"`
	Optional         bool     `json:"is_optional"`
}

func (t ToolSpec) validate(c *check, at string) {
	c.prefix(at+".tool_id", t.ToolID, "TOOL-")
	c.required(at+".tool_name", t.Name, 255)
	c.oneOf(at+".tool_type", slices.Contains(toolTypes, t.Type), t.Type, toolTypes)
}

// Interaction is a directed communication edge between two agents.
type Interaction struct {
	InteractionID string `json:"interaction_id"`
	SourceAgent   string `json:"source_agent"`
	TargetAgent   string `json:"target_agent"`
	Type          string `json:"interaction_type"`
	Method        string `json:"communication_method"`
	DataPassed    string `json:"data_passed"`
	LatencyMS     int    `json:"latency_requirement_ms,omitempty"`
}

func (i Interaction) validate(c *check, at string) {
	c.prefix(at+".interaction_id", i.InteractionID, "INTERACTION-")
	c.required(at+".source_agent", i.SourceAgent, 50)
	c.required(at+".target_agent", i.TargetAgent, 50)
	c.oneOf(at+".interaction_type", slices.Contains(interactionTypes, i.Type), i.Type, interactionTypes)
	c.oneOf(at+".communication_method", slices.Contains(commMethods, i.Method), i.Method, commMethods)
}

type Workflow struct {
	WorkflowID     string `json:"workflow_id"`
	Name           string `json:"workflow_name"`
	StartNode      string `json:"start_node"`
	EndNode        string `json:"end_node"`
	Graph          string `json:"workflow_graph"`
	TimeoutSeconds int    `json:"execution_timeout_seconds"`
	Framework      string `json:"framework"`
}

func (w Workflow) validate(c *check, at string) {
	c.prefix(at+".workflow_id", w.WorkflowID, "WORKFLOW-")
	c.required(at+".workflow_name", w.Name, 255)
	c.required(at+".start_node", w.StartNode, 50)
	c.required(at+".end_node", w.EndNode, 50)
	c.oneOf(at+".framework", slices.Contains(frameworks, w.Framework), w.Framework, frameworks)
}

type StateSpec struct {
	StateID       string `json:"state_id"`
	Name          string `json:"state_name"`
	Type          string `json:"state_type"`
	Schema        string `json:"state_schema"`
	Persistence   string `json:"persistence"`
	RetentionDays int    `json:"retention_days,omitempty"`
}

func (s StateSpec) validate(c *check, at string) {
	c.prefix(at+".state_id", s.StateID, "STATE-")
	c.required(at+".state_name", s.Name, 255)
	c.oneOf(at+".state_type", slices.Contains(stateTypes, s.Type), s.Type, stateTypes)
	c.oneOf(at+".persistence", slices.Contains(stateBackends, s.Persistence), s.Persistence, stateBackends)
}

type ErrorHandler struct {
	ErrorID           string `json:"error_id"`
	Scenario          string `json:"error_scenario"`
	AffectedComponent string `json:"affected_component"`
	Type              string `json:"error_type"`
	Recovery          string `json:"recovery_strategy"`
	Fallback          string `json:"fallback_option"`
	Severity          string `json:"severity"`
}

func (e ErrorHandler) validate(c *check, at string) {
	c.prefix(at+".error_id", e.ErrorID, "ERROR-")
	c.required(at+".error_scenario", e.Scenario, 1000)
	c.oneOf(at+".error_type", slices.Contains(errorTypes, e.Type), e.Type, errorTypes)
	c.oneOf(at+".severity", slices.Contains(errorSeverities, e.Severity), e.Severity, errorSeverities)
}

// AgentLLM is the model configuration of one agent.
type AgentLLM struct {
	AgentID          string   `json:"agent_id"`
	ModelName        string   `json:"model_name"`
	SystemPrompt     string   `json:"system_prompt"`
	Temperature      float64  `json:"temperature"`
	MaxTokens        int      `json:"max_tokens"`
	TopP             float64  `json:"top_p"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	PresencePenalty  float64  `json:"presence_penalty"`
	StopSequences    []string `json:"stop_sequences"`
}

func (l AgentLLM) validate(c *check, at string) {
	c.required(at+".agent_id", l.AgentID, 50)
	c.required(at+".model_name", l.ModelName, 100)
	c.between(at+".temperature", l.Temperature, 0, 2)
	c.between(at+".top_p", l.TopP, 0, 1)
	c.between(at+".frequency_penalty", l.FrequencyPenalty, -2, 2)
	c.between(at+".presence_penalty", l.PresencePenalty, -2, 2)
	if l.MaxTokens <= 0 {
		c.add(at+".max_tokens", "must be positive")
	}
}

// NewMultiAgentDesign returns an empty design for the default framework.
func NewMultiAgentDesign() *MultiAgentDesign {
	return &MultiAgentDesign{Framework: defaultFramework}
}

// Validate checks every element's own constraints. Cross references are
// checked separately by CheckReferences.
func (m *MultiAgentDesign) Validate() error {
	var c check
	c.oneOf("framework_type", slices.Contains(frameworks, m.Framework), m.Framework, frameworks)
	for i, a := range m.Agents {
		a.validate(&c, fmt.Sprintf("agents[%d]", i))
	}
	for i, t := range m.Tasks {
		t.validate(&c, fmt.Sprintf("tasks[%d]", i))
	}
	for i, t := range m.Tools {
		t.validate(&c, fmt.Sprintf("tools[%d]", i))
	}
	for i, x := range m.Interactions {
		x.validate(&c, fmt.Sprintf("interactions[%d]", i))
	}
	for i, w := range m.Workflows {
		w.validate(&c, fmt.Sprintf("workflows[%d]", i))
	}
	for i, s := range m.States {
		s.validate(&c, fmt.Sprintf("states[%d]", i))
	}
	for i, e := range m.ErrorHandlers {
		e.validate(&c, fmt.Sprintf("error_handlers[%d]", i))
	}
	for i, l := range m.LLMConfigs {
		l.validate(&c, fmt.Sprintf("llm_configs[%d]", i))
	}
	return c.err()
}

// CheckReferences resolves every foreign reference in the design and
// returns one message per dangling reference. It never stops early.
func (m *MultiAgentDesign) CheckReferences() []string {
	agents := make(map[string]bool, len(m.Agents))
	for _, a := range m.Agents {
		agents[a.AgentID] = true
	}
	tasks := make(map[string]bool, len(m.Tasks))
	for _, t := range m.Tasks {
		tasks[t.TaskID] = true
	}
	tools := make(map[string]bool, len(m.Tools))
	for _, t := range m.Tools {
		tools[t.ToolID] = true
	}

	var problems []string
	for _, t := range m.Tasks {
		for _, a := range t.AssignedAgents {
			if !agents[a] {
				problems = append(problems, fmt.Sprintf("Task %s references unknown agent %s", t.TaskID, a))
			}
		}
	}
	for _, t := range m.Tools {
		for _, a := range t.AssociatedAgents {
			if !agents[a] {
				problems = append(problems, fmt.Sprintf("Tool %s references unknown agent %s", t.ToolID, a))
			}
		}
	}
	for _, x := range m.Interactions {
		if !agents[x.SourceAgent] {
			problems = append(problems, fmt.Sprintf("Interaction %s references unknown source agent %s", x.InteractionID, x.SourceAgent))
		}
		if !agents[x.TargetAgent] {
			problems = append(problems, fmt.Sprintf("Interaction %s references unknown target agent %s", x.InteractionID, x.TargetAgent))
		}
	}
	for _, l := range m.LLMConfigs {
		if !agents[l.AgentID] {
			problems = append(problems, fmt.Sprintf("LLM config references unknown agent %s", l.AgentID))
		}
	}
	for _, t := range m.Tasks {
		for _, d := range t.Dependencies {
			if !tasks[d] {
				problems = append(problems, fmt.Sprintf("Task %s references unknown dependency %s", t.TaskID, d))
			}
		}
	}
	for _, t := range m.Tools {
		for _, d := range t.Dependencies {
			if !tools[d] {
				problems = append(problems, fmt.Sprintf("Tool %s references unknown dependency %s", t.ToolID, d))
			}
		}
	}
	return problems
}

// Review combines dangling references, pattern checks and governance
// checks into one report.
func (m *MultiAgentDesign) Review() Findings {
	f := Findings{Errors: m.CheckReferences()}
	for _, p := range m.Patterns {
		pf := CheckPattern(p)
		for _, e := range pf.Errors {
			f.errorf("Pattern %s: %s", p.PatternID, e)
		}
		for _, w := range pf.Warnings {
			f.warnf("Pattern %s: %s", p.PatternID, w)
		}
	}
	if m.Governance != nil {
		gf := CheckGovernance(*m.Governance)
		f.Errors = append(f.Errors, gf.Errors...)
		f.Warnings = append(f.Warnings, gf.Warnings...)
	}
	return f
}

// Clone returns a deep copy of m.
func (m *MultiAgentDesign) Clone() *MultiAgentDesign {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Agents = cloneEach(m.Agents, func(a AgentSpec) AgentSpec {
		a.Tools = slices.Clone(a.Tools)
		return a
	})
	cp.Tasks = cloneEach(m.Tasks, func(t TaskSpec) TaskSpec {
		t.AssignedAgents = slices.Clone(t.AssignedAgents)
		t.Dependencies = slices.Clone(t.Dependencies)
		return t
	})
	cp.Tools = cloneEach(m.Tools, func(t ToolSpec) ToolSpec {
		t.AssociatedAgents = slices.Clone(t.AssociatedAgents)
		t.Dependencies = slices.Clone(t.Dependencies)
		return t
	})
	cp.Interactions = slices.Clone(m.Interactions)
	cp.Workflows = slices.Clone(m.Workflows)
	cp.States = slices.Clone(m.States)
	cp.ErrorHandlers = slices.Clone(m.ErrorHandlers)
	cp.LLMConfigs = cloneEach(m.LLMConfigs, func(l AgentLLM) AgentLLM {
		l.StopSequences = slices.Clone(l.StopSequences)
		return l
	})
	cp.Patterns = cloneEach(m.Patterns, Pattern.clone)
	if m.Governance != nil {
		g := m.Governance.clone()
		cp.Governance = &g
	}
	return &cp
}

// cloneEach copies s, passing every element through fn. A nil slice stays
// nil.
func cloneEach[T any](s []T, fn func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}
