package brd

import (
	"fmt"
	"slices"
)

// Findings is the outcome of an advisory design check. Errors make the
// design unusable; warnings are worth a look.
type Findings struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether no errors were found.
func (f Findings) OK() bool { return len(f.Errors) == 0 }

func (f *Findings) errorf(format string, args ...any) {
	f.Errors = append(f.Errors, fmt.Sprintf(format, args...))
}

func (f *Findings) warnf(format string, args ...any) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}

// PatternType names an agent design pattern.
type PatternType string

const (
	PatternReAct        PatternType = "react"
	PatternPlanExecute  PatternType = "plan_execute"
	PatternHierarchical PatternType = "hierarchical"
	PatternRAG          PatternType = "rag"
	PatternCRAG         PatternType = "crag"
)

var AllPatternTypes = []PatternType{PatternReAct, PatternPlanExecute, PatternHierarchical, PatternRAG, PatternCRAG}

// Pattern is a flattened description of one agent pattern. Only the
// fields relevant to its Type are meaningful.
type Pattern struct {
	PatternID   string      `json:"pattern_id"`
	Type        PatternType `json:"pattern_type"`
	Description string      `json:"description,omitempty"`
	Model       string      `json:"model,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`

	// ReAct
	ReasoningPrompt   string   `json:"reasoning_prompt,omitempty"`
	Actions           []string `json:"available_actions,omitempty"`
	MaxReasoningSteps int      `json:"max_reasoning_steps,omitempty"`

	// Plan-Execute
	PlanningPrompt string   `json:"planning_prompt,omitempty"`
	Steps          []string `json:"execution_steps,omitempty"`
	MaxReplans     int      `json:"max_replans,omitempty"`

	// Hierarchical
	Supervisor   string   `json:"supervisor_name,omitempty"`
	Workers      []string `json:"workers,omitempty"`
	RoutingRules []string `json:"task_routing_rules,omitempty"`

	// RAG and CRAG
	Sources             []string `json:"document_sources,omitempty"`
	RetrievalMethod     string   `json:"retrieval_method,omitempty"`
	GenerationPrompt    string   `json:"generation_prompt,omitempty"`
	ValidationCriteria  []string `json:"validation_criteria,omitempty"`
	AssessmentCriteria  []string `json:"assessment_criteria,omitempty"`
	CorrectionTriggers  []string `json:"correction_triggers,omitempty"`
	ConfidenceThreshold float64  `json:"confidence_threshold,omitempty"`
}

// CheckPattern applies the rules for p's pattern type.
func CheckPattern(p Pattern) Findings {
	var f Findings
	if p.Temperature != nil && !(*p.Temperature >= MinTemperature && *p.Temperature <= MaxTemperature) {
		f.errorf("Temperature must be between %g and %g", MinTemperature, MaxTemperature)
	}
	switch p.Type {
	case PatternReAct:
		if p.ReasoningPrompt == "" {
			f.errorf("Reasoning prompt is required")
		}
		if len(p.Actions) == 0 {
			f.errorf("At least one action must be defined")
		}
		if p.MaxReasoningSteps < 1 || p.MaxReasoningSteps > 100 {
			f.errorf("Max reasoning steps must be between 1 and 100")
		}
	case PatternPlanExecute:
		if p.PlanningPrompt == "" {
			f.errorf("Planning prompt is required")
		}
		if len(p.Steps) == 0 {
			f.errorf("At least one execution step must be defined")
		}
		if p.MaxReplans < 0 || p.MaxReplans > 10 {
			f.errorf("Max replans must be between 0 and 10")
		}
	case PatternHierarchical:
		if p.Supervisor == "" {
			f.errorf("Supervisor name is required")
		}
		if len(p.Workers) == 0 {
			f.errorf("At least one worker agent must be defined")
		}
		if len(p.RoutingRules) == 0 {
			f.warnf("No task routing rules defined - all tasks may go to first worker")
		}
	case PatternRAG:
		if len(p.Sources) == 0 {
			f.errorf("At least one document source must be defined")
		}
		if p.RetrievalMethod == "" {
			f.errorf("Retrieval method must be specified")
		}
		if p.GenerationPrompt == "" {
			f.errorf("Generation prompt template is required")
		}
	case PatternCRAG:
		if len(p.Sources) == 0 {
			f.errorf("At least one document source must be defined")
		}
		if len(p.ValidationCriteria) == 0 {
			f.warnf("No retrieval validation criteria defined")
		}
		if len(p.AssessmentCriteria) == 0 {
			f.warnf("No self-reflection assessment criteria defined")
		}
		if len(p.CorrectionTriggers) == 0 {
			f.warnf("No correction triggers defined")
		}
		if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
			f.errorf("Confidence threshold must be between 0 and 1")
		}
	default:
		f.errorf("Unknown pattern type: %s", p.Type)
	}
	return f
}

func (p Pattern) clone() Pattern {
	if p.Temperature != nil {
		t := *p.Temperature
		p.Temperature = &t
	}
	p.Actions = slices.Clone(p.Actions)
	p.Steps = slices.Clone(p.Steps)
	p.Workers = slices.Clone(p.Workers)
	p.RoutingRules = slices.Clone(p.RoutingRules)
	p.Sources = slices.Clone(p.Sources)
	p.ValidationCriteria = slices.Clone(p.ValidationCriteria)
	p.AssessmentCriteria = slices.Clone(p.AssessmentCriteria)
	p.CorrectionTriggers = slices.Clone(p.CorrectionTriggers)
	return p
}
