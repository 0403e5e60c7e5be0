package brd

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDesign() *MultiAgentDesign {
	m := NewMultiAgentDesign()
	m.Agents = []AgentSpec{{
		AgentID: "AGENT-001", Name: "Classifier", Role: "Classifier", Type: "LLM-based",
		Responsibility: "Classify tickets", MaxRetries: 2, TimeoutSeconds: 30,
	}}
	m.Tasks = []TaskSpec{{
		TaskID: "TASK-001", Name: "Classify", AssignedAgents: []string{"AGENT-001", "AGENT-404"},
		Dependencies: []string{"TASK-000"}, Strategy: "Sequential", Priority: "High", TimeoutSeconds: 30,
	}}
	m.Tools = []ToolSpec{{
		ToolID: "TOOL-001", Name: "Search", Type: "External API",
		AssociatedAgents: []string{"AGENT-002"}, Dependencies: []string{"TOOL-009"},
	}}
	m.Interactions = []Interaction{{
		InteractionID: "INTERACTION-001", SourceAgent: "AGENT-001", TargetAgent: "AGENT-003",
		Type: "Sequential", Method: "REST API",
	}}
	m.LLMConfigs = []AgentLLM{{AgentID: "AGENT-007", ModelName: "llama3.2", Temperature: 0.7, TopP: 0.9, MaxTokens: 1000}}
	return m
}

func TestMultiAgentCheckReferencesCollectsAll(t *testing.T) {
	m := sampleDesign()
	require.NoError(t, m.Validate())

	assert.Equal(t, []string{
		"Task TASK-001 references unknown agent AGENT-404",
		"Tool TOOL-001 references unknown agent AGENT-002",
		"Interaction INTERACTION-001 references unknown target agent AGENT-003",
		"LLM config references unknown agent AGENT-007",
		"Task TASK-001 references unknown dependency TASK-000",
		"Tool TOOL-001 references unknown dependency TOOL-009",
	}, m.CheckReferences())
}

func TestMultiAgentValidateEnforcesPrefixesAndRanges(t *testing.T) {
	m := sampleDesign()
	m.Agents[0].AgentID = "BOT-1"
	m.LLMConfigs[0].TopP = 1.5
	m.LLMConfigs[0].PresencePenalty = -3

	assert.ElementsMatch(t, []string{
		"agents[0].agent_id",
		"llm_configs[0].top_p",
		"llm_configs[0].presence_penalty",
	}, validationFields(t, m.Validate()))
}

func TestMultiAgentValidateRejectsNonFiniteLLMSettings(t *testing.T) {
	m := sampleDesign()
	m.LLMConfigs[0].Temperature = math.NaN()
	m.LLMConfigs[0].TopP = math.Inf(1)

	assert.ElementsMatch(t, []string{
		"llm_configs[0].temperature",
		"llm_configs[0].top_p",
	}, validationFields(t, m.Validate()))
}

func TestProjectCheckReferences(t *testing.T) {
	p := newProject(t, TemplateAgentic)
	require.NoError(t, p.Add(validUISpec()))
	require.NoError(t, p.Add(&TraceLink{
		BusinessRequirementID: "BR-1",
		BusinessRequirement:   "Customers can see order status",
		LinkedUIIDs:           "UI-001, UI-999",
		LinkedAPIIDs:          "API-1",
		Status:                StatusProposed,
	}))
	require.NoError(t, p.Add(&AgentTask{TaskID: "T1", AgentID: "A9", TaskName: "Route", TaskType: TaskCommunication}))

	assert.Equal(t, []string{
		"Requirement BR-1 links unknown UI id UI-999",
		"Requirement BR-1 links unknown API id API-1",
		"Task T1 references unknown agent A9",
	}, p.CheckReferences())
}

func TestCheckPattern(t *testing.T) {
	f := CheckPattern(Pattern{PatternID: "p1", Type: PatternHierarchical, Supervisor: "lead", Workers: []string{"w"}})
	assert.True(t, f.OK())
	assert.Len(t, f.Warnings, 1)

	f = CheckPattern(Pattern{PatternID: "p2", Type: PatternReAct})
	assert.ElementsMatch(t, []string{
		"Reasoning prompt is required",
		"At least one action must be defined",
		"Max reasoning steps must be between 1 and 100",
	}, f.Errors)

	f = CheckPattern(Pattern{PatternID: "p3", Type: "swarm"})
	assert.False(t, f.OK())
}

func TestCheckGovernance(t *testing.T) {
	g := DefaultGovernanceFramework()
	f := CheckGovernance(g)
	assert.True(t, f.OK())
	assert.Empty(t, f.Warnings)

	g.DetailedLogging = false
	g.Policies = []CompliancePolicy{{PolicyID: "gdpr", GDPR: true}}
	f = CheckGovernance(g)
	assert.Equal(t, []string{"GDPR compliance requires detailed logging to be enabled"}, f.Errors)
	assert.Contains(t, f.Warnings, "Detailed logging is disabled - audit trail may be incomplete")
}

func TestReviewMergesFindings(t *testing.T) {
	m := sampleDesign()
	m.Patterns = []Pattern{{PatternID: "rag-1", Type: PatternRAG}}
	gov := DefaultGovernanceFramework()
	gov.Monitoring = false
	m.Governance = &gov

	f := m.Review()
	assert.Contains(t, f.Errors, "Pattern rag-1: At least one document source must be defined")
	assert.Contains(t, f.Warnings, "Monitoring is disabled - compliance tracking may be limited")
	assert.Len(t, f.Errors, 6+3)
}
