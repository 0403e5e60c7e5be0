package brd

import "slices"

// ---------------------------------------------------------------------------
// Template kind
// ---------------------------------------------------------------------------

// TemplateKind selects which record collections a project carries.
type TemplateKind string

const (
	TemplateNormal       TemplateKind = "Normal"
	TemplateAgentic      TemplateKind = "Agentic"
	TemplateMultiAgentic TemplateKind = "Multi-Agentic"
)

// AllTemplateKinds lists template kinds in display order.
var AllTemplateKinds = []TemplateKind{TemplateNormal, TemplateAgentic, TemplateMultiAgentic}

func (t TemplateKind) Valid() bool { return slices.Contains(AllTemplateKinds, t) }

// HasAgents reports whether the agent collections apply.
func (t TemplateKind) HasAgents() bool {
	switch t {
	case TemplateAgentic, TemplateMultiAgentic:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// UI specification enums
// ---------------------------------------------------------------------------

type MasterDetail string

const (
	MasterDetailNA     MasterDetail = "N/A"
	MasterDetailMaster MasterDetail = "Master"
	MasterDetailDetail MasterDetail = "Detail"
)

var AllMasterDetails = []MasterDetail{MasterDetailNA, MasterDetailMaster, MasterDetailDetail}

func (m MasterDetail) Valid() bool { return slices.Contains(AllMasterDetails, m) }

// Priority is a MoSCoW priority.
type Priority string

const (
	PriorityMust   Priority = "Must"
	PriorityShould Priority = "Should"
	PriorityCould  Priority = "Could"
	PriorityWont   Priority = "Won't"
)

var AllPriorities = []Priority{PriorityMust, PriorityShould, PriorityCould, PriorityWont}

func (p Priority) Valid() bool { return slices.Contains(AllPriorities, p) }

// ---------------------------------------------------------------------------
// API specification enums
// ---------------------------------------------------------------------------

type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

var AllHTTPMethods = []HTTPMethod{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

func (m HTTPMethod) Valid() bool { return slices.Contains(AllHTTPMethods, m) }

type APIType string

const (
	APIInternal      APIType = "Internal"
	APIExternalLLM   APIType = "External (LLM)"
	APIThirdParty    APIType = "Third-Party"
	APIAgentEndpoint APIType = "Agent Endpoint"
)

var AllAPITypes = []APIType{APIInternal, APIExternalLLM, APIThirdParty, APIAgentEndpoint}

func (a APIType) Valid() bool { return slices.Contains(AllAPITypes, a) }

// ---------------------------------------------------------------------------
// LLM prompt enums
// ---------------------------------------------------------------------------

// ModelName is one of the locally served models a prompt can target.
type ModelName string

const (
	ModelLlama32    ModelName = "llama3.2"
	ModelMistral    ModelName = "mistral"
	ModelDeepseekR1 ModelName = "deepseek-r1"
	ModelPhi4Mini   ModelName = "phi4-mini"
)

var AllModelNames = []ModelName{ModelLlama32, ModelMistral, ModelDeepseekR1, ModelPhi4Mini}

func (m ModelName) Valid() bool { return slices.Contains(AllModelNames, m) }

const (
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	DefaultTemperature = 0.7
)

// ---------------------------------------------------------------------------
// Database schema enums
// ---------------------------------------------------------------------------

type DataType string

const (
	DataInt      DataType = "INT"
	DataVarchar  DataType = "VARCHAR"
	DataText     DataType = "TEXT"
	DataDatetime DataType = "DATETIME"
	DataBoolean  DataType = "BOOLEAN"
	DataDecimal  DataType = "DECIMAL"
)

var AllDataTypes = []DataType{DataInt, DataVarchar, DataText, DataDatetime, DataBoolean, DataDecimal}

func (d DataType) Valid() bool { return slices.Contains(AllDataTypes, d) }

type Relationship string

const (
	RelationNA        Relationship = "N/A"
	RelationPrimary   Relationship = "Primary"
	RelationForeign   Relationship = "Foreign"
	RelationComposite Relationship = "Composite"
)

var AllRelationships = []Relationship{RelationNA, RelationPrimary, RelationForeign, RelationComposite}

func (r Relationship) Valid() bool { return slices.Contains(AllRelationships, r) }

// ---------------------------------------------------------------------------
// Traceability enums
// ---------------------------------------------------------------------------

type TraceStatus string

const (
	StatusProposed    TraceStatus = "Proposed"
	StatusApproved    TraceStatus = "Approved"
	StatusImplemented TraceStatus = "Implemented"
)

var AllTraceStatuses = []TraceStatus{StatusProposed, StatusApproved, StatusImplemented}

func (s TraceStatus) Valid() bool { return slices.Contains(AllTraceStatuses, s) }

// ---------------------------------------------------------------------------
// Agent enums
// ---------------------------------------------------------------------------

type AgentType string

const (
	AgentAutonomous AgentType = "Autonomous"
	AgentReactive   AgentType = "Reactive"
	AgentProactive  AgentType = "Proactive"
	AgentHybrid     AgentType = "Hybrid"
)

var AllAgentTypes = []AgentType{AgentAutonomous, AgentReactive, AgentProactive, AgentHybrid}

func (a AgentType) Valid() bool { return slices.Contains(AllAgentTypes, a) }

type ParameterType string

const (
	ParamString  ParameterType = "string"
	ParamInteger ParameterType = "integer"
	ParamFloat   ParameterType = "float"
	ParamBoolean ParameterType = "boolean"
	ParamJSON    ParameterType = "json"
)

var AllParameterTypes = []ParameterType{ParamString, ParamInteger, ParamFloat, ParamBoolean, ParamJSON}

func (p ParameterType) Valid() bool { return slices.Contains(AllParameterTypes, p) }

type TaskType string

const (
	TaskDataProcessing TaskType = "Data Processing"
	TaskDecisionMaking TaskType = "Decision Making"
	TaskCommunication  TaskType = "Communication"
	TaskCoordination   TaskType = "Coordination"
)

var AllTaskTypes = []TaskType{TaskDataProcessing, TaskDecisionMaking, TaskCommunication, TaskCoordination}

func (t TaskType) Valid() bool { return slices.Contains(AllTaskTypes, t) }

// options converts an ordered enum list into its string values.
func options[E ~string](all []E) []string {
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = string(e)
	}
	return out
}
