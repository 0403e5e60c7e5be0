package brd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is implemented by a pointer to every collection record type.
// Records are plain mutable values: assigning a field does not validate,
// callers run Validate on demand and the store runs it before save.
type Record interface {
	Kind() Kind
	// Ref is the record's own free-text identifier, possibly empty.
	Ref() string
	Validate() error
	Get(field string) string
	Set(field, value string) error
}

// New validates r and returns it, or the *ValidationError listing every
// violated constraint.
func New[R interface{ Validate() error }](r R) (R, error) {
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

func fieldErr(field, format string, args ...any) error {
	e := &ValidationError{}
	e.add(field, format, args...)
	return e
}

func setString(k Kind, p *string, field, value string) error {
	if p == nil {
		return fieldErr(field, "is not a field of %s", k)
	}
	*p = value
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// SplitRefs splits a comma-joined reference list, dropping blanks.
func SplitRefs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Overview
// ---------------------------------------------------------------------------

// Overview is the single cover section of a project.
type Overview struct {
	ProjectName        string `json:"project_name"`
	ProjectDescription string `json:"project_description"`
	BusinessGoal       string `json:"business_goal"`
	DocumentVersion    string `json:"document_version"`
	PreparedBy         string `json:"prepared_by"`
	ApprovedBy         string `json:"approved_by"`
	TargetReleaseDate  string `json:"target_release_date,omitempty"`
}

func (o Overview) Validate() error {
	var c check
	c.required("project_name", o.ProjectName, 255)
	c.text("project_description", o.ProjectDescription, 10, 2000)
	c.text("business_goal", o.BusinessGoal, 10, 2000)
	c.required("document_version", o.DocumentVersion, 20)
	c.optional("prepared_by", o.PreparedBy, 255)
	c.optional("approved_by", o.ApprovedBy, 255)
	c.date("target_release_date", o.TargetReleaseDate)
	return c.err()
}

func (o *Overview) ref(field string) *string {
	switch field {
	case "project_name":
		return &o.ProjectName
	case "project_description":
		return &o.ProjectDescription
	case "business_goal":
		return &o.BusinessGoal
	case "document_version":
		return &o.DocumentVersion
	case "prepared_by":
		return &o.PreparedBy
	case "approved_by":
		return &o.ApprovedBy
	case "target_release_date":
		return &o.TargetReleaseDate
	}
	return nil
}

func (o Overview) Get(field string) string { return deref(o.ref(field)) }

func (o *Overview) Set(field, value string) error {
	if p := o.ref(field); p != nil {
		*p = value
		return nil
	}
	return fieldErr(field, "is not an overview field")
}

// ---------------------------------------------------------------------------
// UI specification
// ---------------------------------------------------------------------------

type UISpecification struct {
	RequirementID          string       `json:"requirement_id"`
	FeatureModule          string       `json:"feature_module"`
	ScreenComponent        string       `json:"screen_component"`
	RequirementDescription string       `json:"requirement_description"`
	ValidationRule         string       `json:"validation_rule"`
	BusinessRule           string       `json:"business_rule"`
	MasterDetail           MasterDetail `json:"master_detail"`
	Priority               Priority     `json:"priority"`
}

func (UISpecification) Kind() Kind    { return KindUISpec }
func (r UISpecification) Ref() string { return r.RequirementID }

func (r UISpecification) Validate() error {
	var c check
	c.optional("requirement_id", r.RequirementID, 50)
	c.optional("feature_module", r.FeatureModule, 255)
	c.required("screen_component", r.ScreenComponent, 255)
	c.text("requirement_description", r.RequirementDescription, 10, 2000)
	c.optional("validation_rule", r.ValidationRule, 1000)
	c.optional("business_rule", r.BusinessRule, 1000)
	c.oneOf("master_detail", r.MasterDetail.Valid(), string(r.MasterDetail), options(AllMasterDetails))
	c.oneOf("priority", r.Priority.Valid(), string(r.Priority), options(AllPriorities))
	return c.err()
}

func (r *UISpecification) ref(field string) *string {
	switch field {
	case "requirement_id":
		return &r.RequirementID
	case "feature_module":
		return &r.FeatureModule
	case "screen_component":
		return &r.ScreenComponent
	case "requirement_description":
		return &r.RequirementDescription
	case "validation_rule":
		return &r.ValidationRule
	case "business_rule":
		return &r.BusinessRule
	case "master_detail":
		return (*string)(&r.MasterDetail)
	case "priority":
		return (*string)(&r.Priority)
	}
	return nil
}

func (r UISpecification) Get(field string) string { return deref(r.ref(field)) }
func (r *UISpecification) Set(field, value string) error {
	return setString(r.Kind(), r.ref(field), field, value)
}

// ---------------------------------------------------------------------------
// API specification
// ---------------------------------------------------------------------------

type APISpecification struct {
	APIID           string     `json:"api_id"`
	APIName         string     `json:"api_name"`
	Method          HTTPMethod `json:"method"`
	Endpoint        string     `json:"endpoint"`
	RequestPayload  string     `json:"request_payload"`
	ResponsePayload string     `json:"response_payload"`
	BusinessRule    string     `json:"business_rule"`
	APIType         APIType    `json:"api_type"`
}

func (APISpecification) Kind() Kind    { return KindAPISpec }
func (r APISpecification) Ref() string { return r.APIID }

func (r APISpecification) Validate() error {
	var c check
	c.required("api_id", r.APIID, 50)
	c.required("api_name", r.APIName, 255)
	c.oneOf("method", r.Method.Valid(), string(r.Method), options(AllHTTPMethods))
	c.required("endpoint", r.Endpoint, 500)
	c.required("request_payload", r.RequestPayload, 5000)
	c.required("response_payload", r.ResponsePayload, 5000)
	c.optional("business_rule", r.BusinessRule, 1000)
	c.oneOf("api_type", r.APIType.Valid(), string(r.APIType), options(AllAPITypes))
	return c.err()
}

func (r *APISpecification) ref(field string) *string {
	switch field {
	case "api_id":
		return &r.APIID
	case "api_name":
		return &r.APIName
	case "method":
		return (*string)(&r.Method)
	case "endpoint":
		return &r.Endpoint
	case "request_payload":
		return &r.RequestPayload
	case "response_payload":
		return &r.ResponsePayload
	case "business_rule":
		return &r.BusinessRule
	case "api_type":
		return (*string)(&r.APIType)
	}
	return nil
}

func (r APISpecification) Get(field string) string { return deref(r.ref(field)) }
func (r *APISpecification) Set(field, value string) error {
	return setString(r.Kind(), r.ref(field), field, value)
}

// ---------------------------------------------------------------------------
// LLM prompt
// ---------------------------------------------------------------------------

type LLMPrompt struct {
	PromptID       string    `json:"prompt_id"`
	UseCase        string    `json:"use_case"`
	PromptTemplate string    `json:"prompt_template"`
	InputVariables string    `json:"input_variables"`
	ExpectedOutput string    `json:"expected_output"`
	ModelName      ModelName `json:"model_name"`
	Temperature    float64   `json:"temperature"`
}

func (LLMPrompt) Kind() Kind    { return KindLLMPrompt }
func (r LLMPrompt) Ref() string { return r.PromptID }

func (r LLMPrompt) Validate() error {
	var c check
	c.required("prompt_id", r.PromptID, 50)
	c.required("use_case", r.UseCase, 255)
	c.text("prompt_template", r.PromptTemplate, 10, 5000)
	c.optional("input_variables", r.InputVariables, 1000)
	c.optional("expected_output", r.ExpectedOutput, 2000)
	c.oneOf("model_name", r.ModelName.Valid(), string(r.ModelName), options(AllModelNames))
	c.between("temperature", r.Temperature, MinTemperature, MaxTemperature)
	return c.err()
}

func (r *LLMPrompt) ref(field string) *string {
	switch field {
	case "prompt_id":
		return &r.PromptID
	case "use_case":
		return &r.UseCase
	case "prompt_template":
		return &r.PromptTemplate
	case "input_variables":
		return &r.InputVariables
	case "expected_output":
		return &r.ExpectedOutput
	case "model_name":
		return (*string)(&r.ModelName)
	}
	return nil
}

func (r LLMPrompt) Get(field string) string {
	if field == "temperature" {
		return strconv.FormatFloat(r.Temperature, 'f', -1, 64)
	}
	return deref(r.ref(field))
}

func (r *LLMPrompt) Set(field, value string) error {
	if field == "temperature" {
		t, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
			return fieldErr(field, "must be a number")
		}
		r.Temperature = t
		return nil
	}
	return setString(r.Kind(), r.ref(field), field, value)
}

// ---------------------------------------------------------------------------
// Database schema field
// ---------------------------------------------------------------------------

type DBField struct {
	TableName    string       `json:"table_name"`
	FieldName    string       `json:"field_name"`
	DataType     DataType     `json:"data_type"`
	Constraints  string       `json:"constraints"`
	Relationship Relationship `json:"relationship"`
	Description  string       `json:"description"`
}

func (DBField) Kind() Kind    { return KindDBField }
func (r DBField) Ref() string { return r.TableName + "." + r.FieldName }

func (r DBField) Validate() error {
	var c check
	c.required("table_name", r.TableName, 255)
	c.required("field_name", r.FieldName, 255)
	c.oneOf("data_type", r.DataType.Valid(), string(r.DataType), options(AllDataTypes))
	c.optional("constraints", r.Constraints, 500)
	c.oneOf("relationship", r.Relationship.Valid(), string(r.Relationship), options(AllRelationships))
	c.optional("description", r.Description, 1000)
	return c.err()
}

func (r *DBField) ref(field string) *string {
	switch field {
	case "table_name":
		return &r.TableName
	case "field_name":
		return &r.FieldName
	case "data_type":
		return (*string)(&r.DataType)
	case "constraints":
		return &r.Constraints
	case "relationship":
		return (*string)(&r.Relationship)
	case "description":
		return &r.Description
	}
	return nil
}

func (r DBField) Get(field string) string { return deref(r.ref(field)) }
func (r *DBField) Set(field, value string) error {
	return setString(r.Kind(), r.ref(field), field, value)
}

// ---------------------------------------------------------------------------
// Tech stack
// ---------------------------------------------------------------------------

type TechStackEntry struct {
	Category       string `json:"category"`
	TechnologyTool string `json:"technology_tool"`
	Version        string `json:"version"`
	Rationale      string `json:"rationale"`
	RepositoryURL  string `json:"repository_url"`
}

func (TechStackEntry) Kind() Kind    { return KindTechStack }
func (r TechStackEntry) Ref() string { return r.TechnologyTool }

func (r TechStackEntry) Validate() error {
	var c check
	c.required("category", r.Category, 255)
	c.required("technology_tool", r.TechnologyTool, 255)
	c.optional("version", r.Version, 50)
	c.required("rationale", r.Rationale, 1000)
	c.optional("repository_url", r.RepositoryURL, 500)
	return c.err()
}

func (r *TechStackEntry) ref(field string) *string {
	switch field {
	case "category":
		return &r.Category
	case "technology_tool":
		return &r.TechnologyTool
	case "version":
		return &r.Version
	case "rationale":
		return &r.Rationale
	case "repository_url":
		return &r.RepositoryURL
	}
	return nil
}

func (r TechStackEntry) Get(field string) string { return deref(r.ref(field)) }
func (r *TechStackEntry) Set(field, value string) error {
	return setString(r.Kind(), r.ref(field), field, value)
}

// ---------------------------------------------------------------------------
// Traceability
// ---------------------------------------------------------------------------

// TraceLink ties a business requirement to the UI, API and prompt records
// that implement it. Linked ids are comma-joined free text.
type TraceLink struct {
	BusinessRequirementID string      `json:"business_requirement_id"`
	BusinessRequirement   string      `json:"business_requirement"`
	LinkedUIIDs           string      `json:"linked_ui_ids"`
	LinkedAPIIDs          string      `json:"linked_api_ids"`
	LinkedLLMIDs          string      `json:"linked_llm_ids"`
	Status                TraceStatus `json:"status"`
}

func (TraceLink) Kind() Kind    { return KindTraceability }
func (r TraceLink) Ref() string { return r.BusinessRequirementID }

func (r TraceLink) Validate() error {
	var c check
	c.required("business_requirement_id", r.BusinessRequirementID, 50)
	c.text("business_requirement", r.BusinessRequirement, 10, 2000)
	c.optional("linked_ui_ids", r.LinkedUIIDs, 500)
	c.optional("linked_api_ids", r.LinkedAPIIDs, 500)
	c.optional("linked_llm_ids", r.LinkedLLMIDs, 500)
	c.oneOf("status", r.Status.Valid(), string(r.Status), options(AllTraceStatuses))
	return c.err()
}

func (r *TraceLink) ref(field string) *string {
	switch field {
	case "business_requirement_id":
		return &r.BusinessRequirementID
	case "business_requirement":
		return &r.BusinessRequirement
	case "linked_ui_ids":
		return &r.LinkedUIIDs
	case "linked_api_ids":
		return &r.LinkedAPIIDs
	case "linked_llm_ids":
		return &r.LinkedLLMIDs
	case "status":
		return (*string)(&r.Status)
	}
	return nil
}

func (r TraceLink) Get(field string) string { return deref(r.ref(field)) }
func (r *TraceLink) Set(field, value string) error {
	return setString(r.Kind(), r.ref(field), field, value)
}

// ---------------------------------------------------------------------------
// Agent architecture
// ---------------------------------------------------------------------------

type AgentArchitecture struct {
	AgentID               string    `json:"agent_id"`
	AgentName             string    `json:"agent_name"`
	AgentType             AgentType `json:"agent_type"`
	PrimaryRole           string    `json:"primary_role"`
	Capabilities          string    `json:"capabilities"`
	Dependencies          string    `json:"dependencies"`
	CommunicationProtocol string    `json:"communication_protocol"`
	Description           string    `json:"description"`
}

func (AgentArchitecture) Kind() Kind    { return KindAgentArch }
func (r AgentArchitecture) Ref() string { return r.AgentID }

func (r AgentArchitecture) Validate() error {
	var c check
	c.required("agent_id", r.AgentID, 50)
	c.required("agent_name", r.AgentName, 255)
	c.oneOf("agent_type", r.AgentType.Valid(), string(r.AgentType), options(AllAgentTypes))
	c.required("primary_role", r.PrimaryRole, 500)
	c.optional("capabilities", r.Capabilities, 2000)
	c.optional("dependencies", r.Dependencies, 1000)
	c.optional("communication_protocol", r.CommunicationProtocol, 100)
	c.optional("description", r.Description, 2000)
	return c.err()
}

func (r *AgentArchitecture) ref(field string) *string {
	switch field {
	case "agent_id":
		return &r.AgentID
	case "agent_name":
		return &r.AgentName
	case "agent_type":
		return (*string)(&r.AgentType)
	case "primary_role":
		return &r.PrimaryRole
	case "capabilities":
		return &r.Capabilities
	case "dependencies":
		return &r.Dependencies
	case "communication_protocol":
		return &r.CommunicationProtocol
	case "description":
		return &r.Description
	}
	return nil
}

func (r AgentArchitecture) Get(field string) string { return deref(r.ref(field)) }
func (r *AgentArchitecture) Set(field, value string) error {
	return setString(r.Kind(), r.ref(field), field, value)
}

// ---------------------------------------------------------------------------
// Agent configuration
// ---------------------------------------------------------------------------

type AgentConfiguration struct {
	ConfigID       string        `json:"config_id"`
	AgentID        string        `json:"agent_id"`
	ParameterName  string        `json:"parameter_name"`
	ParameterValue string        `json:"parameter_value"`
	ParameterType  ParameterType `json:"parameter_type"`
	Required       bool          `json:"required"`
	Description    string        `json:"description"`
}

func (AgentConfiguration) Kind() Kind    { return KindAgentConfig }
func (r AgentConfiguration) Ref() string { return r.ConfigID }

func (r AgentConfiguration) Validate() error {
	var c check
	c.required("config_id", r.ConfigID, 50)
	c.required("agent_id", r.AgentID, 50)
	c.required("parameter_name", r.ParameterName, 255)
	c.optional("parameter_value", r.ParameterValue, 2000)
	c.oneOf("parameter_type", r.ParameterType.Valid(), string(r.ParameterType), options(AllParameterTypes))
	c.optional("description", r.Description, 1000)
	return c.err()
}

func (r *AgentConfiguration) ref(field string) *string {
	switch field {
	case "config_id":
		return &r.ConfigID
	case "agent_id":
		return &r.AgentID
	case "parameter_name":
		return &r.ParameterName
	case "parameter_value":
		return &r.ParameterValue
	case "parameter_type":
		return (*string)(&r.ParameterType)
	case "description":
		return &r.Description
	}
	return nil
}

func (r AgentConfiguration) Get(field string) string {
	if field == "required" {
		return strconv.FormatBool(r.Required)
	}
	return deref(r.ref(field))
}

func (r *AgentConfiguration) Set(field, value string) error {
	if field == "required" {
		b, err := ParseBool(value)
		if err != nil {
			return fieldErr(field, "must be yes or no")
		}
		r.Required = b
		return nil
	}
	return setString(r.Kind(), r.ref(field), field, value)
}

// ParseBool accepts the usual strconv forms plus yes/no.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true, nil
	case "no", "n", "":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("parse bool %q: %w", s, err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Agent task
// ---------------------------------------------------------------------------

type AgentTask struct {
	TaskID          string   `json:"task_id"`
	AgentID         string   `json:"agent_id"`
	TaskName        string   `json:"task_name"`
	TaskType        TaskType `json:"task_type"`
	InputData       string   `json:"input_data"`
	OutputData      string   `json:"output_data"`
	SuccessCriteria string   `json:"success_criteria"`
	ErrorHandling   string   `json:"error_handling"`
	Description     string   `json:"description"`
}

func (AgentTask) Kind() Kind    { return KindAgentTask }
func (r AgentTask) Ref() string { return r.TaskID }

func (r AgentTask) Validate() error {
	var c check
	c.required("task_id", r.TaskID, 50)
	c.required("agent_id", r.AgentID, 50)
	c.required("task_name", r.TaskName, 255)
	c.oneOf("task_type", r.TaskType.Valid(), string(r.TaskType), options(AllTaskTypes))
	c.optional("input_data", r.InputData, 2000)
	c.optional("output_data", r.OutputData, 2000)
	c.optional("success_criteria", r.SuccessCriteria, 1000)
	c.optional("error_handling", r.ErrorHandling, 1000)
	c.optional("description", r.Description, 2000)
	return c.err()
}

func (r *AgentTask) ref(field string) *string {
	switch field {
	case "task_id":
		return &r.TaskID
	case "agent_id":
		return &r.AgentID
	case "task_name":
		return &r.TaskName
	case "task_type":
		return (*string)(&r.TaskType)
	case "input_data":
		return &r.InputData
	case "output_data":
		return &r.OutputData
	case "success_criteria":
		return &r.SuccessCriteria
	case "error_handling":
		return &r.ErrorHandling
	case "description":
		return &r.Description
	}
	return nil
}

func (r AgentTask) Get(field string) string { return deref(r.ref(field)) }
func (r *AgentTask) Set(field, value string) error {
	return setString(r.Kind(), r.ref(field), field, value)
}
