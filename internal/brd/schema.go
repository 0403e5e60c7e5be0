package brd

// FieldType tells form and sheet renderers how to present a field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldLongText
	FieldEnum
	FieldFloat
	FieldBool
	FieldDate
)

// Field describes one record field. Schema order is display and export
// column order.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Options  []string
	Required bool
}

// OverviewSchema describes the overview fields.
var OverviewSchema = []Field{
	{Name: "project_name", Label: "Project Name", Required: true},
	{Name: "project_description", Label: "Project Description", Type: FieldLongText, Required: true},
	{Name: "business_goal", Label: "Business Goal", Type: FieldLongText, Required: true},
	{Name: "document_version", Label: "Document Version", Required: true},
	{Name: "prepared_by", Label: "Prepared By"},
	{Name: "approved_by", Label: "Approved By"},
	{Name: "target_release_date", Label: "Target Release Date", Type: FieldDate},
}

var schemas = map[Kind][]Field{
	KindUISpec: {
		{Name: "requirement_id", Label: "Requirement ID"},
		{Name: "feature_module", Label: "Feature/Module"},
		{Name: "screen_component", Label: "Screen/Component", Required: true},
		{Name: "requirement_description", Label: "Requirement Description", Type: FieldLongText, Required: true},
		{Name: "validation_rule", Label: "Front-end Validation Rule", Type: FieldLongText},
		{Name: "business_rule", Label: "Business Rule", Type: FieldLongText},
		{Name: "master_detail", Label: "Master/Detail", Type: FieldEnum, Options: options(AllMasterDetails)},
		{Name: "priority", Label: "Priority (MoSCoW)", Type: FieldEnum, Options: options(AllPriorities)},
	},
	KindAPISpec: {
		{Name: "api_id", Label: "API ID", Required: true},
		{Name: "api_name", Label: "API Name", Required: true},
		{Name: "method", Label: "Method", Type: FieldEnum, Options: options(AllHTTPMethods)},
		{Name: "endpoint", Label: "Endpoint", Required: true},
		{Name: "request_payload", Label: "Request Payload", Type: FieldLongText, Required: true},
		{Name: "response_payload", Label: "Response Payload", Type: FieldLongText, Required: true},
		{Name: "business_rule", Label: "Business Rule", Type: FieldLongText},
		{Name: "api_type", Label: "API Type", Type: FieldEnum, Options: options(AllAPITypes)},
	},
	KindLLMPrompt: {
		{Name: "prompt_id", Label: "Prompt ID", Required: true},
		{Name: "use_case", Label: "Use Case", Required: true},
		{Name: "prompt_template", Label: "Prompt Template", Type: FieldLongText, Required: true},
		{Name: "input_variables", Label: "Input Variables", Type: FieldLongText},
		{Name: "expected_output", Label: "Expected Output", Type: FieldLongText},
		{Name: "model_name", Label: "Model", Type: FieldEnum, Options: options(AllModelNames)},
		{Name: "temperature", Label: "Temperature", Type: FieldFloat},
	},
	KindDBField: {
		{Name: "table_name", Label: "Table Name", Required: true},
		{Name: "field_name", Label: "Field Name", Required: true},
		{Name: "data_type", Label: "Data Type", Type: FieldEnum, Options: options(AllDataTypes)},
		{Name: "constraints", Label: "Constraints"},
		{Name: "relationship", Label: "Relationship", Type: FieldEnum, Options: options(AllRelationships)},
		{Name: "description", Label: "Description", Type: FieldLongText},
	},
	KindTechStack: {
		{Name: "category", Label: "Category", Required: true},
		{Name: "technology_tool", Label: "Technology/Tool", Required: true},
		{Name: "version", Label: "Version"},
		{Name: "rationale", Label: "Rationale", Type: FieldLongText, Required: true},
		{Name: "repository_url", Label: "Repository URL"},
	},
	KindTraceability: {
		{Name: "business_requirement_id", Label: "Requirement ID", Required: true},
		{Name: "business_requirement", Label: "Business Requirement", Type: FieldLongText, Required: true},
		{Name: "linked_ui_ids", Label: "Linked UI IDs"},
		{Name: "linked_api_ids", Label: "Linked API IDs"},
		{Name: "linked_llm_ids", Label: "Linked LLM IDs"},
		{Name: "status", Label: "Status", Type: FieldEnum, Options: options(AllTraceStatuses)},
	},
	KindAgentArch: {
		{Name: "agent_id", Label: "Agent ID", Required: true},
		{Name: "agent_name", Label: "Agent Name", Required: true},
		{Name: "agent_type", Label: "Agent Type", Type: FieldEnum, Options: options(AllAgentTypes)},
		{Name: "primary_role", Label: "Primary Role", Required: true},
		{Name: "capabilities", Label: "Capabilities", Type: FieldLongText},
		{Name: "dependencies", Label: "Dependencies"},
		{Name: "communication_protocol", Label: "Communication Protocol"},
		{Name: "description", Label: "Description", Type: FieldLongText},
	},
	KindAgentConfig: {
		{Name: "config_id", Label: "Config ID", Required: true},
		{Name: "agent_id", Label: "Agent ID", Required: true},
		{Name: "parameter_name", Label: "Parameter Name", Required: true},
		{Name: "parameter_value", Label: "Parameter Value"},
		{Name: "parameter_type", Label: "Parameter Type", Type: FieldEnum, Options: options(AllParameterTypes)},
		{Name: "required", Label: "Required", Type: FieldBool},
		{Name: "description", Label: "Description", Type: FieldLongText},
	},
	KindAgentTask: {
		{Name: "task_id", Label: "Task ID", Required: true},
		{Name: "agent_id", Label: "Agent ID", Required: true},
		{Name: "task_name", Label: "Task Name", Required: true},
		{Name: "task_type", Label: "Task Type", Type: FieldEnum, Options: options(AllTaskTypes)},
		{Name: "input_data", Label: "Input Data", Type: FieldLongText},
		{Name: "output_data", Label: "Output Data", Type: FieldLongText},
		{Name: "success_criteria", Label: "Success Criteria", Type: FieldLongText},
		{Name: "error_handling", Label: "Error Handling", Type: FieldLongText},
		{Name: "description", Label: "Description", Type: FieldLongText},
	},
}

// Schema returns the ordered field list for a kind, or nil for an
// unknown kind. The returned slice must not be modified.
func Schema(k Kind) []Field {
	return schemas[k]
}

// PrimaryText is the long-text field that receives free-form text when a
// structured value cannot be recovered.
func PrimaryText(k Kind) string {
	switch k {
	case KindUISpec:
		return "requirement_description"
	case KindAPISpec:
		return "business_rule"
	case KindLLMPrompt:
		return "prompt_template"
	case KindDBField:
		return "description"
	case KindTechStack:
		return "rationale"
	case KindTraceability:
		return "business_requirement"
	case KindAgentArch:
		return "description"
	case KindAgentConfig:
		return "description"
	case KindAgentTask:
		return "description"
	}
	return ""
}
