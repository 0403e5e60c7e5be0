package brd

import "slices"

// Severity grades a guardrail violation.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Guardrail is one input, output, model or behavioral rule. Limits of
// zero mean unset.
type Guardrail struct {
	GuardrailID string   `json:"guardrail_id"`
	Name        string   `json:"name"`
	Enabled     bool     `json:"enabled"`
	Severity    Severity `json:"severity,omitempty"`

	MaxLength        int      `json:"max_length,omitempty"`
	MinLength        int      `json:"min_length,omitempty"`
	BlockedKeywords  []string `json:"blocked_keywords,omitempty"`
	PromptInjection  bool     `json:"prompt_injection_check,omitempty"`
	PIIDetection     bool     `json:"pii_detection_enabled,omitempty"`
	Toxicity         bool     `json:"toxicity_detection,omitempty"`
	Hallucination    bool     `json:"hallucination_detection,omitempty"`
	MaxTokens        int      `json:"max_tokens_per_request,omitempty"`
	RequestsPerMin   int      `json:"max_requests_per_minute,omitempty"`
	TimeoutSeconds   int      `json:"request_timeout_seconds,omitempty"`
	BlockedActions   []string `json:"blocked_actions,omitempty"`
	MaxIterations    int      `json:"max_iterations,omitempty"`
	EscalationAction string   `json:"escalation_action,omitempty"`
}

// CompliancePolicy captures the regulatory constraints a deployment must
// honour.
type CompliancePolicy struct {
	PolicyID           string `json:"policy_id"`
	PolicyName         string `json:"policy_name"`
	Enabled            bool   `json:"enabled"`
	GDPR               bool   `json:"gdpr_compliant"`
	HIPAA              bool   `json:"hipaa_compliant"`
	SOX                bool   `json:"sox_compliant"`
	CCPA               bool   `json:"ccpa_compliant"`
	EncryptionRequired bool   `json:"data_encryption_required"`
	AuditRetentionDays int    `json:"audit_retention_days"`
}

// GovernanceFramework groups guardrails and policies for an LLM system.
type GovernanceFramework struct {
	FrameworkID   string `json:"framework_id"`
	FrameworkName string `json:"framework_name"`
	Version       string `json:"version"`
	Enabled       bool   `json:"enabled"`

	Input      []Guardrail        `json:"input_guardrails"`
	Output     []Guardrail        `json:"output_guardrails"`
	Model      []Guardrail        `json:"model_guardrails"`
	Behavioral []Guardrail        `json:"behavioral_guardrails"`
	Policies   []CompliancePolicy `json:"compliance_policies"`

	Monitoring       bool `json:"enable_monitoring"`
	DetailedLogging  bool `json:"enable_detailed_logging"`
	LogRetentionDays int  `json:"log_retention_days"`
}

// DefaultGovernanceFramework returns a framework with one input, output
// and model guardrail.
func DefaultGovernanceFramework() GovernanceFramework {
	return GovernanceFramework{
		FrameworkID:   "default_framework",
		FrameworkName: "Default LLM Governance Framework",
		Version:       "1.0",
		Enabled:       true,
		Input: []Guardrail{{
			GuardrailID: "input_1", Name: "Input Length Validation", Enabled: true, Severity: SeverityWarning,
			MaxLength: 10000, MinLength: 1, PromptInjection: true, PIIDetection: true,
		}},
		Output: []Guardrail{{
			GuardrailID: "output_1", Name: "Output Quality Check", Enabled: true, Severity: SeverityWarning,
			MaxLength: 5000, Hallucination: true, Toxicity: true,
		}},
		Model: []Guardrail{{
			GuardrailID: "model_1", Name: "Model Resource Control", Enabled: true,
			MaxTokens: 2000, TimeoutSeconds: 60, RequestsPerMin: 60,
		}},
		Monitoring:       true,
		DetailedLogging:  true,
		LogRetentionDays: 30,
	}
}

// CheckGovernance reports conflicting or missing governance settings.
func CheckGovernance(g GovernanceFramework) Findings {
	var f Findings
	if len(g.Input) == 0 && len(g.Output) == 0 {
		f.warnf("No input or output guardrails defined")
	}
	if !g.Monitoring {
		f.warnf("Monitoring is disabled - compliance tracking may be limited")
	}
	if !g.DetailedLogging {
		f.warnf("Detailed logging is disabled - audit trail may be incomplete")
	}
	for _, p := range g.Policies {
		if p.GDPR && !g.DetailedLogging {
			f.errorf("GDPR compliance requires detailed logging to be enabled")
		}
		if p.EncryptionRequired && len(g.Input) == 0 {
			f.warnf("Data encryption is required but no input guardrails are defined")
		}
	}
	for _, gr := range g.Model {
		if gr.TimeoutSeconds != 0 && (gr.TimeoutSeconds < 1 || gr.TimeoutSeconds > 300) {
			f.errorf("Guardrail %s timeout must be between 1 and 300 seconds", gr.GuardrailID)
		}
	}
	return f
}

func (g GovernanceFramework) clone() GovernanceFramework {
	guard := func(r Guardrail) Guardrail {
		r.BlockedKeywords = slices.Clone(r.BlockedKeywords)
		r.BlockedActions = slices.Clone(r.BlockedActions)
		return r
	}
	g.Input = cloneEach(g.Input, guard)
	g.Output = cloneEach(g.Output, guard)
	g.Model = cloneEach(g.Model, guard)
	g.Behavioral = cloneEach(g.Behavioral, guard)
	g.Policies = slices.Clone(g.Policies)
	return g
}
