package suggest

import (
	"fmt"
	"strings"

	"brd-tui/internal/brd"
)

// roles gives each kind the persona its prompt opens with.
var roles = map[brd.Kind]string{
	brd.KindUISpec:       "an expert UI/UX designer and requirements analyst",
	brd.KindAPISpec:      "an expert API architect and backend developer",
	brd.KindLLMPrompt:    "an expert prompt engineer",
	brd.KindDBField:      "an expert database designer",
	brd.KindTechStack:    "an experienced software architect",
	brd.KindTraceability: "a requirements traceability analyst",
	brd.KindAgentArch:    "an expert in multi-agent system architecture",
	brd.KindAgentConfig:  "an expert in configuring AI agents",
	brd.KindAgentTask:    "an expert in designing AI agent workflows",
}

// Prompt builds the generation prompt for one record of kind k. The model
// is asked for a single JSON object keyed by the kind's field names.
func Prompt(k brd.Kind, hint string) string {
	var b strings.Builder
	role := roles[k]
	if role == "" {
		role = "a business analyst"
	}
	fmt.Fprintf(&b, "You are %s helping to write a Business Requirement Document.\n\n", role)
	fmt.Fprintf(&b, "Draft one %s entry for the following:\n%s\n\n", k.Label(), strings.TrimSpace(hint))
	b.WriteString("Respond with a single JSON object with exactly these keys:\n")
	for _, f := range brd.Schema(k) {
		fmt.Fprintf(&b, "- %q: %s", f.Name, f.Label)
		switch f.Type {
		case brd.FieldEnum:
			fmt.Fprintf(&b, ", one of: %s", strings.Join(f.Options, ", "))
		case brd.FieldFloat:
			fmt.Fprintf(&b, ", a number between %g and %g", brd.MinTemperature, brd.MaxTemperature)
		case brd.FieldBool:
			b.WriteString(", true or false")
		case brd.FieldLongText:
			b.WriteString(", a few sentences")
		}
		if f.Required {
			b.WriteString(" (required)")
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nUse plain strings for text values. Do not add any text outside the JSON object.")
	return b.String()
}
