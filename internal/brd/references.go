package brd

import "fmt"

// CheckReferences reports traceability links and agent records that name
// ids not present in the project, followed by the multi-agent design's
// own dangling references. The result is advisory; saving does not
// depend on it.
func (p *Project) CheckReferences() []string {
	ui := refSet(p.Records(KindUISpec))
	api := refSet(p.Records(KindAPISpec))
	llm := refSet(p.Records(KindLLMPrompt))

	var problems []string
	for _, t := range p.Traceability {
		problems = append(problems, missing(t.BusinessRequirementID, "UI", t.LinkedUIIDs, ui)...)
		problems = append(problems, missing(t.BusinessRequirementID, "API", t.LinkedAPIIDs, api)...)
		problems = append(problems, missing(t.BusinessRequirementID, "LLM", t.LinkedLLMIDs, llm)...)
	}

	if p.Template.HasAgents() {
		agents := refSet(p.Records(KindAgentArch))
		for _, c := range p.AgentConfigurations {
			if !agents[c.AgentID] {
				problems = append(problems, fmt.Sprintf("Configuration %s references unknown agent %s", c.ConfigID, c.AgentID))
			}
		}
		for _, t := range p.AgentTasks {
			if !agents[t.AgentID] {
				problems = append(problems, fmt.Sprintf("Task %s references unknown agent %s", t.TaskID, t.AgentID))
			}
		}
	}

	if p.MultiAgent != nil {
		problems = append(problems, p.MultiAgent.CheckReferences()...)
	}
	return problems
}

func refSet(recs []Record) map[string]bool {
	set := make(map[string]bool, len(recs))
	for _, r := range recs {
		if id := r.Ref(); id != "" {
			set[id] = true
		}
	}
	return set
}

func missing(owner, label, list string, known map[string]bool) []string {
	var out []string
	for _, id := range SplitRefs(list) {
		if !known[id] {
			out = append(out, fmt.Sprintf("Requirement %s links unknown %s id %s", owner, label, id))
		}
	}
	return out
}
