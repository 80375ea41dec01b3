package agent

import (
	"errors"
	"fmt"
)

// Agent kinds understood by the orchestrator
const (
	KindLLM  = "llm"
	KindLoop = "loop"
)

// Built-in capabilities provided by the orchestrator rather than this server
const (
	BuiltinGoogleSearch  = "google_search"
	BuiltinPreloadMemory = "preload_memory"
)

// DefaultLoopIterations bounds the report verification loop
const DefaultLoopIterations = 3

// Definition describes one agent for the external orchestrator. Tools name
// entries of the tool registry; AgentTools name sub-agents exposed as tools.
type Definition struct {
	Name          string       `json:"name"`
	Kind          string       `json:"kind"`
	Model         string       `json:"model,omitempty"`
	Description   string       `json:"description"`
	Instruction   string       `json:"instruction,omitempty"`
	Tools         []string     `json:"tools,omitempty"`
	Builtins      []string     `json:"builtin_tools,omitempty"`
	AgentTools    []string     `json:"agent_tools,omitempty"`
	SubAgents     []Definition `json:"sub_agents,omitempty"`
	MaxIterations int          `json:"max_iterations,omitempty"`
}

// ToolSet is what a manifest is validated against
type ToolSet interface {
	Has(name string) bool
}

// Manifest builds the agent tree with every LLM agent on model
func Manifest(model string) Definition {
	clarity := Definition{
		Name:        "ClarityChecker",
		Kind:        KindLLM,
		Model:       model,
		Description: "Checks if the report content is clear and complete.",
		Instruction: clarityInstruction,
		Tools:       []string{"ask_user_for_clarification"},
	}
	summary := Definition{
		Name:        "SummaryGenerator",
		Kind:        KindLLM,
		Model:       model,
		Description: "Generates a summary confirmation for the user.",
		Instruction: summaryInstruction,
		Tools:       []string{"save_medical_report"},
	}
	loop := Definition{
		Name:          "ReportVerificationLoop",
		Kind:          KindLoop,
		Description:   "Loop to verify report details with the user before saving.",
		SubAgents:     []Definition{clarity, summary},
		MaxIterations: DefaultLoopIterations,
	}
	research := Definition{
		Name:        "MedicalResearchAgent",
		Kind:        KindLLM,
		Model:       model,
		Description: "Searches for new treatments and cures for diseases, especially rare ones.",
		Instruction: researchInstruction,
		Builtins:    []string{BuiltinGoogleSearch},
	}

	return Definition{
		Name:  "medical_companion_agent",
		Kind:  KindLLM,
		Model: model,
		Description: "A medical companion agent that helps coordinate appointments with doctors, " +
			"manage medical reports, and order medicines.",
		Instruction: rootInstruction,
		Tools: []string{
			"list_doctors",
			"get_doctor_schedule",
			"book_appointment",
			"modify_appointment",
			"cancel_appointment",
			"list_appointments",
			"list_medical_reports",
			"get_reports_summary",
			"save_medical_report",
			"read_report",
			"order_medicine",
			"ask_user_for_clarification",
			"analyze_past_checkups",
			"call_family",
			"book_ambulance",
			"medical_research",
		},
		Builtins:   []string{BuiltinPreloadMemory},
		AgentTools: []string{research.Name},
		SubAgents:  []Definition{loop, research},
	}
}

// Validate checks that every tool referenced anywhere in the tree is
// registered, that agent tools point at sub-agents and that loops are bounded.
func Validate(def Definition, tools ToolSet) error {
	var errs []error
	validate(def, tools, &errs)
	return errors.Join(errs...)
}

func validate(def Definition, tools ToolSet, errs *[]error) {
	if def.Name == "" {
		*errs = append(*errs, errors.New("agent without a name"))
	}
	switch def.Kind {
	case KindLLM:
		if def.Model == "" {
			*errs = append(*errs, fmt.Errorf("agent %s: model is required", def.Name))
		}
	case KindLoop:
		if def.MaxIterations <= 0 {
			*errs = append(*errs, fmt.Errorf("agent %s: loop needs a positive max_iterations", def.Name))
		}
		if len(def.SubAgents) == 0 {
			*errs = append(*errs, fmt.Errorf("agent %s: loop has no sub-agents", def.Name))
		}
	default:
		*errs = append(*errs, fmt.Errorf("agent %s: unknown kind %q", def.Name, def.Kind))
	}

	for _, name := range def.Tools {
		if !tools.Has(name) {
			*errs = append(*errs, fmt.Errorf("agent %s: tool %q is not registered", def.Name, name))
		}
	}
	for _, name := range def.AgentTools {
		if !hasSubAgent(def, name) {
			*errs = append(*errs, fmt.Errorf("agent %s: agent tool %q is not a sub-agent", def.Name, name))
		}
	}
	for _, sub := range def.SubAgents {
		validate(sub, tools, errs)
	}
}

func hasSubAgent(def Definition, name string) bool {
	for _, sub := range def.SubAgents {
		if sub.Name == name {
			return true
		}
	}
	return false
}
