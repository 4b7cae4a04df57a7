package schema

import "fmt"

// StepStatus tracks the lifecycle of a single plan step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// validStatus is used when re-validating a patched belief document.
var validStatus = map[StepStatus]bool{
	StepPending:    true,
	StepInProgress: true,
	StepCompleted:  true,
	StepFailed:     true,
}

// PlanStep is a single step in the agent's strategic plan. Steps are
// addressed by their index in the plan array for the lifetime of the
// belief state; they are never deleted individually.
type PlanStep struct {
	Description   string     `json:"step"`
	Status        StepStatus `json:"status"`
	ResultSummary string     `json:"result_summary,omitempty"`
}

// AgentBeliefs is the structured state of an in-progress agentic session:
// the goal, the plan, and everything the agent has learned along the way.
// Exactly one instance exists per session, owned by the belief store.
type AgentBeliefs struct {
	OriginalGoal        string              `json:"original_goal"`
	Plan                []PlanStep          `json:"plan"`
	DiscoveredFacts     map[string]any      `json:"discovered_facts"`
	ConversationHistory []map[string]string `json:"conversation_history"`
}

// NewBeliefs constructs an empty belief state for a fresh session.
func NewBeliefs(goal string) *AgentBeliefs {
	return &AgentBeliefs{
		OriginalGoal:        goal,
		Plan:                []PlanStep{},
		DiscoveredFacts:     map[string]any{},
		ConversationHistory: []map[string]string{},
	}
}

// Validate checks structural invariants after a patch has been applied.
func (b *AgentBeliefs) Validate() error {
	if b.OriginalGoal == "" {
		return fmt.Errorf("beliefs: original_goal must not be empty")
	}
	for i, step := range b.Plan {
		if step.Description == "" {
			return fmt.Errorf("beliefs: plan step %d has an empty description", i)
		}
		if step.Status != "" && !validStatus[step.Status] {
			return fmt.Errorf("beliefs: plan step %d has invalid status %q", i, step.Status)
		}
	}
	return nil
}

// Normalize fills nil collections so a patched document always satisfies
// the schema's "empty, not absent" convention.
func (b *AgentBeliefs) Normalize() {
	if b.Plan == nil {
		b.Plan = []PlanStep{}
	}
	if b.DiscoveredFacts == nil {
		b.DiscoveredFacts = map[string]any{}
	}
	if b.ConversationHistory == nil {
		b.ConversationHistory = []map[string]string{}
	}
}

// NextPending returns the index of the first pending plan step, or -1.
func (b *AgentBeliefs) NextPending() int {
	for i, step := range b.Plan {
		if step.Status == StepPending {
			return i
		}
	}
	return -1
}

// DryRunResult is the predicted outcome of executing a command,
// produced by the executor's simulation entry point.
type DryRunResult struct {
	IndicatesFailure bool           `json:"indicates_failure"`
	Message          string         `json:"message"`
	PredictedEffect  map[string]any `json:"predicted_effect,omitempty"`
}

// CommandOption is one proposed command in the specialist's ranked list.
// Options are transient: generated and discarded within a single tactical
// attempt, never persisted into AgentBeliefs.
type CommandOption struct {
	Command    string        `json:"cx_command"`
	Reasoning  string        `json:"reasoning"`
	Confidence float64       `json:"confidence"`
	Preview    *DryRunResult `json:"-"`
}

// PatchOp is a single RFC 6902 operation against the belief document.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}

// ReplaceOp builds a replace operation.
func ReplaceOp(path string, value any) PatchOp {
	return PatchOp{Op: "replace", Path: path, Value: value}
}

// AddOp builds an add operation.
func AddOp(path string, value any) PatchOp {
	return PatchOp{Op: "add", Path: path, Value: value}
}

// AnalystResponse is the analyst's interpretation of one executed step.
type AnalystResponse struct {
	BeliefUpdate              PatchOp `json:"belief_update"`
	SummaryText               string  `json:"summary_text"`
	IndicatesStrategicFailure bool    `json:"indicates_strategic_failure"`
}
