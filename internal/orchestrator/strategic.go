// Package orchestrator drives an agentic session: one planning pass,
// then a bounded execution loop that resolves plan steps into confirmed
// commands, executes them, and folds the analyst's interpretation back
// into the belief state.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cx-foundry/cxsh/internal/contextengine"
	"github.com/cx-foundry/cxsh/internal/executor"
	"github.com/cx-foundry/cxsh/internal/gate"
	"github.com/cx-foundry/cxsh/internal/grammar"
	"github.com/cx-foundry/cxsh/internal/history"
	"github.com/cx-foundry/cxsh/internal/roles"
	"github.com/cx-foundry/cxsh/internal/schema"
	"github.com/cx-foundry/cxsh/internal/session"
)

// maxIterations is the hard safety ceiling on execution iterations,
// independent of plan length.
const maxIterations = 10

// TerminalState is how a strategic session ended.
type TerminalState string

const (
	// Completed means every plan step ran or was skipped; graceful end.
	Completed TerminalState = "COMPLETED"
	// Cancelled means the user rejected a proposal; graceful end.
	Cancelled TerminalState = "CANCELLED"
	// PlanFailed means planning produced no usable plan; graceful end.
	PlanFailed TerminalState = "PLAN_FAILED"
	// Aborted means an unexpected error escaped the loop. Belief state
	// is preserved for post-mortem inspection.
	Aborted TerminalState = "ABORTED"
	// MaxStepsReached means the iteration ceiling was hit with steps
	// still pending. Belief state is preserved.
	MaxStepsReached TerminalState = "MAX_STEPS_REACHED"
)

// teardown drives end-of-session cleanup per terminal state. States that
// preserve belief state leave it retrievable through `inspect`.
var teardown = map[TerminalState]bool{
	Completed:       true,
	Cancelled:       true,
	PlanFailed:      true,
	Aborted:         false,
	MaxStepsReached: false,
}

// Orchestrator wires the role team, the gate pipeline, and the executor
// around one session's belief store.
type Orchestrator struct {
	Sess    *session.State
	Exec    *executor.Executor
	Ctx     *contextengine.Engine
	Team    *roles.Team
	Confirm gate.Confirmer
	Hist    *history.Log
	Out     io.Writer

	// MaxSteps overrides the iteration ceiling when positive.
	MaxSteps int
}

// New builds an orchestrator over an existing session.
func New(sess *session.State, exec *executor.Executor, eng *contextengine.Engine, team *roles.Team, confirm gate.Confirmer, hist *history.Log, out io.Writer) *Orchestrator {
	return &Orchestrator{Sess: sess, Exec: exec, Ctx: eng, Team: team, Confirm: confirm, Hist: hist, Out: out}
}

// Run executes a full agentic session for the goal and returns its
// terminal state. A non-nil error accompanies Aborted only; all other
// endings are reported through the state.
func (o *Orchestrator) Run(ctx context.Context, goal string) (TerminalState, error) {
	beliefs, err := o.Sess.Beliefs.Initialize(goal)
	if err != nil {
		return Aborted, err
	}

	state, err := o.run(ctx, goal, beliefs)
	if teardown[state] {
		o.Sess.Beliefs.End()
	}
	return state, err
}

func (o *Orchestrator) run(ctx context.Context, goal string, beliefs *schema.AgentBeliefs) (TerminalState, error) {
	fmt.Fprintf(o.Out, "Goal: %s\n\nPlanning...\n", goal)

	plan := o.Team.Planner.Plan(ctx, goal, o.Ctx.StrategicContext(goal, beliefs))
	if err := gate.ValidatePlan(plan); err != nil {
		fmt.Fprintf(o.Out, "Planning failed: %v\n", err)
		return PlanFailed, nil
	}
	if gate.LowActionability(plan, o.Ctx.KnownToolNames()) {
		fmt.Fprintln(o.Out, "Warning: few plan steps mention a known tool; the plan may be too vague to execute.")
	}
	if err := o.Sess.Beliefs.Apply(schema.ReplaceOp("/plan", plan)); err != nil {
		return Aborted, fmt.Errorf("install plan: %w", err)
	}

	fmt.Fprintln(o.Out, "Plan:")
	for i, step := range plan {
		fmt.Fprintf(o.Out, "  %d. %s\n", i+1, step.Description)
	}

	ceiling := o.MaxSteps
	if ceiling <= 0 {
		ceiling = maxIterations
	}
	for iteration := 0; iteration < ceiling; iteration++ {
		beliefs = o.Sess.Beliefs.Get()
		stepIndex := beliefs.NextPending()
		if stepIndex < 0 {
			fmt.Fprintln(o.Out, "\nAll plan steps resolved. Goal complete.")
			return Completed, nil
		}

		step := beliefs.Plan[stepIndex]
		fmt.Fprintf(o.Out, "\nStep %d/%d: %s\n", stepIndex+1, len(beliefs.Plan), step.Description)
		if err := o.Sess.Beliefs.Apply(schema.ReplaceOp(stepStatusPath(stepIndex), schema.StepInProgress)); err != nil {
			return Aborted, fmt.Errorf("mark step %d in progress: %w", stepIndex, err)
		}

		commandText, result := o.runTactical(ctx, o.Sess.Beliefs.Get(), stepIndex)
		switch result {
		case tacticalCancelled:
			fmt.Fprintln(o.Out, "Session cancelled by user.")
			return Cancelled, nil
		case tacticalExhausted:
			fmt.Fprintln(o.Out, "No viable command found for this step; skipping it.")
			if err := o.failStep(stepIndex, "No viable command was found after all attempts."); err != nil {
				return Aborted, err
			}
			continue
		}

		observation := o.executeResolved(ctx, commandText)
		response := o.analyze(ctx, step.Description, observation)

		if response.IndicatesStrategicFailure {
			// Only the step status changes on this path: once the
			// analyst flags the plan unworkable, its belief update and
			// summary are discarded rather than folded into state.
			if err := o.Sess.Beliefs.Apply(schema.ReplaceOp(stepStatusPath(stepIndex), schema.StepFailed)); err != nil {
				return Aborted, fmt.Errorf("mark step %d failed: %w", stepIndex, err)
			}
			if o.Hist != nil {
				o.Hist.AgentTurn(o.Sess.ID, response.SummaryText, string(schema.StepFailed))
			}
			// The message promises re-planning, but the loop only
			// skips the step and moves on.
			fmt.Fprintf(o.Out, "Step failed: %s\nRe-planning...\n", response.SummaryText)
			continue
		}

		status := stepOutcome(observation, response)
		if err := o.applyTurn(stepIndex, status, response); err != nil {
			return Aborted, err
		}
		if o.Hist != nil {
			o.Hist.AgentTurn(o.Sess.ID, response.SummaryText, string(status))
		}
		fmt.Fprintf(o.Out, "%s\n", response.SummaryText)
	}

	fmt.Fprintf(o.Out, "\nReached the maximum of %d steps without completing the goal. Session state is preserved; inspect %s for details.\n", ceiling, executor.BeliefsVariable)
	return MaxStepsReached, nil
}

// executeResolved parses and runs the confirmed command text. Parse
// failures (possible when the user edited the command) are folded into
// the observation so the analyst classifies them like any other error.
func (o *Orchestrator) executeResolved(ctx context.Context, text string) map[string]any {
	cmd, err := grammar.Parse(text)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("command %q failed to parse: %v", text, err)}
	}
	return o.Exec.Execute(ctx, cmd)
}

// analyze calls the analyst and contains its failures: a broken analyst
// yields a synthesized strategic-failure response, never an error.
func (o *Orchestrator) analyze(ctx context.Context, stepGoal string, observation map[string]any) schema.AnalystResponse {
	response, err := o.Team.Analyst.Analyze(ctx, stepGoal, observation)
	if err != nil {
		return schema.AnalystResponse{
			SummaryText:               fmt.Sprintf("The Analyst Agent failed to interpret the result: %v", err),
			IndicatesStrategicFailure: true,
		}
	}
	return response
}

// applyTurn applies one combined patch for a completed turn: the
// analyst's belief update plus the step's status and result summary. If
// the analyst's update makes the patch unappliable, it is dropped and
// the status ops are applied alone.
func (o *Orchestrator) applyTurn(stepIndex int, status schema.StepStatus, response schema.AnalystResponse) error {
	statusOps := []schema.PatchOp{
		schema.ReplaceOp(stepStatusPath(stepIndex), status),
		schema.AddOp(fmt.Sprintf("/plan/%d/result_summary", stepIndex), response.SummaryText),
	}

	if response.BeliefUpdate.Op != "" {
		ops := append([]schema.PatchOp{response.BeliefUpdate}, statusOps...)
		if err := o.Sess.Beliefs.Apply(ops...); err == nil {
			return nil
		}
		fmt.Fprintf(o.Out, "Warning: discarding unappliable belief update %s %s\n", response.BeliefUpdate.Op, response.BeliefUpdate.Path)
	}
	if err := o.Sess.Beliefs.Apply(statusOps...); err != nil {
		return fmt.Errorf("record step %d outcome: %w", stepIndex, err)
	}
	return nil
}

func (o *Orchestrator) failStep(stepIndex int, summary string) error {
	ops := []schema.PatchOp{
		schema.ReplaceOp(stepStatusPath(stepIndex), schema.StepFailed),
		schema.AddOp(fmt.Sprintf("/plan/%d/result_summary", stepIndex), summary),
	}
	if err := o.Sess.Beliefs.Apply(ops...); err != nil {
		return fmt.Errorf("mark step %d failed: %w", stepIndex, err)
	}
	return nil
}

// stepOutcome decides a step's final status from the observation and
// the analyst's reading of it. The observation is checked as text: an
// error indicator anywhere in the payload fails the step, not only a
// top-level error key.
func stepOutcome(observation map[string]any, response schema.AnalystResponse) schema.StepStatus {
	text, _ := json.Marshal(observation)
	if strings.Contains(strings.ToLower(string(text)), "error") {
		return schema.StepFailed
	}
	if strings.Contains(strings.ToLower(response.SummaryText), "failed") {
		return schema.StepFailed
	}
	return schema.StepCompleted
}

func stepStatusPath(stepIndex int) string {
	return fmt.Sprintf("/plan/%d/status", stepIndex)
}
