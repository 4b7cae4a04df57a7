package orchestrator

import (
	"context"
	"fmt"

	"github.com/cx-foundry/cxsh/internal/gate"
	"github.com/cx-foundry/cxsh/internal/schema"
)

// maxTacticalAttempts bounds the per-step retry loop. Attempts are plain
// counters: no backoff, no jitter.
const maxTacticalAttempts = 3

// tacticalResult classifies how a tactical loop ended.
type tacticalResult int

const (
	// tacticalResolved means a command was confirmed and should execute.
	tacticalResolved tacticalResult = iota
	// tacticalCancelled means the user rejected the proposal; the whole
	// session ends and nothing executes for this step.
	tacticalCancelled
	// tacticalExhausted means no viable command emerged after all
	// attempts; the step is marked failed and the session continues.
	tacticalExhausted
)

// runTactical turns one plan step into a single confirmed command. Each
// attempt asks the specialist for candidates and narrows them through
// static validation, dry-run simulation, and user confirmation. An edit
// verdict short-circuits with the user's text; a reject stops all
// further attempts.
func (o *Orchestrator) runTactical(ctx context.Context, beliefs *schema.AgentBeliefs, stepIndex int) (string, tacticalResult) {
	step := beliefs.Plan[stepIndex]

	for attempt := 1; attempt <= maxTacticalAttempts; attempt++ {
		if attempt > 1 {
			fmt.Fprintf(o.Out, "Retrying (%d/%d)...\n", attempt, maxTacticalAttempts)
		}

		tools := o.Ctx.TacticalContext(step)
		options := o.Team.Specialist.ProposeCommands(ctx, beliefs, stepIndex, tools)
		if len(options) == 0 {
			fmt.Fprintln(o.Out, "Specialist proposed no commands for this step.")
			continue
		}

		options = gate.StaticFilter(o.Sess, options)
		if len(options) == 0 {
			fmt.Fprintln(o.Out, "All proposed commands failed static validation.")
			continue
		}

		options = gate.Simulate(ctx, o.Exec, options)
		if len(options) == 0 {
			fmt.Fprintln(o.Out, "All proposed commands failed the dry run.")
			continue
		}

		primary, alternatives := gate.SelectPrimary(options)
		decision, err := o.Confirm.Confirm(primary, alternatives)
		if err != nil {
			fmt.Fprintf(o.Out, "Confirmation aborted: %v\n", err)
			return "", tacticalCancelled
		}

		switch decision.Kind {
		case gate.Accept:
			return primary.Command, tacticalResolved
		case gate.Edit:
			if o.Hist != nil {
				o.Hist.UserCorrection(o.Sess.ID, step.Description, primary.Command, decision.Text)
			}
			return decision.Text, tacticalResolved
		case gate.Reject:
			return "", tacticalCancelled
		}
	}
	return "", tacticalExhausted
}
