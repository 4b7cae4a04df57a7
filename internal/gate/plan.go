// Package gate holds the validation pipeline that stands between
// generated commands and execution: plan sanity, static validation,
// dry-run simulation, and user confirmation.
package gate

import (
	"fmt"
	"strings"

	"github.com/cx-foundry/cxsh/internal/schema"
)

// ValidatePlan is Gate 1. It fails the session when the plan is empty or
// the planner pre-marked its first step failed. Validation runs once,
// right after planning; a failure here is never retried.
func ValidatePlan(plan []schema.PlanStep) error {
	if len(plan) == 0 {
		return fmt.Errorf("planner returned an empty plan")
	}
	if plan[0].Status == schema.StepFailed {
		return fmt.Errorf("planner failed: %s", plan[0].Description)
	}
	return nil
}

// LowActionability reports whether fewer than half of the plan steps
// mention a known tool or alias name. This is a heuristic warning signal
// only; it never blocks the plan.
func LowActionability(plan []schema.PlanStep, knownTools []string) bool {
	if len(plan) == 0 {
		return false
	}
	actionable := 0
	for _, step := range plan {
		desc := strings.ToLower(step.Description)
		for _, tool := range knownTools {
			if tool != "" && strings.Contains(desc, strings.ToLower(tool)) {
				actionable++
				break
			}
		}
	}
	return actionable*2 < len(plan)
}
