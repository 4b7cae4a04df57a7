package roles

import (
	"context"
	"fmt"

	"github.com/cx-foundry/cxsh/internal/schema"
)

// Planner decomposes a goal into a sequence of plan steps. Failure is
// never an error: it is represented as a plan whose first step is
// pre-marked failed, which Gate 1 rejects.
type Planner interface {
	Plan(ctx context.Context, goal, strategicContext string) []schema.PlanStep
}

const plannerSystemPrompt = `You are the Planner Agent, a high-level strategic thinker for the cxsh shell. Your sole purpose is to decompose a user's goal into a logical sequence of high-level steps.

CRITICAL CONSTRAINTS:
1. Your world is limited to the capabilities of the cxsh shell. You CANNOT write code, access external websites, or perform tasks outside of this shell.
2. Your plan steps must be described as goals for another AI agent to accomplish using cxsh commands.
3. The plan should be concise, logical, and directly address the user's goal using the tools and assets mentioned in the provided context.
4. Your output MUST be ONLY a valid JSON array of objects with a "step" field. Do not add any commentary or conversational text.

Example plan:
[
  {"step": "Use the compile command to generate a blueprint from the provided URL."},
  {"step": "Use the connection create command to set up a new connection for the newly created blueprint."},
  {"step": "Activate the new connection using the connect command."}
]`

// LLMPlanner is the Planner backed by a chat-completions client.
type LLMPlanner struct {
	Client *Client
}

// Plan asks the model for a step list. Every returned step starts pending.
func (p *LLMPlanner) Plan(ctx context.Context, goal, strategicContext string) []schema.PlanStep {
	user := fmt.Sprintf("## User Goal\n%s\n\n## Strategic Context\n%s", goal, strategicContext)

	var raw []struct {
		Step string `json:"step"`
	}
	if err := p.Client.CreateJSON(ctx, plannerSystemPrompt, user, &raw); err != nil {
		return []schema.PlanStep{{
			Description: fmt.Sprintf("The Planner Agent failed to generate a valid plan: %v", err),
			Status:      schema.StepFailed,
		}}
	}

	steps := make([]schema.PlanStep, 0, len(raw))
	for _, r := range raw {
		if r.Step == "" {
			continue
		}
		steps = append(steps, schema.PlanStep{Description: r.Step, Status: schema.StepPending})
	}
	return steps
}
