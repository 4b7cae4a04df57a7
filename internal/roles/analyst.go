package roles

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cx-foundry/cxsh/internal/schema"
)

// observationLimit caps how much raw observation text is sent for
// analysis.
const observationLimit = 4000

// Analyst interprets an executed step's observation into a belief update.
// Unlike the other roles it may fail; the strategic loop contains that
// failure by synthesizing a fallback response.
type Analyst interface {
	Analyze(ctx context.Context, stepGoal string, observation map[string]any) (schema.AnalystResponse, error)
}

const analystSystemPrompt = `You are the Analyst Agent within the cxsh shell's reasoning engine.
Your role is to be a precise and factual data interpreter.
You will be given the goal of the previous step and the raw Observation from the command that was executed.

Your responsibilities:
1. Analyze the observation and determine whether the command was successful. An empty list, null, or "not found" message is a SEMANTIC failure. A traceback or HTTP 4xx/5xx error is a RUNTIME failure.
2. If the observation indicates the overall plan is flawed or impossible (e.g. a required resource does not exist), set indicates_strategic_failure to true.
3. Formulate a SINGLE, precise JSON Patch operation to update the agent's belief state, usually adding a fact to /discovered_facts. Even when the observation is uninteresting you MUST provide a minimal patch, like adding a note.
4. Write a concise, one-sentence summary of what happened.

Your output MUST be ONLY a valid JSON object with "belief_update" (an object with "op", "path", and "value"), "summary_text", and "indicates_strategic_failure" fields. No commentary, no markdown fences.

Example:
{
  "belief_update": {"op": "add", "path": "/discovered_facts/turn_note", "value": "The connection list command executed as planned."},
  "summary_text": "The command to list connections executed successfully.",
  "indicates_strategic_failure": false
}`

// LLMAnalyst is the Analyst backed by a chat client.
type LLMAnalyst struct {
	Client *Client
}

// Analyze sends the step goal and observation for interpretation.
func (a *LLMAnalyst) Analyze(ctx context.Context, stepGoal string, observation map[string]any) (schema.AnalystResponse, error) {
	obsJSON, err := json.MarshalIndent(observation, "", "  ")
	if err != nil {
		obsJSON = []byte(fmt.Sprintf("%v", observation))
	}
	obsText := string(obsJSON)
	if len(obsText) > observationLimit {
		obsText = obsText[:observationLimit]
	}
	user := fmt.Sprintf("## Step Goal\n%s\n\n## Raw Observation\n```json\n%s\n```", stepGoal, obsText)

	var resp schema.AnalystResponse
	if err := a.Client.CreateJSON(ctx, analystSystemPrompt, user, &resp); err != nil {
		return schema.AnalystResponse{}, err
	}
	if resp.BeliefUpdate.Op == "" || resp.BeliefUpdate.Path == "" {
		return schema.AnalystResponse{}, fmt.Errorf("analyst returned an incomplete belief update")
	}
	return resp, nil
}
