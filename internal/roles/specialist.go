package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cx-foundry/cxsh/internal/contextengine"
	"github.com/cx-foundry/cxsh/internal/schema"
)

// maxOptions caps how many ranked candidates the specialist may return.
const maxOptions = 3

// ToolSpecialist translates the active plan step into ranked command
// candidates. It returns an empty list on failure, never an error.
type ToolSpecialist interface {
	ProposeCommands(ctx context.Context, beliefs *schema.AgentBeliefs, activeStepIndex int, tools []contextengine.Tool) []schema.CommandOption
}

const specialistSystemPrompt = `You are the Tool Specialist Agent for the cxsh shell. You are a precise and efficient tool user.
You will be given a "Mission Briefing" containing the user's overall goal, the full strategic plan, any discovered facts, and a list of available tools.
Your task is to generate a list of up to 3 potential cxsh commands that will accomplish the single active plan step.

CRITICAL CONSTRAINTS:
1. FOCUS: Your response must only address the single plan step marked ==> ACTIVE STEP:. Do not try to solve other steps.
2. USE CONTEXT: You must use information from the "Overall Goal" and "Discovered Facts" sections to find the necessary arguments for your command.
3. SYNTAX: The commands you generate must be syntactically perfect according to the shell's grammar. Pay close attention to whether a command uses keywords (e.g., flow run my-flow) or dot-notation (e.g., gh.getUser(username="torvalds")).
4. OUTPUT FORMAT: Your entire output MUST be ONLY a single, valid JSON object with a "command_options" array. Each option has "cx_command", "reasoning", and "confidence" (0.0-1.0) fields. Order options from most to least confident. Do not add commentary or markdown fences.

Example of a perfect response:
{
  "command_options": [
    {
      "cx_command": "connection list",
      "reasoning": "The active step asks for the saved connections, and connection list is the canonical command for that.",
      "confidence": 0.98
    }
  ]
}`

// LLMToolSpecialist is the ToolSpecialist backed by a chat client.
type LLMToolSpecialist struct {
	Client *Client
}

// ProposeCommands builds the mission briefing and asks for candidates.
func (s *LLMToolSpecialist) ProposeCommands(ctx context.Context, beliefs *schema.AgentBeliefs, activeStepIndex int, tools []contextengine.Tool) []schema.CommandOption {
	toolsJSON, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		return nil
	}
	user := fmt.Sprintf("%s\n\n## Available Tools\n%s", missionBriefing(beliefs, activeStepIndex), toolsJSON)

	var resp struct {
		CommandOptions []schema.CommandOption `json:"command_options"`
	}
	if err := s.Client.CreateJSON(ctx, specialistSystemPrompt, user, &resp); err != nil {
		return nil
	}

	options := resp.CommandOptions
	if len(options) > maxOptions {
		options = options[:maxOptions]
	}
	valid := options[:0]
	for _, opt := range options {
		if opt.Command == "" || opt.Confidence < 0 || opt.Confidence > 1 {
			continue
		}
		valid = append(valid, opt)
	}
	return valid
}

// missionBriefing renders the belief state for the specialist prompt,
// marking the step the specialist must solve.
func missionBriefing(beliefs *schema.AgentBeliefs, activeStepIndex int) string {
	var b strings.Builder
	b.WriteString("--- MISSION BRIEFING START ---\n")
	fmt.Fprintf(&b, "Overall Goal: %s\n\n", beliefs.OriginalGoal)
	b.WriteString("Full Plan:\n")
	for i, step := range beliefs.Plan {
		prefix := fmt.Sprintf("    %d.", i+1)
		if i == activeStepIndex {
			prefix = "==> ACTIVE STEP:"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", prefix, step.Status, step.Description)
	}
	if len(beliefs.DiscoveredFacts) > 0 {
		facts, _ := json.MarshalIndent(beliefs.DiscoveredFacts, "", "  ")
		fmt.Fprintf(&b, "\nDiscovered Facts:\n%s\n", facts)
	}
	b.WriteString("--- MISSION BRIEFING END ---")
	return b.String()
}
