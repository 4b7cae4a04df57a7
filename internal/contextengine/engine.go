// Package contextengine builds prompt context for the agent roles:
// a strategic situation summary for the planner and tool schemas for the
// tool specialist.
package contextengine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cx-foundry/cxsh/internal/connstore"
	"github.com/cx-foundry/cxsh/internal/history"
	"github.com/cx-foundry/cxsh/internal/schema"
	"github.com/cx-foundry/cxsh/internal/session"
)

// recentCommandLimit is how many recent successful commands the strategic
// context includes.
const recentCommandLimit = 3

// Property describes one parameter of a tool schema.
type Property struct {
	Type string `json:"type"`
}

// Parameters is the JSON-schema-shaped parameter block of a tool.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Tool is one tool schema presented to the tool specialist.
type Tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Engine assembles context from the session, the connection store, and
// the history log.
type Engine struct {
	Sess        *session.State
	Conns       *connstore.Store
	HistoryPath string
}

// New creates a context engine for one session.
func New(sess *session.State, conns *connstore.Store, historyPath string) *Engine {
	return &Engine{Sess: sess, Conns: conns, HistoryPath: historyPath}
}

// StrategicContext renders the current situation for the planner: the
// goal, plan progress, and recent successful commands.
func (e *Engine) StrategicContext(goal string, beliefs *schema.AgentBeliefs) string {
	var b strings.Builder
	b.WriteString("## Current Situation\n")
	fmt.Fprintf(&b, "- User's goal: %q\n", goal)

	if beliefs != nil && len(beliefs.Plan) > 0 {
		b.WriteString("- The current plan is:\n")
		for i, step := range beliefs.Plan {
			icon := "…"
			switch step.Status {
			case schema.StepCompleted:
				icon = "✓"
			case schema.StepFailed:
				icon = "✗"
			}
			fmt.Fprintf(&b, "  %s %d. %s\n", icon, i+1, step.Description)
		}
	}

	if aliases := e.Sess.ActiveAliases(); len(aliases) > 0 {
		fmt.Fprintf(&b, "- Active connections: %s\n", strings.Join(aliases, ", "))
	}

	if recent := history.RecentCommands(e.HistoryPath, "success", recentCommandLimit); len(recent) > 0 {
		b.WriteString("\n## Recent Successful Commands\n")
		for _, cmd := range recent {
			fmt.Fprintf(&b, "- `%s`\n", cmd)
		}
	}
	return b.String()
}

// TacticalContext gathers the tool schemas relevant to a plan step: the
// core builtin commands plus one schema per action of every non-reserved
// active connection.
func (e *Engine) TacticalContext(step schema.PlanStep) []Tool {
	tools := coreTools()
	for _, alias := range e.Sess.ActiveAliases() {
		if strings.HasPrefix(alias, session.ReservedAliasPrefix) {
			continue
		}
		source := e.Sess.Connections[alias]
		conn, ok := e.Conns.Get(source)
		if !ok {
			continue
		}
		tools = append(tools, connectionTools(alias, conn)...)
	}
	return tools
}

// KnownToolNames returns the vocabulary Gate 1 uses for its actionability
// heuristic: builtin command heads plus active aliases.
func (e *Engine) KnownToolNames() []string {
	names := []string{"compile", "connection", "connect", "flow", "inspect"}
	names = append(names, e.Sess.ActiveAliases()...)
	return names
}

func coreTools() []Tool {
	return []Tool{
		{
			Name:        "cx.compile",
			Description: "Compiles an API specification (e.g., OpenAPI) from a URL into a new blueprint.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]Property{
					"spec_url": {Type: "string"},
					"name":     {Type: "string"},
					"version":  {Type: "string"},
				},
				Required: []string{"spec_url", "name"},
			},
		},
		{
			Name:        "cx.connection.list",
			Description: "Lists all saved connections.",
			Parameters:  Parameters{Type: "object", Properties: map[string]Property{}},
		},
		{
			Name:        "cx.connection.create",
			Description: "Creates a new connection for a compiled blueprint.",
			Parameters: Parameters{
				Type:       "object",
				Properties: map[string]Property{"blueprint": {Type: "string"}},
				Required:   []string{"blueprint"},
			},
		},
		{
			Name:        "cx.connect",
			Description: "Activates a saved connection, assigning it a session alias.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]Property{
					"source": {Type: "string"},
					"alias":  {Type: "string"},
				},
				Required: []string{"source", "alias"},
			},
		},
		{
			Name:        "cx.flow.run",
			Description: "Executes a pre-existing workflow from the workspace. Only usable when the workspace has saved flows; fails if the named flow does not exist.",
			Parameters: Parameters{
				Type:       "object",
				Properties: map[string]Property{"name": {Type: "string"}},
				Required:   []string{"name"},
			},
		},
		{
			Name:        "cx.inspect",
			Description: "Displays a detailed summary of a session variable.",
			Parameters: Parameters{
				Type:       "object",
				Properties: map[string]Property{"variable_name": {Type: "string"}},
				Required:   []string{"variable_name"},
			},
		},
	}
}

func connectionTools(alias string, conn connstore.Connection) []Tool {
	names := make([]string, 0, len(conn.Actions))
	for name := range conn.Actions {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		spec := conn.Actions[name]
		t := Tool{
			Name:        alias + "." + name,
			Description: spec.Description,
			Parameters:  Parameters{Type: "object", Properties: map[string]Property{}},
		}
		if t.Description == "" {
			t.Description = fmt.Sprintf("Execute the %s action.", name)
		}
		for _, p := range spec.Params {
			t.Parameters.Properties[p.Name] = Property{Type: p.Type}
			if p.Required {
				t.Parameters.Required = append(t.Parameters.Required, p.Name)
			}
		}
		tools = append(tools, t)
	}
	return tools
}
