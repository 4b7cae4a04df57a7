// Package executor runs parsed commands against the session and predicts
// their outcomes without side effects (dry run).
package executor

import (
	"context"
	"fmt"

	"github.com/cx-foundry/cxsh/internal/connstore"
	"github.com/cx-foundry/cxsh/internal/grammar"
	"github.com/cx-foundry/cxsh/internal/history"
	"github.com/cx-foundry/cxsh/internal/schema"
	"github.com/cx-foundry/cxsh/internal/session"
)

// BeliefsVariable is the session variable exposing agent beliefs to
// `inspect`.
const BeliefsVariable = "_agent_beliefs"

// Invoker performs remote action calls on behalf of the executor. The
// connector engine that implements real provider strategies plugs in here.
type Invoker interface {
	Invoke(ctx context.Context, conn connstore.Connection, action string, args map[string]string) (map[string]any, error)
}

// Executor executes commands against a session and its connection store.
type Executor struct {
	Sess    *session.State
	Conns   *connstore.Store
	Hist    *history.Log
	Invoker Invoker // optional; action calls fail without one
}

// New creates an executor for the given session.
func New(sess *session.State, conns *connstore.Store, hist *history.Log) *Executor {
	return &Executor{Sess: sess, Conns: conns, Hist: hist}
}

// Execute runs a parsed command and returns an observation. Command-level
// failures are encoded in the observation under an "error" key so the
// analyst can classify them; only infrastructure faults return a Go error.
func (e *Executor) Execute(ctx context.Context, cmd grammar.Command) map[string]any {
	obs := e.execute(ctx, cmd)

	status := "success"
	if _, failed := obs["error"]; failed {
		status = "error"
	}
	if e.Hist != nil {
		e.Hist.Command(e.Sess.ID, cmd.Text(), status)
	}
	return obs
}

func (e *Executor) execute(ctx context.Context, cmd grammar.Command) map[string]any {
	switch c := cmd.(type) {
	case *grammar.Builtin:
		return e.executeBuiltin(c)
	case *grammar.ActionCall:
		return e.executeAction(ctx, c)
	default:
		return errObs(fmt.Sprintf("unsupported command type %T", cmd))
	}
}

func (e *Executor) executeBuiltin(b *grammar.Builtin) map[string]any {
	switch b.Name {
	case "connection":
		if b.Args[0] == "list" {
			conns := e.Conns.List()
			ids := make([]string, 0, len(conns))
			for _, c := range conns {
				ids = append(ids, c.ID)
			}
			return map[string]any{"status": "success", "connections": ids, "count": len(ids)}
		}
		return e.createConnection(b)

	case "connect":
		source, alias := b.ConnectSource(), b.ConnectAlias()
		if _, ok := e.Conns.Get(source); !ok {
			return errObs(fmt.Sprintf("connection %q not found", source))
		}
		e.Sess.Connections[alias] = source
		return map[string]any{"status": "success", "message": fmt.Sprintf("Connection %q is now active as %q.", source, alias)}

	case "compile":
		id := fmt.Sprintf("community/%s@%s", b.Flag("name"), orDefault(b.Flag("version"), "1.0.0"))
		bp := connstore.Blueprint{ID: id, SpecURL: b.Flag("spec-url"), Version: orDefault(b.Flag("version"), "1.0.0")}
		if err := e.Conns.SaveBlueprint(bp); err != nil {
			return errObs(err.Error())
		}
		return map[string]any{"status": "success", "blueprint_id": id}

	case "inspect":
		name := b.Args[0]
		if name == BeliefsVariable {
			if beliefs := e.Sess.Beliefs.Get(); beliefs != nil {
				return map[string]any{"status": "success", "variable": name, "value": beliefs}
			}
			return errObs("no active agentic session")
		}
		value, ok := e.Sess.Variables[name]
		if !ok {
			return errObs(fmt.Sprintf("variable %q is not defined", name))
		}
		return map[string]any{"status": "success", "variable": name, "value": value}

	case "flow":
		return errObs(fmt.Sprintf("flow %q not found in workspace", b.Args[1]))

	case "help":
		return map[string]any{"status": "success", "message": "Available commands: connection, connect, compile, inspect, flow, help, exit."}

	case "exit":
		return map[string]any{"status": "success", "message": "exit"}
	}
	return errObs(fmt.Sprintf("builtin %q not implemented", b.Name))
}

func (e *Executor) createConnection(b *grammar.Builtin) map[string]any {
	blueprintID := b.Flag("blueprint")
	if _, ok := e.Conns.GetBlueprint(blueprintID); !ok {
		return errObs(fmt.Sprintf("blueprint %q not found; compile it first", blueprintID))
	}
	name := connstore.BlueprintName(blueprintID)
	conn := connstore.Connection{ID: "user:" + name, Name: name, CatalogID: blueprintID}
	if err := e.Conns.Save(conn); err != nil {
		return errObs(err.Error())
	}
	return map[string]any{"status": "success", "connection_id": conn.ID}
}

func (e *Executor) executeAction(ctx context.Context, call *grammar.ActionCall) map[string]any {
	source, ok := e.Sess.Connections[call.Alias]
	if !ok {
		return errObs(fmt.Sprintf("connection alias %q is not active", call.Alias))
	}
	conn, ok := e.Conns.Get(source)
	if !ok {
		return errObs(fmt.Sprintf("connection %q has disappeared from the store", source))
	}
	if _, ok := conn.Actions[call.Action]; !ok {
		return errObs(fmt.Sprintf("connection %q has no action %q", call.Alias, call.Action))
	}
	if e.Invoker == nil {
		return errObs(fmt.Sprintf("no connector engine available to invoke %s.%s", call.Alias, call.Action))
	}
	result, err := e.Invoker.Invoke(ctx, conn, call.Action, call.Args)
	if err != nil {
		return errObs(err.Error())
	}
	return result
}

// DryRun parses a command and predicts its outcome without executing it.
func (e *Executor) DryRun(ctx context.Context, text string) schema.DryRunResult {
	cmd, err := grammar.Parse(text)
	if err != nil {
		return schema.DryRunResult{
			IndicatesFailure: true,
			Message:          fmt.Sprintf("Command is invalid and would fail. Error: %v", err),
		}
	}

	switch c := cmd.(type) {
	case *grammar.Builtin:
		return e.dryRunBuiltin(c)
	case *grammar.ActionCall:
		return e.dryRunAction(c)
	}
	return schema.DryRunResult{Message: "Command is syntactically valid and ready for execution."}
}

func (e *Executor) dryRunBuiltin(b *grammar.Builtin) schema.DryRunResult {
	switch b.Name {
	case "connect":
		source := b.ConnectSource()
		if _, ok := e.Conns.Get(source); !ok {
			return schema.DryRunResult{
				IndicatesFailure: true,
				Message:          fmt.Sprintf("Connection %q does not exist and the connect would fail.", source),
			}
		}
		return schema.DryRunResult{
			Message:         fmt.Sprintf("Would activate connection %q as alias %q.", source, b.ConnectAlias()),
			PredictedEffect: map[string]any{"connections_activated": 1},
		}
	case "connection":
		if b.Args[0] == "create" {
			if _, ok := e.Conns.GetBlueprint(b.Flag("blueprint")); !ok {
				return schema.DryRunResult{
					IndicatesFailure: true,
					Message:          fmt.Sprintf("Blueprint %q is not compiled; creation would fail.", b.Flag("blueprint")),
				}
			}
			return schema.DryRunResult{
				Message:         "Would create a new connection document.",
				PredictedEffect: map[string]any{"files_written": 1},
			}
		}
	case "compile":
		return schema.DryRunResult{
			Message:         fmt.Sprintf("Would compile %q into a new blueprint.", b.Flag("spec-url")),
			PredictedEffect: map[string]any{"files_written": 1},
		}
	case "flow":
		return schema.DryRunResult{
			IndicatesFailure: true,
			Message:          fmt.Sprintf("Flow %q is not present in the workspace and would fail.", b.Args[1]),
		}
	}
	return schema.DryRunResult{Message: "Command is syntactically valid and ready for execution."}
}

func (e *Executor) dryRunAction(call *grammar.ActionCall) schema.DryRunResult {
	source, ok := e.Sess.Connections[call.Alias]
	if !ok {
		return schema.DryRunResult{
			IndicatesFailure: true,
			Message:          fmt.Sprintf("Connection alias %q is not active; the call would fail.", call.Alias),
		}
	}
	conn, _ := e.Conns.Get(source)
	spec, ok := conn.Actions[call.Action]
	if !ok {
		return schema.DryRunResult{
			IndicatesFailure: true,
			Message:          fmt.Sprintf("Connection %q has no action %q.", call.Alias, call.Action),
		}
	}
	for _, p := range spec.Params {
		if p.Required {
			if _, ok := call.Args[p.Name]; !ok {
				return schema.DryRunResult{
					IndicatesFailure: true,
					Message:          fmt.Sprintf("Required parameter %q is missing; the call would fail.", p.Name),
				}
			}
		}
	}
	return schema.DryRunResult{
		Message:         fmt.Sprintf("Would invoke %s.%s against %q.", call.Alias, call.Action, source),
		PredictedEffect: map[string]any{"remote_calls": 1},
	}
}

func errObs(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
