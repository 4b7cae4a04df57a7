package mcpserver

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cx-foundry/cxsh/internal/grammar"
)

// ExecInput defines parameters for the cxsh_exec tool.
type ExecInput struct {
	Command string `json:"command" jsonschema:"cxsh command to execute"`
}

// ExecOutput contains the execution observation.
type ExecOutput struct {
	Observation map[string]any `json:"observation"`
	Failed      bool           `json:"failed,omitempty"`
}

// DryRunInput defines parameters for the cxsh_dry_run tool.
type DryRunInput struct {
	Command string `json:"command" jsonschema:"cxsh command to simulate"`
}

// DryRunOutput contains the simulation verdict.
type DryRunOutput struct {
	IndicatesFailure bool           `json:"indicates_failure"`
	Message          string         `json:"message"`
	PredictedEffect  map[string]any `json:"predicted_effect,omitempty"`
}

// ConnectionsInput is empty, no parameters needed.
type ConnectionsInput struct{}

// ConnectionsOutput lists saved connections and active aliases.
type ConnectionsOutput struct {
	Connections []string          `json:"connections"`
	Active      map[string]string `json:"active,omitempty"`
}

func (s *Server) handleExec(ctx context.Context, req *mcpsdk.CallToolRequest, input ExecInput) (*mcpsdk.CallToolResult, ExecOutput, error) {
	cmd, err := grammar.Parse(input.Command)
	if err != nil {
		out := ExecOutput{
			Observation: map[string]any{"error": fmt.Sprintf("parse %q: %v", input.Command, err)},
			Failed:      true,
		}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}

	obs := s.exec.Execute(ctx, cmd)
	if _, failed := obs["error"]; failed {
		return &mcpsdk.CallToolResult{IsError: true}, ExecOutput{Observation: obs, Failed: true}, nil
	}
	return nil, ExecOutput{Observation: obs}, nil
}

func (s *Server) handleDryRun(ctx context.Context, req *mcpsdk.CallToolRequest, input DryRunInput) (*mcpsdk.CallToolResult, DryRunOutput, error) {
	result := s.exec.DryRun(ctx, input.Command)
	return nil, DryRunOutput{
		IndicatesFailure: result.IndicatesFailure,
		Message:          result.Message,
		PredictedEffect:  result.PredictedEffect,
	}, nil
}

func (s *Server) handleConnections(ctx context.Context, req *mcpsdk.CallToolRequest, input ConnectionsInput) (*mcpsdk.CallToolResult, ConnectionsOutput, error) {
	conns := s.conns.List()
	ids := make([]string, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.ID)
	}

	out := ConnectionsOutput{Connections: ids}
	if len(s.sess.Connections) > 0 {
		out.Active = make(map[string]string, len(s.sess.Connections))
		for alias, source := range s.sess.Connections {
			out.Active[alias] = source
		}
	}
	return nil, out, nil
}
