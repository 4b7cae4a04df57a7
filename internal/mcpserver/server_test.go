package mcpserver

import (
	"context"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cx-foundry/cxsh/internal/connstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{ConnectionsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create MCP server: %v", err)
	}
	return s
}

func TestExecSuccess(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, out, err := s.handleExec(ctx, &mcpsdk.CallToolRequest{}, ExecInput{Command: "connection list"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("expected success, got error result")
	}
	if out.Failed {
		t.Fatal("expected not failed")
	}
	if out.Observation["status"] != "success" {
		t.Fatalf("unexpected observation: %v", out.Observation)
	}
}

func TestExecParseError(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, out, err := s.handleExec(ctx, &mcpsdk.CallToolRequest{}, ExecInput{Command: "no such command"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected error result for unparseable command")
	}
	if !out.Failed {
		t.Fatal("expected failed flag")
	}
}

func TestDryRunInvalidCommand(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleDryRun(ctx, &mcpsdk.CallToolRequest{}, DryRunInput{Command: "connect user:missing --as m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IndicatesFailure {
		t.Fatal("expected predicted failure for unknown connection")
	}
	if !strings.Contains(out.Message, "user:missing") {
		t.Errorf("message should name the connection: %q", out.Message)
	}
}

func TestConnectionsListsSavedAndActive(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	if err := s.conns.Save(connstore.Connection{ID: "user:github", Name: "github"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.sess.Connections["gh"] = "user:github"

	_, out, err := s.handleConnections(ctx, &mcpsdk.CallToolRequest{}, ConnectionsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Connections) != 1 || out.Connections[0] != "user:github" {
		t.Fatalf("connections = %v", out.Connections)
	}
	if out.Active["gh"] != "user:github" {
		t.Errorf("active = %v", out.Active)
	}
}
