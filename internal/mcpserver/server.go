// Package mcpserver exposes the shell's command surface over the Model
// Context Protocol, so external agents can execute, dry-run, and inspect
// connections through stdio transport.
package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cx-foundry/cxsh/internal/connstore"
	"github.com/cx-foundry/cxsh/internal/executor"
	"github.com/cx-foundry/cxsh/internal/history"
	"github.com/cx-foundry/cxsh/internal/session"
)

// Config holds MCP server configuration.
type Config struct {
	ConnectionsDir string
	HistoryPath    string
}

// Server wraps the MCP SDK server around one shell session.
type Server struct {
	mcpServer *mcpsdk.Server
	sess      *session.State
	conns     *connstore.Store
	exec      *executor.Executor
	hist      *history.Log
}

// New creates an MCP server with a fresh session over the connection
// store at cfg.ConnectionsDir.
func New(cfg Config) (*Server, error) {
	conns, err := connstore.NewStore(cfg.ConnectionsDir)
	if err != nil {
		return nil, err
	}

	var hist *history.Log
	if cfg.HistoryPath != "" {
		hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, err
		}
	}

	sess := session.New()
	s := &Server{
		sess:  sess,
		conns: conns,
		exec:  executor.New(sess, conns, hist),
		hist:  hist,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "cxsh",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the history log if configured.
func (s *Server) Close() error {
	if s.hist != nil {
		return s.hist.Close()
	}
	return nil
}

// registerTools adds all cxsh tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cxsh_exec",
		Description: "Execute a cxsh command. Failures are returned as an error observation with the reason.",
	}, s.handleExec)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cxsh_dry_run",
		Description: "Predict the outcome of a cxsh command without executing it.",
	}, s.handleDryRun)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cxsh_connections",
		Description: "List saved connections and the aliases active in this session.",
	}, s.handleConnections)
}
