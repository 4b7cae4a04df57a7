package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cx-foundry/cxsh/internal/connstore"
	"github.com/cx-foundry/cxsh/internal/history"
	"github.com/cx-foundry/cxsh/internal/mcpserver"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs cxsh as an MCP (Model Context Protocol) server over stdio.\nExposes tools: cxsh_exec, cxsh_dry_run, cxsh_connections.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	dir := connectionsDir
	if dir == "" {
		dir = connstore.DefaultDir()
	}
	path := historyPath
	if path == "" {
		path = history.DefaultPath()
	}

	srv, err := mcpserver.New(mcpserver.Config{ConnectionsDir: dir, HistoryPath: path})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "cxsh MCP server running on stdio")
	return srv.Run(ctx)
}
