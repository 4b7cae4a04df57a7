package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cx-foundry/cxsh/internal/grammar"
)

func init() {
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(dryRunCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec <command...>",
	Short: "Execute a single cxsh command",
	Long:  "Parses and executes one cxsh command against a fresh session and prints the observation as JSON. Exit code 1 indicates the command failed.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	parsed, err := grammar.Parse(text)
	if err != nil {
		return fmt.Errorf("parse %q: %w", text, err)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	obs := ws.Exec.Execute(cmd.Context(), parsed)
	out, _ := json.MarshalIndent(obs, "", "  ")
	fmt.Println(string(out))
	if _, failed := obs["error"]; failed {
		os.Exit(1)
	}
	return nil
}

var dryRunCmd = &cobra.Command{
	Use:   "dry-run <command...>",
	Short: "Predict a command's outcome without executing it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDryRun,
}

func runDryRun(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	result := ws.Exec.DryRun(cmd.Context(), strings.Join(args, " "))
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}
