package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cx-foundry/cxsh/internal/contextengine"
	"github.com/cx-foundry/cxsh/internal/gate"
	"github.com/cx-foundry/cxsh/internal/grammar"
	"github.com/cx-foundry/cxsh/internal/orchestrator"
	"github.com/cx-foundry/cxsh/internal/roles"
)

var shellConfig string

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVar(&shellConfig, "config", "", "Path to agent role config YAML (default: ~/.cxsh/agents.config.yaml)")
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long:  "Reads commands line by line against one persistent session. A line starting with \"agent \" runs a goal-driven agent session sharing the same connections and beliefs.",
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Keep the connection index fresh while the shell is open.
	go func() { _ = ws.Conns.Watch(ctx) }()

	fmt.Printf("cxsh %s — type 'help' for commands, 'exit' to quit.\n", version)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("cxsh> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" {
			return nil
		}
		if goal, ok := strings.CutPrefix(line, "agent "); ok {
			shellAgent(ctx, ws, strings.TrimSpace(goal))
			continue
		}

		parsed, err := grammar.Parse(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		obs := ws.Exec.Execute(ctx, parsed)
		printObservation(os.Stdout, obs)
	}
}

// shellAgent runs an agent session inside the shell, sharing its session
// state so alias bindings and preserved beliefs stay inspectable.
func shellAgent(ctx context.Context, ws *workspace, goal string) {
	if goal == "" {
		fmt.Fprintln(os.Stderr, "usage: agent <goal>")
		return
	}

	cfg, err := roles.LoadConfig(shellConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load agent config: %v\n", err)
		return
	}
	team, err := roles.NewTeam(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}

	eng := contextengine.New(ws.Sess, ws.Conns, ws.Hist.Path())
	confirm := &gate.TerminalConfirmer{In: os.Stdin, Out: os.Stdout}
	o := orchestrator.New(ws.Sess, ws.Exec, eng, team, confirm, ws.Hist, os.Stdout)

	state, err := o.Run(ctx, goal)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "agent session aborted: %v\n", err)
	}
	fmt.Printf("\nSession ended: %s\n", state)
}

func printObservation(w io.Writer, obs map[string]any) {
	out, err := json.MarshalIndent(obs, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%v\n", obs)
		return
	}
	fmt.Fprintln(w, string(out))
}
