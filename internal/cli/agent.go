package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cx-foundry/cxsh/internal/contextengine"
	"github.com/cx-foundry/cxsh/internal/gate"
	"github.com/cx-foundry/cxsh/internal/orchestrator"
	"github.com/cx-foundry/cxsh/internal/roles"
)

var (
	agentConfig   string
	agentYes      bool
	agentMaxSteps int
)

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().StringVar(&agentConfig, "config", "", "Path to agent role config YAML (default: ~/.cxsh/agents.config.yaml)")
	agentCmd.Flags().BoolVarP(&agentYes, "yes", "y", false, "Accept every proposed command without prompting")
	agentCmd.Flags().IntVar(&agentMaxSteps, "max-steps", 0, "Override the execution iteration ceiling")
}

var agentCmd = &cobra.Command{
	Use:   "agent <goal>",
	Short: "Run a goal-driven agent session",
	Long:  "Plans the goal into steps, proposes a command per step, and asks for confirmation before executing anything. Rejecting a proposal cancels the whole session.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")

	// Role connections are checked before any session state is created.
	cfg, err := roles.LoadConfig(agentConfig)
	if err != nil {
		return fmt.Errorf("load agent config: %w", err)
	}
	team, err := roles.NewTeam(cfg)
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var confirm gate.Confirmer = &gate.TerminalConfirmer{In: os.Stdin, Out: os.Stdout}
	if agentYes {
		confirm = gate.AutoConfirmer{}
	}

	eng := contextengine.New(ws.Sess, ws.Conns, ws.Hist.Path())
	o := orchestrator.New(ws.Sess, ws.Exec, eng, team, confirm, ws.Hist, os.Stdout)
	o.MaxSteps = agentMaxSteps

	state, err := o.Run(cmd.Context(), goal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agent session aborted: %v\n", err)
	}
	fmt.Printf("\nSession ended: %s\n", state)
	if state == orchestrator.Aborted || state == orchestrator.MaxStepsReached {
		os.Exit(1)
	}
	return nil
}
