package gate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cx-foundry/cxsh/internal/schema"
)

// DecisionKind is the user's verdict on a proposed command.
type DecisionKind int

const (
	// Accept executes the primary proposal as-is.
	Accept DecisionKind = iota
	// Edit executes user-supplied text instead of the proposal.
	Edit
	// Reject cancels the entire session; nothing is executed.
	Reject
)

// Decision is the outcome of the confirmation gate.
type Decision struct {
	Kind DecisionKind
	Text string // the replacement command when Kind == Edit
}

// Confirmer is Gate 4: it presents the primary proposal with its
// alternatives and awaits the user's verdict.
type Confirmer interface {
	Confirm(primary schema.CommandOption, alternatives []schema.CommandOption) (Decision, error)
}

// SelectPrimary picks the highest-confidence option as the primary
// proposal, breaking ties by first-seen order, and returns the rest as
// alternatives in their original order.
func SelectPrimary(options []schema.CommandOption) (schema.CommandOption, []schema.CommandOption) {
	best := 0
	for i := 1; i < len(options); i++ {
		if options[i].Confidence > options[best].Confidence {
			best = i
		}
	}
	primary := options[best]
	alternatives := make([]schema.CommandOption, 0, len(options)-1)
	for i, opt := range options {
		if i != best {
			alternatives = append(alternatives, opt)
		}
	}
	return primary, alternatives
}

// TerminalConfirmer prompts on a terminal: y/yes accepts, e/edit asks
// for a replacement line, n/no rejects. An empty response accepts.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm renders the proposal and reads the verdict.
func (c *TerminalConfirmer) Confirm(primary schema.CommandOption, alternatives []schema.CommandOption) (Decision, error) {
	fmt.Fprintf(c.Out, "\nReasoning: %s\n", primary.Reasoning)
	fmt.Fprintf(c.Out, "Next Command:\n> %s\n", primary.Command)
	if primary.Preview != nil {
		icon := "✓"
		if primary.Preview.IndicatesFailure {
			icon = "✗"
		}
		fmt.Fprintf(c.Out, "Dry Run Preview:\n   %s %s\n", icon, primary.Preview.Message)
	}
	for i, alt := range alternatives {
		fmt.Fprintf(c.Out, "Alternative %d (confidence %.2f): %s\n", i+1, alt.Confidence, alt.Command)
	}
	fmt.Fprint(c.Out, "Execute? [Y]es/[n]o/[e]dit: ")

	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return Decision{}, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "n", "no":
		return Decision{Kind: Reject}, nil
	case "e", "edit":
		fmt.Fprint(c.Out, "> ")
		edited, err := reader.ReadString('\n')
		if err != nil && edited == "" {
			return Decision{}, fmt.Errorf("read edited command: %w", err)
		}
		edited = strings.TrimSpace(edited)
		if edited == "" {
			return Decision{Kind: Accept}, nil
		}
		return Decision{Kind: Edit, Text: edited}, nil
	default:
		return Decision{Kind: Accept}, nil
	}
}

// AutoConfirmer accepts every proposal. Used by non-interactive runs.
type AutoConfirmer struct{}

// Confirm always accepts.
func (AutoConfirmer) Confirm(primary schema.CommandOption, alternatives []schema.CommandOption) (Decision, error) {
	return Decision{Kind: Accept}, nil
}
