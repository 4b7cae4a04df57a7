// Package grammar parses the shell's command line into executable values.
// Two command shapes exist: builtins (`connection list`, `connect user:gh
// --as gh`) and dot-notation action calls (`gh.getUser(username="torvalds")`).
package grammar

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseError is returned for any input that does not match the grammar.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Msg)
}

// Command is a parsed, executable unit.
type Command interface {
	// Text returns the original command line.
	Text() string
}

// Builtin is a core shell command with positional arguments and flags.
type Builtin struct {
	Name string
	Args []string
	Raw  string
}

func (b *Builtin) Text() string { return b.Raw }

// ConnectAlias returns the --as alias of a connect builtin, or "".
func (b *Builtin) ConnectAlias() string {
	if b.Name != "connect" {
		return ""
	}
	for i, arg := range b.Args {
		if arg == "--as" && i+1 < len(b.Args) {
			return b.Args[i+1]
		}
	}
	return ""
}

// ConnectSource returns the connection source of a connect builtin, or "".
func (b *Builtin) ConnectSource() string {
	if b.Name != "connect" || len(b.Args) == 0 {
		return ""
	}
	return b.Args[0]
}

// Flag returns the value following `--name`, or "".
func (b *Builtin) Flag(name string) string {
	want := "--" + name
	for i, arg := range b.Args {
		if arg == want && i+1 < len(b.Args) {
			return b.Args[i+1]
		}
	}
	return ""
}

// ActionCall invokes a named action on an active connection alias.
type ActionCall struct {
	Alias  string
	Action string
	Args   map[string]string
	Raw    string
}

func (a *ActionCall) Text() string { return a.Raw }

// builtinNames is the closed set of builtin command heads.
var builtinNames = map[string]bool{
	"connection": true,
	"connect":    true,
	"compile":    true,
	"inspect":    true,
	"flow":       true,
	"help":       true,
	"exit":       true,
}

var actionCallRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\.([A-Za-z_][A-Za-z0-9_-]*)\((.*)\)$`)

// Parse turns a command line into a Command, or a *ParseError.
func Parse(input string) (Command, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, &ParseError{Input: input, Msg: "empty command"}
	}

	if m := actionCallRe.FindStringSubmatch(text); m != nil {
		args, err := parseCallArgs(m[3])
		if err != nil {
			return nil, &ParseError{Input: input, Msg: err.Error()}
		}
		return &ActionCall{Alias: m[1], Action: m[2], Args: args, Raw: text}, nil
	}

	tokens, err := tokenize(text)
	if err != nil {
		return nil, &ParseError{Input: input, Msg: err.Error()}
	}
	head := tokens[0]
	if !builtinNames[head] {
		return nil, &ParseError{Input: input, Msg: fmt.Sprintf("unknown command %q", head)}
	}

	b := &Builtin{Name: head, Args: tokens[1:], Raw: text}
	if err := validateBuiltin(b); err != nil {
		return nil, &ParseError{Input: input, Msg: err.Error()}
	}
	return b, nil
}

// validateBuiltin enforces per-command argument shapes.
func validateBuiltin(b *Builtin) error {
	switch b.Name {
	case "connection":
		if len(b.Args) == 0 {
			return fmt.Errorf("connection requires a subcommand (list, create)")
		}
		switch b.Args[0] {
		case "list":
		case "create":
			if b.Flag("blueprint") == "" {
				return fmt.Errorf("connection create requires --blueprint")
			}
		default:
			return fmt.Errorf("unknown connection subcommand %q", b.Args[0])
		}
	case "connect":
		if b.ConnectSource() == "" || b.ConnectAlias() == "" {
			return fmt.Errorf("connect requires a source and --as <alias>")
		}
	case "compile":
		if b.Flag("spec-url") == "" || b.Flag("name") == "" {
			return fmt.Errorf("compile requires --spec-url and --name")
		}
	case "inspect":
		if len(b.Args) != 1 {
			return fmt.Errorf("inspect requires exactly one variable name")
		}
	case "flow":
		if len(b.Args) < 2 || b.Args[0] != "run" {
			return fmt.Errorf("flow requires `run <name>`")
		}
	}
	return nil
}

// tokenize splits on whitespace, honoring double-quoted segments.
func tokenize(text string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	for _, r := range text {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t'):
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return tokens, nil
}

// parseCallArgs parses `key=value, key="quoted value"` argument lists.
func parseCallArgs(raw string) (map[string]string, error) {
	args := map[string]string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return args, nil
	}
	for _, part := range splitArgs(raw) {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("argument %q is not key=value", part)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("argument %q has an empty key", part)
		}
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"`)
		args[key] = value
	}
	return args, nil
}

// splitArgs splits on commas outside double quotes.
func splitArgs(raw string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ',' && !inQuote:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		parts = append(parts, s)
	}
	return parts
}
