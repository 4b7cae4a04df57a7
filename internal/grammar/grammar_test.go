package grammar

import (
	"errors"
	"testing"
)

func TestParseBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs int
	}{
		{"connection list", "connection", 1},
		{"connection create --blueprint community/github@1.0.0", "connection", 3},
		{"connect user:github --as gh", "connect", 3},
		{"compile --spec-url https://example.com/openapi.json --name spotify --version 1.0.0", "compile", 6},
		{"inspect _agent_beliefs", "inspect", 1},
		{"flow run daily-report", "flow", 2},
		{"help", "help", 0},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.input, err)
			continue
		}
		b, ok := cmd.(*Builtin)
		if !ok {
			t.Errorf("Parse(%q): expected *Builtin, got %T", tt.input, cmd)
			continue
		}
		if b.Name != tt.wantName {
			t.Errorf("Parse(%q): name = %q, want %q", tt.input, b.Name, tt.wantName)
		}
		if len(b.Args) != tt.wantArgs {
			t.Errorf("Parse(%q): %d args, want %d", tt.input, len(b.Args), tt.wantArgs)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"List all my saved connections",
		"connection",
		"connection drop",
		"connection create",
		"connect user:github",
		"compile --name x",
		"inspect",
		"flow daily-report",
		`connect "unterminated --as gh`,
	}
	for _, input := range inputs {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", input)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q): expected *ParseError, got %T", input, err)
		}
	}
}

func TestParseActionCall(t *testing.T) {
	cmd, err := Parse(`gh.getUser(username="torvalds", verbose=true)`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	call, ok := cmd.(*ActionCall)
	if !ok {
		t.Fatalf("expected *ActionCall, got %T", cmd)
	}
	if call.Alias != "gh" || call.Action != "getUser" {
		t.Errorf("unexpected target: %s.%s", call.Alias, call.Action)
	}
	if call.Args["username"] != "torvalds" {
		t.Errorf("username arg = %q", call.Args["username"])
	}
	if call.Args["verbose"] != "true" {
		t.Errorf("verbose arg = %q", call.Args["verbose"])
	}
}

func TestParseActionCallNoArgs(t *testing.T) {
	cmd, err := Parse("spotify.listPlaylists()")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	call := cmd.(*ActionCall)
	if len(call.Args) != 0 {
		t.Errorf("expected no args, got %v", call.Args)
	}
}

func TestParseActionCallBadArgs(t *testing.T) {
	if _, err := Parse("gh.getUser(torvalds)"); err == nil {
		t.Fatal("expected error for non key=value argument")
	}
}

func TestConnectHelpers(t *testing.T) {
	cmd, err := Parse("connect user:github --as gh")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b := cmd.(*Builtin)
	if got := b.ConnectSource(); got != "user:github" {
		t.Errorf("ConnectSource = %q", got)
	}
	if got := b.ConnectAlias(); got != "gh" {
		t.Errorf("ConnectAlias = %q", got)
	}
}

func TestQuotedTokens(t *testing.T) {
	cmd, err := Parse(`inspect "_agent_beliefs"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b := cmd.(*Builtin)
	if b.Args[0] != "_agent_beliefs" {
		t.Errorf("quoted token = %q", b.Args[0])
	}
}
