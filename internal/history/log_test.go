package history

import (
	"path/filepath"
	"testing"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndReadBack(t *testing.T) {
	l := newTestLog(t)
	l.Command("s1", "connection list", "success")
	l.Command("s1", "connect user:gh --as gh", "success")
	l.Command("s1", "flow run missing", "error")
	l.AgentTurn("s1", "Listed connections.", "COMPLETED")

	got := RecentCommands(l.Path(), "success", 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 successful commands, got %d: %v", len(got), got)
	}
	if got[0] != "connect user:gh --as gh" {
		t.Errorf("expected newest first, got %q", got[0])
	}
	if got[1] != "connection list" {
		t.Errorf("second entry = %q", got[1])
	}
}

func TestRecentCommandsLimit(t *testing.T) {
	l := newTestLog(t)
	for _, cmd := range []string{"a", "b", "c", "d"} {
		l.Command("s1", cmd, "success")
	}
	got := RecentCommands(l.Path(), "success", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0] != "d" || got[1] != "c" {
		t.Errorf("expected [d c], got %v", got)
	}
}

func TestRecentCommandsMissingFile(t *testing.T) {
	got := RecentCommands(filepath.Join(t.TempDir(), "absent.jsonl"), "success", 3)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestUserCorrectionRecorded(t *testing.T) {
	l := newTestLog(t)
	l.UserCorrection("s1", "List connections", "connection ls", "connection list")

	// Corrections are not commands; they must not leak into RecentCommands.
	if got := RecentCommands(l.Path(), "success", 5); len(got) != 0 {
		t.Errorf("corrections leaked into command history: %v", got)
	}
}
