// Package history is the append-only JSONL log of shell and agent events.
// Logging is fire-and-forget: failures never interrupt the session.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event kinds recorded in the log.
const (
	KindCommand        = "command"
	KindAgentTurn      = "agent_turn"
	KindUserCorrection = "user_correction"
)

// Entry is one line in the history log.
type Entry struct {
	Timestamp string `json:"ts"`
	SessionID string `json:"session_id,omitempty"`
	Kind      string `json:"kind"`
	Status    string `json:"status,omitempty"`
	Content   string `json:"content"`
	Detail    string `json:"detail,omitempty"`
}

// Log appends entries to a JSONL file.
type Log struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// DefaultPath returns the default history log location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cxsh-history.jsonl")
	}
	return filepath.Join(home, ".cxsh", "history.jsonl")
}

// Open opens (or creates) the history log for appending.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("history: open file: %w", err)
	}
	return &Log{path: path, file: file}, nil
}

// Record appends one entry. The timestamp is filled if absent.
func (l *Log) Record(e Entry) error {
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("history: encode entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("history: write entry: %w", err)
	}
	return nil
}

// Command records an executed command with its outcome.
func (l *Log) Command(sessionID, command, status string) {
	_ = l.Record(Entry{SessionID: sessionID, Kind: KindCommand, Status: status, Content: command})
}

// AgentTurn records the analyst's summary of one agent turn.
func (l *Log) AgentTurn(sessionID, summary, status string) {
	_ = l.Record(Entry{SessionID: sessionID, Kind: KindAgentTurn, Status: status, Content: summary})
}

// UserCorrection records a user edit of a proposed command.
func (l *Log) UserCorrection(sessionID, stepGoal, proposed, corrected string) {
	_ = l.Record(Entry{
		SessionID: sessionID,
		Kind:      KindUserCorrection,
		Content:   corrected,
		Detail:    fmt.Sprintf("step=%q proposed=%q", stepGoal, proposed),
	})
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// RecentCommands reads the log at path and returns up to n most recent
// command contents with the given status, newest first. A missing log
// file yields an empty result.
func RecentCommands(path, status string, n int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var matched []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.Kind == KindCommand && e.Status == status {
			matched = append(matched, e.Content)
		}
	}

	if len(matched) > n {
		matched = matched[len(matched)-n:]
	}
	// Newest first.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}
