package cli

import (
	"fmt"

	"github.com/cx-foundry/cxsh/internal/connstore"
	"github.com/cx-foundry/cxsh/internal/executor"
	"github.com/cx-foundry/cxsh/internal/history"
	"github.com/cx-foundry/cxsh/internal/session"
)

var (
	connectionsDir string
	historyPath    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&connectionsDir, "connections-dir", "", "Directory holding connection definitions (default: ~/.cxsh/connections)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "Path to the history log (default: ~/.cxsh/history.jsonl)")
}

// workspace bundles the stores and session one command invocation works
// against.
type workspace struct {
	Sess  *session.State
	Conns *connstore.Store
	Hist  *history.Log
	Exec  *executor.Executor
}

func openWorkspace() (*workspace, error) {
	dir := connectionsDir
	if dir == "" {
		dir = connstore.DefaultDir()
	}
	conns, err := connstore.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open connection store: %w", err)
	}

	path := historyPath
	if path == "" {
		path = history.DefaultPath()
	}
	hist, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}

	sess := session.New()
	return &workspace{
		Sess:  sess,
		Conns: conns,
		Hist:  hist,
		Exec:  executor.New(sess, conns, hist),
	}, nil
}

func (w *workspace) Close() {
	if w.Hist != nil {
		w.Hist.Close()
	}
}
