// Package session holds the state of one interactive shell session.
package session

import (
	"sort"

	"github.com/google/uuid"

	"github.com/cx-foundry/cxsh/internal/belief"
)

// ReservedAliasPrefix marks aliases the shell reserves for its own LLM
// connections; they are excluded from tactical tool context.
const ReservedAliasPrefix = "cx_"

// State is the mutable state of a single shell session: active connection
// aliases, session variables, and the belief store for agent mode.
// The belief store is scoped here, never process-wide.
type State struct {
	ID          string
	Connections map[string]string // alias → connection source, e.g. "gh" → "user:github"
	Variables   map[string]any
	Beliefs     *belief.Store
}

// New creates an empty session with a fresh ID.
func New() *State {
	return &State{
		ID:          "sess-" + uuid.NewString(),
		Connections: make(map[string]string),
		Variables:   make(map[string]any),
		Beliefs:     belief.NewStore(),
	}
}

// ActiveAliases returns the active connection aliases in sorted order.
func (s *State) ActiveAliases() []string {
	out := make([]string, 0, len(s.Connections))
	for alias := range s.Connections {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// AliasActive reports whether an alias is bound in this session.
func (s *State) AliasActive(alias string) bool {
	_, ok := s.Connections[alias]
	return ok
}
