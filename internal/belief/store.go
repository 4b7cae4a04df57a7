// Package belief owns the single live AgentBeliefs instance for a session.
// All mutation goes through Apply's serialize → patch → re-validate → swap
// protocol; no caller may modify belief fields in place.
package belief

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/cx-foundry/cxsh/internal/schema"
)

// ErrSessionActive is returned by Initialize when a belief state already
// exists for the session.
var ErrSessionActive = errors.New("an agentic session is already active")

// ErrNoSession is returned by Apply when no belief state exists.
var ErrNoSession = errors.New("no active agentic session")

// Store is a value holder for one session's belief state. It is owned by
// the session object and is never shared across sessions.
type Store struct {
	beliefs *schema.AgentBeliefs
}

// NewStore creates an empty store with no active session.
func NewStore() *Store {
	return &Store{}
}

// Initialize creates the belief state for a new agentic session.
func (s *Store) Initialize(goal string) (*schema.AgentBeliefs, error) {
	if s.beliefs != nil {
		return nil, ErrSessionActive
	}
	s.beliefs = schema.NewBeliefs(goal)
	return s.beliefs, nil
}

// Get returns the current belief state, or nil when no session is active.
// The returned value is read-only; mutations must go through Apply.
func (s *Store) Get() *schema.AgentBeliefs {
	return s.beliefs
}

// Active reports whether a belief state exists.
func (s *Store) Active() bool {
	return s.beliefs != nil
}

// Apply applies a batch of patch operations atomically. If any operation
// is invalid against the current document, the whole call fails and the
// stored beliefs are left unchanged. The patched document is re-validated
// against the AgentBeliefs schema before it replaces the stored state.
func (s *Store) Apply(ops ...schema.PatchOp) error {
	if s.beliefs == nil {
		return ErrNoSession
	}

	doc, err := json.Marshal(s.beliefs)
	if err != nil {
		return fmt.Errorf("serialize beliefs: %w", err)
	}

	raw, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}

	patched, err := patch.Apply(doc)
	if err != nil {
		return fmt.Errorf("apply patch: %w", err)
	}

	var next schema.AgentBeliefs
	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return fmt.Errorf("patched document no longer matches belief schema: %w", err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("patched document failed validation: %w", err)
	}
	next.Normalize()

	s.beliefs = &next
	return nil
}

// End removes the belief state. No-op when no session is active.
func (s *Store) End() {
	s.beliefs = nil
}
