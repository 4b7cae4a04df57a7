package belief

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cx-foundry/cxsh/internal/schema"
)

func newActiveStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	if _, err := s.Initialize("test goal"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

func TestInitializeTwiceFails(t *testing.T) {
	s := newActiveStore(t)
	_, err := s.Initialize("another goal")
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}

func TestInitializeAfterEnd(t *testing.T) {
	s := newActiveStore(t)
	s.End()
	if s.Active() {
		t.Fatal("expected inactive store after End")
	}
	if _, err := s.Initialize("second goal"); err != nil {
		t.Fatalf("Initialize after End failed: %v", err)
	}
}

func TestApplyWithoutSession(t *testing.T) {
	s := NewStore()
	err := s.Apply(schema.AddOp("/discovered_facts/x", "y"))
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestApplyReplacesPlan(t *testing.T) {
	s := newActiveStore(t)
	steps := []schema.PlanStep{
		{Description: "List all saved connections.", Status: schema.StepPending},
	}
	if err := s.Apply(schema.ReplaceOp("/plan", steps)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	got := s.Get()
	if len(got.Plan) != 1 || got.Plan[0].Description != "List all saved connections." {
		t.Fatalf("unexpected plan: %+v", got.Plan)
	}
	if got.Plan[0].Status != schema.StepPending {
		t.Errorf("expected pending status, got %s", got.Plan[0].Status)
	}
}

func TestApplyInvalidPatchLeavesStateUnchanged(t *testing.T) {
	s := newActiveStore(t)
	if err := s.Apply(schema.AddOp("/discovered_facts/note", "kept")); err != nil {
		t.Fatalf("setup Apply failed: %v", err)
	}
	before, _ := json.Marshal(s.Get())

	// Batch with one valid and one invalid op: nothing may be applied.
	err := s.Apply(
		schema.AddOp("/discovered_facts/other", "lost"),
		schema.ReplaceOp("/plan/7/status", "completed"),
	)
	if err == nil {
		t.Fatal("expected error for invalid patch path")
	}

	after, _ := json.Marshal(s.Get())
	if string(before) != string(after) {
		t.Errorf("beliefs changed despite failed patch:\nbefore %s\nafter  %s", before, after)
	}
}

func TestApplyRejectsSchemaViolation(t *testing.T) {
	s := newActiveStore(t)
	err := s.Apply(schema.ReplaceOp("/original_goal", ""))
	if err == nil {
		t.Fatal("expected validation error for empty goal")
	}
	if s.Get().OriginalGoal != "test goal" {
		t.Errorf("goal mutated despite failed validation: %q", s.Get().OriginalGoal)
	}
}

func TestApplyBatchIsAtomicAcrossOps(t *testing.T) {
	s := newActiveStore(t)
	steps := []schema.PlanStep{{Description: "step one", Status: schema.StepPending}}
	if err := s.Apply(schema.ReplaceOp("/plan", steps)); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	err := s.Apply(
		schema.ReplaceOp("/plan/0/status", "in_progress"),
		schema.ReplaceOp("/plan/0/status", "not_a_status"),
	)
	if err == nil {
		t.Fatal("expected error for invalid status value")
	}
	if got := s.Get().Plan[0].Status; got != schema.StepPending {
		t.Errorf("expected step still pending, got %s", got)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	s := NewStore()
	s.End()
	s.End()
	if s.Active() {
		t.Fatal("store should stay inactive")
	}
}
