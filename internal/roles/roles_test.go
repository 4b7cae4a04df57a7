package roles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/neurorouter"

	"github.com/cx-foundry/cxsh/internal/schema"
)

// chatServer returns an httptest server that always replies with content
// as the assistant message.
func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(url string) *Client {
	return NewClient(Provider{BaseURL: url}, "test-key", RoleConfig{Model: "test-model"})
}

func TestCreateJSONStripsFences(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```json\n{\"value\": 42}\n```")
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	if err := testClient(srv.URL).CreateJSON(context.Background(), "sys", "user", &out); err != nil {
		t.Fatalf("CreateJSON failed: %v", err)
	}
	if out.Value != 42 {
		t.Errorf("value = %d, want 42", out.Value)
	}
}

func TestCreateJSONRateLimited(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	var out map[string]any
	err := testClient(srv.URL).CreateJSON(context.Background(), "sys", "user", &out)
	if !errors.Is(err, neurorouter.ErrRateLimited) {
		t.Fatalf("expected rate-limit sentinel, got %v", err)
	}
}

func TestPlannerFailureBecomesFailedStep(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "")
	defer srv.Close()

	p := &LLMPlanner{Client: testClient(srv.URL)}
	plan := p.Plan(context.Background(), "goal", "")
	if len(plan) != 1 {
		t.Fatalf("expected a single failure step, got %d", len(plan))
	}
	if plan[0].Status != schema.StepFailed {
		t.Errorf("status = %q, want %q", plan[0].Status, schema.StepFailed)
	}
	if !strings.Contains(plan[0].Description, "failed to generate") {
		t.Errorf("description should explain the failure: %q", plan[0].Description)
	}
}

func TestPlannerParsesSteps(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `[{"step":"List connections."},{"step":"Report the result."}]`)
	defer srv.Close()

	p := &LLMPlanner{Client: testClient(srv.URL)}
	plan := p.Plan(context.Background(), "goal", "")
	if len(plan) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan))
	}
	for i, step := range plan {
		if step.Status != schema.StepPending {
			t.Errorf("step %d status = %q, want pending", i, step.Status)
		}
	}
}

func TestSpecialistFiltersInvalidOptions(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"command_options":[
		{"cx_command":"connection list","reasoning":"ok","confidence":0.9},
		{"cx_command":"","reasoning":"empty","confidence":0.5},
		{"cx_command":"help","reasoning":"out of range","confidence":1.5}
	]}`)
	defer srv.Close()

	s := &LLMToolSpecialist{Client: testClient(srv.URL)}
	beliefs := schema.NewBeliefs("goal")
	beliefs.Plan = []schema.PlanStep{{Description: "List connections.", Status: schema.StepInProgress}}

	options := s.ProposeCommands(context.Background(), beliefs, 0, nil)
	if len(options) != 1 {
		t.Fatalf("expected 1 valid option, got %d", len(options))
	}
	if options[0].Command != "connection list" {
		t.Errorf("command = %q", options[0].Command)
	}
}

func TestMissionBriefingMarksActiveStep(t *testing.T) {
	beliefs := schema.NewBeliefs("ship it")
	beliefs.Plan = []schema.PlanStep{
		{Description: "First.", Status: schema.StepCompleted},
		{Description: "Second.", Status: schema.StepInProgress},
	}

	briefing := missionBriefing(beliefs, 1)
	if !strings.Contains(briefing, "==> ACTIVE STEP: [in_progress] Second.") {
		t.Errorf("active step not marked:\n%s", briefing)
	}
	if strings.Contains(briefing, "==> ACTIVE STEP: [completed]") {
		t.Error("completed step wrongly marked active")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
default_profile: fast
profiles:
  fast:
    description: test profile
    planner: {connection_alias: openai, model: gpt-test}
    tool_specialist: {connection_alias: openai, model: gpt-test}
    analyst: {connection_alias: openai, model: gpt-test}
providers:
  openai:
    base_url: http://localhost:9/v1/chat/completions
`

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ActiveProfile().Planner.Model != "gpt-test" {
		t.Errorf("unexpected profile: %+v", cfg.ActiveProfile())
	}
}

func TestLoadConfigMissingDefaultProfile(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "profiles: {}\nproviders: {}\n")); err == nil {
		t.Fatal("expected error for missing default_profile")
	}
}

func TestNewTeamUnknownProviderFailsFast(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, strings.Replace(validConfig, "connection_alias: openai, model: gpt-test}\n    tool_specialist", "connection_alias: missing, model: gpt-test}\n    tool_specialist", 1)))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if _, err := NewTeam(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
