package roles

import "fmt"

// Team is the closed set of agent roles for one session. Roles are
// resolved once at construction time; there is no string-keyed dispatch.
type Team struct {
	Planner    Planner
	Specialist ToolSpecialist
	Analyst    Analyst
}

// NewTeam resolves every role's provider from the config. Any missing
// provider or credential fails the whole team: role connections are
// checked before planning begins, never midway through a session.
func NewTeam(cfg *Config) (*Team, error) {
	profile := cfg.ActiveProfile()

	plannerClient, err := clientFor(cfg, "planner", profile.Planner)
	if err != nil {
		return nil, err
	}
	specialistClient, err := clientFor(cfg, "tool_specialist", profile.ToolSpecialist)
	if err != nil {
		return nil, err
	}
	analystClient, err := clientFor(cfg, "analyst", profile.Analyst)
	if err != nil {
		return nil, err
	}

	return &Team{
		Planner:    &LLMPlanner{Client: plannerClient},
		Specialist: &LLMToolSpecialist{Client: specialistClient},
		Analyst:    &LLMAnalyst{Client: analystClient},
	}, nil
}

func clientFor(cfg *Config, role string, rc RoleConfig) (*Client, error) {
	provider, apiKey, err := cfg.resolveProvider(role, rc)
	if err != nil {
		return nil, fmt.Errorf("agent team: %w", err)
	}
	return NewClient(provider, apiKey, rc), nil
}
