// Package roles defines the Planner, ToolSpecialist, and Analyst
// collaborators and their LLM-backed implementations.
package roles

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RoleConfig selects the provider connection and model for one role.
type RoleConfig struct {
	ConnectionAlias string  `yaml:"connection_alias"`
	Model           string  `yaml:"model"`
	MaxTokens       int     `yaml:"max_tokens,omitempty"`
	Temperature     float64 `yaml:"temperature,omitempty"`
}

// Profile is a complete agent team configuration.
type Profile struct {
	Description    string     `yaml:"description"`
	Planner        RoleConfig `yaml:"planner"`
	ToolSpecialist RoleConfig `yaml:"tool_specialist"`
	Analyst        RoleConfig `yaml:"analyst"`
}

// Provider describes how to reach one LLM endpoint.
type Provider struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// Config is the root of agents.config.yaml.
type Config struct {
	DefaultProfile string              `yaml:"default_profile"`
	Profiles       map[string]Profile  `yaml:"profiles"`
	Providers      map[string]Provider `yaml:"providers"`
}

// DefaultConfigPath returns the default agents config location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cxsh-agents.config.yaml")
	}
	return filepath.Join(home, ".cxsh", "agents.config.yaml")
}

// LoadConfig reads and validates the agents config file. An empty path
// falls back to the default location.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse agents config: %w", err)
	}
	if cfg.DefaultProfile == "" {
		return nil, fmt.Errorf("agents config: default_profile is required")
	}
	if _, ok := cfg.Profiles[cfg.DefaultProfile]; !ok {
		return nil, fmt.Errorf("agents config: default profile %q is not defined", cfg.DefaultProfile)
	}
	return &cfg, nil
}

// ActiveProfile returns the default profile.
func (c *Config) ActiveProfile() Profile {
	return c.Profiles[c.DefaultProfile]
}

// resolveProvider returns the provider endpoint and API key for a role.
// A missing provider or an unset key is a configuration error: the agent
// must fail fast before planning begins.
func (c *Config) resolveProvider(role string, rc RoleConfig) (Provider, string, error) {
	if rc.ConnectionAlias == "" {
		return Provider{}, "", fmt.Errorf("role %q has no connection_alias configured", role)
	}
	p, ok := c.Providers[rc.ConnectionAlias]
	if !ok {
		return Provider{}, "", fmt.Errorf("role %q references unknown provider %q", role, rc.ConnectionAlias)
	}
	if p.BaseURL == "" {
		return Provider{}, "", fmt.Errorf("provider %q has no base_url", rc.ConnectionAlias)
	}
	key := ""
	if p.APIKeyEnv != "" {
		key = os.Getenv(p.APIKeyEnv)
		if key == "" {
			return Provider{}, "", fmt.Errorf("provider %q: environment variable %s is not set", rc.ConnectionAlias, p.APIKeyEnv)
		}
	}
	return p, key, nil
}
