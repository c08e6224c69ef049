// Package config provides configuration for the triage service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the service configuration. Every field maps to an
// environment variable of the same name, uppercased.
type Config struct {
	// Server settings
	HTTPPort int `koanf:"http_port"`

	// Generation endpoint settings
	OllamaURL    string `koanf:"ollama_url"`
	OllamaModel  string `koanf:"ollama_model"`
	AIEnabled    bool   `koanf:"ai_enabled"`
	LLMTimeoutMs int    `koanf:"llm_timeout_ms"`

	// Tracker settings
	JiraBaseURL    string `koanf:"jira_base_url"`
	JiraEmail      string `koanf:"jira_email"`
	JiraAPIToken   string `koanf:"jira_api_token"`
	JiraProjectKey string `koanf:"jira_project_key"`

	// TriagePolicy overrides the built-in rego policy when non-empty.
	TriagePolicy string `koanf:"triage_policy"`

	// Logging
	LogLevel string `koanf:"log_level"`
}

// Load builds the configuration from defaults overridden by environment
// variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:     8080,
		OllamaURL:    "http://localhost:11434",
		OllamaModel:  "llama3.1",
		AIEnabled:    true,
		LLMTimeoutMs: 60000,
		LogLevel:     "info",
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LLMTimeout returns the generation call timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutMs) * time.Millisecond
}
