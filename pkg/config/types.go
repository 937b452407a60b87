// Package config loads, merges, validates and exposes the pipeline's
// configuration: per-agent model selection, rebuild/review/HITL
// thresholds, the developer's fan-out cap, and the external collaborator
// connection settings, following the teacher's "YAML + env, merged with
// built-ins, validated fail-fast" idiom.
package config

import "time"

// AgentModelConfig is the per-agent model identity and credential
// resolution named in spec.md §4.2 ("Per-agent model identity and
// credentials are resolved from configuration").
type AgentModelConfig struct {
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
}

// Thresholds holds the settings table from spec.md §6.
type Thresholds struct {
	MaxRebuildAttempts int           `yaml:"max_rebuild_attempts"`
	ReviewThreshold    float64       `yaml:"review_threshold"`
	ScoreThreshold     float64       `yaml:"score_threshold"`
	HITLTimeout        time.Duration `yaml:"-"`
	HITLTimeoutSeconds int           `yaml:"hitl_timeout_seconds"`
	DevParallelism     int           `yaml:"dev_parallelism"`
	ReviewBranchName   string        `yaml:"review_branch_name"`
}

// RetryConfig governs the LLM adapter's retry/backoff policy (spec.md §4.2).
type RetryConfig struct {
	MaxRetries        int           `yaml:"max_retries"`
	InitialInterval   time.Duration `yaml:"-"`
	InitialIntervalMS int           `yaml:"initial_interval_ms"`
}

// HTTPEndpoint is a generic base-URL + bearer-token setting shared by the
// tracker/lint/quality HTTP adapters.
type HTTPEndpoint struct {
	BaseURL     string `yaml:"base_url"`
	TokenEnv    string `yaml:"token_env,omitempty"`
	TimeoutSecs int    `yaml:"timeout_seconds,omitempty"`
}

// GitHubConfig configures the source-repo adapter.
type GitHubConfig struct {
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	TokenEnv string `yaml:"token_env,omitempty"`
}

// DatabaseConfig configures the PostgreSQL-backed metrics store.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password,omitempty"`
	PasswordEnv     string        `yaml:"password_env,omitempty"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"-"`
}

// ServerConfig configures the control-surface HTTP server.
type ServerConfig struct {
	HTTPPort       string   `yaml:"http_port"`
	GinMode        string   `yaml:"gin_mode"`
	AllowedAPIKeys []string `yaml:"allowed_api_keys,omitempty"`
	TrackerProject string   `yaml:"tracker_project"`
}

// Config is the fully loaded, merged and validated configuration.
type Config struct {
	AgentModels map[string]AgentModelConfig `yaml:"agent_models"`
	Thresholds  Thresholds                  `yaml:"thresholds"`
	Retry       RetryConfig                 `yaml:"retry"`
	Tracker     HTTPEndpoint                `yaml:"tracker"`
	Lint        HTTPEndpoint                `yaml:"lint"`
	Quality     HTTPEndpoint                `yaml:"quality"`
	GitHub      GitHubConfig                `yaml:"github"`
	Database    DatabaseConfig              `yaml:"database"`
	Server      ServerConfig                `yaml:"server"`

	configDir string
}

// Stats summarizes loaded configuration for the /api/config health surface.
type Stats struct {
	Agents             int
	ReviewThreshold    float64
	ScoreThreshold     float64
	MaxRebuildAttempts int
	DevParallelism     int
}

// Stats returns a snapshot for status/health endpoints.
func (c *Config) Stats() Stats {
	return Stats{
		Agents:             len(c.AgentModels),
		ReviewThreshold:    c.Thresholds.ReviewThreshold,
		ScoreThreshold:     c.Thresholds.ScoreThreshold,
		MaxRebuildAttempts: c.Thresholds.MaxRebuildAttempts,
		DevParallelism:     c.Thresholds.DevParallelism,
	}
}
