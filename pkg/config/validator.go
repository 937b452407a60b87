package config

import (
	"fmt"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
)

// Validator runs the ordered, fail-fast checks the teacher's config package
// applies before a Config is handed to the rest of the pipeline.
type Validator struct {
	cfg *Config
}

// NewValidator wraps cfg for validation.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every check in a fixed order and returns on the first
// failure, matching the teacher's "validate early, validate once" style.
func (v *Validator) ValidateAll() error {
	checks := []func() error{
		v.validateAgentModels,
		v.validateThresholds,
		v.validateRetry,
		v.validateServer,
		v.validateDatabase,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateAgentModels() error {
	for _, name := range models.AllAgents() {
		m, ok := v.cfg.AgentModels[string(name)]
		if !ok {
			return fmt.Errorf("agent_models: missing configuration for agent %q", name)
		}
		if m.Model == "" {
			return fmt.Errorf("agent_models.%s: model must not be empty", name)
		}
		if m.Temperature < 0 || m.Temperature > 2 {
			return fmt.Errorf("agent_models.%s: temperature %.2f out of range [0,2]", name, m.Temperature)
		}
	}
	return nil
}

func (v *Validator) validateThresholds() error {
	t := v.cfg.Thresholds
	if t.MaxRebuildAttempts < 0 {
		return fmt.Errorf("thresholds.max_rebuild_attempts must be >= 0, got %d", t.MaxRebuildAttempts)
	}
	if t.ReviewThreshold < 0 || t.ReviewThreshold > 100 {
		return fmt.Errorf("thresholds.review_threshold must be in [0,100], got %.1f", t.ReviewThreshold)
	}
	if t.ScoreThreshold < 0 || t.ScoreThreshold > 10 {
		return fmt.Errorf("thresholds.score_threshold must be in [0,10], got %.1f", t.ScoreThreshold)
	}
	if t.DevParallelism < 1 {
		return fmt.Errorf("thresholds.dev_parallelism must be >= 1, got %d", t.DevParallelism)
	}
	if t.HITLTimeoutSeconds < 1 {
		return fmt.Errorf("thresholds.hitl_timeout_seconds must be >= 1, got %d", t.HITLTimeoutSeconds)
	}
	if t.ReviewBranchName == "" {
		return fmt.Errorf("thresholds.review_branch_name must not be empty")
	}
	return nil
}

func (v *Validator) validateRetry() error {
	r := v.cfg.Retry
	if r.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0, got %d", r.MaxRetries)
	}
	if r.InitialIntervalMS < 1 {
		return fmt.Errorf("retry.initial_interval_ms must be >= 1, got %d", r.InitialIntervalMS)
	}
	return nil
}

func (v *Validator) validateServer() error {
	s := v.cfg.Server
	if s.HTTPPort == "" {
		return fmt.Errorf("server.http_port must not be empty")
	}
	switch s.GinMode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("server.gin_mode must be one of release|debug|test, got %q", s.GinMode)
	}
	if s.TrackerProject == "" {
		return fmt.Errorf("server.tracker_project must not be empty")
	}
	return nil
}

func (v *Validator) validateDatabase() error {
	d := v.cfg.Database
	if d.Host == "" {
		return fmt.Errorf("database.host must not be empty")
	}
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("database.port must be in (0,65535], got %d", d.Port)
	}
	if d.Database == "" {
		return fmt.Errorf("database.database name must not be empty")
	}
	if d.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be >= 1, got %d", d.MaxOpenConns)
	}
	if d.MaxIdleConns < 0 || d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be in [0,max_open_conns], got %d", d.MaxIdleConns)
	}
	return nil
}
