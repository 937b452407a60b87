package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Initialize loads, validates and returns ready-to-use configuration. It is
// the primary entry point, mirroring the teacher's config.Initialize(ctx,
// configDir): load YAML -> expand env -> merge onto built-in defaults ->
// validate.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized", "agents", stats.Agents,
		"review_threshold", stats.ReviewThreshold, "score_threshold", stats.ScoreThreshold)
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	cfg := DefaultConfig(configDir)

	path := filepath.Join(configDir, "pipeline.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No user YAML present — defaults alone are a valid configuration.
			finalizeDurations(cfg)
			return cfg, nil
		}
		return nil, err
	}

	data = ExpandEnv(data)

	var user Config
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge user configuration: %w", err)
	}

	finalizeDurations(cfg)
	return cfg, nil
}

// finalizeDurations derives time.Duration fields from their YAML-friendly
// integer counterparts, since mergo/yaml operate on the integer form.
func finalizeDurations(cfg *Config) {
	cfg.Thresholds.HITLTimeout = time.Duration(cfg.Thresholds.HITLTimeoutSeconds) * time.Second
	cfg.Retry.InitialInterval = time.Duration(cfg.Retry.InitialIntervalMS) * time.Millisecond
	cfg.Database.ConnMaxLifetime = time.Hour
}
