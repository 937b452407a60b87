package config

import "time"

// DefaultThresholds mirrors the settings table in spec.md §6.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxRebuildAttempts: 3,
		ReviewThreshold:    70,
		ScoreThreshold:     7.0,
		HITLTimeoutSeconds: 30,
		HITLTimeout:        30 * time.Second,
		DevParallelism:     4,
		ReviewBranchName:   "pipeline/automation",
	}
}

// DefaultRetry mirrors spec.md §4.2 ("Retries up to N times, default 3").
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialInterval:   500 * time.Millisecond,
		InitialIntervalMS: 500,
	}
}

// DefaultAgentModels provides a usable model per agent out of the box.
func DefaultAgentModels() map[string]AgentModelConfig {
	return map[string]AgentModelConfig{
		"planner":   {Model: "gemini-2.5-flash", APIKeyEnv: "GOOGLE_API_KEY", Temperature: 0.2},
		"assembler": {Model: "gemini-2.5-flash", APIKeyEnv: "GOOGLE_API_KEY", Temperature: 0.2},
		"developer": {Model: "gemini-2.5-pro", APIKeyEnv: "GOOGLE_API_KEY", Temperature: 0.3},
		"reviewer":  {Model: "gemini-2.5-pro", APIKeyEnv: "GOOGLE_API_KEY", Temperature: 0.0},
		"rebuilder": {Model: "gemini-2.5-pro", APIKeyEnv: "GOOGLE_API_KEY", Temperature: 0.3},
	}
}

// DefaultDatabase mirrors typical local-dev Postgres settings.
func DefaultDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "pipeline",
		Database:        "pipeline",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// DefaultServer mirrors the teacher's cmd/main.go bootstrap defaults.
func DefaultServer() ServerConfig {
	return ServerConfig{
		HTTPPort:       "8080",
		GinMode:        "release",
		TrackerProject: "PIPE",
	}
}

// DefaultConfig returns a complete, ready-to-validate configuration before
// any user YAML is merged on top.
func DefaultConfig(configDir string) *Config {
	return &Config{
		AgentModels: DefaultAgentModels(),
		Thresholds:  DefaultThresholds(),
		Retry:       DefaultRetry(),
		Database:    DefaultDatabase(),
		Server:      DefaultServer(),
		configDir:   configDir,
	}
}
