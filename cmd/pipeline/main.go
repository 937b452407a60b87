// Command pipeline runs the orchestrator server: it loads configuration,
// wires every agent subgraph and external port, then serves the control
// surface over HTTP until interrupted.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/adapters/githubrepo"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/adapters/httplint"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/adapters/httpquality"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/adapters/httptracker"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/api"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/assembler"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/config"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/developer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/metricsstore"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/orchestrator"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/planner"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/reviewer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/telemetry"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	configDir := getEnv("CONFIG_DIR", "./deploy/config")

	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v (continuing with existing environment)", envPath, err)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	srv, err := buildServer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to wire pipeline: %v", err)
	}

	log.Printf("control surface listening on :%s", httpPort)
	if err := srv.Run(ctx, ":"+httpPort); err != nil {
		log.Fatalf("control surface exited: %v", err)
	}
}

// buildServer wires every agent subgraph, external port adapter and the
// telemetry aggregator into an api.Server, following the teacher's
// cmd/tarsy/main.go bootstrap shape (load config -> connect externals ->
// construct services -> hand them to the HTTP layer).
func buildServer(ctx context.Context, cfg *config.Config) (*api.Server, error) {
	templates, err := promptlib.Load()
	if err != nil {
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	llmClient, err := buildLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	gate := planner.NewHITLGate()
	pl := &planner.Planner{
		LLM:            llmClient,
		Templates:      templates,
		Gate:           gate,
		Model:          cfg.AgentModels["planner"].Model,
		ScoreThreshold: cfg.Thresholds.ScoreThreshold,
		HITLTimeout:    cfg.Thresholds.HITLTimeout,
	}
	as := &assembler.Assembler{
		LLM:       llmClient,
		Templates: templates,
		Model:     cfg.AgentModels["assembler"].Model,
	}
	dev := &developer.Developer{
		LLM:         llmClient,
		Templates:   templates,
		Memory:      developer.NewMemoryStore(),
		Model:       cfg.AgentModels["developer"].Model,
		Parallelism: cfg.Thresholds.DevParallelism,
	}

	tracker := httptracker.New(cfg.Tracker.BaseURL, os.Getenv(cfg.Tracker.TokenEnv))

	var lintPort *httplint.Lint
	if cfg.Lint.BaseURL != "" {
		lintPort = httplint.New(cfg.Lint.BaseURL, os.Getenv(cfg.Lint.TokenEnv))
	}

	var qualityPort *httpquality.Quality
	if cfg.Quality.BaseURL != "" {
		qualityPort = httpquality.New(cfg.Quality.BaseURL, os.Getenv(cfg.Quality.TokenEnv))
	}

	metrics, err := buildMetricsStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build metrics store: %w", err)
	}

	rev := &reviewer.Reviewer{
		LLM:       llmClient,
		Templates: templates,
		Model:     cfg.AgentModels["reviewer"].Model,
		Threshold: cfg.Thresholds.ReviewThreshold,
	}
	if lintPort != nil {
		rev.Lint = lintPort
	}
	if metrics != nil {
		rev.Metrics = metrics
	}

	repo := githubrepo.New(os.Getenv(cfg.GitHub.TokenEnv), cfg.GitHub.Owner, cfg.GitHub.Repo)

	orch := &orchestrator.Orchestrator{
		Tracker:   tracker,
		Repo:      repo,
		Planner:   pl,
		Assembler: as,
		Developer: dev,
		Reviewer:  rev,
		Telemetry: telemetry.New(),
		Config: orchestrator.Config{
			Project:            cfg.Server.TrackerProject,
			MaxRebuildAttempts: cfg.Thresholds.MaxRebuildAttempts,
			ReviewBranchName:   cfg.Thresholds.ReviewBranchName,
			DefaultBranch:      "main",
			QualityProject:     cfg.Server.TrackerProject,
		},
		Logger: slog.Default(),
	}
	// Assigned conditionally, not in the struct literal above: handing an
	// interface field a nil *httpquality.Quality / *metricsstore.Store
	// directly would make it a non-nil interface wrapping a nil pointer,
	// breaking the orchestrator's own `o.Quality == nil` checks.
	if qualityPort != nil {
		orch.Quality = qualityPort
	}
	if metrics != nil {
		orch.Metrics = metrics
	}

	return &api.Server{
		Orchestrator: orch,
		Telemetry:    orch.Telemetry,
		Planner:      pl,
		Reviewer:     rev,
		Developer:    dev,
		Config:       cfg,
		Logger:       slog.Default(),
	}, nil
}

func buildLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	apiKeyEnv := cfg.AgentModels["developer"].APIKeyEnv
	apiKey := llm.APIKeyFromEnv(apiKeyEnv)
	return llm.NewGenAIClient(ctx, apiKey, cfg.Retry.MaxRetries, cfg.Retry.InitialInterval)
}

func buildMetricsStore(ctx context.Context, cfg *config.Config) (*metricsstore.Store, error) {
	if cfg.Database.Host == "" {
		return nil, nil
	}
	password := cfg.Database.Password
	if cfg.Database.PasswordEnv != "" {
		password = os.Getenv(cfg.Database.PasswordEnv)
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, password, cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Database, cfg.Database.SSLMode)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return metricsstore.New(ctx, dsn)
}
