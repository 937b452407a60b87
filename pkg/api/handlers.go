package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/orchestrator"
)

// Status handles GET /api/status.
func (s *Server) Status(c *gin.Context) {
	snap := s.Telemetry.Snapshot()
	c.JSON(http.StatusOK, statusResponse{
		Running:           s.Orchestrator.IsRunning(),
		WorkflowsExecuted: snap.WorkflowsExecuted,
		IssuesProcessed:   snap.IssuesProcessed,
		Errors:            snap.Errors,
	})
}

// Stats handles GET /api/stats.
func (s *Server) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.statsSnapshot())
}

func (s *Server) statsSnapshot() statsResponse {
	snap := s.Telemetry.Snapshot()
	return statsResponse{
		WorkflowsExecuted:   snap.WorkflowsExecuted,
		IssuesProcessed:     snap.IssuesProcessed,
		PRsCreated:          snap.PRsCreated,
		TokensTotal:         snap.TokensTotal,
		TokensByAgent:       snap.TokensByAgent,
		RebuildCycles:       snap.RebuildCycles,
		SuccessfulReviews:   snap.SuccessfulReviews,
		Errors:              snap.Errors,
		AverageQualityScore: snap.AverageQualityScore,
	}
}

// Activity handles GET /api/activity.
func (s *Server) Activity(c *gin.Context) {
	c.JSON(http.StatusOK, activityResponse{Events: s.Telemetry.Activity()})
}

// Health handles GET /api/health: liveness only, no downstream port checks
// (those are exercised by the pipeline itself and surfaced via /api/status).
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetConfig handles GET /api/config.
func (s *Server) GetConfig(c *gin.Context) {
	if s.Config == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.Config.Stats())
}

// GetEnv handles GET /api/env: the live values of every spec.md §6
// Configuration setting, read from the components that actually consult
// them rather than from the static config that loaded them at startup.
func (s *Server) GetEnv(c *gin.Context) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	c.JSON(http.StatusOK, s.envSnapshot())
}

func (s *Server) envSnapshot() envResponse {
	resp := envResponse{}
	if s.Orchestrator != nil {
		resp.MaxRebuildAttempts = s.Orchestrator.Config.MaxRebuildAttempts
		resp.ReviewBranchName = s.Orchestrator.Config.ReviewBranchName
	}
	if s.Reviewer != nil {
		resp.ReviewThreshold = s.Reviewer.Threshold
	}
	if s.Planner != nil {
		resp.ScoreThreshold = s.Planner.ScoreThreshold
		resp.HITLTimeoutSeconds = int(s.Planner.HITLTimeout / time.Second)
	}
	if s.Developer != nil {
		resp.DevParallelism = s.Developer.Parallelism
	}
	return resp
}

// UpdateEnv handles POST /api/env/update: applies any non-nil field to the
// live running components, guarded by settingsMu since requests race with
// each other (never with an in-flight pipeline run's reads, which is an
// accepted limitation of tuning settings without a restart).
func (s *Server) UpdateEnv(c *gin.Context) {
	var req updateEnvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if req.MaxRebuildAttempts != nil && s.Orchestrator != nil {
		s.Orchestrator.Config.MaxRebuildAttempts = *req.MaxRebuildAttempts
	}
	if req.ReviewBranchName != nil && s.Orchestrator != nil {
		s.Orchestrator.Config.ReviewBranchName = *req.ReviewBranchName
	}
	if req.ReviewThreshold != nil && s.Reviewer != nil {
		s.Reviewer.Threshold = *req.ReviewThreshold
	}
	if req.ScoreThreshold != nil && s.Planner != nil {
		s.Planner.ScoreThreshold = *req.ScoreThreshold
	}
	if req.HITLTimeoutSeconds != nil && s.Planner != nil {
		s.Planner.HITLTimeout = time.Duration(*req.HITLTimeoutSeconds) * time.Second
	}
	if req.DevParallelism != nil && s.Developer != nil {
		s.Developer.Parallelism = *req.DevParallelism
	}

	c.JSON(http.StatusOK, s.envSnapshot())
}

// PerformanceData handles GET /api/performance-data.
func (s *Server) PerformanceData(c *gin.Context) {
	if s.metricsUnavailable(c) {
		return
	}
	days, err := s.Orchestrator.Metrics.GetLast7Days(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// PerformanceRealtime handles GET /api/performance/realtime: the same
// counters as /api/stats, split into its own route per spec.md §6 so a
// dashboard can poll it independently of the historical endpoints.
func (s *Server) PerformanceRealtime(c *gin.Context) {
	c.JSON(http.StatusOK, s.statsSnapshot())
}

// PerformanceAgents handles GET /api/performance/agents.
func (s *Server) PerformanceAgents(c *gin.Context) {
	if s.metricsUnavailable(c) {
		return
	}
	rows, err := s.Orchestrator.Metrics.GetAgentsSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]agentSummaryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, agentSummaryRow{
			Agent:       r.Agent,
			Tasks:       r.Tasks,
			Tokens:      r.Tokens,
			SuccessRate: r.SuccessRate,
			Model:       r.Model,
		})
	}
	c.JSON(http.StatusOK, agentsSummaryResponse{Agents: out})
}

func (s *Server) metricsUnavailable(c *gin.Context) bool {
	if s.Orchestrator == nil || s.Orchestrator.Metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics store not configured"})
		return true
	}
	return false
}

// StartAutomation handles POST /api/start-automation. Idempotent: returns
// "already running" rather than an error when a session is active
// (spec.md §6).
func (s *Server) StartAutomation(c *gin.Context) {
	alreadyRunning, err := s.Orchestrator.StartAutomation(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if alreadyRunning {
		c.JSON(http.StatusOK, gin.H{"status": "already running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopAutomation handles POST /api/stop-automation. Must terminate within
// 5 s (spec.md §6); orchestrator.StopAutomation enforces that bound.
func (s *Server) StopAutomation(c *gin.Context) {
	if err := s.Orchestrator.StopAutomation(); err != nil {
		status := http.StatusInternalServerError
		if err == orchestrator.ErrStopTimeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// ResetStats handles POST /api/reset-stats.
func (s *Server) ResetStats(c *gin.Context) {
	s.Telemetry.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
