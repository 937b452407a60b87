package api

import "github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"

// statusResponse is returned by GET /api/status.
type statusResponse struct {
	Running           bool `json:"running"`
	WorkflowsExecuted int  `json:"workflows_executed"`
	IssuesProcessed   int  `json:"issues_processed"`
	Errors            int  `json:"errors"`
}

// statsResponse is returned by GET /api/stats and /api/performance/realtime.
type statsResponse struct {
	WorkflowsExecuted   int                      `json:"workflows_executed"`
	IssuesProcessed     int                      `json:"issues_processed"`
	PRsCreated          int                      `json:"prs_created"`
	TokensTotal         int                      `json:"tokens_total"`
	TokensByAgent       map[models.AgentName]int `json:"tokens_by_agent"`
	RebuildCycles       int                      `json:"rebuild_cycles"`
	SuccessfulReviews   int                      `json:"successful_reviews"`
	Errors              int                      `json:"errors"`
	AverageQualityScore float64                  `json:"average_quality_score"`
}

// activityResponse is returned by GET /api/activity.
type activityResponse struct {
	Events []models.ActivityEvent `json:"events"`
}

// envResponse is returned by GET /api/env: the live-tunable settings from
// spec.md §6's Configuration table.
type envResponse struct {
	MaxRebuildAttempts int     `json:"max_rebuild_attempts"`
	ReviewThreshold    float64 `json:"review_threshold"`
	ScoreThreshold     float64 `json:"score_threshold"`
	HITLTimeoutSeconds int     `json:"hitl_timeout_seconds"`
	DevParallelism     int     `json:"dev_parallelism"`
	ReviewBranchName   string  `json:"review_branch_name"`
}

// agentsSummaryResponse is returned by GET /api/performance/agents.
type agentsSummaryResponse struct {
	Agents []agentSummaryRow `json:"agents"`
}

type agentSummaryRow struct {
	Agent       models.AgentName `json:"agent"`
	Tasks       int              `json:"tasks"`
	Tokens      int              `json:"tokens"`
	SuccessRate float64          `json:"success_rate"`
	Model       string           `json:"model"`
}
