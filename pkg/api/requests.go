package api

// updateEnvRequest is the request body for POST /api/env/update. Every
// field is optional; only non-nil fields are applied (spec.md §6
// Configuration table, applied live to the running planner/reviewer/
// developer/orchestrator without a restart).
type updateEnvRequest struct {
	MaxRebuildAttempts *int     `json:"max_rebuild_attempts"`
	ReviewThreshold    *float64 `json:"review_threshold"`
	ScoreThreshold     *float64 `json:"score_threshold"`
	HITLTimeoutSeconds *int     `json:"hitl_timeout_seconds"`
	DevParallelism     *int     `json:"dev_parallelism"`
	ReviewBranchName   *string  `json:"review_branch_name"`
}
