package models

import "time"

// AgentActivity is the per-agent slice of a daily metrics document.
type AgentActivity struct {
	TaskCompleted int    `json:"task_completed"`
	LLMModelUsed  string `json:"llm_model_used"`
	TokensUsed    int    `json:"tokens_used"`
}

// DailyMetrics is the per-calendar-day aggregate persisted by the metrics
// port. CodeQualityScores is the running average (TotalQualityScore /
// NumScores); both are carried so upsert_daily can do exact running-sum
// arithmetic rather than re-deriving an average from an average.
type DailyMetrics struct {
	Date                string                      `json:"date"` // ISO date, e.g. "2026-07-31"
	TasksCompleted      int                         `json:"tasks_completed"`
	PullRequestsCreated int                         `json:"pull_requests_created"`
	TokensConsumed      int                         `json:"tokens_consumed"`
	CodeQualityScores   float64                     `json:"code_quality_scores"` // mean
	NumScores           int                         `json:"num_scores"`
	TotalQualityScore   float64                     `json:"total_quality_score"`
	SuccessCount        int                         `json:"success_count"`
	FailureCount        int                         `json:"failure_count"`
	AgentActivities     map[AgentName]AgentActivity `json:"agent_activities"`
	LastUpdated         time.Time                   `json:"last_updated"`
}

// NewDailyMetrics returns an empty document for the given ISO date.
func NewDailyMetrics(date string) *DailyMetrics {
	return &DailyMetrics{
		Date:            date,
		AgentActivities: make(map[AgentName]AgentActivity),
	}
}

// MetricsDelta is an additive set of changes applied by upsert_daily.
// Zero-value fields apply zero delta, so applying a MetricsDelta{} is a
// no-op (invariant I-7: idempotence under a zero-delta upsert).
type MetricsDelta struct {
	TasksCompletedDelta      int
	PullRequestsCreatedDelta int
	TokensConsumedDelta      int
	SuccessDelta             int
	FailureDelta             int

	// QualityScore, when non-nil, adds one sample to the running
	// sum/count used for the exact mean.
	QualityScore *float64

	// AgentDeltas accrues per-agent task/token counts; LastModel, when
	// non-empty, overwrites the stored model id for that agent
	// ("last-written model id wins").
	AgentDeltas map[AgentName]AgentDelta
}

// AgentDelta is the per-agent component of a MetricsDelta.
type AgentDelta struct {
	TaskCompletedDelta int
	TokensUsedDelta    int
	LastModel          string
}

// Apply mutates d in place with the additive/idempotent semantics from
// spec.md §4.9: increments are additive, last-written model id wins, and
// code-quality is maintained as running sum/count.
func (d *DailyMetrics) Apply(delta MetricsDelta) {
	d.TasksCompleted += delta.TasksCompletedDelta
	d.PullRequestsCreated += delta.PullRequestsCreatedDelta
	d.TokensConsumed += delta.TokensConsumedDelta
	d.SuccessCount += delta.SuccessDelta
	d.FailureCount += delta.FailureDelta

	if delta.QualityScore != nil {
		d.TotalQualityScore += *delta.QualityScore
		d.NumScores++
		d.CodeQualityScores = d.TotalQualityScore / float64(d.NumScores)
	}

	if d.AgentActivities == nil {
		d.AgentActivities = make(map[AgentName]AgentActivity)
	}
	for agent, ad := range delta.AgentDeltas {
		cur := d.AgentActivities[agent]
		cur.TaskCompleted += ad.TaskCompletedDelta
		cur.TokensUsed += ad.TokensUsedDelta
		if ad.LastModel != "" {
			cur.LLMModelUsed = ad.LastModel
		}
		d.AgentActivities[agent] = cur
	}
}
