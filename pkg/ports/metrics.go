package ports

import (
	"context"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
)

// RecordedReview is the full review result persisted by RecordReview,
// carrying fields not part of models.ReviewResult (the document is
// recorded, not the live value).
type RecordedReview struct {
	IssueKey  string
	Review    models.ReviewResult
	Iteration int
	AgentID   string // "001" on first iteration, "003" thereafter
}

// AgentSummary is one row of GetAgentsSummary.
type AgentSummary struct {
	Agent       models.AgentName
	Tasks       int
	Tokens      int
	SuccessRate float64
	Model       string
}

// Metrics is the persistent metrics store port.
type Metrics interface {
	RecordReview(ctx context.Context, r RecordedReview) error
	UpsertDaily(ctx context.Context, date string, delta models.MetricsDelta) error
	GetLast7Days(ctx context.Context) ([]models.DailyMetrics, error)
	GetAgentsSummary(ctx context.Context) ([]AgentSummary, error)
}
