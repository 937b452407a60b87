package metricsstore

import (
	"context"
	"testing"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

func TestUpsertDailyIsAdditiveAndIdempotentOnZeroDelta(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	q := 80.0
	if err := m.UpsertDaily(ctx, "2026-07-31", models.MetricsDelta{TasksCompletedDelta: 1, QualityScore: &q}); err != nil {
		t.Fatalf("UpsertDaily: %v", err)
	}
	if err := m.UpsertDaily(ctx, "2026-07-31", models.MetricsDelta{}); err != nil {
		t.Fatalf("UpsertDaily zero delta: %v", err)
	}

	days, err := m.GetLast7Days(ctx)
	if err != nil {
		t.Fatalf("GetLast7Days: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].TasksCompleted != 1 {
		t.Errorf("expected 1 task completed, got %d", days[0].TasksCompleted)
	}
	if days[0].CodeQualityScores != 80.0 {
		t.Errorf("expected quality score 80, got %v", days[0].CodeQualityScores)
	}
}

func TestGetLast7DaysReturnsAtMostSevenNewest(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	dates := []string{"2026-07-20", "2026-07-21", "2026-07-22", "2026-07-23", "2026-07-24", "2026-07-25", "2026-07-26", "2026-07-27"}
	for _, d := range dates {
		if err := m.UpsertDaily(ctx, d, models.MetricsDelta{TasksCompletedDelta: 1}); err != nil {
			t.Fatalf("UpsertDaily: %v", err)
		}
	}

	days, err := m.GetLast7Days(ctx)
	if err != nil {
		t.Fatalf("GetLast7Days: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Date != "2026-07-27" {
		t.Errorf("expected newest first, got %s", days[0].Date)
	}
}

func TestGetAgentsSummaryAggregatesAcrossDays(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	m.UpsertDaily(ctx, "2026-07-30", models.MetricsDelta{
		AgentDeltas: map[models.AgentName]models.AgentDelta{
			models.AgentDeveloper: {TaskCompletedDelta: 2, TokensUsedDelta: 100, LastModel: "gpt-x"},
		},
	})
	m.UpsertDaily(ctx, "2026-07-31", models.MetricsDelta{
		AgentDeltas: map[models.AgentName]models.AgentDelta{
			models.AgentDeveloper: {TaskCompletedDelta: 3, TokensUsedDelta: 50, LastModel: "gpt-y"},
		},
	})

	summaries, err := m.GetAgentsSummary(ctx)
	if err != nil {
		t.Fatalf("GetAgentsSummary: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 agent summary, got %d", len(summaries))
	}
	if summaries[0].Tasks != 5 || summaries[0].Tokens != 150 {
		t.Errorf("expected aggregated tasks=5 tokens=150, got tasks=%d tokens=%d", summaries[0].Tasks, summaries[0].Tokens)
	}
}

func TestRecordReviewAccumulatesEntries(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	if err := m.RecordReview(ctx, ports.RecordedReview{IssueKey: "DEMO-1", Iteration: 1, AgentID: "001"}); err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if len(m.reviews) != 1 {
		t.Errorf("expected 1 recorded review, got %d", len(m.reviews))
	}
}
