//go:build integration

package metricsstore

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	store, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestStoreUpsertDailyAndGetLast7Days(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q := 90.0
	err := store.UpsertDaily(ctx, "2026-07-31", models.MetricsDelta{
		TasksCompletedDelta: 2,
		TokensConsumedDelta: 500,
		QualityScore:        &q,
		AgentDeltas: map[models.AgentName]models.AgentDelta{
			models.AgentReviewer: {TaskCompletedDelta: 1, TokensUsedDelta: 200, LastModel: "gemini-x"},
		},
	})
	if err != nil {
		t.Fatalf("UpsertDaily: %v", err)
	}

	days, err := store.GetLast7Days(ctx)
	if err != nil {
		t.Fatalf("GetLast7Days: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].TasksCompleted != 2 {
		t.Errorf("expected 2 tasks completed, got %d", days[0].TasksCompleted)
	}
	if days[0].CodeQualityScores != 90.0 {
		t.Errorf("expected quality score 90, got %v", days[0].CodeQualityScores)
	}
	activity := days[0].AgentActivities[models.AgentReviewer]
	if activity.TokensUsed != 200 || activity.LLMModelUsed != "gemini-x" {
		t.Errorf("unexpected reviewer activity: %+v", activity)
	}
}

func TestStoreRecordReviewAndAgentsSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := ports.RecordedReview{
		IssueKey:  "DEMO-1",
		Iteration: 1,
		AgentID:   "001",
		Review: models.ReviewResult{
			Completeness: models.DimensionResult{Score: 90},
			Security:     models.DimensionResult{Score: 85},
			Standards:    models.DimensionResult{Score: 95},
			Overall:      90,
			Approved:     true,
			TokensUsed:   120,
		},
	}
	if err := store.RecordReview(ctx, review); err != nil {
		t.Fatalf("RecordReview: %v", err)
	}

	if err := store.UpsertDaily(ctx, "2026-07-31", models.MetricsDelta{
		SuccessDelta: 1,
		AgentDeltas: map[models.AgentName]models.AgentDelta{
			models.AgentDeveloper: {TaskCompletedDelta: 1, TokensUsedDelta: 300, LastModel: "gpt-x"},
		},
	}); err != nil {
		t.Fatalf("UpsertDaily: %v", err)
	}

	summaries, err := store.GetAgentsSummary(ctx)
	if err != nil {
		t.Fatalf("GetAgentsSummary: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 agent summary, got %d", len(summaries))
	}
	if summaries[0].SuccessRate != 1.0 {
		t.Errorf("expected success rate 1.0, got %v", summaries[0].SuccessRate)
	}
}
