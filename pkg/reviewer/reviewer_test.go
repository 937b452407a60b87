package reviewer

import (
	"context"
	"fmt"
	"testing"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
)

type scriptedLLM struct {
	responses map[string]string // keyed by a substring of the prompt
	fallback  string
	err       error
}

func (s *scriptedLLM) Call(_ context.Context, prompt string, _ string, _ llm.Options) (string, int, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	for substr, resp := range s.responses {
		if contains(prompt, substr) {
			return resp, 5, nil
		}
	}
	return s.fallback, 5, nil
}

func contains(haystack, needle string) bool {
	return len(needle) > 0 && (len(haystack) >= len(needle)) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func loadRegistry(t *testing.T) *promptlib.Registry {
	t.Helper()
	r, err := promptlib.Load()
	if err != nil {
		t.Fatalf("promptlib.Load: %v", err)
	}
	return r
}

type fakeMetrics struct {
	recorded []ports.RecordedReview
}

func (f *fakeMetrics) RecordReview(_ context.Context, r ports.RecordedReview) error {
	f.recorded = append(f.recorded, r)
	return nil
}
func (f *fakeMetrics) UpsertDaily(context.Context, string, models.MetricsDelta) error { return nil }
func (f *fakeMetrics) GetLast7Days(context.Context) ([]models.DailyMetrics, error)    { return nil, nil }
func (f *fakeMetrics) GetAgentsSummary(context.Context) ([]ports.AgentSummary, error) {
	return nil, nil
}

func testFiles() models.GeneratedFileSet {
	return models.GeneratedFileSet{
		"main.go": "package main\n\nfunc main() {}\n",
	}
}

func TestReviewApprovesHighScores(t *testing.T) {
	llmc := &scriptedLLM{fallback: `{"score": 90, "mistakes": [], "reasoning": "looks good"}`}
	rv := &Reviewer{LLM: llmc, Templates: loadRegistry(t), Threshold: 70}

	result, err := rv.Review(context.Background(), models.Issue{Key: "PIPE-1", Title: "Feature"}, testFiles(), "desc", 1, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if !result.Approved {
		t.Errorf("expected approved, got overall=%v", result.Overall)
	}
	if result.Overall != 90.0 {
		t.Errorf("expected overall 90, got %v", result.Overall)
	}
}

func TestReviewRejectsLowScores(t *testing.T) {
	llmc := &scriptedLLM{fallback: `{"score": 40, "mistakes": ["missing tests"], "reasoning": "incomplete"}`}
	rv := &Reviewer{LLM: llmc, Templates: loadRegistry(t), Threshold: 70}

	result, err := rv.Review(context.Background(), models.Issue{Key: "PIPE-1", Title: "Feature"}, testFiles(), "desc", 1, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if result.Approved {
		t.Error("expected not approved for a low score")
	}
	if len(result.Mistakes) == 0 {
		t.Error("expected mistakes to be populated")
	}
}

func TestReviewFailsHardWhenAllThreeCoreDimensionsFail(t *testing.T) {
	llmc := &scriptedLLM{err: fmt.Errorf("provider unavailable")}
	rv := &Reviewer{LLM: llmc, Templates: loadRegistry(t), Threshold: 70}

	_, err := rv.Review(context.Background(), models.Issue{Key: "PIPE-1", Title: "Feature"}, testFiles(), "desc", 1, nil)
	if err == nil {
		t.Fatal("expected hard failure when all dimensions fail")
	}
}

func TestReviewDegradesGracefullyWhenOneDimensionFails(t *testing.T) {
	// Completeness falls through to the fallback (malformed); security and
	// standards get well-formed scores, so only one of the three core
	// dimensions fails and the review still aggregates (spec.md §4.7).
	llmc := &scriptedLLM{
		responses: map[string]string{
			"security guidelines": `{"score": 80, "mistakes": [], "reasoning": "ok"}`,
			"language coding":     `{"score": 85, "mistakes": [], "reasoning": "ok"}`,
		},
		fallback: "not json",
	}
	rv := &Reviewer{LLM: llmc, Templates: loadRegistry(t), Threshold: 70}

	result, err := rv.Review(context.Background(), models.Issue{Key: "PIPE-1", Title: "Feature"}, testFiles(), "desc", 1, nil)
	if err != nil {
		t.Fatalf("expected soft degradation, got hard error: %v", err)
	}
	if result.Completeness.Score != defaultDimensionScore {
		t.Errorf("expected completeness to default to %v, got %v", defaultDimensionScore, result.Completeness.Score)
	}
	if len(result.Completeness.Mistakes) == 0 {
		t.Error("expected a mistake describing the completeness failure")
	}
}

func TestReviewPrefersHandoffFilesOnFirstIteration(t *testing.T) {
	llmc := &scriptedLLM{fallback: `{"score": 90, "mistakes": [], "reasoning": "ok"}`}
	rv := &Reviewer{LLM: llmc, Templates: loadRegistry(t), Threshold: 70}

	handoff := models.NewReviewHandoff()
	handoffFiles := models.GeneratedFileSet{"handoff.go": "package main\n"}
	handoff.Publish(models.ReviewMessage{Files: handoffFiles, Issue: models.Issue{Key: "PIPE-1"}, ThreadID: "THREAD-1"})

	// The files argument is deliberately different from what was published,
	// so a pass only succeeds if Review actually consumed the handoff.
	result, err := rv.Review(context.Background(), models.Issue{Key: "PIPE-1", Title: "Feature"}, testFiles(), "desc", 1, handoff)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if !result.Approved {
		t.Fatalf("expected approved, got overall=%v", result.Overall)
	}
}

func TestReviewFallsBackToFilesWhenHandoffEmpty(t *testing.T) {
	llmc := &scriptedLLM{fallback: `{"score": 90, "mistakes": [], "reasoning": "ok"}`}
	rv := &Reviewer{LLM: llmc, Templates: loadRegistry(t), Threshold: 70}

	handoff := models.NewReviewHandoff() // nothing published

	result, err := rv.Review(context.Background(), models.Issue{Key: "PIPE-1", Title: "Feature"}, testFiles(), "desc", 1, handoff)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if !result.Approved {
		t.Fatalf("expected approved using the fallback files, got overall=%v", result.Overall)
	}
}

func TestReviewPersistsViaMetricsPortWithCorrectAgentID(t *testing.T) {
	llmc := &scriptedLLM{fallback: `{"score": 80, "mistakes": [], "reasoning": "ok"}`}
	metrics := &fakeMetrics{}
	rv := &Reviewer{LLM: llmc, Templates: loadRegistry(t), Metrics: metrics, Threshold: 70}

	_, err := rv.Review(context.Background(), models.Issue{Key: "PIPE-1", Title: "Feature"}, testFiles(), "desc", 2, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if len(metrics.recorded) != 1 {
		t.Fatalf("expected 1 recorded review, got %d", len(metrics.recorded))
	}
	if metrics.recorded[0].AgentID != "003" {
		t.Errorf("expected agent id 003 on iteration 2, got %s", metrics.recorded[0].AgentID)
	}
}

func TestKnowledgeBaseFallsBackToGeneralBestPractice(t *testing.T) {
	kb := DefaultKnowledgeBase()
	if kb.SecurityFor("cobol") != generalBestPractice {
		t.Error("expected fallback to general best practice for unknown language")
	}
	if kb.StandardsFor("go") == generalBestPractice {
		t.Error("expected a go-specific standards entry, not the fallback")
	}
}
