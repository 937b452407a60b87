package planner

import (
	"context"
	"testing"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
)

type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Call(_ context.Context, _ string, _ string, _ llm.Options) (string, int, error) {
	if s.calls >= len(s.responses) {
		return "{}", 1, nil
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, 10, nil
}

func newTestRegistry(t *testing.T) *promptlib.Registry {
	t.Helper()
	r, err := promptlib.Load()
	if err != nil {
		t.Fatalf("promptlib.Load: %v", err)
	}
	return r
}

func TestPlanLinearPath(t *testing.T) {
	scripted := &scriptedLLM{responses: []string{
		`{"method":"linear","reasoning":"single component"}`,
		`[{"id":1,"description":"add endpoint","priority":2,"requirements_covered":[0],"reasoning":"core work"}]`,
	}}
	p := &Planner{
		LLM:            scripted,
		Templates:      newTestRegistry(t),
		Gate:           NewHITLGate(),
		ScoreThreshold: 7,
		HITLTimeout:    10 * time.Millisecond,
	}
	issue := models.Issue{Key: "PIPE-1", Title: "Add endpoint", Description: "Add a REST endpoint"}

	result, err := p.Plan(context.Background(), issue, "thread-1")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.Method != MethodLinear {
		t.Errorf("expected linear method, got %s", result.Method)
	}
	if len(result.Subtasks) != 1 {
		t.Fatalf("expected 1 subtask, got %d", len(result.Subtasks))
	}
	if result.NeedsHuman {
		t.Error("linear path with max score should not need human gate")
	}
}

func TestPlanGraphPathWithDefaultScoring(t *testing.T) {
	scripted := &scriptedLLM{responses: []string{
		`{"method":"graph","reasoning":"multi-component"}`,
		`{"nodes":[{"id":1,"description":"schema","priority":1,"requirements_covered":[0],"reasoning":"r1"},{"id":2,"description":"handler","priority":2,"requirements_covered":[1],"reasoning":"r2"}],"edges":[{"from":1,"to":2}]}`,
		`[{"id":1,"score":9.0,"reasoning":"good"}]`, // node 2 missing -> defaults to 7.5
		`[{"id":1,"description":"schema+handler","priority":1,"requirements_covered":[0,1],"reasoning":"merged","covered_subtasks":[1,2]}]`,
	}}
	p := &Planner{
		LLM:            scripted,
		Templates:      newTestRegistry(t),
		Gate:           NewHITLGate(),
		ScoreThreshold: 7,
		HITLTimeout:    10 * time.Millisecond,
	}
	issue := models.Issue{Key: "PIPE-2", Title: "Build feature", Description: "Multi-part feature"}

	result, err := p.Plan(context.Background(), issue, "thread-2")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.Method != MethodGraph {
		t.Errorf("expected graph method, got %s", result.Method)
	}
	if len(result.Subtasks) != 1 {
		t.Fatalf("expected 1 merged subtask, got %d", len(result.Subtasks))
	}
	expected := (9.0 + 7.5) / 2
	if result.Subtasks[0].Score != expected {
		t.Errorf("expected merged score %.2f, got %.2f", expected, result.Subtasks[0].Score)
	}
}

func TestPlanEmptySubtaskListFails(t *testing.T) {
	scripted := &scriptedLLM{responses: []string{
		`{"method":"linear","reasoning":"n/a"}`,
		`[]`,
	}}
	p := &Planner{
		LLM:            scripted,
		Templates:      newTestRegistry(t),
		Gate:           NewHITLGate(),
		ScoreThreshold: 7,
		HITLTimeout:    10 * time.Millisecond,
	}
	issue := models.Issue{Key: "PIPE-3", Title: "Empty", Description: "n/a"}

	if _, err := p.Plan(context.Background(), issue, "thread-3"); err == nil {
		t.Fatal("expected PlanningFailed for empty subtask list")
	}
}

func TestHITLGateFailsOpenOnTimeout(t *testing.T) {
	gate := NewHITLGate()
	decision := gate.Await(context.Background(), "thread-x", 5*time.Millisecond)
	if decision != HITLApprove {
		t.Errorf("expected fail-open approve, got %v", decision)
	}
}

func TestHITLGateHonorsDecision(t *testing.T) {
	gate := NewHITLGate()
	done := make(chan HITLDecision, 1)
	go func() {
		done <- gate.Await(context.Background(), "thread-y", time.Second)
	}()
	time.Sleep(10 * time.Millisecond)
	gate.Decide("thread-y", HITLReject)
	if got := <-done; got != HITLReject {
		t.Errorf("expected reject decision, got %v", got)
	}
}
