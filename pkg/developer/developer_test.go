package developer

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
)

type countingLLM struct {
	calls int32
}

func (c *countingLLM) Call(_ context.Context, prompt string, _ string, _ llm.Options) (string, int, error) {
	n := atomic.AddInt32(&c.calls, 1)
	return fmt.Sprintf("```go\ngenerated content %d for prompt len %d\n```", n, len(prompt)), 10, nil
}

func loadRegistry(t *testing.T) *promptlib.Registry {
	t.Helper()
	r, err := promptlib.Load()
	if err != nil {
		t.Fatalf("promptlib.Load: %v", err)
	}
	return r
}

func testDoc() *models.DeploymentDocument {
	return &models.DeploymentDocument{
		Metadata:        models.DocumentMetadata{IssueKey: "PIPE-1"},
		ProjectOverview: models.ProjectOverview{Title: "Feature"},
		FileStructure: models.FileStructure{
			Files: []models.FileEntry{
				{Filename: "main.go", Type: "source", Description: "entry point"},
				{Filename: "handler.go", Type: "source", Description: "request handler"},
			},
		},
		TechnicalSpecifications: map[string]string{"main.go": "must define main()"},
	}
}

func TestGenerateProducesOneFilePerEntry(t *testing.T) {
	dev := &Developer{
		LLM:         &countingLLM{},
		Templates:   loadRegistry(t),
		Memory:      NewMemoryStore(),
		Parallelism: 2,
	}
	issue := models.Issue{Key: "PIPE-1", Title: "Feature"}

	result, err := dev.Generate(context.Background(), testDoc(), issue, "THREAD-1", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(result.Files))
	}
	for _, name := range []string{"main.go", "handler.go"} {
		content, ok := result.Files[name]
		if !ok {
			t.Fatalf("missing generated file %s", name)
		}
		if content == "" {
			t.Errorf("file %s has empty content", name)
		}
	}
	if result.Tokens != 20 {
		t.Errorf("expected 20 tokens total, got %d", result.Tokens)
	}

	snapshot := dev.Memory.Snapshot()
	if len(snapshot.AllGeneratedFiles) != 2 {
		t.Errorf("expected memory to record 2 files, got %d", len(snapshot.AllGeneratedFiles))
	}
	if len(snapshot.IssueHistory) != 1 || snapshot.IssueHistory[0] != "PIPE-1" {
		t.Errorf("expected issue history to record PIPE-1, got %v", snapshot.IssueHistory)
	}
}

func TestGenerateStripsCodeFences(t *testing.T) {
	dev := &Developer{
		LLM:         &countingLLM{},
		Templates:   loadRegistry(t),
		Memory:      NewMemoryStore(),
		Parallelism: 4,
	}
	issue := models.Issue{Key: "PIPE-1", Title: "Feature"}

	result, err := dev.Generate(context.Background(), testDoc(), issue, "THREAD-1", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for name, content := range result.Files {
		if len(content) >= 3 && content[:3] == "```" {
			t.Errorf("file %s still has a leading code fence: %q", name, content)
		}
	}
}

func TestGeneratePublishesHandoffMessage(t *testing.T) {
	dev := &Developer{
		LLM:         &countingLLM{},
		Templates:   loadRegistry(t),
		Memory:      NewMemoryStore(),
		Parallelism: 2,
	}
	issue := models.Issue{Key: "PIPE-1", Title: "Feature"}
	handoff := models.NewReviewHandoff()

	result, err := dev.Generate(context.Background(), testDoc(), issue, "THREAD-9", handoff)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	msg, ok := handoff.Receive(context.Background(), time.Second)
	if !ok {
		t.Fatal("expected a published handoff message")
	}
	if msg.ThreadID != "THREAD-9" || msg.Issue.Key != "PIPE-1" {
		t.Errorf("unexpected handoff message: %+v", msg)
	}
	if len(msg.Files) != len(result.Files) {
		t.Errorf("handoff files = %d, generate result files = %d", len(msg.Files), len(result.Files))
	}
}

func TestCorrectRewritesEveryFileAndResolvesFeedback(t *testing.T) {
	dev := &Developer{
		LLM:         &countingLLM{},
		Templates:   loadRegistry(t),
		Memory:      NewMemoryStore(),
		Parallelism: 2,
	}
	issue := models.Issue{Key: "PIPE-1", Title: "Feature"}

	files := models.GeneratedFileSet{
		"main.go":    "package main",
		"handler.go": "package main\n\nfunc handle() {}",
	}
	feedback := []string{"missing error handling", "missing tests"}

	result, err := dev.Correct(context.Background(), files, feedback, issue)
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 corrected files, got %d", len(result.Files))
	}

	snapshot := dev.Memory.Snapshot()
	if len(snapshot.ResolvedMistakes) != 2 {
		t.Fatalf("expected 2 resolved mistakes, got %d: %v", len(snapshot.ResolvedMistakes), snapshot.ResolvedMistakes)
	}
	if len(snapshot.CumulativeMistakes) != 0 {
		t.Errorf("expected cumulative mistakes to be drained, got %v", snapshot.CumulativeMistakes)
	}
}

type erroringLLM struct{}

func (erroringLLM) Call(_ context.Context, _ string, _ string, _ llm.Options) (string, int, error) {
	return "", 0, fmt.Errorf("boom")
}

func TestGeneratePropagatesFirstError(t *testing.T) {
	dev := &Developer{
		LLM:         erroringLLM{},
		Templates:   loadRegistry(t),
		Memory:      NewMemoryStore(),
		Parallelism: 2,
	}
	issue := models.Issue{Key: "PIPE-1", Title: "Feature"}

	_, err := dev.Generate(context.Background(), testDoc(), issue, "THREAD-1", nil)
	if err == nil {
		t.Fatal("expected error when LLM calls fail")
	}
}

func TestStripCodeFencesHandlesBareTextAndFences(t *testing.T) {
	cases := map[string]string{
		"package main":             "package main",
		"```go\npackage main\n```": "package main",
		"```\nfoo\nbar\n```":       "foo\nbar",
		"  package main  ":         "package main",
	}
	for in, want := range cases {
		if got := stripCodeFences(in); got != want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}
