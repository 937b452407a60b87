// Package assembler synthesizes a structured deployment document from the
// planner's approved subtasks, the sole input the developer subgraph reads.
package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/jsonx"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/render"
)

// Assembler turns approved subtasks into a DeploymentDocument plus its
// rendered markdown view.
type Assembler struct {
	LLM       llm.Client
	Templates *promptlib.Registry
	Model     string

	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// Result is what the assembler subgraph hands to the developer.
type Result struct {
	Document *models.DeploymentDocument
	Markdown string
	Tokens   int
}

// Assemble builds the deployment document for issue from its approved subtasks.
func (a *Assembler) Assemble(ctx context.Context, issue models.Issue, subtasks []*models.Subtask) (*Result, error) {
	subtasksJSON, err := json.Marshal(subtasks)
	if err != nil {
		return nil, fmt.Errorf("marshal subtasks: %w", err)
	}

	now := a.now()
	prompt, err := a.Templates.Format("assembler_document", map[string]string{
		"issue_key":     issue.Key,
		"issue_title":   issue.Title,
		"subtasks_json": string(subtasksJSON),
		"timestamp":     now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	text, tokens, err := a.LLM.Call(ctx, prompt, string(models.AgentAssembler), llm.Options{Model: a.Model})
	if err != nil {
		return nil, err
	}

	var doc models.DeploymentDocument
	if err := jsonx.Extract(text, &doc); err != nil {
		// A malformed document still degrades gracefully: start from an
		// empty shell so the defaults below can fill it in.
		doc = models.DeploymentDocument{}
	}

	if doc.Metadata.IssueKey == "" {
		doc.Metadata = models.DocumentMetadata{IssueKey: issue.Key, Version: "1.0", Timestamp: now}
	}
	if doc.ProjectOverview.Title == "" {
		doc.ProjectOverview.Title = issue.Title
	}
	if doc.ProjectOverview.Description == "" {
		doc.ProjectOverview.Description = issue.Description
	}
	synthesizeDefaultFile(&doc, issue)

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("assembled document invalid: %w", err)
	}

	markdown := render.Markdown(&doc)

	return &Result{Document: &doc, Markdown: markdown, Tokens: tokens}, nil
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// synthesizeDefaultFile implements spec.md §4.5: "file_structure.files
// missing or empty ⇒ a single default file entry is synthesized from the
// issue title so the developer can still proceed."
func synthesizeDefaultFile(doc *models.DeploymentDocument, issue models.Issue) {
	if len(doc.FileStructure.Files) > 0 {
		return
	}
	filename := defaultFilenameFromTitle(issue.Title)
	doc.FileStructure.Files = []models.FileEntry{{
		Filename:    filename,
		Type:        "source",
		Description: "Default file synthesized from issue title: " + issue.Title,
	}}
	if len(doc.FileStructure.FileTypes) == 0 {
		doc.FileStructure.FileTypes = []string{"source"}
	}
}

func defaultFilenameFromTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return "main.go"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "main"
	}
	return name + ".go"
}
