// Package developer implements parallel per-file code generation, the
// correction loop, and the project-memory bookkeeping between them.
package developer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
)

// Developer runs the developer subgraph in either generation or correction
// mode (spec.md §4.6).
type Developer struct {
	LLM         llm.Client
	Templates   *promptlib.Registry
	Memory      *MemoryStore
	Model       string
	Parallelism int
}

// Result is what the developer subgraph hands to the reviewer.
type Result struct {
	Files  models.GeneratedFileSet
	Tokens int
}

// Generate runs generation mode: no feedback, one file per entry in
// doc.FileStructure.Files, fanned out up to Parallelism. If handoff is
// non-nil, the merged file set is published on it for the reviewer to
// consume in parallel (spec.md §4.6 step 5); handoff may be nil.
func (d *Developer) Generate(ctx context.Context, doc *models.DeploymentDocument, issue models.Issue, threadID string, handoff *models.ReviewHandoff) (*Result, error) {
	related := d.Memory.RelatedFiles(issue.Title)
	relatedFormatted := formatRelatedFiles(related)
	planFormatted := formatImplementationPlan(doc.ImplementationPlan)
	structureFormatted := formatFileStructure(doc.FileStructure)

	runner := newFileRunner(ctx, d.Parallelism)
	files := doc.FileStructure.Files

	for _, f := range files {
		f := f
		runner.dispatch(f.Filename, func(ctx context.Context) fileResult {
			plan := planFormatted
			if spec := doc.TechnicalSpecifications[f.Filename]; spec != "" {
				plan = plan + "\n\nSpec for " + f.Filename + ":\n" + spec
			}
			prompt, err := d.Templates.Format("developer_file", map[string]string{
				"issue_key":           issue.Key,
				"issue_title":         issue.Title,
				"filename":            f.Filename,
				"file_type":           f.Type,
				"file_description":    f.Description,
				"implementation_plan": plan,
				"file_structure":      structureFormatted,
				"related_files":       relatedFormatted,
			})
			if err != nil {
				return fileResult{Filename: f.Filename, Err: err}
			}
			text, tokens, err := d.LLM.Call(ctx, prompt, string(models.AgentDeveloper), llm.Options{Model: d.Model})
			if err != nil {
				return fileResult{Filename: f.Filename, Err: err}
			}
			return fileResult{Filename: f.Filename, Content: stripCodeFences(text), Tokens: tokens}
		})
	}

	results := runner.drain(ctx, len(files))

	out := make(models.GeneratedFileSet, len(results))
	totalTokens := 0
	var firstErr error
	for _, r := range results {
		totalTokens += r.Tokens
		if r.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("file %s: %w", r.Filename, r.Err)
			}
			continue
		}
		out[r.Filename] = r.Content
	}
	if firstErr != nil {
		return nil, firstErr
	}

	d.Memory.RecordGeneration(issue.Key, out)

	handoff.Publish(models.ReviewMessage{Files: out, Issue: issue, ThreadID: threadID})

	return &Result{Files: out, Tokens: totalTokens}, nil
}

// Correct runs correction mode: one LLM call per file, rewriting it given
// the cumulative feedback and the other files as context.
func (d *Developer) Correct(ctx context.Context, files models.GeneratedFileSet, feedback []string, issue models.Issue) (*Result, error) {
	d.Memory.AccumulateFeedback(feedback)
	cumulative := d.Memory.CumulativeMistakes()
	feedbackFormatted := strings.Join(cumulative, "\n- ")
	if feedbackFormatted != "" {
		feedbackFormatted = "- " + feedbackFormatted
	}

	runner := newFileRunner(ctx, d.Parallelism)
	names := files.Filenames()

	for _, name := range names {
		name := name
		content := files[name]
		runner.dispatch(name, func(ctx context.Context) fileResult {
			prompt, err := d.Templates.Format("developer_correction", map[string]string{
				"issue_key":       issue.Key,
				"filename":        name,
				"feedback":        feedbackFormatted,
				"current_content": content,
				"other_files":     formatOtherFiles(files, name),
			})
			if err != nil {
				return fileResult{Filename: name, Err: err}
			}
			text, tokens, err := d.LLM.Call(ctx, prompt, string(models.AgentRebuilder), llm.Options{Model: d.Model})
			if err != nil {
				return fileResult{Filename: name, Err: err}
			}
			return fileResult{Filename: name, Content: stripCodeFences(text), Tokens: tokens}
		})
	}

	results := runner.drain(ctx, len(names))

	out := make(models.GeneratedFileSet, len(names))
	totalTokens := 0
	var firstErr error
	for _, r := range results {
		totalTokens += r.Tokens
		if r.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("file %s: %w", r.Filename, r.Err)
			}
			continue
		}
		out[r.Filename] = r.Content
	}
	if firstErr != nil {
		return nil, firstErr
	}

	d.Memory.ResolveFeedback(feedback)
	d.Memory.RecordGeneration(issue.Key, out)

	return &Result{Files: out, Tokens: totalTokens}, nil
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	firstNL := strings.IndexByte(trimmed, '\n')
	if firstNL == -1 {
		return trimmed
	}
	trimmed = trimmed[firstNL+1:]
	if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func formatRelatedFiles(files models.GeneratedFileSet) string {
	if len(files) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, name := range files.Filenames() {
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", name, files[name])
	}
	return b.String()
}

func formatOtherFiles(files models.GeneratedFileSet, exclude string) string {
	var b strings.Builder
	for _, name := range files.Filenames() {
		if name == exclude {
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", name, files[name])
	}
	if b.Len() == 0 {
		return "(none)"
	}
	return b.String()
}

func formatImplementationPlan(phases []models.Phase) string {
	var b strings.Builder
	for i, p := range phases {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		for _, t := range p.Tasks {
			fmt.Fprintf(&b, "   - %s\n", t)
		}
	}
	return b.String()
}

func formatFileStructure(fs models.FileStructure) string {
	var b strings.Builder
	for _, f := range fs.Files {
		fmt.Fprintf(&b, "- %s (%s): %s\n", f.Filename, f.Type, f.Description)
	}
	return b.String()
}
