// Package reviewer implements the nine-stage review subgraph (spec.md
// §4.7): format, knowledge base lookup, static lint, completeness,
// security, standards, aggregate, persist, finalize.
package reviewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/jsonx"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
)

// defaultDimensionScore is the conservative fallback used when a single
// analysis dimension fails (spec.md §4.7 fail-soft policy: 70-80).
const defaultDimensionScore = 75.0

// Reviewer runs the review subgraph. Lint and Metrics are optional: a nil
// Lint skips stage 3 entirely; a nil Metrics skips persistence.
type Reviewer struct {
	LLM       llm.Client
	Templates *promptlib.Registry
	Lint      ports.Lint
	Metrics   ports.Metrics
	KB        *KnowledgeBase
	Model     string
	Threshold float64

	Logger *slog.Logger
}

// Review runs all nine stages for one iteration and returns the verdict.
// On the first iteration, a non-nil handoff is consulted before falling
// back to files: the developer may have published a fresher copy of the
// same generation over it (spec.md §4.6 step 5, suspension point 4).
func (r *Reviewer) Review(ctx context.Context, issue models.Issue, files models.GeneratedFileSet, projectDescription string, iteration int, handoff *models.ReviewHandoff) (*models.ReviewResult, error) {
	if iteration == 1 && handoff != nil {
		if msg, ok := handoff.Receive(ctx, models.ReviewHandoffTimeout); ok {
			files = msg.Files
		}
	}

	formatted := formatFiles(files)
	kb := r.kb()
	tokens := 0

	lintResult, lintTokens := r.runLintStage(ctx, issue, files)
	tokens += lintTokens

	completeness, completenessTokens, completenessFailed := r.runCompleteness(ctx, issue, formatted, projectDescription)
	tokens += completenessTokens

	security, securityTokens, securityFailed := r.runPerFileDimension(ctx, issue, files, "reviewer_security", func(language string) string {
		return kb.SecurityFor(language)
	})
	tokens += securityTokens

	standards, standardsTokens, standardsFailed := r.runPerFileDimension(ctx, issue, files, "reviewer_standards", func(language string) string {
		return kb.StandardsFor(language)
	})
	tokens += standardsTokens

	if completenessFailed && securityFailed && standardsFailed {
		return nil, ErrAllDimensionsFailed
	}

	result := &models.ReviewResult{
		Completeness: completeness,
		Security:     security,
		Standards:    standards,
		Lint:         lintResult,
		TokensUsed:   tokens,
		Iteration:    iteration,
	}
	result.Aggregate(r.threshold())

	r.persist(ctx, issue.Key, *result, iteration)

	return result, nil
}

func (r *Reviewer) threshold() float64 {
	if r.Threshold > 0 {
		return r.Threshold
	}
	return 70.0
}

func (r *Reviewer) kb() *KnowledgeBase {
	if r.KB != nil {
		return r.KB
	}
	return DefaultKnowledgeBase()
}

func (r *Reviewer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// runLintStage is stage 3: static-lint pass over lint-supported files,
// filtered of cosmetic findings, scored by an LLM prompt. A nil Lint port,
// a lint error, or a malformed score response all degrade gracefully to a
// default score since lint is reported but never weighted.
func (r *Reviewer) runLintStage(ctx context.Context, issue models.Issue, files models.GeneratedFileSet) (models.DimensionResult, int) {
	if r.Lint == nil {
		return models.DimensionResult{Score: defaultDimensionScore, Reasoning: "lint port not configured"}, 0
	}

	lintFiles := make(map[string]string)
	for name, content := range files {
		if LintSupportedLanguages[LanguageFromFilename(name)] {
			lintFiles[name] = content
		}
	}
	if len(lintFiles) == 0 {
		return models.DimensionResult{Score: defaultDimensionScore, Reasoning: "no lint-supported files"}, 0
	}

	findings, err := r.Lint.LintFiles(ctx, lintFiles)
	if err != nil {
		r.logger().Warn("lint stage failed", "issue", issue.Key, "error", err)
		return models.DimensionResult{Score: defaultDimensionScore, Reasoning: "lint port error: " + err.Error()}, 0
	}
	findings = ports.FilterCosmetic(findings, ports.CosmeticSymbols)

	findingsJSON, err := json.Marshal(findings)
	if err != nil {
		return models.DimensionResult{Score: defaultDimensionScore, Reasoning: "could not marshal findings"}, 0
	}

	prompt, err := r.Templates.Format("reviewer_lint_score", map[string]string{
		"issue_key":          issue.Key,
		"lint_findings_json": string(findingsJSON),
	})
	if err != nil {
		return models.DimensionResult{Score: defaultDimensionScore, Reasoning: "template error"}, 0
	}

	text, tokens, err := r.LLM.Call(ctx, prompt, string(models.AgentReviewer), llm.Options{Model: r.Model})
	if err != nil {
		return models.DimensionResult{Score: defaultDimensionScore, Reasoning: "LLM error scoring lint"}, 0
	}

	var resp lintScoreResponse
	if err := jsonx.Extract(text, &resp); err != nil {
		return models.DimensionResult{Score: defaultDimensionScore, Reasoning: "malformed lint score response"}, tokens
	}
	return models.DimensionResult{Score: resp.Score, Reasoning: resp.Reasoning}, tokens
}

// runCompleteness is stage 4: a single LLM call over the whole file set.
func (r *Reviewer) runCompleteness(ctx context.Context, issue models.Issue, formatted, projectDescription string) (models.DimensionResult, int, bool) {
	prompt, err := r.Templates.Format("reviewer_completeness", map[string]string{
		"issue_key":           issue.Key,
		"project_description": projectDescription,
		"files_formatted":     formatted,
	})
	if err != nil {
		return failedDimension("completeness: template error"), 0, true
	}

	text, tokens, err := r.LLM.Call(ctx, prompt, string(models.AgentReviewer), llm.Options{Model: r.Model})
	if err != nil {
		return failedDimension("completeness analysis failed: " + err.Error()), 0, true
	}

	var resp scoredResponse
	if err := jsonx.Extract(text, &resp); err != nil {
		return failedDimension("completeness analysis returned malformed output"), tokens, true
	}
	return models.DimensionResult{Score: resp.Score, Mistakes: resp.Mistakes, Reasoning: resp.Reasoning}, tokens, false
}

// runPerFileDimension is stages 5/6: one LLM call per file against a
// guideline string, aggregated by averaging successful scores and unioning
// mistakes. The dimension only counts as failed if every file's call fails.
func (r *Reviewer) runPerFileDimension(ctx context.Context, issue models.Issue, files models.GeneratedFileSet, template string, guidelinesFor func(language string) string) (models.DimensionResult, int, bool) {
	names := files.Filenames()
	if len(names) == 0 {
		return failedDimension(template + ": no files to analyze"), 0, true
	}

	var (
		scores   []float64
		mistakes []string
		seen     = make(map[string]bool)
		tokens   int
		failures int
	)

	for _, name := range names {
		guidelines := guidelinesFor(LanguageFromFilename(name))
		prompt, err := r.Templates.Format(template, map[string]string{
			"issue_key":            issue.Key,
			"security_guidelines":  guidelines,
			"standards_guidelines": guidelines,
			"files_formatted":      formatSingleFile(name, files[name]),
		})
		if err != nil {
			failures++
			continue
		}

		text, fileTokens, err := r.LLM.Call(ctx, prompt, string(models.AgentReviewer), llm.Options{Model: r.Model})
		tokens += fileTokens
		if err != nil {
			failures++
			continue
		}

		var resp scoredResponse
		if err := jsonx.Extract(text, &resp); err != nil {
			failures++
			continue
		}
		scores = append(scores, resp.Score)
		for _, m := range resp.Mistakes {
			if !seen[m] {
				seen[m] = true
				mistakes = append(mistakes, m)
			}
		}
	}

	if failures == len(names) {
		return failedDimension(fmt.Sprintf("%s: all %d file analyses failed", template, len(names))), tokens, true
	}

	return models.DimensionResult{Score: meanOf(scores), Mistakes: mistakes}, tokens, false
}

func failedDimension(reason string) models.DimensionResult {
	return models.DimensionResult{Score: defaultDimensionScore, Mistakes: []string{reason}, Reasoning: reason}
}

func meanOf(scores []float64) float64 {
	if len(scores) == 0 {
		return defaultDimensionScore
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// persist is stage 8: record the full result via the metrics port. A nil
// Metrics port or a recording error is logged but never fails the review.
func (r *Reviewer) persist(ctx context.Context, issueKey string, result models.ReviewResult, iteration int) {
	if r.Metrics == nil {
		return
	}
	agentID := "001"
	if iteration > 1 {
		agentID = "003"
	}
	err := r.Metrics.RecordReview(ctx, ports.RecordedReview{
		IssueKey:  issueKey,
		Review:    result,
		Iteration: iteration,
		AgentID:   agentID,
	})
	if err != nil {
		r.logger().Warn("failed to persist review", "issue", issueKey, "error", err)
	}
}

// formatFiles is stage 1: a single concatenated view delimited by filename
// markers, in deterministic filename order.
func formatFiles(files models.GeneratedFileSet) string {
	names := files.Filenames()
	var b strings.Builder
	for _, name := range names {
		b.WriteString(formatSingleFile(name, files[name]))
	}
	return b.String()
}

func formatSingleFile(name, content string) string {
	return fmt.Sprintf("--- %s ---\n%s\n\n", name, content)
}
