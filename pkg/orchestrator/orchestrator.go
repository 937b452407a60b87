// Package orchestrator drives the per-issue pipeline state machine (spec.md
// §4.8): planner → assembler → developer → reviewer, with a bounded
// reviewer↔rebuilder cycle, a PR node, and a trailing quality-scan node.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/assembler"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/developer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/planner"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/qualityscore"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/reviewer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/telemetry"
)

// ErrStopTimeout is returned by StopAutomation when the running session does
// not terminate within the 5 s bound (spec.md §6 control surface).
var ErrStopTimeout = errors.New("orchestrator: session did not stop within the timeout")

// Config carries the named settings spec.md §6 lists as environment-backed.
type Config struct {
	Project            string
	MaxRebuildAttempts int
	ReviewBranchName   string
	DefaultBranch      string
	QualityProject     string
}

// Orchestrator owns every subgraph and port this pipeline needs, plus the
// single-session concurrency registry (grounded on the teacher's
// session-cancel-registry idiom: one cancel func per active run, guarded by
// its own mutex).
type Orchestrator struct {
	Tracker ports.Tracker
	Repo    ports.Repo
	Quality ports.Quality
	Metrics ports.Metrics

	Planner   *planner.Planner
	Assembler *assembler.Assembler
	Developer *developer.Developer
	Reviewer  *reviewer.Reviewer

	Telemetry *telemetry.Aggregator
	Config    Config
	Logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// IsRunning reports whether an automation session is currently active.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancel != nil
}

// StartAutomation launches one pipeline session in the background.
// Idempotent: calling it while a session is active returns alreadyRunning=true
// without starting a second session (spec.md §6).
func (o *Orchestrator) StartAutomation(ctx context.Context) (alreadyRunning bool, err error) {
	o.mu.Lock()
	if o.cancel != nil {
		o.mu.Unlock()
		return true, nil
	}
	sessionCtx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	done := make(chan struct{})
	o.done = done
	o.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			o.mu.Lock()
			o.cancel = nil
			o.done = nil
			o.mu.Unlock()
		}()
		o.runSession(sessionCtx)
	}()

	return false, nil
}

// StopAutomation cancels the active session and waits up to 5 s for it to
// finish (spec.md §6: "stop-automation must terminate within 5 s").
func (o *Orchestrator) StopAutomation() error {
	o.mu.Lock()
	cancel := o.cancel
	done := o.done
	o.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		return ErrStopTimeout
	}
}

// runSession processes every to-do issue in tracker order, then runs the
// trailing quality scan (spec.md §5: "no overlap within a session").
func (o *Orchestrator) runSession(ctx context.Context) {
	o.Telemetry.RecordWorkflow()

	issues, err := o.Tracker.ListTodo(ctx, o.Config.Project)
	if err != nil {
		o.Telemetry.RecordError()
		o.Telemetry.AppendActivity(models.AgentPlanner, "list_todo", err.Error(), models.ActivityError, "")
		return
	}

	for _, issue := range issues {
		select {
		case <-ctx.Done():
			return
		default:
		}
		o.runIssue(ctx, issue)
		o.Telemetry.RecordIssueProcessed()
	}

	o.runQualityScan(ctx)
}

// runIssue drives one issue through the full state machine.
func (o *Orchestrator) runIssue(ctx context.Context, issue models.Issue) {
	state := models.NewIssuePipelineState(issue.Key, issue)

	subtasks, err := o.runPlanning(ctx, state)
	if err != nil {
		o.finalizeError(state, models.ErrCodePlanningFailed, "planner", err)
		return
	}

	doc, err := o.runAssembly(ctx, state, subtasks)
	if err != nil {
		o.finalizeError(state, models.ErrCodeAssemblyFailed, "assembler", err)
		return
	}

	handoff := models.NewReviewHandoff()

	if err := o.runGeneration(ctx, state, doc, handoff); err != nil {
		o.finalizeError(state, models.ErrCodeGenerationFailed, "developer", err)
		return
	}

	if err := o.runReviewCycle(ctx, state, doc, handoff); err != nil {
		var code models.ErrorCode = models.ErrCodeReviewFailed
		if errors.Is(err, ErrRebuildExhausted) {
			code = models.ErrCodeRebuildExhausted
		}
		o.finalizeError(state, code, "reviewer", err)
		return
	}

	o.runPRNode(ctx, state)
}

// runPlanning repeats planning while the HITL gate rejects, up to the
// shared rebuild-attempt budget (spec.md §4.8: "reject → planner, increments
// a rebuild attempt").
func (o *Orchestrator) runPlanning(ctx context.Context, state *models.IssuePipelineState) ([]*models.Subtask, error) {
	for {
		result, err := o.Planner.Plan(ctx, state.Issue, state.ThreadID)
		if err != nil {
			return nil, err
		}
		state.Tokens.Add(models.AgentPlanner, result.Tokens)
		o.Telemetry.RecordTokens(models.AgentPlanner, result.Tokens)
		state.PlannerScore = result.Overall

		if !result.NeedsHuman {
			o.Telemetry.AppendActivity(models.AgentPlanner, "plan", fmt.Sprintf("method=%s overall=%.1f", result.Method, result.Overall), models.ActivitySuccess, state.Issue.Key)
			return result.Subtasks, nil
		}

		o.Telemetry.AppendActivity(models.AgentPlanner, "plan", "HITL rejected, re-planning", models.ActivityWarning, state.Issue.Key)
		state.RebuildAttempts++
		o.Telemetry.RecordRebuildCycle()
		if state.RebuildAttempts > o.maxRebuildAttempts() {
			return nil, fmt.Errorf("%w: planning rejected after %d attempts", ErrRebuildExhausted, state.RebuildAttempts)
		}
	}
}

func (o *Orchestrator) runAssembly(ctx context.Context, state *models.IssuePipelineState, subtasks []*models.Subtask) (*models.DeploymentDocument, error) {
	result, err := o.Assembler.Assemble(ctx, state.Issue, subtasks)
	if err != nil {
		return nil, err
	}
	state.Document = result.Document
	state.Tokens.Add(models.AgentAssembler, result.Tokens)
	o.Telemetry.RecordTokens(models.AgentAssembler, result.Tokens)
	o.Telemetry.AppendActivity(models.AgentAssembler, "assemble", fmt.Sprintf("%d files planned", len(result.Document.FileStructure.Files)), models.ActivitySuccess, state.Issue.Key)
	return result.Document, nil
}

func (o *Orchestrator) runGeneration(ctx context.Context, state *models.IssuePipelineState, doc *models.DeploymentDocument, handoff *models.ReviewHandoff) error {
	result, err := o.Developer.Generate(ctx, doc, state.Issue, state.ThreadID, handoff)
	if err != nil {
		return err
	}
	state.GeneratedFiles = result.Files
	state.Tokens.Add(models.AgentDeveloper, result.Tokens)
	o.Telemetry.RecordTokens(models.AgentDeveloper, result.Tokens)
	o.Telemetry.AppendActivity(models.AgentDeveloper, "generate", fmt.Sprintf("%d files generated", len(result.Files)), models.ActivitySuccess, state.Issue.Key)
	return nil
}

// ErrRebuildExhausted signals that the reviewer never approved within the
// configured rebuild-attempt budget.
var ErrRebuildExhausted = errors.New("orchestrator: rebuild attempts exhausted")

// runReviewCycle runs reviewer→rebuilder→reviewer until approval or budget
// exhaustion (spec.md §4.8, invariant I-1: reviewer entered at most
// MAX_REBUILD_ATTEMPTS+1 times).
func (o *Orchestrator) runReviewCycle(ctx context.Context, state *models.IssuePipelineState, doc *models.DeploymentDocument, handoff *models.ReviewHandoff) error {
	iteration := 1
	for {
		result, err := o.Reviewer.Review(ctx, state.Issue, state.GeneratedFiles, doc.ProjectOverview.Description, iteration, handoff)
		if err != nil {
			return err
		}
		state.LastReview = result
		state.Tokens.Add(models.AgentReviewer, result.TokensUsed)
		o.Telemetry.RecordTokens(models.AgentReviewer, result.TokensUsed)
		o.Telemetry.RecordReviewOutcome(result.Approved)

		status := models.ActivitySuccess
		if !result.Approved {
			status = models.ActivityWarning
		}
		o.Telemetry.AppendActivity(models.AgentReviewer, "review", fmt.Sprintf("overall=%.1f approved=%v", result.Overall, result.Approved), status, state.Issue.Key)

		if result.Approved {
			return nil
		}

		if state.RebuildAttempts >= o.maxRebuildAttempts() {
			return fmt.Errorf("%w: unreviewable after %d attempts", ErrRebuildExhausted, state.RebuildAttempts)
		}
		state.RebuildAttempts++
		o.Telemetry.RecordRebuildCycle()

		correction, err := o.Developer.Correct(ctx, state.GeneratedFiles, result.Mistakes, state.Issue)
		if err != nil {
			return err
		}
		state.GeneratedFiles = correction.Files
		state.Tokens.Add(models.AgentRebuilder, correction.Tokens)
		o.Telemetry.RecordTokens(models.AgentRebuilder, correction.Tokens)
		o.Telemetry.AppendActivity(models.AgentRebuilder, "rebuild", fmt.Sprintf("iteration=%d", iteration), models.ActivityInfo, state.Issue.Key)

		iteration++
	}
}

// runPRNode is spec.md §4.8's PR node: ensure the review branch, write every
// generated file, upsert the PR, then transition the tracker issue. None of
// these failures are fatal to the pipeline — they are recorded and the
// session proceeds to the next issue.
func (o *Orchestrator) runPRNode(ctx context.Context, state *models.IssuePipelineState) {
	branch := o.reviewBranchName()

	if err := o.Repo.EnsureBranch(ctx, branch); err != nil {
		o.recordPRFailure(state, err)
		return
	}

	for _, name := range state.GeneratedFiles.Filenames() {
		if err := o.Repo.PutFile(ctx, branch, name, state.GeneratedFiles[name]); err != nil {
			o.recordPRFailure(state, err)
			return
		}
	}

	title := ports.PRTitle(state.Issue.Key, state.GeneratedFiles)
	body := fmt.Sprintf("Automated change for %s: %s", state.Issue.Key, state.Issue.Title)
	url, err := o.Repo.UpsertPR(ctx, branch, o.defaultBranch(), title, body)
	if err != nil {
		o.recordPRFailure(state, err)
		return
	}

	state.PRURL = url
	state.PROutcome = "created"
	o.Telemetry.RecordPR()
	o.Telemetry.AppendActivity(models.AgentRebuilder, "pr", url, models.ActivitySuccess, state.Issue.Key)

	if err := o.Tracker.Transition(ctx, state.Issue.Key, "done"); err != nil {
		o.logger().Warn("tracker transition failed", "issue", state.Issue.Key, "error", err)
	} else {
		state.Transitioned = true
	}
}

func (o *Orchestrator) recordPRFailure(state *models.IssuePipelineState, err error) {
	state.PROutcome = "failed"
	o.logger().Warn("PR node failed", "issue", state.Issue.Key, "error", err)
	o.Telemetry.AppendActivity(models.AgentRebuilder, "pr", err.Error(), models.ActivityError, state.Issue.Key)
}

// runQualityScan is spec.md §4.8's trailing quality-scan node: runs once
// after the last issue in the session.
func (o *Orchestrator) runQualityScan(ctx context.Context) {
	if o.Quality == nil || o.Metrics == nil {
		return
	}

	pr, err := o.Quality.LatestPR(ctx)
	if err != nil {
		o.logger().Warn("quality scan: latest PR lookup failed", "error", err)
		return
	}

	issues, err := o.Quality.Issues(ctx, pr.Key)
	if err != nil {
		o.logger().Warn("quality scan: issues lookup failed", "error", err)
		return
	}

	measures, err := o.Quality.Measures(ctx, o.Config.QualityProject, []string{
		"sqale_rating", "reliability_rating", "security_rating",
		"alert_status", "coverage", "duplicated_lines_density",
	})
	if err != nil {
		o.logger().Warn("quality scan: measures lookup failed", "error", err)
		return
	}

	m := qualityscore.Measures{
		SqaleRating:            measures["sqale_rating"],
		ReliabilityRating:      measures["reliability_rating"],
		SecurityRating:         measures["security_rating"],
		Gate:                   gateStatusFromMeasure(measures["alert_status"]),
		Coverage:               measures["coverage"],
		DuplicatedLinesDensity: measures["duplicated_lines_density"],
	}
	for _, iss := range issues {
		switch iss.Type {
		case "BUG":
			m.Bugs++
		case "VULNERABILITY":
			m.Vulnerabilities++
		case "CODE_SMELL":
			m.CodeSmells++
		case "SECURITY_HOTSPOT":
			m.SecurityHotspots++
		}
	}

	score := qualityscore.Score(m)
	o.Telemetry.RecordQualityScore(score)

	date := time.Now().UTC().Format("2006-01-02")
	qs := score
	if err := o.Metrics.UpsertDaily(ctx, date, models.MetricsDelta{QualityScore: &qs}); err != nil {
		o.logger().Warn("quality scan: failed to record daily metrics", "error", err)
	}
}

func gateStatusFromMeasure(raw float64) qualityscore.GateStatus {
	// alert_status is reported as a rating-like numeric by some quality
	// services (1=OK, 2=WARN, 3=ERROR); unknown values default to WARN.
	switch raw {
	case 1:
		return qualityscore.GateOK
	case 3:
		return qualityscore.GateError
	default:
		return qualityscore.GateWarn
	}
}

func (o *Orchestrator) finalizeError(state *models.IssuePipelineState, code models.ErrorCode, node string, cause error) {
	state.SetError(code, node, cause)
	o.Telemetry.RecordError()
	o.Telemetry.AppendActivity(nodeAgent(node), node, cause.Error(), models.ActivityError, state.Issue.Key)
}

func nodeAgent(node string) models.AgentName {
	switch node {
	case "planner":
		return models.AgentPlanner
	case "assembler":
		return models.AgentAssembler
	case "developer":
		return models.AgentDeveloper
	case "reviewer":
		return models.AgentReviewer
	default:
		return models.AgentReviewer
	}
}

func (o *Orchestrator) maxRebuildAttempts() int {
	if o.Config.MaxRebuildAttempts < 0 {
		return 0
	}
	return o.Config.MaxRebuildAttempts
}

func (o *Orchestrator) reviewBranchName() string {
	if o.Config.ReviewBranchName == "" {
		return "agentic-orchestration-review"
	}
	return o.Config.ReviewBranchName
}

func (o *Orchestrator) defaultBranch() string {
	if o.Config.DefaultBranch == "" {
		return "main"
	}
	return o.Config.DefaultBranch
}
