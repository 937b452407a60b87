// Package telemetry implements the in-process counters and activity ring
// the control surface reads from (spec.md §4.9).
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
)

// Counters is an immutable snapshot of the aggregator's running totals.
type Counters struct {
	WorkflowsExecuted int
	IssuesProcessed   int
	PRsCreated        int
	TokensTotal       int
	TokensByAgent     map[models.AgentName]int
	RebuildCycles     int
	SuccessfulReviews int
	Errors            int

	// AverageQualityScore is QualitySum / QualityCount, or 0 with no samples.
	AverageQualityScore float64
	QualitySum          float64
	QualityCount        int
}

// Aggregator is the single-mutex owner of every in-process counter and the
// bounded activity ring (spec.md §5 shared-resource policy).
type Aggregator struct {
	mu sync.Mutex

	workflowsExecuted int
	issuesProcessed   int
	prsCreated        int
	tokensTotal       int
	tokensByAgent     map[models.AgentName]int
	rebuildCycles     int
	successfulReviews int
	errors            int
	qualitySum        float64
	qualityCount      int

	ring     []models.ActivityEvent // newest-first
	capacity int

	nextEventID int
	now         func() time.Time
}

// New returns an aggregator with the default 50-entry activity ring.
func New() *Aggregator {
	return &Aggregator{
		tokensByAgent: make(map[models.AgentName]int),
		capacity:      models.ActivityRingCapacity,
		now:           time.Now,
	}
}

// RecordWorkflow increments the workflows-executed counter.
func (a *Aggregator) RecordWorkflow() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.workflowsExecuted++
}

// RecordIssueProcessed increments the issues-processed counter.
func (a *Aggregator) RecordIssueProcessed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.issuesProcessed++
}

// RecordPR increments the PRs-created counter.
func (a *Aggregator) RecordPR() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prsCreated++
}

// RecordTokens adds tokens to both the running total and the named agent's
// sub-total (invariant I-2 token conservation relies on callers passing
// every node's tokens-used exactly once).
func (a *Aggregator) RecordTokens(agent models.AgentName, tokens int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokensTotal += tokens
	a.tokensByAgent[agent] += tokens
}

// RecordRebuildCycle increments the rebuild-cycles counter.
func (a *Aggregator) RecordRebuildCycle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rebuildCycles++
}

// RecordReviewOutcome increments successful-reviews when approved.
func (a *Aggregator) RecordReviewOutcome(approved bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if approved {
		a.successfulReviews++
	}
}

// RecordError increments the errors counter.
func (a *Aggregator) RecordError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errors++
}

// RecordQualityScore folds one quality-scan result into the running
// average (sum/count, same idempotent-averaging idiom as DailyMetrics).
func (a *Aggregator) RecordQualityScore(score float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.qualitySum += score
	a.qualityCount++
}

// Snapshot returns a point-in-time copy of every counter.
func (a *Aggregator) Snapshot() Counters {
	a.mu.Lock()
	defer a.mu.Unlock()

	byAgent := make(map[models.AgentName]int, len(a.tokensByAgent))
	for k, v := range a.tokensByAgent {
		byAgent[k] = v
	}

	avg := 0.0
	if a.qualityCount > 0 {
		avg = a.qualitySum / float64(a.qualityCount)
	}

	return Counters{
		WorkflowsExecuted:   a.workflowsExecuted,
		IssuesProcessed:     a.issuesProcessed,
		PRsCreated:          a.prsCreated,
		TokensTotal:         a.tokensTotal,
		TokensByAgent:       byAgent,
		RebuildCycles:       a.rebuildCycles,
		SuccessfulReviews:   a.successfulReviews,
		Errors:              a.errors,
		AverageQualityScore: avg,
		QualitySum:          a.qualitySum,
		QualityCount:        a.qualityCount,
	}
}

// AppendActivity records an event at the front of the ring, evicting the
// oldest entry once capacity is exceeded (invariant I-6).
func (a *Aggregator) AppendActivity(agent models.AgentName, action, details string, status models.ActivityStatus, issueID string) models.ActivityEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextEventID++
	event := models.ActivityEvent{
		EventID:   fmt.Sprintf("evt-%d", a.nextEventID),
		Timestamp: a.now(),
		Agent:     agent,
		Action:    action,
		Details:   details,
		Status:    status,
		IssueID:   issueID,
	}

	a.ring = append([]models.ActivityEvent{event}, a.ring...)
	if len(a.ring) > a.capacity {
		a.ring = a.ring[:a.capacity]
	}
	return event
}

// Activity returns a copy of the current newest-first ring.
func (a *Aggregator) Activity() []models.ActivityEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.ActivityEvent, len(a.ring))
	copy(out, a.ring)
	return out
}

// Reset zeroes every counter and clears the activity ring (the
// reset-stats control-surface operation).
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.workflowsExecuted = 0
	a.issuesProcessed = 0
	a.prsCreated = 0
	a.tokensTotal = 0
	a.tokensByAgent = make(map[models.AgentName]int)
	a.rebuildCycles = 0
	a.successfulReviews = 0
	a.errors = 0
	a.qualitySum = 0
	a.qualityCount = 0
	a.ring = nil
}
