package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/developer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/orchestrator"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/planner"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/reviewer"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/telemetry"
)

func init() { gin.SetMode(gin.TestMode) }

type stubMetrics struct {
	days   []models.DailyMetrics
	agents []ports.AgentSummary
}

func (s *stubMetrics) RecordReview(context.Context, ports.RecordedReview) error { return nil }
func (s *stubMetrics) UpsertDaily(context.Context, string, models.MetricsDelta) error {
	return nil
}
func (s *stubMetrics) GetLast7Days(context.Context) ([]models.DailyMetrics, error) {
	return s.days, nil
}
func (s *stubMetrics) GetAgentsSummary(context.Context) ([]ports.AgentSummary, error) {
	return s.agents, nil
}

type stubTracker struct{}

func (stubTracker) ListTodo(context.Context, string) ([]models.Issue, error) { return nil, nil }
func (stubTracker) Transition(context.Context, string, string) error         { return nil }

// blockingTracker holds ListTodo open until the test releases it, so
// StartAutomation's idempotency can be exercised deterministically instead
// of racing a near-instant no-op session.
type blockingTracker struct{ release chan struct{} }

func (b blockingTracker) ListTodo(ctx context.Context, _ string) ([]models.Issue, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil, nil
}
func (blockingTracker) Transition(context.Context, string, string) error { return nil }

func buildServer(t *testing.T) *Server {
	t.Helper()
	metrics := &stubMetrics{
		days:   []models.DailyMetrics{{Date: "2026-07-31", TasksCompleted: 3}},
		agents: []ports.AgentSummary{{Agent: models.AgentDeveloper, Tasks: 3, Tokens: 900, SuccessRate: 1, Model: "gpt-x"}},
	}
	orch := &orchestrator.Orchestrator{
		Tracker: stubTracker{},
		Metrics: metrics,
		Config:  orchestrator.Config{MaxRebuildAttempts: 2, ReviewBranchName: "review"},
	}
	return &Server{
		Orchestrator: orch,
		Telemetry:    telemetry.New(),
		Planner:      &planner.Planner{ScoreThreshold: 80},
		Reviewer:     &reviewer.Reviewer{Threshold: 75},
		Developer:    &developer.Developer{Parallelism: 4},
	}
}

func doRequest(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatusAndStats(t *testing.T) {
	s := buildServer(t)
	s.Telemetry.RecordWorkflow()
	s.Telemetry.RecordTokens(models.AgentDeveloper, 42)
	r := s.NewRouter()

	rec := doRequest(r, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)
	assert.Equal(t, 1, status.WorkflowsExecuted)

	rec = doRequest(r, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 42, stats.TokensByAgent[models.AgentDeveloper])
}

func TestActivityReturnsRing(t *testing.T) {
	s := buildServer(t)
	s.Telemetry.AppendActivity(models.AgentReviewer, "review", "ok", models.ActivitySuccess, "DEMO-1")
	r := s.NewRouter()

	rec := doRequest(r, http.MethodGet, "/api/activity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var activity activityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &activity))
	require.Len(t, activity.Events, 1)
	assert.Equal(t, "DEMO-1", activity.Events[0].IssueID)
}

func TestPerformanceEndpoints(t *testing.T) {
	s := buildServer(t)
	r := s.NewRouter()

	rec := doRequest(r, http.MethodGet, "/api/performance-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2026-07-31")

	rec = doRequest(r, http.MethodGet, "/api/performance/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var agents agentsSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agents))
	require.Len(t, agents.Agents, 1)
	assert.Equal(t, "gpt-x", agents.Agents[0].Model)
}

func TestGetAndUpdateEnv(t *testing.T) {
	s := buildServer(t)
	r := s.NewRouter()

	rec := doRequest(r, http.MethodGet, "/api/env", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 2, env.MaxRebuildAttempts)

	rec = doRequest(r, http.MethodPost, "/api/env/update", []byte(`{"max_rebuild_attempts": 5}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 5, env.MaxRebuildAttempts)
	assert.Equal(t, 5, s.Orchestrator.Config.MaxRebuildAttempts)
}

func TestStartStopAutomationAndResetStats(t *testing.T) {
	s := buildServer(t)
	tracker := blockingTracker{release: make(chan struct{})}
	s.Orchestrator.Tracker = tracker
	r := s.NewRouter()

	rec := doRequest(r, http.MethodPost, "/api/start-automation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "started")

	rec = doRequest(r, http.MethodPost, "/api/start-automation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already running")

	close(tracker.release)
	rec = doRequest(r, http.MethodPost, "/api/stop-automation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stopped")

	s.Telemetry.RecordWorkflow()
	rec = doRequest(r, http.MethodPost, "/api/reset-stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.Telemetry.Snapshot().WorkflowsExecuted)
}

func TestCORSHeadersArePermissive(t *testing.T) {
	s := buildServer(t)
	r := s.NewRouter()

	rec := doRequest(r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
