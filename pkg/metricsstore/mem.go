package metricsstore

import (
	"context"
	"sort"
	"sync"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

// MemStore is an in-process ports.Metrics implementation for tests and
// local development, grounded on the teacher's pkg/session in-memory store
// (single mutex guarding a plain map).
type MemStore struct {
	mu      sync.Mutex
	daily   map[string]*models.DailyMetrics
	reviews []ports.RecordedReview
}

// NewMemStore returns an empty in-memory metrics store.
func NewMemStore() *MemStore {
	return &MemStore{daily: make(map[string]*models.DailyMetrics)}
}

func (m *MemStore) RecordReview(_ context.Context, r ports.RecordedReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *MemStore) UpsertDaily(_ context.Context, date string, delta models.MetricsDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	day, ok := m.daily[date]
	if !ok {
		day = models.NewDailyMetrics(date)
		m.daily[date] = day
	}
	day.Apply(delta)
	return nil
}

func (m *MemStore) GetLast7Days(_ context.Context) ([]models.DailyMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dates := make([]string, 0, len(m.daily))
	for d := range m.daily {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > 7 {
		dates = dates[:7]
	}

	out := make([]models.DailyMetrics, 0, len(dates))
	for _, d := range dates {
		out = append(out, *m.daily[d])
	}
	return out, nil
}

func (m *MemStore) GetAgentsSummary(_ context.Context) ([]ports.AgentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	success, failure := 0, 0
	totals := make(map[models.AgentName]*ports.AgentSummary)
	for _, day := range m.daily {
		success += day.SuccessCount
		failure += day.FailureCount
		for agent, activity := range day.AgentActivities {
			s, ok := totals[agent]
			if !ok {
				s = &ports.AgentSummary{Agent: agent}
				totals[agent] = s
			}
			s.Tasks += activity.TaskCompleted
			s.Tokens += activity.TokensUsed
			if activity.LLMModelUsed != "" {
				s.Model = activity.LLMModelUsed
			}
		}
	}

	ratio := 0.0
	if success+failure > 0 {
		ratio = float64(success) / float64(success+failure)
	}

	agents := make([]models.AgentName, 0, len(totals))
	for a := range totals {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })

	out := make([]ports.AgentSummary, 0, len(totals))
	for _, a := range agents {
		s := *totals[a]
		s.SuccessRate = ratio
		out = append(out, s)
	}
	return out, nil
}

var _ ports.Metrics = (*MemStore)(nil)
