// Package httptracker implements ports.Tracker against a generic JSON/HTTP
// work-tracker backend, grounded on the teacher's pkg/runbook.GitHubClient
// (bearer-token-authenticated http.Client with a fixed timeout, decoding
// JSON responses into small wire-shape structs).
package httptracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

// Tracker implements ports.Tracker against a REST-style tracker API
// exposing GET /issues?project=... and POST /issues/{key}/transitions.
type Tracker struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New creates a tracker client. baseURL has no trailing slash.
func New(baseURL, token string) *Tracker {
	return &Tracker{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

type issueWire struct {
	Key         string                `json:"key"`
	Title       string                `json:"title"`
	Description ports.DescriptionNode `json:"description"`
}

// ListTodo fetches the project's to-do issues, flattening each issue's
// structured description via ports.FlattenDescription (spec.md §6).
func (t *Tracker) ListTodo(ctx context.Context, project string) ([]models.Issue, error) {
	url := fmt.Sprintf("%s/issues?project=%s&status=todo", t.baseURL, project)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	t.setAuthHeader(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list todo issues for %s: %w", project, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker returned HTTP %d for project %q", resp.StatusCode, project)
	}

	var wire []issueWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode issues response: %w", err)
	}

	issues := make([]models.Issue, 0, len(wire))
	for _, w := range wire {
		issues = append(issues, models.Issue{
			Key:         w.Key,
			Title:       w.Title,
			Description: ports.FlattenDescription(w.Description),
		})
	}
	return issues, nil
}

// Transition moves key through the named workflow transition.
func (t *Tracker) Transition(ctx context.Context, key, transitionName string) error {
	payload, err := json.Marshal(map[string]string{"transition": transitionName})
	if err != nil {
		return fmt.Errorf("marshal transition request: %w", err)
	}

	url := fmt.Sprintf("%s/issues/%s/transitions", t.baseURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	t.setAuthHeader(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transition %s to %s: %w", key, transitionName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("tracker returned HTTP %d transitioning %s", resp.StatusCode, key)
	}
	return nil
}

func (t *Tracker) setAuthHeader(req *http.Request) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
}

var _ ports.Tracker = (*Tracker)(nil)
