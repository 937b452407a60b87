// Package httplint implements ports.Lint against a static-analysis HTTP
// service, grounded on the same bearer-token JSON/HTTP client shape as
// the teacher's pkg/runbook.GitHubClient.
package httplint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

// Lint implements ports.Lint against POST {baseURL}/lint.
type Lint struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New creates a lint-service client. baseURL has no trailing slash.
func New(baseURL, token string) *Lint {
	return &Lint{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

// LintFiles submits files for static analysis and returns every finding.
func (l *Lint) LintFiles(ctx context.Context, files map[string]string) ([]ports.LintFinding, error) {
	payload, err := json.Marshal(map[string]map[string]string{"files": files})
	if err != nil {
		return nil, fmt.Errorf("marshal lint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/lint", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if l.token != "" {
		req.Header.Set("Authorization", "Bearer "+l.token)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lint request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lint service returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Findings []ports.LintFinding `json:"findings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode lint response: %w", err)
	}
	return body.Findings, nil
}

var _ ports.Lint = (*Lint)(nil)
