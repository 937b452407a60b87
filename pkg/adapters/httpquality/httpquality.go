// Package httpquality implements ports.Quality against a SonarQube-style
// code-quality HTTP service, grounded on the teacher's pkg/runbook JSON/HTTP
// client idiom (bearer-token auth, decode-into-wire-struct).
package httpquality

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

// Quality implements ports.Quality against a quality-service REST API.
type Quality struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New creates a quality-service client. baseURL has no trailing slash.
func New(baseURL, token string) *Quality {
	return &Quality{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

// LatestPR returns the most recently analyzed pull request.
func (q *Quality) LatestPR(ctx context.Context) (ports.QualityPR, error) {
	var pr ports.QualityPR
	if err := q.getJSON(ctx, "/api/pull_requests/latest", &pr); err != nil {
		return ports.QualityPR{}, fmt.Errorf("latest PR: %w", err)
	}
	return pr, nil
}

// Issues returns every issue (bug, vulnerability, code smell, hotspot)
// reported against prKey.
func (q *Quality) Issues(ctx context.Context, prKey string) ([]ports.QualityIssue, error) {
	var body struct {
		Issues []ports.QualityIssue `json:"issues"`
	}
	path := fmt.Sprintf("/api/issues/search?pullRequest=%s", url.QueryEscape(prKey))
	if err := q.getJSON(ctx, path, &body); err != nil {
		return nil, fmt.Errorf("issues for %s: %w", prKey, err)
	}
	return body.Issues, nil
}

// Measures fetches the named project-level metric values.
func (q *Quality) Measures(ctx context.Context, project string, metricKeys []string) (map[string]float64, error) {
	keys := ""
	for i, k := range metricKeys {
		if i > 0 {
			keys += ","
		}
		keys += k
	}

	var body struct {
		Component struct {
			Measures []struct {
				Metric string `json:"metric"`
				Value  string `json:"value"`
			} `json:"measures"`
		} `json:"component"`
	}
	path := fmt.Sprintf("/api/measures/component?component=%s&metricKeys=%s", url.QueryEscape(project), url.QueryEscape(keys))
	if err := q.getJSON(ctx, path, &body); err != nil {
		return nil, fmt.Errorf("measures for %s: %w", project, err)
	}

	out := make(map[string]float64, len(body.Component.Measures))
	for _, m := range body.Component.Measures {
		var v float64
		if _, err := fmt.Sscanf(m.Value, "%g", &v); err == nil {
			out[m.Metric] = v
		}
	}
	return out, nil
}

// PRFiles lists the filenames touched by prKey.
func (q *Quality) PRFiles(ctx context.Context, prKey string) ([]string, error) {
	var body struct {
		Files []string `json:"files"`
	}
	path := fmt.Sprintf("/api/pull_requests/%s/files", url.QueryEscape(prKey))
	if err := q.getJSON(ctx, path, &body); err != nil {
		return nil, fmt.Errorf("files for %s: %w", prKey, err)
	}
	return body.Files, nil
}

func (q *Quality) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if q.token != "" {
		req.Header.Set("Authorization", "Bearer "+q.token)
	}

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quality service returned HTTP %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

var _ ports.Quality = (*Quality)(nil)
