package ports

import "context"

// QualityPR identifies the most recent pull request known to the
// code-quality service.
type QualityPR struct {
	Key       string
	Title     string
	Branch    string
	UpdatedAt string
}

// QualityIssue is one issue reported by the code-quality service
// (bug, vulnerability, code smell, security hotspot, ...).
type QualityIssue struct {
	Type     string // "BUG", "VULNERABILITY", "CODE_SMELL", "SECURITY_HOTSPOT"
	Severity string
	Message  string
}

// Quality is the external code-quality service port.
type Quality interface {
	LatestPR(ctx context.Context) (QualityPR, error)
	Issues(ctx context.Context, prKey string) ([]QualityIssue, error)
	Measures(ctx context.Context, project string, metricKeys []string) (map[string]float64, error)
	PRFiles(ctx context.Context, prKey string) ([]string, error)
}
