package ports

import "context"

// LintFinding is one static-analysis result.
type LintFinding struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Symbol    string `json:"symbol"`
	MessageID string `json:"message_id"`
}

// Lint runs static analysis over a file set and returns findings.
type Lint interface {
	LintFiles(ctx context.Context, files map[string]string) ([]LintFinding, error)
}

// CosmeticSymbols is the default set of ignorable finding symbols: line
// length, trailing whitespace, missing final newline, and optional
// docstring classes (spec.md §4.7 stage 3).
var CosmeticSymbols = map[string]bool{
	"line-too-long":         true,
	"trailing-whitespace":   true,
	"missing-final-newline": true,
	"missing-docstring":     true,
}

// FilterCosmetic removes findings whose Symbol is in the cosmetic set.
func FilterCosmetic(findings []LintFinding, cosmetic map[string]bool) []LintFinding {
	out := make([]LintFinding, 0, len(findings))
	for _, f := range findings {
		if cosmetic[f.Symbol] {
			continue
		}
		out = append(out, f)
	}
	return out
}
