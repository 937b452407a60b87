// Package llm provides the single-call LLM adapter contract every agent
// subgraph uses: (prompt, logical agent name, options) -> (text, tokens).
package llm

import (
	"context"
	"errors"
)

// ErrLLMUnavailable is returned after the adapter's retry budget is
// exhausted. The pipeline treats this as a node error (spec.md §7).
var ErrLLMUnavailable = errors.New("LLMUnavailable")

// Options carries the optional per-call overrides from spec.md §6.
type Options struct {
	MaxTokens   int
	Temperature float64
	Model       string // overrides the agent's configured default model
}

// Client is the Go-side LLM port: a single operation returning response
// text and an integer token count. Implementations must be stateless and
// safe for concurrent use (no mutable fields besides an inherently
// concurrency-safe SDK client).
type Client interface {
	Call(ctx context.Context, prompt string, agentName string, opts Options) (text string, tokens int, err error)
}

// CharHeuristicTokens is the token-count fallback used when the underlying
// provider does not report usage metadata, so telemetry is always
// non-zero (spec.md §4.2).
func CharHeuristicTokens(text string) int {
	n := len(text) / 4
	if n == 0 && text != "" {
		n = 1
	}
	return n
}
