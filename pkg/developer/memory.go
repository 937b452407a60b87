package developer

import (
	"strings"
	"sync"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
)

// MemoryStore is the mutex-guarded owner of a ProjectMemory value. Memory
// is one of the pipeline's few mutable shared structures (spec.md §5); all
// access goes through O(1)-ish critical sections, matching the
// single-mutex idiom used for the telemetry aggregator and activity ring.
type MemoryStore struct {
	mu     sync.Mutex
	memory models.ProjectMemory
}

// NewMemoryStore returns an empty, ready-to-use store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memory: models.NewProjectMemory()}
}

// Snapshot returns a deep-enough copy safe for read-only use outside the lock.
func (s *MemoryStore) Snapshot() models.ProjectMemory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.Clone()
}

// RelatedFiles selects previously generated files whose names share any
// keyword with title — the "memory context" step of generation mode
// (spec.md §4.6 step 1).
func (s *MemoryStore) RelatedFiles(title string) models.GeneratedFileSet {
	keywords := keywordsOf(title)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(models.GeneratedFileSet)
	for name, entry := range s.memory.AllGeneratedFiles {
		nameKeywords := keywordsOf(name)
		if sharesKeyword(keywords, nameKeywords) {
			out[name] = entry.Content
		}
	}
	return out
}

// RecordGeneration appends newly generated files to memory, extracts their
// relationships, and appends issueKey to history (spec.md §4.6 step 4).
func (s *MemoryStore) RecordGeneration(issueKey string, files models.GeneratedFileSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, content := range files {
		s.memory.AllGeneratedFiles[name] = models.FileMemoryEntry{
			Metadata: map[string]string{"issue_key": issueKey},
			Content:  content,
		}
		s.memory.FileRelationships[name] = extractReferences(content)
	}
	s.memory.IssueHistory = append(s.memory.IssueHistory, issueKey)
}

// AccumulateFeedback deduplicates new feedback against cumulative_mistakes
// and appends the unseen entries (spec.md §4.6 correction step 1).
func (s *MemoryStore) AccumulateFeedback(feedback []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.memory.CumulativeMistakes))
	for _, m := range s.memory.CumulativeMistakes {
		seen[m] = true
	}
	for _, f := range feedback {
		if !seen[f] {
			s.memory.CumulativeMistakes = append(s.memory.CumulativeMistakes, f)
			seen[f] = true
		}
	}
}

// ResolveFeedback moves applied feedback items from cumulative_mistakes to
// resolved_mistakes (spec.md §4.6 correction step 3).
func (s *MemoryStore) ResolveFeedback(applied []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := make(map[string]bool, len(applied))
	for _, a := range applied {
		resolved[a] = true
	}
	remaining := s.memory.CumulativeMistakes[:0:0]
	for _, m := range s.memory.CumulativeMistakes {
		if resolved[m] {
			s.memory.ResolvedMistakes = append(s.memory.ResolvedMistakes, m)
		} else {
			remaining = append(remaining, m)
		}
	}
	s.memory.CumulativeMistakes = remaining
}

// CumulativeMistakes returns the current deduplicated feedback list.
func (s *MemoryStore) CumulativeMistakes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.memory.CumulativeMistakes...)
}

func keywordsOf(s string) map[string]bool {
	out := make(map[string]bool)
	var b strings.Builder
	flush := func() {
		if b.Len() >= 3 {
			out[strings.ToLower(b.String())] = true
		}
		b.Reset()
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}

func sharesKeyword(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// extractReferences is a lightweight import/reference pattern match: it
// collects tokens following "import"/"from"/"require"/"#include" style
// keywords across common languages, good enough to seed file relationships
// without a real parser (spec.md §4.6 step 4).
func extractReferences(content string) []string {
	var refs []string
	seen := make(map[string]bool)
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		var token string
		switch {
		case strings.HasPrefix(trimmed, "import "):
			token = strings.TrimSpace(strings.TrimPrefix(trimmed, "import "))
		case strings.HasPrefix(trimmed, "from ") && strings.Contains(trimmed, "import"):
			token = strings.TrimSpace(strings.Fields(trimmed)[1])
		case strings.HasPrefix(trimmed, "require("):
			token = strings.TrimPrefix(trimmed, "require(")
		case strings.HasPrefix(trimmed, "#include"):
			token = strings.TrimSpace(strings.TrimPrefix(trimmed, "#include"))
		default:
			continue
		}
		token = strings.Trim(token, "\"'();,` \t")
		if token != "" && !seen[token] {
			seen[token] = true
			refs = append(refs, token)
		}
	}
	return refs
}
