package models

// FileMemoryEntry is one remembered generated file: its content plus
// lightweight metadata about when/why it was produced.
type FileMemoryEntry struct {
	Metadata map[string]string `json:"metadata,omitempty"`
	Content  string            `json:"content"`
}

// ProjectMemory is a soft cache of prior artifacts and lessons, keyed by
// filename and by feedback text. Scope: per planner/developer instance
// (process-wide); never shared across pipelines unless explicitly composed.
//
// This type is a plain value — safe copy semantics for snapshot/update.
// Callers never receive a pointer into a live store; see
// pkg/developer.MemoryStore for the mutex-guarded owner.
type ProjectMemory struct {
	AllGeneratedFiles  map[string]FileMemoryEntry `json:"all_generated_files"`
	FileRelationships  map[string][]string        `json:"file_relationships"`
	CumulativeMistakes []string                   `json:"cumulative_mistakes"`
	ResolvedMistakes   []string                   `json:"resolved_mistakes"`
	IssueHistory       []string                   `json:"issue_history"`
}

// NewProjectMemory returns an empty, ready-to-use memory value.
func NewProjectMemory() ProjectMemory {
	return ProjectMemory{
		AllGeneratedFiles: make(map[string]FileMemoryEntry),
		FileRelationships: make(map[string][]string),
	}
}

// Clone returns a deep-enough copy for safe external use (snapshot semantics).
func (m ProjectMemory) Clone() ProjectMemory {
	out := ProjectMemory{
		AllGeneratedFiles:  make(map[string]FileMemoryEntry, len(m.AllGeneratedFiles)),
		FileRelationships:  make(map[string][]string, len(m.FileRelationships)),
		CumulativeMistakes: append([]string{}, m.CumulativeMistakes...),
		ResolvedMistakes:   append([]string{}, m.ResolvedMistakes...),
		IssueHistory:       append([]string{}, m.IssueHistory...),
	}
	for k, v := range m.AllGeneratedFiles {
		out.AllGeneratedFiles[k] = v
	}
	for k, v := range m.FileRelationships {
		out.FileRelationships[k] = append([]string{}, v...)
	}
	return out
}
