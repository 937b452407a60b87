package reviewer

import "strings"

// KnowledgeBase is the read-only registry of static coding standards and
// security guidelines consulted by the standards/security analyses
// (spec.md §4.7 stage 2). Missing entries fall back to "general best
// practice" rather than erroring.
type KnowledgeBase struct {
	Security  map[string]string // language -> guidelines text
	Standards map[string]string // language -> guidelines text
}

const generalBestPractice = "Follow general best practice: validate inputs, handle errors explicitly, avoid unused code, keep functions small and well-named."

// DefaultKnowledgeBase returns the built-in registry covering the
// languages the lint port supports.
func DefaultKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		Security: map[string]string{
			"go":         "Never ignore returned errors. Avoid unchecked string concatenation into SQL or shell commands. Use crypto/rand for secrets, not math/rand.",
			"python":     "Avoid eval/exec on untrusted input. Use parameterized queries. Avoid pickling untrusted data.",
			"javascript": "Avoid eval and untrusted innerHTML assignment. Validate and encode all external input.",
			"typescript": "Avoid eval and untrusted innerHTML assignment. Validate and encode all external input.",
		},
		Standards: map[string]string{
			"go":         "Exported identifiers need doc comments. Errors wrap context with fmt.Errorf(\"...: %w\", err). Prefer early returns over deep nesting.",
			"python":     "Follow PEP 8 naming and layout. Type-annotate public functions.",
			"javascript": "Prefer const/let over var. Use strict equality.",
			"typescript": "Prefer const/let over var. Use strict equality. Avoid any where a concrete type is available.",
		},
	}
}

// SecurityFor returns the security guidelines for language, falling back
// to general best practice when no language-specific entry exists.
func (kb *KnowledgeBase) SecurityFor(language string) string {
	return lookup(kb.Security, language)
}

// StandardsFor returns the coding-standards guidelines for language,
// falling back to general best practice when no entry exists.
func (kb *KnowledgeBase) StandardsFor(language string) string {
	return lookup(kb.Standards, language)
}

func lookup(m map[string]string, language string) string {
	if g, ok := m[strings.ToLower(language)]; ok {
		return g
	}
	return generalBestPractice
}

// LanguageFromFilename infers a coarse language id from a file's extension,
// good enough to select a knowledge-base entry or skip the lint pass.
func LanguageFromFilename(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".go"):
		return "go"
	case strings.HasSuffix(filename, ".py"):
		return "python"
	case strings.HasSuffix(filename, ".ts"), strings.HasSuffix(filename, ".tsx"):
		return "typescript"
	case strings.HasSuffix(filename, ".js"), strings.HasSuffix(filename, ".jsx"):
		return "javascript"
	default:
		return ""
	}
}

// LintSupportedLanguages is the set of languages the lint port accepts
// (spec.md §4.7 stage 3).
var LintSupportedLanguages = map[string]bool{
	"go":         true,
	"python":     true,
	"javascript": true,
	"typescript": true,
}
