// Package promptlib holds named prompt templates loaded once at startup
// and substituted with named placeholders at call time.
package promptlib

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// ErrUnknownTemplate is returned by Format when name has no registered template.
type ErrUnknownTemplate struct{ Name string }

func (e *ErrUnknownTemplate) Error() string { return "unknown prompt template: " + e.Name }

// Registry holds immutable named templates. Safe for concurrent use after
// construction — nothing mutates past Load/Override.
type Registry struct {
	templates map[string]string
}

// Load reads every *.tmpl file embedded under templates/ and registers it
// under its basename (without extension), e.g. templates/planner_method.tmpl
// registers as "planner_method".
func Load() (*Registry, error) {
	r := &Registry{templates: make(map[string]string)}
	entries, err := builtinTemplates.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinTemplates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".tmpl")
		r.templates[name] = string(data)
	}
	return r, nil
}

// Override replaces or adds a template at runtime (e.g. an operator-supplied
// override directory, merged on top so later registrations win). Templates
// are otherwise read-only at runtime.
func (r *Registry) Override(name, body string) {
	r.templates[name] = body
}

// Format substitutes {{var}} placeholders in the named template with the
// values in vars. An unknown template name fails fast. A var referenced in
// the template but missing from vars is left as literal text (never
// raised), so a stale prompt is detectable in the model's output instead
// of silently disappearing.
func (r *Registry) Format(name string, vars map[string]string) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", &ErrUnknownTemplate{Name: name}
	}
	return substitute(tmpl, vars), nil
}

// substitute performs a single-pass scan replacing {{key}} tokens. Unlike
// text/template, an unresolved token is left verbatim rather than erroring.
func substitute(tmpl string, vars map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		start := strings.Index(tmpl[i:], "{{")
		if start == -1 {
			b.WriteString(tmpl[i:])
			break
		}
		start += i
		b.WriteString(tmpl[i:start])

		end := strings.Index(tmpl[start:], "}}")
		if end == -1 {
			b.WriteString(tmpl[start:])
			break
		}
		end += start

		key := strings.TrimSpace(tmpl[start+2 : end])
		if val, ok := vars[key]; ok {
			b.WriteString(val)
		} else {
			b.WriteString(tmpl[start : end+2])
		}
		i = end + 2
	}
	return b.String()
}
