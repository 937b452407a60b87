// Package jsonx recovers structured JSON values from raw LLM output. Model
// responses routinely wrap JSON in markdown code fences, add leading prose,
// or emit near-valid JSON (smart quotes, trailing commas). Extract never
// guesses semantics: it either returns a parsed value or a MalformedOutput
// error carrying a preview of what it saw.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedOutput is returned when no balanced JSON span could be parsed,
// even after the one-shot repair pass. Preview is truncated to keep error
// logs bounded.
type MalformedOutput struct {
	Preview string
}

func (e *MalformedOutput) Error() string {
	return fmt.Sprintf("malformed model output, could not recover JSON: %q", e.Preview)
}

const previewLimit = 200

func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "..."
}

// Extract runs the three-stage tolerant pipeline: strip code fences,
// locate and slice the first balanced top-level JSON span, then parse
// (retrying once after a repair pass on failure). The result is unmarshaled
// into out (a pointer), matching encoding/json.Unmarshal's contract.
func Extract(raw string, out any) error {
	stripped := stripCodeFences(raw)

	span, ok := balancedSpan(stripped)
	if !ok {
		return &MalformedOutput{Preview: preview(raw)}
	}

	if err := json.Unmarshal([]byte(span), out); err == nil {
		return nil
	}

	repaired := repair(span)
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return &MalformedOutput{Preview: preview(raw)}
	}
	return nil
}

// stripCodeFences removes ``` / ```json wrappers, keeping interior content.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (``` or ```json etc.)
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return s
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// balancedSpan locates the first top-level '{' or '[' and walks brace/
// bracket depth (respecting string escaping) to find the matching close,
// returning the balanced substring.
func balancedSpan(s string) (string, bool) {
	start := -1
	var openCh, closeCh byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			openCh = s[i]
			if openCh == '{' {
				closeCh = '}'
			} else {
				closeCh = ']'
			}
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repair performs a one-shot best-effort fixup: normalize smart quotes to
// ASCII quotes and strip trailing commas before a closing brace/bracket.
func repair(s string) string {
	replacer := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	s = replacer.Replace(s)

	var out bytes.Buffer
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}
		if c == ',' {
			// look ahead past whitespace for a closing brace/bracket
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the trailing comma
			}
		}
		out.WriteByte(c)
	}
	return out.String()
}
