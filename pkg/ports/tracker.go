// Package ports declares the capability interfaces the pipeline core
// consumes from its external collaborators: the work tracker, the
// source-repo, the static-lint service, the code-quality service and the
// metrics store. The core only ever depends on these interfaces — concrete
// implementations live under pkg/adapters and pkg/metricsstore.
package ports

import (
	"context"
	"regexp"
	"strings"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
)

// Tracker lists "to-do" issues and transitions their status.
type Tracker interface {
	ListTodo(ctx context.Context, project string) ([]models.Issue, error)
	Transition(ctx context.Context, key, transitionName string) error
}

// DescriptionNode is a nested structured description document, as some
// trackers deliver rich-text descriptions instead of plain strings.
type DescriptionNode struct {
	Text     string
	Kind     string // "paragraph", "heading", "list_item", "" for a bare leaf
	Children []DescriptionNode
}

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

// FlattenDescription concatenates a DescriptionNode tree's textual leaves,
// inserting a newline at paragraph/heading/list boundaries and collapsing
// triple-blank-line runs, per spec.md §6.
func FlattenDescription(root DescriptionNode) string {
	var b strings.Builder
	flattenInto(&b, root)
	return blankRunPattern.ReplaceAllString(b.String(), "\n\n")
}

func flattenInto(b *strings.Builder, n DescriptionNode) {
	if n.Text != "" {
		b.WriteString(n.Text)
	}
	boundary := n.Kind == "paragraph" || n.Kind == "heading" || n.Kind == "list_item"
	if boundary {
		b.WriteString("\n")
	}
	for _, c := range n.Children {
		flattenInto(b, c)
	}
	if boundary && len(n.Children) > 0 {
		b.WriteString("\n")
	}
}
