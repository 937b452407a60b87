// Package render produces the deterministic markdown view of a deployment
// document, in the same builder-with-section-headers style the context
// formatters in the corpus use for stage handoffs.
package render

import (
	"fmt"
	"strings"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
)

// Markdown renders a DeploymentDocument as a human-readable markdown view.
func Markdown(doc *models.DeploymentDocument) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Deployment Document: %s\n\n", doc.Metadata.IssueKey)
	fmt.Fprintf(&sb, "_version %s, generated %s_\n\n", doc.Metadata.Version, doc.Metadata.Timestamp.Format("2006-01-02T15:04:05Z07:00"))

	sb.WriteString("## Project Overview\n\n")
	fmt.Fprintf(&sb, "**%s**\n\n%s\n\n", doc.ProjectOverview.Title, doc.ProjectOverview.Description)
	if doc.ProjectOverview.ProjectType != "" {
		fmt.Fprintf(&sb, "- Project type: %s\n", doc.ProjectOverview.ProjectType)
	}
	if doc.ProjectOverview.Architecture != "" {
		fmt.Fprintf(&sb, "- Architecture: %s\n", doc.ProjectOverview.Architecture)
	}
	sb.WriteString("\n")

	if len(doc.ImplementationPlan) > 0 {
		sb.WriteString("## Implementation Plan\n\n")
		for i, phase := range doc.ImplementationPlan {
			fmt.Fprintf(&sb, "%d. **%s**\n", i+1, phase.Name)
			for _, task := range phase.Tasks {
				fmt.Fprintf(&sb, "   - %s\n", task)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## File Structure\n\n")
	for _, f := range doc.FileStructure.Files {
		fmt.Fprintf(&sb, "- `%s` (%s): %s\n", f.Filename, f.Type, f.Description)
	}
	sb.WriteString("\n")

	if len(doc.TechnicalSpecifications) > 0 {
		sb.WriteString("## Technical Specifications\n\n")
		for _, f := range doc.FileStructure.Files {
			spec, ok := doc.TechnicalSpecifications[f.Filename]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "### %s\n\n%s\n\n", f.Filename, spec)
		}
	}

	if len(doc.DeploymentInstructions) > 0 {
		sb.WriteString("## Deployment Instructions\n\n")
		for i, step := range doc.DeploymentInstructions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
