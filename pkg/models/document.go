package models

import "time"

// DocumentMetadata identifies the issue, version and timestamp of a
// deployment document.
type DocumentMetadata struct {
	IssueKey  string    `json:"issue_key"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectOverview describes the shape of the project the developer will
// write code into.
type ProjectOverview struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ProjectType  string `json:"project_type,omitempty"`
	Architecture string `json:"architecture,omitempty"`
}

// Phase is one ordered step of the implementation plan.
type Phase struct {
	Name  string   `json:"name"`
	Tasks []string `json:"tasks"`
}

// FileEntry describes one file the developer must produce.
type FileEntry struct {
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// FileStructure is the non-empty ordered list of files plus the set of
// file types present among them.
type FileStructure struct {
	Files     []FileEntry `json:"files"`
	FileTypes []string    `json:"file_types"`
}

// DeploymentDocument is the structured record consumed by the developer.
// Invariants: at least one file entry in FileStructure.Files; every
// TechnicalSpecifications key corresponds to a file in FileStructure.Files;
// a missing optional field is tolerated as empty.
type DeploymentDocument struct {
	Metadata                DocumentMetadata  `json:"metadata"`
	ProjectOverview         ProjectOverview   `json:"project_overview"`
	ImplementationPlan      []Phase           `json:"implementation_plan"`
	FileStructure           FileStructure     `json:"file_structure"`
	TechnicalSpecifications map[string]string `json:"technical_specifications,omitempty"`
	DeploymentInstructions  []string          `json:"deployment_instructions,omitempty"`
}

// Validate checks the structural invariants spec.md §3 requires of a
// deployment document.
func (d *DeploymentDocument) Validate() error {
	if len(d.FileStructure.Files) == 0 {
		return ErrEmptyFileStructure
	}
	known := make(map[string]bool, len(d.FileStructure.Files))
	for _, f := range d.FileStructure.Files {
		known[f.Filename] = true
	}
	for name := range d.TechnicalSpecifications {
		if !known[name] {
			return &UnknownTechSpecFileError{Filename: name}
		}
	}
	return nil
}

// UnknownTechSpecFileError reports a technical_specifications key with no
// matching file_structure entry.
type UnknownTechSpecFileError struct{ Filename string }

func (e *UnknownTechSpecFileError) Error() string {
	return "technical_specifications references unknown file: " + e.Filename
}
