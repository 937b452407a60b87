package ports

import (
	"context"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
)

// Repo is the source-repository port: branch/commit/PR operations.
type Repo interface {
	// EnsureBranch creates name from the repo's default branch if it does
	// not already exist. Calling it twice for the same name is equivalent
	// to calling it once (idempotent).
	EnsureBranch(ctx context.Context, name string) error

	// PutFile creates or updates path on branch with content.
	PutFile(ctx context.Context, branch, path, content string) error

	// UpsertPR creates or updates the PR for branch against base. Calling
	// it twice with identical inputs must return the same URL and must
	// not create a duplicate PR.
	UpsertPR(ctx context.Context, branch, base, title, body string) (url string, err error)
}

// PRTitle formats a pull request title per spec.md §6:
// "Code for <issue-key>: <file-list>".
func PRTitle(issueKey string, files models.GeneratedFileSet) string {
	names := files.Filenames()
	list := ""
	for i, n := range names {
		if i > 0 {
			list += ", "
		}
		list += n
	}
	return "Code for " + issueKey + ": " + list
}
