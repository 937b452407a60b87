// Package githubrepo implements ports.Repo against the real GitHub API using
// google/go-github, grounded on the go-github client wrapper the pack's
// mattermost-plugin-cursor example builds for its own PR-review loop.
package githubrepo

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

// Repo implements ports.Repo against a single GitHub owner/repository.
type Repo struct {
	gh    *github.Client
	Owner string
	Name  string
}

// New creates a Repo authenticated with a personal access token.
func New(token, owner, name string) *Repo {
	return &Repo{
		gh:    github.NewClient(nil).WithAuthToken(token),
		Owner: owner,
		Name:  name,
	}
}

// EnsureBranch creates branch from the repository's default branch if it
// does not already exist.
func (r *Repo) EnsureBranch(ctx context.Context, branch string) error {
	_, _, err := r.gh.Git.GetRef(ctx, r.Owner, r.Name, "refs/heads/"+branch)
	if err == nil {
		return nil
	}

	repo, _, err := r.gh.Repositories.Get(ctx, r.Owner, r.Name)
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}
	defaultBranch := repo.GetDefaultBranch()

	baseRef, _, err := r.gh.Git.GetRef(ctx, r.Owner, r.Name, "refs/heads/"+defaultBranch)
	if err != nil {
		return fmt.Errorf("get default branch ref: %w", err)
	}

	_, _, err = r.gh.Git.CreateRef(ctx, r.Owner, r.Name, &github.Reference{
		Ref:    github.Ptr("refs/heads/" + branch),
		Object: baseRef.Object,
	})
	if err != nil {
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	return nil
}

// PutFile creates or updates path on branch with content.
func (r *Repo) PutFile(ctx context.Context, branch, path, content string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(fmt.Sprintf("Update %s", path)),
		Content: []byte(content),
		Branch:  github.Ptr(branch),
	}

	existing, _, _, err := r.gh.Repositories.GetContents(ctx, r.Owner, r.Name, path, &github.RepositoryContentGetOptions{Ref: branch})
	if err == nil && existing != nil {
		opts.SHA = existing.SHA
	}

	_, _, err = r.gh.Repositories.CreateFile(ctx, r.Owner, r.Name, path, opts)
	if err != nil && opts.SHA == nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	if err != nil {
		_, _, err = r.gh.Repositories.UpdateFile(ctx, r.Owner, r.Name, path, opts)
		if err != nil {
			return fmt.Errorf("update file %s: %w", path, err)
		}
	}
	return nil
}

// UpsertPR creates the PR for branch against base, or returns the URL of an
// already-open PR with the same head branch (idempotent per ports.Repo).
func (r *Repo) UpsertPR(ctx context.Context, branch, base, title, body string) (string, error) {
	existing, err := r.findOpenPR(ctx, branch)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.GetHTMLURL(), nil
	}

	pr, _, err := r.gh.PullRequests.Create(ctx, r.Owner, r.Name, &github.NewPullRequest{
		Title: github.Ptr(title),
		Head:  github.Ptr(branch),
		Base:  github.Ptr(base),
		Body:  github.Ptr(body),
	})
	if err != nil {
		return "", fmt.Errorf("create PR for %s: %w", branch, err)
	}
	return pr.GetHTMLURL(), nil
}

func (r *Repo) findOpenPR(ctx context.Context, branch string) (*github.PullRequest, error) {
	prs, _, err := r.gh.PullRequests.List(ctx, r.Owner, r.Name, &github.PullRequestListOptions{
		Head:        r.Owner + ":" + branch,
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("list PRs for %s: %w", branch, err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return prs[0], nil
}

var _ ports.Repo = (*Repo)(nil)
