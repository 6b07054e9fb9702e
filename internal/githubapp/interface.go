// Package githubapp is a thin GitHub REST client scoped to what the app
// needs: a contents probe, artifact retrieval, and the branch/commit/PR
// writes behind a submission. All calls authenticate as a GitHub App
// installation.
package githubapp

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested GitHub resource does not exist.
var ErrNotFound = errors.New("github resource not found")

// Artifact is a workflow run artifact summary.
type Artifact struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SizeInBytes int64  `json:"size_in_bytes"`
	Expired     bool   `json:"expired"`
}

// PullRequest is the subset of the pull request response the app consumes.
type PullRequest struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Client is the source-control collaborator contract. Every call is scoped
// by the installation id whose credential it runs under.
type Client interface {
	// GetRepoContents reads the raw contents of a file. Returns ErrNotFound
	// when the path does not exist.
	GetRepoContents(ctx context.Context, installationID int64, repo, path string) ([]byte, error)

	// ListArtifacts lists the artifacts produced by a workflow run.
	ListArtifacts(ctx context.Context, installationID int64, repo string, runID int64) ([]Artifact, error)

	// DownloadArtifact downloads an artifact's zip archive bytes.
	DownloadArtifact(ctx context.Context, installationID int64, repo string, artifactID int64) ([]byte, error)

	// CreateBranch creates a new branch pointing at the head of base.
	CreateBranch(ctx context.Context, installationID int64, repo, branch, base string) error

	// CommitFiles writes the given path->content files to branch in a single
	// commit.
	CommitFiles(ctx context.Context, installationID int64, repo, branch string, files map[string]string, message string) error

	// CreatePullRequest opens a pull request from head into base.
	CreatePullRequest(ctx context.Context, installationID int64, repo, head, base, title, body string) (*PullRequest, error)
}
