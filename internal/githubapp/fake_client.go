package githubapp

import "context"

// FakeClient is a fake implementation of Client for testing.
type FakeClient struct {
	GetRepoContentsFn   func(ctx context.Context, installationID int64, repo, path string) ([]byte, error)
	ListArtifactsFn     func(ctx context.Context, installationID int64, repo string, runID int64) ([]Artifact, error)
	DownloadArtifactFn  func(ctx context.Context, installationID int64, repo string, artifactID int64) ([]byte, error)
	CreateBranchFn      func(ctx context.Context, installationID int64, repo, branch, base string) error
	CommitFilesFn       func(ctx context.Context, installationID int64, repo, branch string, files map[string]string, message string) error
	CreatePullRequestFn func(ctx context.Context, installationID int64, repo, head, base, title, body string) (*PullRequest, error)
}

var _ Client = (*FakeClient)(nil)

func (f *FakeClient) GetRepoContents(ctx context.Context, installationID int64, repo, path string) ([]byte, error) {
	if f.GetRepoContentsFn != nil {
		return f.GetRepoContentsFn(ctx, installationID, repo, path)
	}
	return nil, ErrNotFound
}

func (f *FakeClient) ListArtifacts(ctx context.Context, installationID int64, repo string, runID int64) ([]Artifact, error) {
	if f.ListArtifactsFn != nil {
		return f.ListArtifactsFn(ctx, installationID, repo, runID)
	}
	return nil, nil
}

func (f *FakeClient) DownloadArtifact(ctx context.Context, installationID int64, repo string, artifactID int64) ([]byte, error) {
	if f.DownloadArtifactFn != nil {
		return f.DownloadArtifactFn(ctx, installationID, repo, artifactID)
	}
	return nil, ErrNotFound
}

func (f *FakeClient) CreateBranch(ctx context.Context, installationID int64, repo, branch, base string) error {
	if f.CreateBranchFn != nil {
		return f.CreateBranchFn(ctx, installationID, repo, branch, base)
	}
	return nil
}

func (f *FakeClient) CommitFiles(ctx context.Context, installationID int64, repo, branch string, files map[string]string, message string) error {
	if f.CommitFilesFn != nil {
		return f.CommitFilesFn(ctx, installationID, repo, branch, files, message)
	}
	return nil
}

func (f *FakeClient) CreatePullRequest(ctx context.Context, installationID int64, repo, head, base, title, body string) (*PullRequest, error) {
	if f.CreatePullRequestFn != nil {
		return f.CreatePullRequestFn(ctx, installationID, repo, head, base, title, body)
	}
	return &PullRequest{Number: 1, HTMLURL: "https://github.com/example/pull/1"}, nil
}
