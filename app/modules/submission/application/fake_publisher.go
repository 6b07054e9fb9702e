package submissionservice

import (
	"context"

	"github.com/agentbeats/github-app/api/structs"
	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
	"github.com/agentbeats/github-app/internal/githubapp"
)

// FakePublisher is a fake implementation of Publisher for testing.
type FakePublisher struct {
	PublishFn func(ctx context.Context, leaderboard *leaderboarddb.Leaderboard, manifest structs.Manifest, resultsDoc map[string]any, scenario string, runID int64) (*githubapp.PullRequest, error)
}

var _ Publisher = (*FakePublisher)(nil)

func (f *FakePublisher) Publish(ctx context.Context, leaderboard *leaderboarddb.Leaderboard, manifest structs.Manifest, resultsDoc map[string]any, scenario string, runID int64) (*githubapp.PullRequest, error) {
	if f.PublishFn != nil {
		return f.PublishFn(ctx, leaderboard, manifest, resultsDoc, scenario, runID)
	}
	return &githubapp.PullRequest{Number: 1, HTMLURL: "https://github.com/example/pull/1"}, nil
}
