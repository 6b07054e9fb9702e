package submissionservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbeats/github-app/api/structs"
	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
)

func newTestService(leaderboards leaderboarddb.Repository) *Service {
	return NewService(leaderboards, nil, nil, nil, slog.New(slog.DiscardHandler))
}

func TestResolveLeaderboard(t *testing.T) {
	registered := &leaderboarddb.Leaderboard{
		ID:             7,
		GitHubRepoID:   1001,
		RepoFullName:   "bench/leaderboard",
		InstallationID: 42,
	}

	repo := &leaderboarddb.FakeRepository{
		GetByRepoFullNameFn: func(_ context.Context, name string) (*leaderboarddb.Leaderboard, error) {
			if name == "bench/leaderboard" {
				return registered, nil
			}
			return nil, leaderboarddb.ErrNotFound
		},
	}
	svc := newTestService(repo)

	tests := []struct {
		name string
		refs []structs.ReferencedWorkflow
		want *leaderboarddb.Leaderboard
	}{
		{
			name: "first match wins in order",
			refs: []structs.ReferencedWorkflow{
				{Path: "other/repo/.github/workflows/runner.yml"},
				{Path: "bench/leaderboard/.github/workflows/runner.yml"},
			},
			want: registered,
		},
		{
			name: "short paths are skipped",
			refs: []structs.ReferencedWorkflow{
				{Path: "malformed"},
				{Path: "bench/leaderboard/.github/workflows/runner.yml"},
			},
			want: registered,
		},
		{
			name: "no registered leaderboard",
			refs: []structs.ReferencedWorkflow{
				{Path: "other/repo/.github/workflows/runner.yml"},
			},
			want: nil,
		},
		{
			name: "empty reference list",
			refs: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.resolveLeaderboard(context.Background(), tt.refs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLeaderboardStopsAtFirstHit(t *testing.T) {
	lookups := 0
	repo := &leaderboarddb.FakeRepository{
		GetByRepoFullNameFn: func(_ context.Context, name string) (*leaderboarddb.Leaderboard, error) {
			lookups++
			return &leaderboarddb.Leaderboard{RepoFullName: name}, nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.resolveLeaderboard(context.Background(), []structs.ReferencedWorkflow{
		{Path: "first/hit/.github/workflows/runner.yml"},
		{Path: "never/checked/.github/workflows/runner.yml"},
	})
	require.NoError(t, err)
	assert.Equal(t, "first/hit", got.RepoFullName)
	assert.Equal(t, 1, lookups)
}

func TestResolveLeaderboardPropagatesLookupErrors(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &leaderboarddb.FakeRepository{
		GetByRepoFullNameFn: func(_ context.Context, _ string) (*leaderboarddb.Leaderboard, error) {
			return nil, dbErr
		},
	}
	svc := newTestService(repo)

	_, err := svc.resolveLeaderboard(context.Background(), []structs.ReferencedWorkflow{
		{Path: "bench/leaderboard/.github/workflows/runner.yml"},
	})
	require.ErrorIs(t, err, dbErr)
}
