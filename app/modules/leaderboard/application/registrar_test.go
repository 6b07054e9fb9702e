package leaderboardservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbeats/github-app/api/structs"
	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
	"github.com/agentbeats/github-app/internal/githubapp"
	"github.com/agentbeats/github-app/pkg/results"
)

// githubWithRunner fakes the contents probe: every repo in withRunner has
// the runner workflow file.
func githubWithRunner(withRunner ...string) *githubapp.FakeClient {
	present := map[string]bool{}
	for _, repo := range withRunner {
		present[repo] = true
	}
	return &githubapp.FakeClient{
		GetRepoContentsFn: func(_ context.Context, _ int64, repo, path string) ([]byte, error) {
			if path == runnerWorkflowPath && present[repo] {
				return []byte("name: runner"), nil
			}
			return nil, githubapp.ErrNotFound
		},
	}
}

func TestHandleInstallationRegisters(t *testing.T) {
	var created []*leaderboarddb.Leaderboard
	repo := &leaderboarddb.FakeRepository{
		CreateFn: func(_ context.Context, leaderboard *leaderboarddb.Leaderboard) error {
			created = append(created, leaderboard)
			return nil
		},
	}
	svc := NewService(repo, githubWithRunner("bench/leaderboard"), slog.New(slog.DiscardHandler))

	event := structs.InstallationEvent{
		Action:       "created",
		Installation: structs.Installation{ID: 42},
		Repositories: []structs.RepositoryRef{
			{ID: 100, FullName: "octocat/forked-bench", Fork: true},
			{ID: 200, FullName: "bench/leaderboard"},
			{ID: 300, FullName: "bench/plain-repo"},
		},
	}

	result, err := svc.HandleInstallation(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, results.StatusOK, result.Status)
	assert.Equal(t, []string{"bench/leaderboard"}, result.Registered)

	require.Len(t, created, 1)
	assert.Equal(t, int64(200), created[0].GitHubRepoID)
	assert.Equal(t, "bench/leaderboard", created[0].RepoFullName)
	assert.Equal(t, int64(42), created[0].InstallationID)
}

func TestHandleInstallationRedeliveryIsIdempotent(t *testing.T) {
	existing := &leaderboarddb.Leaderboard{GitHubRepoID: 200, RepoFullName: "bench/leaderboard", InstallationID: 42}
	creates, renames := 0, 0
	repo := &leaderboarddb.FakeRepository{
		GetByRepoIDFn: func(_ context.Context, id int64) (*leaderboarddb.Leaderboard, error) {
			if id == existing.GitHubRepoID {
				return existing, nil
			}
			return nil, leaderboarddb.ErrNotFound
		},
		CreateFn: func(_ context.Context, _ *leaderboarddb.Leaderboard) error {
			creates++
			return nil
		},
		UpdateRepoFullNameFn: func(_ context.Context, _ int64, _ string) error {
			renames++
			return nil
		},
	}
	svc := NewService(repo, githubWithRunner("bench/leaderboard"), slog.New(slog.DiscardHandler))

	event := structs.InstallationEvent{
		Action:       "added",
		Installation: structs.Installation{ID: 42},
		RepositoriesAdded: []structs.RepositoryRef{
			{ID: 200, FullName: "bench/leaderboard"},
		},
	}

	result, err := svc.HandleInstallation(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, result.Registered)
	assert.Zero(t, creates, "existing leaderboard must not be re-created")
	assert.Zero(t, renames, "unchanged full name must not be rewritten")
}

func TestHandleInstallationRenamesInPlace(t *testing.T) {
	existing := &leaderboarddb.Leaderboard{GitHubRepoID: 200, RepoFullName: "bench/old-name", InstallationID: 42}
	var renamedTo string
	repo := &leaderboarddb.FakeRepository{
		GetByRepoIDFn: func(_ context.Context, _ int64) (*leaderboarddb.Leaderboard, error) {
			return existing, nil
		},
		UpdateRepoFullNameFn: func(_ context.Context, id int64, name string) error {
			assert.Equal(t, int64(200), id)
			renamedTo = name
			return nil
		},
	}
	svc := NewService(repo, githubWithRunner("bench/new-name"), slog.New(slog.DiscardHandler))

	event := structs.InstallationEvent{
		Action:       "created",
		Installation: structs.Installation{ID: 42},
		Repositories: []structs.RepositoryRef{{ID: 200, FullName: "bench/new-name"}},
	}

	result, err := svc.HandleInstallation(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, result.Registered)
	assert.Equal(t, "bench/new-name", renamedTo)
}

func TestHandleInstallationIgnores(t *testing.T) {
	svc := NewService(&leaderboarddb.FakeRepository{}, &githubapp.FakeClient{}, slog.New(slog.DiscardHandler))

	tests := []struct {
		name       string
		event      structs.InstallationEvent
		wantReason string
	}{
		{
			name:       "unrelated action",
			event:      structs.InstallationEvent{Action: "deleted"},
			wantReason: "action=deleted",
		},
		{
			name:       "no repositories",
			event:      structs.InstallationEvent{Action: "created"},
			wantReason: "no repositories",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.HandleInstallation(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, results.StatusIgnored, result.Status)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

func TestHandleInstallationEmptyRepositoryListIsOK(t *testing.T) {
	// "repositories": [] is a valid event with nothing to register, unlike a
	// payload missing the key entirely.
	svc := NewService(&leaderboarddb.FakeRepository{}, &githubapp.FakeClient{}, slog.New(slog.DiscardHandler))

	event := structs.InstallationEvent{
		Action:       "created",
		Installation: structs.Installation{ID: 42},
		Repositories: []structs.RepositoryRef{},
	}

	result, err := svc.HandleInstallation(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, results.StatusOK, result.Status)
	assert.Empty(t, result.Registered)
}

func TestHandleInstallationConcurrentCreateIsBenign(t *testing.T) {
	repo := &leaderboarddb.FakeRepository{
		CreateFn: func(_ context.Context, _ *leaderboarddb.Leaderboard) error {
			return leaderboarddb.ErrDuplicate
		},
	}
	name := gofakeit.Username() + "/leaderboard"
	svc := NewService(repo, githubWithRunner(name), slog.New(slog.DiscardHandler))

	event := structs.InstallationEvent{
		Action:       "created",
		Installation: structs.Installation{ID: 42},
		Repositories: []structs.RepositoryRef{{ID: 200, FullName: name}},
	}

	result, err := svc.HandleInstallation(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, results.StatusOK, result.Status)
	assert.Empty(t, result.Registered)
}

func TestHandleInstallationProbeErrorSkipsRepo(t *testing.T) {
	github := &githubapp.FakeClient{
		GetRepoContentsFn: func(_ context.Context, _ int64, _, _ string) ([]byte, error) {
			return nil, errors.New("api unavailable")
		},
	}
	creates := 0
	repo := &leaderboarddb.FakeRepository{
		CreateFn: func(_ context.Context, _ *leaderboarddb.Leaderboard) error {
			creates++
			return nil
		},
	}
	svc := NewService(repo, github, slog.New(slog.DiscardHandler))

	event := structs.InstallationEvent{
		Action:       "created",
		Installation: structs.Installation{ID: 42},
		Repositories: []structs.RepositoryRef{{ID: 200, FullName: "bench/leaderboard"}},
	}

	result, err := svc.HandleInstallation(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, result.Registered)
	assert.Zero(t, creates)
}
