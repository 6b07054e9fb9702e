// Package leaderboardservice registers leaderboard repositories from GitHub
// App installation events.
package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agentbeats/github-app/api/structs"
	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
	"github.com/agentbeats/github-app/internal/githubapp"
	"github.com/agentbeats/github-app/pkg/results"
)

// runnerWorkflowPath is the file that marks a repository as a leaderboard.
// Only repositories carrying it get registered.
const runnerWorkflowPath = ".github/workflows/runner.yml"

// Service handles installation events.
type Service struct {
	leaderboards leaderboarddb.Repository
	github       githubapp.Client
	logger       *slog.Logger
}

// NewService constructs the installation registrar.
func NewService(leaderboards leaderboarddb.Repository, github githubapp.Client, logger *slog.Logger) *Service {
	return &Service{
		leaderboards: leaderboards,
		github:       github,
		logger:       logger,
	}
}

// HandleInstallation registers the leaderboard repositories named by an
// installation event. Registration is an upsert keyed by the stable GitHub
// repository id: re-delivery is a no-op, a rename refreshes the stored full
// name in place.
func (s *Service) HandleInstallation(ctx context.Context, event structs.InstallationEvent) (results.Result, error) {
	if event.Action != "created" && event.Action != "added" {
		return results.Ignored(fmt.Sprintf("action=%s", event.Action)), nil
	}

	// A present-but-empty list is a valid event with nothing to register;
	// only a payload carrying neither key is ignored.
	repos := event.Repositories
	if repos == nil {
		repos = event.RepositoriesAdded
	}
	if repos == nil {
		return results.Ignored("no repositories"), nil
	}

	installationID := event.Installation.ID
	registered := []string{}

	for _, repo := range repos {
		if repo.Fork {
			continue
		}

		if !s.isLeaderboard(ctx, installationID, repo.FullName) {
			continue
		}

		existing, err := s.leaderboards.GetByRepoID(ctx, repo.ID)
		switch {
		case err == nil:
			if existing.RepoFullName != repo.FullName {
				if err := s.leaderboards.UpdateRepoFullName(ctx, repo.ID, repo.FullName); err != nil {
					return results.Result{}, fmt.Errorf("failed to rename leaderboard %d: %w", repo.ID, err)
				}
				s.logger.InfoContext(ctx, "leaderboard renamed",
					slog.Int64("github_repo_id", repo.ID),
					slog.String("repo_full_name", repo.FullName),
				)
			}
			continue
		case !errors.Is(err, leaderboarddb.ErrNotFound):
			return results.Result{}, fmt.Errorf("failed to look up leaderboard %d: %w", repo.ID, err)
		}

		err = s.leaderboards.Create(ctx, &leaderboarddb.Leaderboard{
			GitHubRepoID:   repo.ID,
			RepoFullName:   repo.FullName,
			InstallationID: installationID,
		})
		if err != nil {
			// A concurrent delivery won the insert; already registered.
			if errors.Is(err, leaderboarddb.ErrDuplicate) {
				continue
			}
			return results.Result{}, fmt.Errorf("failed to register leaderboard %q: %w", repo.FullName, err)
		}

		s.logger.InfoContext(ctx, "leaderboard registered",
			slog.String("repo_full_name", repo.FullName),
			slog.Int64("installation_id", installationID),
		)
		registered = append(registered, repo.FullName)
	}

	return results.Registered(registered), nil
}

// isLeaderboard probes the repository for the runner workflow file. Any
// failure to read it counts as "not a leaderboard".
func (s *Service) isLeaderboard(ctx context.Context, installationID int64, repoFullName string) bool {
	contents, err := s.github.GetRepoContents(ctx, installationID, repoFullName, runnerWorkflowPath)
	if err != nil {
		if !errors.Is(err, githubapp.ErrNotFound) {
			s.logger.WarnContext(ctx, "runner workflow probe failed",
				slog.String("repo_full_name", repoFullName),
				slog.Any("error", err),
			)
		}
		return false
	}
	return contents != nil
}
