package submissionservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agentbeats/github-app/api/structs"
	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
)

// resolveLeaderboard finds the first referenced reusable workflow whose
// declaring repository is a registered leaderboard. The leaderboard is
// identified structurally, by which workflow the run actually invoked, so a
// submitter cannot claim an arbitrary leaderboard by naming it in the
// manifest alone.
//
// Returns (nil, nil) when no referenced workflow matches; that is a benign
// skip, not an error.
func (s *Service) resolveLeaderboard(ctx context.Context, referenced []structs.ReferencedWorkflow) (*leaderboarddb.Leaderboard, error) {
	for _, ref := range referenced {
		// ref.Path = "owner/repo/.github/workflows/runner.yml"
		parts := strings.SplitN(ref.Path, "/", 3)
		if len(parts) < 2 {
			continue
		}
		repoFullName := parts[0] + "/" + parts[1]

		leaderboard, err := s.leaderboards.GetByRepoFullName(ctx, repoFullName)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve leaderboard %q: %w", repoFullName, err)
		}
		return leaderboard, nil
	}
	return nil, nil
}
