package submissionservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agentbeats/github-app/api/structs"
	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
	"github.com/agentbeats/github-app/internal/githubapp"
)

const defaultBranch = "main"

// Publisher materializes a submission on a leaderboard repository as a
// branch + commit + pull request.
type Publisher interface {
	Publish(ctx context.Context, leaderboard *leaderboarddb.Leaderboard, manifest structs.Manifest, resultsDoc map[string]any, scenario string, runID int64) (*githubapp.PullRequest, error)
}

// PRPublisher implements Publisher against the GitHub client.
type PRPublisher struct {
	github githubapp.Client
	logger *slog.Logger
}

// NewPRPublisher constructs the publisher.
func NewPRPublisher(github githubapp.Client, logger *slog.Logger) *PRPublisher {
	return &PRPublisher{github: github, logger: logger}
}

var _ Publisher = (*PRPublisher)(nil)

// Publish creates the submission branch, commits the three submission files
// to it in one commit, and opens the pull request. The branch name is
// deterministic in the run id, so a retried delivery can never spawn a
// second branch for the same run.
//
// A failure after the branch exists leaves the branch in place: the
// duplicate check upstream (and the run-id unique constraint behind it)
// already stops re-processing, and cleaning up refs on an error path is a
// second write that can itself fail.
func (p *PRPublisher) Publish(ctx context.Context, leaderboard *leaderboarddb.Leaderboard, manifest structs.Manifest, resultsDoc map[string]any, scenario string, runID int64) (*githubapp.PullRequest, error) {
	branch := fmt.Sprintf("agentbeats/submission-%d", runID)
	submissionPath := fmt.Sprintf("submissions/%s/%s", manifest.PurpleAgentOwner, normalizeTimestamp(manifest.Timestamp))

	resultsJSON, err := json.MarshalIndent(resultsDoc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode results document: %w", err)
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest document: %w", err)
	}

	installationID := leaderboard.InstallationID
	repo := leaderboard.RepoFullName

	if err := p.github.CreateBranch(ctx, installationID, repo, branch, defaultBranch); err != nil {
		return nil, err
	}

	files := map[string]string{
		submissionPath + "/results.json":  string(resultsJSON),
		submissionPath + "/manifest.json": string(manifestJSON),
		submissionPath + "/scenario.toml": scenario,
	}
	message := fmt.Sprintf("[AgentBeats] Submission from %s", manifest.PurpleAgentOwner)
	if err := p.github.CommitFiles(ctx, installationID, repo, branch, files, message); err != nil {
		return nil, err
	}

	pr, err := p.github.CreatePullRequest(ctx, installationID, repo, branch, defaultBranch,
		fmt.Sprintf("[Submission] %s", manifest.PurpleAgentOwner),
		formatPRBody(manifest, string(resultsJSON)),
	)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "submission published",
		slog.String("leaderboard", repo),
		slog.String("branch", branch),
		slog.String("pr_url", pr.HTMLURL),
	)
	return pr, nil
}

// normalizeTimestamp flattens an ISO-8601 timestamp into a fixed 15-char
// path segment, e.g. "2026-08-23T14:05:09Z" becomes "2026-08-23-14-0".
// Collisions within the same owner and window are accepted.
func normalizeTimestamp(timestamp string) string {
	flat := strings.ReplaceAll(timestamp, ":", "-")
	flat = strings.ReplaceAll(flat, "T", "-")
	if len(flat) > 15 {
		flat = flat[:15]
	}
	return flat
}

func formatPRBody(manifest structs.Manifest, resultsJSON string) string {
	return fmt.Sprintf(`## AgentBeats Submission

| Field | Value |
|-------|-------|
| **Competitor** | @%s |
| **Repository** | [%s](https://github.com/%s) |
| **Workflow Run** | [#%d](%s) |

### Results
`+"```json\n%s\n```"+`

---
*Auto-generated by [AgentBeats](https://agentbeats.dev)*
`,
		manifest.PurpleAgentOwner,
		manifest.PurpleAgentRepo, manifest.PurpleAgentRepo,
		manifest.RunID, manifest.RunURL,
		resultsJSON,
	)
}
