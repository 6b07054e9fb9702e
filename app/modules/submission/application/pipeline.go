// Package submissionservice converts completed workflow runs into
// pull-request submissions on their leaderboard repository.
package submissionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agentbeats/github-app/api/structs"
	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
	submissiondb "github.com/agentbeats/github-app/app/modules/submission/infrastructure/repositories"
	"github.com/agentbeats/github-app/internal/githubapp"
	"github.com/agentbeats/github-app/pkg/results"
)

// submissionArtifactName is the exact artifact a benchmark run must upload.
const submissionArtifactName = "agentbeats-submission"

// Service is the submission pipeline.
type Service struct {
	leaderboards leaderboarddb.Repository
	submissions  submissiondb.Repository
	github       githubapp.Client
	publisher    Publisher
	logger       *slog.Logger
}

// NewService constructs the pipeline.
func NewService(
	leaderboards leaderboarddb.Repository,
	submissions submissiondb.Repository,
	github githubapp.Client,
	publisher Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		leaderboards: leaderboards,
		submissions:  submissions,
		github:       github,
		publisher:    publisher,
		logger:       logger,
	}
}

// HandleWorkflowRun runs one completed-workflow-run event through the
// pipeline. Every invocation terminates in exactly one of the four outcomes;
// unexpected failures (network, malformed archive, database) propagate to
// the caller instead.
//
// Exactly one submission row is written per run id, ever. The fast-path read
// below catches ordinary redelivery; the unique constraint on the run id
// column catches racing deliveries, surfacing as ErrDuplicate at insert time
// which is folded into the same duplicate outcome.
func (s *Service) HandleWorkflowRun(ctx context.Context, event structs.WorkflowRunEvent) (results.Result, error) {
	if event.Action != "completed" {
		return results.Ignored("not completed"), nil
	}

	run := event.WorkflowRun
	if run.Conclusion != "success" {
		return results.Ignored(fmt.Sprintf("conclusion=%s", run.Conclusion)), nil
	}
	if len(run.ReferencedWorkflows) == 0 {
		return results.Ignored("no reusable workflows"), nil
	}

	leaderboard, err := s.resolveLeaderboard(ctx, run.ReferencedWorkflows)
	if err != nil {
		return results.Result{}, err
	}
	if leaderboard == nil {
		return results.Ignored("no registered leaderboard"), nil
	}

	_, err = s.submissions.GetByWorkflowRunID(ctx, run.ID)
	if err == nil {
		return results.Ignored("duplicate"), nil
	}
	if !errors.Is(err, submissiondb.ErrNotFound) {
		return results.Result{}, fmt.Errorf("failed duplicate check for run %d: %w", run.ID, err)
	}

	purpleRepo := event.Repository.FullName

	archive, err := s.downloadSubmissionArtifact(ctx, event.Installation.ID, purpleRepo, run.ID)
	if err != nil {
		return results.Result{}, err
	}
	if archive == nil {
		return s.recordTerminal(ctx, run.ID, leaderboard.RepoFullName, purpleRepo, &submissiondb.Submission{
			Status:       submissiondb.StatusFailed,
			ErrorMessage: "No artifact found",
		}, results.Errored("no artifact"))
	}

	resultsDoc, manifest, scenario, err := ExtractArchive(archive)
	if err != nil {
		return results.Result{}, err
	}

	// The target named in the manifest must match the leaderboard the run
	// structurally invoked; a run cannot be repurposed against another
	// leaderboard even if it happens to reuse that leaderboard's workflow.
	if manifest.TargetLeaderboard != leaderboard.RepoFullName {
		return s.recordTerminal(ctx, run.ID, leaderboard.RepoFullName, purpleRepo, &submissiondb.Submission{
			Status:       submissiondb.StatusRejected,
			ErrorMessage: "Target mismatch",
		}, results.Rejected("target mismatch"))
	}

	if err := manifest.Validate(); err != nil {
		return results.Result{}, fmt.Errorf("invalid manifest for run %d: %w", run.ID, err)
	}

	pr, err := s.publisher.Publish(ctx, leaderboard, manifest, resultsDoc, scenario, run.ID)
	if err != nil {
		return results.Result{}, err
	}

	return s.recordTerminal(ctx, run.ID, leaderboard.RepoFullName, purpleRepo, &submissiondb.Submission{
		Status:      submissiondb.StatusSubmitted,
		PRNumber:    pr.Number,
		PRURL:       pr.HTMLURL,
		ResultsJSON: resultsDoc,
	}, results.Submitted(pr.HTMLURL))
}

// downloadSubmissionArtifact fetches the run's submission artifact bytes, or
// nil when the run did not upload one.
func (s *Service) downloadSubmissionArtifact(ctx context.Context, installationID int64, repo string, runID int64) ([]byte, error) {
	artifacts, err := s.github.ListArtifacts(ctx, installationID, repo, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts for run %d: %w", runID, err)
	}

	for _, artifact := range artifacts {
		if artifact.Name == submissionArtifactName {
			archive, err := s.github.DownloadArtifact(ctx, installationID, repo, artifact.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to download artifact %d: %w", artifact.ID, err)
			}
			return archive, nil
		}
	}
	return nil, nil
}

// recordTerminal appends the audit row for a terminal outcome and returns
// that outcome. A concurrent delivery that already recorded this run id
// turns into the duplicate outcome here.
func (s *Service) recordTerminal(ctx context.Context, runID int64, leaderboardRepo, purpleRepo string, submission *submissiondb.Submission, outcome results.Result) (results.Result, error) {
	submission.WorkflowRunID = runID
	submission.LeaderboardRepo = leaderboardRepo
	submission.PurpleRepo = purpleRepo
	submission.PurpleOwner = ownerOf(purpleRepo)

	if err := s.submissions.Create(ctx, submission); err != nil {
		if errors.Is(err, submissiondb.ErrDuplicate) {
			s.logger.InfoContext(ctx, "submission lost insert race, treating as duplicate",
				slog.Int64("workflow_run_id", runID),
			)
			return results.Ignored("duplicate"), nil
		}
		return results.Result{}, fmt.Errorf("failed to record submission for run %d: %w", runID, err)
	}

	s.logger.InfoContext(ctx, "submission recorded",
		slog.Int64("workflow_run_id", runID),
		slog.String("leaderboard", leaderboardRepo),
		slog.String("status", string(submission.Status)),
	)
	return outcome, nil
}

func ownerOf(repoFullName string) string {
	owner, _, _ := strings.Cut(repoFullName, "/")
	return owner
}
