package submissiondb

import (
	"time"

	"github.com/uptrace/bun"
)

// SubmissionStatus is the terminal state recorded for a workflow run.
type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "submitted"
	StatusFailed    SubmissionStatus = "failed"
	StatusRejected  SubmissionStatus = "rejected"
)

// Submission is a write-once audit record: one row per workflow run that
// reached the pipeline, never mutated afterward.
//
// WorkflowRunID carries a unique constraint. That constraint, not the
// read-before-insert fast path, is what makes concurrent redelivery of the
// same event safe: the second insert fails with ErrDuplicate and the pipeline
// reports the duplicate outcome.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID              int64            `bun:"id,pk,autoincrement"`
	WorkflowRunID   int64            `bun:"workflow_run_id,notnull,unique"`
	LeaderboardRepo string           `bun:"leaderboard_repo,notnull"`
	PurpleRepo      string           `bun:"purple_repo,notnull"`
	PurpleOwner     string           `bun:"purple_owner,notnull"`
	Status          SubmissionStatus `bun:"status,notnull"`
	PRNumber        int              `bun:"pr_number,nullzero"`
	PRURL           string           `bun:"pr_url,nullzero"`
	ResultsJSON     map[string]any   `bun:"results_json,type:jsonb,nullzero"`
	ErrorMessage    string           `bun:"error_message,nullzero"`
	CreatedAt       time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
