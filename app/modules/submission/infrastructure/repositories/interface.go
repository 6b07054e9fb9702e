package submissiondb

import "context"

// Repository is the persistence contract for the submission audit log.
// Append-only: there is deliberately no update operation.
type Repository interface {
	// GetByWorkflowRunID looks up the submission recorded for a workflow run.
	// Returns ErrNotFound when the run has not been recorded.
	GetByWorkflowRunID(ctx context.Context, workflowRunID int64) (*Submission, error)

	// Create appends a submission record. Returns ErrDuplicate when a record
	// for the same workflow run id already exists.
	Create(ctx context.Context, submission *Submission) error
}
