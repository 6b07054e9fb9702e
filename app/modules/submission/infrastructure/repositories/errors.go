package submissiondb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates no submission exists for the workflow run.
	ErrNotFound = errors.New("submission not found")

	// ErrDuplicate indicates an insert hit the unique constraint on
	// workflow_run_id. The pipeline maps this to the duplicate outcome.
	ErrDuplicate = errors.New("submission already recorded for workflow run")
)
