package submissiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// SubmissionDBImpl handles database operations for the submission audit log.
type SubmissionDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*SubmissionDBImpl)(nil)

// GetByWorkflowRunID retrieves the submission recorded for a workflow run.
func (db *SubmissionDBImpl) GetByWorkflowRunID(ctx context.Context, workflowRunID int64) (*Submission, error) {
	submission := new(Submission)

	err := db.DB.NewSelect().
		Model(submission).
		Where("workflow_run_id = ?", workflowRunID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission by run id: %w", err)
	}
	return submission, nil
}

// Create appends a submission record.
func (db *SubmissionDBImpl) Create(ctx context.Context, submission *Submission) error {
	_, err := db.DB.NewInsert().Model(submission).Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}
