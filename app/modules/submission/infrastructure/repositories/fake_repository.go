package submissiondb

import "context"

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	GetByWorkflowRunIDFn func(ctx context.Context, workflowRunID int64) (*Submission, error)
	CreateFn             func(ctx context.Context, submission *Submission) error
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) GetByWorkflowRunID(ctx context.Context, workflowRunID int64) (*Submission, error) {
	if f.GetByWorkflowRunIDFn != nil {
		return f.GetByWorkflowRunIDFn(ctx, workflowRunID)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) Create(ctx context.Context, submission *Submission) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, submission)
	}
	return nil
}
