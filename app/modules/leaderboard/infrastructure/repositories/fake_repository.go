package leaderboarddb

import "context"

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	GetByRepoIDFn        func(ctx context.Context, githubRepoID int64) (*Leaderboard, error)
	GetByRepoFullNameFn  func(ctx context.Context, repoFullName string) (*Leaderboard, error)
	CreateFn             func(ctx context.Context, leaderboard *Leaderboard) error
	UpdateRepoFullNameFn func(ctx context.Context, githubRepoID int64, repoFullName string) error
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) GetByRepoID(ctx context.Context, githubRepoID int64) (*Leaderboard, error) {
	if f.GetByRepoIDFn != nil {
		return f.GetByRepoIDFn(ctx, githubRepoID)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetByRepoFullName(ctx context.Context, repoFullName string) (*Leaderboard, error) {
	if f.GetByRepoFullNameFn != nil {
		return f.GetByRepoFullNameFn(ctx, repoFullName)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) Create(ctx context.Context, leaderboard *Leaderboard) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, leaderboard)
	}
	return nil
}

func (f *FakeRepository) UpdateRepoFullName(ctx context.Context, githubRepoID int64, repoFullName string) error {
	if f.UpdateRepoFullNameFn != nil {
		return f.UpdateRepoFullNameFn(ctx, githubRepoID, repoFullName)
	}
	return nil
}
