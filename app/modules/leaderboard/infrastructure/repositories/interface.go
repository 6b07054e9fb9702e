package leaderboarddb

import "context"

// Repository is the persistence contract for registered leaderboards.
type Repository interface {
	// GetByRepoID looks up a leaderboard by its stable GitHub repository id.
	// Returns ErrNotFound when no row exists.
	GetByRepoID(ctx context.Context, githubRepoID int64) (*Leaderboard, error)

	// GetByRepoFullName looks up a leaderboard by its current "owner/repo"
	// full name. Returns ErrNotFound when no row exists.
	GetByRepoFullName(ctx context.Context, repoFullName string) (*Leaderboard, error)

	// Create inserts a new leaderboard. Returns ErrDuplicate when a row for
	// the same GitHub repository id already exists.
	Create(ctx context.Context, leaderboard *Leaderboard) error

	// UpdateRepoFullName refreshes the stored full name after a rename.
	// Returns ErrNoRowsAffected when the repository id is unknown.
	UpdateRepoFullName(ctx context.Context, githubRepoID int64, repoFullName string) error
}
