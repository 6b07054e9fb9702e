package leaderboarddb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested leaderboard does not exist.
	ErrNotFound = errors.New("leaderboard not found")

	// ErrDuplicate indicates an insert hit the unique constraint on
	// github_repo_id. Concurrent registration of the same repository is
	// benign; callers treat this as already-registered.
	ErrDuplicate = errors.New("leaderboard already registered")

	// ErrNoRowsAffected indicates an UPDATE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
