package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// LeaderboardDBImpl handles database operations for registered leaderboards.
type LeaderboardDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*LeaderboardDBImpl)(nil)

// GetByRepoID retrieves a leaderboard by its GitHub repository id.
func (db *LeaderboardDBImpl) GetByRepoID(ctx context.Context, githubRepoID int64) (*Leaderboard, error) {
	leaderboard := new(Leaderboard)

	err := db.DB.NewSelect().
		Model(leaderboard).
		Where("github_repo_id = ?", githubRepoID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard by repo id: %w", err)
	}
	return leaderboard, nil
}

// GetByRepoFullName retrieves a leaderboard by its current full name.
func (db *LeaderboardDBImpl) GetByRepoFullName(ctx context.Context, repoFullName string) (*Leaderboard, error) {
	leaderboard := new(Leaderboard)

	err := db.DB.NewSelect().
		Model(leaderboard).
		Where("repo_full_name = ?", repoFullName).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard by full name: %w", err)
	}
	return leaderboard, nil
}

// Create inserts a new leaderboard entry.
func (db *LeaderboardDBImpl) Create(ctx context.Context, leaderboard *Leaderboard) error {
	_, err := db.DB.NewInsert().Model(leaderboard).Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create leaderboard: %w", err)
	}
	return nil
}

// UpdateRepoFullName updates the stored full name for a renamed repository.
func (db *LeaderboardDBImpl) UpdateRepoFullName(ctx context.Context, githubRepoID int64, repoFullName string) error {
	res, err := db.DB.NewUpdate().
		Model((*Leaderboard)(nil)).
		Set("repo_full_name = ?", repoFullName).
		Where("github_repo_id = ?", githubRepoID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update leaderboard full name: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
