// Package bundb bootstraps the Postgres connection and the repositories
// built on it.
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
	submissiondb "github.com/agentbeats/github-app/app/modules/submission/infrastructure/repositories"
	"github.com/agentbeats/github-app/config"
)

// DBService aggregates the repositories over one shared connection pool.
type DBService struct {
	LeaderboardDB *leaderboarddb.LeaderboardDBImpl
	SubmissionDB  *submissiondb.SubmissionDBImpl
	db            *bun.DB
}

// GetDB returns the underlying database handle.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close releases the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewDBService connects to Postgres and builds the repositories.
func NewDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*leaderboarddb.Leaderboard)(nil))
	db.RegisterModel((*submissiondb.Submission)(nil))

	return &DBService{
		LeaderboardDB: &leaderboarddb.LeaderboardDBImpl{DB: db},
		SubmissionDB:  &submissiondb.SubmissionDBImpl{DB: db},
		db:            db,
	}, nil
}
