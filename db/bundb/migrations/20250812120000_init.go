package migrations

import (
	"context"

	"github.com/uptrace/bun"

	leaderboarddb "github.com/agentbeats/github-app/app/modules/leaderboard/infrastructure/repositories"
	submissiondb "github.com/agentbeats/github-app/app/modules/submission/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []interface{}{
			(*leaderboarddb.Leaderboard)(nil),
			(*submissiondb.Submission)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		// The unique index on workflow_run_id is load-bearing: it is what
		// makes concurrent redelivery of the same run safe.
		if _, err := db.NewCreateIndex().
			Model((*submissiondb.Submission)(nil)).
			Index("submissions_workflow_run_id_key").
			Column("workflow_run_id").
			Unique().
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*leaderboarddb.Leaderboard)(nil)).
			Index("leaderboards_github_repo_id_key").
			Column("github_repo_id").
			Unique().
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		_, err := db.NewCreateIndex().
			Model((*leaderboarddb.Leaderboard)(nil)).
			Index("leaderboards_repo_full_name_idx").
			Column("repo_full_name").
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		models := []interface{}{
			(*submissiondb.Submission)(nil),
			(*leaderboarddb.Leaderboard)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
