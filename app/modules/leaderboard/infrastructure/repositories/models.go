package leaderboarddb

import (
	"time"

	"github.com/uptrace/bun"
)

// Leaderboard is a registered benchmark repository.
//
// GitHubRepoID is the stable identity: GitHub repository ids survive renames,
// full names do not. A rename updates RepoFullName in place on the existing
// row; the unique tag guarantees no duplicate rows for one repository.
type Leaderboard struct {
	bun.BaseModel `bun:"table:leaderboards,alias:lb"`

	ID             int64     `bun:"id,pk,autoincrement"`
	GitHubRepoID   int64     `bun:"github_repo_id,notnull,unique"`
	RepoFullName   string    `bun:"repo_full_name,notnull"`
	InstallationID int64     `bun:"installation_id,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
