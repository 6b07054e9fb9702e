package structs

import (
	"errors"
	"fmt"
)

// ErrManifestField indicates a required manifest field is missing or empty.
// Callers match it with errors.Is.
var ErrManifestField = errors.New("missing manifest field")

// Manifest is the submission metadata document carried in the artifact
// archive. The submitting ("purple") side generates it; the pipeline trusts
// only target_leaderboard after cross-checking it against the resolved
// leaderboard.
type Manifest struct {
	PurpleAgentOwner  string `json:"purple_agent_owner"`
	PurpleAgentRepo   string `json:"purple_agent_repo"`
	RunID             int64  `json:"run_id"`
	RunURL            string `json:"run_url"`
	Timestamp         string `json:"timestamp"` // ISO-8601
	TargetLeaderboard string `json:"target_leaderboard"`
}

// Validate checks the fields the publisher dereferences. TargetLeaderboard is
// deliberately excluded: an absent target is handled by the pipeline's
// mismatch check, not here.
func (m Manifest) Validate() error {
	if m.PurpleAgentOwner == "" {
		return fmt.Errorf("%w: purple_agent_owner", ErrManifestField)
	}
	if m.PurpleAgentRepo == "" {
		return fmt.Errorf("%w: purple_agent_repo", ErrManifestField)
	}
	if m.RunID == 0 {
		return fmt.Errorf("%w: run_id", ErrManifestField)
	}
	if m.RunURL == "" {
		return fmt.Errorf("%w: run_url", ErrManifestField)
	}
	if m.Timestamp == "" {
		return fmt.Errorf("%w: timestamp", ErrManifestField)
	}
	return nil
}
