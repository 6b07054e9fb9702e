// Package results defines the closed set of outcomes a webhook handler can
// produce. Every pipeline invocation terminates in exactly one of these.
package results

// Status is the terminal state of one event handling.
type Status string

const (
	StatusOK       Status = "ok"
	StatusIgnored  Status = "ignored"
	StatusError    Status = "error"
	StatusRejected Status = "rejected"
)

// Result is the JSON-serializable outcome returned to the webhook caller.
// Only the fields relevant to the status are populated.
type Result struct {
	Status     Status   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	Event      string   `json:"event,omitempty"`
	PRURL      string   `json:"pr_url,omitempty"`
	Registered []string `json:"registered,omitempty"`
}

// Ignored reports an event that is structurally inapplicable. No side effects
// were performed beyond what the reason implies.
func Ignored(reason string) Result {
	return Result{Status: StatusIgnored, Reason: reason}
}

// Errored reports a submission-level failure that was recorded as a failed
// submission.
func Errored(reason string) Result {
	return Result{Status: StatusError, Reason: reason}
}

// Rejected reports a policy rejection recorded as a rejected submission.
func Rejected(reason string) Result {
	return Result{Status: StatusRejected, Reason: reason}
}

// Submitted reports a successfully published submission.
func Submitted(prURL string) Result {
	return Result{Status: StatusOK, PRURL: prURL}
}

// Registered reports a processed installation event with the full names of
// the newly registered leaderboard repositories.
func Registered(repos []string) Result {
	return Result{Status: StatusOK, Registered: repos}
}

// IgnoredEvent reports an unrecognized webhook event type.
func IgnoredEvent(event string) Result {
	return Result{Status: StatusIgnored, Event: event}
}
