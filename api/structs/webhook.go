// Package structs defines the typed webhook payloads and artifact documents
// consumed by the services. Payloads are decoded once at the boundary instead
// of being threaded around as loose maps.
package structs

// Installation identifies the GitHub App installation an event belongs to.
// Its id scopes every API call made on behalf of the event.
type Installation struct {
	ID int64 `json:"id"`
}

// RepositoryRef is the repository summary GitHub embeds in webhook payloads.
type RepositoryRef struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Fork     bool   `json:"fork"`
}

// InstallationEvent is the payload of `installation` and
// `installation_repositories` events. Exactly one of Repositories or
// RepositoriesAdded is populated depending on the event type.
type InstallationEvent struct {
	Action            string          `json:"action"`
	Installation      Installation    `json:"installation"`
	Repositories      []RepositoryRef `json:"repositories"`
	RepositoriesAdded []RepositoryRef `json:"repositories_added"`
}

// ReferencedWorkflow is a reusable workflow invoked by a run. Path has the
// form "owner/repo/.github/workflows/<file>@<ref>".
type ReferencedWorkflow struct {
	Path string `json:"path"`
}

// WorkflowRun is the run summary embedded in `workflow_run` events.
type WorkflowRun struct {
	ID                  int64                `json:"id"`
	Conclusion          string               `json:"conclusion"`
	ReferencedWorkflows []ReferencedWorkflow `json:"referenced_workflows"`
}

// WorkflowRunEvent is the payload of `workflow_run` events.
type WorkflowRunEvent struct {
	Action       string        `json:"action"`
	WorkflowRun  WorkflowRun   `json:"workflow_run"`
	Repository   RepositoryRef `json:"repository"`
	Installation Installation  `json:"installation"`
}
