// Package handlers wires the GitHub webhook endpoint onto chi.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agentbeats/github-app/api/structs"
	"github.com/agentbeats/github-app/internal/metrics"
	"github.com/agentbeats/github-app/pkg/results"
)

// InstallationService handles installation events.
type InstallationService interface {
	HandleInstallation(ctx context.Context, event structs.InstallationEvent) (results.Result, error)
}

// WorkflowRunService handles workflow_run events.
type WorkflowRunService interface {
	HandleWorkflowRun(ctx context.Context, event structs.WorkflowRunEvent) (results.Result, error)
}

// WebhookHandler receives GitHub webhook deliveries and routes them to the
// services.
type WebhookHandler struct {
	installations InstallationService
	workflowRuns  WorkflowRunService
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// NewWebhookHandler constructs the webhook handler.
func NewWebhookHandler(installations InstallationService, workflowRuns WorkflowRunService, logger *slog.Logger, m *metrics.Metrics) *WebhookHandler {
	return &WebhookHandler{
		installations: installations,
		workflowRuns:  workflowRuns,
		logger:        logger,
		metrics:       m,
	}
}

// Routes mounts the webhook endpoint.
func (h *WebhookHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/github", h.HandleGitHubWebhook)
	return r
}

// HandleGitHubWebhook handles one webhook delivery. Recognized events are
// installation, installation_repositories and workflow_run; anything else is
// acknowledged and ignored. Missing event header is a client error; a
// failing handler surfaces as a plain 500 with the error text.
func (h *WebhookHandler) HandleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	event := r.Header.Get("X-GitHub-Event")
	if event == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	delivery := r.Header.Get("X-GitHub-Delivery")
	if delivery == "" {
		delivery = uuid.NewString()
	}
	logger := h.logger.With(slog.String("event", event), slog.String("delivery", delivery))

	// TODO: verify X-Hub-Signature-256 against the webhook secret before
	// decoding the payload.

	if h.metrics != nil {
		h.metrics.RecordEvent(event)
	}

	var (
		result results.Result
		err    error
	)
	switch event {
	case "installation", "installation_repositories":
		var payload structs.InstallationEvent
		if !decodePayload(w, r, &payload) {
			return
		}
		result, err = h.installations.HandleInstallation(r.Context(), payload)
	case "workflow_run":
		var payload structs.WorkflowRunEvent
		if !decodePayload(w, r, &payload) {
			return
		}
		result, err = h.workflowRuns.HandleWorkflowRun(r.Context(), payload)
	default:
		ignored := results.IgnoredEvent(event)
		if h.metrics != nil {
			h.metrics.RecordOutcome(event, string(ignored.Status))
		}
		respondJSON(w, logger, ignored)
		return
	}

	if err != nil {
		logger.ErrorContext(r.Context(), "webhook handling failed", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.InfoContext(r.Context(), "webhook handled",
		slog.String("status", string(result.Status)),
		slog.String("reason", result.Reason),
	)
	if h.metrics != nil {
		h.metrics.RecordOutcome(event, string(result.Status))
	}
	respondJSON(w, logger, result)
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok"}`)
}

func decodePayload(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode payload: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}
