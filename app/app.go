// Package app assembles the configuration, database, GitHub client,
// services and HTTP router into one runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentbeats/github-app/api/handlers"
	leaderboardservice "github.com/agentbeats/github-app/app/modules/leaderboard/application"
	submissionservice "github.com/agentbeats/github-app/app/modules/submission/application"
	"github.com/agentbeats/github-app/config"
	"github.com/agentbeats/github-app/db/bundb"
	"github.com/agentbeats/github-app/internal/githubapp"
	"github.com/agentbeats/github-app/internal/metrics"
)

// App holds the wired application.
type App struct {
	Cfg                *config.Config
	GitHub             githubapp.Client
	LeaderboardService *leaderboardservice.Service
	SubmissionService  *submissionservice.Service

	db     *bundb.DBService
	router chi.Router
}

// NewApp initializes the application with the necessary services and
// configuration. All collaborators are constructed explicitly and injected;
// there is no package-level state.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbService, err := bundb.NewDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	github, err := githubapp.NewAppClient(cfg.GitHub, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize github client: %w", err)
	}

	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)

	leaderboardSvc := leaderboardservice.NewService(dbService.LeaderboardDB, github, logger)
	publisher := submissionservice.NewPRPublisher(github, logger)
	submissionSvc := submissionservice.NewService(
		dbService.LeaderboardDB,
		dbService.SubmissionDB,
		github,
		publisher,
		logger,
	)

	webhooks := handlers.NewWebhookHandler(leaderboardSvc, submissionSvc, logger, appMetrics)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/health", handlers.HandleHealth)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Mount("/api/webhooks", webhooks.Routes())

	return &App{
		Cfg:                cfg,
		GitHub:             github,
		LeaderboardService: leaderboardSvc,
		SubmissionService:  submissionSvc,
		db:                 dbService,
		router:             router,
	}, nil
}

// Router returns the HTTP handler to serve.
func (a *App) Router() http.Handler {
	return a.router
}

// Close releases the application's resources.
func (a *App) Close() error {
	return a.db.Close()
}
