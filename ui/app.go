package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"caselens/app"
	"caselens/domain/casefile"
	"caselens/internal"
)

// App is the JSON API surface over the analysis service.
type App struct {
	router     *chi.Mux
	service    *app.AnalysisService
	normalizer *casefile.Normalizer
	logger     *internal.Logger
}

// Config holds API application configuration
type Config struct {
	Port string
}

// NewApp creates the API application
func NewApp(service *app.AnalysisService, logger *internal.Logger) *App {
	a := &App{
		router:     chi.NewRouter(),
		service:    service,
		normalizer: casefile.NewNormalizer(),
		logger:     logger,
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Post("/api/analyze", a.handleAnalyze)
	a.router.Post("/api/analyze/batch", a.handleAnalyzeBatch)
	a.router.Get("/api/analyses", a.handleListAnalyses)
	a.router.Get("/api/analyses/{id}", a.handleGetAnalysis)
	a.router.Get("/api/analyses/{id}/report", a.handleAnalysisReport)
}

// Router exposes the configured handler for serving and tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server on the configured port.
func (a *App) Start(config Config) error {
	a.logger.Info("API listening on :%s", config.Port)
	return http.ListenAndServe(":"+config.Port, a.router)
}
