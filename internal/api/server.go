package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docbrief/internal/config"
	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/llm"
	"github.com/dgallion1/docbrief/internal/pipeline"
)

// Server is the HTTP API server for docbrief.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *llm.Stats
	model        string
	categories   *document.CategorySet
	log          *slog.Logger
	cfg          config.Config
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Stats      *llm.Stats
	Model      string
	Categories *document.CategorySet
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, opts Options, log *slog.Logger, cfg config.Config) *Server {
	if opts.Categories == nil {
		opts.Categories = document.DefaultCategories
	}
	s := &Server{
		orchestrator: orch,
		stats:        opts.Stats,
		model:        opts.Model,
		categories:   opts.Categories,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Post("/generate_summary", s.handleGenerateSummary)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/summaries", s.handleCreateSummary)
		r.Get("/summaries/{jobID}/status", s.handleSummaryStatus)
		r.Get("/summaries/{jobID}/report", s.handleSummaryReport)
		r.Post("/evaluations", s.handleEvaluate)
		r.Get("/exemplars", s.handleListExemplars)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
