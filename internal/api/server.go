package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/metrics"
	"github.com/JakeFAU/frontier-crawler/internal/orchestrator"
	"github.com/JakeFAU/frontier-crawler/internal/progress/sinks"
)

// Options tunes the HTTP surface.
type Options struct {
	// RequestTimeout bounds handler execution; zero means 60s.
	RequestTimeout time.Duration
	// APIKey, when set, gates every route behind an X-API-Key check.
	APIKey string
	// History, when set, backs the per-task events route.
	History *sinks.HistorySink
}

// Server wires HTTP handlers to the orchestrator.
type Server struct {
	router  chi.Router
	orch    *orchestrator.Orchestrator
	logger  *zap.Logger
	history *sinks.HistorySink
}

// NewServer constructs a Server with middleware and routes.
func NewServer(orch *orchestrator.Orchestrator, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	s := &Server{orch: orch, logger: logger, history: opts.History}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(opts.RequestTimeout))
	if opts.APIKey != "" {
		r.Use(apiKeyMiddleware(opts.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.createTask)
			r.Get("/", s.listTasks)
			r.Route("/{task_id}", func(r chi.Router) {
				r.Post("/start", s.startTask)
				r.Post("/pause", s.pauseTask)
				r.Post("/resume", s.resumeTask)
				r.Post("/stop", s.stopTask)
				r.Post("/urls", s.addURL)
				r.Patch("/config", s.updateConfig)
				r.Get("/status", s.taskStatus)
				r.Get("/events", s.taskEvents)
				r.Get("/results", s.taskResults)
				r.Get("/export", s.exportResults)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
