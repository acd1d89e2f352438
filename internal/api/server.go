package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/flowgate/internal/api/handler"
	mw "github.com/edvin/flowgate/internal/api/middleware"
	"github.com/edvin/flowgate/internal/config"
	"github.com/edvin/flowgate/internal/core"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	backend  core.Backend
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, backend core.Backend, cfg *config.Config) *Server {
	services := core.NewServices(backend, cfg.EnvPrefix, cfg.ProvisionTimeout, logger)

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		backend:  backend,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	workflow := handler.NewWorkflow(
		s.services.Execution,
		s.services.Template,
		s.backend,
		s.cfg.N8nBaseURL,
		s.cfg.EnvPrefix,
	)
	s.router.Route("/workflow", func(r chi.Router) {
		r.Get("/templates", workflow.ListTemplates)
		r.Get("/health", workflow.Health)
		r.Post("/{workspace}/{segment}", workflow.Execute)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.backend.Ping(ctx); err != nil {
		checks["n8n"] = err.Error()
		healthy = false
	} else {
		checks["n8n"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
