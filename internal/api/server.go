// Package api exposes the reconciliation pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/lead-ledger/internal/config"
	"github.com/ignite/lead-ledger/internal/service"
)

// Server wraps the HTTP server and its routes.
type Server struct {
	cfg     config.ServerConfig
	runner  *service.Runner
	router  *chi.Mux
	server  *http.Server
	started time.Time
}

// NewServer builds the server and wires up all routes.
func NewServer(cfg config.ServerConfig, runner *service.Runner) *Server {
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		started: time.Now(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/runs", s.handleRun)
		r.Get("/history", s.handleHistory)
	})

	return r
}

// Handler returns the root handler (useful for tests).
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving. It blocks until Shutdown or a listener error.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
