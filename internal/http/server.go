// Package http exposes the service's JSON API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"contas/internal/auth"
	"contas/internal/middleware/ratelimit"
	"contas/internal/middleware/security"
	"contas/internal/middleware/trace"
	"contas/internal/services"
)

// Config tunes the HTTP server.
type Config struct {
	Port string
	// MutationsPerMinute bounds mutating requests per client IP.
	MutationsPerMinute int
}

type Server struct {
	cfg      Config
	service  *services.Service
	verifier *auth.Verifier
	limiter  *ratelimit.Limiter
	srv      *http.Server
}

func NewServer(cfg Config, service *services.Service, verifier *auth.Verifier) *Server {
	if cfg.MutationsPerMinute <= 0 {
		cfg.MutationsPerMinute = 60
	}
	s := &Server{
		cfg:      cfg,
		service:  service,
		verifier: verifier,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.MutationsPerMinute}),
	}
	s.srv = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	tracer := trace.NewMiddleware(clientIP)
	r.Use(chimw.RealIP)
	r.Use(tracer.Middleware)
	r.Use(security.Middleware(security.DefaultHeadersConfig()))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	limited := s.limiter.Middleware(clientIP, nil)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Group(func(r chi.Router) {
				r.Use(limited)
				r.Post("/", s.handleCreateTask)
				r.Put("/{id}", s.handleUpdateTask)
				r.Patch("/{id}/status", s.handleUpdateTaskStatus)
				r.Delete("/{id}", s.handleDeleteTask)
			})
		})

		r.Route("/incomes", func(r chi.Router) {
			r.Get("/", s.handleListIncomes)
			r.Get("/by-month", s.handleIncomeByMonth)
			r.Group(func(r chi.Router) {
				r.Use(limited)
				r.Post("/", s.handleCreateIncome)
				r.Put("/{id}", s.handleUpdateIncome)
				r.Delete("/{id}", s.handleDeleteIncome)
			})
		})

		r.Get("/summary", s.handleSummary)
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/rate", s.handleRate)
	})

	return r
}

func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
