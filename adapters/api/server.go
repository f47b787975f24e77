// Package api exposes the simulation service over a small JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"bridgesim/app"
	"bridgesim/internal"
	"bridgesim/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request bodies; statistics payloads are the largest.
const maxBodyBytes = 8 << 20

// Server is the HTTP surface of the simulator
type Server struct {
	router   *chi.Mux
	service  *app.SimulationService
	defaults config.SimulationConfig
	logger   *internal.Logger
	http     *http.Server
}

// NewServer wires routes and middleware
func NewServer(service *app.SimulationService, cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		defaults: cfg.Simulation,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/simulations", s.handleSimulate)
		r.Post("/simulations/report", s.handleSimulationReport)
		r.Post("/sweeps", s.handleSweep)
		r.Post("/statistics", s.handleStatistics)
		r.Get("/materials", s.handleListMaterials)
		r.Get("/materials/{name}", s.handleGetMaterial)
	})
}

// requestLogger logs one line per request through the application logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("%s %s %d %dB %s [%s]", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until the server is shut down
func (s *Server) Start() error {
	s.logger.Info("listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
