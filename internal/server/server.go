// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/invoice-manager/internal/config"
	"github.com/carterperez-dev/invoice-manager/internal/core"
)

// Drainer is notified when the server starts shutting down so load
// balancers stop routing to it before connections are closed.
type Drainer interface {
	SetReady(ready bool)
	SetShutdown(shutdown bool)
}

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler Drainer
	Logger        *slog.Logger
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	health     Drainer
	logger     *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		core.NotFound(w, "route")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		core.JSONError(w, core.NewAppError(
			nil,
			"method not allowed",
			http.StatusMethodNotAllowed,
			"METHOD_NOT_ALLOWED",
		))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ServerConfig.Address(),
			Handler:           router,
			ReadTimeout:       cfg.ServerConfig.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.ServerConfig.WriteTimeout,
			IdleTimeout:       cfg.ServerConfig.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		router: router,
		health: cfg.HealthHandler,
		logger: logger,
	}
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start blocks until the listener fails or Shutdown is called. A clean
// shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown flips readiness off, waits drainDelay for in-flight routing to
// settle, then stops accepting connections and waits for handlers.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.SetReady(false)
		s.health.SetShutdown(true)
	}

	if drainDelay > 0 {
		s.logger.Info("draining connections", "delay", drainDelay)
		select {
		case <-time.After(drainDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
