// Package server exposes the question-answering pipeline over HTTP as a
// small JSON API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/askql/internal/engine"
	"golang.org/x/sync/errgroup"
)

const requestTimeout = 60 * time.Second

// Server is the HTTP front end.
type Server struct {
	engine     *engine.Engine
	port       int
	dateColumn string
	logger     *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Engine *engine.Engine
	Port   int
	// DateColumn names the column used for the dataset date range summary.
	DateColumn string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine:     cfg.Engine,
		port:       cfg.Port,
		dateColumn: cfg.DateColumn,
		logger:     logger,
	}
}

// Router builds the HTTP routes. Exposed separately so tests can drive the
// handlers without a listener.
func (s *Server) Router() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)

	r.Get("/healthz", s.handleHealth)
	r.Get("/data-info", s.handleDataInfo)
	r.Post("/ask", s.handleAsk)

	return r
}

// Serve starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
