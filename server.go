package streetflow

import (
	"context"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"github.com/theoremus-urban-solutions/streetflow/config"
	"github.com/theoremus-urban-solutions/streetflow/importer"
)

// Server exposes the engine over a JSON HTTP API
type Server struct {
	cfg        config.AppConfig
	engine     *Engine
	searcher   importer.Searcher
	importer   *importer.StreetImporter
	log        *slog.Logger
	httpServer *http.Server
}

// NewServer creates a server; searcher resolves street names for the
// search and import endpoints
func NewServer(cfg config.AppConfig, engine *Engine, searcher importer.Searcher) *Server {
	return &Server{
		cfg:      cfg,
		engine:   engine,
		searcher: searcher,
		importer: importer.NewStreetImporter(searcher),
		log:      slog.Default().With("component", "server"),
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/streets", s.handleStreets)
	mux.HandleFunc("/api/signals", s.handleSignals)
	mux.HandleFunc("/api/intersections", s.handleIntersections)
	mux.HandleFunc("/api/intersections.geojson", s.handleIntersectionsGeoJSON)
	mux.HandleFunc("/api/simulate", s.handleSimulate)
	mux.HandleFunc("/api/evaluate", s.handleEvaluate)
	mux.HandleFunc("/api/search-street", s.handleSearchStreet)
	mux.HandleFunc("/api/import-street", s.handleImportStreet)
	return mux
}

// Start listens in the background on the configured port
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()
	s.log.Info("server listening", "addr", addr)
}

// HandleGracefulShutdown blocks until SIGINT or SIGTERM, then drains
// connections and flushes the store
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	ossignal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	s.log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Error("server shutdown error", "error", err)
		} else {
			s.log.Info("server shut down successfully")
		}
	}
	if err := s.engine.Store().Save(); err != nil {
		s.log.Error("failed to save store", "error", err)
	}
}
