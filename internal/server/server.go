// Package server exposes the HTTP API: the creation form, the JSON
// endpoints, and the websocket event feed.
package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/config"
	"github.com/feifeixp/neocore-go/internal/constants"
	"github.com/feifeixp/neocore-go/internal/service/generator"
)

//go:embed static
var staticFiles embed.FS

// HealthCheck reports the state of one attached backend.
type HealthCheck func(ctx context.Context) any

type Server struct {
	httpServer *http.Server
	generator  *generator.Generator
	reader     WorldReader
	cache      DocumentCache
	hub        *Hub
	logger     *zap.Logger
	checks     map[string]HealthCheck
}

// New wires the handlers onto a mux. cache may be nil.
func New(cfg config.ServerConfig, gen *generator.Generator, reader WorldReader, docCache DocumentCache, hub *Hub, logger *zap.Logger) *Server {
	s := &Server{
		generator: gen,
		reader:    reader,
		cache:     docCache,
		hub:       hub,
		logger:    logger,
		checks:    make(map[string]HealthCheck),
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.routes(),
		ReadTimeout:  constants.HTTPConfig.ReadTimeout,
		WriteTimeout: constants.HTTPConfig.WriteTimeout,
		IdleTimeout:  constants.HTTPConfig.IdleTimeout,
	}
	return s
}

// AddHealthCheck attaches a named backend status to the health endpoint.
// Call before Start; checks are not synchronized with request handling.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/characters", s.handleCreateCharacter)
	mux.HandleFunc("GET /api/worlds", s.handleListWorlds)
	mux.HandleFunc("POST /api/worlds", s.handleCreateWorld)
	mux.HandleFunc("GET /api/worlds/{worldId}", s.handleGetWorld)
	mux.HandleFunc("GET /api/worlds/{worldId}/characters", s.handleListCharacters)
	mux.HandleFunc("GET /api/worlds/{worldId}/characters/{soulId}", s.handleGetCharacter)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.hub.HandleWS)

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /", http.FileServerFS(static))

	return s.withLogging(mux)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
