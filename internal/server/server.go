package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/pathfit/internal/cache"
	"github.com/ziadkadry99/pathfit/internal/db"
	"github.com/ziadkadry99/pathfit/internal/history"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool           // allow all CORS origins (dev mode)
	Frame    pathdata.Frame // used when a request names no frame
	Strict   bool           // default malformed-input mode
}

// Server exposes the rescaler over HTTP and WebSocket.
type Server struct {
	cfg        Config
	db         *db.DB
	cache      *cache.Store
	history    *history.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. database may be nil, which disables caching and
// the history endpoints.
func New(cfg Config, database *db.DB) *Server {
	s := &Server{cfg: cfg, db: database}
	if database != nil {
		s.cache = cache.NewStore(database)
		s.history = history.NewStore(database)
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Pathfit-Paths", "X-Pathfit-Rewritten"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The WebSocket connection outlives any request timeout.
	r.Get("/ws", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/api", func(r chi.Router) {
			r.Post("/rescale", s.handleRescale)
			r.Post("/fit", s.handleFit)
			r.Get("/clip/progress", s.handleClipProgress)
			r.Get("/clip/bar", s.handleClipBar)
			r.Get("/history", s.handleHistoryList)
			r.Get("/history/{id}", s.handleHistoryGet)
			r.Get("/cache/stats", s.handleCacheStats)
		})
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("pathfit server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
