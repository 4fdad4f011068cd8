// Package server provides the HTTP server and routing for the chatbot
// backend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/config"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/database"
	analysishandlers "github.com/shopqrepublik/investment-chatbot-backend/internal/modules/analysis/handlers"
	portfoliohandlers "github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio/handlers"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
)

// Config holds server dependencies
type Config struct {
	Log               zerolog.Logger
	Config            *config.Config
	HistoryDB         *database.DB
	PortfolioDB       *database.DB
	CacheDB           *database.DB
	UniverseRepo      *universe.Repository
	PortfolioRepo     *portfolio.Repository
	PortfolioHandlers *portfoliohandlers.Handler
	AnalysisHandlers  *analysishandlers.Handler
}

// Server is the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	systemHandlers *SystemHandlers
	portfolioAPI   *portfoliohandlers.Handler
	analysisAPI    *analysishandlers.Handler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg.Config,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.HistoryDB,
			cfg.PortfolioDB,
			cfg.CacheDB,
			cfg.UniverseRepo,
			cfg.PortfolioRepo,
		),
		portfolioAPI: cfg.PortfolioHandlers,
		analysisAPI:  cfg.AnalysisHandlers,
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware stack
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.systemHandlers.HandleHealth)
		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

		s.portfolioAPI.RegisterRoutes(r)
		s.analysisAPI.RegisterRoutes(r)
	})
}

// Router exposes the configured router. Used by httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
