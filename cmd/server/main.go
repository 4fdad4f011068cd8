// Package main is the entry point for the investment chatbot backend.
// The service scores a universe of tickers from their price histories,
// assembles risk-filtered weighted portfolios and serves them over a
// REST API, together with per-ticker technical analysis snapshots.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/config"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/database"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/analysis"
	analysishandlers "github.com/shopqrepublik/investment-chatbot-backend/internal/modules/analysis/handlers"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio"
	portfoliohandlers "github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio/handlers"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/risk"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/scoring"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/scheduler"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/server"
	"github.com/shopqrepublik/investment-chatbot-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting investment chatbot backend")

	// Three-database architecture:
	// - history.db: price time series, written by external collectors
	// - portfolio.db: generated portfolios
	// - cache.db: ephemeral analysis snapshots
	historyDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "history.db"),
		Name: "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	portfolioDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "portfolio.db"),
		Name: "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{historyDB, portfolioDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to apply schema")
		}
	}

	// Repositories and services
	universeRepo := universe.NewRepository(historyDB.Conn(), log)
	portfolioRepo := portfolio.NewRepository(portfolioDB.Conn(), log)

	weights := scoring.DefaultWeights()
	if err := weights.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid scoring weights")
	}

	builder := portfolio.NewBuilder(
		universeRepo,
		scoring.NewEngine(weights, log),
		risk.NewFilter(log),
		log,
	)

	snapshotCache := analysis.NewCache(cacheDB.Conn(), analysis.DefaultCacheTTL, log)
	analysisService := analysis.NewService(universeRepo, snapshotCache, cfg.LookbackDays, log)

	// Background refresh (opt-in)
	sched := scheduler.New(cfg, builder, portfolioRepo, snapshotCache, log)
	if cfg.RefreshEnable {
		if err := sched.Register(); err != nil {
			log.Fatal().Err(err).Msg("Failed to register refresh job")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Config{
		Log:               log,
		Config:            cfg,
		HistoryDB:         historyDB,
		PortfolioDB:       portfolioDB,
		CacheDB:           cacheDB,
		UniverseRepo:      universeRepo,
		PortfolioRepo:     portfolioRepo,
		PortfolioHandlers: portfoliohandlers.NewHandler(builder, portfolioRepo, cfg, log),
		AnalysisHandlers:  analysishandlers.NewHandler(analysisService, log),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
