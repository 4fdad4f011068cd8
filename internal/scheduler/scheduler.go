// Package scheduler runs the periodic background jobs: the daily portfolio
// refresh and snapshot-cache cleanup.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/config"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/analysis"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/risk"
)

// Scheduler manages all cron tasks. Job failures are logged and never take
// the process down; the next tick simply tries again.
type Scheduler struct {
	cron    *cron.Cron
	cfg     *config.Config
	builder *portfolio.Builder
	repo    *portfolio.Repository
	cache   *analysis.Cache
	log     zerolog.Logger
}

// New creates a scheduler. The cache may be nil when snapshot caching is
// disabled.
func New(cfg *config.Config, builder *portfolio.Builder, repo *portfolio.Repository, cache *analysis.Cache, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		cfg:     cfg,
		builder: builder,
		repo:    repo,
		cache:   cache,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the daily refresh job using the configured cron expression
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.RefreshCron, s.dailyRefresh); err != nil {
		return fmt.Errorf("failed to register daily refresh job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Str("refresh_cron", s.cfg.RefreshCron).Msg("Scheduler started")
}

// Stop stops the cron scheduler. Running jobs finish before it returns.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// RunRefreshNow executes the daily refresh immediately (manual trigger)
func (s *Scheduler) RunRefreshNow() {
	s.dailyRefresh()
}

// dailyRefresh regenerates the default portfolio and purges stale
// snapshots so the first chatbot request of the day gets fresh data
func (s *Scheduler) dailyRefresh() {
	s.log.Info().Msg("Running daily refresh")

	if s.cache != nil {
		if _, err := s.cache.Purge(); err != nil {
			s.log.Error().Err(err).Msg("Snapshot cache purge failed")
		}
	}

	result, err := s.builder.Build(portfolio.Request{
		RiskLevel:       risk.TierMedium,
		Diversification: risk.DiversificationBalanced,
		UniverseLimit:   s.cfg.UniverseLimit,
		MinBars:         s.cfg.MinBars,
		LookbackDays:    s.cfg.LookbackDays,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Daily portfolio refresh failed")
		return
	}

	if err := s.repo.Save(result); err != nil {
		s.log.Error().Err(err).Str("portfolio_id", result.ID).Msg("Failed to persist refreshed portfolio")
		return
	}

	s.log.Info().
		Str("portfolio_id", result.ID).
		Int("recommended", result.Summary.Recommended).
		Msg("Daily refresh complete")
}
