package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/config"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/database"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/analysis"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/portfolio"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/risk"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/scoring"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
)

func openDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path: fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, t.Name()),
		Name: name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func newTestScheduler(t *testing.T) (*Scheduler, *portfolio.Repository) {
	t.Helper()

	historyDB := openDB(t, "history")
	portfolioDB := openDB(t, "portfolio")
	cacheDB := openDB(t, "cache")

	universeRepo := universe.NewRepository(historyDB.Conn(), zerolog.Nop())

	// Recent histories so the lookback window covers them
	start := time.Now().UTC().AddDate(0, 0, -160)
	for i := 0; i < 5; i++ {
		ticker := fmt.Sprintf("T%d", i)
		points := make([]universe.PricePoint, 150)
		price := 100.0
		for d := 0; d < 150; d++ {
			points[d] = universe.PricePoint{
				Date:  start.AddDate(0, 0, d).Format("2006-01-02"),
				Close: price,
			}
			price *= 1 + float64(i)*0.0005
		}
		require.NoError(t, universeRepo.UpsertPrices(ticker, points))
	}

	portfolioRepo := portfolio.NewRepository(portfolioDB.Conn(), zerolog.Nop())
	builder := portfolio.NewBuilder(
		universeRepo,
		scoring.NewEngine(scoring.DefaultWeights(), zerolog.Nop()),
		risk.NewFilter(zerolog.Nop()),
		zerolog.Nop(),
	)
	cache := analysis.NewCache(cacheDB.Conn(), analysis.DefaultCacheTTL, zerolog.Nop())

	cfg := &config.Config{
		UniverseLimit: config.DefaultUniverseLimit,
		MinBars:       config.DefaultMinBars,
		LookbackDays:  config.DefaultLookbackDays,
		RefreshCron:   "0 30 6 * * *",
	}

	return New(cfg, builder, portfolioRepo, cache, zerolog.Nop()), portfolioRepo
}

func TestRunRefreshNow_PersistsPortfolio(t *testing.T) {
	s, repo := newTestScheduler(t)

	s.RunRefreshNow()

	result, err := repo.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, "medium", result.RiskLevel)
	assert.Equal(t, "balanced", result.Diversification)
	assert.Len(t, result.RecommendedAssets, 5)
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NoError(t, s.Register())
}

func TestRegister_BadCronSpec(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.cfg.RefreshCron = "not a cron spec"
	assert.Error(t, s.Register())
}

func TestRefresh_FailureIsNonFatal(t *testing.T) {
	historyDB := openDB(t, "history_empty")
	portfolioDB := openDB(t, "portfolio")

	// history_empty has no schema mapping, so the prices table is missing
	// and the refresh errors internally
	universeRepo := universe.NewRepository(historyDB.Conn(), zerolog.Nop())
	portfolioRepo := portfolio.NewRepository(portfolioDB.Conn(), zerolog.Nop())
	builder := portfolio.NewBuilder(
		universeRepo,
		scoring.NewEngine(scoring.DefaultWeights(), zerolog.Nop()),
		risk.NewFilter(zerolog.Nop()),
		zerolog.Nop(),
	)

	cfg := &config.Config{
		UniverseLimit: 300,
		MinBars:       120,
		LookbackDays:  400,
		RefreshCron:   "0 30 6 * * *",
	}

	s := New(cfg, builder, portfolioRepo, nil, zerolog.Nop())

	assert.NotPanics(t, func() { s.RunRefreshNow() })

	_, err := portfolioRepo.GetLatest()
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}
