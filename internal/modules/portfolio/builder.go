package portfolio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/risk"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/scoring"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
	"github.com/shopqrepublik/investment-chatbot-backend/pkg/formulas"
)

// UniverseProvider supplies the candidate tickers and their price history
type UniverseProvider interface {
	GetUniverse(limit int) ([]string, error)
	GetPriceHistory(tickers []string, since time.Time) (map[string]universe.PriceSeries, error)
}

// Builder runs the full pipeline for one request. It is stateless between
// invocations; the result object carries everything the caller needs.
type Builder struct {
	provider UniverseProvider
	engine   *scoring.Engine
	filter   *risk.Filter
	log      zerolog.Logger
}

// NewBuilder creates a portfolio builder
func NewBuilder(provider UniverseProvider, engine *scoring.Engine, filter *risk.Filter, log zerolog.Logger) *Builder {
	return &Builder{
		provider: provider,
		engine:   engine,
		filter:   filter,
		log:      log.With().Str("component", "portfolio_builder").Logger(),
	}
}

// Build generates one portfolio. Every empty pipeline stage surfaces as a
// typed terminal error; missing price data for individual tickers only
// shrinks the candidate set.
func (b *Builder) Build(req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tickers, err := b.provider.GetUniverse(req.UniverseLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch universe: %w", err)
	}
	if len(tickers) == 0 {
		return nil, ErrEmptyUniverse
	}

	since := time.Now().UTC().AddDate(0, 0, -req.LookbackDays)
	series, err := b.provider.GetPriceHistory(tickers, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	if len(series) == 0 {
		return nil, ErrNoPriceData
	}

	aggregator := scoring.NewAggregator(req.MinBars, b.log)
	rows := aggregator.Aggregate(series)
	if len(rows) == 0 {
		return nil, ErrNoIndicatorRows
	}

	scored := b.engine.Score(rows)
	if len(scored) == 0 {
		return nil, ErrNoIndicatorRows
	}

	pool := b.filter.Apply(req.RiskLevel, scored)
	if len(pool) == 0 {
		return nil, ErrNoSurvivingRows
	}

	targetCount := risk.TargetCount(req.RiskLevel, req.Diversification)
	top := risk.SelectTop(pool, targetCount)

	allocations := Allocate(top)

	scores := make([]float64, len(top))
	for i, r := range top {
		scores[i] = r.Score
	}

	result := &Result{
		ID:                uuid.New().String(),
		RiskLevel:         string(req.RiskLevel),
		Diversification:   string(req.Diversification),
		RecommendedAssets: allocations,
		Summary: Summary{
			AssetsAnalyzed: len(pool),
			Recommended:    len(allocations),
			AvgScore:       round3(formulas.Mean(scores)),
		},
		Timestamp: time.Now().UTC(),
	}

	b.log.Info().
		Str("portfolio_id", result.ID).
		Str("risk", string(req.RiskLevel)).
		Str("diversification", string(req.Diversification)).
		Int("analyzed", result.Summary.AssetsAnalyzed).
		Int("recommended", result.Summary.Recommended).
		Msg("Portfolio generated")

	return result, nil
}
