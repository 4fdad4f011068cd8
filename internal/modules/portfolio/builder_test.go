package portfolio

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/risk"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/scoring"
	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
)

type fakeProvider struct {
	tickers []string
	series  map[string]universe.PriceSeries
}

func (f *fakeProvider) GetUniverse(limit int) ([]string, error) {
	if limit < len(f.tickers) {
		return f.tickers[:limit], nil
	}
	return f.tickers, nil
}

func (f *fakeProvider) GetPriceHistory(tickers []string, since time.Time) (map[string]universe.PriceSeries, error) {
	out := make(map[string]universe.PriceSeries)
	for _, t := range tickers {
		if s, ok := f.series[t]; ok {
			out[t] = s
		}
	}
	return out, nil
}

func syntheticSeries(ticker string, start, dailyGrowth float64, n int) universe.PriceSeries {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]universe.PricePoint, n)
	price := start
	for i := 0; i < n; i++ {
		points[i] = universe.PricePoint{
			Date:  day.AddDate(0, 0, i).Format("2006-01-02"),
			Close: price,
		}
		price *= 1 + dailyGrowth
	}
	return universe.PriceSeries{Ticker: ticker, Points: points}
}

func newTestBuilder(provider UniverseProvider) *Builder {
	return NewBuilder(
		provider,
		scoring.NewEngine(scoring.DefaultWeights(), zerolog.Nop()),
		risk.NewFilter(zerolog.Nop()),
		zerolog.Nop(),
	)
}

func defaultRequest() Request {
	return Request{
		RiskLevel:       risk.TierMedium,
		Diversification: risk.DiversificationBalanced,
		UniverseLimit:   300,
		MinBars:         120,
		LookbackDays:    400,
	}
}

func trendingAndFlatProvider() *fakeProvider {
	return &fakeProvider{
		tickers: []string{"FLAT1", "FLAT2", "UP1", "UP2", "UP3"},
		series: map[string]universe.PriceSeries{
			"UP1":   syntheticSeries("UP1", 100, 0.001, 150),
			"UP2":   syntheticSeries("UP2", 50, 0.001, 150),
			"UP3":   syntheticSeries("UP3", 200, 0.001, 150),
			"FLAT1": syntheticSeries("FLAT1", 100, 0, 150),
			"FLAT2": syntheticSeries("FLAT2", 80, 0, 150),
		},
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	builder := newTestBuilder(trendingAndFlatProvider())

	result, err := builder.Build(defaultRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "medium", result.RiskLevel)
	assert.Equal(t, "balanced", result.Diversification)
	assert.Equal(t, 5, result.Summary.AssetsAnalyzed)
	assert.Equal(t, 5, result.Summary.Recommended)
	assert.False(t, result.Timestamp.IsZero())

	require.Len(t, result.RecommendedAssets, 5)

	total := 0.0
	weight := make(map[string]float64)
	for _, a := range result.RecommendedAssets {
		total += a.AllocationPct
		weight[a.Ticker] = a.AllocationPct
	}
	assert.InDelta(t, 100.0, total, 0.05)

	for _, up := range []string{"UP1", "UP2", "UP3"} {
		for _, flat := range []string{"FLAT1", "FLAT2"} {
			assert.Greater(t, weight[up], weight[flat], "%s should outweigh %s", up, flat)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	builder := newTestBuilder(trendingAndFlatProvider())

	first, err := builder.Build(defaultRequest())
	require.NoError(t, err)
	second, err := builder.Build(defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, first.RecommendedAssets, second.RecommendedAssets)
	assert.Equal(t, first.Summary, second.Summary)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBuild_MonotonicSelection(t *testing.T) {
	builder := newTestBuilder(trendingAndFlatProvider())

	req := defaultRequest()
	req.Diversification = risk.DiversificationConcentrated

	result, err := builder.Build(req)
	require.NoError(t, err)
	require.Len(t, result.RecommendedAssets, 3)

	// The three selected rows must be the highest-scored pool members
	minSelected := result.RecommendedAssets[0].Score
	for _, a := range result.RecommendedAssets {
		if a.Score < minSelected {
			minSelected = a.Score
		}
	}

	full, err := builder.Build(defaultRequest())
	require.NoError(t, err)
	for _, a := range full.RecommendedAssets[3:] {
		assert.LessOrEqual(t, a.Score, minSelected)
	}
}

func TestBuild_EmptyUniverse(t *testing.T) {
	builder := newTestBuilder(&fakeProvider{})

	_, err := builder.Build(defaultRequest())
	assert.ErrorIs(t, err, ErrEmptyUniverse)
}

func TestBuild_NoPriceData(t *testing.T) {
	builder := newTestBuilder(&fakeProvider{
		tickers: []string{"GHOST"},
		series:  map[string]universe.PriceSeries{},
	})

	_, err := builder.Build(defaultRequest())
	assert.ErrorIs(t, err, ErrNoPriceData)
}

func TestBuild_AllHistoriesTooShort(t *testing.T) {
	builder := newTestBuilder(&fakeProvider{
		tickers: []string{"A", "B"},
		series: map[string]universe.PriceSeries{
			"A": syntheticSeries("A", 100, 0.001, 50),
			"B": syntheticSeries("B", 100, 0.002, 50),
		},
	})

	_, err := builder.Build(defaultRequest())
	assert.ErrorIs(t, err, ErrNoIndicatorRows)
}

func TestBuild_MissingTickerIsExcludedNotFatal(t *testing.T) {
	provider := trendingAndFlatProvider()
	provider.tickers = append(provider.tickers, "MISSING")

	builder := newTestBuilder(provider)

	result, err := builder.Build(defaultRequest())
	require.NoError(t, err)
	for _, a := range result.RecommendedAssets {
		assert.NotEqual(t, "MISSING", a.Ticker)
	}
}

func TestBuild_InvalidRequest(t *testing.T) {
	builder := newTestBuilder(trendingAndFlatProvider())

	req := defaultRequest()
	req.RiskLevel = risk.Tier("reckless")
	_, err := builder.Build(req)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	req = defaultRequest()
	req.MinBars = 0
	_, err = builder.Build(req)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	req = defaultRequest()
	req.LookbackDays = -1
	_, err = builder.Build(req)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
