package scoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/universe"
)

func fptr(v float64) *float64 { return &v }

// completeRow builds an IndicatorRow with every feature defined
func completeRow(ticker string, trendSlope, mom20 float64) IndicatorRow {
	return IndicatorRow{
		Ticker:          ticker,
		Price:           100,
		RSI:             fptr(55),
		MACD:            fptr(1.0),
		MACDSignal:      fptr(0.5),
		MACDAboveSignal: true,
		MACDAboveZero:   true,
		Vol30:           fptr(0.2),
		DD90:            fptr(-0.05),
		Mom20:           fptr(mom20),
		TrendSlope:      fptr(trendSlope),
		RecentStrength:  fptr(0.6),
	}
}

func TestScore_DropsIncompleteRows(t *testing.T) {
	engine := NewEngine(DefaultWeights(), zerolog.Nop())

	complete := []IndicatorRow{
		completeRow("AAA", 0.3, 0.05),
		completeRow("BBB", 0.1, 0.01),
	}

	incomplete := completeRow("CCC", 0.9, 0.9)
	incomplete.RSI = nil

	scored := engine.Score(append(append([]IndicatorRow{}, complete...), incomplete))
	require.Len(t, scored, 2)

	// The dropped row must not have influenced the statistics
	baseline := engine.Score(complete)
	assert.Equal(t, baseline, scored)
}

func TestScore_ZeroVarianceYieldsZeroScores(t *testing.T) {
	engine := NewEngine(DefaultWeights(), zerolog.Nop())

	rows := []IndicatorRow{
		completeRow("BBB", 0.2, 0.03),
		completeRow("AAA", 0.2, 0.03),
		completeRow("CCC", 0.2, 0.03),
	}

	scored := engine.Score(rows)
	require.Len(t, scored, 3)

	for _, s := range scored {
		assert.InDelta(t, 0.0, s.Score, 1e-9)
	}

	// Equal scores fall back to ticker order
	assert.Equal(t, "AAA", scored[0].Ticker)
	assert.Equal(t, "BBB", scored[1].Ticker)
	assert.Equal(t, "CCC", scored[2].Ticker)
}

func TestScore_RanksByScoreDescending(t *testing.T) {
	engine := NewEngine(DefaultWeights(), zerolog.Nop())

	rows := []IndicatorRow{
		completeRow("MID", 0.2, 0.03),
		completeRow("TOP", 0.5, 0.10),
		completeRow("LOW", -0.1, -0.02),
	}

	scored := engine.Score(rows)
	require.Len(t, scored, 3)

	assert.Equal(t, "TOP", scored[0].Ticker)
	assert.Equal(t, "MID", scored[1].Ticker)
	assert.Equal(t, "LOW", scored[2].Ticker)
	assert.Greater(t, scored[0].Score, scored[1].Score)
	assert.Greater(t, scored[1].Score, scored[2].Score)
}

func TestScore_TrendingBeatsFlat(t *testing.T) {
	agg := NewAggregator(120, zerolog.Nop())
	engine := NewEngine(DefaultWeights(), zerolog.Nop())

	series := map[string]universe.PriceSeries{
		"UP1":   growthSeries("UP1", 100, 0.001, 150),
		"UP2":   growthSeries("UP2", 50, 0.001, 150),
		"UP3":   growthSeries("UP3", 200, 0.001, 150),
		"FLAT1": growthSeries("FLAT1", 100, 0, 150),
		"FLAT2": growthSeries("FLAT2", 80, 0, 150),
	}

	scored := engine.Score(agg.Aggregate(series))
	require.Len(t, scored, 5)

	rank := make(map[string]int, len(scored))
	for i, s := range scored {
		rank[s.Ticker] = i
	}

	for _, up := range []string{"UP1", "UP2", "UP3"} {
		for _, flat := range []string{"FLAT1", "FLAT2"} {
			assert.Less(t, rank[up], rank[flat], "%s should outrank %s", up, flat)
		}
	}
}

func TestScore_Empty(t *testing.T) {
	engine := NewEngine(DefaultWeights(), zerolog.Nop())

	assert.Nil(t, engine.Score(nil))

	incomplete := completeRow("AAA", 0.1, 0.01)
	incomplete.Vol30 = nil
	assert.Nil(t, engine.Score([]IndicatorRow{incomplete}))
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	bad := DefaultWeights()
	bad.TrendSlope = 0.5
	assert.Error(t, bad.Validate())

	negative := Weights{TrendSlope: 1.1, Momentum20: -0.1}
	assert.Error(t, negative.Validate())
}
