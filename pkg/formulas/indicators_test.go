package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSeries builds a price series of length n starting at start, growing by
// growth fraction per bar.
func makeSeries(start, growth float64, n int) []float64 {
	prices := make([]float64, n)
	p := start
	for i := 0; i < n; i++ {
		prices[i] = p
		p *= 1 + growth
	}
	return prices
}

func TestCalculateEMASeries_SeededWithFirstValue(t *testing.T) {
	// span=3 -> alpha=0.5
	ema := CalculateEMASeries([]float64{2, 4, 8}, 3)
	require.Len(t, ema, 3)
	assert.Equal(t, 2.0, ema[0])
	assert.InDelta(t, 3.0, ema[1], 1e-12)
	assert.InDelta(t, 5.5, ema[2], 1e-12)
}

func TestCalculateEMA_Empty(t *testing.T) {
	assert.Nil(t, CalculateEMA(nil, 12))
	assert.Nil(t, CalculateEMA([]float64{1, 2, 3}, 0))
}

func TestCalculateRSI_MonotonicGainsIsHundred(t *testing.T) {
	rsi := CalculateRSI(makeSeries(100, 0.01, 30), 14)
	require.NotNil(t, rsi)
	assert.Equal(t, 100.0, *rsi)
}

func TestCalculateRSI_FlatWindowIsNeutral(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 50.0
	}
	rsi := CalculateRSI(flat, 14)
	require.NotNil(t, rsi)
	assert.Equal(t, 50.0, *rsi)
}

func TestCalculateRSI_AllLossesIsZero(t *testing.T) {
	rsi := CalculateRSI(makeSeries(100, -0.01, 30), 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 0.0, *rsi, 1e-12)
}

func TestCalculateRSI_BalancedWindow(t *testing.T) {
	// 14 deltas alternating +1/-1: average gain == average loss -> RSI 50
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		closes = append(closes, closes[len(closes)-1]+1)
		closes = append(closes, closes[len(closes)-1]-1)
	}
	rsi := CalculateRSI(closes, 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 50.0, *rsi, 1e-9)
}

func TestCalculateRSI_InsufficientData(t *testing.T) {
	assert.Nil(t, CalculateRSI(makeSeries(100, 0.01, 14), 14))
}

func TestCalculateMACD_HistogramIdentity(t *testing.T) {
	closes := makeSeries(100, 0.005, 60)
	macdLine, signalLine, histogram := CalculateMACDSeries(closes, 12, 26, 9)
	require.Len(t, macdLine, 60)
	for i := range closes {
		assert.InDelta(t, macdLine[i]-signalLine[i], histogram[i], 1e-12)
	}

	v := CalculateMACD(closes, 12, 26, 9)
	require.NotNil(t, v)
	assert.InDelta(t, macdLine[59], v.Line, 1e-12)
	assert.InDelta(t, signalLine[59], v.Signal, 1e-12)
	// A steadily rising series keeps the fast EMA above the slow one
	assert.Greater(t, v.Line, 0.0)
}

func TestCalculateMACD_ConstantSeriesIsZero(t *testing.T) {
	v := CalculateMACD(makeSeries(100, 0, 60), 12, 26, 9)
	require.NotNil(t, v)
	assert.InDelta(t, 0.0, v.Line, 1e-12)
	assert.InDelta(t, 0.0, v.Signal, 1e-12)
	assert.InDelta(t, 0.0, v.Histogram, 1e-12)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 0.0, Median(nil))
}

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)
}

func TestCalculateSMA_TalibLastValue(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 10.0
	}
	sma := CalculateSMA(closes, 20)
	require.NotNil(t, sma)
	assert.InDelta(t, 10.0, *sma, 1e-9)

	assert.Nil(t, CalculateSMA(closes[:10], 20))
}

func TestCalculateBollingerPosition_CollapsedBands(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 10.0
	}
	pos := CalculateBollingerPosition(closes, 20, 2.0)
	require.NotNil(t, pos)
	assert.Equal(t, 0.5, pos.Position)
	assert.InDelta(t, 10.0, pos.Bands.Middle, 1e-9)
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}
	vol := AnnualizedVolatility(returns)
	expected := StdDev(returns) * math.Sqrt(252)
	assert.InDelta(t, expected, vol, 1e-12)
}
