package scoring

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// zScoreEpsilon keeps z-scoring defined when a feature column has zero
// variance across the candidate set.
const zScoreEpsilon = 1e-9

// rsiMidpoint is the RSI value treated as ideal by the RSI-quality
// transform; values further from it score lower.
const rsiMidpoint = 55.0

// Engine normalizes indicator rows cross-sectionally and combines the
// normalized features into one composite score per ticker.
type Engine struct {
	weights Weights
	log     zerolog.Logger
}

// NewEngine creates a scoring engine. The weights must already be
// validated by the caller.
func NewEngine(weights Weights, log zerolog.Logger) *Engine {
	return &Engine{
		weights: weights,
		log:     log.With().Str("component", "scoring_engine").Logger(),
	}
}

// Score z-scores each feature across the candidate set and combines the
// sub-scores via the weight table. Rows with any undefined feature are
// dropped before any statistics are computed, so an incomplete row never
// influences another row's z-scores. The result is sorted by score
// descending, ties broken by ticker ascending.
func (e *Engine) Score(rows []IndicatorRow) []ScoredRow {
	candidates := make([]IndicatorRow, 0, len(rows))
	for _, r := range rows {
		if r.Complete() {
			candidates = append(candidates, r)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	n := len(candidates)
	trend := make([]float64, n)
	mom20 := make([]float64, n)
	rsiQ := make([]float64, n)
	macdQ := make([]float64, n)
	vol30 := make([]float64, n)
	negDD := make([]float64, n)
	strength := make([]float64, n)

	for i, r := range candidates {
		trend[i] = *r.TrendSlope
		mom20[i] = *r.Mom20
		rsiQ[i] = 1.0 - math.Abs(*r.RSI-rsiMidpoint)/rsiMidpoint
		macdQ[i] = macdQuality(r)
		vol30[i] = *r.Vol30
		negDD[i] = -*r.DD90
		strength[i] = *r.RecentStrength
	}

	zTrend := zScores(trend)
	zMom20 := zScores(mom20)
	zRSIQ := zScores(rsiQ)
	zMACDQ := zScores(macdQ)
	zVol30 := zScores(vol30)
	zNegDD := zScores(negDD)
	zStrength := zScores(strength)

	scored := make([]ScoredRow, n)
	for i, r := range candidates {
		s := ScoredRow{
			IndicatorRow:    r,
			ZTrend:          zTrend[i],
			ZMom20:          zMom20[i],
			ZRSIQuality:     zRSIQ[i],
			ZMACDQuality:    zMACDQ[i],
			ZLowVol:         -zVol30[i],
			ZLowDD:          -zNegDD[i],
			ZRecentStrength: zStrength[i],
		}

		s.Score = e.weights.TrendSlope*s.ZTrend +
			e.weights.Momentum20*s.ZMom20 +
			e.weights.RSIQuality*s.ZRSIQuality +
			e.weights.MACDQuality*s.ZMACDQuality +
			e.weights.LowVolatility*s.ZLowVol +
			e.weights.LowDrawdown*s.ZLowDD +
			e.weights.RecentStrength*s.ZRecentStrength

		scored[i] = s
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Ticker < scored[j].Ticker
	})

	e.log.Debug().
		Int("rows_in", len(rows)).
		Int("rows_scored", n).
		Msg("Scored indicator rows")

	return scored
}

// macdQuality averages the two MACD posture flags into [0, 1]
func macdQuality(r IndicatorRow) float64 {
	q := 0.0
	if r.MACDAboveSignal {
		q += 0.5
	}
	if r.MACDAboveZero {
		q += 0.5
	}
	return q
}

// zScores normalizes a feature column: (x − mean) / (stdev + ε)
func zScores(values []float64) []float64 {
	mean := stat.Mean(values, nil)
	stdev := stat.StdDev(values, nil)
	if math.IsNaN(stdev) {
		stdev = 0
	}

	z := make([]float64, len(values))
	for i, v := range values {
		z[i] = (v - mean) / (stdev + zScoreEpsilon)
	}
	return z
}
