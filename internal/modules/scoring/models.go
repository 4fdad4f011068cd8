// Package scoring turns raw price histories into comparable per-ticker
// scores: an aggregator computes technical indicator rows and an engine
// normalizes them cross-sectionally into one weighted composite score.
package scoring

import "fmt"

// IndicatorRow holds the technical features for one ticker. Pointer fields
// are nil when the underlying window was too short to compute the value;
// nil is distinct from a computed zero.
type IndicatorRow struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`

	RSI             *float64 `json:"rsi"`
	MACD            *float64 `json:"macd"`
	MACDSignal      *float64 `json:"macd_signal"`
	MACDAboveSignal bool     `json:"macd_above_sig"`
	MACDAboveZero   bool     `json:"macd_above_zero"`
	Vol30           *float64 `json:"vol30"`
	DD90            *float64 `json:"dd90"`
	Mom20           *float64 `json:"mom20"`
	TrendSlope      *float64 `json:"trend_slope"`
	RecentStrength  *float64 `json:"recent_strength"`
}

// Complete reports whether every feature needed by the scoring weights is
// defined. Incomplete rows are excluded before any cross-sectional
// statistics are computed.
func (r IndicatorRow) Complete() bool {
	return r.RSI != nil &&
		r.MACD != nil &&
		r.MACDSignal != nil &&
		r.Vol30 != nil &&
		r.DD90 != nil &&
		r.Mom20 != nil &&
		r.TrendSlope != nil &&
		r.RecentStrength != nil
}

// ScoredRow is an IndicatorRow plus its per-feature z-scores and the
// combined composite score.
type ScoredRow struct {
	IndicatorRow

	ZTrend          float64 `json:"z_trend"`
	ZMom20          float64 `json:"z_mom20"`
	ZRSIQuality     float64 `json:"z_rsi_quality"`
	ZMACDQuality    float64 `json:"z_macd_quality"`
	ZLowVol         float64 `json:"z_low_vol"`
	ZLowDD          float64 `json:"z_low_dd"`
	ZRecentStrength float64 `json:"z_recent_strength"`

	Score float64 `json:"score"`
}

// Weights is the fixed weight table combining the normalized sub-scores
// into one composite score.
type Weights struct {
	TrendSlope     float64 `json:"trend_slope"`
	Momentum20     float64 `json:"momentum_20"`
	RSIQuality     float64 `json:"rsi_quality"`
	MACDQuality    float64 `json:"macd_quality"`
	LowVolatility  float64 `json:"low_volatility"`
	LowDrawdown    float64 `json:"low_drawdown"`
	RecentStrength float64 `json:"recent_strength"`
}

// DefaultWeights returns the canonical weight table.
func DefaultWeights() Weights {
	return Weights{
		TrendSlope:     0.25,
		Momentum20:     0.20,
		RSIQuality:     0.15,
		MACDQuality:    0.15,
		LowVolatility:  0.10,
		LowDrawdown:    0.10,
		RecentStrength: 0.05,
	}
}

// Validate checks that the weights sum to 1.0 within floating-point
// tolerance and that no weight is negative.
func (w Weights) Validate() error {
	sum := w.TrendSlope + w.Momentum20 + w.RSIQuality + w.MACDQuality +
		w.LowVolatility + w.LowDrawdown + w.RecentStrength

	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}

	for _, v := range []float64{
		w.TrendSlope, w.Momentum20, w.RSIQuality, w.MACDQuality,
		w.LowVolatility, w.LowDrawdown, w.RecentStrength,
	} {
		if v < 0 {
			return fmt.Errorf("weights must be non-negative, got %.4f", v)
		}
	}

	return nil
}
