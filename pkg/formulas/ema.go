package formulas

// CalculateEMASeries calculates the Exponential Moving Average over the full
// series, seeded with the first observed value (no look-back padding).
//
// EMA Formula:
//
//	EMA_today = (Price_today × multiplier) + (EMA_yesterday × (1 - multiplier))
//	where multiplier = 2 / (span + 1)
//
// Args:
//
//	closes: Array of closing prices
//	span:   EMA span (e.g. 12, 26)
//
// Returns:
//
//	A slice of the same length as closes, or nil if closes is empty
func CalculateEMASeries(closes []float64, span int) []float64 {
	if len(closes) == 0 || span <= 0 {
		return nil
	}

	alpha := 2.0 / (float64(span) + 1.0)
	ema := make([]float64, len(closes))
	ema[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		ema[i] = alpha*closes[i] + (1-alpha)*ema[i-1]
	}

	return ema
}

// CalculateEMA calculates the current EMA value, seeded with the first
// observed value. Returns nil if the series is empty.
func CalculateEMA(closes []float64, span int) *float64 {
	ema := CalculateEMASeries(closes, span)
	if len(ema) == 0 {
		return nil
	}

	result := ema[len(ema)-1]
	return &result
}
