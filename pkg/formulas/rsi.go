package formulas

// CalculateRSI calculates the Relative Strength Index over the trailing
// window of `period` deltas.
//
// RSI Formula:
//
//	RSI = 100 × Average Gain / (Average Gain + Average Loss)
//
// When the window contains no losses the denominator degenerates: the
// result is defined as 100 if there were gains and 50 (neutral) for a
// completely flat window, instead of dividing by zero.
//
// Args:
//
//	closes: Array of closing prices
//	period: RSI period (typically 14)
//
// Returns:
//
//	Current RSI value (0-100) or nil if insufficient data
func CalculateRSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	var rsi float64
	switch {
	case avgGain+avgLoss == 0:
		rsi = 50.0 // flat window, neutral
	case avgLoss == 0:
		rsi = 100.0
	default:
		rsi = 100.0 * avgGain / (avgGain + avgLoss)
	}

	return &rsi
}
