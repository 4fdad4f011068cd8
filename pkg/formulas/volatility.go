package formulas

// CalculateAnnualizedVol calculates annualized volatility over the trailing
// window of daily returns.
//
// Formula:
//
//	Std Dev of last `window` daily returns × sqrt(252)
//
// Returns nil if fewer than `window` return observations exist.
func CalculateAnnualizedVol(closes []float64, window int) *float64 {
	returns := CalculateReturns(closes)
	if window <= 0 || len(returns) < window {
		return nil
	}

	vol := AnnualizedVolatility(returns[len(returns)-window:])
	return &vol
}

// CalculateMaxDrawdown calculates the maximum drawdown against a trailing
// rolling maximum:
//
//	dd[i] = close[i] / max(close[i-window+1 … i]) − 1
//
// and returns min(dd) over the bars where the rolling window is complete.
// The result is always ≤ 0 since the rolling maximum includes the current
// bar, and equals 0 only when the series never dips below a trailing peak.
// Returns nil if fewer than `window` observations exist.
func CalculateMaxDrawdown(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) < window {
		return nil
	}

	minDD := 0.0
	for i := window - 1; i < len(closes); i++ {
		peak := closes[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if closes[j] > peak {
				peak = closes[j]
			}
		}
		if peak > 0 {
			dd := closes[i]/peak - 1.0
			if dd < minDD {
				minDD = dd
			}
		}
	}

	return &minDD
}
