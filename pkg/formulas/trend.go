package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// minSlopePoints is the minimum number of observations required for a
// meaningful linear fit.
const minSlopePoints = 10

// CalculateTrendSlope calculates the annualized slope of a linear fit of
// log-price against a 0-based day index over the trailing window.
//
// Formula:
//
//	slope of OLS fit of ln(close) vs day index, × 252
//
// Returns nil if fewer than 10 points are available or any price in the
// window is non-positive.
func CalculateTrendSlope(closes []float64, window int) *float64 {
	tail := closes
	if window > 0 && len(closes) > window {
		tail = closes[len(closes)-window:]
	}
	if len(tail) < minSlopePoints {
		return nil
	}

	xs := make([]float64, len(tail))
	ys := make([]float64, len(tail))
	for i, c := range tail {
		if c <= 0 {
			return nil
		}
		xs[i] = float64(i)
		ys[i] = math.Log(c)
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)
	slope := beta * 252
	return &slope
}

// CalculateMomentum calculates the fractional return over the trailing
// window: the last close divided by the window-th close from the end,
// minus one. Returns nil if fewer than window+1 observations exist.
func CalculateMomentum(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) < window+1 {
		return nil
	}

	base := closes[len(closes)-window]
	if base == 0 {
		return nil
	}

	momentum := closes[len(closes)-1]/base - 1.0
	return &momentum
}

// CalculateRecentStrength calculates the fraction of the last `window`
// daily returns that are strictly positive. When fewer than `window`
// returns exist the fraction is taken over what is available. Returns nil
// if no returns can be computed at all.
func CalculateRecentStrength(closes []float64, window int) *float64 {
	returns := CalculateReturns(closes)
	if window <= 0 || len(returns) == 0 {
		return nil
	}

	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}

	positive := 0
	for _, r := range returns {
		if r > 0 {
			positive++
		}
	}

	strength := float64(positive) / float64(len(returns))
	return &strength
}
