package portfolio

import "errors"

// Pipeline-stage errors. Each empty stage is terminal for the request; the
// builder never substitutes a fabricated fallback portfolio.
var (
	// ErrInvalidRequest marks malformed request parameters, rejected
	// before any computation begins.
	ErrInvalidRequest = errors.New("invalid portfolio request")

	// ErrEmptyUniverse means the universe provider returned no tickers.
	ErrEmptyUniverse = errors.New("no tickers available in universe")

	// ErrNoPriceData means no ticker in the universe had any price bars
	// within the lookback window.
	ErrNoPriceData = errors.New("no price data available for universe")

	// ErrNoIndicatorRows means no ticker had enough history to clear the
	// minimum bar threshold or produced a complete indicator row.
	ErrNoIndicatorRows = errors.New("insufficient data to compute indicators")

	// ErrNoSurvivingRows means the risk filter excluded every scored row.
	ErrNoSurvivingRows = errors.New("no assets survived risk filtering")

	// ErrNotFound means the requested portfolio does not exist.
	ErrNotFound = errors.New("portfolio not found")
)
