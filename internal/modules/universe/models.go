// Package universe provides access to the investable universe and its
// historical price data.
package universe

// PricePoint represents a single daily closing price
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// PriceSeries holds the chronologically ordered price history for one ticker
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Closes returns the closing prices in chronological order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Len returns the number of price bars in the series
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// LastDate returns the date of the most recent bar, or "" for an empty series
func (s PriceSeries) LastDate() string {
	if len(s.Points) == 0 {
		return ""
	}
	return s.Points[len(s.Points)-1].Date
}
