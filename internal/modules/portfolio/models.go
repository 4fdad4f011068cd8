// Package portfolio orchestrates the scoring pipeline end-to-end: universe
// lookup, indicator aggregation, cross-sectional scoring, risk filtering and
// weight allocation, producing one persisted portfolio per request.
package portfolio

import (
	"fmt"
	"time"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/risk"
)

// Request holds the validated parameters for one portfolio generation
type Request struct {
	RiskLevel       risk.Tier
	Diversification risk.Diversification
	UniverseLimit   int
	MinBars         int
	LookbackDays    int
}

// Validate rejects malformed parameters before any computation begins
func (r Request) Validate() error {
	if _, err := risk.ParseTier(string(r.RiskLevel)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if _, err := risk.ParseDiversification(string(r.Diversification)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.UniverseLimit <= 0 {
		return fmt.Errorf("%w: universe limit must be positive, got %d", ErrInvalidRequest, r.UniverseLimit)
	}
	if r.MinBars <= 0 {
		return fmt.Errorf("%w: minimum bar count must be positive, got %d", ErrInvalidRequest, r.MinBars)
	}
	if r.LookbackDays <= 0 {
		return fmt.Errorf("%w: lookback days must be positive, got %d", ErrInvalidRequest, r.LookbackDays)
	}
	return nil
}

// Allocation is one recommended position
type Allocation struct {
	Ticker        string  `json:"ticker"`
	AllocationPct float64 `json:"allocation_pct"`
	Score         float64 `json:"ai_score"`
}

// Summary describes the pipeline run that produced a portfolio
type Summary struct {
	AssetsAnalyzed int     `json:"assets_analyzed"`
	Recommended    int     `json:"recommended"`
	AvgScore       float64 `json:"avg_score"`
}

// Result is a generated portfolio with provenance
type Result struct {
	ID                string       `json:"id"`
	RiskLevel         string       `json:"risk_level"`
	Diversification   string       `json:"diversification"`
	RecommendedAssets []Allocation `json:"recommended_assets"`
	Summary           Summary      `json:"summary"`
	Timestamp         time.Time    `json:"timestamp"`
}
