// Package risk narrows a scored universe by risk-tier predicates and
// derives how many positions the final portfolio should hold.
package risk

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/scoring"
	"github.com/shopqrepublik/investment-chatbot-backend/pkg/formulas"
)

// Tier is the caller's risk tolerance
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ParseTier validates and normalizes a risk tier string
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierLow:
		return TierLow, nil
	case TierMedium:
		return TierMedium, nil
	case TierHigh:
		return TierHigh, nil
	default:
		return "", fmt.Errorf("unknown risk tier %q (expected low, medium or high)", s)
	}
}

// Diversification is the caller's preference for portfolio breadth
type Diversification string

const (
	DiversificationConcentrated Diversification = "concentrated"
	DiversificationBalanced     Diversification = "balanced"
	DiversificationFull         Diversification = "full"
)

// ParseDiversification validates and normalizes a diversification
// preference string. "diversified" is accepted as an alias for "full".
func ParseDiversification(s string) (Diversification, error) {
	switch Diversification(strings.ToLower(strings.TrimSpace(s))) {
	case DiversificationConcentrated:
		return DiversificationConcentrated, nil
	case DiversificationBalanced:
		return DiversificationBalanced, nil
	case DiversificationFull, Diversification("diversified"):
		return DiversificationFull, nil
	default:
		return "", fmt.Errorf("unknown diversification preference %q (expected concentrated, balanced or full)", s)
	}
}

// Drawdown thresholds for the tier filters (fractions, negative = loss)
const (
	lowTierMaxDrawdown  = -0.25
	highTierMaxDrawdown = -0.60
)

// Filter applies risk-tier predicates to scored rows
type Filter struct {
	log zerolog.Logger
}

// NewFilter creates a risk filter
func NewFilter(log zerolog.Logger) *Filter {
	return &Filter{
		log: log.With().Str("component", "risk_filter").Logger(),
	}
}

// Apply keeps the rows that satisfy the tier's predicates:
//
//	low:    vol30 below the cross-sectional median AND dd90 shallower than −25%
//	medium: pass-through
//	high:   dd90 shallower than −60%
//
// The median is computed over the input rows, so the low-tier cut depends
// on the candidate set as a whole. Row order is preserved.
func (f *Filter) Apply(tier Tier, rows []scoring.ScoredRow) []scoring.ScoredRow {
	var kept []scoring.ScoredRow

	switch tier {
	case TierLow:
		vols := make([]float64, len(rows))
		for i, r := range rows {
			vols[i] = *r.Vol30
		}
		medianVol := formulas.Median(vols)

		for _, r := range rows {
			if *r.Vol30 < medianVol && *r.DD90 > lowTierMaxDrawdown {
				kept = append(kept, r)
			}
		}

	case TierHigh:
		for _, r := range rows {
			if *r.DD90 > highTierMaxDrawdown {
				kept = append(kept, r)
			}
		}

	default:
		kept = rows
	}

	f.log.Debug().
		Str("tier", string(tier)).
		Int("rows_in", len(rows)).
		Int("rows_kept", len(kept)).
		Msg("Applied risk filter")

	return kept
}

// TargetCount derives how many positions to select: the diversification
// preference sets a base count and the risk tier nudges it.
func TargetCount(tier Tier, diversification Diversification) int {
	base := 5
	switch diversification {
	case DiversificationConcentrated:
		base = 3
	case DiversificationBalanced:
		base = 5
	case DiversificationFull:
		base = 8
	}

	switch tier {
	case TierLow:
		if base+1 < 4 {
			return 4
		}
		return base + 1
	case TierHigh:
		if base-1 < 3 {
			return 3
		}
		return base - 1
	default:
		return base
	}
}

// SelectTop takes the first n rows of an already score-sorted slice. When
// fewer rows survive filtering the whole slice is returned unchanged.
func SelectTop(rows []scoring.ScoredRow, n int) []scoring.ScoredRow {
	if n >= len(rows) {
		return rows
	}
	return rows[:n]
}
