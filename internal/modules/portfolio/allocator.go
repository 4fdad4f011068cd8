package portfolio

import (
	"math"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/modules/scoring"
)

// allocationEpsilon shifts the minimum score to a small positive value so
// every selected row receives a strictly positive weight, even when all
// scores are negative or equal.
const allocationEpsilon = 1e-6

// minAllocationPct floors each rounded weight so the lowest-scoring pick
// never rounds down to 0.00%.
const minAllocationPct = 0.01

// Allocate converts selected rows' scores into percentage weights summing
// to 100. Weights are proportional to the shifted score, not its absolute
// magnitude: only relative ordering is economically meaningful.
func Allocate(rows []scoring.ScoredRow) []Allocation {
	if len(rows) == 0 {
		return nil
	}

	minScore := rows[0].Score
	for _, r := range rows[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
	}

	shifted := make([]float64, len(rows))
	sum := 0.0
	for i, r := range rows {
		s := r.Score - minScore + allocationEpsilon
		if s < allocationEpsilon {
			s = allocationEpsilon
		}
		shifted[i] = s
		sum += s
	}

	allocations := make([]Allocation, len(rows))
	for i, r := range rows {
		pct := round2(shifted[i] / sum * 100.0)
		if pct < minAllocationPct {
			pct = minAllocationPct
		}
		allocations[i] = Allocation{
			Ticker:        r.Ticker,
			AllocationPct: pct,
			Score:         round3(r.Score),
		}
	}

	return allocations
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
