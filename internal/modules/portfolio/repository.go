package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopqrepublik/investment-chatbot-backend/internal/database"
)

// Repository persists generated portfolios
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "portfolio_repository").Logger(),
	}
}

// Save stores a portfolio and its positions in one transaction
func (r *Repository) Save(result *Result) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO portfolios
			(id, risk_level, diversification, assets_analyzed, recommended, avg_score, generated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			result.ID,
			result.RiskLevel,
			result.Diversification,
			result.Summary.AssetsAnalyzed,
			result.Summary.Recommended,
			result.Summary.AvgScore,
			result.Timestamp.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert portfolio: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO portfolio_positions
			(portfolio_id, position, ticker, allocation_pct, score)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare position insert: %w", err)
		}
		defer stmt.Close()

		for i, a := range result.RecommendedAssets {
			if _, err := stmt.Exec(result.ID, i, a.Ticker, a.AllocationPct, a.Score); err != nil {
				return fmt.Errorf("failed to insert position %s: %w", a.Ticker, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().
		Str("portfolio_id", result.ID).
		Int("positions", len(result.RecommendedAssets)).
		Msg("Saved portfolio")

	return nil
}

// GetLatest returns the most recently generated portfolio.
// Returns ErrNotFound when no portfolio has been generated yet.
func (r *Repository) GetLatest() (*Result, error) {
	return r.getOne(`
		SELECT id, risk_level, diversification, assets_analyzed, recommended, avg_score, generated_at
		FROM portfolios
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`)
}

// GetByID returns one portfolio by its identifier.
// Returns ErrNotFound when no such portfolio exists.
func (r *Repository) GetByID(id string) (*Result, error) {
	return r.getOne(`
		SELECT id, risk_level, diversification, assets_analyzed, recommended, avg_score, generated_at
		FROM portfolios
		WHERE id = ?
	`, id)
}

func (r *Repository) getOne(query string, args ...interface{}) (*Result, error) {
	var result Result
	var generatedAt string

	err := r.db.QueryRow(query, args...).Scan(
		&result.ID,
		&result.RiskLevel,
		&result.Diversification,
		&result.Summary.AssetsAnalyzed,
		&result.Summary.Recommended,
		&result.Summary.AvgScore,
		&generatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portfolio timestamp %q: %w", generatedAt, err)
	}
	result.Timestamp = ts

	positions, err := r.getPositions(result.ID)
	if err != nil {
		return nil, err
	}
	result.RecommendedAssets = positions

	return &result, nil
}

func (r *Repository) getPositions(portfolioID string) ([]Allocation, error) {
	rows, err := r.db.Query(`
		SELECT ticker, allocation_pct, score
		FROM portfolio_positions
		WHERE portfolio_id = ?
		ORDER BY position ASC
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Allocation
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.Ticker, &a.AllocationPct, &a.Score); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// Count returns the number of stored portfolios. Used by the health endpoint.
func (r *Repository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM portfolios").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count portfolios: %w", err)
	}
	return count, nil
}
