package universe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Repository provides read access to the price history database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new universe repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "universe_repository").Logger(),
	}
}

// GetUniverse returns up to limit tickers that have price data, in
// alphabetical order. Returns an empty slice when the database holds no
// prices at all.
func (r *Repository) GetUniverse(limit int) ([]string, error) {
	query := `
		SELECT DISTINCT ticker
		FROM prices
		ORDER BY ticker ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating universe: %w", err)
	}

	return tickers, nil
}

// GetPriceHistory fetches daily closes for the given tickers on or after the
// cutoff date, ordered oldest-first. Tickers without any rows are simply
// absent from the returned map.
func (r *Repository) GetPriceHistory(tickers []string, since time.Time) (map[string]PriceSeries, error) {
	series := make(map[string]PriceSeries, len(tickers))
	if len(tickers) == 0 {
		return series, nil
	}

	cutoff := since.UTC().Format("2006-01-02")

	placeholders := strings.Repeat("?,", len(tickers))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT ticker, date, close
		FROM prices
		WHERE ticker IN (%s) AND date >= ?
		ORDER BY ticker ASC, date ASC
	`, placeholders)

	args := make([]interface{}, 0, len(tickers)+1)
	for _, t := range tickers {
		args = append(args, t)
	}
	args = append(args, cutoff)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticker string
		var point PricePoint
		if err := rows.Scan(&ticker, &point.Date, &point.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}

		s := series[ticker]
		s.Ticker = ticker
		s.Points = append(s.Points, point)
		series[ticker] = s
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price history: %w", err)
	}

	r.log.Debug().
		Int("tickers_requested", len(tickers)).
		Int("tickers_with_data", len(series)).
		Str("since", cutoff).
		Msg("Fetched price history")

	return series, nil
}

// GetPriceSeries fetches the daily closes for a single ticker on or after
// the cutoff date, ordered oldest-first. Returns an empty series (not an
// error) when the ticker has no rows.
func (r *Repository) GetPriceSeries(ticker string, since time.Time) (PriceSeries, error) {
	all, err := r.GetPriceHistory([]string{ticker}, since)
	if err != nil {
		return PriceSeries{}, err
	}

	s, ok := all[ticker]
	if !ok {
		return PriceSeries{Ticker: ticker}, nil
	}
	return s, nil
}

// CountPriceRows returns the total number of price rows stored.
// Used by the health endpoint.
func (r *Repository) CountPriceRows() (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM prices").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count price rows: %w", err)
	}
	return count, nil
}

// UpsertPrices inserts or replaces daily closes for a ticker in a single
// transaction. Used by the scheduled refresh job and by tests to seed data.
func (r *Repository) UpsertPrices(ticker string, points []PricePoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be no-op if Commit succeeds

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO prices (ticker, date, close)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(ticker, p.Date, p.Close); err != nil {
			return fmt.Errorf("failed to insert price for %s on %s: %w", ticker, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Debug().
		Str("ticker", ticker).
		Int("count", len(points)).
		Msg("Upserted prices")

	return nil
}
