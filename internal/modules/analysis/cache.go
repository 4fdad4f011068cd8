package analysis

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultCacheTTL bounds how long a snapshot may be served even when no
// new bar has arrived (weekends, delisted tickers).
const DefaultCacheTTL = 24 * time.Hour

// Cache stores msgpack-encoded snapshots in the cache database. Entries are
// keyed by ticker and invalidated either by a new price bar or by TTL.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger
}

// NewCache creates a snapshot cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewCache(db *sql.DB, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		db:  db,
		ttl: ttl,
		now: time.Now,
		log: log.With().Str("component", "analysis_cache").Logger(),
	}
}

// Get returns the cached snapshot for a ticker, or nil on a miss. A stored
// snapshot computed from a different last bar is treated as a miss.
func (c *Cache) Get(ticker, barDate string) (*Snapshot, error) {
	var storedBarDate string
	var payload []byte
	var expiresAt int64

	err := c.db.QueryRow(`
		SELECT bar_date, payload, expires_at
		FROM analysis_snapshots
		WHERE ticker = ?
	`, ticker).Scan(&storedBarDate, &payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot cache: %w", err)
	}

	if storedBarDate != barDate || c.now().UTC().Unix() >= expiresAt {
		return nil, nil
	}

	var snapshot Snapshot
	if err := msgpack.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}

	return &snapshot, nil
}

// Put stores a snapshot, replacing any previous entry for the ticker
func (c *Cache) Put(snapshot *Snapshot) error {
	payload, err := msgpack.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	expiresAt := c.now().UTC().Add(c.ttl).Unix()

	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO analysis_snapshots (ticker, bar_date, payload, expires_at)
		VALUES (?, ?, ?, ?)
	`, snapshot.Ticker, snapshot.BarDate, payload, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	return nil
}

// Purge removes expired entries. Called by the scheduled refresh job.
func (c *Cache) Purge() (int64, error) {
	result, err := c.db.Exec(
		"DELETE FROM analysis_snapshots WHERE expires_at < ?",
		c.now().UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshot cache: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		c.log.Debug().Int64("deleted", deleted).Msg("Purged expired snapshots")
	}
	return deleted, nil
}
