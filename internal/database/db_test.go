package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryDB(t *testing.T, name string) *DB {
	t.Helper()

	db, err := New(Config{
		Path: fmt.Sprintf("file:db_%s?mode=memory&cache=shared", t.Name()),
		Name: name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_AppliesSchema(t *testing.T) {
	db := openMemoryDB(t, "history")
	require.NoError(t, db.Migrate())

	_, err := db.Exec("INSERT INTO prices (ticker, date, close) VALUES ('AAPL', '2025-01-02', 150.0)")
	assert.NoError(t, err)

	// Re-applying is a no-op thanks to IF NOT EXISTS
	assert.NoError(t, db.Migrate())
}

func TestMigrate_UnknownDatabaseIsSkipped(t *testing.T) {
	db := openMemoryDB(t, "something_else")
	assert.NoError(t, db.Migrate())
}

func TestWithTransaction_Commit(t *testing.T) {
	db := openMemoryDB(t, "portfolio")
	require.NoError(t, db.Migrate())

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO portfolios (id, risk_level, diversification, assets_analyzed, recommended, avg_score, generated_at)
			VALUES ('p-1', 'medium', 'balanced', 5, 3, 0.5, '2025-06-01T00:00:00Z')
		`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM portfolios").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := openMemoryDB(t, "portfolio")
	require.NoError(t, db.Migrate())

	wantErr := errors.New("boom")
	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, execErr := tx.Exec(`
			INSERT INTO portfolios (id, risk_level, diversification, assets_analyzed, recommended, avg_score, generated_at)
			VALUES ('p-1', 'medium', 'balanced', 5, 3, 0.5, '2025-06-01T00:00:00Z')
		`)
		require.NoError(t, execErr)
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM portfolios").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_RecoversPanic(t *testing.T) {
	db := openMemoryDB(t, "portfolio")
	require.NoError(t, db.Migrate())

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")
}

func TestHealthCheck(t *testing.T) {
	db := openMemoryDB(t, "history")
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, db.QuickCheck(context.Background()))
}
