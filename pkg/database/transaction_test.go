package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/pkg/database"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "tx.db")+"?_txlock=immediate")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE items (name TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	return db
}

func countItems(t *testing.T, db *sqlx.DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM items`))
	return n
}

func TestWithSQLXTransaction_Commit(t *testing.T) {
	db := openTestDB(t)

	err := database.WithSQLXTransaction(context.Background(), db, nil, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (name) VALUES ('a'), ('b')`)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, countItems(t, db))
}

func TestWithSQLXTransaction_RollbackOnError(t *testing.T) {
	db := openTestDB(t)
	sentinel := errors.New("stop")

	err := database.WithSQLXTransaction(context.Background(), db, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Zero(t, countItems(t, db))
}

func TestWithSQLXTransaction_RollbackOnPanic(t *testing.T) {
	db := openTestDB(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = database.WithSQLXTransaction(context.Background(), db, nil, func(tx *sqlx.Tx) error {
			_, _ = tx.Exec(`INSERT INTO items (name) VALUES ('a')`)
			panic("boom")
		})
	})

	assert.Zero(t, countItems(t, db))
}

func TestWithSQLXTransaction_BeginFailsOnCancelledContext(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := database.WithSQLXTransaction(ctx, db, nil, func(tx *sqlx.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}
