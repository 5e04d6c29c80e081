package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog/log"
)

// SQLiteConfig configures the embedded SQLite store.
type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
	MaxConns    int
}

// SQLiteDSN builds a go-sqlite3 DSN with foreign keys enforced, WAL
// journaling and IMMEDIATE transactions, so a write transaction takes the
// database write lock at BEGIN rather than at its first write.
func SQLiteDSN(cfg SQLiteConfig) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", fmt.Sprint(busy.Milliseconds()))
	q.Set("_txlock", "immediate")
	return "file:" + cfg.Path + "?" + q.Encode()
}

// OpenSQLite opens and pings the database file, creating it if needed.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", SQLiteDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}

	log.Info().Str("path", cfg.Path).Msg("sqlite database opened")
	return db, nil
}
