package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"library-catalog/pkg/database"
)

// SQLiteStore hands out SQLite-backed repositories. The database must be
// opened with foreign keys on and IMMEDIATE transactions (see
// infrastructure/database.OpenSQLite) so write units serialize at BEGIN.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) WithinTx(ctx context.Context, fn TxFunc) error {
	err := database.WithSQLXTransaction(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		return fn(ctx, NewSQLiteRepository(tx))
	})
	// BEGIN IMMEDIATE and COMMIT can fail with SQLITE_BUSY outside fn.
	return mapTxError(err, mapSQLiteError)
}

func (s *SQLiteStore) Reader() RepositoryInterface {
	return NewSQLiteRepository(s.db)
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return mapSQLiteError(err, "ensure schema")
	}

	log.Info().Str("driver", "sqlite").Msg("catalog schema ready")
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
