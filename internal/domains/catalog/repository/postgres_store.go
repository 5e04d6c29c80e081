package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"library-catalog/pkg/database"
)

// PostgresStore hands out pgx-backed repositories and owns their
// transactions.
type PostgresStore struct {
	pool   *pgxpool.Pool
	txOpts pgx.TxOptions
}

// NewPostgresStore wraps an already connected pool. txOpts applies to every
// atomic unit; the zero value means read committed, read write.
func NewPostgresStore(pool *pgxpool.Pool, txOpts pgx.TxOptions) *PostgresStore {
	return &PostgresStore{pool: pool, txOpts: txOpts}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn TxFunc) error {
	err := database.WithTransaction(ctx, s.pool, s.txOpts, func(tx pgx.Tx) error {
		return fn(ctx, NewPostgresRepository(tx))
	})
	// Serializable units can fail at COMMIT with a serialization failure.
	return mapTxError(err, mapPgError)
}

func (s *PostgresStore) Reader() RepositoryInterface {
	return NewPostgresRepository(s.pool)
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	err := database.WithTransaction(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, postgresSchemaLock); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, postgresSchema)
		return err
	})
	if err != nil {
		return mapPgError(err, "ensure schema")
	}

	log.Info().Str("driver", "postgres").Msg("catalog schema ready")
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
