package service_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"library-catalog/internal/domains/catalog/model"
	"library-catalog/internal/domains/catalog/repository"
	"library-catalog/internal/domains/catalog/service"
	"library-catalog/internal/infrastructure/database"
)

var testRetry = service.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func newTestStore(t *testing.T) (*repository.SQLiteStore, *sqlx.DB) {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), database.SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "catalog.db"),
		BusyTimeout: 10 * time.Second,
		MaxConns:    8,
	})
	require.NoError(t, err)

	store := repository.NewSQLiteStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return store, db
}

func newTestService(t *testing.T) (service.ServiceInterface, *sqlx.DB) {
	t.Helper()

	store, db := newTestStore(t)
	return service.NewCatalogService(store, service.NewDuplicateChecker(), nil, testRetry), db
}

// catalogFixture is a coordinator over one storage backend plus a way to
// count rows with a parameterless query.
type catalogFixture struct {
	svc   service.ServiceInterface
	count func(t *testing.T, query string) int
}

// forEachBackend runs fn against SQLite and, when TEST_DATABASE_URL is set,
// against Postgres at read committed.
func forEachBackend(t *testing.T, fn func(t *testing.T, f catalogFixture)) {
	t.Run("sqlite", func(t *testing.T) {
		svc, db := newTestService(t)
		fn(t, catalogFixture{svc: svc, count: func(t *testing.T, query string) int {
			return countRows(t, db, query)
		}})
	})

	t.Run("postgres", func(t *testing.T) {
		dsn := os.Getenv("TEST_DATABASE_URL")
		if dsn == "" {
			t.Skip("TEST_DATABASE_URL not set")
		}

		// own schema so repository tests sharing the database do not interfere
		ctx := context.Background()
		cfg, err := pgxpool.ParseConfig(dsn)
		require.NoError(t, err)
		cfg.ConnConfig.RuntimeParams["search_path"] = "catalog_service_test"

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS catalog_service_test`)
		require.NoError(t, err)

		store := repository.NewPostgresStore(pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		require.NoError(t, store.EnsureSchema(ctx))
		t.Cleanup(func() { _ = store.Close() })

		_, err = pool.Exec(ctx, `TRUNCATE books, authors`)
		require.NoError(t, err)

		retry := service.RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}
		svc := service.NewCatalogService(store, service.NewDuplicateChecker(), nil, retry)
		fn(t, catalogFixture{svc: svc, count: func(t *testing.T, query string) int {
			t.Helper()

			var n int
			require.NoError(t, pool.QueryRow(context.Background(), query).Scan(&n))
			return n
		}})
	})
}

func listCatalog(t *testing.T, svc service.ServiceInterface) model.Catalog {
	t.Helper()

	catalog, err := svc.ListCatalog(context.Background())
	require.NoError(t, err)
	return catalog
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

// hookStore wraps a real store and lets a test replace repository calls
// made inside atomic units. attempt starts at 1.
type hookStore struct {
	repository.Store

	mu       sync.Mutex
	attempts int
	wrap     func(attempt int, repo repository.RepositoryInterface) repository.RepositoryInterface
}

func (s *hookStore) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	s.mu.Lock()
	s.attempts++
	attempt := s.attempts
	s.mu.Unlock()

	return s.Store.WithinTx(ctx, func(ctx context.Context, repo repository.RepositoryInterface) error {
		return fn(ctx, s.wrap(attempt, repo))
	})
}

func (s *hookStore) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// hookRepo overrides individual repository methods; nil hooks fall through
// to the embedded repository.
type hookRepo struct {
	repository.RepositoryInterface

	findAuthorByName func(ctx context.Context, name string) (*model.Author, error)
	findBookByName   func(ctx context.Context, name string) (*model.Book, error)
	insertBook       func(ctx context.Context, name string, authorID uuid.UUID) (*model.Book, error)
}

func (r *hookRepo) FindAuthorByName(ctx context.Context, name string) (*model.Author, error) {
	if r.findAuthorByName != nil {
		return r.findAuthorByName(ctx, name)
	}
	return r.RepositoryInterface.FindAuthorByName(ctx, name)
}

func (r *hookRepo) FindBookByName(ctx context.Context, name string) (*model.Book, error) {
	if r.findBookByName != nil {
		return r.findBookByName(ctx, name)
	}
	return r.RepositoryInterface.FindBookByName(ctx, name)
}

func (r *hookRepo) InsertBook(ctx context.Context, name string, authorID uuid.UUID) (*model.Book, error) {
	if r.insertBook != nil {
		return r.insertBook(ctx, name, authorID)
	}
	return r.RepositoryInterface.InsertBook(ctx, name, authorID)
}
