package repository

import (
	"context"

	"github.com/google/uuid"

	"library-catalog/internal/domains/catalog/model"
)

// RepositoryInterface is raw storage and lookup for authors and books.
// It guards single-row constraints only and never commits or rolls back:
// transaction boundaries belong to the Store that handed it out.
// Absent rows are reported as ErrRecordNotFound.
type RepositoryInterface interface {
	FindAuthorByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	FindAuthorByName(ctx context.Context, name string) (*model.Author, error)

	// LockAuthor reads the author and holds a row lock until the
	// surrounding transaction ends, serializing cascade deletes against
	// concurrent book inserts for the same author.
	LockAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error)

	FindBookByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	FindBookByName(ctx context.Context, name string) (*model.Book, error)

	// InsertAuthor fails with ErrUniqueViolation if the name is taken.
	InsertAuthor(ctx context.Context, name string) (*model.Author, error)

	// InsertBook fails with ErrUniqueViolation if the name is taken and
	// with ErrForeignKeyViolation if the author does not exist.
	InsertBook(ctx context.Context, name string, authorID uuid.UUID) (*model.Book, error)

	DeleteBooksByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	DeleteAuthor(ctx context.Context, id uuid.UUID) error
	DeleteBook(ctx context.Context, id uuid.UUID) error

	// ListAuthorsWithBooks returns every author in insertion order with
	// its books, authors without books included. It is a single query.
	ListAuthorsWithBooks(ctx context.Context) (model.Catalog, error)
}

// TxFunc is the body of an atomic unit. The repository it receives is bound
// to the unit's transaction.
type TxFunc func(ctx context.Context, repo RepositoryInterface) error

// Store owns the storage handle and the transaction boundaries.
type Store interface {
	// WithinTx runs fn in one transaction: commit when fn returns nil,
	// rollback otherwise (also on panic).
	WithinTx(ctx context.Context, fn TxFunc) error

	// Reader returns a repository outside any transaction, for single
	// statement reads.
	Reader() RepositoryInterface

	// EnsureSchema creates missing tables and indexes without touching data.
	EnsureSchema(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}
