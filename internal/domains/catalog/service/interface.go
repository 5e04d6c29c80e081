package service

import (
	"context"

	"github.com/google/uuid"

	"library-catalog/internal/domains/catalog/model"
)

// ServiceInterface is the operation surface offered to the presentation
// layer. Every write runs as one atomic unit: it either commits entirely or
// is rolled back before an error is returned.
type ServiceInterface interface {
	// CreateAuthorAndBook adds a book under authorName, creating the author
	// in the same unit when it does not exist yet.
	// Errors: ErrDuplicateBook, ErrDuplicateAuthor, ErrTransactionFailure
	CreateAuthorAndBook(ctx context.Context, authorName, bookName string) (*model.Book, error)

	// CreateAuthor adds an author without books.
	// Errors: ErrDuplicateAuthor, ErrTransactionFailure
	CreateAuthor(ctx context.Context, name string) (*model.Author, error)

	// DeleteAuthor deletes the author and every book referencing it.
	// Errors: ErrAuthorNotFound, ErrTransactionFailure
	DeleteAuthor(ctx context.Context, id uuid.UUID) error

	// DeleteBook deletes one book; its author is kept.
	// Errors: ErrBookNotFound, ErrTransactionFailure
	DeleteBook(ctx context.Context, id uuid.UUID) error

	GetAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// ListCatalog returns all authors with their books.
	ListCatalog(ctx context.Context) (model.Catalog, error)
}
