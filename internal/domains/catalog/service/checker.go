package service

import (
	"context"
	"errors"

	"library-catalog/internal/domains/catalog/model"
	"library-catalog/internal/domains/catalog/repository"
)

// DuplicateChecker holds the name-uniqueness policy: author names and book
// names are each unique across the whole catalog (book names are not scoped
// per author).
//
// The lookups are a fast path only. A lookup followed by an insert is racy,
// so the final word belongs to the storage unique constraints, whose
// violations Classify maps onto the same error kinds.
type DuplicateChecker struct{}

func NewDuplicateChecker() *DuplicateChecker {
	return &DuplicateChecker{}
}

// CheckAuthorName returns ErrDuplicateAuthor if the name is already used.
func (c *DuplicateChecker) CheckAuthorName(ctx context.Context, repo repository.RepositoryInterface, name string) error {
	_, err := repo.FindAuthorByName(ctx, name)
	return c.lookupResult(err, model.ErrDuplicateAuthor)
}

// CheckBookName returns ErrDuplicateBook if any author already has a book
// with this name.
func (c *DuplicateChecker) CheckBookName(ctx context.Context, repo repository.RepositoryInterface, name string) error {
	_, err := repo.FindBookByName(ctx, name)
	return c.lookupResult(err, model.ErrDuplicateBook)
}

func (c *DuplicateChecker) lookupResult(err, duplicate error) error {
	switch {
	case err == nil:
		return duplicate
	case errors.Is(err, repository.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

// Classify maps a storage unique violation to ErrDuplicateAuthor or
// ErrDuplicateBook. Any other error is returned unchanged.
func (c *DuplicateChecker) Classify(err error) error {
	switch {
	case repository.IsUniqueViolationOn(err, repository.TableAuthors):
		return model.ErrDuplicateAuthor
	case repository.IsUniqueViolationOn(err, repository.TableBooks):
		return model.ErrDuplicateBook
	default:
		return err
	}
}
