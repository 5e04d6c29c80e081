package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-catalog/internal/domains/catalog/model"
	"library-catalog/internal/domains/catalog/repository"
)

// RetryPolicy bounds how often an atomic unit is re-run after a transient
// conflict. Delay doubles on each attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is used when the configured policy is empty.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

// catalogService is the transaction coordinator. It is the only component
// that opens, commits or rolls back transactions, and the only place where
// storage errors become business errors.
type catalogService struct {
	store   repository.Store
	checker *DuplicateChecker
	cache   *CatalogCache
	retry   RetryPolicy
}

// NewCatalogService wires the coordinator. cache may be nil.
func NewCatalogService(store repository.Store, checker *DuplicateChecker, cache *CatalogCache, retry RetryPolicy) ServiceInterface {
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryPolicy
	}
	if checker == nil {
		checker = NewDuplicateChecker()
	}
	return &catalogService{
		store:   store,
		checker: checker,
		cache:   cache,
		retry:   retry,
	}
}

func (s *catalogService) CreateAuthorAndBook(ctx context.Context, authorName, bookName string) (*model.Book, error) {
	if err := checkNameLength(authorName, bookName); err != nil {
		return nil, err
	}

	var created *model.Book

	err := s.atomic(ctx, "create_author_and_book", func(ctx context.Context, repo repository.RepositoryInterface) error {
		author, err := repo.FindAuthorByName(ctx, authorName)
		switch {
		case err == nil:
			// existing author: nothing is written when the book name is taken
		case errors.Is(err, repository.ErrRecordNotFound):
			author = nil
		default:
			return err
		}

		if err := s.checker.CheckBookName(ctx, repo, bookName); err != nil {
			return err
		}

		if author == nil {
			// The author row only survives if the book insert below commits
			// with it.
			if author, err = repo.InsertAuthor(ctx, authorName); err != nil {
				return err
			}
		}

		book, err := repo.InsertBook(ctx, bookName, author.ID)
		if err != nil {
			return err
		}

		created = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *catalogService) CreateAuthor(ctx context.Context, name string) (*model.Author, error) {
	if err := checkNameLength(name); err != nil {
		return nil, err
	}

	var created *model.Author

	err := s.atomic(ctx, "create_author", func(ctx context.Context, repo repository.RepositoryInterface) error {
		if err := s.checker.CheckAuthorName(ctx, repo, name); err != nil {
			return err
		}

		author, err := repo.InsertAuthor(ctx, name)
		if err != nil {
			return err
		}

		created = author
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *catalogService) DeleteAuthor(ctx context.Context, id uuid.UUID) error {
	var deletedBooks int64

	err := s.atomic(ctx, "delete_author", func(ctx context.Context, repo repository.RepositoryInterface) error {
		if _, err := repo.LockAuthor(ctx, id); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return model.ErrAuthorNotFound
			}
			return err
		}

		n, err := repo.DeleteBooksByAuthor(ctx, id)
		if err != nil {
			return err
		}

		if err := repo.DeleteAuthor(ctx, id); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return model.ErrAuthorNotFound
			}
			return err
		}

		deletedBooks = n
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("author_id", id.String()).Int64("books_deleted", deletedBooks).Msg("author deleted")
	return nil
}

func (s *catalogService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return s.atomic(ctx, "delete_book", func(ctx context.Context, repo repository.RepositoryInterface) error {
		if err := repo.DeleteBook(ctx, id); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return model.ErrBookNotFound
			}
			return err
		}
		return nil
	})
}

func (s *catalogService) GetAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	if id == uuid.Nil {
		return nil, model.ErrAuthorNotFound
	}

	a, err := s.store.Reader().FindAuthorByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *catalogService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if id == uuid.Nil {
		return nil, model.ErrBookNotFound
	}

	b, err := s.store.Reader().FindBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, model.ErrBookNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListCatalog is a single read statement; no transaction is opened.
func (s *catalogService) ListCatalog(ctx context.Context) (model.Catalog, error) {
	return s.cache.Load(ctx, s.store.Reader().ListAuthorsWithBooks)
}

// atomic runs fn as one transaction, re-running it from scratch while the
// failure is retryable and attempts remain. Every returned error has already
// been rolled back and is mapped to a business kind.
func (s *catalogService) atomic(ctx context.Context, op string, fn repository.TxFunc) error {
	var err error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		err = s.store.WithinTx(ctx, fn)
		if err == nil {
			log.Debug().Str("op", op).Int("attempt", attempt).Msg("transaction committed")
			s.cache.Invalidate(ctx)
			return nil
		}

		if !isRetryable(err) || attempt == s.retry.MaxAttempts {
			break
		}

		delay := s.retry.BaseDelay * time.Duration(1<<uint(attempt-1))
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Dur("retry_in", delay).Msg("transaction rolled back, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &model.TransactionError{Op: op, Err: ctx.Err()}
		}
	}

	mapped := s.classify(op, err)
	log.Debug().Err(err).Str("op", op).Str("code", model.ToErrorCode(mapped)).Msg("transaction rolled back")
	return mapped
}

// isRetryable: transient conflicts, a concurrent insert of the same author
// name (the rerun takes the existing-author path), and a concurrent delete of
// the referenced author (the rerun takes the new-author path).
func isRetryable(err error) bool {
	return errors.Is(err, repository.ErrConflict) ||
		repository.IsUniqueViolationOn(err, repository.TableAuthors) ||
		errors.Is(err, repository.ErrForeignKeyViolation)
}

func (s *catalogService) classify(op string, err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrDuplicateAuthor),
		errors.Is(err, model.ErrDuplicateBook):
		return err
	case errors.Is(err, repository.ErrUniqueViolation):
		return s.checker.Classify(err)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return model.ErrForeignKeyViolation
	default:
		return &model.TransactionError{Op: op, Err: err}
	}
}

// checkNameLength applies the column width to every backend alike.
func checkNameLength(names ...string) error {
	for _, name := range names {
		if utf8.RuneCountInString(name) > model.MaxNameLength {
			return model.ErrNameTooLong
		}
	}
	return nil
}
