package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/internal/domains/catalog/repository"
)

// runStoreContract exercises behavior every Store implementation must share.
// reset must leave both tables empty.
func runStoreContract(t *testing.T, store repository.Store, reset func(t *testing.T)) {
	ctx := context.Background()

	t.Run("insert and find", func(t *testing.T) {
		reset(t)
		var authorID, bookID uuid.UUID

		err := store.WithinTx(ctx, func(ctx context.Context, repo repository.RepositoryInterface) error {
			a, err := repo.InsertAuthor(ctx, "Alpha")
			if err != nil {
				return err
			}
			b, err := repo.InsertBook(ctx, "First Book", a.ID)
			if err != nil {
				return err
			}
			authorID, bookID = a.ID, b.ID
			return nil
		})
		require.NoError(t, err)

		reader := store.Reader()

		a, err := reader.FindAuthorByName(ctx, "Alpha")
		require.NoError(t, err)
		assert.Equal(t, authorID, a.ID)
		assert.False(t, a.CreatedAt.IsZero())

		a, err = reader.FindAuthorByID(ctx, authorID)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", a.Name)

		b, err := reader.FindBookByName(ctx, "First Book")
		require.NoError(t, err)
		assert.Equal(t, bookID, b.ID)
		assert.Equal(t, authorID, b.AuthorID)

		b, err = reader.FindBookByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, "First Book", b.Name)
	})

	t.Run("missing rows report ErrRecordNotFound", func(t *testing.T) {
		reset(t)
		reader := store.Reader()

		_, err := reader.FindAuthorByName(ctx, "Nobody")
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)

		_, err = reader.FindAuthorByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)

		_, err = reader.FindBookByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)

		_, err = reader.FindBookByName(ctx, "Nothing")
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)

		assert.ErrorIs(t, reader.DeleteAuthor(ctx, uuid.New()), repository.ErrRecordNotFound)
		assert.ErrorIs(t, reader.DeleteBook(ctx, uuid.New()), repository.ErrRecordNotFound)

		n, err := reader.DeleteBooksByAuthor(ctx, uuid.New())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("unique violations name their table", func(t *testing.T) {
		reset(t)
		reader := store.Reader()

		a, err := reader.InsertAuthor(ctx, "Alpha")
		require.NoError(t, err)
		_, err = reader.InsertBook(ctx, "Shared Title", a.ID)
		require.NoError(t, err)

		_, err = reader.InsertAuthor(ctx, "Alpha")
		require.ErrorIs(t, err, repository.ErrUniqueViolation)
		assert.True(t, repository.IsUniqueViolationOn(err, repository.TableAuthors))

		b, err := reader.InsertAuthor(ctx, "Beta")
		require.NoError(t, err)

		_, err = reader.InsertBook(ctx, "Shared Title", b.ID)
		require.ErrorIs(t, err, repository.ErrUniqueViolation)
		assert.True(t, repository.IsUniqueViolationOn(err, repository.TableBooks))
		assert.False(t, repository.IsUniqueViolationOn(err, repository.TableAuthors))
	})

	t.Run("book for missing author is a foreign key violation", func(t *testing.T) {
		reset(t)

		_, err := store.Reader().InsertBook(ctx, "Orphan", uuid.New())
		assert.ErrorIs(t, err, repository.ErrForeignKeyViolation)
	})

	t.Run("author with books cannot be deleted alone", func(t *testing.T) {
		reset(t)
		reader := store.Reader()

		a, err := reader.InsertAuthor(ctx, "Alpha")
		require.NoError(t, err)
		_, err = reader.InsertBook(ctx, "Bound", a.ID)
		require.NoError(t, err)

		assert.ErrorIs(t, reader.DeleteAuthor(ctx, a.ID), repository.ErrForeignKeyViolation)
	})

	t.Run("failed unit leaves nothing behind", func(t *testing.T) {
		reset(t)
		boom := errors.New("boom")

		err := store.WithinTx(ctx, func(ctx context.Context, repo repository.RepositoryInterface) error {
			a, err := repo.InsertAuthor(ctx, "Ghost")
			if err != nil {
				return err
			}
			if _, err := repo.InsertBook(ctx, "Ghost Book", a.ID); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = store.Reader().FindAuthorByName(ctx, "Ghost")
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)
		_, err = store.Reader().FindBookByName(ctx, "Ghost Book")
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	})

	t.Run("panicking unit is rolled back", func(t *testing.T) {
		reset(t)

		assert.Panics(t, func() {
			_ = store.WithinTx(ctx, func(ctx context.Context, repo repository.RepositoryInterface) error {
				if _, err := repo.InsertAuthor(ctx, "Panicker"); err != nil {
					return err
				}
				panic("mid-unit")
			})
		})

		_, err := store.Reader().FindAuthorByName(ctx, "Panicker")
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	})

	t.Run("cascade inside one unit", func(t *testing.T) {
		reset(t)
		reader := store.Reader()

		a, err := reader.InsertAuthor(ctx, "Alpha")
		require.NoError(t, err)
		for _, name := range []string{"One", "Two", "Three"} {
			_, err := reader.InsertBook(ctx, name, a.ID)
			require.NoError(t, err)
		}

		var deleted int64
		err = store.WithinTx(ctx, func(ctx context.Context, repo repository.RepositoryInterface) error {
			if _, err := repo.LockAuthor(ctx, a.ID); err != nil {
				return err
			}
			n, err := repo.DeleteBooksByAuthor(ctx, a.ID)
			if err != nil {
				return err
			}
			deleted = n
			return repo.DeleteAuthor(ctx, a.ID)
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, deleted)

		catalog, err := reader.ListAuthorsWithBooks(ctx)
		require.NoError(t, err)
		assert.Empty(t, catalog)
	})

	t.Run("listing keeps authors without books", func(t *testing.T) {
		reset(t)
		reader := store.Reader()

		catalog, err := reader.ListAuthorsWithBooks(ctx)
		require.NoError(t, err)
		assert.NotNil(t, catalog)
		assert.Empty(t, catalog)

		alpha, err := reader.InsertAuthor(ctx, "Alpha")
		require.NoError(t, err)
		_, err = reader.InsertAuthor(ctx, "Beta")
		require.NoError(t, err)
		_, err = reader.InsertBook(ctx, "A1", alpha.ID)
		require.NoError(t, err)
		_, err = reader.InsertBook(ctx, "A2", alpha.ID)
		require.NoError(t, err)

		catalog, err = reader.ListAuthorsWithBooks(ctx)
		require.NoError(t, err)
		require.Len(t, catalog, 2)

		assert.Equal(t, "Alpha", catalog[0].Author.Name)
		require.Len(t, catalog[0].Books, 2)
		assert.Equal(t, "A1", catalog[0].Books[0].Name)
		assert.Equal(t, "A2", catalog[0].Books[1].Name)
		assert.Equal(t, alpha.ID, catalog[0].Books[0].AuthorID)

		assert.Equal(t, "Beta", catalog[1].Author.Name)
		assert.NotNil(t, catalog[1].Books)
		assert.Empty(t, catalog[1].Books)

		assert.Equal(t, 2, catalog.BookCount())
	})

	t.Run("schema creation is idempotent", func(t *testing.T) {
		reset(t)

		_, err := store.Reader().InsertAuthor(ctx, "Survivor")
		require.NoError(t, err)

		require.NoError(t, store.EnsureSchema(ctx))

		_, err = store.Reader().FindAuthorByName(ctx, "Survivor")
		assert.NoError(t, err)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
