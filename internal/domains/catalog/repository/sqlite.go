package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"library-catalog/internal/domains/catalog/model"
)

const dialectSQLite = "sqlite3"

const (
	colID        = "id"
	colName      = "name"
	colAuthorID  = "author_id"
	colCreatedAt = "created_at"
)

// sqlxQuerier is satisfied by both *sqlx.DB and *sqlx.Tx.
type sqlxQuerier interface {
	sqlx.ExtContext
}

// sqliteRepository implements RepositoryInterface on SQLite. Ids are
// generated here since SQLite has no uuid default.
type sqliteRepository struct {
	db      sqlxQuerier
	builder goqu.DialectWrapper
	now     func() time.Time
}

// NewSQLiteRepository binds a repository to a database or a transaction.
func NewSQLiteRepository(db sqlxQuerier) RepositoryInterface {
	return &sqliteRepository{
		db:      db,
		builder: goqu.Dialect(dialectSQLite),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *sqliteRepository) FindAuthorByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return r.getAuthor(ctx, "find author by id", goqu.Ex{colID: id.String()})
}

func (r *sqliteRepository) FindAuthorByName(ctx context.Context, name string) (*model.Author, error) {
	return r.getAuthor(ctx, "find author by name", goqu.Ex{colName: name})
}

// LockAuthor is a plain read: SQLite transactions here are opened
// IMMEDIATE and already hold the database write lock.
func (r *sqliteRepository) LockAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return r.getAuthor(ctx, "lock author", goqu.Ex{colID: id.String()})
}

func (r *sqliteRepository) FindBookByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return r.getBook(ctx, "find book by id", goqu.Ex{colID: id.String()})
}

func (r *sqliteRepository) FindBookByName(ctx context.Context, name string) (*model.Book, error) {
	return r.getBook(ctx, "find book by name", goqu.Ex{colName: name})
}

func (r *sqliteRepository) InsertAuthor(ctx context.Context, name string) (*model.Author, error) {
	a := model.Author{ID: uuid.New(), Name: name, CreatedAt: r.now()}
	err := r.insert(ctx, "insert author", TableAuthors, goqu.Record{
		colID:        a.ID.String(),
		colName:      a.Name,
		colCreatedAt: a.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *sqliteRepository) InsertBook(ctx context.Context, name string, authorID uuid.UUID) (*model.Book, error) {
	b := model.Book{ID: uuid.New(), Name: name, AuthorID: authorID, CreatedAt: r.now()}
	err := r.insert(ctx, "insert book", TableBooks, goqu.Record{
		colID:        b.ID.String(),
		colName:      b.Name,
		colAuthorID:  b.AuthorID.String(),
		colCreatedAt: b.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) DeleteBooksByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return r.delete(ctx, "delete books by author", TableBooks, goqu.Ex{colAuthorID: authorID.String()})
}

func (r *sqliteRepository) DeleteAuthor(ctx context.Context, id uuid.UUID) error {
	return r.deleteOne(ctx, "delete author", TableAuthors, id)
}

func (r *sqliteRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return r.deleteOne(ctx, "delete book", TableBooks, id)
}

type sqliteCatalogRow struct {
	AuthorID        uuid.UUID      `db:"a_id"`
	AuthorName      string         `db:"a_name"`
	AuthorCreatedAt time.Time      `db:"a_created_at"`
	BookID          sql.NullString `db:"b_id"`
	BookName        sql.NullString `db:"b_name"`
	BookCreatedAt   sql.NullTime   `db:"b_created_at"`
}

func (r *sqliteRepository) ListAuthorsWithBooks(ctx context.Context) (model.Catalog, error) {
	query, args, err := r.builder.
		From(goqu.T(TableAuthors).As("a")).
		LeftJoin(goqu.T(TableBooks).As("b"), goqu.On(goqu.I("b."+colAuthorID).Eq(goqu.I("a."+colID)))).
		Select(
			goqu.I("a."+colID).As("a_id"),
			goqu.I("a."+colName).As("a_name"),
			goqu.I("a."+colCreatedAt).As("a_created_at"),
			goqu.I("b."+colID).As("b_id"),
			goqu.I("b."+colName).As("b_name"),
			goqu.I("b."+colCreatedAt).As("b_created_at"),
		).
		Order(
			goqu.I("a."+colCreatedAt).Asc(),
			goqu.I("a."+colName).Asc(),
			goqu.I("b."+colCreatedAt).Asc(),
			goqu.I("b."+colName).Asc(),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []sqliteCatalogRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, mapSQLiteError(err, "list authors with books")
	}

	var builder catalogBuilder
	for _, row := range rows {
		a := model.Author{ID: row.AuthorID, Name: row.AuthorName, CreatedAt: row.AuthorCreatedAt}

		var b *model.Book
		if row.BookID.Valid {
			bookID, err := uuid.Parse(row.BookID.String)
			if err != nil {
				return nil, err
			}
			b = &model.Book{ID: bookID, Name: row.BookName.String, AuthorID: a.ID, CreatedAt: row.BookCreatedAt.Time}
		}
		builder.add(a, b)
	}

	return builder.catalog(), nil
}

func (r *sqliteRepository) getAuthor(ctx context.Context, op string, where exp.Ex) (*model.Author, error) {
	query, args, err := r.builder.From(TableAuthors).
		Select(colID, colName, colCreatedAt).
		Where(where).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var a model.Author
	if err := sqlx.GetContext(ctx, r.db, &a, query, args...); err != nil {
		return nil, mapSQLiteError(err, op)
	}
	return &a, nil
}

func (r *sqliteRepository) getBook(ctx context.Context, op string, where exp.Ex) (*model.Book, error) {
	query, args, err := r.builder.From(TableBooks).
		Select(colID, colName, colAuthorID, colCreatedAt).
		Where(where).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var b model.Book
	if err := sqlx.GetContext(ctx, r.db, &b, query, args...); err != nil {
		return nil, mapSQLiteError(err, op)
	}
	return &b, nil
}

func (r *sqliteRepository) insert(ctx context.Context, op, table string, rec goqu.Record) error {
	query, args, err := r.builder.Insert(table).Rows(rec).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return mapSQLiteError(err, op)
	}
	return nil
}

func (r *sqliteRepository) delete(ctx context.Context, op, table string, where exp.Ex) (int64, error) {
	query, args, err := r.builder.Delete(table).Where(where).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapSQLiteError(err, op)
	}
	return res.RowsAffected()
}

func (r *sqliteRepository) deleteOne(ctx context.Context, op, table string, id uuid.UUID) error {
	n, err := r.delete(ctx, op, table, goqu.Ex{colID: id.String()})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
