package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"library-catalog/internal/domains/catalog/model"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresRepository implements RepositoryInterface on top of pgx.
type postgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository binds a repository to a pool or a transaction.
func NewPostgresRepository(db pgxQuerier) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) FindAuthorByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return r.scanAuthor(ctx, "find author by id",
		`SELECT id, name, created_at FROM authors WHERE id = $1`, id)
}

func (r *postgresRepository) FindAuthorByName(ctx context.Context, name string) (*model.Author, error) {
	return r.scanAuthor(ctx, "find author by name",
		`SELECT id, name, created_at FROM authors WHERE name = $1`, name)
}

func (r *postgresRepository) LockAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return r.scanAuthor(ctx, "lock author",
		`SELECT id, name, created_at FROM authors WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresRepository) FindBookByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return r.scanBook(ctx, "find book by id",
		`SELECT id, name, author_id, created_at FROM books WHERE id = $1`, id)
}

func (r *postgresRepository) FindBookByName(ctx context.Context, name string) (*model.Book, error) {
	return r.scanBook(ctx, "find book by name",
		`SELECT id, name, author_id, created_at FROM books WHERE name = $1`, name)
}

func (r *postgresRepository) InsertAuthor(ctx context.Context, name string) (*model.Author, error) {
	return r.scanAuthor(ctx, "insert author", `
        INSERT INTO authors (name)
        VALUES ($1)
        RETURNING id, name, created_at
    `, name)
}

func (r *postgresRepository) InsertBook(ctx context.Context, name string, authorID uuid.UUID) (*model.Book, error) {
	return r.scanBook(ctx, "insert book", `
        INSERT INTO books (name, author_id)
        VALUES ($1, $2)
        RETURNING id, name, author_id, created_at
    `, name, authorID)
}

func (r *postgresRepository) DeleteBooksByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, mapPgError(err, "delete books by author")
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) DeleteAuthor(ctx context.Context, id uuid.UUID) error {
	return r.deleteOne(ctx, "delete author", `DELETE FROM authors WHERE id = $1`, id)
}

func (r *postgresRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return r.deleteOne(ctx, "delete book", `DELETE FROM books WHERE id = $1`, id)
}

func (r *postgresRepository) ListAuthorsWithBooks(ctx context.Context) (model.Catalog, error) {
	query := `
        SELECT a.id, a.name, a.created_at, b.id, b.name, b.created_at
        FROM authors a
        LEFT JOIN books b ON b.author_id = a.id
        ORDER BY a.created_at, a.name, b.created_at, b.name
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err, "list authors with books")
	}
	defer rows.Close()

	var builder catalogBuilder
	for rows.Next() {
		var (
			a             model.Author
			bookID        *uuid.UUID
			bookName      *string
			bookCreatedAt *time.Time
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &bookID, &bookName, &bookCreatedAt); err != nil {
			return nil, mapPgError(err, "scan catalog row")
		}

		var b *model.Book
		if bookID != nil {
			b = &model.Book{ID: *bookID, Name: *bookName, AuthorID: a.ID, CreatedAt: *bookCreatedAt}
		}
		builder.add(a, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "iterate catalog rows")
	}

	return builder.catalog(), nil
}

func (r *postgresRepository) scanAuthor(ctx context.Context, op, query string, args ...any) (*model.Author, error) {
	var a model.Author
	err := r.db.QueryRow(ctx, query, args...).Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, op)
	}
	return &a, nil
}

func (r *postgresRepository) scanBook(ctx context.Context, op, query string, args ...any) (*model.Book, error) {
	var b model.Book
	err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Name, &b.AuthorID, &b.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, op)
	}
	return &b, nil
}

func (r *postgresRepository) deleteOne(ctx context.Context, op, query string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return mapPgError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
