package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      error
		table     string
		condition string
	}{
		{
			name: "no rows",
			err:  pgx.ErrNoRows,
			kind: ErrRecordNotFound,
		},
		{
			name:      "unique violation on authors",
			err:       &pgconn.PgError{Code: "23505", TableName: "authors", ConstraintName: "authors_name_key"},
			kind:      ErrUniqueViolation,
			table:     TableAuthors,
			condition: "unique_violation",
		},
		{
			name:      "foreign key violation",
			err:       &pgconn.PgError{Code: "23503", TableName: "books", ConstraintName: "books_author_id_fkey"},
			kind:      ErrForeignKeyViolation,
			table:     TableBooks,
			condition: "foreign_key_violation",
		},
		{
			name:      "serialization failure",
			err:       &pgconn.PgError{Code: "40001"},
			kind:      ErrConflict,
			condition: "serialization_failure",
		},
		{
			name:      "deadlock",
			err:       &pgconn.PgError{Code: "40P01"},
			kind:      ErrConflict,
			condition: "deadlock_detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError(fmt.Errorf("wrapped: %w", tt.err), "op")

			assert.ErrorIs(t, got, tt.kind)

			var se *StorageError
			if tt.condition == "" {
				assert.False(t, errors.As(got, &se))
				return
			}
			if assert.True(t, errors.As(got, &se)) {
				assert.Equal(t, tt.table, se.Table)
				assert.Equal(t, tt.condition, se.Condition)
			}
		})
	}
}

func TestMapPgError_UnknownKeepsDriverError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}

	got := mapPgError(pgErr, "find author")

	assert.ErrorIs(t, got, pgErr)
	assert.NotErrorIs(t, got, ErrUniqueViolation)
	assert.NotErrorIs(t, got, ErrConflict)
	assert.Contains(t, got.Error(), "find author")
}

func TestMapSQLiteError_BusyIsConflict(t *testing.T) {
	got := mapSQLiteError(sqlite3.Error{Code: sqlite3.ErrBusy}, "begin")

	assert.ErrorIs(t, got, ErrConflict)
}

func TestIsUniqueViolationOn(t *testing.T) {
	err := fmt.Errorf("insert: %w", &StorageError{Kind: ErrUniqueViolation, Table: TableBooks})

	assert.True(t, IsUniqueViolationOn(err, TableBooks))
	assert.False(t, IsUniqueViolationOn(err, TableAuthors))
	assert.False(t, IsUniqueViolationOn(&StorageError{Kind: ErrForeignKeyViolation, Table: TableBooks}, TableBooks))
	assert.False(t, IsUniqueViolationOn(errors.New("plain"), TableBooks))
}

func TestMapTxError(t *testing.T) {
	classified := &StorageError{Kind: ErrConflict, Err: errors.New("x")}
	assert.Same(t, classified, mapTxError(classified, mapPgError))

	plain := errors.New("from the unit")
	assert.Equal(t, plain, mapTxError(plain, mapPgError))

	commit := fmt.Errorf("failed to commit transaction: %w", &pgconn.PgError{Code: "40001"})
	assert.ErrorIs(t, mapTxError(commit, mapPgError), ErrConflict)

	assert.NoError(t, mapTxError(nil, mapPgError))
}
