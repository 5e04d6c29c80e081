package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Raw storage error kinds.
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrConflict is a transient failure caused by a concurrent transaction
	// (serialization failure, deadlock, locked database). Retrying the whole
	// transaction may succeed.
	ErrConflict = errors.New("concurrent transaction conflict")
)

// Table names, also used to attribute constraint violations.
const (
	TableAuthors = "authors"
	TableBooks   = "books"
)

// StorageError carries a raw error kind together with the driver error.
type StorageError struct {
	Kind       error
	Table      string
	Constraint string
	Condition  string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%v on %s (%s): %v", e.Kind, e.Table, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IsUniqueViolationOn reports whether err is a unique violation on table.
func IsUniqueViolationOn(err error, table string) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == ErrUniqueViolation && se.Table == table
}

// mapPgError translates pgx/Postgres errors into raw storage kinds. The
// SQLSTATE is resolved through lib/pq's condition-name table.
func mapPgError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		condition := pq.ErrorCode(pgErr.Code).Name()
		se := &StorageError{
			Table:      pgErr.TableName,
			Constraint: pgErr.ConstraintName,
			Condition:  condition,
			Err:        err,
		}
		switch condition {
		case "unique_violation":
			se.Kind = ErrUniqueViolation
			return se
		case "foreign_key_violation":
			se.Kind = ErrForeignKeyViolation
			return se
		case "serialization_failure", "deadlock_detected", "lock_not_available":
			se.Kind = ErrConflict
			return se
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var sqliteConstraintTable = regexp.MustCompile(`constraint failed: (\w+)\.(\w+)`)

// mapSQLiteError translates go-sqlite3 errors into raw storage kinds.
func mapSQLiteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}

	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		se := &StorageError{Condition: strings.ToLower(sqlErr.Error()), Err: err}
		if m := sqliteConstraintTable.FindStringSubmatch(sqlErr.Error()); m != nil {
			se.Table = m[1]
			se.Constraint = m[1] + "_" + m[2] + "_key"
		}
		switch {
		case sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			se.Kind = ErrUniqueViolation
			return se
		case sqlErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			se.Kind = ErrForeignKeyViolation
			if se.Table == "" {
				se.Table = TableBooks
				se.Constraint = "books_author_id_fkey"
			}
			return se
		case sqlErr.Code == sqlite3.ErrBusy, sqlErr.Code == sqlite3.ErrLocked:
			se.Kind = ErrConflict
			return se
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapTxError classifies driver errors raised by BEGIN or COMMIT. Errors
// already classified inside the unit, or not coming from a driver, pass
// through unchanged.
func mapTxError(err error, mapDriver func(error, string) error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	var pgErr *pgconn.PgError
	var sqlErr sqlite3.Error
	if errors.As(err, &pgErr) || errors.As(err, &sqlErr) {
		return mapDriver(err, "transaction")
	}
	return err
}
