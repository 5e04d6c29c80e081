package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Business error kinds returned by the catalog service.
	ErrNotFound            = errors.New("not found")
	ErrDuplicateAuthor     = errors.New("author with this name already exists")
	ErrDuplicateBook       = errors.New("book with this name already exists")
	ErrForeignKeyViolation = errors.New("book references a nonexistent author")
	ErrTransactionFailure  = errors.New("transaction failed and was rolled back")

	ErrAuthorNotFound = fmt.Errorf("author %w", ErrNotFound)
	ErrBookNotFound   = fmt.Errorf("book %w", ErrNotFound)

	// Validation Errors
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name exceeds maximum length")
)

// TransactionError reports a storage failure inside an atomic unit. The unit
// has already been rolled back when this error reaches the caller.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrTransactionFailure, e.Err)
}

func (e *TransactionError) Unwrap() []error {
	return []error{ErrTransactionFailure, e.Err}
}

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrBookNotFound):
		return "BOOK_NOT_FOUND"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrDuplicateAuthor):
		return "DUPLICATE_AUTHOR"
	case errors.Is(err, ErrDuplicateBook):
		return "DUPLICATE_BOOK"
	case errors.Is(err, ErrForeignKeyViolation):
		return "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTooLong):
		return "INVALID_NAME"
	case errors.Is(err, ErrTransactionFailure):
		return "TRANSACTION_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateAuthor), errors.Is(err, ErrDuplicateBook):
		return http.StatusConflict
	case errors.Is(err, ErrForeignKeyViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
