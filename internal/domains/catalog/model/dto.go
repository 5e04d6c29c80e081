package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// MaxNameLength matches the width of the name columns.
const MaxNameLength = 64

// CreateAuthorAndBookRequest - POST /v1/catalog/books
type CreateAuthorAndBookRequest struct {
	Author string `json:"author"`
	Book   string `json:"book"`
}

func (r *CreateAuthorAndBookRequest) Normalize() {
	r.Author = strings.TrimSpace(r.Author)
	r.Book = strings.TrimSpace(r.Book)
}

func (r CreateAuthorAndBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Author, nameRules()...),
		validation.Field(&r.Book, nameRules()...),
	)
}

// CreateAuthorRequest - POST /v1/authors
type CreateAuthorRequest struct {
	Name string `json:"name"`
}

func (r *CreateAuthorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, nameRules()...),
	)
}

func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.ErrorObject(validation.NewError("validation_name_required", ErrNameRequired.Error())),
		validation.RuneLength(1, MaxNameLength).ErrorObject(validation.NewError("validation_name_too_long", ErrNameTooLong.Error())),
	}
}

// BookResponse is the JSON shape of a book.
type BookResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	AuthorID uuid.UUID `json:"author_id"`
}

// AuthorResponse is the JSON shape of an author, with books when listed.
type AuthorResponse struct {
	ID    uuid.UUID      `json:"id"`
	Name  string         `json:"name"`
	Books []BookResponse `json:"books,omitempty"`
}

// CatalogResponse - GET /v1/catalog
type CatalogResponse struct {
	Authors    []AuthorResponse `json:"authors"`
	TotalBooks int              `json:"total_books"`
}

func (b Book) ToResponse() BookResponse {
	return BookResponse{ID: b.ID, Name: b.Name, AuthorID: b.AuthorID}
}

func (a Author) ToResponse() AuthorResponse {
	return AuthorResponse{ID: a.ID, Name: a.Name}
}

// ToResponse converts the listing, keeping authors without books.
func (c Catalog) ToResponse() CatalogResponse {
	authors := make([]AuthorResponse, 0, len(c))
	for _, entry := range c {
		resp := entry.Author.ToResponse()
		resp.Books = make([]BookResponse, 0, len(entry.Books))
		for _, b := range entry.Books {
			resp.Books = append(resp.Books, b.ToResponse())
		}
		authors = append(authors, resp)
	}
	return CatalogResponse{Authors: authors, TotalBooks: c.BookCount()}
}
