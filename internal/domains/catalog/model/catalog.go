package model

import (
	"time"

	"github.com/google/uuid"
)

// Author is a catalog author. Books are not embedded: they reference the
// author through Book.AuthorID and are joined at read time.
type Author struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Book belongs to exactly one Author. Name is unique across the whole
// catalog, not per author.
type Book struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuthorWithBooks is one entry of the catalog listing.
type AuthorWithBooks struct {
	Author Author `json:"author"`
	Books  []Book `json:"books"`
}

// Catalog is the full listing: authors in insertion order, each with its
// books in insertion order.
type Catalog []AuthorWithBooks

// FindAuthor returns the entry for the given author name, if present.
func (c Catalog) FindAuthor(name string) (AuthorWithBooks, bool) {
	for _, entry := range c {
		if entry.Author.Name == name {
			return entry, true
		}
	}
	return AuthorWithBooks{}, false
}

// BookCount returns the number of books across all authors.
func (c Catalog) BookCount() int {
	n := 0
	for _, entry := range c {
		n += len(entry.Books)
	}
	return n
}
