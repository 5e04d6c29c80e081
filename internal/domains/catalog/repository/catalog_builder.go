package repository

import "library-catalog/internal/domains/catalog/model"

// catalogBuilder folds joined author/book rows, ordered by author, into a
// Catalog.
type catalogBuilder struct {
	entries model.Catalog
}

func (cb *catalogBuilder) add(a model.Author, b *model.Book) {
	n := len(cb.entries)
	if n == 0 || cb.entries[n-1].Author.ID != a.ID {
		cb.entries = append(cb.entries, model.AuthorWithBooks{Author: a, Books: []model.Book{}})
		n++
	}
	if b != nil {
		cb.entries[n-1].Books = append(cb.entries[n-1].Books, *b)
	}
}

func (cb *catalogBuilder) catalog() model.Catalog {
	if cb.entries == nil {
		return model.Catalog{}
	}
	return cb.entries
}
