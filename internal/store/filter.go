package store

import "github.com/bookshelfapp/bookshelf-server/internal/domain"

// SortField is a column a book list can be ordered by.
type SortField string

// Sortable fields.
const (
	SortByCreatedAt SortField = "createdAt"
	SortByTitle     SortField = "title"
	SortByAuthor    SortField = "author"
	SortByRating    SortField = "rating"
	SortByYear      SortField = "year"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByTitle, SortByAuthor, SortByRating, SortByYear:
		return true
	default:
		return false
	}
}

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// BookFilter narrows and orders a user's book list. Zero values impose no
// constraint. Kinds combine with AND; Search matches title OR author.
type BookFilter struct {
	Status    domain.Status
	Genre     string // case-insensitive substring
	MinRating *int   // inclusive
	Search    string // case-insensitive substring of title or author
	SortBy    SortField
	SortOrder SortOrder
}

// Normalized returns f with the default ordering (createdAt desc) filled in.
func (f BookFilter) Normalized() BookFilter {
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	return f
}
