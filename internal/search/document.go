// Package search maintains a Bleve full-text index over every user's books.
// Documents carry the owning user id and every query is filtered by it.
package search

import (
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// BookDocument is the indexed form of a domain.Book.
type BookDocument struct {
	ID          string
	UserID      string
	Title       string
	Author      string
	Description string
	Notes       string
	Genres      []string // lower-cased tags
	Status      string
	Year        int // 0 when unknown
}

// NewBookDocument builds the document for b.
func NewBookDocument(b *domain.Book) *BookDocument {
	tags := b.Tags()
	genres := make([]string, len(tags))
	for i, t := range tags {
		genres[i] = strings.ToLower(t)
	}

	doc := &BookDocument{
		ID:          b.ID,
		UserID:      b.UserID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Notes:       b.Notes,
		Genres:      genres,
		Status:      string(b.Status),
	}
	if b.Year != nil {
		doc.Year = *b.Year
	}
	return doc
}

// ToMap converts the document to a map keyed by the field names used in
// the index mapping. Empty optional fields are left out.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"user_id": d.UserID,
		"title":   d.Title,
		"author":  d.Author,
		"status":  d.Status,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Notes != "" {
		m["notes"] = d.Notes
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	return m
}
