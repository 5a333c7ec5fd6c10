package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func TestNoopSearchIndexer(t *testing.T) {
	idx := NewNoopSearchIndexer()
	ctx := context.Background()

	assert.NoError(t, idx.IndexBook(ctx, &domain.Book{ID: "book_1"}))
	assert.NoError(t, idx.DeleteBook(ctx, "book_1"))
}
