package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

type fakeCatalog struct {
	results []catalog.Result
	err     error

	queries []string
	isbns   []string
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]catalog.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func (f *fakeCatalog) LookupISBN(_ context.Context, isbn string) ([]catalog.Result, error) {
	f.isbns = append(f.isbns, isbn)
	return f.results, f.err
}

func TestCatalogService_Search(t *testing.T) {
	client := &fakeCatalog{results: []catalog.Result{{Title: "Dune", Author: "Frank Herbert"}}}
	svc := NewCatalogService(client, logger.Discard())

	resp, err := svc.Search(context.Background(), "  dune ", "")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"dune"}, client.queries)
	assert.Empty(t, client.isbns)
}

func TestCatalogService_ISBNTakesPriority(t *testing.T) {
	client := &fakeCatalog{}
	svc := NewCatalogService(client, logger.Discard())

	resp, err := svc.Search(context.Background(), "dune", "9780441013593")
	require.NoError(t, err)
	assert.NotNil(t, resp.Results, "no match is an empty list")
	assert.Empty(t, resp.Results)
	assert.Equal(t, []string{"9780441013593"}, client.isbns)
	assert.Empty(t, client.queries)
}

func TestCatalogService_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		isbn     string
		err      error
		wantCode domainerrors.Code
	}{
		{"nothing to search", " ", "", nil, domainerrors.CodeValidation},
		{"invalid isbn", "", "12", catalog.ErrInvalidISBN, domainerrors.CodeValidation},
		{"upstream down", "dune", "", fmt.Errorf("openlibrary: %w", catalog.ErrUpstream), domainerrors.CodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCatalogService(&fakeCatalog{err: tt.err}, logger.Discard())
			_, err := svc.Search(context.Background(), tt.query, tt.isbn)
			requireCode(t, err, tt.wantCode)
		})
	}
}
