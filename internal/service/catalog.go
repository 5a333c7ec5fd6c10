package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

// CatalogClient looks up books in external catalogs.
type CatalogClient interface {
	Search(ctx context.Context, query string) ([]catalog.Result, error)
	LookupISBN(ctx context.Context, isbn string) ([]catalog.Result, error)
}

// CatalogService pre-fills new books from external catalogs.
type CatalogService struct {
	client CatalogClient
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(client CatalogClient, logger *slog.Logger) *CatalogService {
	return &CatalogService{client: client, logger: logger}
}

// CatalogSearchResponse lists candidate records. No match is an empty list.
type CatalogSearchResponse struct {
	Results []catalog.Result `json:"results"`
}

// Search looks up isbn when given, otherwise the free-text query.
func (s *CatalogService) Search(ctx context.Context, query, isbn string) (*CatalogSearchResponse, error) {
	query, isbn = strings.TrimSpace(query), strings.TrimSpace(isbn)

	var (
		results []catalog.Result
		err     error
	)
	switch {
	case isbn != "":
		results, err = s.client.LookupISBN(ctx, isbn)
	case query != "":
		results, err = s.client.Search(ctx, query)
	default:
		return nil, domainerrors.ValidationWithDetails("q or isbn is required",
			map[string]string{"q": "q or isbn is required"})
	}

	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrInvalidISBN):
		return nil, domainerrors.ValidationWithDetails("isbn must be a valid ISBN",
			map[string]string{"isbn": "must be 10 or 13 digits"})
	case errors.Is(err, catalog.ErrUpstream):
		s.logger.Warn("catalog lookup failed", "query", query, "isbn", isbn, "error", err)
		return nil, domainerrors.Upstream(catalog.ErrUpstream.Error()).WithCause(err)
	default:
		return nil, err
	}

	if results == nil {
		results = []catalog.Result{}
	}
	return &CatalogSearchResponse{Results: results}, nil
}
