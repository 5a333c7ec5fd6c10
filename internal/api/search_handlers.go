package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "catalogSearch",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search public catalogs",
		Description: "Looks up book records by ISBN or free text to pre-fill a new book. isbn wins when both are given.",
		Tags:        []string{"Search"},
		Middlewares: huma.Middlewares{s.rateLimited(s.authRateLimiter)},
	}, s.handleCatalogSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "fullTextSearch",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/fulltext",
		Summary:     "Full-text search",
		Description: "Searches title, author, description and notes of the caller's books",
		Tags:        []string{"Search"},
		Security:    protected,
	}, s.handleFullTextSearch)
}

// === DTOs ===

// CatalogSearchInput contains the catalog lookup parameters.
type CatalogSearchInput struct {
	Query string `query:"q" maxLength:"200" doc:"Free-text query"`
	ISBN  string `query:"isbn" maxLength:"32" doc:"ISBN-10 or ISBN-13; hyphens and spaces are ignored"`
}

// CatalogSearchOutput wraps catalog results for Huma.
type CatalogSearchOutput struct {
	Body *service.CatalogSearchResponse
}

// FullTextSearchInput contains the full-text search parameters.
type FullTextSearchInput struct {
	Query  string `query:"q" maxLength:"200" doc:"Search query; empty matches every book"`
	Status string `query:"status" doc:"Restrict to a reading status"`
	Genre  string `query:"genre" maxLength:"100" doc:"Restrict to a genre tag"`
	Limit  int    `query:"limit" doc:"Max results (default 20)"`
}

// FullTextSearchOutput wraps full-text results for Huma.
type FullTextSearchOutput struct {
	Body *service.FullTextResponse
}

// === Handlers ===

func (s *Server) handleCatalogSearch(ctx context.Context, input *CatalogSearchInput) (*CatalogSearchOutput, error) {
	resp, err := s.services.Catalog.Search(ctx, input.Query, input.ISBN)
	if err != nil {
		return nil, err
	}
	return &CatalogSearchOutput{Body: resp}, nil
}

func (s *Server) handleFullTextSearch(ctx context.Context, input *FullTextSearchInput) (*FullTextSearchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Search.FullText(ctx, userID, service.FullTextParams{
		Query:  input.Query,
		Status: input.Status,
		Genre:  input.Genre,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &FullTextSearchOutput{Body: resp}, nil
}
