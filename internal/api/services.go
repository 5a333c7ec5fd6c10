package api

import "github.com/bookshelfapp/bookshelf-server/internal/service"

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Book    *service.BookService
	Stats   *service.StatsService
	Goal    *service.GoalService
	Library *service.LibraryService
	Catalog *service.CatalogService
	Search  *service.SearchService // full-text; may report itself disabled
}
