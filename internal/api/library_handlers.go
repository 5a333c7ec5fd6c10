package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/export",
		Summary:     "Export library",
		Description: "Returns every book of the caller, oldest first",
		Tags:        []string{"Library"},
		Security:    protected,
	}, s.handleExportLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "importLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/import",
		Summary:     "Import library",
		Description: "Creates each book in order and stops at the first invalid one. Books created before the failure are kept.",
		Tags:        []string{"Library"},
		Security:    protected,
		// Exports of large libraries.
		MaxBodyBytes: 16 << 20,
	}, s.handleImportLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearLibrary",
		Method:      http.MethodDelete,
		Path:        "/api/v1/library",
		Summary:     "Clear library",
		Description: "Deletes every book of the caller one by one",
		Tags:        []string{"Library"},
		Security:    protected,
	}, s.handleClearLibrary)
}

// ExportOutput wraps an export for Huma.
type ExportOutput struct {
	Body *service.ExportResponse
}

// ImportRequest is the request body for an import. It accepts the books
// array of an export as is.
type ImportRequest struct {
	_     struct{}            `json:"-" additionalProperties:"true"`
	Books []CreateBookRequest `json:"books" required:"false" maxItems:"10000" doc:"Books to create"`
}

// ImportInput wraps the import request for Huma.
type ImportInput struct {
	Body ImportRequest
}

// ImportOutput wraps the import result for Huma.
type ImportOutput struct {
	Body *service.ImportResponse
}

// ClearOutput wraps the clear result for Huma.
type ClearOutput struct {
	Body *service.ClearResponse
}

func (s *Server) handleExportLibrary(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	export, err := s.services.Library.Export(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ExportOutput{Body: export}, nil
}

func (s *Server) handleImportLibrary(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books := make([]service.CreateBookRequest, len(input.Body.Books))
	for i, b := range input.Body.Books {
		books[i] = b.toService()
	}

	result, err := s.services.Library.Import(ctx, userID, service.ImportRequest{Books: books})
	if err != nil {
		return nil, err
	}

	return &ImportOutput{Body: result}, nil
}

func (s *Server) handleClearLibrary(ctx context.Context, _ *struct{}) (*ClearOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Library.Clear(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ClearOutput{Body: result}, nil
}
