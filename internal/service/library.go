package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// LibraryService moves a whole library in and out. Each book is a separate
// store write: nothing is rolled back when an item fails.
type LibraryService struct {
	store  store.Store
	books  *BookService
	now    Clock
	logger *slog.Logger
}

// NewLibraryService creates a new library transfer service.
func NewLibraryService(store store.Store, books *BookService, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:  store,
		books:  books,
		now:    systemClock,
		logger: logger,
	}
}

// ExportResponse is a portable copy of a library.
type ExportResponse struct {
	Books      []*domain.Book `json:"books"`
	ExportDate time.Time      `json:"exportDate"`
}

// ImportRequest holds the books to import. Ids, owners and timestamps in the
// payload are ignored; every book is created fresh for the caller.
type ImportRequest struct {
	Books []CreateBookRequest `json:"books"`
}

// ImportFailure identifies the item an import stopped at.
type ImportFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ImportResponse reports how far an import got.
type ImportResponse struct {
	Imported int            `json:"imported"`
	Failed   *ImportFailure `json:"failed"`
}

// ClearResponse reports how many books were deleted.
type ClearResponse struct {
	Deleted int `json:"deleted"`
}

// Export returns every book of userID, oldest first.
func (s *LibraryService) Export(ctx context.Context, userID string) (*ExportResponse, error) {
	books, err := s.store.ListAllBooks(ctx, userID)
	if err != nil {
		return nil, storeError(err, "list books", msgBookNotFound)
	}
	return &ExportResponse{Books: books, ExportDate: s.now()}, nil
}

// Import creates the books one at a time and stops at the first failure.
// Books created before the failure stay.
func (s *LibraryService) Import(ctx context.Context, userID string, req ImportRequest) (*ImportResponse, error) {
	batchID := id.NewBatchID()
	log := s.logger.With("user_id", userID, "batch_id", batchID)
	log.Info("library import started", "books", len(req.Books))

	resp := &ImportResponse{}
	for i, item := range req.Books {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := s.books.CreateBook(ctx, userID, item); err != nil {
			resp.Failed = &ImportFailure{Index: i, Error: errorMessage(err)}
			log.Warn("library import stopped", "index", i, "imported", resp.Imported, "error", err)
			return resp, nil
		}
		resp.Imported++
	}

	log.Info("library import finished", "imported", resp.Imported)
	return resp, nil
}

// Clear deletes every book of userID one by one. On failure the error
// carries the number already deleted in its details.
func (s *LibraryService) Clear(ctx context.Context, userID string) (*ClearResponse, error) {
	ids, err := s.store.ListBookIDs(ctx, userID)
	if err != nil {
		return nil, storeError(err, "list books", msgBookNotFound)
	}

	deleted := 0
	for _, bookID := range ids {
		if err := s.store.DeleteBook(ctx, userID, bookID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // removed concurrently
			}
			s.logger.Error("library clear stopped", "user_id", userID, "deleted", deleted, "error", err)
			return nil, partialFailure(storeError(err, "delete book", msgBookNotFound), deleted)
		}
		deleted++
	}

	s.logger.Info("library cleared", "user_id", userID, "deleted", deleted)
	return &ClearResponse{Deleted: deleted}, nil
}

func partialFailure(err error, deleted int) error {
	details := map[string]int{"deleted": deleted}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.WithDetails(details)
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to clear library").WithDetails(details)
}
