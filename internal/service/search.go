package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// SearchService runs full-text queries over a user's library. It bridges the
// search index with the store: hits are resolved to the stored books.
type SearchService struct {
	index  *search.Index // nil when indexing is disabled
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service. index may be nil.
func NewSearchService(index *search.Index, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// FullTextParams are the query parameters of a full-text search.
type FullTextParams struct {
	Query  string
	Status string
	Genre  string
	Limit  int
}

// FullTextHit is one matching book.
type FullTextHit struct {
	Book       *domain.Book      `json:"book"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FullTextResponse is a page of hits, best first.
type FullTextResponse struct {
	Total   uint64        `json:"total"`
	TookMs  int64         `json:"tookMs"`
	Results []FullTextHit `json:"results"`
}

// Enabled reports whether full-text search is available.
func (s *SearchService) Enabled() bool {
	return s.index != nil
}

// DocumentCount returns the number of indexed books.
func (s *SearchService) DocumentCount() (uint64, error) {
	if s.index == nil {
		return 0, nil
	}
	return s.index.DocumentCount()
}

// FullText searches userID's books.
func (s *SearchService) FullText(ctx context.Context, userID string, params FullTextParams) (*FullTextResponse, error) {
	if s.index == nil {
		return nil, domainerrors.Unavailable("full-text search is disabled")
	}
	if params.Limit < 0 || params.Limit > search.MaxLimit {
		return nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("limit must be between 1 and %d", search.MaxLimit),
			map[string]string{"limit": fmt.Sprintf("must be between 1 and %d", search.MaxLimit)},
		)
	}

	status := strings.ToUpper(strings.TrimSpace(params.Status))
	if status != "" && !domain.Status(status).Valid() {
		return nil, domainerrors.ValidationWithDetails("status must be one of: "+statusTag,
			map[string]string{"status": "must be one of: " + statusTag})
	}

	result, err := s.index.Search(ctx, search.Params{
		UserID: userID,
		Query:  params.Query,
		Status: status,
		Genre:  params.Genre,
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	resp := &FullTextResponse{
		Total:   result.Total,
		TookMs:  result.TookMs,
		Results: make([]FullTextHit, 0, len(result.Hits)),
	}
	for _, hit := range result.Hits {
		book, err := s.store.GetBook(ctx, userID, hit.ID)
		if err != nil {
			if isNotFound(err) {
				// Stale document; the book went away after indexing.
				s.logger.Debug("skipping stale search hit", "book_id", hit.ID)
				continue
			}
			return nil, storeError(err, "get book", msgBookNotFound)
		}
		resp.Results = append(resp.Results, FullTextHit{
			Book:       book,
			Score:      hit.Score,
			Highlights: hit.Highlights,
		})
	}
	return resp, nil
}

// Reindex rebuilds the index from the store and returns the number of
// books indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, domainerrors.Unavailable("full-text search is disabled")
	}

	start := time.Now()
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, storeError(err, "list users", "")
	}

	total := 0
	for _, userID := range userIDs {
		books, err := s.store.ListAllBooks(ctx, userID)
		if err != nil {
			return total, storeError(err, "list books", msgBookNotFound)
		}
		if err := s.index.IndexBooks(ctx, books); err != nil {
			return total, fmt.Errorf("index books of %s: %w", userID, err)
		}
		total += len(books)
	}

	s.logger.Info("search index rebuilt",
		"books", total,
		"users", len(userIDs),
		"duration", time.Since(start),
	)
	return total, nil
}

// EnsureIndexed rebuilds the index when it is empty but the store has books,
// as after the index directory was removed or its mapping changed.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	docs, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if docs > 0 {
		return nil
	}

	books, err := s.store.CountBooks(ctx)
	if err != nil {
		return storeError(err, "count books", "")
	}
	if books == 0 {
		return nil
	}

	s.logger.Info("search index is empty, rebuilding", "books", books)
	_, err = s.Reindex(ctx)
	return err
}
