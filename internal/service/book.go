package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// BookService manages a user's library. Every method takes the caller's user
// id and only ever sees that user's books.
type BookService struct {
	store     store.Store
	validator *validation.Validator
	now       Clock
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		validator: validation.New(),
		now:       systemClock,
		logger:    logger,
	}
}

const statusTag = "WANT_TO_READ READING READ FAVORITE ABANDONED"

// CreateBookRequest contains the fields of a new book. Status defaults to
// WANT_TO_READ; dates are YYYY-MM-DD or RFC 3339.
type CreateBookRequest struct {
	Title       string        `json:"title" validate:"notblank,max=500"`
	Author      string        `json:"author" validate:"notblank,max=500"`
	Year        *int          `json:"year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	ISBN        string        `json:"isbn,omitempty" validate:"max=32"`
	Genre       string        `json:"genre,omitempty" validate:"max=500"`
	Description string        `json:"description,omitempty" validate:"max=20000"`
	Notes       string        `json:"notes,omitempty" validate:"max=20000"`
	Cover       string        `json:"cover,omitempty" validate:"max=2048"`
	Pages       *int          `json:"pages,omitempty" validate:"omitempty,gte=0"`
	Status      domain.Status `json:"status,omitempty" validate:"omitempty,oneof=WANT_TO_READ READING READ FAVORITE ABANDONED"`
	Rating      int           `json:"rating,omitempty" validate:"gte=0,lte=5"`
	Progress    int           `json:"progress,omitempty" validate:"gte=0,lte=100"`
	StartDate   string        `json:"startDate,omitempty"`
	EndDate     string        `json:"endDate,omitempty"`
	Recommend   bool          `json:"recommend,omitempty"`
}

// UpdateBookRequest is a partial update: nil fields are left alone. Strings
// and dates are cleared with "", year and pages with 0.
type UpdateBookRequest struct {
	Title       *string        `json:"title,omitempty" validate:"omitempty,notblank,max=500"`
	Author      *string        `json:"author,omitempty" validate:"omitempty,notblank,max=500"`
	Year        *int           `json:"year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	ISBN        *string        `json:"isbn,omitempty" validate:"omitempty,max=32"`
	Genre       *string        `json:"genre,omitempty" validate:"omitempty,max=500"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=20000"`
	Notes       *string        `json:"notes,omitempty" validate:"omitempty,max=20000"`
	Cover       *string        `json:"cover,omitempty" validate:"omitempty,max=2048"`
	Pages       *int           `json:"pages,omitempty" validate:"omitempty,gte=0"`
	Status      *domain.Status `json:"status,omitempty" validate:"omitempty,oneof=WANT_TO_READ READING READ FAVORITE ABANDONED"`
	Rating      *int           `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Progress    *int           `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	StartDate   *string        `json:"startDate,omitempty"`
	EndDate     *string        `json:"endDate,omitempty"`
	Recommend   *bool          `json:"recommend,omitempty"`
}

// ProgressRequest sets progress to an absolute value or moves it by an
// increment. Exactly one of the two must be given.
type ProgressRequest struct {
	Progress  *int `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	Increment *int `json:"increment,omitempty"`
}

// ListBooksParams holds the raw list query parameters.
type ListBooksParams struct {
	Status    string
	Genre     string
	Rating    string
	Search    string
	SortBy    string
	SortOrder string
}

// CreateBook adds a book to userID's library.
func (s *BookService) CreateBook(ctx context.Context, userID string, req CreateBookRequest) (*domain.Book, error) {
	book, err := s.newBook(userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, storeError(err, "create book", msgBookNotFound)
	}

	s.logger.Info("book created", "user_id", userID, "book_id", book.ID)
	return book, nil
}

func (s *BookService) newBook(userID string, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	startDate, err := parseOptionalDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := s.now()
	book := &domain.Book{
		ID:          bookID,
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Year:        nonZero(req.Year),
		ISBN:        strings.TrimSpace(req.ISBN),
		Genre:       strings.TrimSpace(req.Genre),
		Description: req.Description,
		Notes:       req.Notes,
		Cover:       strings.TrimSpace(req.Cover),
		Pages:       nonZero(req.Pages),
		Status:      req.Status,
		Rating:      req.Rating,
		StartDate:   startDate,
		EndDate:     endDate,
		Recommend:   req.Recommend,
	}
	book.InitTimestamps(now)
	book.ApplyDefaults()
	book.SetProgress(req.Progress, now)
	return book, nil
}

// GetBook returns one of userID's books.
func (s *BookService) GetBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, userID, bookID)
	if err != nil {
		return nil, storeError(err, "get book", msgBookNotFound)
	}
	return book, nil
}

// ListBooks returns userID's books filtered and sorted by params.
func (s *BookService) ListBooks(ctx context.Context, userID string, params ListBooksParams) ([]*domain.Book, error) {
	filter, err := ParseBookFilter(params)
	if err != nil {
		return nil, err
	}

	books, err := s.store.ListBooks(ctx, userID, filter)
	if err != nil {
		return nil, storeError(err, "list books", msgBookNotFound)
	}
	return books, nil
}

// ParseBookFilter validates raw query parameters. Unknown enum values and a
// rating outside 0..5 are validation errors.
func ParseBookFilter(p ListBooksParams) (store.BookFilter, error) {
	details := map[string]string{}

	filter := store.BookFilter{
		Genre:     strings.TrimSpace(p.Genre),
		Search:    strings.TrimSpace(p.Search),
		SortBy:    store.SortField(strings.TrimSpace(p.SortBy)),
		SortOrder: store.SortOrder(strings.ToLower(strings.TrimSpace(p.SortOrder))),
	}

	if status := strings.TrimSpace(p.Status); status != "" {
		filter.Status = domain.Status(strings.ToUpper(status))
		if !filter.Status.Valid() {
			details["status"] = "must be one of: " + statusTag
		}
	}

	if raw := strings.TrimSpace(p.Rating); raw != "" {
		rating, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			details["rating"] = "must be an integer"
		case rating < 0 || rating > domain.MaxRating:
			details["rating"] = "must be between 0 and 5"
		default:
			filter.MinRating = &rating
		}
	}

	if filter.SortBy != "" && !filter.SortBy.Valid() {
		details["sortBy"] = "must be one of: createdAt title author rating year"
	}
	if filter.SortOrder != "" && !filter.SortOrder.Valid() {
		details["sortOrder"] = "must be one of: asc desc"
	}

	if len(details) > 0 {
		return store.BookFilter{}, validationFailure(details, "status", "rating", "sortBy", "sortOrder")
	}
	return filter.Normalized(), nil
}

// UpdateBook applies a partial update to one of userID's books.
func (s *BookService) UpdateBook(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	patch, err := req.toPatch()
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, bookID, "book updated", func(b *domain.Book, now time.Time) {
		b.Apply(patch, now)
	})
}

func (r UpdateBookRequest) toPatch() (domain.BookPatch, error) {
	startDate, err := parseDatePatch("startDate", r.StartDate)
	if err != nil {
		return domain.BookPatch{}, err
	}
	endDate, err := parseDatePatch("endDate", r.EndDate)
	if err != nil {
		return domain.BookPatch{}, err
	}

	return domain.BookPatch{
		Title:       trimmed(r.Title),
		Author:      trimmed(r.Author),
		Year:        r.Year,
		ISBN:        trimmed(r.ISBN),
		Genre:       trimmed(r.Genre),
		Description: r.Description,
		Notes:       r.Notes,
		Cover:       trimmed(r.Cover),
		Pages:       r.Pages,
		Status:      r.Status,
		Rating:      r.Rating,
		Progress:    r.Progress,
		StartDate:   startDate,
		EndDate:     endDate,
		Recommend:   r.Recommend,
	}, nil
}

// DeleteBook removes one of userID's books.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID string) error {
	if err := s.store.DeleteBook(ctx, userID, bookID); err != nil {
		return storeError(err, "delete book", msgBookNotFound)
	}
	s.logger.Info("book deleted", "user_id", userID, "book_id", bookID)
	return nil
}

// StartReading moves a book to READING with progress 0 and today's start date.
func (s *BookService) StartReading(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	return s.mutate(ctx, userID, bookID, "book started", func(b *domain.Book, now time.Time) {
		b.StartReading(now)
		b.Touch(now)
	})
}

// MarkRead finishes a book today.
func (s *BookService) MarkRead(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	return s.mutate(ctx, userID, bookID, "book marked read", func(b *domain.Book, now time.Time) {
		b.MarkRead(now)
		b.Touch(now)
	})
}

// ToggleFavorite flips a book between FAVORITE and READ.
func (s *BookService) ToggleFavorite(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	return s.mutate(ctx, userID, bookID, "book favorite toggled", func(b *domain.Book, now time.Time) {
		b.ToggleFavorite()
		b.Touch(now)
	})
}

// UpdateProgress sets or increments progress. Reaching 100 finishes the book.
func (s *BookService) UpdateProgress(ctx context.Context, userID, bookID string, req ProgressRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	switch {
	case req.Progress == nil && req.Increment == nil:
		return nil, domainerrors.Validation("progress or increment is required")
	case req.Progress != nil && req.Increment != nil:
		return nil, domainerrors.Validation("send either progress or increment, not both")
	}

	return s.mutate(ctx, userID, bookID, "book progress updated", func(b *domain.Book, now time.Time) {
		if req.Progress != nil {
			b.SetProgress(*req.Progress, now)
		} else {
			b.AddProgress(*req.Increment, now)
		}
		b.Touch(now)
	})
}

// mutate loads a book, changes it and saves it. Concurrent writers to the
// same book are last-write-wins.
func (s *BookService) mutate(
	ctx context.Context,
	userID, bookID, event string,
	change func(*domain.Book, time.Time),
) (*domain.Book, error) {
	book, err := s.GetBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	change(book, s.now())

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, storeError(err, "update book", msgBookNotFound)
	}

	s.logger.Debug(event,
		"user_id", userID,
		"book_id", bookID,
		"status", book.Status,
		"progress", book.Progress,
	)
	return book, nil
}

func nonZero(v *int) *int {
	if v == nil || *v == 0 {
		return nil
	}
	n := *v
	return &n
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	msg := "must be a date formatted as YYYY-MM-DD"
	return time.Time{}, domainerrors.ValidationWithDetails(field+" "+msg, map[string]string{field: msg})
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDatePatch(field string, value *string) (*domain.DatePatch, error) {
	if value == nil {
		return nil, nil
	}
	if strings.TrimSpace(*value) == "" {
		return &domain.DatePatch{Clear: true}, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &domain.DatePatch{Value: t}, nil
}

// validationFailure reports every field in details; the message names the
// first of them in order.
func validationFailure(details map[string]string, order ...string) error {
	for _, field := range order {
		if msg, ok := details[field]; ok {
			return domainerrors.ValidationWithDetails(field+" "+msg, details)
		}
	}
	return domainerrors.ValidationWithDetails("invalid request", details)
}

// errorMessage is the client-facing text of err.
func errorMessage(err error) string {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}
