package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the caller's books, filtered and sorted",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the caller's library. Status defaults to WANT_TO_READ.",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns one of the caller's books",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Partially updates a book. Omitted fields are kept; \"\" clears text and dates, 0 clears year and pages.",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book from the caller's library",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleDeleteBook)
}

func (s *Server) registerBookActionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startReading",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/start-reading",
		Summary:     "Start reading",
		Description: "Sets status READING, progress 0 and today's start date",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleStartReading)

	huma.Register(s.api, huma.Operation{
		OperationID: "markRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/mark-read",
		Summary:     "Mark as read",
		Description: "Sets status READ, progress 100 and today's end date",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleMarkRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/toggle-favorite",
		Summary:     "Toggle favorite",
		Description: "Flips between FAVORITE and READ",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleToggleFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Update progress",
		Description: "Sets progress or moves it by an increment. Reaching 100 finishes the book.",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleUpdateProgress)
}

// === DTOs ===

// ListBooksInput contains the list filters. Values are validated by the
// book service so bad input gets field-level messages.
type ListBooksInput struct {
	Status    string `query:"status" doc:"Exact status: WANT_TO_READ, READING, READ, FAVORITE or ABANDONED"`
	Genre     string `query:"genre" doc:"Case-insensitive substring of the genre"`
	Rating    string `query:"rating" doc:"Minimum rating, 0 to 5"`
	Search    string `query:"search" doc:"Case-insensitive substring of title or author"`
	SortBy    string `query:"sortBy" doc:"createdAt (default), title, author, rating or year"`
	SortOrder string `query:"sortOrder" doc:"asc or desc (default)"`
}

// BookListOutput wraps a list of books for Huma.
type BookListOutput struct {
	Body []*domain.Book
}

// CreateBookRequest is the request body for creating or importing a book.
// Unknown fields such as id or createdAt are accepted and ignored.
type CreateBookRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       string   `json:"title" required:"false" doc:"Title"`
	Author      string   `json:"author" required:"false" doc:"Author"`
	Year        *int     `json:"year,omitempty" nullable:"true" doc:"Publication year, 0 to 9999"`
	ISBN        string   `json:"isbn,omitempty" doc:"ISBN"`
	Genre       string   `json:"genre,omitempty" doc:"Genres, comma separated"`
	Description string   `json:"description,omitempty" doc:"Description"`
	Notes       string   `json:"notes,omitempty" doc:"Private notes"`
	Cover       string   `json:"cover,omitempty" doc:"Cover image URL"`
	Pages       *int     `json:"pages,omitempty" nullable:"true" doc:"Page count"`
	Status      string   `json:"status,omitempty" doc:"Reading status, defaults to WANT_TO_READ"`
	Rating      int      `json:"rating,omitempty" doc:"Rating 0 to 5, 0 meaning unrated"`
	Progress    int      `json:"progress,omitempty" doc:"Progress percentage 0 to 100"`
	StartDate   string   `json:"startDate,omitempty" doc:"Start date, YYYY-MM-DD"`
	EndDate     string   `json:"endDate,omitempty" doc:"End date, YYYY-MM-DD"`
	Recommend   bool     `json:"recommend,omitempty" doc:"Whether the user recommends the book"`
}

func (r CreateBookRequest) toService() service.CreateBookRequest {
	return service.CreateBookRequest{
		Title:       r.Title,
		Author:      r.Author,
		Year:        r.Year,
		ISBN:        r.ISBN,
		Genre:       r.Genre,
		Description: r.Description,
		Notes:       r.Notes,
		Cover:       r.Cover,
		Pages:       r.Pages,
		Status:      domain.Status(r.Status),
		Rating:      r.Rating,
		Progress:    r.Progress,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Recommend:   r.Recommend,
	}
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// BookIDInput identifies a book by path.
type BookIDInput struct {
	ID string `path:"id" maxLength:"64" doc:"Book ID"`
}

// UpdateBookRequest is the request body for a partial update. Absent fields
// keep their value.
type UpdateBookRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       *string  `json:"title,omitempty" doc:"Title"`
	Author      *string  `json:"author,omitempty" doc:"Author"`
	Year        *int     `json:"year,omitempty" doc:"Publication year; 0 clears it"`
	ISBN        *string  `json:"isbn,omitempty" doc:"ISBN"`
	Genre       *string  `json:"genre,omitempty" doc:"Genres, comma separated"`
	Description *string  `json:"description,omitempty" doc:"Description"`
	Notes       *string  `json:"notes,omitempty" doc:"Private notes"`
	Cover       *string  `json:"cover,omitempty" doc:"Cover image URL"`
	Pages       *int     `json:"pages,omitempty" doc:"Page count; 0 clears it"`
	Status      *string  `json:"status,omitempty" doc:"Reading status"`
	Rating      *int     `json:"rating,omitempty" doc:"Rating 0 to 5"`
	Progress    *int     `json:"progress,omitempty" doc:"Progress percentage 0 to 100"`
	StartDate   *string  `json:"startDate,omitempty" doc:"Start date, YYYY-MM-DD; \"\" clears it"`
	EndDate     *string  `json:"endDate,omitempty" doc:"End date, YYYY-MM-DD; \"\" clears it"`
	Recommend   *bool    `json:"recommend,omitempty" doc:"Whether the user recommends the book"`
}

func (r UpdateBookRequest) toService() service.UpdateBookRequest {
	var status *domain.Status
	if r.Status != nil {
		st := domain.Status(*r.Status)
		status = &st
	}
	return service.UpdateBookRequest{
		Title:       r.Title,
		Author:      r.Author,
		Year:        r.Year,
		ISBN:        r.ISBN,
		Genre:       r.Genre,
		Description: r.Description,
		Notes:       r.Notes,
		Cover:       r.Cover,
		Pages:       r.Pages,
		Status:      status,
		Rating:      r.Rating,
		Progress:    r.Progress,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Recommend:   r.Recommend,
	}
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" maxLength:"64" doc:"Book ID"`
	Body UpdateBookRequest
}

// ProgressRequest is the request body for a progress update.
type ProgressRequest struct {
	Progress  *int `json:"progress,omitempty" doc:"Absolute progress, 0 to 100"`
	Increment *int `json:"increment,omitempty" doc:"Amount added to the current progress; the result is clamped to 0..100"`
}

// ProgressInput wraps the progress request for Huma.
type ProgressInput struct {
	ID   string `path:"id" maxLength:"64" doc:"Book ID"`
	Body ProgressRequest
}

// DeleteBookOutput confirms a deletion.
type DeleteBookOutput struct {
	Body DeleteBookResponse
}

// DeleteBookResponse echoes the deleted book's id.
type DeleteBookResponse struct {
	ID string `json:"id" doc:"Deleted book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, userID, service.ListBooksParams{
		Status:    input.Status,
		Genre:     input.Genre,
		Rating:    input.Rating,
		Search:    input.Search,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
	})
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.Book{}
	}

	return &BookListOutput{Body: books}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, input.Body.toService())
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, userID, input.ID, input.Body.toService())
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*DeleteBookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &DeleteBookOutput{Body: DeleteBookResponse{ID: input.ID}}, nil
}

func (s *Server) handleStartReading(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	return s.bookAction(ctx, input.ID, s.services.Book.StartReading)
}

func (s *Server) handleMarkRead(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	return s.bookAction(ctx, input.ID, s.services.Book.MarkRead)
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	return s.bookAction(ctx, input.ID, s.services.Book.ToggleFavorite)
}

func (s *Server) handleUpdateProgress(ctx context.Context, input *ProgressInput) (*BookOutput, error) {
	return s.bookAction(ctx, input.ID, func(ctx context.Context, userID, bookID string) (*domain.Book, error) {
		return s.services.Book.UpdateProgress(ctx, userID, bookID, service.ProgressRequest{
			Progress:  input.Body.Progress,
			Increment: input.Body.Increment,
		})
	})
}

type bookActionFunc func(ctx context.Context, userID, bookID string) (*domain.Book, error)

func (s *Server) bookAction(ctx context.Context, bookID string, action bookActionFunc) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := action(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}
