package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, user_id, title, author, year, isbn, genre, description, notes,
	cover, pages, status, rating, progress, start_date, end_date, recommend,
	created_at, updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b                                      domain.Book
		year, pages                            sql.NullInt64
		isbn, genre, description, notes, cover sql.NullString
		status                                 string
		startDate, endDate                     sql.NullString
		recommend                              int
		createdAt, updatedAt                   string
	)
	err := scanner.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Author,
		&year,
		&isbn,
		&genre,
		&description,
		&notes,
		&cover,
		&pages,
		&status,
		&b.Rating,
		&b.Progress,
		&startDate,
		&endDate,
		&recommend,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Year = intPtr(year)
	b.Pages = intPtr(pages)
	b.ISBN = isbn.String
	b.Genre = genre.String
	b.Description = description.String
	b.Notes = notes.String
	b.Cover = cover.String
	b.Status = domain.Status(status)
	b.Recommend = recommend != 0

	if b.StartDate, err = parseNullableTime(startDate); err != nil {
		return nil, err
	}
	if b.EndDate, err = parseNullableTime(endDate); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, user_id, title, title_fold, author, author_fold, year, isbn, genre, genre_fold,
			description, notes, cover, pages, status, rating, progress, start_date, end_date,
			recommend, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.UserID,
		book.Title,
		normalize.Fold(book.Title),
		book.Author,
		normalize.Fold(book.Author),
		nullInt(book.Year),
		nullString(book.ISBN),
		nullString(book.Genre),
		nullString(normalize.Fold(book.Genre)),
		nullString(book.Description),
		nullString(book.Notes),
		nullString(book.Cover),
		nullInt(book.Pages),
		string(book.Status),
		book.Rating,
		book.Progress,
		nullTimeString(book.StartDate),
		nullTimeString(book.EndDate),
		boolToInt(book.Recommend),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return mapError(err)
	}

	s.indexBook(ctx, book)
	return nil
}

// GetBook retrieves one of userID's books.
// Returns store.ErrNotFound if it does not exist or belongs to someone else.
func (s *Store) GetBook(ctx context.Context, userID, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBook(row)
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

// ListBooks returns userID's books matching filter, in the filter's order.
func (s *Store) ListBooks(ctx context.Context, userID string, filter store.BookFilter) ([]*domain.Book, error) {
	where, args := buildBookWhere(userID, filter)
	orderBy, err := buildBookOrder(filter)
	if err != nil {
		return nil, err
	}
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books WHERE `+where+` ORDER BY `+orderBy, args...)
}

// ListAllBooks returns every book of userID, oldest first.
func (s *Store) ListAllBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_id = ? ORDER BY created_at, id`, userID)
}

// ListBookIDs returns the ids of userID's books.
func (s *Store) ListBookIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM books WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, mapError(rows.Err())
}

// CountBooks returns the number of books across all users.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// UpdateBook saves every mutable field of book. The row must belong to
// book.UserID; otherwise store.ErrNotFound is returned.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = ?, title_fold = ?, author = ?, author_fold = ?, year = ?, isbn = ?,
			genre = ?, genre_fold = ?, description = ?, notes = ?, cover = ?, pages = ?,
			status = ?, rating = ?, progress = ?, start_date = ?, end_date = ?,
			recommend = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		book.Title,
		normalize.Fold(book.Title),
		book.Author,
		normalize.Fold(book.Author),
		nullInt(book.Year),
		nullString(book.ISBN),
		nullString(book.Genre),
		nullString(normalize.Fold(book.Genre)),
		nullString(book.Description),
		nullString(book.Notes),
		nullString(book.Cover),
		nullInt(book.Pages),
		string(book.Status),
		book.Rating,
		book.Progress,
		nullTimeString(book.StartDate),
		nullTimeString(book.EndDate),
		boolToInt(book.Recommend),
		formatTime(book.UpdatedAt),
		book.ID,
		book.UserID,
	)
	if err != nil {
		return mapError(err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	s.indexBook(ctx, book)
	return nil
}

// DeleteBook removes one of userID's books.
// Returns store.ErrNotFound if it does not exist or belongs to someone else.
func (s *Store) DeleteBook(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return mapError(err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if err := s.indexer().DeleteBook(ctx, id); err != nil {
		s.logger.Warn("failed to remove book from search index", "book_id", id, "error", err)
	}
	return nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, mapError(rows.Err())
}

// indexBook updates the search index. The index is derived data, so a
// failure is logged rather than failing the write.
func (s *Store) indexBook(ctx context.Context, book *domain.Book) {
	if err := s.indexer().IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

// buildBookWhere always scopes to userID, then adds one clause per filter kind.
func buildBookWhere(userID string, f store.BookFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(f.Status))
	}
	if g := strings.TrimSpace(f.Genre); g != "" {
		clauses = append(clauses, `genre_fold LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(g))
	}
	if f.MinRating != nil {
		clauses = append(clauses, "rating >= ?")
		args = append(args, *f.MinRating)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		pattern := likePattern(q)
		clauses = append(clauses, `(title_fold LIKE ? ESCAPE '\' OR author_fold LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	return strings.Join(clauses, " AND "), args
}

func likePattern(needle string) string {
	return "%" + normalize.EscapeLike(normalize.Fold(needle)) + "%"
}

// sortColumns maps API sort fields to columns. Text sorts use the folded
// copies so ordering ignores case.
var sortColumns = map[store.SortField]string{
	store.SortByCreatedAt: "created_at",
	store.SortByTitle:     "title_fold",
	store.SortByAuthor:    "author_fold",
	store.SortByRating:    "rating",
	store.SortByYear:      "year",
}

func buildBookOrder(f store.BookFilter) (string, error) {
	f = f.Normalized()
	col, ok := sortColumns[f.SortBy]
	if !ok {
		return "", store.ErrInvalidInput.WithCause(fmt.Errorf("unknown sort field %q", f.SortBy))
	}
	dir := "DESC"
	switch f.SortOrder {
	case store.SortAsc:
		dir = "ASC"
	case store.SortDesc:
	default:
		return "", store.ErrInvalidInput.WithCause(fmt.Errorf("unknown sort order %q", f.SortOrder))
	}
	// id breaks ties so pages of equal keys come back in a stable order.
	return col + " " + dir + ", id " + dir, nil
}
