package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

var bookClock = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// makeTestBook creates a book for userID. Each call gets a later CreatedAt
// so default ordering is deterministic.
func makeTestBook(id, userID, title, author string) *domain.Book {
	bookClock = bookClock.Add(time.Second)
	b := &domain.Book{
		ID:     id,
		UserID: userID,
		Title:  title,
		Author: author,
	}
	b.ApplyDefaults()
	b.InitTimestamps(bookClock)
	return b
}

func createBooks(t *testing.T, s *Store, books ...*domain.Book) {
	t.Helper()
	for _, b := range books {
		if err := s.CreateBook(context.Background(), b); err != nil {
			t.Fatalf("CreateBook(%s): %v", b.ID, err)
		}
	}
}

func bookIDs(books []*domain.Book) []string {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intp(n int) *int { return &n }

type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
	err     error
}

func (r *recordingIndexer) IndexBook(_ context.Context, b *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, b.ID)
	return r.err
}

func (r *recordingIndexer) DeleteBook(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return r.err
}

func TestCreateAndGetBook_AllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)
	b := makeTestBook("book-1", "user-1", "Dune", "Frank Herbert")
	b.Year = intp(1965)
	b.ISBN = "9780441013593"
	b.Genre = "Sci-Fi, Classic"
	b.Description = "Spice."
	b.Notes = "Reread"
	b.Cover = "https://covers.example/dune.jpg"
	b.Pages = intp(412)
	b.Status = domain.StatusFavorite
	b.Rating = 5
	b.Progress = 100
	b.StartDate = &start
	b.EndDate = &end
	b.Recommend = true
	createBooks(t, s, b)

	got, err := s.GetBook(ctx, "user-1", "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" || got.Author != "Frank Herbert" || got.Genre != "Sci-Fi, Classic" {
		t.Errorf("text fields: %+v", got)
	}
	if got.Year == nil || *got.Year != 1965 || got.Pages == nil || *got.Pages != 412 {
		t.Errorf("numeric fields: year=%v pages=%v", got.Year, got.Pages)
	}
	if got.Status != domain.StatusFavorite || got.Rating != 5 || got.Progress != 100 || !got.Recommend {
		t.Errorf("reading fields: %+v", got)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) || got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("dates: start=%v end=%v", got.StartDate, got.EndDate)
	}
	if !got.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, b.CreatedAt)
	}
}

func TestCreateBook_OptionalFieldsStayEmpty(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-1")
	createBooks(t, s, makeTestBook("book-1", "user-1", "Untitled", "Anon"))

	got, err := s.GetBook(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Year != nil || got.Pages != nil || got.StartDate != nil || got.EndDate != nil {
		t.Errorf("expected nil optionals, got %+v", got)
	}
	if got.Status != domain.StatusWantToRead {
		t.Errorf("Status: got %s, want WANT_TO_READ", got.Status)
	}
}

func TestBooksAreScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")
	createBooks(t, s, makeTestBook("book-1", "alice", "Emma", "Jane Austen"))

	if _, err := s.GetBook(ctx, "bob", "book-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetBook as other user: expected ErrNotFound, got %v", err)
	}

	stolen := makeTestBook("book-1", "bob", "Hijacked", "Bob")
	if err := s.UpdateBook(ctx, stolen); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateBook as other user: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteBook(ctx, "bob", "book-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteBook as other user: expected ErrNotFound, got %v", err)
	}

	bobs, err := s.ListBooks(ctx, "bob", store.BookFilter{})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(bobs) != 0 {
		t.Errorf("bob sees %d books, want 0", len(bobs))
	}

	got, err := s.GetBook(ctx, "alice", "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Emma" {
		t.Errorf("Title changed to %q", got.Title)
	}
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")
	b := makeTestBook("book-1", "user-1", "Old Title", "Author")
	b.Pages = intp(100)
	createBooks(t, s, b)

	b.Title = "New Title"
	b.Pages = nil
	b.Status = domain.StatusReading
	b.Progress = 40
	b.Touch(b.UpdatedAt.Add(time.Hour))
	if err := s.UpdateBook(ctx, b); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	got, err := s.GetBook(ctx, "user-1", "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "New Title" || got.Pages != nil || got.Progress != 40 || got.Status != domain.StatusReading {
		t.Errorf("unexpected book after update: %+v", got)
	}
	if !got.UpdatedAt.Equal(b.UpdatedAt) {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, b.UpdatedAt)
	}

	// The title filter uses the refreshed folded column.
	found, err := s.ListBooks(ctx, "user-1", store.BookFilter{Search: "new title"})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("search after rename: got %d books, want 1", len(found))
	}
}

func TestDeleteBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")
	createBooks(t, s, makeTestBook("book-1", "user-1", "Gone", "Soon"))

	if err := s.DeleteBook(ctx, "user-1", "book-1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, err := s.GetBook(ctx, "user-1", "book-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteBook(ctx, "user-1", "book-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListBooks_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	war := makeTestBook("war", "user-1", "Война и мир", "Лев Толстой")
	war.Genre = "Роман, Классика"
	war.Status = domain.StatusRead
	war.Rating = 5

	dune := makeTestBook("dune", "user-1", "Dune", "Frank Herbert")
	dune.Genre = "Sci-Fi"
	dune.Status = domain.StatusReading
	dune.Rating = 4

	emma := makeTestBook("emma", "user-1", "Emma", "Jane Austen")
	emma.Genre = "Romance, Classic"
	emma.Status = domain.StatusRead
	emma.Rating = 3

	pct := makeTestBook("pct", "user-1", "100% Coverage", "Test_Author")
	createBooks(t, s, war, dune, emma, pct)

	tests := []struct {
		name   string
		filter store.BookFilter
		want   []string
	}{
		{"no filter newest first", store.BookFilter{}, []string{"pct", "emma", "dune", "war"}},
		{"status", store.BookFilter{Status: domain.StatusRead}, []string{"emma", "war"}},
		{"genre substring any case", store.BookFilter{Genre: "CLASSIC"}, []string{"emma"}},
		{"cyrillic genre", store.BookFilter{Genre: "классика"}, []string{"war"}},
		{"min rating inclusive", store.BookFilter{MinRating: intp(4)}, []string{"dune", "war"}},
		{"search title", store.BookFilter{Search: "dUNE"}, []string{"dune"}},
		{"search author", store.BookFilter{Search: "austen"}, []string{"emma"}},
		{"cyrillic search", store.BookFilter{Search: "ТОЛСТОЙ"}, []string{"war"}},
		{"percent is literal", store.BookFilter{Search: "100%"}, []string{"pct"}},
		{"underscore is literal", store.BookFilter{Search: "t_a"}, []string{"pct"}},
		{"combined", store.BookFilter{Status: domain.StatusRead, MinRating: intp(4)}, []string{"war"}},
		{"no match", store.BookFilter{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListBooks(ctx, "user-1", tt.filter)
			if err != nil {
				t.Fatalf("ListBooks: %v", err)
			}
			if ids := bookIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestListBooks_Sorting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	a := makeTestBook("a", "user-1", "banana", "Zed")
	a.Rating = 2
	a.Year = intp(2001)
	b := makeTestBook("b", "user-1", "Apple", "young")
	b.Rating = 5
	b.Year = intp(1999)
	c := makeTestBook("c", "user-1", "cherry", "Adams")
	c.Rating = 2
	c.Year = intp(2010)
	createBooks(t, s, a, b, c)

	tests := []struct {
		by    store.SortField
		order store.SortOrder
		want  []string
	}{
		{store.SortByTitle, store.SortAsc, []string{"b", "a", "c"}},
		{store.SortByTitle, store.SortDesc, []string{"c", "a", "b"}},
		{store.SortByAuthor, store.SortAsc, []string{"c", "b", "a"}},
		{store.SortByRating, store.SortDesc, []string{"b", "c", "a"}},
		{store.SortByYear, store.SortAsc, []string{"b", "a", "c"}},
		{store.SortByCreatedAt, store.SortAsc, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.by, tt.order), func(t *testing.T) {
			got, err := s.ListBooks(ctx, "user-1", store.BookFilter{SortBy: tt.by, SortOrder: tt.order})
			if err != nil {
				t.Fatalf("ListBooks: %v", err)
			}
			if ids := bookIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestListBooks_UnknownSort(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListBooks(context.Background(), "user-1", store.BookFilter{SortBy: "pages"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListBookIDsAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")
	createBooks(t, s,
		makeTestBook("a1", "alice", "One", "X"),
		makeTestBook("a2", "alice", "Two", "X"),
		makeTestBook("b1", "bob", "Three", "Y"),
	)

	ids, err := s.ListBookIDs(ctx, "alice")
	if err != nil {
		t.Fatalf("ListBookIDs: %v", err)
	}
	if !equalIDs(ids, []string{"a1", "a2"}) {
		t.Errorf("ids: got %v", ids)
	}

	n, err := s.CountBooks(ctx)
	if err != nil {
		t.Fatalf("CountBooks: %v", err)
	}
	if n != 3 {
		t.Errorf("CountBooks: got %d, want 3", n)
	}

	all, err := s.ListAllBooks(ctx, "bob")
	if err != nil {
		t.Fatalf("ListAllBooks: %v", err)
	}
	if !equalIDs(bookIDs(all), []string{"b1"}) {
		t.Errorf("ListAllBooks: got %v", bookIDs(all))
	}
}

func TestSearchIndexerHooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	idx := &recordingIndexer{}
	s.SetSearchIndexer(idx)

	b := makeTestBook("book-1", "user-1", "Indexed", "Writer")
	createBooks(t, s, b)
	b.Notes = "updated"
	if err := s.UpdateBook(ctx, b); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if err := s.DeleteBook(ctx, "user-1", "book-1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	if !equalIDs(idx.indexed, []string{"book-1", "book-1"}) {
		t.Errorf("indexed: got %v", idx.indexed)
	}
	if !equalIDs(idx.deleted, []string{"book-1"}) {
		t.Errorf("deleted: got %v", idx.deleted)
	}
}

func TestSearchIndexerFailureDoesNotFailWrite(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-1")
	s.SetSearchIndexer(&recordingIndexer{err: errors.New("index offline")})

	createBooks(t, s, makeTestBook("book-1", "user-1", "Still Saved", "Writer"))
	if _, err := s.GetBook(context.Background(), "user-1", "book-1"); err != nil {
		t.Fatalf("GetBook: %v", err)
	}
}
