// Package store defines the persistence interface for the Bookshelf server.
package store

import (
	"context"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// Store defines every persistence operation. Book and goal operations take
// the owning user's id and never touch another user's rows.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error
	SetSearchIndexer(indexer SearchIndexer)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, userID, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, userID string, filter BookFilter) ([]*domain.Book, error)
	ListAllBooks(ctx context.Context, userID string) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, userID, id string) error
	ListBookIDs(ctx context.Context, userID string) ([]string, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	CountBooks(ctx context.Context) (int, error)

	// Reading goals
	GetGoal(ctx context.Context, userID string, year int) (*domain.ReadingGoal, error)
	UpsertGoal(ctx context.Context, goal *domain.ReadingGoal) error
	CountCompletedInYear(ctx context.Context, userID string, year int) (int, error)
}

// SearchIndexer keeps the full-text index in step with book writes.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation used when indexing is disabled.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }
func (NoopSearchIndexer) DeleteBook(context.Context, string) error      { return nil }

// NewNoopSearchIndexer creates a no-op search indexer.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
