package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedUser creates a user the tests can hang books, goals and sessions off.
func seedUser(t *testing.T, s *Store, id string) *domain.User {
	t.Helper()
	u := makeTestUser(id, id+"@example.com")
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", id, err)
	}
	return u
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// foreign_keys is per connection; check it on more than one.
	for range 3 {
		var fk int
		if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("query foreign_keys: %v", err)
		}
		if fk != 1 {
			t.Errorf("expected foreign_keys=1, got %d", fk)
		}
	}

	for _, table := range []string{"users", "sessions", "books", "reading_goals"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	s2.Close()
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := newTestStore(t)
	s.Close()

	err := s.Ping(context.Background())
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("Ping after close: expected ErrUnavailable, got %v", err)
	}
	_, err = s.ListAllBooks(context.Background(), "user-1")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("ListAllBooks after close: expected ErrUnavailable, got %v", err)
	}
}

func TestTimeFormatOrdersAsText(t *testing.T) {
	early := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	late := early.Add(time.Nanosecond * 10)
	if !(formatTime(early) < formatTime(late)) {
		t.Errorf("expected %s < %s", formatTime(early), formatTime(late))
	}

	parsed, err := parseTime(formatTime(late))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !parsed.Equal(late) {
		t.Errorf("round trip: got %v, want %v", parsed, late)
	}
}
