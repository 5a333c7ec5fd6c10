package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func TestGoalUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	if _, err := s.GetGoal(ctx, "user-1", 2025); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any goal, got %v", err)
	}

	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	goal := &domain.ReadingGoal{UserID: "user-1", Year: 2025, Target: 12}
	goal.InitTimestamps(created)
	if err := s.UpsertGoal(ctx, goal); err != nil {
		t.Fatalf("UpsertGoal: %v", err)
	}

	later := created.Add(48 * time.Hour)
	replacement := &domain.ReadingGoal{UserID: "user-1", Year: 2025, Target: 30}
	replacement.InitTimestamps(later)
	if err := s.UpsertGoal(ctx, replacement); err != nil {
		t.Fatalf("second UpsertGoal: %v", err)
	}
	if !replacement.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt after overwrite: got %v, want %v", replacement.CreatedAt, created)
	}

	got, err := s.GetGoal(ctx, "user-1", 2025)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if got.Target != 30 {
		t.Errorf("Target: got %d, want 30", got.Target)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, later)
	}

	if _, err := s.GetGoal(ctx, "user-1", 2024); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("other year: expected ErrNotFound, got %v", err)
	}
}

func TestUpsertGoal_UnknownUser(t *testing.T) {
	s := newTestStore(t)
	goal := &domain.ReadingGoal{UserID: "ghost", Year: 2025, Target: 5}
	goal.InitTimestamps(time.Now().UTC())

	if err := s.UpsertGoal(context.Background(), goal); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCountCompletedInYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")
	seedUser(t, s, "user-2")

	at := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	endedIn2025 := makeTestBook("ended-2025", "user-1", "A", "X")
	endedIn2025.Status = domain.StatusRead
	endedIn2025.EndDate = at(2025, time.December, 31)

	endedIn2024 := makeTestBook("ended-2024", "user-1", "B", "X")
	endedIn2024.Status = domain.StatusRead
	endedIn2024.EndDate = at(2024, time.December, 31)

	noEndDate := makeTestBook("no-end", "user-1", "C", "X")
	noEndDate.Status = domain.StatusRead
	noEndDate.InitTimestamps(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	favorite := makeTestBook("favorite", "user-1", "D", "X")
	favorite.Status = domain.StatusFavorite
	favorite.EndDate = at(2025, time.March, 3)

	reading := makeTestBook("reading", "user-1", "E", "X")
	reading.Status = domain.StatusReading
	reading.EndDate = at(2025, time.March, 3)

	otherUser := makeTestBook("other", "user-2", "F", "X")
	otherUser.Status = domain.StatusRead
	otherUser.EndDate = at(2025, time.March, 3)

	createBooks(t, s, endedIn2025, endedIn2024, noEndDate, favorite, reading, otherUser)

	for year, want := range map[int]int{2024: 1, 2025: 2, 2026: 0} {
		got, err := s.CountCompletedInYear(ctx, "user-1", year)
		if err != nil {
			t.Fatalf("CountCompletedInYear(%d): %v", year, err)
		}
		if got != want {
			t.Errorf("CountCompletedInYear(%d): got %d, want %d", year, got, want)
		}
	}
}
