package sqlite

import (
	"context"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// GetGoal returns userID's goal for year, or store.ErrNotFound.
func (s *Store) GetGoal(ctx context.Context, userID string, year int) (*domain.ReadingGoal, error) {
	var (
		g                    = domain.ReadingGoal{UserID: userID, Year: year}
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT target, created_at, updated_at FROM reading_goals
		WHERE user_id = ? AND year = ?`, userID, year,
	).Scan(&g.Target, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpsertGoal creates the goal for (UserID, Year) or overwrites its target.
// On return goal.CreatedAt holds the stored creation time.
func (s *Store) UpsertGoal(ctx context.Context, goal *domain.ReadingGoal) error {
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reading_goals (user_id, year, target, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, year) DO UPDATE SET
			target = excluded.target,
			updated_at = excluded.updated_at
		RETURNING created_at`,
		goal.UserID,
		goal.Year,
		goal.Target,
		formatTime(goal.CreatedAt),
		formatTime(goal.UpdatedAt),
	).Scan(&createdAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return mapError(err)
	}

	goal.CreatedAt, err = parseTime(createdAt)
	return err
}

// CountCompletedInYear counts userID's READ books finished in year: the end
// date falls in the year, or there is no end date and the book was last
// updated in the year.
func (s *Store) CountCompletedInYear(ctx context.Context, userID string, year int) (int, error) {
	start := formatTime(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	end := formatTime(time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC))

	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM books
		WHERE user_id = ? AND status = ?
		  AND (
		    (end_date IS NOT NULL AND end_date >= ? AND end_date < ?)
		    OR (end_date IS NULL AND updated_at >= ? AND updated_at < ?)
		  )`,
		userID, string(domain.StatusRead), start, end, start, end,
	).Scan(&n)
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
