package service

import (
	"context"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// StatsService computes read-only aggregates over a user's library. Each
// call loads the library afresh.
type StatsService struct {
	store  store.Store
	now    Clock
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		now:    systemClock,
		logger: logger,
	}
}

// GetStats returns the library summary.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*domain.LibraryStats, error) {
	books, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := domain.ComputeLibraryStats(books)
	return &stats, nil
}

// GetExtendedStats returns reading statistics as of now.
func (s *StatsService) GetExtendedStats(ctx context.Context, userID string) (*domain.ExtendedStats, error) {
	books, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := domain.ComputeExtendedStats(books, s.now())
	return &stats, nil
}

// GetAchievements evaluates every achievement for userID.
func (s *StatsService) GetAchievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	books, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.ComputeAchievements(domain.ComputeLibraryStats(books)), nil
}

func (s *StatsService) load(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListAllBooks(ctx, userID)
	if err != nil {
		return nil, storeError(err, "list books", msgBookNotFound)
	}
	s.logger.Debug("computing stats", "user_id", userID, "books", len(books))
	return books, nil
}
