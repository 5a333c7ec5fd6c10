package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/stats",
		Summary:     "Library statistics",
		Description: "Counts by status, average rating, genre tags and books finished per month",
		Tags:        []string{"Stats"},
		Security:    protected,
	}, s.handleGetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getExtendedStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/stats/extended",
		Summary:     "Extended statistics",
		Description: "Pages read, reading speed, rating distribution and favorite author",
		Tags:        []string{"Stats"},
		Security:    protected,
	}, s.handleGetExtendedStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAchievements",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/achievements",
		Summary:     "Achievements",
		Description: "Returns the fixed achievement catalog with the caller's progress",
		Tags:        []string{"Stats"},
		Security:    protected,
	}, s.handleGetAchievements)
}

// StatsOutput wraps library statistics for Huma.
type StatsOutput struct {
	Body *domain.LibraryStats
}

// ExtendedStatsOutput wraps extended statistics for Huma.
type ExtendedStatsOutput struct {
	Body *domain.ExtendedStats
}

// AchievementsOutput wraps the achievement list for Huma.
type AchievementsOutput struct {
	Body []domain.Achievement
}

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: stats}, nil
}

func (s *Server) handleGetExtendedStats(ctx context.Context, _ *struct{}) (*ExtendedStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetExtendedStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ExtendedStatsOutput{Body: stats}, nil
}

func (s *Server) handleGetAchievements(ctx context.Context, _ *struct{}) (*AchievementsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	achievements, err := s.services.Stats.GetAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AchievementsOutput{Body: achievements}, nil
}
