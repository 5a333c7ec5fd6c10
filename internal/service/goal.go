package service

import (
	"context"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// GoalService tracks yearly reading goals.
type GoalService struct {
	store     store.Store
	validator *validation.Validator
	now       Clock
	logger    *slog.Logger
}

// NewGoalService creates a new goal service.
func NewGoalService(store store.Store, logger *slog.Logger) *GoalService {
	return &GoalService{
		store:     store,
		validator: validation.New(),
		now:       systemClock,
		logger:    logger,
	}
}

// SetGoalRequest sets the target for a year. A missing or non-positive year
// means the current one.
type SetGoalRequest struct {
	Target int  `json:"target" validate:"gte=1,lte=365"`
	Year   *int `json:"year,omitempty" validate:"omitempty,lte=9999"`
}

// GetProgress reports userID's progress for year (0 means the current year).
// A year without a goal reports a goal of 0.
func (s *GoalService) GetProgress(ctx context.Context, userID string, year int) (*domain.GoalProgress, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if err := s.validator.Var("year", year, "gte=1,lte=9999"); err != nil {
		return nil, err
	}

	target := 0
	goal, err := s.store.GetGoal(ctx, userID, year)
	switch {
	case err == nil:
		target = goal.Target
	case isNotFound(err):
	default:
		return nil, storeError(err, "get goal", "goal not found")
	}

	completed, err := s.store.CountCompletedInYear(ctx, userID, year)
	if err != nil {
		return nil, storeError(err, "count completed books", "")
	}

	progress := domain.ComputeGoalProgress(target, year, completed, now)
	return &progress, nil
}

// SetGoal creates or replaces userID's goal for the year.
func (s *GoalService) SetGoal(ctx context.Context, userID string, req SetGoalRequest) (*domain.ReadingGoal, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	year := now.Year()
	if req.Year != nil && *req.Year > 0 {
		year = *req.Year
	}

	goal := &domain.ReadingGoal{UserID: userID, Year: year, Target: req.Target}
	goal.InitTimestamps(now)
	if err := s.store.UpsertGoal(ctx, goal); err != nil {
		return nil, storeError(err, "save goal", "user not found")
	}

	s.logger.Info("reading goal set", "user_id", userID, "year", year, "target", req.Target)
	return goal, nil
}
