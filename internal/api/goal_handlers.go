package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerGoalRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGoalProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/goals",
		Summary:     "Reading goal progress",
		Description: "Returns the goal, books completed and pace for a year. A year without a goal reports a goal of 0.",
		Tags:        []string{"Goals"},
		Security:    protected,
	}, s.handleGetGoalProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "setGoal",
		Method:      http.MethodPost,
		Path:        "/api/v1/goals",
		Summary:     "Set reading goal",
		Description: "Creates or replaces the goal for a year (default: the current year)",
		Tags:        []string{"Goals"},
		Security:    protected,
	}, s.handleSetGoal)
}

// GoalProgressInput selects the goal year.
type GoalProgressInput struct {
	Year int `query:"year" doc:"Goal year (default: current year)"`
}

// GoalProgressOutput wraps goal progress for Huma.
type GoalProgressOutput struct {
	Body *domain.GoalProgress
}

// SetGoalRequest is the request body for setting a goal.
type SetGoalRequest struct {
	Target int  `json:"target" required:"false" doc:"Books to finish, 1 to 365"`
	Year   *int `json:"year,omitempty" doc:"Goal year (default: current year)"`
}

// SetGoalInput wraps the set goal request for Huma.
type SetGoalInput struct {
	Body SetGoalRequest
}

// GoalOutput wraps a stored goal for Huma.
type GoalOutput struct {
	Body *domain.ReadingGoal
}

func (s *Server) handleGetGoalProgress(ctx context.Context, input *GoalProgressInput) (*GoalProgressOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.services.Goal.GetProgress(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}

	return &GoalProgressOutput{Body: progress}, nil
}

func (s *Server) handleSetGoal(ctx context.Context, input *SetGoalInput) (*GoalOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.services.Goal.SetGoal(ctx, userID, service.SetGoalRequest{
		Target: input.Body.Target,
		Year:   input.Body.Year,
	})
	if err != nil {
		return nil, err
	}

	return &GoalOutput{Body: goal}, nil
}
