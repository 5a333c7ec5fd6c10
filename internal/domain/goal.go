package domain

import (
	"math"
	"time"
)

// Bounds on a yearly goal target.
const (
	MinGoalTarget = 1
	MaxGoalTarget = 365
)

// ReadingGoal is a user's target number of finished books for a year.
// There is at most one per user and year.
type ReadingGoal struct {
	Timestamps
	UserID string `json:"userId"`
	Year   int    `json:"year"`
	Target int    `json:"target"`
}

// GoalProgress reports how far a user is toward a year's goal.
type GoalProgress struct {
	Goal       int  `json:"goal"`
	Year       int  `json:"year"`
	Completed  int  `json:"completed"`
	Percentage int  `json:"percentage"`
	Pace       Pace `json:"pace"`
}

// Pace compares completed books with a linear schedule through the year.
type Pace struct {
	DaysPassed int  `json:"daysPassed"`
	DaysInYear int  `json:"daysInYear"`
	Expected   int  `json:"expected"`
	Remaining  int  `json:"remaining"`
	Ahead      bool `json:"ahead"`
}

// GoalPercentage is round(completed/target*100), or 0 for a zero target.
// It exceeds 100 once the goal is beaten.
func GoalPercentage(completed, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(target) * 100))
}

// ComputeGoalProgress builds the progress report for year as seen at now.
// A target of 0 means no goal is set.
func ComputeGoalProgress(target, year, completed int, now time.Time) GoalProgress {
	return GoalProgress{
		Goal:       target,
		Year:       year,
		Completed:  completed,
		Percentage: GoalPercentage(completed, target),
		Pace:       ComputePace(target, year, completed, now),
	}
}

// ComputePace assumes books are finished at an even rate over the year.
func ComputePace(target, year, completed int, now time.Time) Pace {
	days := DaysInYear(year)
	now = now.UTC()

	var passed int
	switch {
	case now.Year() > year:
		passed = days
	case now.Year() < year:
		passed = 0
	default:
		passed = now.YearDay()
	}

	expected := int(math.Round(float64(passed) / float64(days) * float64(target)))
	return Pace{
		DaysPassed: passed,
		DaysInYear: days,
		Expected:   expected,
		Remaining:  max(target-completed, 0),
		Ahead:      completed >= expected,
	}
}
