package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 17, 15, 4, 5, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("DONE").Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("read").Valid())
}

func TestBook_ApplyDefaults(t *testing.T) {
	b := &Book{Title: "X", Author: "Y"}
	b.ApplyDefaults()

	assert.Equal(t, StatusWantToRead, b.Status)
	assert.Zero(t, b.Rating)
	assert.Zero(t, b.Progress)
}

func TestBook_SetProgress(t *testing.T) {
	tests := []struct {
		name       string
		book       Book
		progress   int
		wantStatus Status
		wantEnd    *time.Time
		wantValue  int
	}{
		{
			name:       "partial progress leaves status",
			book:       Book{Status: StatusReading},
			progress:   40,
			wantStatus: StatusReading,
			wantValue:  40,
		},
		{
			name:       "100 finishes the book today",
			book:       Book{Status: StatusReading, Progress: 90},
			progress:   100,
			wantStatus: StatusRead,
			wantEnd:    date(2025, 5, 17),
			wantValue:  100,
		},
		{
			name:       "existing end date is kept",
			book:       Book{Status: StatusReading, EndDate: date(2025, 1, 2)},
			progress:   100,
			wantStatus: StatusRead,
			wantEnd:    date(2025, 1, 2),
			wantValue:  100,
		},
		{
			name:       "favorite stays favorite",
			book:       Book{Status: StatusFavorite},
			progress:   100,
			wantStatus: StatusFavorite,
			wantEnd:    date(2025, 5, 17),
			wantValue:  100,
		},
		{
			name:       "clamped above 100",
			book:       Book{Status: StatusWantToRead},
			progress:   250,
			wantStatus: StatusRead,
			wantEnd:    date(2025, 5, 17),
			wantValue:  100,
		},
		{
			name:       "clamped below 0",
			book:       Book{Status: StatusReading, Progress: 10},
			progress:   -5,
			wantStatus: StatusReading,
			wantValue:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.book
			b.SetProgress(tt.progress, testNow)

			assert.Equal(t, tt.wantValue, b.Progress)
			assert.Equal(t, tt.wantStatus, b.Status)
			assert.Equal(t, tt.wantEnd, b.EndDate)
		})
	}
}

func TestBook_AddProgress(t *testing.T) {
	b := &Book{Status: StatusReading, Progress: 95}
	b.AddProgress(10, testNow)

	assert.Equal(t, 100, b.Progress)
	assert.Equal(t, StatusRead, b.Status)
	require.NotNil(t, b.EndDate)

	huge := &Book{Status: StatusReading, Progress: 10}
	huge.AddProgress(math.MaxInt, testNow)
	assert.Equal(t, 100, huge.Progress)

	huge.AddProgress(math.MinInt, testNow)
	assert.Equal(t, 0, huge.Progress)
}

func TestBook_Actions(t *testing.T) {
	b := &Book{Status: StatusWantToRead, Progress: 30}

	b.StartReading(testNow)
	assert.Equal(t, StatusReading, b.Status)
	assert.Zero(t, b.Progress)
	assert.Equal(t, date(2025, 5, 17), b.StartDate)

	b.MarkRead(testNow)
	assert.Equal(t, StatusRead, b.Status)
	assert.Equal(t, 100, b.Progress)
	assert.Equal(t, date(2025, 5, 17), b.EndDate)

	b.ToggleFavorite()
	assert.Equal(t, StatusFavorite, b.Status)
	b.ToggleFavorite()
	assert.Equal(t, StatusRead, b.Status)

	abandoned := &Book{Status: StatusAbandoned}
	abandoned.ToggleFavorite()
	assert.Equal(t, StatusFavorite, abandoned.Status)
}

func TestBook_CompletedIn(t *testing.T) {
	tests := []struct {
		name string
		book Book
		want bool
	}{
		{"read with end date in year", Book{Status: StatusRead, EndDate: date(2025, 12, 31)}, true},
		{"read with end date in other year", Book{Status: StatusRead, EndDate: date(2024, 12, 31)}, false},
		{"read without end date updated in year", Book{Status: StatusRead, Timestamps: Timestamps{UpdatedAt: testNow}}, true},
		{"read without end date updated earlier", Book{Status: StatusRead, Timestamps: Timestamps{UpdatedAt: testNow.AddDate(-1, 0, 0)}}, false},
		{"favorite does not count", Book{Status: StatusFavorite, EndDate: date(2025, 3, 1)}, false},
		{"reading does not count", Book{Status: StatusReading, EndDate: date(2025, 3, 1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.book.CompletedIn(2025))
		})
	}
}

func TestBook_Apply(t *testing.T) {
	b := &Book{
		Title:     "Old",
		Author:    "Author",
		Year:      ptr(1999),
		Genre:     "Fantasy",
		Notes:     "keep me",
		Status:    StatusReading,
		Progress:  50,
		Rating:    2,
		StartDate: date(2025, 1, 1),
	}

	b.Apply(BookPatch{
		Title:     ptr("New"),
		Year:      ptr(0),
		Genre:     ptr(""),
		Rating:    ptr(4),
		StartDate: &DatePatch{Clear: true},
		EndDate:   &DatePatch{Value: *date(2025, 2, 1)},
	}, testNow)

	assert.Equal(t, "New", b.Title)
	assert.Equal(t, "Author", b.Author)
	assert.Nil(t, b.Year)
	assert.Empty(t, b.Genre)
	assert.Equal(t, "keep me", b.Notes)
	assert.Equal(t, 4, b.Rating)
	assert.Equal(t, StatusReading, b.Status)
	assert.Equal(t, 50, b.Progress)
	assert.Nil(t, b.StartDate)
	assert.Equal(t, date(2025, 2, 1), b.EndDate)
	assert.Equal(t, testNow, b.UpdatedAt)
}

func TestBook_ApplyProgressCompletes(t *testing.T) {
	b := &Book{Status: StatusReading, Progress: 50}
	b.Apply(BookPatch{Progress: ptr(100)}, testNow)

	assert.Equal(t, StatusRead, b.Status)
	assert.Equal(t, date(2025, 5, 17), b.EndDate)
}

func TestBook_Tags(t *testing.T) {
	b := &Book{Genre: "Fantasy, , Classics"}
	assert.Equal(t, []string{"Fantasy", "Classics"}, b.Tags())
}
