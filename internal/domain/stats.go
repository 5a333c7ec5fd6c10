package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

// MonthKeyLayout formats the month buckets of the statistics.
const MonthKeyLayout = "2006-01"

// LibraryStats summarises a user's library.
type LibraryStats struct {
	TotalBooks      int            `json:"totalBooks"`
	ReadBooks       int            `json:"readBooks"`
	ReadingBooks    int            `json:"readingBooks"`
	WantToReadBooks int            `json:"wantToReadBooks"`
	AvgRating       string         `json:"avgRating"`
	GenreStats      []genre.Count  `json:"genreStats"`
	MonthlyStats    map[string]int `json:"monthlyStats"`
}

// ComputeLibraryStats aggregates books. Ratings of 0 mean "unrated" and are
// left out of the average. Monthly buckets use the end date; books without
// one are not counted there.
func ComputeLibraryStats(books []*Book) LibraryStats {
	stats := LibraryStats{
		TotalBooks:   len(books),
		MonthlyStats: map[string]int{},
	}

	genres := genre.NewCounter()
	ratingSum, rated := 0, 0
	for _, b := range books {
		switch {
		case b.Status.IsFinished():
			stats.ReadBooks++
		case b.Status == StatusReading:
			stats.ReadingBooks++
		case b.Status == StatusWantToRead:
			stats.WantToReadBooks++
		}
		if b.Rating > 0 {
			ratingSum += b.Rating
			rated++
		}
		genres.Add(b.Genre)
		if b.EndDate != nil {
			stats.MonthlyStats[b.EndDate.UTC().Format(MonthKeyLayout)]++
		}
	}

	stats.AvgRating = "0.0"
	if rated > 0 {
		stats.AvgRating = formatOneDecimal(float64(ratingSum) / float64(rated))
	}
	stats.GenreStats = genres.Counts()
	return stats
}

// ExtendedStats are reading statistics over finished books.
type ExtendedStats struct {
	TotalPages          int         `json:"totalPages"`
	AvgPages            int         `json:"avgPages"`
	BooksThisYear       int         `json:"booksThisYear"`
	MostProductiveMonth string      `json:"mostProductiveMonth"`
	RatingDistribution  map[int]int `json:"ratingDistribution"`
	AvgDaysPerBook      int         `json:"avgDaysPerBook"`
	FavoriteAuthor      string      `json:"favoriteAuthor"`
	FavoriteAuthorBooks int         `json:"favoriteAuthorBooks"`
	UniqueGenres        int         `json:"uniqueGenres"`
}

// ComputeExtendedStats derives ExtendedStats as seen at now. Page and
// duration figures cover finished books only; reading durations outside
// (0, 365) days are treated as bad data and skipped. The most productive
// month and the favorite author look at the whole library.
func ComputeExtendedStats(books []*Book, now time.Time) ExtendedStats {
	stats := ExtendedStats{RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	year := now.UTC().Year()

	months := map[string]int{}
	authors := map[string]int{}
	genres := genre.NewCounter()
	finished, daySum, timed := 0, 0, 0

	for _, b := range books {
		authors[b.Author]++
		genres.Add(b.Genre)
		if b.EndDate != nil {
			months[b.EndDate.UTC().Format(MonthKeyLayout)]++
		}

		if !b.Status.IsFinished() {
			continue
		}
		finished++

		if b.Pages != nil && *b.Pages > 0 {
			stats.TotalPages += *b.Pages
		}
		if b.Rating >= 1 && b.Rating <= MaxRating {
			stats.RatingDistribution[b.Rating]++
		}

		finishedAt := b.UpdatedAt
		if b.EndDate != nil {
			finishedAt = *b.EndDate
		}
		if finishedAt.UTC().Year() == year {
			stats.BooksThisYear++
		}

		if b.StartDate != nil && b.EndDate != nil {
			days := int(math.Ceil(b.EndDate.Sub(*b.StartDate).Hours() / 24))
			if days > 0 && days < 365 {
				daySum += days
				timed++
			}
		}
	}

	if finished > 0 {
		stats.AvgPages = int(math.Round(float64(stats.TotalPages) / float64(finished)))
	}
	if timed > 0 {
		stats.AvgDaysPerBook = int(math.Round(float64(daySum) / float64(timed)))
	}
	stats.MostProductiveMonth = topKey(months)
	stats.FavoriteAuthor = topKey(authors)
	stats.FavoriteAuthorBooks = authors[stats.FavoriteAuthor]
	stats.UniqueGenres = genres.Len()
	return stats
}

// topKey returns the key with the highest count; ties go to the smallest key.
func topKey(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys[0]
}

// formatOneDecimal rounds half away from zero before formatting, so 4.25
// renders as "4.3" rather than the banker's "4.2".
func formatOneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", math.Round(v*10)/10)
}
