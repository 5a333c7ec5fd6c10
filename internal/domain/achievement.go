package domain

// Achievement is a milestone unlocked by the size or variety of a library.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
}

type achievementRule struct {
	id, title, description string
	target                 int
	metric                 func(LibraryStats, int) int
}

func totalBooks(s LibraryStats, _ int) int   { return s.TotalBooks }
func finishedBooks(s LibraryStats, _ int) int { return s.ReadBooks }
func genreTags(_ LibraryStats, tags int) int  { return tags }

var achievementRules = []achievementRule{
	{"first-book", "Newcomer", "Add your first book", 1, totalBooks},
	{"bookworm", "Collector", "Have 10 books in your library", 10, totalBooks},
	{"library-keeper", "Librarian", "Have 50 books in your library", 50, totalBooks},
	{"first-finish", "Reader", "Finish your first book", 1, finishedBooks},
	{"avid-reader", "Book lover", "Finish 10 books", 10, finishedBooks},
	{"master-reader", "Bookworm", "Finish 50 books", 50, finishedBooks},
	{"versatile", "Versatile", "Collect books from 5 different genres", 5, genreTags},
}

// ComputeAchievements evaluates every achievement against the library.
// Progress is capped at the target.
func ComputeAchievements(stats LibraryStats) []Achievement {
	tags := len(stats.GenreStats)
	out := make([]Achievement, 0, len(achievementRules))
	for _, r := range achievementRules {
		value := r.metric(stats, tags)
		out = append(out, Achievement{
			ID:          r.id,
			Title:       r.title,
			Description: r.description,
			Unlocked:    value >= r.target,
			Progress:    min(value, r.target),
			Target:      r.target,
		})
	}
	return out
}
