package domain

import (
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

// Status is the reading state of a book.
type Status string

// Reading states.
const (
	StatusWantToRead Status = "WANT_TO_READ"
	StatusReading    Status = "READING"
	StatusRead       Status = "READ"
	StatusFavorite   Status = "FAVORITE"
	StatusAbandoned  Status = "ABANDONED"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusWantToRead, StatusReading, StatusRead, StatusFavorite, StatusAbandoned}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusRead, StatusFavorite, StatusAbandoned:
		return true
	default:
		return false
	}
}

// IsFinished reports whether a book in this status counts as read.
// Favorites are books the user has read and marked.
func (s Status) IsFinished() bool {
	return s == StatusRead || s == StatusFavorite
}

// Limits on book fields.
const (
	MaxRating   = 5
	MaxProgress = 100
)

// Book is an entry in a user's library.
type Book struct {
	Timestamps
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Year        *int       `json:"year,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	Genre       string     `json:"genre,omitempty"`
	Description string     `json:"description,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Cover       string     `json:"cover,omitempty"`
	Pages       *int       `json:"pages,omitempty"`
	Status      Status     `json:"status"`
	Rating      int        `json:"rating"`
	Progress    int        `json:"progress"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Recommend   bool       `json:"recommend"`
}

// ApplyDefaults fills the fields a new book gets when the caller leaves them unset.
func (b *Book) ApplyDefaults() {
	if b.Status == "" {
		b.Status = StatusWantToRead
	}
}

// Tags returns the book's genre tags.
func (b *Book) Tags() []string {
	return genre.Split(b.Genre)
}

// SetProgress sets progress, clamped to 0..100. Reaching 100 finishes the
// book: an unfinished book becomes READ and gets an end date of today when
// it has none.
func (b *Book) SetProgress(progress int, now time.Time) {
	b.Progress = min(max(progress, 0), MaxProgress)
	b.enforceCompletion(now)
}

// AddProgress moves progress by delta, clamped to 0..100.
func (b *Book) AddProgress(delta int, now time.Time) {
	delta = max(-MaxProgress, min(delta, MaxProgress))
	b.SetProgress(b.Progress+delta, now)
}

func (b *Book) enforceCompletion(now time.Time) {
	if b.Progress < MaxProgress {
		return
	}
	if !b.Status.IsFinished() {
		b.Status = StatusRead
	}
	if b.EndDate == nil {
		today := Today(now)
		b.EndDate = &today
	}
}

// StartReading moves the book to READING from the beginning.
func (b *Book) StartReading(now time.Time) {
	today := Today(now)
	b.Status = StatusReading
	b.Progress = 0
	b.StartDate = &today
}

// MarkRead finishes the book today.
func (b *Book) MarkRead(now time.Time) {
	today := Today(now)
	b.Status = StatusRead
	b.Progress = MaxProgress
	b.EndDate = &today
}

// ToggleFavorite flips between FAVORITE and READ. Any other status becomes FAVORITE.
func (b *Book) ToggleFavorite() {
	if b.Status == StatusFavorite {
		b.Status = StatusRead
		return
	}
	b.Status = StatusFavorite
}

// CompletedIn reports whether the book counts toward the reading goal for
// year: status READ with an end date in that year, or with no end date and
// a last update in that year.
func (b *Book) CompletedIn(year int) bool {
	if b.Status != StatusRead {
		return false
	}
	if b.EndDate != nil {
		return b.EndDate.UTC().Year() == year
	}
	return b.UpdatedAt.UTC().Year() == year
}

// DatePatch is the patch value of a nullable date: Clear unsets it,
// otherwise it is set to Value.
type DatePatch struct {
	Value time.Time
	Clear bool
}

// BookPatch is a partial update. Nil fields keep the existing value.
// String fields are cleared with "" and Year/Pages with 0.
type BookPatch struct {
	Title       *string
	Author      *string
	Year        *int
	ISBN        *string
	Genre       *string
	Description *string
	Notes       *string
	Cover       *string
	Pages       *int
	Status      *Status
	Rating      *int
	Progress    *int
	StartDate   *DatePatch
	EndDate     *DatePatch
	Recommend   *bool
}

// Apply merges p into b. A progress value in the patch goes through
// SetProgress so reaching 100 finishes the book.
func (b *Book) Apply(p BookPatch, now time.Time) {
	setString(&b.Title, p.Title)
	setString(&b.Author, p.Author)
	setString(&b.ISBN, p.ISBN)
	setString(&b.Genre, p.Genre)
	setString(&b.Description, p.Description)
	setString(&b.Notes, p.Notes)
	setString(&b.Cover, p.Cover)
	setOptionalInt(&b.Year, p.Year)
	setOptionalInt(&b.Pages, p.Pages)
	setDate(&b.StartDate, p.StartDate)
	setDate(&b.EndDate, p.EndDate)

	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	if p.Recommend != nil {
		b.Recommend = *p.Recommend
	}
	if p.Progress != nil {
		b.SetProgress(*p.Progress, now)
	}
	b.Touch(now)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setOptionalInt(dst **int, v *int) {
	switch {
	case v == nil:
	case *v == 0:
		*dst = nil
	default:
		n := *v
		*dst = &n
	}
}

func setDate(dst **time.Time, v *DatePatch) {
	switch {
	case v == nil:
	case v.Clear:
		*dst = nil
	default:
		t := v.Value.UTC()
		*dst = &t
	}
}
