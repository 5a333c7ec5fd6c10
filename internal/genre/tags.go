// Package genre splits free-form genre strings into tags.
//
// A book's genre is stored as the user typed it ("Fantasy, Classics").
// Everywhere the application reasons about genres (statistics,
// achievements, the search index) the string is treated as a comma
// separated list of tags.
package genre

import (
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
)

// Split returns the trimmed, non-empty tags of s with duplicates (compared
// case-insensitively) removed. The first spelling of each tag is kept.
func Split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		tag := normalize.Text(p)
		if tag == "" {
			continue
		}
		k := Key(tag)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Key returns the grouping key for a tag.
func Key(tag string) string {
	return normalize.Fold(normalize.Text(tag))
}

// Count is the number of books carrying a tag.
type Count struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Counter tallies tags across books, remembering the first spelling seen.
type Counter struct {
	order  []string
	labels map[string]string
	counts map[string]int
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{labels: map[string]string{}, counts: map[string]int{}}
}

// Add counts every tag of one book's genre string once.
func (c *Counter) Add(genreField string) {
	for _, tag := range Split(genreField) {
		k := Key(tag)
		if _, ok := c.labels[k]; !ok {
			c.labels[k] = tag
			c.order = append(c.order, k)
		}
		c.counts[k]++
	}
}

// Len returns the number of distinct tags seen.
func (c *Counter) Len() int {
	return len(c.order)
}

// Counts returns the tallies ordered by count descending, then label.
func (c *Counter) Counts() []Count {
	out := make([]Count, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Count{Genre: c.labels[k], Count: c.counts[k]})
	}
	sortCounts(out)
	return out
}
