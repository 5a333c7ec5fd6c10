// Package catalog looks up book metadata in public catalogs to pre-fill new
// library entries. Providers live in subpackages; Client combines them.
package catalog

import (
	"context"
	"errors"
	"regexp"
	"strconv"
)

// UnknownAuthor is used when a catalog record names no author.
const UnknownAuthor = "Unknown author"

var (
	// ErrUpstream means a catalog could not be reached or answered badly.
	ErrUpstream = errors.New("catalog unavailable")
	// ErrInvalidISBN means the ISBN is not 10 or 13 digits (X allowed last).
	ErrInvalidISBN = errors.New("invalid ISBN")
)

// Result is one candidate record. Fields a catalog does not provide are null.
type Result struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Year        *int    `json:"year"`
	ISBN        *string `json:"isbn"`
	Cover       *string `json:"cover"`
	Genre       *string `json:"genre"`
	Pages       *int    `json:"pages"`
	Description *string `json:"description"`
}

// Provider is a single catalog backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]Result, error)
	LookupISBN(ctx context.Context, isbn string) ([]Result, error)
}

// StringPtr returns nil for "" and &s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns nil for values <= 0 and &n otherwise.
func IntPtr(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// FirstOr returns the first non-empty element of values, or fallback.
func FirstOr(values []string, fallback string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return fallback
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// YearFromDate extracts the first four-digit run from a free-form date such
// as "March 1965" or "1965-08-01".
func YearFromDate(s string) *int {
	m := yearPattern.FindString(s)
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil || y == 0 {
		return nil
	}
	return &y
}
