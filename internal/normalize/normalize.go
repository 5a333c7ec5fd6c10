// Package normalize provides utilities for normalizing user and catalog text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case-folded NFC form of s, suitable for case-insensitive
// comparison and substring matching of non-ASCII text ("Толстой" and
// "ТОЛСТОЙ" fold to the same string).
func Fold(s string) string {
	// cases.Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(norm.NFC.String(s))
}

// Text trims s and collapses internal runs of whitespace to single spaces.
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ISBN strips separators from an ISBN and upper-cases a trailing check "x".
// It returns "" when the result is not 10 or 13 characters of digits, with
// an optional final X for ISBN-10.
func ISBN(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '-' || unicode.IsSpace(r):
			continue
		case r == 'x':
			b.WriteRune('X')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()

	switch len(out) {
	case 10:
		for i, r := range out {
			if r == 'X' && i == 9 {
				continue
			}
			if r < '0' || r > '9' {
				return ""
			}
		}
	case 13:
		for _, r := range out {
			if r < '0' || r > '9' {
				return ""
			}
		}
	default:
		return ""
	}
	return out
}

// EscapeLike escapes the SQL LIKE wildcards in s using backslash as the
// escape character.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
