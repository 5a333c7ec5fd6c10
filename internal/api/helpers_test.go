package api

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "curl/8.0", 512, "curl/8.0"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"rune boundary", "abé", 3, "ab"},
		{"cyrillic", "ДДД", 5, "ДД"},
		{"emoji", "x📚", 4, "x"},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestClientInfo_TruncatesUserAgentOnRuneBoundary(t *testing.T) {
	ua := strings.Repeat("a", 511) + "éé"

	info := clientInfo(t.Context(), ua)

	assert.Equal(t, strings.Repeat("a", 511), info.UserAgent)
	assert.True(t, utf8.ValidString(info.UserAgent))
}
