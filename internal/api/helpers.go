package api

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// clientInfo describes the caller for session tracking.
func clientInfo(ctx context.Context, userAgent string) service.ClientInfo {
	const maxUserAgent = 512
	userAgent = truncateUTF8(userAgent, maxUserAgent)
	return service.ClientInfo{
		IPAddress: getClientIP(ctx),
		UserAgent: userAgent,
	}
}

func pluralize(n uint64, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
