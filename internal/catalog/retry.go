package catalog

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// parseRetryAfter reads a Retry-After header given either as seconds or as an
// HTTP date. Zero means the header was absent or unusable.
func parseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(header); err == nil {
		if until := when.Sub(now); until > 0 {
			return until
		}
	}

	return 0
}

// backoff is the wait before retry n (0-based) when the server gave no hint.
func backoff(base time.Duration, n uint) time.Duration {
	if n > 16 {
		n = 16
	}
	return base * time.Duration(1<<n)
}
