package scan

import (
	"context"
	"time"
)

// FetchFunc fetches an article page and returns its HTML.
type FetchFunc func(ctx context.Context, url string) (string, error)

// LogFunc receives progress lines while articles are being fetched.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the waits between article fetch attempts.
// Publisher sites and CDNs fail transiently under load, so a failed
// fetch backs off at 1s, 2s, 4s before the article is given up on.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry fetches an article page, retrying failures with the
// default backoff delays.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger LogFunc) (string, error) {
	return FetchWithRetryDelays(ctx, url, fetch, logger, DefaultRetryDelays())
}

// FetchWithRetryDelays fetches an article page, making one attempt per
// entry in delays plus the initial one. Every failure is treated as
// retryable; the last error is returned once the delays are exhausted.
// Tests pass zero delays so retries do not sleep.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger LogFunc, delays []time.Duration) (string, error) {
	attempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if logger != nil {
			logger("  retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
