package embedtrace

import "context"

// Fetcher retrieves HTML documents from URLs.
// Implementations may use plain HTTP or browser automation for
// JavaScript-rendered pages.
type Fetcher interface {
	// Fetch retrieves the HTML content of a URL.
	// The context controls timeout and cancellation. Non-HTML responses
	// and non-2xx statuses are errors; callers treat any error as
	// "no embeds for this article" and continue.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
