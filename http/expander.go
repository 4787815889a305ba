package http

import (
	"context"
	"net/http"
	"time"

	"github.com/kmichalik/embedtrace"
)

// DefaultExpandTimeout is the default timeout for short-link expansion.
// Expansion happens once per candidate during detection, so it gets a
// tighter budget than the article fetch.
const DefaultExpandTimeout = 10 * time.Second

// Ensure Expander implements embedtrace.URLExpander at compile time.
var _ embedtrace.URLExpander = (*Expander)(nil)

// Expander resolves short links (vm.tiktok.com, vt.tiktok.com) to their
// final destination by following redirects. Results are memoized through an
// optional cache since articles frequently repeat the same short link.
type Expander struct {
	client *http.Client
	cache  embedtrace.Cache
}

// ExpanderOption configures an Expander.
type ExpanderOption func(*Expander)

// WithExpandTimeout sets the timeout for expansion requests.
// Defaults to DefaultExpandTimeout (10s) if not specified.
func WithExpandTimeout(d time.Duration) ExpanderOption {
	return func(e *Expander) {
		e.client.Timeout = d
	}
}

// WithExpandCache memoizes expansions through the given cache.
func WithExpandCache(cache embedtrace.Cache) ExpanderOption {
	return func(e *Expander) {
		e.cache = cache
	}
}

// NewExpander creates an Expander.
func NewExpander(opts ...ExpanderOption) *Expander {
	e := &Expander{
		client: &http.Client{
			Timeout: DefaultExpandTimeout,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand follows redirects from shortURL and returns the final URL.
func (e *Expander) Expand(ctx context.Context, shortURL string) (string, error) {
	if e.cache != nil {
		if finalURL, ok := e.cache.Get(shortURL); ok {
			return finalURL, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, shortURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", embedtrace.Errorf(embedtrace.EUNAVAILABLE, "HTTP %d expanding %s", resp.StatusCode, shortURL)
	}

	finalURL := resp.Request.URL.String()
	if e.cache != nil {
		e.cache.Set(shortURL, finalURL)
	}
	return finalURL, nil
}
