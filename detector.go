package embedtrace

import "context"

// Detector recognizes one platform's post URLs inside article HTML.
// Implementations encode a single platform's URL grammar and quirks.
type Detector interface {
	// Name returns the platform this detector recognizes.
	Name() Platform

	// DetectEmbeds scans an HTML fragment for candidate post URLs.
	// It inspects anchor hrefs, platform embed markup (blockquotes, divs,
	// iframes), and the raw text of the fragment. Results are deduplicated
	// by raw string; enumeration order is not significant. A single
	// malformed candidate never aborts the scan. The context bounds any
	// network-backed resolution steps (e.g. short-link expansion).
	DetectEmbeds(ctx context.Context, html string, articleURL string) ([]string, error)

	// NormalizeURL collapses URL variants to the platform's canonical form.
	// It is idempotent: NormalizeURL(NormalizeURL(u)) == NormalizeURL(u).
	NormalizeURL(url string) string

	// ExtractAuthor returns a best-effort author identifier for a post URL,
	// or a documented sentinel when the URL grammar does not expose one.
	// It never fails; advisory lookups (DID resolution) degrade to the
	// raw identifier.
	ExtractAuthor(ctx context.Context, url string) string
}

// ContentExtractor isolates the article body region of an HTML document,
// stripping navigation and boilerplate, to reduce false-positive embed
// detection.
type ContentExtractor interface {
	// Extract returns the article body as an HTML fragment. It is a total
	// function: when no article structure is recognized it degrades to the
	// stripped document rather than failing.
	Extract(html string) string
}
