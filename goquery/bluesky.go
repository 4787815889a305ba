package goquery

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kmichalik/embedtrace"
)

// Ensure Bluesky implements embedtrace.Detector at compile time.
var _ embedtrace.Detector = (*Bluesky)(nil)

var (
	bskyURLPattern = regexp.MustCompile(`(?i)https?://bsky\.app/profile/([^/\s"'<>]+)/post/([a-zA-Z0-9]+)`)
	atURIPattern   = regexp.MustCompile(`(?i)at://([^/\s"'<>]+)/app\.bsky\.feed\.post/([a-zA-Z0-9]+)`)
	didPattern     = regexp.MustCompile(`^did:plc:[a-zA-Z0-9]+$`)
)

// Bluesky detects bsky.app post embeds. It recognizes direct links,
// at:// URIs (converted to the canonical web form), official embed
// blockquotes, and data-bluesky-uri attributes.
type Bluesky struct {
	resolver embedtrace.HandleResolver
}

// NewBluesky creates a Bluesky detector. The resolver translates DIDs to
// handles when extracting authors; it may be nil, in which case DIDs are
// reported as-is.
func NewBluesky(resolver embedtrace.HandleResolver) *Bluesky {
	return &Bluesky{resolver: resolver}
}

// Name returns the platform identifier.
func (d *Bluesky) Name() embedtrace.Platform {
	return embedtrace.PlatformBluesky
}

// DetectEmbeds scans an HTML fragment for Bluesky post URLs.
func (d *Bluesky) DetectEmbeds(_ context.Context, html string, _ string) ([]string, error) {
	urls := make(map[string]struct{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINVALID, "failed to parse HTML: %v", err)
	}

	// Direct links to bsky.app posts.
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if bskyURLPattern.MatchString(href) {
			urls[href] = struct{}{}
		}
	})

	// Official embed blockquotes contain a link to the post.
	doc.Find("blockquote.bluesky-embed a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if bskyURLPattern.MatchString(href) {
			urls[href] = struct{}{}
		}
	})

	// Embed wrappers carry the post identity as an at:// URI.
	doc.Find("[data-bluesky-uri]").Each(func(_ int, sel *goquery.Selection) {
		uri, _ := sel.Attr("data-bluesky-uri")
		switch {
		case strings.HasPrefix(uri, "at://"):
			if converted, ok := atURIToWebURL(uri); ok {
				urls[converted] = struct{}{}
			}
		case bskyURLPattern.MatchString(uri):
			urls[uri] = struct{}{}
		}
	})

	// Raw sweep catches URLs outside recognized markup (plain text, JSON).
	for _, match := range bskyURLPattern.FindAllString(html, -1) {
		urls[match] = struct{}{}
	}
	for _, match := range atURIPattern.FindAllString(html, -1) {
		if converted, ok := atURIToWebURL(match); ok {
			urls[converted] = struct{}{}
		}
	}

	return setToSlice(urls), nil
}

// NormalizeURL collapses a Bluesky post URL (or at:// URI) to the canonical
// https://bsky.app/profile/{handle}/post/{id} form.
func (d *Bluesky) NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)

	if converted, ok := atURIToWebURL(rawURL); ok {
		rawURL = converted
	}

	clean := stripQueryAndFragment(rawURL)
	if match := bskyURLPattern.FindStringSubmatch(clean); match != nil {
		return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", match[1], match[2])
	}
	return clean
}

// ExtractAuthor returns the profile segment of the URL. DIDs are resolved
// to handles via the directory; resolution failure falls back to the DID.
func (d *Bluesky) ExtractAuthor(ctx context.Context, postURL string) string {
	match := bskyURLPattern.FindStringSubmatch(postURL)
	if match == nil {
		return "unknown"
	}

	handleOrDID := match[1]
	if didPattern.MatchString(handleOrDID) && d.resolver != nil {
		if handle, err := d.resolver.Resolve(ctx, handleOrDID); err == nil && handle != "" {
			return handle
		}
	}
	return handleOrDID
}

// atURIToWebURL converts an at://{actor}/app.bsky.feed.post/{id} URI to its
// bsky.app web form.
func atURIToWebURL(atURI string) (string, bool) {
	match := atURIPattern.FindStringSubmatch(atURI)
	if match == nil {
		return "", false
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", match[1], match[2]), true
}

// stripQueryAndFragment removes the query string and fragment from a URL,
// leaving scheme, host and path. Unparseable input is returned trimmed.
func stripQueryAndFragment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// setToSlice returns the keys of a string set.
func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	return out
}
