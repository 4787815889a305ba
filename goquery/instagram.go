package goquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kmichalik/embedtrace"
)

// Ensure Instagram implements embedtrace.Detector at compile time.
var _ embedtrace.Detector = (*Instagram)(nil)

// Matches /p/CODE (posts), /reel/CODE and /reels/CODE (reels), /tv/CODE (IGTV).
var instagramURLPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?instagram\.com/(p|reel|reels|tv)/([a-zA-Z0-9_-]+)`)

// AuthorNotInURL is returned by ExtractAuthor for valid post URLs:
// Instagram post URLs carry no username, so the author can only be seen
// by opening the post.
const AuthorNotInURL = "(see post)"

// Instagram detects Instagram post, reel and IGTV embeds.
type Instagram struct{}

// NewInstagram creates an Instagram detector.
func NewInstagram() *Instagram {
	return &Instagram{}
}

// Name returns the platform identifier.
func (d *Instagram) Name() embedtrace.Platform {
	return embedtrace.PlatformInstagram
}

// DetectEmbeds scans an HTML fragment for Instagram post URLs.
func (d *Instagram) DetectEmbeds(_ context.Context, html string, _ string) ([]string, error) {
	urls := make(map[string]struct{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINVALID, "failed to parse HTML: %v", err)
	}

	// Direct links to posts, reels and IGTV.
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if instagramURLPattern.MatchString(href) {
			urls[href] = struct{}{}
		}
	})

	// Official embed blockquotes carry the permalink in a data attribute
	// and usually also link to the post.
	doc.Find("blockquote.instagram-media").Each(func(_ int, sel *goquery.Selection) {
		if permalink, ok := sel.Attr("data-instgrm-permalink"); ok && instagramURLPattern.MatchString(permalink) {
			urls[permalink] = struct{}{}
		}
		sel.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			if instagramURLPattern.MatchString(href) {
				urls[href] = struct{}{}
			}
		})
	})

	// Raw sweep catches URLs outside anchor tags.
	for _, match := range instagramURLPattern.FindAllString(html, -1) {
		urls[match] = struct{}{}
	}

	return setToSlice(urls), nil
}

// NormalizeURL collapses an Instagram URL to the canonical
// https://www.instagram.com/{kind}/{code}/ form with a trailing slash.
func (d *Instagram) NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if match := instagramURLPattern.FindStringSubmatch(rawURL); match != nil {
		return fmt.Sprintf("https://www.instagram.com/%s/%s/", strings.ToLower(match[1]), match[2])
	}
	return rawURL
}

// ExtractAuthor returns the AuthorNotInURL sentinel for valid post URLs.
// Post URLs don't expose the username; full author extraction would
// require API access.
func (d *Instagram) ExtractAuthor(_ context.Context, postURL string) string {
	if instagramURLPattern.MatchString(postURL) {
		return AuthorNotInURL
	}
	return "unknown"
}
