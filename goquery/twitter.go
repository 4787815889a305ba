package goquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kmichalik/embedtrace"
)

// Ensure Twitter implements embedtrace.Detector at compile time.
var _ embedtrace.Detector = (*Twitter)(nil)

var twitterURLPattern = regexp.MustCompile(`(?i)https?://(?:www\.|mobile\.)?(?:twitter\.com|x\.com)/(\w+)/status/(\d+)`)

// Twitter detects Twitter/X status embeds. Both twitter.com and x.com
// hosts are accepted; the canonical form uses x.com.
type Twitter struct{}

// NewTwitter creates a Twitter detector.
func NewTwitter() *Twitter {
	return &Twitter{}
}

// Name returns the platform identifier.
func (d *Twitter) Name() embedtrace.Platform {
	return embedtrace.PlatformTwitter
}

// DetectEmbeds scans an HTML fragment for tweet URLs.
func (d *Twitter) DetectEmbeds(_ context.Context, html string, _ string) ([]string, error) {
	urls := make(map[string]struct{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINVALID, "failed to parse HTML: %v", err)
	}

	// Direct links to twitter.com or x.com statuses.
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if twitterURLPattern.MatchString(href) {
			urls[href] = struct{}{}
		}
	})

	// Official embed blockquotes link to the tweet.
	doc.Find("blockquote.twitter-tweet a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if twitterURLPattern.MatchString(href) {
			urls[href] = struct{}{}
		}
	})

	// Raw sweep catches URLs outside anchor tags.
	for _, match := range twitterURLPattern.FindAllString(html, -1) {
		urls[match] = struct{}{}
	}

	return setToSlice(urls), nil
}

// NormalizeURL collapses a tweet URL to https://x.com/{user}/status/{id}.
func (d *Twitter) NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if match := twitterURLPattern.FindStringSubmatch(rawURL); match != nil {
		return fmt.Sprintf("https://x.com/%s/status/%s", match[1], match[2])
	}
	return rawURL
}

// ExtractAuthor returns the @-prefixed username from the status URL.
func (d *Twitter) ExtractAuthor(_ context.Context, postURL string) string {
	if match := twitterURLPattern.FindStringSubmatch(postURL); match != nil {
		return "@" + match[1]
	}
	return "unknown"
}
