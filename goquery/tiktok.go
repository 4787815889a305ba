package goquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kmichalik/embedtrace"
)

// Ensure TikTok implements embedtrace.Detector at compile time.
var _ embedtrace.Detector = (*TikTok)(nil)

var (
	tiktokURLPattern   = regexp.MustCompile(`(?i)https?://(?:www\.)?tiktok\.com/@([\w.-]+)/video/(\d+)`)
	tiktokShortPattern = regexp.MustCompile(`(?i)https?://(?:vm\.tiktok\.com|vt\.tiktok\.com)/([a-zA-Z0-9]+)`)
)

// TikTok detects TikTok video embeds. Short links (vm.tiktok.com,
// vt.tiktok.com) are expanded via a redirect-following lookup before
// normalization; a candidate whose expansion fails is dropped.
type TikTok struct {
	expander embedtrace.URLExpander
}

// NewTikTok creates a TikTok detector. The expander resolves short links;
// it may be nil, in which case short links are ignored.
func NewTikTok(expander embedtrace.URLExpander) *TikTok {
	return &TikTok{expander: expander}
}

// Name returns the platform identifier.
func (d *TikTok) Name() embedtrace.Platform {
	return embedtrace.PlatformTikTok
}

// DetectEmbeds scans an HTML fragment for TikTok video URLs.
func (d *TikTok) DetectEmbeds(ctx context.Context, html string, _ string) ([]string, error) {
	urls := make(map[string]struct{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINVALID, "failed to parse HTML: %v", err)
	}

	// Direct links, full or short.
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, "tiktok.com") {
			return
		}
		switch {
		case tiktokURLPattern.MatchString(href):
			urls[href] = struct{}{}
		case tiktokShortPattern.MatchString(href):
			if expanded, ok := d.expand(ctx, href); ok {
				urls[expanded] = struct{}{}
			}
		}
	})

	// Official embed blockquotes carry the video URL in the cite attribute.
	doc.Find("blockquote.tiktok-embed").Each(func(_ int, sel *goquery.Selection) {
		cite, _ := sel.Attr("cite")
		if tiktokURLPattern.MatchString(cite) {
			urls[cite] = struct{}{}
		}
	})

	// Raw sweep, full and short forms.
	for _, match := range tiktokURLPattern.FindAllString(html, -1) {
		urls[match] = struct{}{}
	}
	for _, match := range tiktokShortPattern.FindAllString(html, -1) {
		if expanded, ok := d.expand(ctx, match); ok {
			urls[expanded] = struct{}{}
		}
	}

	return setToSlice(urls), nil
}

// NormalizeURL collapses a TikTok video URL to the canonical
// https://www.tiktok.com/@{user}/video/{id} form.
func (d *TikTok) NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if match := tiktokURLPattern.FindStringSubmatch(rawURL); match != nil {
		return fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", match[1], match[2])
	}
	return rawURL
}

// ExtractAuthor returns the @-prefixed username from the video URL.
func (d *TikTok) ExtractAuthor(_ context.Context, postURL string) string {
	if match := tiktokURLPattern.FindStringSubmatch(postURL); match != nil {
		return "@" + match[1]
	}
	return "unknown"
}

// expand resolves a short link to the full video URL. Expansion failure or
// a redirect that doesn't land on a video page drops the candidate.
func (d *TikTok) expand(ctx context.Context, shortURL string) (string, bool) {
	if d.expander == nil {
		return "", false
	}
	finalURL, err := d.expander.Expand(ctx, shortURL)
	if err != nil {
		return "", false
	}
	if !tiktokURLPattern.MatchString(finalURL) {
		return "", false
	}
	return finalURL, true
}
