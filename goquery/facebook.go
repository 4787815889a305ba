package goquery

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kmichalik/embedtrace"
)

// Ensure Facebook implements embedtrace.Detector at compile time.
var _ embedtrace.Detector = (*Facebook)(nil)

// Facebook exposes posts under many URL shapes:
//
//	facebook.com/{user}/posts/{id}
//	facebook.com/permalink.php?story_fbid={id}&id={user}
//	facebook.com/photo.php?fbid={id}
//	facebook.com/watch/?v={id}
//	facebook.com/reel/{id}
//	facebook.com/{user}/videos/{id}
//	facebook.com/stories/...
//	fb.watch/{id}
var facebookPostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/([^/\s"'<>]+)/posts/([a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/permalink\.php\?`),
	regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/photo(?:\.php)?\?`),
	regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/watch/?\?v=(\d+)`),
	regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/reel/(\d+)`),
	regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/([^/\s"'<>]+)/videos/(\d+)`),
	regexp.MustCompile(`(?i)https?://fb\.watch/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/stories/`),
}

// facebookSkipPatterns reject homepage and utility URLs before any content
// pattern is consulted.
var facebookSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^https?://(?:www\.)?facebook\.com/?$`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?facebook\.com/home`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?facebook\.com/login`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?facebook\.com/sharer`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?facebook\.com/share`),
}

// facebookGeneralPattern catches most Facebook content URLs in raw text;
// matches are then classified by the content patterns above.
var facebookGeneralPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?(?:facebook\.com|fb\.watch)/[^\s"'<>]+`)

// facebookAuthorPattern recognizes the two URL shapes that carry the
// author in the path.
var facebookAuthorPattern = regexp.MustCompile(`(?i)facebook\.com/([^/\s"'<>]+)/(?:posts|videos)/`)

// essentialQueryKeys are the identity-bearing query parameters retained by
// normalization for permalink and photo URL shapes.
var essentialQueryKeys = []string{"story_fbid", "id", "fbid", "v"}

// Facebook detects Facebook post, video, reel and story embeds.
type Facebook struct{}

// NewFacebook creates a Facebook detector.
func NewFacebook() *Facebook {
	return &Facebook{}
}

// Name returns the platform identifier.
func (d *Facebook) Name() embedtrace.Platform {
	return embedtrace.PlatformFacebook
}

// DetectEmbeds scans an HTML fragment for Facebook content URLs.
func (d *Facebook) DetectEmbeds(_ context.Context, html string, _ string) ([]string, error) {
	urls := make(map[string]struct{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINVALID, "failed to parse HTML: %v", err)
	}

	// Direct links to Facebook content.
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if isFacebookContentURL(href) {
			urls[href] = struct{}{}
		}
	})

	// Embed wrappers (fb-post, fb-video, fb-reel) carry the post URL in
	// a data-href attribute.
	doc.Find("div.fb-post, div.fb-video, div.fb-reel, blockquote.fb-post, blockquote.fb-video, blockquote.fb-reel").
		Each(func(_ int, sel *goquery.Selection) {
			dataHref, _ := sel.Attr("data-href")
			if isFacebookContentURL(dataHref) {
				urls[dataHref] = struct{}{}
			}
		})

	// Plugin iframes encode the post URL in the href query parameter.
	doc.Find("iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if !strings.Contains(src, "facebook.com/plugins/") {
			return
		}
		parsed, err := url.Parse(src)
		if err != nil {
			return
		}
		href := parsed.Query().Get("href")
		if href != "" && isFacebookContentURL(href) {
			urls[href] = struct{}{}
		}
	})

	// Raw sweep, filtered through content classification.
	for _, match := range facebookGeneralPattern.FindAllString(html, -1) {
		if isFacebookContentURL(match) {
			urls[match] = struct{}{}
		}
	}

	return setToSlice(urls), nil
}

// NormalizeURL strips tracking parameters from a Facebook URL while keeping
// the identity-bearing query keys of permalink and photo shapes.
func (d *Facebook) NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if strings.Contains(parsed.Host, "facebook.com") {
		if strings.Contains(parsed.Path, "permalink.php") || strings.Contains(parsed.Path, "photo") {
			query := parsed.Query()
			var parts []string
			for _, key := range essentialQueryKeys {
				if v := query.Get(key); v != "" {
					parts = append(parts, key+"="+v)
				}
			}
			if len(parts) > 0 {
				return "https://www.facebook.com" + parsed.Path + "?" + strings.Join(parts, "&")
			}
		}
		return "https://www.facebook.com" + parsed.Path
	}

	if strings.Contains(parsed.Host, "fb.watch") {
		return "https://fb.watch" + parsed.Path
	}

	return rawURL
}

// ExtractAuthor returns the profile segment for {user}/posts/ and
// {user}/videos/ shapes. Other shapes don't expose the author in the URL
// and report the AuthorNotInURL sentinel.
func (d *Facebook) ExtractAuthor(_ context.Context, postURL string) string {
	if match := facebookAuthorPattern.FindStringSubmatch(postURL); match != nil {
		username := match[1]
		switch username {
		case "permalink.php", "photo.php", "watch", "reel", "stories":
			// generic path, not a profile
		default:
			return username
		}
	}
	return AuthorNotInURL
}

// isFacebookContentURL reports whether a URL points at Facebook content
// rather than the homepage or a utility page.
func isFacebookContentURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	for _, skip := range facebookSkipPatterns {
		if skip.MatchString(rawURL) {
			return false
		}
	}
	for _, pattern := range facebookPostPatterns {
		if pattern.MatchString(rawURL) {
			return true
		}
	}
	return false
}
