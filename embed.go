package embedtrace

import (
	"net/url"
	"strings"
	"time"
)

// Platform identifies a social-media platform whose posts can be embedded
// in articles.
type Platform string

// Supported platforms.
const (
	PlatformBluesky   Platform = "bluesky"
	PlatformTwitter   Platform = "twitter"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// RepostStatus tracks whether a Bluesky-platform discovery has been
// quote-posted back to Bluesky.
type RepostStatus string

// Repost lifecycle states. Only Bluesky embeds start as pending; every
// other platform is not-applicable. The reposting workflow later moves
// pending rows to posted or failed.
const (
	RepostPending       RepostStatus = "pending"
	RepostNotApplicable RepostStatus = "n/a"
	RepostPosted        RepostStatus = "posted"
	RepostFailed        RepostStatus = "failed"
)

// Embed represents a social-media post discovered inside an article.
// Embeds are immutable once constructed; only the repost status is updated
// out-of-band by the reposting workflow. Two embeds are the same discovery
// iff their canonical PostURL values are equal.
type Embed struct {
	ID           string       `json:"id"`
	PostURL      string       `json:"postUrl"`
	AuthorHandle string       `json:"authorHandle"`
	Platform     Platform     `json:"platform"`
	ArticleURL   string       `json:"articleUrl"`
	ArticleTitle string       `json:"articleTitle"`

	// ArticleDomain is the host of ArticleURL with any leading "www."
	// stripped.
	ArticleDomain string `json:"articleDomain"`

	DiscoveredAt     time.Time  `json:"discoveredAt"`
	ArticlePublished *time.Time `json:"articlePublished,omitempty"`
	ArticleSummary   string     `json:"articleSummary,omitempty"`

	RepostStatus RepostStatus `json:"repostStatus"`
}

// Validate returns an error if the embed contains invalid fields.
func (e *Embed) Validate() error {
	if e.PostURL == "" {
		return Errorf(EINVALID, "embed post URL required")
	}
	if e.Platform == "" {
		return Errorf(EINVALID, "embed platform required")
	}
	if e.ArticleURL == "" {
		return Errorf(EINVALID, "embed article URL required")
	}
	return nil
}

// Row converts the embed to the fixed 11-column log row shape.
// Column 7 (post URL, 1-indexed) is the deduplication key; column 11 is
// the repost status.
func (e *Embed) Row() []string {
	published := ""
	if e.ArticlePublished != nil {
		published = e.ArticlePublished.Format("2006-01-02 15:04")
	}
	return []string{
		e.DiscoveredAt.Format("2006-01-02"),
		e.DiscoveredAt.Format("15:04:05"),
		string(e.Platform),
		e.ArticleDomain,
		e.AuthorHandle,
		e.ArticleURL,
		e.PostURL,
		e.ArticleTitle,
		e.ArticleSummary,
		published,
		string(e.RepostStatus),
	}
}

// RowHeader returns the column names matching the Row layout.
func RowHeader() []string {
	return []string{
		"Date",
		"Time",
		"Platform",
		"Domain",
		"Author Handle",
		"Article URL",
		"Post URL",
		"Article Title",
		"Article Summary",
		"Published Date",
		"Repost Status",
	}
}

// DomainFromURL extracts the host of a URL with any leading "www." stripped.
// Returns "" for unparseable input.
func DomainFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// InitialRepostStatus returns the repost status a freshly discovered embed
// carries: pending for Bluesky posts, not-applicable otherwise.
func InitialRepostStatus(p Platform) RepostStatus {
	if p == PlatformBluesky {
		return RepostPending
	}
	return RepostNotApplicable
}
