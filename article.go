package embedtrace

import (
	"context"
	"time"
)

// Article describes a single article pulled from an RSS feed.
type Article struct {
	Title     string
	URL       string
	Published *time.Time
	Summary   string
	FeedName  string
	FeedURL   string
}

// Domain returns the article's host with any leading "www." stripped.
func (a *Article) Domain() string {
	return DomainFromURL(a.URL)
}

// IsRecent reports whether the article falls within the age limit.
// Articles without a published date are always included.
func (a *Article) IsRecent(now time.Time, maxAge time.Duration) bool {
	if a.Published == nil {
		return true
	}
	return now.Sub(*a.Published) <= maxAge
}

// Feed identifies an RSS feed to scan.
type Feed struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// FeedSource supplies article descriptors from configured feeds,
// age-filtered and deduplicated by article URL.
type FeedSource interface {
	Fetch(ctx context.Context, feeds []Feed, maxAge time.Duration) ([]Article, error)
}
