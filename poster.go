package embedtrace

import "context"

// QuoteRequest describes a quote post linking a discovered Bluesky embed
// back to the article that referenced it.
type QuoteRequest struct {
	PostURL       string
	ArticleURL    string
	ArticleTitle  string
	ArticleDomain string
}

// Reposter publishes quote posts for discovered Bluesky embeds.
type Reposter interface {
	PostQuote(ctx context.Context, req QuoteRequest) error
}
