package embedtrace

import "context"

// PendingRepost describes a logged Bluesky embed awaiting a quote post.
// ID is the row locator used to write the outcome back.
type PendingRepost struct {
	ID            string
	PostURL       string
	ArticleURL    string
	ArticleTitle  string
	ArticleDomain string
}

// EmbedLog is the persistent, append-only log of discovered embeds.
// The canonical post URL is the sole deduplication key.
type EmbedLog interface {
	// PostURLs returns the set of canonical post URLs already present in
	// the log.
	PostURLs(ctx context.Context) (map[string]struct{}, error)

	// AppendEmbeds appends embeds to the log in one batch.
	// It performs no duplicate filtering of its own; callers are expected
	// to have filtered against PostURLs first.
	AppendEmbeds(ctx context.Context, embeds []*Embed) error

	// UpdateRepostStatus sets the repost status of a single logged embed.
	UpdateRepostStatus(ctx context.Context, id string, status RepostStatus) error

	// PendingReposts returns Bluesky embeds whose repost status is pending.
	PendingReposts(ctx context.Context) ([]*PendingRepost, error)
}
