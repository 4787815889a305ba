package mock

import (
	"context"
	"time"

	"github.com/kmichalik/embedtrace"
)

var _ embedtrace.FeedSource = (*FeedSource)(nil)

// FeedSource is a mock implementation of embedtrace.FeedSource.
type FeedSource struct {
	FetchFn func(ctx context.Context, feeds []embedtrace.Feed, maxAge time.Duration) ([]embedtrace.Article, error)
}

func (s *FeedSource) Fetch(ctx context.Context, feeds []embedtrace.Feed, maxAge time.Duration) ([]embedtrace.Article, error) {
	return s.FetchFn(ctx, feeds, maxAge)
}

var _ embedtrace.Converter = (*Converter)(nil)

// Converter is a mock implementation of embedtrace.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
