// Package gofeed provides an RSS/Atom-backed implementation of
// embedtrace.FeedSource.
package gofeed

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/kmichalik/embedtrace"
	"github.com/kmichalik/embedtrace/bloom"
	"github.com/mmcdole/gofeed"
)

// maxSummaryLen caps the stored article summary, counted in runes so
// truncation never splits a multi-byte character.
const maxSummaryLen = 500

// Sizing for the cross-feed URL deduplication filter. A scan touches tens
// of feeds with a few hundred entries each.
const (
	expectedEntries   = 10000
	falsePositiveRate = 0.01
)

// Ensure Source implements embedtrace.FeedSource at compile time.
var _ embedtrace.FeedSource = (*Source)(nil)

// Source reads configured RSS/Atom feeds and produces article descriptors.
// Feeds are fetched sequentially; a feed that fails to fetch or parse is
// logged and skipped so one dead feed never aborts a scan.
type Source struct {
	parser    *gofeed.Parser
	converter embedtrace.Converter
	logger    *slog.Logger
	now       func() time.Time
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithConverter sets the HTML-to-text converter used to clean entry
// summaries. Without one, summaries are stored as-is.
func WithConverter(converter embedtrace.Converter) SourceOption {
	return func(s *Source) {
		s.converter = converter
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a Source.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		parser: gofeed.NewParser(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch reads every configured feed and returns the combined entries,
// deduplicated by article URL across feeds and filtered by age. Entries
// without a published date always pass the age filter.
func (s *Source) Fetch(ctx context.Context, feeds []embedtrace.Feed, maxAge time.Duration) ([]embedtrace.Article, error) {
	seen := bloom.NewFilter(expectedEntries, falsePositiveRate)
	now := s.now()

	var articles []embedtrace.Article
	for _, feed := range feeds {
		if feed.URL == "" {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		name := feed.Name
		if name == "" {
			name = embedtrace.DomainFromURL(feed.URL)
		}

		parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			s.logger.Warn("failed to fetch feed", "feed", name, "url", feed.URL, "error", err)
			continue
		}

		count := 0
		for _, item := range parsed.Items {
			if item == nil || item.Link == "" {
				continue
			}
			if seen.TestAndAdd(item.Link) {
				continue
			}

			article := embedtrace.Article{
				Title:     item.Title,
				URL:       item.Link,
				Published: itemDate(item),
				Summary:   s.cleanSummary(item),
				FeedName:  name,
				FeedURL:   feed.URL,
			}
			if article.Title == "" {
				article.Title = "No title"
			}
			if maxAge > 0 && !article.IsRecent(now, maxAge) {
				continue
			}

			articles = append(articles, article)
			count++
		}

		s.logger.Info("fetched feed", "feed", name, "entries", count)
	}

	return articles, nil
}

// cleanSummary reduces an entry's summary to plain text and caps its
// length. Conversion failures keep the raw summary.
func (s *Source) cleanSummary(item *gofeed.Item) string {
	summary := item.Description
	if summary == "" {
		summary = item.Content
	}
	if summary == "" {
		return ""
	}

	if s.converter != nil {
		if cleaned, err := s.converter.Convert(summary); err == nil {
			summary = cleaned
		}
	}

	if utf8.RuneCountInString(summary) > maxSummaryLen {
		summary = string([]rune(summary)[:maxSummaryLen])
	}
	return summary
}

// itemDate returns the entry's published time, falling back to the updated
// time. Nil when the feed provides neither.
func itemDate(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	return nil
}
