package gofeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kmichalik/embedtrace"
	"github.com/kmichalik/embedtrace/gofeed"
	"github.com/kmichalik/embedtrace/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time verification that Source implements embedtrace.FeedSource
var _ embedtrace.FeedSource = (*gofeed.Source)(nil)

func rssFeed(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title><link>https://example.com</link>
` + strings.Join(items, "\n") + `
</channel></rss>`
}

func rssItem(title, link, pubDate, description string) string {
	item := "<item><title>" + title + "</title><link>" + link + "</link>"
	if pubDate != "" {
		item += "<pubDate>" + pubDate + "</pubDate>"
	}
	if description != "" {
		item += "<description><![CDATA[" + description + "]]></description>"
	}
	return item + "</item>"
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSource_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns entries from a feed", func(t *testing.T) {
		t.Parallel()

		server := serveFeed(t, rssFeed(
			rssItem("First", "https://example.com/1", "Mon, 24 Aug 2026 10:00:00 GMT", "A summary"),
			rssItem("Second", "https://example.com/2", "", ""),
		))

		source := gofeed.NewSource()
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{{URL: server.URL, Name: "Example"}}, 0)

		require.NoError(t, err)
		require.Len(t, articles, 2)
		assert.Equal(t, "First", articles[0].Title)
		assert.Equal(t, "https://example.com/1", articles[0].URL)
		assert.Equal(t, "Example", articles[0].FeedName)
		require.NotNil(t, articles[0].Published)
		assert.Nil(t, articles[1].Published)
	})

	t.Run("filters out entries older than the age limit", func(t *testing.T) {
		t.Parallel()

		server := serveFeed(t, rssFeed(
			rssItem("Recent", "https://example.com/recent", time.Now().UTC().Add(-time.Hour).Format(time.RFC1123), ""),
			rssItem("Old", "https://example.com/old", "Mon, 02 Jan 2006 10:00:00 GMT", ""),
			rssItem("Undated", "https://example.com/undated", "", ""),
		))

		source := gofeed.NewSource()
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{{URL: server.URL}}, 168*time.Hour)

		require.NoError(t, err)
		require.Len(t, articles, 2)
		assert.Equal(t, "Recent", articles[0].Title)
		assert.Equal(t, "Undated", articles[1].Title, "entries without dates always pass the age filter")
	})

	t.Run("deduplicates article URLs across feeds", func(t *testing.T) {
		t.Parallel()

		feedA := serveFeed(t, rssFeed(
			rssItem("Story", "https://example.com/shared", "", ""),
		))
		feedB := serveFeed(t, rssFeed(
			rssItem("Story (syndicated)", "https://example.com/shared", "", ""),
			rssItem("Other", "https://example.com/other", "", ""),
		))

		source := gofeed.NewSource()
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{
			{URL: feedA.URL, Name: "A"},
			{URL: feedB.URL, Name: "B"},
		}, 0)

		require.NoError(t, err)
		require.Len(t, articles, 2)
		assert.Equal(t, "A", articles[0].FeedName, "first feed wins the shared URL")
	})

	t.Run("cleans and truncates summaries", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("x", 600)
		server := serveFeed(t, rssFeed(
			rssItem("Story", "https://example.com/1", "", "<p>"+long+"</p>"),
		))

		converter := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return strings.TrimSuffix(strings.TrimPrefix(html, "<p>"), "</p>"), nil
			},
		}

		source := gofeed.NewSource(gofeed.WithConverter(converter))
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{{URL: server.URL}}, 0)

		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Len(t, articles[0].Summary, 500)
		assert.NotContains(t, articles[0].Summary, "<p>")
	})

	t.Run("truncates multi-byte summaries on a rune boundary", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("ü", 600)
		server := serveFeed(t, rssFeed(
			rssItem("Story", "https://example.com/1", "", long),
		))

		source := gofeed.NewSource()
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{{URL: server.URL}}, 0)

		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, 500, utf8.RuneCountInString(articles[0].Summary))
		assert.True(t, utf8.ValidString(articles[0].Summary))
	})

	t.Run("skips unreachable feeds and keeps going", func(t *testing.T) {
		t.Parallel()

		healthy := serveFeed(t, rssFeed(
			rssItem("Story", "https://example.com/1", "", ""),
		))
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer broken.Close()

		source := gofeed.NewSource()
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{
			{URL: broken.URL},
			{URL: healthy.URL},
		}, 0)

		require.NoError(t, err)
		assert.Len(t, articles, 1)
	})

	t.Run("skips entries without links", func(t *testing.T) {
		t.Parallel()

		server := serveFeed(t, rssFeed(
			"<item><title>No link</title></item>",
			rssItem("Linked", "https://example.com/1", "", ""),
		))

		source := gofeed.NewSource()
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{{URL: server.URL}}, 0)

		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "Linked", articles[0].Title)
	})

	t.Run("derives the feed name from its domain when unnamed", func(t *testing.T) {
		t.Parallel()

		server := serveFeed(t, rssFeed(
			rssItem("Story", "https://example.com/1", "", ""),
		))

		source := gofeed.NewSource()
		articles, err := source.Fetch(context.Background(), []embedtrace.Feed{{URL: server.URL}}, 0)

		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, embedtrace.DomainFromURL(server.URL), articles[0].FeedName)
	})
}
