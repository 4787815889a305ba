package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kmichalik/embedtrace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeedsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFeeds(t *testing.T) {
	t.Parallel()

	t.Run("parses url and name", func(t *testing.T) {
		t.Parallel()

		path := writeFeedsFile(t, `[
			{"url": "https://example.com/rss", "name": "Example News"},
			{"url": "https://other.com/feed.xml"}
		]`)

		feeds, err := loadFeeds(path)

		require.NoError(t, err)
		require.Len(t, feeds, 2)
		assert.Equal(t, "https://example.com/rss", feeds[0].URL)
		assert.Equal(t, "Example News", feeds[0].Name)
		assert.Equal(t, "https://other.com/feed.xml", feeds[1].URL)
		assert.Empty(t, feeds[1].Name)
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := loadFeeds(filepath.Join(t.TempDir(), "missing.json"))

		require.Error(t, err)
	})

	t.Run("returns error for invalid JSON", func(t *testing.T) {
		t.Parallel()

		path := writeFeedsFile(t, `{not json`)

		_, err := loadFeeds(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("returns error for empty feed list", func(t *testing.T) {
		t.Parallel()

		path := writeFeedsFile(t, `[]`)

		_, err := loadFeeds(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no feeds")
	})

	t.Run("returns error for feed without url", func(t *testing.T) {
		t.Parallel()

		path := writeFeedsFile(t, `[{"name": "Nameless"}]`)

		_, err := loadFeeds(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "without a url")
	})
}

func TestFeedNames(t *testing.T) {
	t.Parallel()

	t.Run("maps domains to publication names", func(t *testing.T) {
		t.Parallel()

		names := feedNames([]embedtrace.Feed{
			{URL: "https://www.example.com/rss", Name: "Example News"},
			{URL: "https://other.com/feed.xml"},
		})

		assert.Equal(t, map[string]string{"example.com": "Example News"}, names)
	})
}
