package goquery_test

import (
	"context"
	"testing"

	"github.com/kmichalik/embedtrace"
	"github.com/kmichalik/embedtrace/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Twitter implements embedtrace.Detector at compile time.
var _ embedtrace.Detector = (*goquery.Twitter)(nil)

func TestTwitter_DetectEmbeds(t *testing.T) {
	t.Parallel()

	t.Run("detects anchor links on both hosts", func(t *testing.T) {
		t.Parallel()

		html := `<a href="https://twitter.com/bob/status/123456">old</a>
<a href="https://x.com/carol/status/789012">new</a>`

		d := goquery.NewTwitter()
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://twitter.com/bob/status/123456")
		assert.Contains(t, urls, "https://x.com/carol/status/789012")
	})

	t.Run("detects embed blockquote links", func(t *testing.T) {
		t.Parallel()

		html := `<blockquote class="twitter-tweet">
<p>some tweet text</p>
<a href="https://twitter.com/bob/status/123456?ref_src=twsrc">view</a>
</blockquote>`

		d := goquery.NewTwitter()
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://twitter.com/bob/status/123456?ref_src=twsrc")
	})

	t.Run("detects URLs in raw text", func(t *testing.T) {
		t.Parallel()

		html := `<script>{"tweet": "https://x.com/bob/status/999"}</script>`

		d := goquery.NewTwitter()
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://x.com/bob/status/999")
	})

	t.Run("ignores profile links", func(t *testing.T) {
		t.Parallel()

		html := `<a href="https://x.com/bob">profile</a>`

		d := goquery.NewTwitter()
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Empty(t, urls)
	})
}

func TestTwitter_NormalizeURL(t *testing.T) {
	t.Parallel()

	d := goquery.NewTwitter()

	t.Run("normalizes twitter.com to x.com", func(t *testing.T) {
		t.Parallel()

		got := d.NormalizeURL("https://twitter.com/bob/status/999?s=20")
		assert.Equal(t, "https://x.com/bob/status/999", got)
	})

	t.Run("accepts www and mobile hosts", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "https://x.com/bob/status/999", d.NormalizeURL("https://www.twitter.com/bob/status/999"))
		assert.Equal(t, "https://x.com/bob/status/999", d.NormalizeURL("https://mobile.twitter.com/bob/status/999"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		once := d.NormalizeURL("https://twitter.com/bob/status/999?s=20#m")
		assert.Equal(t, once, d.NormalizeURL(once))
	})

	t.Run("returns unrecognized URLs trimmed", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "https://example.com/x", d.NormalizeURL("  https://example.com/x "))
	})
}

func TestTwitter_ExtractAuthor(t *testing.T) {
	t.Parallel()

	d := goquery.NewTwitter()

	assert.Equal(t, "@bob", d.ExtractAuthor(context.Background(), "https://x.com/bob/status/999"))
	assert.Equal(t, "@carol", d.ExtractAuthor(context.Background(), "https://twitter.com/carol/status/1"))
	assert.Equal(t, "unknown", d.ExtractAuthor(context.Background(), "https://example.com/x"))
}
