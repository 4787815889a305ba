package goquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kmichalik/embedtrace"
	"github.com/kmichalik/embedtrace/goquery"
	"github.com/kmichalik/embedtrace/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Bluesky implements embedtrace.Detector at compile time.
var _ embedtrace.Detector = (*goquery.Bluesky)(nil)

func TestBluesky_DetectEmbeds(t *testing.T) {
	t.Parallel()

	t.Run("detects anchor links to bsky.app posts", func(t *testing.T) {
		t.Parallel()

		html := `<p>See <a href="https://bsky.app/profile/alice.bsky.social/post/3kabc">this post</a>.</p>`

		d := goquery.NewBluesky(nil)
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://bsky.app/profile/alice.bsky.social/post/3kabc")
	})

	t.Run("converts at URIs found in raw text", func(t *testing.T) {
		t.Parallel()

		html := `<div data-post="at://did:plc:abc123/app.bsky.feed.post/3kxyz"></div>`

		d := goquery.NewBluesky(nil)
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://bsky.app/profile/did:plc:abc123/post/3kxyz")
	})

	t.Run("detects official embed blockquotes", func(t *testing.T) {
		t.Parallel()

		html := `<blockquote class="bluesky-embed">
<a href="https://bsky.app/profile/bob.bsky.social/post/3kdef">view</a>
</blockquote>`

		d := goquery.NewBluesky(nil)
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://bsky.app/profile/bob.bsky.social/post/3kdef")
	})

	t.Run("detects data-bluesky-uri attributes", func(t *testing.T) {
		t.Parallel()

		html := `<div data-bluesky-uri="at://carol.bsky.social/app.bsky.feed.post/3kghi"></div>`

		d := goquery.NewBluesky(nil)
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://bsky.app/profile/carol.bsky.social/post/3kghi")
	})

	t.Run("detects plain-text URLs outside markup", func(t *testing.T) {
		t.Parallel()

		html := `<p>the post at https://bsky.app/profile/alice.bsky.social/post/3kabc went viral</p>`

		d := goquery.NewBluesky(nil)
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://bsky.app/profile/alice.bsky.social/post/3kabc")
	})

	t.Run("deduplicates identical raw URLs", func(t *testing.T) {
		t.Parallel()

		html := `<a href="https://bsky.app/profile/alice.bsky.social/post/3kabc">one</a>
<a href="https://bsky.app/profile/alice.bsky.social/post/3kabc">two</a>
<p>https://bsky.app/profile/alice.bsky.social/post/3kabc</p>`

		d := goquery.NewBluesky(nil)
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Len(t, urls, 1)
	})

	t.Run("ignores unrelated links", func(t *testing.T) {
		t.Parallel()

		html := `<a href="https://example.com/other">other</a>
<a href="https://bsky.app/profile/alice.bsky.social">profile only</a>`

		d := goquery.NewBluesky(nil)
		urls, err := d.DetectEmbeds(context.Background(), html, "https://example.com/a")

		require.NoError(t, err)
		assert.Empty(t, urls)
	})
}

func TestBluesky_NormalizeURL(t *testing.T) {
	t.Parallel()

	d := goquery.NewBluesky(nil)

	t.Run("strips query parameters and fragments", func(t *testing.T) {
		t.Parallel()

		got := d.NormalizeURL("https://bsky.app/profile/alice.bsky.social/post/3kabc?ref=share#comments")
		assert.Equal(t, "https://bsky.app/profile/alice.bsky.social/post/3kabc", got)
	})

	t.Run("converts at URIs to the web form", func(t *testing.T) {
		t.Parallel()

		got := d.NormalizeURL("at://alice.bsky.social/app.bsky.feed.post/3kabc")
		assert.Equal(t, "https://bsky.app/profile/alice.bsky.social/post/3kabc", got)
	})

	t.Run("upgrades http scheme", func(t *testing.T) {
		t.Parallel()

		got := d.NormalizeURL("http://bsky.app/profile/alice.bsky.social/post/3kabc")
		assert.Equal(t, "https://bsky.app/profile/alice.bsky.social/post/3kabc", got)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			"https://bsky.app/profile/alice.bsky.social/post/3kabc?utm_source=x",
			"at://did:plc:abc123/app.bsky.feed.post/3kxyz",
			"  https://bsky.app/profile/bob.bsky.social/post/3kdef  ",
		}
		for _, in := range inputs {
			once := d.NormalizeURL(in)
			assert.Equal(t, once, d.NormalizeURL(once))
		}
	})
}

func TestBluesky_ExtractAuthor(t *testing.T) {
	t.Parallel()

	t.Run("returns handle from profile segment", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewBluesky(nil)
		got := d.ExtractAuthor(context.Background(), "https://bsky.app/profile/alice.bsky.social/post/3kabc")
		assert.Equal(t, "alice.bsky.social", got)
	})

	t.Run("resolves DIDs to handles", func(t *testing.T) {
		t.Parallel()

		resolver := &mock.HandleResolver{
			ResolveFn: func(_ context.Context, did string) (string, error) {
				assert.Equal(t, "did:plc:abc123", did)
				return "alice.bsky.social", nil
			},
		}

		d := goquery.NewBluesky(resolver)
		got := d.ExtractAuthor(context.Background(), "https://bsky.app/profile/did:plc:abc123/post/3kxyz")
		assert.Equal(t, "alice.bsky.social", got)
	})

	t.Run("falls back to the DID when resolution fails", func(t *testing.T) {
		t.Parallel()

		resolver := &mock.HandleResolver{
			ResolveFn: func(_ context.Context, _ string) (string, error) {
				return "", errors.New("directory unavailable")
			},
		}

		d := goquery.NewBluesky(resolver)
		got := d.ExtractAuthor(context.Background(), "https://bsky.app/profile/did:plc:abc123/post/3kxyz")
		assert.Equal(t, "did:plc:abc123", got)
	})

	t.Run("returns unknown for unrecognized URLs", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewBluesky(nil)
		assert.Equal(t, "unknown", d.ExtractAuthor(context.Background(), "https://example.com/x"))
	})
}
