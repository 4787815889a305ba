package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kmichalik/embedtrace"
	"github.com/kmichalik/embedtrace/mock"
	"github.com/kmichalik/embedtrace/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedFor(postURL string) *embedtrace.Embed {
	return &embedtrace.Embed{
		PostURL:    postURL,
		Platform:   embedtrace.PlatformTwitter,
		ArticleURL: "https://example.com/story",
	}
}

func TestGate_WriteBatch(t *testing.T) {
	t.Parallel()

	t.Run("writes new embeds and skips logged ones", func(t *testing.T) {
		t.Parallel()

		var appended []*embedtrace.Embed
		log := &mock.EmbedLog{
			PostURLsFn: func(_ context.Context) (map[string]struct{}, error) {
				return map[string]struct{}{
					"https://x.com/bob/status/1": {},
				}, nil
			},
			AppendEmbedsFn: func(_ context.Context, embeds []*embedtrace.Embed) error {
				appended = embeds
				return nil
			},
		}

		g := &scan.Gate{Log: log}
		written, skipped := g.WriteBatch(context.Background(), []*embedtrace.Embed{
			embedFor("https://x.com/bob/status/1"),
			embedFor("https://x.com/bob/status/2"),
		})

		assert.Equal(t, 1, written)
		assert.Equal(t, 1, skipped)
		require.Len(t, appended, 1)
		assert.Equal(t, "https://x.com/bob/status/2", appended[0].PostURL)
	})

	t.Run("deduplicates within the batch", func(t *testing.T) {
		t.Parallel()

		var appended []*embedtrace.Embed
		log := &mock.EmbedLog{
			PostURLsFn: func(_ context.Context) (map[string]struct{}, error) {
				return map[string]struct{}{}, nil
			},
			AppendEmbedsFn: func(_ context.Context, embeds []*embedtrace.Embed) error {
				appended = embeds
				return nil
			},
		}

		g := &scan.Gate{Log: log}
		written, skipped := g.WriteBatch(context.Background(), []*embedtrace.Embed{
			embedFor("https://x.com/bob/status/1"),
			embedFor("https://x.com/bob/status/1"),
		})

		assert.Equal(t, 1, written)
		assert.Equal(t, 1, skipped)
		assert.Len(t, appended, 1)
	})

	t.Run("reports the whole batch skipped when the read fails", func(t *testing.T) {
		t.Parallel()

		log := &mock.EmbedLog{
			PostURLsFn: func(_ context.Context) (map[string]struct{}, error) {
				return nil, errors.New("log unavailable")
			},
		}

		g := &scan.Gate{Log: log}
		written, skipped := g.WriteBatch(context.Background(), []*embedtrace.Embed{
			embedFor("https://x.com/bob/status/1"),
			embedFor("https://x.com/bob/status/2"),
		})

		assert.Equal(t, 0, written)
		assert.Equal(t, 2, skipped)
	})

	t.Run("reports the whole batch skipped when the write fails", func(t *testing.T) {
		t.Parallel()

		log := &mock.EmbedLog{
			PostURLsFn: func(_ context.Context) (map[string]struct{}, error) {
				return map[string]struct{}{}, nil
			},
			AppendEmbedsFn: func(_ context.Context, _ []*embedtrace.Embed) error {
				return errors.New("write failed")
			},
		}

		g := &scan.Gate{Log: log}
		written, skipped := g.WriteBatch(context.Background(), []*embedtrace.Embed{
			embedFor("https://x.com/bob/status/1"),
		})

		assert.Equal(t, 0, written)
		assert.Equal(t, 1, skipped)
	})

	t.Run("does nothing for an empty batch", func(t *testing.T) {
		t.Parallel()

		g := &scan.Gate{Log: &mock.EmbedLog{}}
		written, skipped := g.WriteBatch(context.Background(), nil)

		assert.Zero(t, written)
		assert.Zero(t, skipped)
	})
}
