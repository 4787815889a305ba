package scan

import (
	"context"
	"log/slog"

	"github.com/kmichalik/embedtrace"
)

// Gate filters a batch of discovered embeds against the persistent log and
// appends the new ones. The read-then-write sequence is not transactional:
// a concurrent run could log the same post URL twice. A single active run
// is assumed; the log itself never rejects duplicates.
type Gate struct {
	Log    embedtrace.EmbedLog
	Logger *slog.Logger
}

// WriteBatch appends the embeds not already present in the log and returns
// how many were written and how many were skipped as duplicates. Failure
// accounting is conservative: if the read or the write fails, the whole
// batch is reported as skipped and the error is logged, not returned.
func (g *Gate) WriteBatch(ctx context.Context, embeds []*embedtrace.Embed) (written, skipped int) {
	if len(embeds) == 0 {
		return 0, 0
	}

	existing, err := g.Log.PostURLs(ctx)
	if err != nil {
		g.logger().Error("failed to read logged post URLs", "error", err)
		return 0, len(embeds)
	}

	var fresh []*embedtrace.Embed
	for _, embed := range embeds {
		if _, ok := existing[embed.PostURL]; ok {
			skipped++
			continue
		}
		// Also guards against the same post appearing in two articles
		// within this batch.
		existing[embed.PostURL] = struct{}{}
		fresh = append(fresh, embed)
	}

	if len(fresh) == 0 {
		return 0, skipped
	}

	if err := g.Log.AppendEmbeds(ctx, fresh); err != nil {
		g.logger().Error("failed to append embeds", "count", len(fresh), "error", err)
		return 0, len(embeds)
	}

	return len(fresh), skipped
}

func (g *Gate) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}
