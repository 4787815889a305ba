// Package scan provides embed discovery orchestration. It coordinates feed
// reading, article fetching, platform detection, deduplication against the
// persistent log, and optional reposting of Bluesky discoveries.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kmichalik/embedtrace"
	"golang.org/x/time/rate"
)

// Runner executes a full scan: feed source to fetched articles to detected
// embeds to the log, followed by an optional repost pass. Articles are
// processed sequentially; per-article failures are logged and skipped so a
// broken site never aborts the run.
type Runner struct {
	Source   embedtrace.FeedSource
	Fetcher  embedtrace.Fetcher
	Scanner  *Scanner
	Gate     *Gate
	Log      embedtrace.EmbedLog
	Reposter embedtrace.Reposter // nil disables the repost pass
	Limiter  *DomainLimiter
	Logger   *slog.Logger

	MaxArticles  int
	MaxAge       time.Duration
	MaxPosts     int
	PostDelay    time.Duration
	ArticleDelay time.Duration
	RetryDelays  []time.Duration
}

// Result holds the outcome of a scan run.
type Result struct {
	Articles    int
	FetchFailed int
	Discovered  int
	Written     int
	Skipped     int
	Posted      int
	PostFailed  int
}

// Run executes the pipeline against the given feeds.
func (r *Runner) Run(ctx context.Context, feeds []embedtrace.Feed) (*Result, error) {
	articles, err := r.Source.Fetch(ctx, feeds, r.MaxAge)
	if err != nil {
		return nil, err
	}
	if r.MaxArticles > 0 && len(articles) > r.MaxArticles {
		articles = articles[:r.MaxArticles]
	}

	result := &Result{Articles: len(articles)}

	var discovered []*embedtrace.Embed
	for i := range articles {
		article := &articles[i]

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if r.Limiter != nil {
			if err := r.Limiter.Wait(ctx, article.Domain()); err != nil {
				return nil, err
			}
		}

		html, err := r.fetchArticle(ctx, article.URL)
		if err != nil {
			result.FetchFailed++
			r.logger().Warn("failed to fetch article", "url", article.URL, "error", err)
			continue
		}

		embeds := r.Scanner.ScanArticle(ctx, html, article)
		discovered = append(discovered, embeds...)

		if r.ArticleDelay > 0 && i < len(articles)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.ArticleDelay):
			}
		}
	}
	result.Discovered = len(discovered)

	result.Written, result.Skipped = r.Gate.WriteBatch(ctx, discovered)

	if r.Reposter != nil && r.MaxPosts != 0 {
		posted, failed, err := r.PostPending(ctx)
		if err != nil {
			return nil, err
		}
		result.Posted = posted
		result.PostFailed = failed
	}

	return result, nil
}

// PostPending quote-posts logged Bluesky embeds whose repost status is
// pending, up to MaxPosts, waiting PostDelay between posts. Each outcome is
// written back to the log; a failed post marks the row failed and the pass
// moves on.
func (r *Runner) PostPending(ctx context.Context) (posted, failed int, err error) {
	pending, err := r.Log.PendingReposts(ctx)
	if err != nil {
		return 0, 0, err
	}
	if r.MaxPosts > 0 && len(pending) > r.MaxPosts {
		pending = pending[:r.MaxPosts]
	}

	var limiter *rate.Limiter
	if r.PostDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(r.PostDelay), 1)
	}

	for _, p := range pending {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return posted, failed, err
			}
		}

		req := embedtrace.QuoteRequest{
			PostURL:       p.PostURL,
			ArticleURL:    p.ArticleURL,
			ArticleTitle:  p.ArticleTitle,
			ArticleDomain: p.ArticleDomain,
		}

		status := embedtrace.RepostPosted
		if err := r.Reposter.PostQuote(ctx, req); err != nil {
			status = embedtrace.RepostFailed
			failed++
			r.logger().Warn("quote post failed", "post", p.PostURL, "error", err)
		} else {
			posted++
		}

		if err := r.Log.UpdateRepostStatus(ctx, p.ID, status); err != nil {
			r.logger().Error("failed to record repost status",
				"id", p.ID,
				"status", status,
				"error", err,
			)
		}
	}

	return posted, failed, nil
}

func (r *Runner) fetchArticle(ctx context.Context, url string) (string, error) {
	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	fetchFn := func(ctx context.Context, url string) (string, error) {
		return r.Fetcher.Fetch(ctx, url)
	}
	var logFn LogFunc
	if r.Logger != nil {
		logFn = func(format string, args ...any) {
			r.Logger.Debug("fetch retry", "detail", fmt.Sprintf(format, args...))
		}
	}
	return FetchWithRetryDelays(ctx, url, fetchFn, logFn, delays)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
