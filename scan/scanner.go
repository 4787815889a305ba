package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/kmichalik/embedtrace"
)

// Scanner assembles embed records from article HTML. Each article's page is
// reduced to its content region once, then every registered detector is run
// against that region. A detector failure is isolated: it contributes zero
// embeds for the article and the remaining detectors run unaffected.
type Scanner struct {
	Detectors []embedtrace.Detector
	Extractor embedtrace.ContentExtractor
	Logger    *slog.Logger

	// Now is the clock used to stamp discoveries. Defaults to time.Now.
	Now func() time.Time
}

// ScanArticle runs every detector against the article's extracted content
// region and returns all embeds discovered.
func (s *Scanner) ScanArticle(ctx context.Context, pageHTML string, article *embedtrace.Article) []*embedtrace.Embed {
	content := pageHTML
	if s.Extractor != nil {
		content = s.Extractor.Extract(pageHTML)
	}

	var embeds []*embedtrace.Embed
	for _, detector := range s.Detectors {
		found, err := s.ProcessArticle(ctx, detector, content, article)
		if err != nil {
			s.logger().Warn("detector failed",
				"platform", detector.Name(),
				"article", article.URL,
				"error", err,
			)
			continue
		}
		embeds = append(embeds, found...)
	}
	return embeds
}

// ProcessArticle runs a single detector against an article's content region.
// Candidates are normalized to their canonical form and deduplicated within
// the article; an embed record is built for each distinct canonical URL.
func (s *Scanner) ProcessArticle(ctx context.Context, detector embedtrace.Detector, contentHTML string, article *embedtrace.Article) ([]*embedtrace.Embed, error) {
	candidates, err := detector.DetectEmbeds(ctx, contentHTML, article.URL)
	if err != nil {
		return nil, err
	}

	// Discovery times are stored and compared as wall-clock strings, so
	// every record is stamped in UTC regardless of the host zone.
	now := s.clock()().UTC()
	platform := detector.Name()

	seen := make(map[string]struct{})
	var embeds []*embedtrace.Embed
	for _, candidate := range candidates {
		canonical := detector.NormalizeURL(candidate)
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}

		embed := &embedtrace.Embed{
			PostURL:          canonical,
			AuthorHandle:     detector.ExtractAuthor(ctx, canonical),
			Platform:         platform,
			ArticleURL:       article.URL,
			ArticleTitle:     article.Title,
			ArticleDomain:    article.Domain(),
			DiscoveredAt:     now,
			ArticlePublished: article.Published,
			ArticleSummary:   article.Summary,
			RepostStatus:     embedtrace.InitialRepostStatus(platform),
		}
		if err := embed.Validate(); err != nil {
			s.logger().Warn("skipping invalid embed",
				"platform", platform,
				"url", canonical,
				"error", err,
			)
			continue
		}
		embeds = append(embeds, embed)
	}
	return embeds, nil
}

func (s *Scanner) clock() func() time.Time {
	if s.Now != nil {
		return s.Now
	}
	return time.Now
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
