package mock

import (
	"context"

	"github.com/kmichalik/embedtrace"
)

var _ embedtrace.Detector = (*Detector)(nil)

// Detector is a mock implementation of embedtrace.Detector.
type Detector struct {
	NameFn          func() embedtrace.Platform
	DetectEmbedsFn  func(ctx context.Context, html string, articleURL string) ([]string, error)
	NormalizeURLFn  func(url string) string
	ExtractAuthorFn func(ctx context.Context, url string) string
}

func (d *Detector) Name() embedtrace.Platform {
	return d.NameFn()
}

func (d *Detector) DetectEmbeds(ctx context.Context, html string, articleURL string) ([]string, error) {
	return d.DetectEmbedsFn(ctx, html, articleURL)
}

func (d *Detector) NormalizeURL(url string) string {
	return d.NormalizeURLFn(url)
}

func (d *Detector) ExtractAuthor(ctx context.Context, url string) string {
	return d.ExtractAuthorFn(ctx, url)
}

var _ embedtrace.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of embedtrace.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) string
}

func (e *ContentExtractor) Extract(html string) string {
	return e.ExtractFn(html)
}
