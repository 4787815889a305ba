package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/kmichalik/embedtrace"
)

// Ensure LoggingDetector implements embedtrace.Detector.
var _ embedtrace.Detector = (*LoggingDetector)(nil)

// LoggingDetector wraps a Detector with debug logging for detection runs.
type LoggingDetector struct {
	next   embedtrace.Detector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next embedtrace.Detector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Name delegates to the wrapped detector.
func (d *LoggingDetector) Name() embedtrace.Platform {
	return d.next.Name()
}

// DetectEmbeds logs the platform and candidate count, then delegates.
func (d *LoggingDetector) DetectEmbeds(ctx context.Context, html string, articleURL string) (urls []string, err error) {
	defer func(begin time.Time) {
		d.logger.Info("detect",
			"platform", d.next.Name(),
			"article", articleURL,
			"embeds", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.DetectEmbeds(ctx, html, articleURL)
}

// NormalizeURL delegates to the wrapped detector.
func (d *LoggingDetector) NormalizeURL(url string) string {
	return d.next.NormalizeURL(url)
}

// ExtractAuthor delegates to the wrapped detector.
func (d *LoggingDetector) ExtractAuthor(ctx context.Context, url string) string {
	return d.next.ExtractAuthor(ctx, url)
}
