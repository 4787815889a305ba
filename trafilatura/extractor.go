// Package trafilatura provides a go-trafilatura backed implementation of
// embedtrace.ContentExtractor. It applies heavier content heuristics than
// the default DOM extractor, at the cost of speed, and is selected with
// the --extractor=trafilatura flag.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/kmichalik/embedtrace"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements embedtrace.ContentExtractor at compile time.
var _ embedtrace.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to reduce a page to its main content.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the main content region of the page as HTML. When
// trafilatura cannot isolate a content node the raw input is returned, so
// detection still sees the whole page rather than nothing.
func (e *Extractor) Extract(rawHTML string) string {
	if rawHTML == "" {
		return rawHTML
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result.ContentNode == nil {
		return rawHTML
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return rawHTML
	}
	return buf.String()
}
