// Package goquery provides goquery-based implementations of the content
// extractor and the per-platform embed detectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kmichalik/embedtrace"
)

// Ensure Extractor implements embedtrace.ContentExtractor at compile time.
var _ embedtrace.ContentExtractor = (*Extractor)(nil)

// strippedElements are removed from the document before any strategy runs.
const strippedElements = "header, footer, nav, aside, script, style, noscript"

// containerSelectors are common article container classes and IDs, tried in
// order when neither <article> nor <main> is present. The last three cover
// site-specific naming (Vox Media and BEM-style themes).
var containerSelectors = []string{
	"div.article-content, section.article-content",
	"div.article-body, section.article-body",
	"div.post-content, section.post-content",
	"div.entry-content, section.entry-content",
	"div.story-body, section.story-body",
	"div.content-body, section.content-body",
	"div#article-body, section#article-body",
	"div#story-body, section#story-body",
	"div#main-content, section#main-content",
	"div.c-entry-content, section.c-entry-content",
	"div.article__content, section.article__content",
	"div.article__body, section.article__body",
}

// Extractor isolates the article body of an HTML document, removing
// navigation and boilerplate so that embed detection does not pick up
// posts linked from sidebars or footers.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article body as an HTML fragment.
//
// Strategies, in order: all <article> elements (concatenated, since some
// sites keep the story and its comments in separate articles), a <main>
// element, a known container class or ID, the <body>, and finally the
// whole stripped document. Extract never fails; unparseable input is
// returned unchanged.
func (e *Extractor) Extract(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	doc.Find(strippedElements).Remove()

	if articles := doc.Find("article"); articles.Length() > 0 {
		var parts []string
		articles.Each(func(_ int, sel *goquery.Selection) {
			if html, err := goquery.OuterHtml(sel); err == nil {
				parts = append(parts, html)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}

	if main := doc.Find("main").First(); main.Length() > 0 {
		if html, err := goquery.OuterHtml(main); err == nil {
			return html
		}
	}

	for _, selector := range containerSelectors {
		if container := doc.Find(selector).First(); container.Length() > 0 {
			if html, err := goquery.OuterHtml(container); err == nil {
				return html
			}
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		if html, err := goquery.OuterHtml(body); err == nil {
			return html
		}
	}

	if html, err := doc.Html(); err == nil {
		return html
	}
	return rawHTML
}
