package embedtrace

// Converter transforms HTML content into Markdown text. Used to clean
// feed-entry summaries before storage.
type Converter interface {
	Convert(html string) (string, error)
}
