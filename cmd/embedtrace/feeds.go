package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kmichalik/embedtrace"
)

// loadFeeds reads the feeds file: a JSON array of {url, name} objects.
func loadFeeds(path string) ([]embedtrace.Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var feeds []embedtrace.Feed
	if err := json.Unmarshal(data, &feeds); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file %q: %w", path, err)
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("feeds file %q lists no feeds", path)
	}
	for _, feed := range feeds {
		if feed.URL == "" {
			return nil, fmt.Errorf("feeds file %q contains a feed without a url", path)
		}
	}

	return feeds, nil
}

// feedNames builds the domain-to-publication-name map used in quote post
// text. Feeds without a name fall back to their domain.
func feedNames(feeds []embedtrace.Feed) map[string]string {
	names := make(map[string]string, len(feeds))
	for _, feed := range feeds {
		domain := embedtrace.DomainFromURL(feed.URL)
		if domain == "" || feed.Name == "" {
			continue
		}
		names[domain] = feed.Name
	}
	return names
}
