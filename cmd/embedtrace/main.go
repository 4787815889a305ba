package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/kmichalik/embedtrace"
	"github.com/kmichalik/embedtrace/bluesky"
	"github.com/kmichalik/embedtrace/gofeed"
	"github.com/kmichalik/embedtrace/goquery"
	"github.com/kmichalik/embedtrace/htmltomarkdown"
	embedhttp "github.com/kmichalik/embedtrace/http"
	"github.com/kmichalik/embedtrace/rod"
	"github.com/kmichalik/embedtrace/scan"
	embedslog "github.com/kmichalik/embedtrace/slog"
	"github.com/kmichalik/embedtrace/sqlite"
	"github.com/kmichalik/embedtrace/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the embed log.
	DB *sqlite.DB

	// Embed log for end-to-end testing.
	EmbedService embedtrace.EmbedLog
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("embedtrace"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'embedtrace --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Open database
	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set EMBEDTRACE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.EmbedService = sqlite.NewEmbedService(m.DB)
	deps.DB = m.DB
	deps.Embeds = m.EmbedService

	if cmd == "scan" {
		feeds, err := loadFeeds(cli.Scan.Feeds)
		if err != nil {
			fmt.Fprintf(stderr, "Hint: the feeds file is a JSON array of {\"url\": ..., \"name\": ...} objects\n")
			return err
		}
		deps.Feeds = feeds

		var fetcher embedtrace.Fetcher
		if cli.Scan.Browser {
			browserFetcher, err := rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = browserFetcher
		} else {
			fetcher = embedhttp.NewFetcher()
		}
		fetcher = embedslog.NewLoggingFetcher(fetcher, logger)
		defer fetcher.Close()

		resolver := bluesky.NewResolver(
			bluesky.WithResolveCache(scan.NewTTLCache(lookupCacheSize, lookupCacheTTL)),
		)
		expander := embedhttp.NewExpander(
			embedhttp.WithExpandCache(scan.NewTTLCache(lookupCacheSize, lookupCacheTTL)),
		)

		detectors := goquery.Detectors(resolver, expander)
		for i, d := range detectors {
			detectors[i] = embedslog.NewLoggingDetector(d, logger)
		}

		var extractor embedtrace.ContentExtractor = goquery.NewExtractor()
		if cli.Scan.Extractor == "trafilatura" {
			extractor = trafilatura.NewExtractor()
		}

		var reposter embedtrace.Reposter
		if cli.Scan.MaxPosts != 0 && cli.Scan.Handle != "" && cli.Scan.Password != "" {
			reposter = bluesky.NewClient(cli.Scan.Handle, cli.Scan.Password,
				bluesky.WithFeedNames(feedNames(feeds)),
				bluesky.WithLogger(logger),
			)
		}

		deps.Runner = &scan.Runner{
			Source: gofeed.NewSource(
				gofeed.WithConverter(htmltomarkdown.NewConverter()),
				gofeed.WithLogger(logger),
			),
			Fetcher:      fetcher,
			Scanner:      &scan.Scanner{Detectors: detectors, Extractor: extractor, Logger: logger},
			Gate:         &scan.Gate{Log: deps.Embeds, Logger: logger},
			Log:          deps.Embeds,
			Reposter:     reposter,
			Limiter:      scan.NewDomainLimiter(articleRequestsPerSecond),
			Logger:       logger,
			MaxArticles:  cli.Scan.MaxArticles,
			MaxAge:       cli.Scan.MaxAge,
			MaxPosts:     cli.Scan.MaxPosts,
			PostDelay:    cli.Scan.PostDelay,
			ArticleDelay: cli.Scan.ArticleDelay,
		}
	}

	if cmd == "post" {
		if cli.Post.Handle == "" || cli.Post.Password == "" {
			fmt.Fprintln(stderr, "Hint: set BLUESKY_HANDLE and BLUESKY_PASSWORD (use an App Password)")
			return fmt.Errorf("bluesky credentials not set")
		}

		// Feed names only affect post text; a missing feeds file is fine.
		names := map[string]string{}
		if feeds, err := loadFeeds(cli.Post.Feeds); err == nil {
			names = feedNames(feeds)
		}

		deps.Runner = &scan.Runner{
			Log: deps.Embeds,
			Reposter: bluesky.NewClient(cli.Post.Handle, cli.Post.Password,
				bluesky.WithFeedNames(names),
				bluesky.WithLogger(logger),
			),
			Logger:    logger,
			MaxPosts:  cli.Post.MaxPosts,
			PostDelay: cli.Post.PostDelay,
		}
	}

	return kongCtx.Run(deps)
}

const (
	// Cached DID and short-link lookups expire after a day; both are
	// effectively immutable over a scan's lifetime.
	lookupCacheSize = 4096
	lookupCacheTTL  = 24 * time.Hour

	articleRequestsPerSecond = 1.0
)

func defaultDBPath() string {
	if path := os.Getenv("EMBEDTRACE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "embedtrace.db"
	}
	dir := filepath.Join(home, ".embedtrace")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "embedtrace.db")
}
