package main

import (
	"context"
	"io"
	"time"

	"github.com/kmichalik/embedtrace"
	"github.com/kmichalik/embedtrace/scan"
	"github.com/kmichalik/embedtrace/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	DB     *sqlite.DB
	Embeds embedtrace.EmbedLog
	Runner *scan.Runner
	Feeds  []embedtrace.Feed
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scan    ScanCmd    `cmd:"" help:"Scan feeds for social-media embeds and log new discoveries"`
	Pending PendingCmd `cmd:"" help:"List Bluesky discoveries awaiting a quote post"`
	Post    PostCmd    `cmd:"" help:"Quote-post pending Bluesky discoveries"`

	DB      string `help:"Database path (defaults to ~/.embedtrace/embedtrace.db)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	Feeds        string        `short:"f" default:"feeds.json" help:"Feeds file (JSON array of {url, name})"`
	MaxArticles  int           `default:"50" help:"Maximum articles to scan per run"`
	MaxAge       time.Duration `default:"168h" help:"Skip articles older than this"`
	MaxPosts     int           `default:"10" help:"Maximum quote posts per run (0 disables reposting)"`
	PostDelay    time.Duration `default:"2s" help:"Delay between quote posts"`
	ArticleDelay time.Duration `default:"500ms" help:"Delay between article fetches"`
	Extractor    string        `default:"dom" enum:"dom,trafilatura" help:"Article content extraction strategy"`
	Browser      bool          `help:"Fetch articles with headless Chrome for JS-rendered pages"`
	Handle       string        `env:"BLUESKY_HANDLE" help:"Bluesky handle used for quote posts"`
	Password     string        `env:"BLUESKY_PASSWORD" help:"Bluesky app password"`
}

// PendingCmd is the "pending" subcommand.
type PendingCmd struct{}

// PostCmd is the "post" subcommand.
type PostCmd struct {
	Feeds     string        `short:"f" default:"feeds.json" help:"Feeds file used for publication names in post text"`
	MaxPosts  int           `default:"10" help:"Maximum quote posts per run"`
	PostDelay time.Duration `default:"2s" help:"Delay between quote posts"`
	Handle    string        `env:"BLUESKY_HANDLE" help:"Bluesky handle used for quote posts"`
	Password  string        `env:"BLUESKY_PASSWORD" help:"Bluesky app password"`
}
